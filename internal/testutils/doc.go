// Package testutils holds helpers shared by tests.
package testutils
