// Package tui holds terminal decorations for the local player.
package tui
