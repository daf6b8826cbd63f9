// Package mcp exposes a quest as Model Context Protocol tools and resources.
package mcp
