// Package storyapi provides embedded assets for production builds.
package storyapi

import "embed"

// Embedded front-end for production builds.
// In dev mode (IsDev=true), assets are loaded from disk so a front-end
// rebuild is picked up without restarting the server.

//go:embed all:web/static
var StaticFS embed.FS
