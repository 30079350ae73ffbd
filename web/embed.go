package web

import "embed"

// StaticFS holds the embedded upload page and its assets.
//
//go:embed static
var StaticFS embed.FS
