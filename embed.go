package main

import (
	"embed"
	"io/fs"
)

//go:embed all:frontend
var frontendFS embed.FS

// getFrontendFS strips the embed path prefix so the viewer page is
// served from the site root.
func getFrontendFS() fs.FS {
	sub, err := fs.Sub(frontendFS, "frontend")
	if err != nil {
		panic(err)
	}
	return sub
}
