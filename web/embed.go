// Package web carries the embedded single-page frontend.
package web

import (
	"embed"
	"net/http"
)

//go:embed index.html
var content embed.FS

// Handler serves the embedded frontend. index.html answers "/".
func Handler() http.Handler {
	return http.FileServer(http.FS(content))
}
