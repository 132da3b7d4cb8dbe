// Package web holds the browser client served at /.
package web

import "embed"

//go:embed index.html index.css index.js
var Files embed.FS

// Assets maps served paths to embedded files and their content types.
var Assets = []struct {
	Path, File, ContentType string
}{
	{"/", "index.html", "text/html; charset=utf-8"},
	{"/index.html", "index.html", "text/html; charset=utf-8"},
	{"/index.css", "index.css", "text/css; charset=utf-8"},
	{"/index.js", "index.js", "application/javascript"},
}
