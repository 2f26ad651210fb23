// Package views holds the embedded HTML templates served by the app.
package views

import "embed"

//go:embed *.html
var TemplatesFS embed.FS
