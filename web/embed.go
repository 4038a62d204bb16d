// Package web bundles the console's templates and static assets into the binary.
package web

import "embed"

// Templates holds the layout, partial and page templates.
//
//go:embed templates/layouts/*.html templates/partials/*.html templates/pages/*.html
var Templates embed.FS

// Static holds the stylesheet and the theme toggle script served under /static/.
//
//go:embed static/css static/js
var Static embed.FS
