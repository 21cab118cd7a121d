// Package web embeds the static assets of the SPA shell.
package web

import "embed"

//go:embed static
var Static embed.FS
