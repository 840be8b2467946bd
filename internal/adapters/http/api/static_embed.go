package api

import (
	"embed"
	"html/template"
)

//go:embed static/page.html
var pageFS embed.FS

var pageTemplate = template.Must(template.ParseFS(pageFS, "static/page.html"))
