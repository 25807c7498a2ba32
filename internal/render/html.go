package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

var weekTemplate = template.Must(template.New("week.html").Funcs(template.FuncMap{
	"px":   func(v float64) string { return fmt.Sprintf("%.2fpx", v) },
	"tick": func(hour, zoom int) string { return fmt.Sprintf("%dpx", hour*zoom) },
}).ParseFS(templateFS, "templates/week.html"))

// WriteHTML renders view as a standalone page. The root element carries
// data-ready="true" once the page is complete so headless capture can wait
// for it.
func WriteHTML(w io.Writer, view WeekView) error {
	return weekTemplate.Execute(w, view)
}
