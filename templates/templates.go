package templates

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/cppla/blog/utils"
)

//go:embed html/*.html
var files embed.FS

var funcs = template.FuncMap{
	// rating renders an average rating, or a dash when there are no ratings yet
	"rating": func(avg *float64) string {
		if avg == nil {
			return "—"
		}
		return fmt.Sprintf("%.1f", *avg)
	},
	"sanitize": utils.SafeHTML,
}

// Load parses every page template.
func Load() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files, "html/*.html")
}

// Must is Load that panics on a broken template set.
func Must() *template.Template {
	return template.Must(Load())
}
