package errorpage

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/footstore/footstore/frontend/frontserver/components/footer"
	"github.com/footstore/footstore/frontend/frontserver/render"

	_ "embed"
)

var (
	//go:embed errorpage.html
	errorpageHTML string
	//go:embed errorpage.css
	errorpageCSS string
)

func init() {
	render.RegisterCSS("pages/errorpage/errorpage.css", errorpageCSS)
}

var tmpl = render.BuildPage("errorpage", render.Page{
	Template: errorpageHTML,
	Components: map[string]render.Component{
		"footer": footer.Component,
	},
})

type renderCtx struct {
	render.CommonCtx
	Errors [][]string
}

// SplitError splits a wrapped error into lines of capitalized parts, one part
// per wrap.
func SplitError(err error) [][]string {
	var lines = strings.Split(err.Error(), "\n")
	var errors = make([][]string, len(lines))

	for i, line := range lines {
		var parts = strings.SplitAfter(line, ": ")

		// Capitalize every single error's first letter.
		for i, err := range parts {
			f, sze := utf8.DecodeRuneInString(err)
			if sze > 0 {
				f = unicode.ToUpper(f)
				parts[i] = string(f) + err[sze:]
			}

			// Append a period at the end for formality.
			if i == len(parts)-1 && !strings.HasSuffix(parts[i], ".") {
				parts[i] += "."
			}
		}

		errors[i] = parts
	}

	return errors
}

func RenderError(r *render.Request, err error) (render.Render, error) {
	body, rerr := tmpl.Render(renderCtx{
		CommonCtx: r.CommonCtx,
		Errors:    SplitError(err),
	})
	if rerr != nil {
		return render.Empty, rerr
	}

	return render.Render{
		Title: "Error",
		Body:  body,
	}, nil
}
