// Package footerpage renders the footer as a standalone document, for hosts
// that include it through a frame or fetch the whole page.
package footerpage

import (
	"github.com/footstore/footstore/frontend/frontserver/components/footer"
	"github.com/footstore/footstore/frontend/frontserver/render"

	_ "embed"
)

//go:embed footerpage.html
var footerpageHTML string

var tmpl = render.BuildPage("footerpage", render.Page{
	Template: footerpageHTML,
	Components: map[string]render.Component{
		"footer": footer.Component,
	},
})

type renderCtx struct {
	render.CommonCtx
}

func Render(r *render.Request) (render.Render, error) {
	return RenderCommon(r.CommonCtx)
}

// RenderCommon renders the page without a request, which the render
// subcommand uses.
func RenderCommon(ctx render.CommonCtx) (render.Render, error) {
	body, err := tmpl.Render(renderCtx{
		CommonCtx: ctx,
	})
	if err != nil {
		return render.Empty, err
	}

	return render.Render{Body: body}, nil
}
