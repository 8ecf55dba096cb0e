package home

import (
	"github.com/footstore/footstore/frontend/frontserver/render"

	// Components
	"github.com/footstore/footstore/frontend/frontserver/components/footer"

	_ "embed"
)

var (
	//go:embed home.html
	homeHTML string
	//go:embed home.css
	homeCSS string
)

func init() {
	render.RegisterCSS("pages/home/home.css", homeCSS)
}

var tmpl = render.BuildPage("home", render.Page{
	Template: homeHTML,
	Components: map[string]render.Component{
		"footer": footer.Component,
	},
})

type renderCtx struct {
	render.CommonCtx
}

func Render(r *render.Request) (render.Render, error) {
	body, err := tmpl.Render(renderCtx{
		CommonCtx: r.CommonCtx,
	})
	if err != nil {
		return render.Empty, err
	}

	return render.Render{Body: body}, nil
}
