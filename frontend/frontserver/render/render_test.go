package render

import (
	"bytes"
	"html/template"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/footstore/footstore/server/httperr"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	os.Exit(m.Run())
}

var testPage = BuildPage("test", Page{
	Template: `<main>{{ template "greeting" . }}</main>`,
	Components: map[string]Component{
		"greeting": {
			Template: `<p>{{ shout .Name }}</p>`,
			Functions: template.FuncMap{
				"shout": strings.ToUpper,
			},
		},
	},
})

func TestTemplateRender(t *testing.T) {
	h, err := testPage.Render(struct{ Name string }{"<hola>"})
	if err != nil {
		t.Fatal("Failed to render:", err)
	}

	if h != "<main><p>&lt;HOLA&gt;</p></main>" {
		t.Fatalf("Unexpected output: %q", h)
	}
}

func TestWriteDocument(t *testing.T) {
	cfg := NewConfig()
	page := Render{Title: "Error", Body: "<p>hi</p>"}

	var b bytes.Buffer
	if err := WriteDocument(&b, cfg, page); err != nil {
		t.Fatal("Failed to write document:", err)
	}

	for _, want := range []string{
		`<html lang="es">`,
		`<title>Error - FootStore</title>`,
		`<p>hi</p>`,
		`/static/components.css`,
	} {
		if !strings.Contains(b.String(), want) {
			t.Errorf("Document is missing %q:\n%s", want, b.String())
		}
	}

	t.Run("Minified", func(t *testing.T) {
		cfg.MinifyHTML = true

		var m bytes.Buffer
		if err := WriteDocument(&m, cfg, page); err != nil {
			t.Fatal("Failed to write document:", err)
		}

		if m.Len() >= b.Len() {
			t.Fatalf("Minified document is not smaller: %d >= %d", m.Len(), b.Len())
		}

		if !strings.Contains(m.String(), "<p>hi") {
			t.Fatalf("Minified document lost its body: %s", m.String())
		}
	})
}

func TestMuxErrors(t *testing.T) {
	m := NewMux(NewConfig(), "<footer></footer>")
	m.Get("/gone", func(r *Request) (Render, error) {
		return Empty, errors.Wrap(httperr.New(http.StatusGone, "post removed"), "failed")
	})
	m.Get("/ok", func(r *Request) (Render, error) {
		return Render{Body: r.Footer}, nil
	})

	do := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		m.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		return w
	}

	if w := do("/gone"); w.Code != http.StatusGone || !strings.Contains(w.Body.String(), "post removed") {
		t.Fatalf("Unexpected response %d: %s", w.Code, w.Body.String())
	}

	t.Run("Head", func(t *testing.T) {
		w := httptest.NewRecorder()
		m.ServeHTTP(w, httptest.NewRequest("HEAD", "/ok", nil))

		if w.Code != http.StatusOK {
			t.Fatal("Unexpected HEAD status code:", w.Code)
		}
	})

	if w := do("/missing"); w.Code != http.StatusNotFound {
		t.Fatal("Unexpected status code:", w.Code)
	}

	if w := do("/ok"); !strings.Contains(w.Body.String(), "<footer></footer>") {
		t.Fatal("Footer is missing from page:", w.Body.String())
	}

	t.Run("ErrorRenderer", func(t *testing.T) {
		m.SetErrorRenderer(func(r *Request, err error) (Render, error) {
			return Render{Title: "Oops", Body: template.HTML(template.HTMLEscapeString(err.Error()))}, nil
		})

		w := do("/gone")
		if w.Code != http.StatusGone {
			t.Fatal("Unexpected status code:", w.Code)
		}

		if !strings.Contains(w.Body.String(), "<title>Oops - FootStore</title>") {
			t.Fatal("Error page was not rendered:", w.Body.String())
		}
	})
}

func TestMinifyCSS(t *testing.T) {
	css, err := MinifyCSS("footer {\n\tcolor: #ffffff;\n}\n")
	if err != nil {
		t.Fatal("Failed to minify:", err)
	}

	if css != "footer{color:#fff}" {
		t.Fatalf("Unexpected CSS: %q", css)
	}

	if !bytes.Contains(ComponentsCSS(), []byte("padding-bottom:64px")) {
		t.Fatalf("Global stylesheet is missing style.css: %s", ComponentsCSS())
	}
}
