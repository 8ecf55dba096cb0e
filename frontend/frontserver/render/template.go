package render

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify"
	"github.com/tdewolff/minify/css"
	"github.com/tdewolff/minify/html"

	_ "embed"
)

// runtime minifier
var minifier = func() (minifier *minify.M) {
	minifier = minify.New()
	minifier.AddFunc("text/css", css.Minify)
	minifier.AddFunc("text/html", html.Minify)
	return
}()

// MinifyCSS minifies a stylesheet.
func MinifyCSS(src string) (string, error) {
	s, err := minifier.String("text/css", src)
	if err != nil {
		return "", errors.Wrap(err, "failed to minify CSS")
	}
	return s, nil
}

// MinifyHTML minifies an HTML document, including its style blocks.
func MinifyHTML(src []byte) ([]byte, error) {
	b, err := minifier.Bytes("text/html", src)
	if err != nil {
		return nil, errors.Wrap(err, "failed to minify HTML")
	}
	return b, nil
}

var globalFns = template.FuncMap{
	"lower": strings.ToLower,
}

// Component is a template fragment. Template holds the template source, which
// callers usually get from a go:embed string.
type Component struct {
	Template   string
	Components map[string]Component
	Functions  template.FuncMap
}

type Page struct {
	Template   string
	Components map[string]Component
	Functions  template.FuncMap
}

// prepareList is the list of templates to call prepare on.
var prepareList []*Template

func prepareAllTemplates() {
	for _, tmpl := range prepareList {
		tmpl.prepare()
	}
}

func BuildPage(n string, p Page) *Template {
	tmpl := &Template{
		name: n,
		page: p,
	}

	prepareList = append(prepareList, tmpl)

	return tmpl
}

type Template struct {
	*template.Template
	name string
	page Page
	once sync.Once
}

func (t *Template) prepare() {
	t.once.Do(t.do)
}

func (t *Template) do() {
	// Combine all nested components into the page's component set.
	for _, component := range t.page.Components {
		for n, nested := range component.Components {
			t.page.Components[n] = nested
		}
	}

	// Combine all function duplicates.
	for _, component := range t.page.Components {
		if component.Functions == nil {
			continue
		}

		// Ensure that we have a parent functions map.
		if t.page.Functions == nil {
			t.page.Functions = template.FuncMap{}
		}

		for n, fn := range component.Functions {
			// Only set into the map if we don't already have the function.
			if _, ok := t.page.Functions[n]; !ok {
				t.page.Functions[n] = fn
			}
		}
	}

	tmpl := template.New(t.name)
	tmpl = tmpl.Funcs(globalFns)
	tmpl = tmpl.Funcs(t.page.Functions)
	tmpl = template.Must(tmpl.Parse(t.page.Template))

	// Parse all components' HTMLs.
	for n, component := range t.page.Components {
		tmpl = template.Must(tmpl.Parse(
			fmt.Sprintf("{{ define %q }}%s{{ end }}", n, component.Template),
		))
	}

	t.Template = tmpl
}

// Render renders the template with the given argument into HTML.
func (t *Template) Render(v interface{}) (template.HTML, error) {
	t.prepare()

	var b bytes.Buffer

	if err := t.Execute(&b, v); err != nil {
		return "", errors.Wrapf(err, "failed to render %s", t.name)
	}

	return template.HTML(b.String()), nil
}

//go:embed style.css
var styleCSS string

type cssFile struct {
	name string
	src  string
}

var (
	componentsFiles  = []cssFile{{"style.css", styleCSS}}
	componentsCSS    = bytes.Buffer{}
	componentModTime = time.Now().UTC().Truncate(time.Second)
)

// RegisterCSS adds the stylesheet to the global CSS file, which can be located
// in /static/components.css. It must be called from init.
func RegisterCSS(name, src string) {
	componentsFiles = append(componentsFiles, cssFile{name, src})
}

func initializeCSS() {
	for _, file := range componentsFiles {
		err := minifier.Minify("text/css", &componentsCSS, strings.NewReader(file.src))
		if err != nil {
			log.Panic().Err(err).Str("file", file.name).Msg("failed to minify CSS")
		}
	}

	log.Debug().
		Int("files", len(componentsFiles)).
		Str("size", humanize.Bytes(uint64(componentsCSS.Len()))).
		Msg("built components.css")
}

// ComponentsCSS returns the minified global stylesheet.
func ComponentsCSS() []byte {
	ensureInit()
	return componentsCSS.Bytes()
}

func componentsCSSHandler(w http.ResponseWriter, r *http.Request) {
	http.ServeContent(
		w, r, "components.css", componentModTime,
		bytes.NewReader(componentsCSS.Bytes()),
	)
}

var initOnce sync.Once

func ensureInit() {
	initOnce.Do(func() {
		initializeCSS()
		prepareAllTemplates()
	})
}
