package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/footstore/footstore/server/httperr"
	"github.com/go-chi/chi"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	_ "embed"
)

// Renderer represents a renderable page.
type Renderer = func(r *Request) (Render, error)

// ErrorRenderer represents a renderable page for errors.
type ErrorRenderer = func(r *Request, err error) (Render, error)

type Render struct {
	Title       string // og:title, <title>
	Description string // og:description

	Body template.HTML
}

// Empty is a blank page.
var Empty = Render{}

type Config struct {
	SiteName   string `toml:"siteName"`
	Lang       string `toml:"lang"`
	MinifyHTML bool   `toml:"minifyHTML"`
}

func NewConfig() Config {
	return Config{
		SiteName: "FootStore",
		Lang:     "es",
	}
}

func (c *Config) Validate() error {
	if c.SiteName == "" {
		return errors.New("missing `siteName' value")
	}
	if c.Lang == "" {
		return errors.New("missing `lang' value")
	}
	return nil
}

//go:embed index.html
var indexHTML string

var index = template.Must(template.New("index").Parse(indexHTML))

type renderCtx struct {
	Render Render
	Config Config
}

func (r renderCtx) FormatTitle() string {
	if r.Render.Title == "" {
		return r.Config.SiteName
	}
	return fmt.Sprintf("%s - %s", r.Render.Title, r.Config.SiteName)
}

// WriteDocument wraps the page into the index document and writes it out.
func WriteDocument(w io.Writer, cfg Config, page Render) error {
	var b bytes.Buffer

	if err := index.Execute(&b, renderCtx{Render: page, Config: cfg}); err != nil {
		return errors.Wrap(err, "failed to execute index")
	}

	if cfg.MinifyHTML {
		m, err := MinifyHTML(b.Bytes())
		if err != nil {
			return err
		}
		_, err = w.Write(m)
		return err
	}

	_, err := b.WriteTo(w)
	return err
}

type Request struct {
	*http.Request
	Writer http.ResponseWriter
	CommonCtx
}

// CommonCtx is embedded into every page's render context.
type CommonCtx struct {
	Config  Config
	Request *http.Request
	// Footer is the pre-rendered footer fragment.
	Footer template.HTML
}

type Mux struct {
	*chi.Mux
	cfg    Config
	footer template.HTML
	errR   ErrorRenderer
}

// NewMux creates a page mux. Middlewares must be given here, since chi does not
// allow adding them after the first route.
func NewMux(cfg Config, footer template.HTML, mws ...func(http.Handler) http.Handler) *Mux {
	ensureInit()

	r := chi.NewMux()
	r.Use(mws...)
	r.Get("/static/components.css", componentsCSSHandler)

	m := &Mux{Mux: r, cfg: cfg, footer: footer}
	r.NotFound(m.M(notFound))
	return m
}

func notFound(r *Request) (Render, error) {
	return Empty, httperr.New(http.StatusNotFound, "page not found")
}

func (m *Mux) SetErrorRenderer(r ErrorRenderer) {
	m.errR = r
}

func (m *Mux) NewRequest(w http.ResponseWriter, r *http.Request) *Request {
	return &Request{
		Request: r,
		Writer:  w,
		CommonCtx: CommonCtx{
			Config:  m.cfg,
			Request: r,
			Footer:  m.footer,
		},
	}
}

// M is the middleware wrapper.
func (m *Mux) M(render Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Write the proper headers.
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		var request = m.NewRequest(w, r)

		page, err := render(request)
		if err != nil {
			// Copy the status code if available. Else, fallback to 500.
			w.WriteHeader(httperr.ErrCode(err))

			// If there is no error renderer, then we just write the error down
			// in plain text.
			if m.errR == nil {
				fmt.Fprintf(w, "Error: %v", err)
				return
			}

			// Render the error page.
			page, err = m.errR(request, err)
			if err != nil {
				log.Error().Err(err).Msg("failed to render error page")
				return
			}
		}

		// Don't render anything if an empty page is returned and there is no
		// error.
		if page == Empty {
			return
		}

		if err := WriteDocument(w, m.cfg, page); err != nil {
			log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write page")
		}
	}
}

// Get registers the page for both GET and HEAD.
func (m *Mux) Get(route string, r Renderer) {
	h := m.M(r)
	m.Mux.Get(route, h)
	m.Mux.Head(route, h)
}
