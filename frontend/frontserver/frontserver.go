package frontserver

import (
	"net/http"
	"time"

	"github.com/diamondburned/duration"
	"github.com/footstore/footstore/frontend/frontserver/components/footer"
	"github.com/footstore/footstore/frontend/frontserver/internal/limit"
	"github.com/footstore/footstore/frontend/frontserver/internal/middleware"
	"github.com/footstore/footstore/frontend/frontserver/pages/errorpage"
	"github.com/footstore/footstore/frontend/frontserver/pages/footerpage"
	"github.com/footstore/footstore/frontend/frontserver/pages/home"
	"github.com/footstore/footstore/frontend/frontserver/render"
	"github.com/footstore/footstore/frontend/frontserver/static"
	chimw "github.com/go-chi/chi/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type FrontConfig struct {
	render.Config
	Footer footer.Config `toml:"footer"`

	// RateLimit is the number of requests per second allowed per IP. Zero
	// disables rate limiting.
	RateLimit   float64 `toml:"rateLimit"`
	AssetMaxAge string  `toml:"assetMaxAge"`

	assetMaxAge time.Duration
}

func NewConfig() FrontConfig {
	return FrontConfig{
		Config:      render.NewConfig(),
		Footer:      footer.NewConfig(),
		RateLimit:   32,
		AssetMaxAge: "7d",
	}
}

func (c *FrontConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}

	if err := c.Footer.Validate(); err != nil {
		return errors.Wrap(err, "invalid footer")
	}

	if c.RateLimit < 0 {
		return errors.New("`rateLimit' must not be negative")
	}

	if c.AssetMaxAge == "" {
		c.assetMaxAge = 0
		return nil
	}

	d, err := duration.ParseDuration(c.AssetMaxAge)
	if err != nil {
		return errors.Wrap(err, "invalid asset max age")
	}
	c.assetMaxAge = time.Duration(d)

	return nil
}

// New creates the frontend handler. The footer is rendered once here and
// served as-is afterwards.
func New(cfg FrontConfig) (http.Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f, err := footer.New(cfg.Footer)
	if err != nil {
		return nil, err
	}

	r := render.NewMux(cfg.Config, f.HTML(),
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger,
		limit.RateLimit(cfg.RateLimit),
	)

	r.SetErrorRenderer(errorpage.RenderError)
	r.Get("/", home.Render)
	r.Get("/views/footer", footerpage.Render)
	r.Mux.Get("/fragments/footer", fragmentHandler(f))
	r.Mux.Head("/fragments/footer", fragmentHandler(f))
	r.Mux.Handle("/utils/*", static.Handler(cfg.assetMaxAge))

	return r, nil
}

func fragmentHandler(f *footer.Fragment) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := f.WriteTo(w); err != nil {
			log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write fragment")
		}
	}
}
