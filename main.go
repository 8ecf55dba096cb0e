package main

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/andybalholm/brotli"
	"github.com/footstore/footstore/frontend/frontserver"
	"github.com/footstore/footstore/frontend/frontserver/components/footer"
	"github.com/footstore/footstore/frontend/frontserver/pages/footerpage"
	"github.com/footstore/footstore/frontend/frontserver/render"
	"github.com/footstore/footstore/server"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/ssh/terminal"

	toml "github.com/pelletier/go-toml"
)

var (
	configGlob = "./config*.toml"
	document   = false
	verbose    = false
)

func stderrlnf(f string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, f+"\n", v...)
}

type Config struct {
	server.Config
	frontserver.FrontConfig
}

func NewConfig() Config {
	return Config{
		Config:      server.NewConfig(),
		FrontConfig: frontserver.NewConfig(),
	}
}

func (c *Config) Validate() error {
	var fields = []server.Validator{
		&c.Config,
		&c.FrontConfig,
	}

	for _, v := range fields {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	pflag.StringVarP(
		&configGlob, "config", "c", configGlob,
		"Path to config file with glob support for fallback",
	)

	pflag.BoolVarP(
		&document, "document", "d", document,
		"Render the footer as a whole HTML document instead of a fragment",
	)

	pflag.BoolVarP(
		&verbose, "verbose", "v", verbose,
		"Log requests and other debug messages",
	)

	pflag.Usage = func() {
		stderrlnf("Usage: %s [subcommand] [flags...]", filepath.Base(os.Args[0]))
		stderrlnf("Subcommands:")
		stderrlnf("  render   Print the footer to stdout")
		stderrlnf("  serve    Run the HTTP server")
		stderrlnf("Flags:")
		pflag.PrintDefaults()
	}
}

func main() {
	pflag.Parse()

	if terminal.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := loadConfig(configGlob)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	switch pflag.Arg(0) {
	case "render":
		if err := renderFooter(os.Stdout, cfg.FrontConfig, document); err != nil {
			log.Fatal().Err(err).Msg("failed to render footer")
		}

	case "serve", "":
		if err := serve(cfg); err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}

	default:
		pflag.Usage()
		os.Exit(2)
	}
}

// loadConfig reads every file matching the glob in order on top of the
// defaults. No matches is not an error, since the defaults are complete.
func loadConfig(glob string) (Config, error) {
	var cfg = NewConfig()

	d, err := filepath.Glob(glob)
	if err != nil {
		return cfg, errors.Wrap(err, "failed to glob")
	}

	if len(d) == 0 {
		log.Warn().Str("glob", glob).Msg("no config files matched, using defaults")
	}

	for _, path := range d {
		f, err := ioutil.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, "failed to read globbed config file")
		}

		t, err := toml.LoadBytes(f)
		if err != nil {
			return cfg, errors.Wrapf(err, "failed to load TOML from %s", path)
		}

		if err := t.Unmarshal(&cfg); err != nil {
			return cfg, errors.Wrapf(err, "failed to unmarshal %s", path)
		}

		log.Debug().Str("path", path).Msg("loaded config")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func renderFooter(w io.Writer, cfg frontserver.FrontConfig, document bool) error {
	f, err := footer.New(cfg.Footer)
	if err != nil {
		return err
	}

	if !document {
		_, err := f.WriteTo(w)
		return err
	}

	page, err := footerpage.RenderCommon(render.CommonCtx{
		Config: cfg.Config,
		Footer: f.HTML(),
	})
	if err != nil {
		return err
	}

	return render.WriteDocument(w, cfg.Config, page)
}

func serve(cfg Config) error {
	h, err := newHandler(cfg.FrontConfig)
	if err != nil {
		return err
	}

	s, err := server.New(cfg.Config, h)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return s.Serve(ctx)
}

// newHandler mounts the frontend behind the compressor next to /healthz.
func newHandler(cfg frontserver.FrontConfig) (http.Handler, error) {
	f, err := frontserver.New(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create frontend")
	}

	c := middleware.NewCompressor(5, "text/html", "text/css", "image/svg+xml")
	c.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})

	mux := chi.NewMux()
	mux.Use(c.Handler)
	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	mux.Mount("/", f)

	return mux, nil
}
