// Package server runs the HTTP listener that the frontend is mounted on.
package server

import (
	"context"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/diamondburned/duration"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
)

// Validator is used for configs.
type Validator interface {
	Validate() error
}

// Config is the listener config. Either ListenAddress or SocketPath must be
// set; SocketPath wins if both are.
type Config struct {
	ListenAddress   string            `toml:"listenAddress"`
	SocketPath      string            `toml:"socketPath"`
	SocketPerm      string            `toml:"socketPerm"`
	ShutdownTimeout string            `toml:"shutdownTimeout"`
	MaxHeaderSize   datasize.ByteSize `toml:"maxHeaderSize"`

	shutdownTimeout time.Duration
	socketPerm      os.FileMode
}

func NewConfig() Config {
	return Config{
		ListenAddress:   ":8080",
		ShutdownTimeout: "10s",
		MaxHeaderSize:   64 * datasize.KB,
	}
}

func (c *Config) Validate() error {
	if c.ListenAddress == "" && c.SocketPath == "" {
		return errors.New("missing `listenAddress' or `socketPath' value")
	}

	d, err := duration.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return errors.Wrap(err, "invalid shutdown timeout")
	}
	c.shutdownTimeout = time.Duration(d)

	if c.SocketPerm != "" {
		o, err := strconv.ParseUint(c.SocketPerm, 8, 32)
		if err != nil {
			return errors.Wrap(err, "failed to parse socket perm in octet")
		}
		c.socketPerm = os.FileMode(o)
	}

	if c.MaxHeaderSize == 0 {
		return errors.New("`maxHeaderSize' must not be zero")
	}

	return nil
}

type Server struct {
	http.Server
	Listener net.Listener
	Config   Config
}

// New validates the config, creates the listener and configures HTTP/2. The
// server is not started.
func New(cfg Config, h http.Handler) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l, err := listen(cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		Server: http.Server{
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    int(cfg.MaxHeaderSize.Bytes()),
		},
		Listener: l,
		Config:   cfg,
	}

	// Explicitly set up HTTP/2.
	err = http2.ConfigureServer(&s.Server, &http2.Server{
		MaxHandlers:          4096,
		MaxConcurrentStreams: 1024,
	})
	if err != nil {
		l.Close()
		return nil, errors.Wrap(err, "failed to configure HTTP/2 server")
	}

	return s, nil
}

func listen(cfg Config) (net.Listener, error) {
	if cfg.SocketPath == "" {
		l, err := net.Listen("tcp", cfg.ListenAddress)
		if err != nil {
			return nil, errors.Wrap(err, "failed to listen")
		}
		return l, nil
	}

	// Ensure that the socket is cleaned up, since a crash leaves it behind.
	if err := os.Remove(cfg.SocketPath); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to clean up old socket")
	}

	l, err := net.Listen("unix", cfg.SocketPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to listen to Unix socket")
	}

	if cfg.socketPerm != 0 {
		if err := os.Chmod(cfg.SocketPath, cfg.socketPerm); err != nil {
			l.Close()
			return nil, errors.Wrap(err, "failed to chmod socket")
		}
	}

	return l, nil
}

// Serve serves until ctx is canceled, then shuts down gracefully within the
// configured timeout.
func (s *Server) Serve(ctx context.Context) error {
	var serveErr = make(chan error, 1)

	go func() {
		log.Info().Str("addr", s.Listener.Addr().String()).Msg("starting HTTP/2 listener")
		serveErr <- s.Server.Serve(s.Listener)
	}()

	select {
	case err := <-serveErr:
		return errors.Wrap(err, "failed to serve")
	case <-ctx.Done():
	}

	log.Info().Dur("timeout", s.Config.shutdownTimeout).Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.shutdownTimeout)
	defer cancel()

	if err := s.Server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "failed to gracefully close the server")
	}

	return nil
}
