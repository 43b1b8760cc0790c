// Package server is the HTTP layer: session middleware, the HTML pages and
// the form handlers that drive the user directory and the media pipeline.
package server

import (
	"net/http"
	"time"

	"github.com/icmoura/jarvis/internal/config"
)

type Server struct {
	addr string
	h    http.Handler
}

func New(cfg *config.Config) (*Server, error) {
	app, err := newApp(cfg)
	if err != nil {
		return nil, err
	}
	return &Server{addr: cfg.Server.ListenAddr, h: app.routes()}, nil
}

func (s *Server) ListenAndServe() error {
	httpSrv := &http.Server{
		Addr:              s.addr,
		Handler:           s.h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return httpSrv.ListenAndServe()
}
