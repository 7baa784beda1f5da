// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server runs an HTTP/1.1 server for an SPA build output directory.
package server

import (
	"net"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	spaserve "github.com/ISCODEVUTB/PublicTransitAgency"
	"github.com/ISCODEVUTB/PublicTransitAgency/internal/config"
)

// ReadyMessage is logged exactly once, as soon as the server listens.
const ReadyMessage = "server running"

// Server serves the SPA described by its configuration.
type Server struct {
	cfg     config.Config
	log     *zap.Logger
	handler http.Handler
}

// New returns a new Server for the specified configuration, logging to the
// specified logger; a nil logger logs nothing. Additional options, such as
// spaserve.WithBaseRewriting, are passed on to the SPA handler.
func New(cfg config.Config, log *zap.Logger, opts ...spaserve.SPAHandlerOption) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	opts = append([]spaserve.SPAHandlerOption{spaserve.WithLogger(log.Named("spa"))}, opts...)
	return &Server{
		cfg:     cfg,
		log:     log,
		handler: spaserve.NewSPAHandler(os.DirFS(cfg.Root()), cfg.Index(), opts...),
	}
}

// ListenAndServe binds to the configured port and then serves requests until
// the process gets terminated. It only returns with an error, either because
// binding failed, or serving failed.
func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return errors.Wrapf(err, "unable to listen on %s", s.cfg.Addr())
	}
	return s.Serve(l)
}

// Serve serves requests on the specified listener, which it takes ownership
// of. It doesn't return unless the listener fails.
func (s *Server) Serve(l net.Listener) error {
	port := s.cfg.Port()
	if addr, ok := l.Addr().(*net.TCPAddr); ok {
		port = addr.Port
	}
	if _, err := os.Stat(s.cfg.EntryDocument()); err != nil {
		s.log.Warn("entry document unavailable", zap.Error(err))
	}
	s.log.Info(ReadyMessage,
		zap.Int("port", port),
		zap.String("root", s.cfg.Root()))
	srv := &http.Server{
		Handler:  s.handler,
		ErrorLog: zap.NewStdLog(s.log.Named("http")),
	}
	return errors.Wrap(srv.Serve(l), "unable to serve")
}
