/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package webfront

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/RolandTaverner/PraeTor-sub000/controller"
	"github.com/RolandTaverner/PraeTor-sub000/logger"
)

const shutdownTimeout = 10 * time.Second

// Config configures one Server instance.
type Config struct {
	Host            string
	Port            string
	Timeout         time.Duration
	ConnectionLimit int
	Log             logger.Logger
}

// Server is the web-server front-end of spec.md §4.C10: a gin engine
// bound to a fixed route tree, wired to a Controller. Lifecycle
// methods follow the Listen/WaitNotify/Shutdown shape of
// _examples/nabbar-golib/httpserver/server.go.
type Server struct {
	cfg         Config
	ctrl        *controller.Controller
	engine      *gin.Engine
	srv         *http.Server
	statusTable StatusTable
	gate        *admissionGate
	log         logger.Logger
}

// New builds a Server dispatching to ctrl, admitting at most
// connectionLimit concurrent requests.
func New(cfg Config, ctrl *controller.Controller) *Server {
	l := cfg.Log
	if l == nil {
		l = logger.New(logger.InfoLevel)
	}
	s := &Server{
		cfg:         cfg,
		ctrl:        ctrl,
		statusTable: NewStatusTable(),
		gate:        newAdmissionGate(cfg.ConnectionLimit),
		log:         l.WithFields(logger.Fields{"component": "webfront"}),
	}
	s.engine = newEngine()
	s.engine.Use(s.gate.middleware(), corsMiddleware(), gzipMiddleware())
	s.engine.HandleMethodNotAllowed = true
	s.engine.NoMethod(func(c *gin.Context) {
		s.writeError(c, "*", Err(MethodNotAllowed, c.Request.Method))
	})
	s.engine.NoRoute(func(c *gin.Context) {
		s.writeError(c, "*", Err(RouteNotFound, c.Request.URL.Path))
	})
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	routes := []route{
		{http.MethodGet, "/api/controller", "getControllerInfo", s.handleControllerInfo},
		{http.MethodGet, "/api/controller/presets", "getPresetGroups", s.handleGetPresetGroups},
		{http.MethodPost, "/api/controller/presets", "applyPresetGroup", s.handleApplyPreset},
		{http.MethodGet, "/api/controller/presets/$group", "getPresets", s.handleGetPresets},
		{http.MethodGet, "/api/controller/processes", "getProcesses", s.handleGetProcesses},
		{http.MethodGet, "/api/controller/processes/$process", "getProcessInfo", s.handleGetProcessInfo},
		{http.MethodPost, "/api/controller/processes/$process/action", "processAction", s.handleProcessAction},
		{http.MethodGet, "/api/controller/processes/$process/log", "getProcessLog", s.handleGetProcessLog},
		{http.MethodGet, "/api/controller/processes/$process/configs", "getProcessConfigs", s.handleGetProcessConfigs},
		{http.MethodGet, "/api/controller/processes/$process/configs/$config", "getProcessConfig", s.handleGetProcessConfig},
		{http.MethodGet, "/api/controller/processes/$process/configs/$config/options/$option", "getProcessOption", s.handleGetProcessOption},
		{http.MethodPut, "/api/controller/processes/$process/configs/$config/options/$option", "setProcessOption", s.handleSetProcessOption},
		{http.MethodDelete, "/api/controller/processes/$process/configs/$config/options/$option", "removeProcessOption", s.handleRemoveProcessOption},
	}

	seen := make(map[string]bool)
	for _, r := range routes {
		path := translatePath(r.path)
		s.engine.Handle(r.method, path, r.handle)

		if !seen[path] {
			seen[path] = true
			// OPTIONS never reaches a route's own handlers in gin
			// unless registered explicitly (spec.md §4.C10 step 1).
			s.engine.OPTIONS(path, func(c *gin.Context) { c.Status(http.StatusOK) })
		}
	}
}

// Engine exposes the underlying gin.Engine, e.g. for tests driving
// requests through httptest without a live listener.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Listen starts serving on cfg.Host:cfg.Port. It returns once the
// listener is established; serving continues on a background
// goroutine until Shutdown.
func (s *Server) Listen() error {
	// h2c.NewHandler lets clear-text HTTP/2 clients upgrade without
	// TLS, which spec.md's Non-goals (no custom TLS stack) leave
	// available for the front-end to accept alongside HTTP/1.1,
	// matching _examples/nabbar-golib/httpserver's Listen.
	h2s := &http2.Server{}
	s.srv = &http.Server{
		Addr:         s.cfg.Host + ":" + s.cfg.Port,
		Handler:      h2c.NewHandler(s.engine, h2s),
		ReadTimeout:  s.cfg.Timeout,
		WriteTimeout: s.cfg.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

// WaitNotify blocks until SIGINT, SIGTERM, or SIGQUIT, then shuts
// down (grounded on
// _examples/nabbar-golib/httpserver/server.go's WaitNotify).
func (s *Server) WaitNotify() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-quit
	s.Shutdown()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown() {
	if s.srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.log.Entry(logger.WarnLevel, "shutdown error").Log()
	}
}
