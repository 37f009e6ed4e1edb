package builder

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/lfedgeai/taskcat/pkg/common"
	"github.com/lfedgeai/taskcat/pkg/som"
)

// BuildRunner executes one build round.
type BuildRunner interface {
	Build(ctx context.Context, req *som.TaskRequest) (*som.BuildResult, error)
}

type ServerConfig struct {
	Addr   string
	Port   string
	Device string
	// APIKey enables bearer authentication on the build route when set.
	APIKey              string
	MaxConcurrentBuilds int
	// ShutdownTimeout bounds how long in-flight builds may run once the
	// server is asked to stop.
	ShutdownTimeout time.Duration
}

const DefaultShutdownTimeout = 30 * time.Second

type Server struct {
	cfg     ServerConfig
	runner  BuildRunner
	gather  prometheus.Gatherer
	metrics *Metrics
	sem     *semaphore.Weighted
	router  chi.Router
	srv     *http.Server
}

func NewServer(cfg ServerConfig, runner BuildRunner, metrics *Metrics,
	gather prometheus.Gatherer) *Server {
	if cfg.MaxConcurrentBuilds < 1 {
		cfg.MaxConcurrentBuilds = 1
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	s := &Server{
		cfg:     cfg,
		runner:  runner,
		gather:  gather,
		metrics: metrics,
		sem:     semaphore.NewWeighted(int64(cfg.MaxConcurrentBuilds)),
		router:  chi.NewRouter(),
	}
	s.addRoutes()
	s.srv = &http.Server{
		Addr:              cfg.Addr + ":" + cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) addRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get(common.HealthPath, s.handleHealth)
	if s.gather != nil {
		r.Handle(common.MetricsPath, promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{}))
	}
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(bearerAuth(s.cfg.APIKey))
		}
		r.Post(common.BuildPath, s.handleBuild)
		r.Post(strings.TrimSuffix(common.BuildPath, "/"), s.handleBuild)
	})
}

func (s *Server) handleHealth(resp http.ResponseWriter, req *http.Request) {
	respJSON(resp, http.StatusOK, map[string]interface{}{
		"status":        "healthy",
		"device":        s.cfg.Device,
		"models_loaded": s.runner != nil,
	})
}

func (s *Server) handleBuild(resp http.ResponseWriter, req *http.Request) {
	start := time.Now()
	req.Body = http.MaxBytesReader(resp, req.Body, common.MaxUploadSize)
	if err := req.ParseMultipartForm(common.MaxUploadSize); err != nil {
		respError(resp, http.StatusUnprocessableEntity, fmt.Sprintf("invalid form: %v", err))
		return
	}
	task := req.FormValue("task")
	if task == "" {
		respError(resp, http.StatusUnprocessableEntity, "field required: task")
		return
	}
	f, _, err := req.FormFile("file")
	if err != nil {
		respError(resp, http.StatusUnprocessableEntity, "field required: file")
		return
	}
	defer f.Close()
	image, err := io.ReadAll(f)
	if err != nil {
		respError(resp, http.StatusUnprocessableEntity, fmt.Sprintf("error reading file: %v", err))
		return
	}

	if err := s.sem.Acquire(req.Context(), 1); err != nil {
		respError(resp, http.StatusServiceUnavailable, err.Error())
		return
	}
	defer s.sem.Release(1)

	log.Debugf("Build request %s: %q, %d bytes", middleware.GetReqID(req.Context()), task, len(image))
	res, err := s.runner.Build(req.Context(), &som.TaskRequest{Task: task, Image: image})
	if err != nil {
		log.Errorf("Build failed: %v", err)
		s.metrics.observeRequest("error", time.Since(start))
		respError(resp, http.StatusInternalServerError, err.Error())
		return
	}
	s.metrics.observeRequest("ok", time.Since(start))
	respJSON(resp, http.StatusOK, res)
}

func bearerAuth(key string) func(http.Handler) http.Handler {
	want := []byte("Bearer " + key)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
			got := []byte(req.Header.Get("Authorization"))
			if subtle.ConstantTimeCompare(got, want) != 1 {
				respError(resp, http.StatusUnauthorized, "invalid or missing API key")
				return
			}
			next.ServeHTTP(resp, req)
		})
	}
}

// StartServer listens on the configured address and serves until ctx is
// done. It returns once every in-flight request has finished or the shutdown
// timeout expired.
func (s *Server) StartServer(ctx context.Context) error {
	l, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	log.Infof("Starting builder on %s", l.Addr())
	return s.Serve(ctx, l)
}

// Serve is StartServer on an existing listener.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	errc := make(chan error, 1)
	go func() {
		errc <- s.srv.Serve(l)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	stopErr := s.Stop()
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("Server closed")
	return stopErr
}

// Stop closes the listener and waits for in-flight requests, at most
// ShutdownTimeout.
func (s *Server) Stop() error {
	log.Debugf("Stopping builder")
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error stopping server: %w", err)
	}
	return nil
}

func respJSON(resp http.ResponseWriter, code int, v interface{}) {
	resp.Header().Set("Content-Type", "application/json")
	resp.WriteHeader(code)
	if err := json.NewEncoder(resp).Encode(v); err != nil {
		log.Errorf("Error writing response: %v", err)
	}
}

func respError(resp http.ResponseWriter, code int, msg string) {
	respJSON(resp, code, map[string]string{"detail": msg})
}
