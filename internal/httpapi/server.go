// Package httpapi exposes the dispatcher and reader over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/netutil"

	"github.com/ppiankov/taskgate/internal/config"
	"github.com/ppiankov/taskgate/internal/dispatch"
	"github.com/ppiankov/taskgate/internal/model"
	"github.com/ppiankov/taskgate/internal/reader"
)

// maxBody bounds the JSON body accepted by /run.
const maxBody = 64 << 10

// Dispatcher runs one instruction.
type Dispatcher interface {
	Run(ctx context.Context, instruction string) model.Outcome
}

// FileReader returns file contents.
type FileReader interface {
	Read(path string) (string, error)
}

// Server serves /run, /read, and /healthz.
type Server struct {
	cfg    config.HTTPConfig
	d      Dispatcher
	r      FileReader
	logger *slog.Logger
	srv    *http.Server

	mu sync.Mutex
	ln net.Listener
}

// New creates an HTTP server. A nil logger discards logs.
func New(cfg config.HTTPConfig, d Dispatcher, r FileReader, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{cfg: cfg, d: d, r: r, logger: logger}
	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /run", s.handleRun)
	mux.HandleFunc("GET /read", s.handleRead)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Start listens and serves. Blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.srv.Addr, err)
	}
	if s.cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConnections)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
	}()

	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Addr returns the listen address. After Start it is the bound address.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.srv.Addr
}

type runRequest struct {
	Task string `json:"task"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	task := r.URL.Query().Get("task")
	if task == "" && r.Body != nil {
		var req runRequest
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
		if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body"})
			return
		}
		task = req.Task
	}
	if task == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "task is required"})
		return
	}

	id := r.Header.Get("X-Request-Id")
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set("X-Request-Id", id)

	out := s.d.Run(dispatch.WithRequestID(r.Context(), id), task)
	status, body := outcomeResponse(out)
	writeJSON(w, status, body)
}

// outcomeResponse maps an Outcome to a status code and body.
func outcomeResponse(out model.Outcome) (int, map[string]string) {
	switch out.Kind {
	case model.KindSuccess, model.KindUnrecognized:
		return http.StatusOK, map[string]string{"message": out.Message}
	case model.KindSecurityRejected:
		return http.StatusBadRequest, map[string]string{"detail": out.Message}
	default:
		return http.StatusInternalServerError, map[string]string{"detail": out.Message}
	}
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	content, err := s.r.Read(path)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"content": content})
	case errors.Is(err, reader.ErrOutsideRoot):
		s.logger.WarnContext(r.Context(), "read rejected", "path", path)
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Path is outside the data root"})
	case errors.Is(err, reader.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "File not found"})
	default:
		s.logger.ErrorContext(r.Context(), "read failed", "path", path, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
