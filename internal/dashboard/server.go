package dashboard

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/pablasso/oracle/internal/state"
)

// DefaultAddr is the loopback address the dashboard binds to.
const DefaultAddr = "localhost:9000"

const shutdownTimeout = 10 * time.Second

// Server renders the state document on every request. It never writes
// to the document except through Load's reset of a missing or corrupt file.
type Server struct {
	Logger  *slog.Logger
	Store   *state.Store
	Options Options
}

// Handler returns the dashboard handler wrapped in logging and recovery.
// Every path serves the same page.
func (s *Server) Handler() http.Handler {
	var h http.Handler = http.HandlerFunc(s.handleDashboard)
	h = LoggingMiddleware(s.Logger)(h)
	h = RecoverMiddleware(s.Logger)(h)
	return h
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	st, err := s.Store.Load()
	if err != nil {
		s.logger().Error("failed to load state", "err", err)
		http.Error(w, "failed to load state", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := Render(&buf, st, s.Options); err != nil {
		s.logger().Error("failed to render dashboard", "err", err)
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// ListenAndServe binds addr and serves until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger().Info("dashboard listening", "addr", "http://"+ln.Addr().String())
		errCh <- httpSrv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger().Info("dashboard shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
