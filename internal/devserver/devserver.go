// Package devserver hosts the reactpy-devtools HTTP/WebSocket server: a
// standalone harness that serves import-source modules and static
// assets, replays recorded layout-update traces over a simulated
// server connection, and exposes Prometheus metrics, so a frontend
// built against pkg/vclient can be exercised without a real Python
// ReactPy backend.
//
// Its lifecycle (New/Run/Shutdown, graceful signal handling) mirrors
// pkg/server.Server; unlike that server it has no
// session/auth/resume machinery, since the plain JSON-over-WebSocket
// protocol this runtime speaks has no equivalent of those concerns.
package devserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/reactpy-go/client/internal/config"
)

const tracerName = "reactpy-devtools"

// Server is the devtools HTTP/WebSocket harness.
type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	router     chi.Router
	httpServer *http.Server
	upgrader   websocket.Upgrader
	tracer     trace.Tracer

	mirror *Mirror // nil when no S3 bucket is configured

	sessions   prometheus.Counter
	sentFrames prometheus.Counter
}

// New builds a Server from cfg. The returned Server has not started
// listening; call Run to do that.
func New(cfg *config.Config, mirror *Mirror, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		mirror:   mirror,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		tracer:   otel.Tracer(tracerName),
		sessions: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "reactpy_devtools",
			Name:      "replay_sessions_total",
			Help:      "Number of simulated WebSocket sessions served.",
		}),
		sentFrames: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "reactpy_devtools",
			Name:      "replay_frames_sent_total",
			Help:      "Number of layout-update frames sent to replay clients.",
		}),
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/modules/{name}", s.handleModule)
	r.Get("/assets/*", s.handleAssets)
	r.Get("/stream", s.handleStream)
	if cfg.Observe.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	s.router = r

	return s
}

// Handler exposes the devserver's routes as a plain http.Handler, for
// embedding inside a larger chi mux the way
// server.Handler() is meant to be mounted under a caller's own router.
func (s *Server) Handler() http.Handler { return s.router }

// Run starts the HTTP listener and blocks until it is shut down, either
// by a delivered SIGINT/SIGTERM or by ctx's cancellation.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("devserver starting", "addr", s.cfg.Addr())
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-shutdown:
		s.logger.Info("devserver shutting down")
		return s.Shutdown(context.Background())
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully stops the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("devserver shutdown error", "error", err)
		return err
	}
	s.logger.Info("devserver shutdown complete")
	return nil
}

// handleModule serves a cached ES module bundle from ModulesDir,
// fetching it through the mirror on a cache miss when one is
// configured — the offline-serving side of ImportSource NAME
// resolution.
func (s *Server) handleModule(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	path, err := s.resolveModule(r.Context(), name)
	if err != nil {
		s.logger.Warn("module resolve failed", "name", name, "error", err)
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	http.ServeFile(w, r, path)
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	http.StripPrefix("/assets/", http.FileServer(http.Dir(s.cfg.Server.AssetsDir))).ServeHTTP(w, r)
}

// handleStream upgrades to a WebSocket and, per the query string's
// `trace` parameter, replays a recorded sequence of layout-update
// frames at their originally recorded intervals — the devtools
// equivalent of a real ReactPy server driving pkg/vclient.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := uuid.New().String()
	ctx, span := s.tracer.Start(r.Context(), "devserver.stream")
	defer span.End()
	span.SetAttributes(
		attribute.String("trace.file", r.URL.Query().Get("trace")),
		attribute.String("session.id", sessionID),
	)
	logger := s.logger.With("session_id", sessionID)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upgrade failed")
		logger.Warn("stream upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	s.sessions.Inc()

	tracePath := r.URL.Query().Get("trace")
	if tracePath == "" {
		span.SetStatus(codes.Error, "no trace parameter")
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseUnsupportedData, "missing trace parameter"))
		return
	}

	frames, err := LoadTrace(tracePath)
	if err != nil {
		span.RecordError(err)
		logger.Error("trace load failed", "path", tracePath, "error", err)
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "trace unreadable"))
		return
	}

	if err := replay(ctx, conn, frames, s.sentFrames); err != nil {
		span.RecordError(err)
		logger.Info("stream ended", "error", err)
	}
}

// replay writes each frame's payload to conn, sleeping between writes
// for the recorded inter-frame delay, and stops early if the client
// disconnects or ctx is cancelled.
func replay(ctx context.Context, conn *websocket.Conn, frames []Frame, sent prometheus.Counter) error {
	for i, f := range frames {
		if i > 0 {
			select {
			case <-time.After(f.DelaySince(frames[i-1])):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := conn.WriteMessage(websocket.TextMessage, f.Payload); err != nil {
			return err
		}
		sent.Inc()
	}
	return nil
}
