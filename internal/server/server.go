package server

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/raysh454/phishscan/docs/swagger" // registers the OpenAPI document
	"github.com/raysh454/phishscan/internal/app"
	"github.com/raysh454/phishscan/internal/history"
	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/model"
)

const (
	maxRequestBody = 64 << 10
	wsWriteTimeout = 10 * time.Second
)

// Server is the HTTP + WebSocket API surface for phishscan.
type Server struct {
	cfg      Config
	app      *app.Application
	router   chi.Router
	upgrader websocket.Upgrader
	limiter  *ipLimiter
	logger   logging.Logger
}

// NewServer creates a Server on top of an already built Application. The
// Application stays owned by the caller.
func NewServer(cfg Config, application *app.Application) (*Server, error) {
	if application == nil {
		return nil, errors.New("server: nil application")
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		cfg:    cfg,
		app:    application,
		router: chi.NewRouter(),
		logger: application.Logger.With(logging.Field{Key: "component", Value: "server"}),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	if cfg.RateLimit > 0 {
		s.limiter = newIPLimiter(cfg.RateLimit)
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/analyze", s.optionsHandler("POST"))
	r.Options("/analyses", s.optionsHandler("GET"))
	r.Options("/analyses/{id}", s.optionsHandler("GET"))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.app.Metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Group(func(r chi.Router) {
		r.Use(s.rateLimit)

		r.Post("/analyze", s.handleAnalyze)
		r.Get("/analyses", s.handleListAnalyses)
		r.Get("/analyses/{id}", s.handleGetAnalysis)

		// WebSocket stream of one analysis
		r.Get("/ws/analyze", s.handleAnalyzeWS)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

	s.router.ServeHTTP(ww, r)

	s.logger.Info("http_request",
		logging.Field{Key: "method", Value: r.Method},
		logging.Field{Key: "path", Value: r.URL.Path},
		logging.Field{Key: "status", Value: ww.Status()},
		logging.Field{Key: "bytes", Value: ww.BytesWritten()},
		logging.Field{Key: "remote", Value: clientIP(r)},
		logging.Field{Key: "elapsed", Value: time.Since(start).String()})
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0, // allow streaming
		IdleTimeout:       60 * time.Second,
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// rejectionStatus maps a pipeline error to its HTTP status and payload.
func rejectionStatus(err error) (int, ErrorResponse) {
	body := ErrorResponse{Error: err.Error()}
	var rej *model.RejectionError
	if errors.As(err, &rej) {
		body.State = rej.State
	}
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest, body
	case errors.Is(err, model.ErrSSRFRisk), errors.Is(err, model.ErrResolutionFailed):
		return http.StatusUnprocessableEntity, body
	default:
		return http.StatusInternalServerError, body
	}
}

// --- HTTP handlers ---

// handleHealth godoc
// @Summary Liveness probe
// @Tags ops
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", History: s.app.History != nil})
}

// handleAnalyze godoc
// @Summary Analyze a URL
// @Description Runs normalization, the SSRF guard, heuristics, favicon fingerprinting and enrichment.
// @Tags analysis
// @Accept json
// @Accept x-www-form-urlencoded
// @Produce json
// @Param request body model.AnalysisRequest true "URL to analyze"
// @Success 200 {object} model.AnalysisResult
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /analyze [post]
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	raw, err := readTarget(w, r)
	if err != nil {
		s.logger.Warn("decoding analyze body", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.app.Analyze(r.Context(), raw, nil)
	if err != nil {
		status, body := rejectionStatus(err)
		s.logger.Info("analysis rejected",
			logging.Field{Key: "status", Value: status},
			logging.Field{Key: "error", Value: err.Error()})
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// readTarget accepts either a JSON body or a urlencoded form.
func readTarget(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body model.AnalysisRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", errors.New("invalid JSON")
		}
		return body.URL, nil
	}
	if err := r.ParseForm(); err != nil {
		return "", errors.New("invalid form body")
	}
	return r.PostForm.Get("url"), nil
}

// handleListAnalyses godoc
// @Summary List recorded analyses
// @Tags history
// @Produce json
// @Param limit query int false "maximum rows" default(20)
// @Param favicon_hash query string false "only analyses whose favicon hash matches"
// @Success 200 {array} history.Summary
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /analyses [get]
func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	if s.app.History == nil {
		writeError(w, http.StatusServiceUnavailable, "history is disabled")
		return
	}

	opts := history.ListOptions{FaviconHash: r.URL.Query().Get("favicon_hash")}
	if ls := r.URL.Query().Get("limit"); ls != "" {
		v, err := strconv.Atoi(ls)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		opts.Limit = v
	}

	rows, err := s.app.History.List(r.Context(), opts)
	if err != nil {
		s.logger.Warn("listing analyses", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "failed to list analyses")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleGetAnalysis godoc
// @Summary Fetch one recorded analysis
// @Tags history
// @Produce json
// @Param id path string true "analysis id"
// @Success 200 {object} model.AnalysisResult
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /analyses/{id} [get]
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.app.History == nil {
		writeError(w, http.StatusServiceUnavailable, "history is disabled")
		return
	}

	id := chi.URLParam(r, "id")
	res, err := s.app.History.Get(r.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	if err != nil {
		s.logger.Warn("getting analysis", logging.Field{Key: "id", Value: id}, logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "failed to load analysis")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// WebSockets

// handleAnalyzeWS godoc
// @Summary Stream one analysis
// @Description Upgrades to a websocket, sends one "stage" message per state transition and then a single "result" or "error" message.
// @Tags analysis
// @Param url query string true "URL to analyze"
// @Success 101 {object} StreamMessage
// @Router /ws/analyze [get]
func (s *Server) handleAnalyzeWS(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Transitions arrive synchronously on this goroutine, so it is the only
	// writer on conn. A failed write means the client went away; the
	// remaining stages are cut short and Analyze still records the result.
	gone := false
	send := func(msg StreamMessage) {
		if gone {
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			gone = true
			cancel()
		}
	}

	res, err := s.app.Analyze(ctx, raw, func(ev model.StageEvent) {
		send(StreamMessage{Type: StreamStage, Event: &ev})
	})
	if gone {
		return
	}

	if err != nil {
		status, body := rejectionStatus(err)
		send(StreamMessage{Type: StreamError, Error: &body, Status: status})
	} else {
		send(StreamMessage{Type: StreamResult, Result: res, Status: http.StatusOK})
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}
