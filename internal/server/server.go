// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz      liveness and build version
//	GET  /v1/options   engraving option descriptors with their defaults
//	POST /v1/layout    lay out one document, body is a pipeline.Options
//
// Every request gets an X-Request-ID (kept when the client sends one) that
// is echoed in the response and reported to the server hooks.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/stavelayout/pkg/buildinfo"
	"github.com/matzehuels/stavelayout/pkg/config"
	"github.com/matzehuels/stavelayout/pkg/errors"
	"github.com/matzehuels/stavelayout/pkg/layout"
	"github.com/matzehuels/stavelayout/pkg/observability"
	"github.com/matzehuels/stavelayout/pkg/pipeline"
)

const (
	// DefaultMaxBody limits the size of a layout request.
	DefaultMaxBody = 8 << 20

	// DefaultTimeout bounds a single layout run.
	DefaultTimeout = 30 * time.Second

	headerRequestID = "X-Request-ID"
)

// Server handles layout requests with a shared pipeline runner.
type Server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	router  chi.Router
	maxBody int64
	timeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithMaxBody sets the request body limit in bytes.
func WithMaxBody(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithTimeout sets the per-request layout timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New returns a server running documents through runner.
func New(runner *pipeline.Runner, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner:  runner,
		logger:  logger,
		maxBody: DefaultMaxBody,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/options", s.handleOptions)
		r.Post("/layout", s.handleLayout)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// =============================================================================
// Middleware
// =============================================================================

type ctxKey int

const requestIDKey ctxKey = 0

// RequestID returns the id assigned to the request carried by ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		w.Header().Set(headerRequestID, id)

		hooks := observability.Server()
		hooks.OnRequest(ctx, id, r.Method, r.URL.Path)
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r.WithContext(ctx))
		elapsed := time.Since(start)
		hooks.OnResponse(ctx, id, r.Method, r.URL.Path, sw.status, elapsed)

		s.logger.Debug("request", "id", id, "method", r.Method, "path", r.URL.Path,
			"status", sw.status, "duration", elapsed)
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				s.logger.Error("panic in handler", "id", RequestID(r.Context()), "panic", v)
				writeError(w, r, errors.New(errors.ErrCodeInternal, "internal error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// OptionInfo describes one engraving option.
type OptionInfo struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Default     float64 `json:"default"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	out := make([]OptionInfo, 0, len(config.Descriptors))
	for _, d := range config.Descriptors {
		out = append(out, OptionInfo{
			Name:        d.Name,
			Description: d.Description,
			Default:     d.Default,
			Min:         d.Min,
			Max:         d.Max,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// LayoutResponse is the body of a successful layout request. Text formats
// (json, svg) are returned as strings, binary ones base64 encoded.
type LayoutResponse struct {
	RequestID    string             `json:"request_id"`
	DocumentHash string             `json:"document_hash"`
	LayoutHash   string             `json:"layout_hash"`
	Page         *layout.Page       `json:"page"`
	Text         map[string]string  `json:"text,omitempty"`
	Binary       map[string][]byte  `json:"binary,omitempty"`
	Stats        pipeline.Stats     `json:"stats"`
	Cache        pipeline.CacheInfo `json:"cache"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	defaults := config.Default()
	opts := pipeline.Options{Engraving: &defaults}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "decode request: %v", err))
		return
	}
	if opts.Document == "" {
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "document is required"))
		return
	}
	opts.Logger = s.logger.With("request_id", RequestID(r.Context()))

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	res, err := s.runner.Execute(ctx, opts)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			err = errors.Wrap(errors.ErrCodeTimeout, err, "layout timed out")
		}
		writeError(w, r, err)
		return
	}

	resp := LayoutResponse{
		RequestID:    RequestID(r.Context()),
		DocumentHash: res.DocumentHash,
		LayoutHash:   res.LayoutHash,
		Page:         res.Page,
		Stats:        res.Stats,
		Cache:        res.CacheInfo,
	}
	for format, data := range res.Artifacts {
		switch format {
		case pipeline.FormatJSON, pipeline.FormatSVG:
			if resp.Text == nil {
				resp.Text = map[string]string{}
			}
			resp.Text[format] = string(data)
		default:
			if resp.Binary == nil {
				resp.Binary = map[string][]byte{}
			}
			resp.Binary[format] = data
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, statusFor(code), errorBody{
		Code:      code,
		Message:   errors.UserMessage(err),
		RequestID: RequestID(r.Context()),
	})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidDocument,
		errors.ErrCodeInvalidOption, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeUnresolvedReference:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
