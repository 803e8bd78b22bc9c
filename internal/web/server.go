package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kcal-cli/internal/nutrition"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ServerConfig struct {
	Addr string

	// AllowOrigin is sent as Access-Control-Allow-Origin so a browser page
	// served elsewhere can call the API. Empty disables CORS headers.
	AllowOrigin string
}

type Server struct {
	cfg     ServerConfig
	svc     *nutrition.Service
	log     *zap.Logger
	metrics *requestCounter
}

func NewServer(cfg ServerConfig, svc *nutrition.Service, log *zap.Logger) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.AllowOrigin = strings.TrimSpace(cfg.AllowOrigin)
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if svc == nil {
		return nil, errors.New("web: nil service")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{cfg: cfg, svc: svc, log: log, metrics: newRequestCounter()}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /products/CalculateCalories", s.handleCalculate)
	mux.HandleFunc("GET /products/{$}", s.handleProductsList)
	mux.HandleFunc("POST /products/create", s.handleProductCreate)
	mux.HandleFunc("GET /products/{id}", s.handleProductGet)
	mux.HandleFunc("PUT /products/update/{id}", s.handleProductUpdate)
	mux.HandleFunc("DELETE /products/delete/{id}", s.handleProductDelete)

	mux.HandleFunc("GET /meals/{$}", s.handleMealsList)
	mux.HandleFunc("GET /meals/{id}", s.handleMealGet)
	mux.HandleFunc("POST /meals/{id}/products", s.handleMealAddProduct)

	mux.HandleFunc("GET /metrics/requests", s.handleMetrics)
	mux.HandleFunc("POST /mcp/tools/call", s.handleToolCall)

	return s.withRequestLog(s.withCORS(mux))
}

// withRequestLog tags each request with an id, counts it and logs it.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := r.Pattern
		if route == "" {
			route = r.Method + " " + r.URL.Path
		}
		s.metrics.inc(route)
		s.log.Info("request",
			zap.String("id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rw.status),
			zap.Duration("took", time.Since(start)))
	})
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	if s.cfg.AllowOrigin == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.AllowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError maps service errors onto HTTP statuses; unknown errors are 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	msg := "internal server error"
	switch {
	case nutrition.IsBadRequest(err):
		code = http.StatusBadRequest
		msg = err.Error()
	case nutrition.IsNotFound(err):
		code = http.StatusNotFound
		msg = err.Error()
	default:
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, code, errorBody{Status: code, Error: http.StatusText(code), Message: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, code int, s string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(s))
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &nutrition.BadRequestError{Message: "invalid id: " + raw}
	}
	return id, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, &nutrition.BadRequestError{Message: "parameter '" + name + "' is required"}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &nutrition.BadRequestError{Message: "parameter '" + name + "' must be an integer"}
	}
	return n, nil
}
