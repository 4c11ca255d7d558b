package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nutrichat/nutrichat/internal/tools"
)

const maxToolBodySize = 1 << 20 // 1MB

// ToolServerDeps holds dependencies for the HTTP tool surface.
type ToolServerDeps struct {
	Registry *tools.Registry
	Logger   *slog.Logger
}

// NewToolHandler builds the HTTP tool API:
//
//	GET  /health               liveness probe
//	GET  /v1/tools             registered tool metadata
//	POST /v1/tools/{name}      invoke a tool, body = JSON argument object
//
// Every invocation goes through the crash-isolating wrapper, so the response
// is always a normalized result envelope with HTTP 200; only transport-level
// problems (unknown tool, unparseable body) get error status codes.
func NewToolHandler(deps ToolServerDeps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(deps.Logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/v1/tools", handleListTools(deps))
	r.Post("/v1/tools/{name}", handleCallTool(deps))

	return r
}

func handleListTools(deps ToolServerDeps) http.HandlerFunc {
	type toolInfo struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Kind        string `json:"kind"`
		Version     string `json:"version"`
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		infos := make([]toolInfo, 0, len(deps.Registry.Names()))
		for _, name := range deps.Registry.Names() {
			spec, ok := deps.Registry.Get(name)
			if !ok {
				continue
			}
			infos = append(infos, toolInfo{
				Name:        spec.Name,
				Description: spec.Description,
				Kind:        string(spec.Kind),
				Version:     spec.Version,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"tools": infos})
	}
}

func handleCallTool(deps ToolServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		spec, ok := deps.Registry.Get(name)
		if !ok {
			httpError(w, http.StatusNotFound, "invalid_request_error", "unknown tool %q", name)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxToolBodySize)
		defer r.Body.Close()

		args := map[string]any{}
		if err := json.NewDecoder(r.Body).Decode(&args); err != nil && !errors.Is(err, io.EOF) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid argument body: %v", err)
			return
		}

		result := tools.Wrap(spec.Name, spec.Handler)(r.Context(), args)
		writeJSON(w, http.StatusOK, result)
	}
}

// requestID assigns a UUID to each request, echoed in the X-Request-ID
// response header so tool calls can be correlated with logs.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", w.Header().Get("X-Request-ID"),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
