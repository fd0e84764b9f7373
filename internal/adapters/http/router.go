package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vocabhub/wordlist-api/internal/config"
	"github.com/vocabhub/wordlist-api/internal/core/ports"
	"github.com/vocabhub/wordlist-api/internal/observability/metrics"
)

const (
	serviceName = "Wordlist API"
	apiVersion  = "1.0"
)

type Router struct {
	cfg       config.Config
	metrics   *metrics.APIMetrics
	wordlists wordlistService
}

// wordlistService bundles the inbound ports the router depends on.
type wordlistService interface {
	ports.WordlistCatalog
	ports.WordlistQueryService
	ports.WordlistUpdater
}

func NewRouter(cfg config.Config, m *metrics.APIMetrics, wordlists wordlistService) *Router {
	return &Router{
		cfg:       cfg,
		metrics:   m,
		wordlists: wordlists,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", rt.root)
	mux.HandleFunc("/files", rt.listFiles)
	mux.HandleFunc("/file/", rt.getFile)
	mux.HandleFunc("/search/", rt.search)
	mux.HandleFunc("/update/", rt.updateItem)
	mux.HandleFunc("/stats/", rt.stats)
	mux.HandleFunc("/categories/", rt.categories)
	mux.HandleFunc("/item/", rt.getItem)
	mux.HandleFunc("/health", rt.health)
	mux.HandleFunc("/openapi.json", rt.openapi)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = corsMiddleware(handler)
	if rt.cfg.APIMaxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, time.Duration(rt.cfg.APIQueueTimeoutMS)*time.Millisecond)
	}
	if rt.cfg.APIRateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware("api", handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	files, err := rt.wordlists.ListWordFiles(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"api":         serviceName,
		"version":     apiVersion,
		"description": "Word-list documents over HTTP for the mobile client",
		"endpoints": map[string]string{
			"files":      "/files",
			"file":       "/file/{filename}",
			"search":     "/search/{filename}?q={query}&field={field}",
			"update":     "/update/{filename}/{item_id}",
			"item":       "/item/{filename}/{item_id}",
			"stats":      "/stats/{filename}",
			"categories": "/categories/{filename}",
			"health":     "/health",
			"openapi":    "/openapi.json",
		},
		"available_files": files,
	})
}

func (rt *Router) listFiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	files, err := rt.wordlists.ListWordFiles(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(files),
		"files":   files,
	})
}

func (rt *Router) getFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	filename := strings.TrimPrefix(r.URL.Path, "/file/")
	if filename == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "filename is required"})
		return
	}

	doc, err := rt.wordlists.GetWordFile(r.Context(), filename)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, doc.Root)
}

func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	filename := strings.TrimPrefix(r.URL.Path, "/search/")
	if filename == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "filename is required"})
		return
	}
	// An empty q is a valid query that matches every item; only a missing
	// parameter is an error.
	if !r.URL.Query().Has("q") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query parameter 'q' is required"})
		return
	}
	query := r.URL.Query().Get("q")
	field := r.URL.Query().Get("field")

	results, err := rt.wordlists.SearchWordItems(r.Context(), filename, query, field)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordSearchResults(len(results))
	}

	var fieldValue any
	if field != "" {
		fieldValue = field
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"query":    query,
		"field":    fieldValue,
		"filename": filename,
		"results":  results,
		"count":    len(results),
	})
}

func (rt *Router) updateItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	filename, itemID, ok := splitItemPath(r.URL.Path, "/update/")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "expected /update/{filename}/{item_id}"})
		return
	}

	learned, custom, err := parseUpdateRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	item, err := rt.wordlists.UpdateWordItem(r.Context(), filename, itemID, learned, custom)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordItemUpdate()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Item updated successfully",
		"filename": filename,
		"item_id":  itemID,
		"item":     item,
	})
}

// parseUpdateRequest reads learned/custom_data from the query string and,
// when present, from a JSON body. Query values win on conflict.
func parseUpdateRequest(r *http.Request) (*bool, map[string]any, error) {
	var learned *bool
	var custom map[string]any

	if r.Body != nil {
		var body struct {
			Learned    *bool          `json:"learned"`
			CustomData map[string]any `json:"custom_data"`
		}
		err := json.NewDecoder(r.Body).Decode(&body)
		switch {
		case errors.Is(err, io.EOF):
			// no body sent
		case err != nil:
			return nil, nil, fmt.Errorf("invalid JSON body: %v", err)
		default:
			learned = body.Learned
			custom = body.CustomData
		}
	}

	if raw := r.URL.Query().Get("learned"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid 'learned' value %q", raw)
		}
		learned = &value
	}
	if raw := r.URL.Query().Get("custom_data"); raw != "" {
		var fromQuery map[string]any
		if err := json.Unmarshal([]byte(raw), &fromQuery); err != nil {
			return nil, nil, fmt.Errorf("invalid 'custom_data' value: %v", err)
		}
		custom = fromQuery
	}
	return learned, custom, nil
}

func (rt *Router) stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	filename := strings.TrimPrefix(r.URL.Path, "/stats/")
	if filename == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "filename is required"})
		return
	}

	stats, err := rt.wordlists.WordFileStats(r.Context(), filename)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"filename":    filename,
		"overall":     stats.Overall,
		"by_category": stats.ByCategory,
	})
}

func (rt *Router) categories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	filename := strings.TrimPrefix(r.URL.Path, "/categories/")
	if filename == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "filename is required"})
		return
	}

	previews, err := rt.wordlists.ListWordCategories(r.Context(), filename)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"filename":         filename,
		"categories":       previews,
		"total_categories": len(previews),
	})
}

func (rt *Router) getItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	filename, itemID, ok := splitItemPath(r.URL.Path, "/item/")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "expected /item/{filename}/{item_id}"})
		return
	}

	item, err := rt.wordlists.GetWordItem(r.Context(), filename, itemID)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"item":    item,
	})
}

func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	available := 0
	if files, err := rt.wordlists.ListWordFiles(r.Context()); err == nil {
		available = len(files)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "healthy",
		"timestamp":       time.Now().Format(time.RFC3339),
		"available_files": available,
		"server":          serviceName,
	})
}

func splitItemPath(path, prefix string) (string, int64, bool) {
	rest := strings.TrimPrefix(path, prefix)
	filename, rawID, found := strings.Cut(rest, "/")
	if !found || filename == "" || rawID == "" {
		return "", 0, false
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return "", 0, false
	}
	return filename, id, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}
