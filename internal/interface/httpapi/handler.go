package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"travel-records-service/internal/domain/entity"
	"travel-records-service/internal/usecase"
	"travel-records-service/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Handler exposes the record service over HTTP. Records are written in the
// external field shape; request bodies may use either shape.
type Handler struct {
	service *usecase.RecordService
	version string
	logger  logger.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(service *usecase.RecordService, version string, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		version: version,
		logger:  log.With("component", "httpapi"),
	}
}

// Register adds the API routes to mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/{$}", h.index)

	for _, kind := range entity.Kinds {
		base := "/api/" + string(kind) + "s"
		mux.HandleFunc("GET "+base, h.list(kind))
		mux.HandleFunc("POST "+base, h.create(kind))
		mux.HandleFunc("GET "+base+"/{id}", h.get(kind))
		mux.HandleFunc("PUT "+base+"/{id}", h.update(kind))
		mux.HandleFunc("DELETE "+base+"/{id}", h.delete(kind))
	}

	mux.HandleFunc("GET /api/search", h.search)
	mux.HandleFunc("POST /api/search/advanced", h.advancedSearch)
	mux.HandleFunc("GET /api/stats", h.stats)
	mux.HandleFunc("GET /api/health", h.health)
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	endpoints := map[string]string{
		"GET /api/search":           "Search records (type, field, value)",
		"POST /api/search/advanced": "Search all records by exact field values",
		"GET /api/stats":            "Get system statistics",
		"GET /api/health":           "Health check",
	}
	for _, kind := range entity.Kinds {
		base := "/api/" + string(kind) + "s"
		endpoints["GET "+base] = "Get all " + string(kind) + "s"
		endpoints["POST "+base] = "Create a new " + string(kind)
		endpoints["GET "+base+"/{id}"] = "Get " + string(kind) + " by ID"
		endpoints["PUT "+base+"/{id}"] = "Update " + string(kind)
		endpoints["DELETE "+base+"/{id}"] = "Delete " + string(kind)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Travel Records API",
		"version":   h.version,
		"endpoints": endpoints,
	})
}

func (h *Handler) list(kind entity.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, externalAll(h.service.ReadAll(kind)))
	}
}

func (h *Handler) get(kind entity.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		rec, found := h.service.Read(id, kind)
		if !found {
			writeNotFound(w, kind, id)
			return
		}
		writeJSON(w, http.StatusOK, entity.ToExternal(rec))
	}
}

func (h *Handler) create(kind entity.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, ok := h.decodeBody(w, r)
		if !ok {
			return
		}
		rec, err := h.service.CreateAs(kind, data)
		if err != nil {
			h.writeError(w, err, rec)
			return
		}
		writeJSON(w, http.StatusCreated, entity.ToExternal(rec))
	}
}

func (h *Handler) update(kind entity.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		data, ok := h.decodeBody(w, r)
		if !ok {
			return
		}
		rec, found, err := h.service.Update(id, kind, data)
		if err != nil {
			h.writeError(w, err, rec)
			return
		}
		if !found {
			writeNotFound(w, kind, id)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message": fmt.Sprintf("%s %d updated successfully", title(kind), id),
			"id":      id,
			"record":  entity.ToExternal(rec),
		})
	}
}

func (h *Handler) delete(kind entity.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		deleted, err := h.service.Delete(id, kind)
		if err != nil {
			h.writeError(w, err, nil)
			return
		}
		if !deleted {
			writeNotFound(w, kind, id)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message": fmt.Sprintf("%s %d deleted successfully", title(kind), id),
			"id":      id,
		})
	}
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	recordType := q.Get("type")
	field := q.Get("field")
	if field == "" {
		field = usecase.SearchAllFields
	}
	value := q.Get("value")

	if recordType == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("Record type is required (type=client|airline|flight)"))
		return
	}
	if value == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("Search value is required"))
		return
	}

	results, err := h.service.SearchByField(recordType, field, value)
	if err != nil {
		h.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": externalAll(results),
		"count":   len(results),
		"parameters": map[string]string{
			"type":  recordType,
			"field": field,
			"value": value,
		},
	})
}

func (h *Handler) advancedSearch(w http.ResponseWriter, r *http.Request) {
	criteria, ok := h.decodeBody(w, r)
	if !ok {
		return
	}
	results := h.service.AdvancedSearch(criteria)
	writeJSON(w, http.StatusOK, map[string]any{
		"results":  externalAll(results),
		"count":    len(results),
		"criteria": criteria,
	})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	st := h.service.Statistics()
	writeJSON(w, http.StatusOK, map[string]any{
		"statistics": map[string]int{
			"clients":       st.Clients,
			"airlines":      st.Airlines,
			"flights":       st.Flights,
			"total_records": st.TotalRecords,
		},
		"flight_analysis": map[string]any{
			"unique_start_cities": st.UniqueStartCities,
			"unique_end_cities":   st.UniqueEndCities,
			"start_cities":        st.StartCities,
			"end_cities":          st.EndCities,
		},
		"next_id": st.NextID,
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	hc, err := h.service.Health()
	if err != nil {
		h.logger.Error("Health check failed", "error", err)
		status = http.StatusServiceUnavailable
	}

	body := map[string]any{
		"status":  hc.Status,
		"version": h.version,
		"records": hc.Records,
		"data_file": map[string]any{
			"path":   hc.DataFile.Path,
			"exists": hc.DataFile.Exists,
			"size":   hc.DataFile.Size,
		},
	}
	if hc.DataFile.Exists {
		body["data_file"].(map[string]any)["modified"] = hc.DataFile.ModTime
	}
	if hc.LoadWarning != "" {
		body["load_warning"] = hc.LoadWarning
	}
	writeJSON(w, status, body)
}

// decodeBody reads a JSON object, keeping numbers as json.Number
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Could not read request body"))
		return nil, false
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("No data provided"))
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil || data == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Request body must be a JSON object"))
		return nil, false
	}
	return data, true
}

// writeError maps service errors to responses. rec is the record that was
// changed in memory when only the save failed.
func (h *Handler) writeError(w http.ResponseWriter, err error, rec entity.Record) {
	switch {
	case errors.Is(err, entity.ErrUnknownType), errors.Is(err, entity.ErrValidation):
		body := errorBody(err.Error())
		var ve *entity.ValidationError
		if errors.As(err, &ve) && ve.Field != "" {
			body["field"] = ve.Field
		}
		writeJSON(w, http.StatusBadRequest, body)
	case errors.Is(err, entity.ErrPersistence):
		h.logger.Error("Change applied in memory but not saved", "error", err)
		body := errorBody(err.Error())
		body["durable"] = false
		if rec != nil {
			body["record"] = entity.ToExternal(rec)
		}
		writeJSON(w, http.StatusInternalServerError, body)
	default:
		h.logger.Error("Request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(fmt.Sprintf("Invalid ID %q", r.PathValue("id"))))
		return 0, false
	}
	return id, true
}

func writeNotFound(w http.ResponseWriter, kind entity.Kind, id int) {
	writeJSON(w, http.StatusNotFound, errorBody(fmt.Sprintf("%s with ID %d not found", title(kind), id)))
}

func externalAll(records []entity.Record) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		out = append(out, entity.ToExternal(rec))
	}
	return out
}

func errorBody(msg string) map[string]any {
	return map[string]any{"error": msg}
}

func title(kind entity.Kind) string {
	s := string(kind)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
