package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/good-yellow-bee/blazealert/internal/collector"
	"github.com/good-yellow-bee/blazealert/internal/models"
	"github.com/good-yellow-bee/blazealert/internal/storage"
)

func (s *Server) queryContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.config.QueryTimeout)
}

// submitAlert handles POST /api/v1/alerts.
// The body is a raw collector record; validation failures are 400,
// storage failures 500. A merged duplicate still returns 201 with the
// surviving alert.
func (s *Server) submitAlert(w http.ResponseWriter, r *http.Request) {
	var rec collector.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		JSONError(w, NewBadRequest("invalid JSON body: "+err.Error()))
		return
	}

	alert, err := s.collector.Collect(rec)
	if err != nil {
		JSONError(w, NewValidationError(err.Error()))
		return
	}

	ctx, cancel := s.queryContext(r)
	defer cancel()

	stored, err := s.aggregator.Ingest(ctx, alert)
	if err != nil {
		log.Printf("ingest failed: %v", err)
		JSONError(w, ErrInternalServer)
		return
	}

	Created(w, stored)
}

// listAlerts handles GET /api/v1/alerts with optional severity,
// status, source, and limit query parameters.
func (s *Server) listAlerts(w http.ResponseWriter, r *http.Request) {
	filter, apiErr := parseQueryFilter(r)
	if apiErr != nil {
		JSONError(w, apiErr)
		return
	}

	ctx, cancel := s.queryContext(r)
	defer cancel()

	alerts, err := s.aggregator.GetAlerts(ctx, filter)
	if err != nil {
		log.Printf("list alerts failed: %v", err)
		JSONError(w, ErrInternalServer)
		return
	}

	OK(w, ListResponse{Items: alerts, Count: len(alerts)})
}

func (s *Server) getAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := s.queryContext(r)
	defer cancel()

	alert, err := s.aggregator.GetAlert(ctx, id)
	if err != nil {
		log.Printf("get alert %s failed: %v", id, err)
		JSONError(w, ErrInternalServer)
		return
	}
	if alert == nil {
		JSONError(w, NewNotFound("alert not found"))
		return
	}

	OK(w, alert)
}

// acknowledgeRequest is the optional body of an acknowledge call.
type acknowledgeRequest struct {
	By string `json:"by"`
}

func (s *Server) acknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req acknowledgeRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JSONError(w, NewBadRequest("invalid JSON body: "+err.Error()))
			return
		}
	}

	ctx, cancel := s.queryContext(r)
	defer cancel()

	ok, err := s.aggregator.Acknowledge(ctx, id, req.By)
	if err != nil {
		log.Printf("acknowledge %s failed: %v", id, err)
		JSONError(w, ErrInternalServer)
		return
	}
	if !ok {
		JSONError(w, NewNotFound("alert not found"))
		return
	}

	alert, err := s.aggregator.GetAlert(ctx, id)
	if err != nil || alert == nil {
		// Acknowledged but re-read failed; report success anyway.
		OK(w, map[string]string{"id": id, "status": string(models.StatusAcknowledged)})
		return
	}
	OK(w, alert)
}

func (s *Server) resolveAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := s.queryContext(r)
	defer cancel()

	ok, err := s.aggregator.Resolve(ctx, id)
	if err != nil {
		log.Printf("resolve %s failed: %v", id, err)
		JSONError(w, ErrInternalServer)
		return
	}
	if !ok {
		JSONError(w, NewNotFound("alert not found"))
		return
	}

	alert, err := s.aggregator.GetAlert(ctx, id)
	if err != nil || alert == nil {
		OK(w, map[string]string{"id": id, "status": string(models.StatusResolved)})
		return
	}
	OK(w, alert)
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	OK(w, s.aggregator.GetStats())
}

// cleanupRequest is the optional body of a cleanup call.
type cleanupRequest struct {
	Days int `json:"days"`
}

func (s *Server) cleanupAlerts(w http.ResponseWriter, r *http.Request) {
	req := cleanupRequest{Days: 30}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JSONError(w, NewBadRequest("invalid JSON body: "+err.Error()))
			return
		}
	}
	if req.Days <= 0 {
		JSONError(w, NewValidationError("days must be positive"))
		return
	}

	ctx, cancel := s.queryContext(r)
	defer cancel()

	removed, err := s.aggregator.CleanupOldAlerts(ctx, req.Days)
	if err != nil {
		log.Printf("cleanup failed: %v", err)
		JSONError(w, ErrInternalServer)
		return
	}

	OK(w, CleanupResponse{Removed: removed})
}

// parseQueryFilter builds a storage filter from list query parameters,
// rejecting unknown severity or status values.
func parseQueryFilter(r *http.Request) (storage.QueryFilter, *Error) {
	var filter storage.QueryFilter
	q := r.URL.Query()

	if v := q.Get("severity"); v != "" {
		sev, err := models.ParseSeverity(v)
		if err != nil {
			return filter, NewValidationError("unknown severity: " + v)
		}
		filter.Severity = sev
	}
	if v := q.Get("status"); v != "" {
		st, err := models.ParseStatus(v)
		if err != nil {
			return filter, NewValidationError("unknown status: " + v)
		}
		filter.Status = st
	}
	filter.Source = q.Get("source")

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return filter, NewValidationError("limit must be a positive integer")
		}
		filter.Limit = n
	}

	return filter, nil
}
