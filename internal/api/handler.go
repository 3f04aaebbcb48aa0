// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/xeipuuv/gojsonschema"

	apperrors "registry-matcher/internal/common/errors"
	"registry-matcher/internal/common/logger"
	"registry-matcher/internal/models"
)

// MatchService is the surface the HTTP layer needs from the match service.
type MatchService interface {
	Scan(ctx context.Context, minConfidence int) (*models.ScanResult, error)
	GetPage(pageIndex int) (models.MatchPage, error)
	CandidateDetail(ctx context.Context, index int) (*models.CandidateDetail, error)
}

// scanRequestSchema bounds the threshold exactly like the review UI did:
// 50 to 95 in steps of 5. The field may be omitted; the configured default
// applies then.
const scanRequestSchema = `{
	"type": "object",
	"properties": {
		"minConfidence": {
			"type": "integer",
			"minimum": 50,
			"maximum": 95,
			"multipleOf": 5
		}
	},
	"additionalProperties": false
}`

type scanRequest struct {
	MinConfidence *int `json:"minConfidence"`
}

type scanResponse struct {
	ScanID         string `json:"scanId"`
	MinConfidence  int    `json:"minConfidence"`
	CandidateCount int    `json:"candidateCount"`
	PendingCount   int    `json:"pendingCount"`
	ReferenceCount int    `json:"referenceCount"`
	PairsCompared  int    `json:"pairsCompared"`
	SkippedRecords int    `json:"skippedRecords"`
	DurationMs     int64  `json:"durationMs"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type Handler struct {
	service          MatchService
	schema           *gojsonschema.Schema
	defaultThreshold int
	logger           logger.Logger
}

func NewHandler(service MatchService, defaultThreshold int, log logger.Logger) (*Handler, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(scanRequestSchema))
	if err != nil {
		return nil, fmt.Errorf("compile scan request schema: %w", err)
	}
	return &Handler{
		service:          service,
		schema:           schema,
		defaultThreshold: defaultThreshold,
		logger:           log.WithFields(map[string]interface{}{"component": "api"}),
	}, nil
}

// Routes mounts the match endpoints on a mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/scan", h.handleScan)
	mux.HandleFunc("GET /api/v1/matches", h.handleMatches)
	mux.HandleFunc("GET /api/v1/matches/{index}", h.handleMatchDetail)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "PARSE_ERROR", "failed to read request body", err.Error())
		return
	}

	result, err := h.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "PARSE_ERROR", "request body is not valid JSON", err.Error())
		return
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		h.writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeInvalidThreshold),
			"scan request validation failed", fmt.Sprintf("%v", errs))
		return
	}

	var req scanRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "PARSE_ERROR", "failed to decode request", err.Error())
		return
	}

	threshold := h.defaultThreshold
	if req.MinConfidence != nil {
		threshold = *req.MinConfidence
	}

	scan, err := h.service.Scan(r.Context(), threshold)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, scanResponse{
		ScanID:         scan.ScanID,
		MinConfidence:  scan.MinConfidence,
		CandidateCount: len(scan.Candidates),
		PendingCount:   scan.PendingCount,
		ReferenceCount: scan.ReferenceCount,
		PairsCompared:  scan.PairsCompared,
		SkippedRecords: scan.SkippedRecords,
		DurationMs:     scan.Duration.Milliseconds(),
	})
}

func (h *Handler) handleMatches(w http.ResponseWriter, r *http.Request) {
	pageIndex := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.writeError(w, http.StatusBadRequest, "PARSE_ERROR", "page must be a non-negative integer", raw)
			return
		}
		pageIndex = parsed
	}

	page, err := h.service.GetPage(pageIndex)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, page)
}

func (h *Handler) handleMatchDetail(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		h.writeError(w, http.StatusBadRequest, "PARSE_ERROR", "candidate index must be a non-negative integer", r.PathValue("index"))
		return
	}

	detail, err := h.service.CandidateDetail(r.Context(), index)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var se *apperrors.StandardError
	if errors.As(err, &se) {
		status := http.StatusInternalServerError
		switch se.Code {
		case apperrors.ErrCodeInvalidThreshold:
			status = http.StatusBadRequest
		case apperrors.ErrCodeNoScanResult:
			status = http.StatusNotFound
		case apperrors.ErrCodeScanCancelled:
			status = http.StatusConflict
		case apperrors.ErrCodeCitizenFetchFailed, apperrors.ErrCodeAddressLookupFailed:
			status = http.StatusServiceUnavailable
		}
		h.writeError(w, status, string(se.Code), se.Message, se.Details)
		return
	}
	h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error(), "")
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message, details string) {
	h.logger.Warn("request failed", map[string]interface{}{
		"status":  status,
		"code":    code,
		"message": message,
	})
	h.writeJSON(w, status, errorResponse{Code: code, Message: message, Details: details})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}
