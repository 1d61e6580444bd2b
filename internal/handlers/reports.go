package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hopespot/rescue-server/internal/export"
	"github.com/hopespot/rescue-server/internal/models"
	"github.com/hopespot/rescue-server/internal/store"
	"github.com/hopespot/rescue-server/internal/views"
)

// maxImportBytes caps bulk import payloads.
const maxImportBytes = 16 << 20

// ReportHandler serves report projections, CSV/JSON exports and the bulk
// data administration endpoints.
type ReportHandler struct {
	cases  *store.CaseStore
	logger *zap.SugaredLogger
}

// NewReportHandler creates a new report handler
func NewReportHandler(cases *store.CaseStore, logger *zap.SugaredLogger) *ReportHandler {
	return &ReportHandler{cases: cases, logger: logger}
}

type reportResponse struct {
	Summary  views.Summary        `json:"summary"`
	Cases    []models.RescueCase  `json:"cases"`
	Rescuers []views.RescuerStats `json:"rescuers"`
}

// Cases handles GET /api/v1/reports/cases with search/status/date filters.
func (h *ReportHandler) Cases(w http.ResponseWriter, r *http.Request) {
	q, err := parseReportQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	all := h.cases.ListAll()
	respondJSON(w, http.StatusOK, reportResponse{
		Summary:  views.Summarize(all, time.Now()),
		Cases:    views.Report(all, q),
		Rescuers: views.RescuerStatistics(all),
	})
}

// ExportCasesCSV handles GET /api/v1/reports/cases/export.csv
func (h *ReportHandler) ExportCasesCSV(w http.ResponseWriter, r *http.Request) {
	q, err := parseReportQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := export.CasesCSV(views.Report(h.cases.ListAll(), q))
	if err != nil {
		h.logger.Errorw("Failed to render case CSV", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to render report")
		return
	}
	serveDownload(w, b, "text/csv", fmt.Sprintf("rescue-reports-%s.csv", export.FileStamp(time.Now())))
}

// ExportRescuersCSV handles GET /api/v1/reports/rescuers/export.csv
func (h *ReportHandler) ExportRescuersCSV(w http.ResponseWriter, r *http.Request) {
	b, err := export.RescuersCSV(views.RescuerStatistics(h.cases.ListAll()))
	if err != nil {
		h.logger.Errorw("Failed to render rescuer CSV", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to render report")
		return
	}
	serveDownload(w, b, "text/csv", fmt.Sprintf("rescuer-assignments-%s.csv", export.FileStamp(time.Now())))
}

// ExportJSON handles GET /api/v1/data/export.json: the full case list as
// indented JSON, suitable for later re-import.
func (h *ReportHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	b, err := export.CasesJSON(h.cases.ListAll())
	if err != nil {
		h.logger.Errorw("Failed to render JSON export", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to render export")
		return
	}
	serveDownload(w, b, "application/json", fmt.Sprintf("hopespot-data-%s.json", export.FileStamp(time.Now())))
}

// Import handles POST /api/v1/data/import: wholesale replacement of the
// case list from a JSON array.
func (h *ReportHandler) Import(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read import payload")
		return
	}

	cases, err := export.ImportCases(body)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.cases.ReplaceAll(r.Context(), cases)
	h.logger.Infow("Data imported", "count", len(cases))
	respondJSON(w, http.StatusOK, map[string]int{"imported": len(cases)})
}

// Clear handles DELETE /api/v1/data: empties the case list. Irreversible.
func (h *ReportHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.cases.ClearAll(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func serveDownload(w http.ResponseWriter, body []byte, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// parseReportQuery reads q, status, from and to query parameters. Dates use
// the YYYY-MM-DD form; the upper bound is inclusive through end of day.
func parseReportQuery(r *http.Request) (views.ReportQuery, error) {
	q := views.ReportQuery{
		Search: r.URL.Query().Get("q"),
		Bucket: views.StatusBucket(r.URL.Query().Get("status")),
	}
	switch q.Bucket {
	case "", views.BucketAll, views.BucketCompleted, views.BucketPending, views.BucketInProgress:
	default:
		return q, fmt.Errorf("unknown status bucket %q", q.Bucket)
	}
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.ParseInLocation("2006-01-02", from, time.Local)
		if err != nil {
			return q, fmt.Errorf("invalid from date %q", from)
		}
		q.DateFrom = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.ParseInLocation("2006-01-02", to, time.Local)
		if err != nil {
			return q, fmt.Errorf("invalid to date %q", to)
		}
		q.DateTo = t
	}
	return q, nil
}
