package interfaces

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"theatre-billing/internal/audit"
	"theatre-billing/internal/auth"
	statementapp "theatre-billing/internal/billing/application"
	billing "theatre-billing/internal/billing/domain"
	"theatre-billing/internal/observability/metrics"
)

const maxRequestBody = 1 << 20

// StatementHandler serves the statement API under /api/v1/statements.
type StatementHandler struct {
	service     *statementapp.StatementService
	auditLogger audit.Logger
	logger      logrus.FieldLogger
}

// NewStatementHandler constructs a handler. auditLogger may be nil.
func NewStatementHandler(service *statementapp.StatementService, auditLogger audit.Logger, logger logrus.FieldLogger) (*StatementHandler, error) {
	if service == nil {
		return nil, errors.New("statement handler: nil service")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &StatementHandler{service: service, auditLogger: auditLogger, logger: logger}, nil
}

// ServeHTTP routes statement requests.
func (h *StatementHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/api/v1/statements" {
		switch r.Method {
		case http.MethodPost:
			h.handleRender(w, r)
			return
		case http.MethodGet:
			h.handleList(w, r)
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if strings.HasPrefix(path, "/api/v1/statements/") && r.Method == http.MethodGet {
		h.handleByID(w, r, strings.TrimPrefix(path, "/api/v1/statements/"))
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

type renderRequest struct {
	Customer     string                  `json:"customer"`
	Performances []renderPerformance     `json:"performances"`
	Plays        map[string]billing.Play `json:"plays,omitempty"`
}

type renderPerformance struct {
	PlayID   string `json:"playID"`
	Audience *int   `json:"audience"`
}

type statementSummary struct {
	ID            string    `json:"statement_id"`
	Customer      string    `json:"customer"`
	TotalAmount   int64     `json:"total_amount"`
	AmountOwed    string    `json:"amount_owed"`
	VolumeCredits int64     `json:"volume_credits"`
	Currency      string    `json:"currency"`
	SnapshotHash  string    `json:"snapshot_hash"`
	CreatedAt     time.Time `json:"created_at"`
}

func summarize(record *billing.StatementRecord) statementSummary {
	return statementSummary{
		ID:            record.ID,
		Customer:      record.Customer,
		TotalAmount:   record.TotalAmount,
		AmountOwed:    billing.FormatUSD(record.TotalAmount),
		VolumeCredits: record.VolumeCredits,
		Currency:      record.Currency,
		SnapshotHash:  record.SnapshotHash,
		CreatedAt:     record.CreatedAt,
	}
}

func (h *StatementHandler) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	invoice := billing.Invoice{Customer: req.Customer}
	for i, perf := range req.Performances {
		if perf.Audience == nil {
			http.Error(w, "performance "+strconv.Itoa(i)+": missing audience", http.StatusUnprocessableEntity)
			return
		}
		invoice.Performances = append(invoice.Performances, billing.InvoiceLine{PlayID: perf.PlayID, Audience: *perf.Audience})
	}
	var plays billing.Catalog
	if req.Plays != nil {
		plays = billing.Catalog(req.Plays)
	}

	record, err := h.service.Render(r.Context(), invoice, plays)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	if wantsText(r) {
		writeText(w, record.Text)
	} else {
		writeJSON(w, http.StatusCreated, summarize(record))
	}
	h.logAudit(r, record, "statement.render", map[string]any{
		"lines":         len(record.Lines),
		"inline_plays":  req.Plays != nil,
		"snapshot_hash": record.SnapshotHash,
	})
}

func (h *StatementHandler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), r.URL.Query().Get("customer"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	resp := make([]statementSummary, 0, len(list))
	for i := range list {
		resp = append(resp, summarize(&list[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *StatementHandler) handleByID(w http.ResponseWriter, r *http.Request, rest string) {
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch action {
	case "":
		h.handleGet(w, r, id)
	case "text":
		h.handleText(w, r, id)
	case "export.pdf":
		h.handleExport(w, r, id, "pdf", "application/pdf", BuildStatementPDF)
	case "export.xlsx":
		h.handleExport(w, r, id, "xlsx", xlsxContentType, BuildStatementXLSX)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *StatementHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	record, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *StatementHandler) handleText(w http.ResponseWriter, r *http.Request, id string) {
	record, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeText(w, record.Text)
}

func (h *StatementHandler) handleExport(w http.ResponseWriter, r *http.Request, id, format, contentType string, build func(*billing.StatementRecord) ([]byte, error)) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveStatementExport(format, result, time.Since(start))
	}()

	record, err := h.service.Get(r.Context(), id)
	if err != nil {
		result = metrics.ResultError
		h.respondServiceError(w, r, err)
		return
	}
	data, err := build(record)
	if err != nil {
		result = metrics.ResultError
		h.logger.WithError(err).WithFields(logrus.Fields{"statement_id": id, "format": format}).Error("statement export failed")
		http.Error(w, "export "+format+" error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+record.ID+`.`+format+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, record, "statement.export", map[string]any{"format": format})
}

func (h *StatementHandler) logAudit(r *http.Request, record *billing.StatementRecord, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	payload, _ := json.Marshal(meta)
	err := h.auditLogger.Log(r.Context(), audit.Entry{
		TenantID:     record.TenantID,
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "statement",
		ResourceID:   record.ID,
		Customer:     record.Customer,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
	if err != nil {
		h.logger.WithError(err).WithField("action", action).Warn("audit log failed")
	}
}

func (h *StatementHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrTenantMismatch):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, billing.ErrStatementNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, billing.ErrUnknownPlay),
		errors.Is(err, billing.ErrUnknownGenre),
		errors.Is(err, billing.ErrInvalidAudience):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, billing.ErrEmptyCustomer):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.WithError(err).WithField("path", r.URL.Path).Error("statement request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// wantsText reports whether the client prefers text/plain over JSON. Higher
// q-values win; on a tie the media type listed first wins.
func wantsText(r *http.Request) bool {
	if r.URL.Query().Get("format") == "text" {
		return true
	}
	textQ, jsonQ := -1.0, -1.0
	textAt, jsonAt := -1, -1
	for i, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		q := 1.0
		if raw, ok := params["q"]; ok {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			q = parsed
		}
		if q <= 0 {
			continue
		}
		switch mediaType {
		case "text/plain", "text/*":
			if q > textQ {
				textQ, textAt = q, i
			}
		case "application/json", "application/*", "*/*":
			if q > jsonQ {
				jsonQ, jsonAt = q, i
			}
		}
	}
	if textAt < 0 {
		return false
	}
	return textQ > jsonQ || (textQ == jsonQ && textAt < jsonAt)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}
