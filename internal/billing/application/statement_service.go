package application

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"theatre-billing/internal/auth"
	billing "theatre-billing/internal/billing/domain"
	"theatre-billing/internal/observability/metrics"
)

const defaultCurrency = "USD"

// CatalogSource supplies the play catalog used to price invoices.
type CatalogSource interface {
	Catalog(ctx context.Context) (billing.Catalog, error)
}

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// StatementService renders invoices into statements and archives them.
type StatementService struct {
	catalog  CatalogSource
	repo     billing.Repository
	clock    Clock
	tenantID string
	currency string
}

// Option configures the service.
type Option func(*StatementService)

// WithClock overrides the clock.
func WithClock(clock Clock) Option {
	return func(s *StatementService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithCurrency sets the currency label stored on records.
func WithCurrency(currency string) Option {
	return func(s *StatementService) {
		if currency != "" {
			s.currency = currency
		}
	}
}

// WithDefaultTenant sets the tenant used when the context carries none.
func WithDefaultTenant(tenantID string) Option {
	return func(s *StatementService) {
		s.tenantID = tenantID
	}
}

// NewStatementService constructs a service.
func NewStatementService(catalog CatalogSource, repo billing.Repository, opts ...Option) (*StatementService, error) {
	if catalog == nil {
		return nil, errors.New("statement service: nil catalog")
	}
	if repo == nil {
		return nil, errors.New("statement service: nil repo")
	}
	s := &StatementService{
		catalog:  catalog,
		repo:     repo,
		clock:    systemClock{},
		currency: defaultCurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Render prices the invoice, archives the result and returns the record.
// When plays is non-nil it replaces the configured catalog for this call.
func (s *StatementService) Render(ctx context.Context, invoice billing.Invoice, plays billing.Catalog) (*billing.StatementRecord, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveStatementRender(result, time.Since(start))
	}()

	if invoice.Customer == "" {
		result = metrics.ResultRejected
		return nil, billing.ErrEmptyCustomer
	}
	if plays == nil {
		var err error
		plays, err = s.catalog.Catalog(ctx)
		if err != nil {
			result = metrics.ResultError
			return nil, err
		}
	}

	stmt, err := billing.BuildStatement(invoice, plays)
	if err != nil {
		result = metrics.ResultRejected
		return nil, err
	}

	now := s.clock.Now()
	tenantID := s.tenantFor(ctx)
	record := billing.NewStatementRecord("", tenantID, s.currency, stmt, now)
	hash, err := computeSnapshotHash(record)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	record.SnapshotHash = hash
	record.ID = buildStatementID(tenantID, record.Customer, now, hash)

	if err := s.repo.Save(ctx, record); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	metrics.AddStatementTotals(record.TotalAmount, record.VolumeCredits)
	return record, nil
}

// Get returns an archived statement owned by the caller's tenant.
func (s *StatementService) Get(ctx context.Context, id string) (*billing.StatementRecord, error) {
	if id == "" {
		return nil, billing.ErrStatementNotFound
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, billing.ErrStatementNotFound
	}
	if tenantID := s.tenantFor(ctx); record.TenantID != tenantID {
		return nil, auth.ErrTenantMismatch
	}
	return record, nil
}

// List returns the caller tenant's statements for a customer, newest first.
func (s *StatementService) List(ctx context.Context, customer string) ([]billing.StatementRecord, error) {
	if customer == "" {
		return nil, billing.ErrEmptyCustomer
	}
	return s.repo.ListByCustomer(ctx, s.tenantFor(ctx), customer)
}

func (s *StatementService) tenantFor(ctx context.Context) string {
	if tenantID := auth.TenantIDFromContext(ctx); tenantID != "" {
		return tenantID
	}
	return s.tenantID
}

func computeSnapshotHash(record *billing.StatementRecord) (string, error) {
	if record == nil {
		return "", billing.ErrNilRecord
	}
	payload := struct {
		Customer      string                  `json:"customer"`
		TotalAmount   int64                   `json:"total_amount"`
		VolumeCredits int64                   `json:"volume_credits"`
		Currency      string                  `json:"currency"`
		Lines         []billing.StatementLine `json:"lines"`
	}{
		Customer:      record.Customer,
		TotalAmount:   record.TotalAmount,
		VolumeCredits: record.VolumeCredits,
		Currency:      record.Currency,
		Lines:         record.Lines,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

func buildStatementID(tenantID, customer string, at time.Time, snapshot string) string {
	nonce := make([]byte, 8)
	_, _ = rand.Read(nonce)
	base := tenantID + "|" + customer + "|" + strconv.FormatInt(at.UnixNano(), 10) + "|" + snapshot + "|" + hex.EncodeToString(nonce)
	hash := sha256.Sum256([]byte(base))
	return "stmt-" + hex.EncodeToString(hash[:8])
}
