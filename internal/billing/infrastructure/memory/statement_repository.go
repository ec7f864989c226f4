package memory

import (
	"context"
	"sort"
	"sync"

	billing "theatre-billing/internal/billing/domain"
)

// StatementRepository is an in-memory statement archive for tests and
// database-less runs.
type StatementRepository struct {
	mu   sync.RWMutex
	data map[string]billing.StatementRecord
}

// NewStatementRepository constructs a repository.
func NewStatementRepository() *StatementRepository {
	return &StatementRepository{data: make(map[string]billing.StatementRecord)}
}

// Save stores a copy of the record.
func (r *StatementRepository) Save(_ context.Context, record *billing.StatementRecord) error {
	if record == nil {
		return billing.ErrNilRecord
	}
	copied := *record
	copied.Lines = append([]billing.StatementLine(nil), record.Lines...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[record.ID] = copied
	return nil
}

// GetByID loads a record by id.
func (r *StatementRepository) GetByID(_ context.Context, id string) (*billing.StatementRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.data[id]
	if !ok {
		return nil, billing.ErrStatementNotFound
	}
	record.Lines = append([]billing.StatementLine(nil), record.Lines...)
	return &record, nil
}

// ListByCustomer returns the tenant's statements for a customer, newest first.
func (r *StatementRepository) ListByCustomer(_ context.Context, tenantID, customer string) ([]billing.StatementRecord, error) {
	r.mu.RLock()
	result := make([]billing.StatementRecord, 0)
	for _, record := range r.data {
		if record.TenantID != tenantID || record.Customer != customer {
			continue
		}
		record.Lines = append([]billing.StatementLine(nil), record.Lines...)
		result = append(result, record)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
