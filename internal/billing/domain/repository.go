package billing

import "context"

// Repository archives rendered statements. Records returned by GetByID and
// ListByCustomer carry their lines.
type Repository interface {
	Save(ctx context.Context, record *StatementRecord) error
	GetByID(ctx context.Context, id string) (*StatementRecord, error)
	ListByCustomer(ctx context.Context, tenantID, customer string) ([]StatementRecord, error)
}
