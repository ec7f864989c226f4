package billing

import "time"

// StatementRecord is an archived, rendered statement.
type StatementRecord struct {
	ID            string          `json:"id"`
	TenantID      string          `json:"tenant_id"`
	Customer      string          `json:"customer"`
	TotalAmount   int64           `json:"total_amount"`
	VolumeCredits int64           `json:"volume_credits"`
	Currency      string          `json:"currency"`
	Text          string          `json:"text"`
	SnapshotHash  string          `json:"snapshot_hash"`
	Lines         []StatementLine `json:"lines"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewStatementRecord snapshots a statement's derived values.
func NewStatementRecord(id, tenantID, currency string, stmt *Statement, createdAt time.Time) *StatementRecord {
	return &StatementRecord{
		ID:            id,
		TenantID:      tenantID,
		Customer:      stmt.Customer(),
		TotalAmount:   stmt.TotalPrice(),
		VolumeCredits: stmt.TotalVolumeCredits(),
		Currency:      currency,
		Text:          stmt.Text(),
		Lines:         stmt.Lines(),
		CreatedAt:     createdAt,
	}
}
