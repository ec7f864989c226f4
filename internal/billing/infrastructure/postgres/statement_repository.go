package postgres

import (
	"context"
	"database/sql"
	"errors"

	billing "theatre-billing/internal/billing/domain"
)

// StatementRepository archives rendered statements in postgres.
type StatementRepository struct {
	db *sql.DB
}

// NewStatementRepository constructs a repository.
func NewStatementRepository(db *sql.DB) *StatementRepository {
	return &StatementRepository{db: db}
}

// Save inserts the statement and its lines in one transaction.
func (r *StatementRepository) Save(ctx context.Context, record *billing.StatementRecord) error {
	if r == nil || r.db == nil {
		return errors.New("statement repo: nil db")
	}
	if record == nil {
		return billing.ErrNilRecord
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO billing_statements (
	id, tenant_id, customer, total_amount, volume_credits, currency, text, snapshot_hash, created_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9
)`,
		record.ID, record.TenantID, record.Customer, record.TotalAmount, record.VolumeCredits,
		record.Currency, record.Text, record.SnapshotHash, record.CreatedAt,
	)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, line := range record.Lines {
		_, err := tx.ExecContext(ctx, `
INSERT INTO billing_statement_lines (
	statement_id, position, play_name, genre, audience, amount, volume_credits
) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			record.ID, line.Position, line.PlayName, string(line.Genre), line.Audience, line.Amount, line.VolumeCredits)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// GetByID fetches a statement with its lines.
func (r *StatementRepository) GetByID(ctx context.Context, id string) (*billing.StatementRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("statement repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, tenant_id, customer, total_amount, volume_credits, currency, text, snapshot_hash, created_at
FROM billing_statements
WHERE id = $1
LIMIT 1`, id)
	record, err := scanStatement(row)
	if err != nil {
		return nil, err
	}
	lines, err := r.listLines(ctx, id)
	if err != nil {
		return nil, err
	}
	record.Lines = lines
	return record, nil
}

// ListByCustomer lists a tenant's statements for a customer with their lines,
// newest first.
func (r *StatementRepository) ListByCustomer(ctx context.Context, tenantID, customer string) ([]billing.StatementRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("statement repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, tenant_id, customer, total_amount, volume_credits, currency, text, snapshot_hash, created_at
FROM billing_statements
WHERE tenant_id = $1 AND customer = $2
ORDER BY created_at DESC, id DESC`, tenantID, customer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]billing.StatementRecord, 0)
	for rows.Next() {
		record, err := scanStatement(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range result {
		lines, err := r.listLines(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Lines = lines
	}
	return result, nil
}

func (r *StatementRepository) listLines(ctx context.Context, statementID string) ([]billing.StatementLine, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT position, play_name, genre, audience, amount, volume_credits
FROM billing_statement_lines
WHERE statement_id = $1
ORDER BY position ASC`, statementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []billing.StatementLine
	for rows.Next() {
		var line billing.StatementLine
		var genre string
		if err := rows.Scan(&line.Position, &line.PlayName, &genre, &line.Audience, &line.Amount, &line.VolumeCredits); err != nil {
			return nil, err
		}
		line.Genre = billing.Genre(genre)
		result = append(result, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStatement(row rowScanner) (*billing.StatementRecord, error) {
	var record billing.StatementRecord
	var snapshot sql.NullString
	err := row.Scan(
		&record.ID,
		&record.TenantID,
		&record.Customer,
		&record.TotalAmount,
		&record.VolumeCredits,
		&record.Currency,
		&record.Text,
		&snapshot,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, billing.ErrStatementNotFound
		}
		return nil, err
	}
	if snapshot.Valid {
		record.SnapshotHash = snapshot.String
	}
	record.CreatedAt = record.CreatedAt.UTC()
	return &record, nil
}
