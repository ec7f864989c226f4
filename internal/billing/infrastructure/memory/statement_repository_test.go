package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	billing "theatre-billing/internal/billing/domain"
)

func TestStatementRepository_SaveGetList(t *testing.T) {
	ctx := context.Background()
	repo := NewStatementRepository()
	base := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

	records := []billing.StatementRecord{
		{ID: "stmt-1", TenantID: "tenant-a", Customer: "BigCo", CreatedAt: base},
		{ID: "stmt-2", TenantID: "tenant-a", Customer: "BigCo", CreatedAt: base.Add(time.Hour)},
		{ID: "stmt-3", TenantID: "tenant-b", Customer: "BigCo", CreatedAt: base},
		{ID: "stmt-4", TenantID: "tenant-a", Customer: "SmallCo", CreatedAt: base},
	}
	for i := range records {
		if err := repo.Save(ctx, &records[i]); err != nil {
			t.Fatalf("save %s: %v", records[i].ID, err)
		}
	}

	got, err := repo.GetByID(ctx, "stmt-2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Customer != "BigCo" {
		t.Fatalf("customer = %q", got.Customer)
	}

	list, err := repo.ListByCustomer(ctx, "tenant-a", "BigCo")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "stmt-2" || list[1].ID != "stmt-1" {
		t.Fatalf("unexpected list order: %+v", list)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, billing.ErrStatementNotFound) {
		t.Fatalf("expected ErrStatementNotFound, got %v", err)
	}
	if err := repo.Save(ctx, nil); !errors.Is(err, billing.ErrNilRecord) {
		t.Fatalf("expected ErrNilRecord, got %v", err)
	}
}

func TestStatementRepository_StoresCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewStatementRepository()
	record := &billing.StatementRecord{
		ID:    "stmt-1",
		Lines: []billing.StatementLine{{Position: 1, PlayName: "Hamlet", Amount: 40000}},
	}
	if err := repo.Save(ctx, record); err != nil {
		t.Fatalf("save: %v", err)
	}
	record.Lines[0].Amount = 1

	got, _ := repo.GetByID(ctx, "stmt-1")
	if got.Lines[0].Amount != 40000 {
		t.Fatalf("archive shares caller lines")
	}
}

func TestStatementRepository_ListCarriesLines(t *testing.T) {
	ctx := context.Background()
	repo := NewStatementRepository()
	record := &billing.StatementRecord{
		ID:       "stmt-1",
		TenantID: "tenant-a",
		Customer: "BigCo",
		Lines:    []billing.StatementLine{{Position: 1, PlayName: "Hamlet", Amount: 40000}},
	}
	if err := repo.Save(ctx, record); err != nil {
		t.Fatalf("save: %v", err)
	}

	list, err := repo.ListByCustomer(ctx, "tenant-a", "BigCo")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || len(list[0].Lines) != 1 || list[0].Lines[0].PlayName != "Hamlet" {
		t.Fatalf("listed record lines missing: %+v", list)
	}
	list[0].Lines[0].Amount = 1
	got, _ := repo.GetByID(ctx, "stmt-1")
	if got.Lines[0].Amount != 40000 {
		t.Fatalf("list shares archived lines")
	}
}
