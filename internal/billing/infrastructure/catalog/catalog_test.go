package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	billing "theatre-billing/internal/billing/domain"
)

const playsJSON = `{
  "hamlet": {"name": "Hamlet", "type": "tragedy"},
  "as-like": {"name": "As You Like It", "type": "comedy"},
  "othello": {"name": "Othello", "type": "tragedy"}
}`

const invoicesJSON = `[
  {
    "customer": "BigCo",
    "performances": [
      {"playID": "hamlet", "audience": 55},
      {"playID": "as-like", "audience": 35},
      {"playID": "othello", "audience": 40}
    ]
  }
]`

const playsYAML = `
hamlet:
  name: Hamlet
  type: tragedy
as-like:
  name: As You Like It
  type: comedy
`

const invoiceYAML = `
customer: BigCo
performances:
  - playID: hamlet
    audience: 30
  - playID: as-like
    audience: 20
`

func TestDecodePlaysJSONAndYAML(t *testing.T) {
	fromJSON, err := DecodePlays(strings.NewReader(playsJSON), FormatJSON)
	if err != nil {
		t.Fatalf("decode json plays: %v", err)
	}
	if len(fromJSON) != 3 || fromJSON["as-like"].Name != "As You Like It" {
		t.Fatalf("unexpected json plays: %+v", fromJSON)
	}
	fromYAML, err := DecodePlays(strings.NewReader(playsYAML), FormatYAML)
	if err != nil {
		t.Fatalf("decode yaml plays: %v", err)
	}
	if fromYAML["hamlet"] != (billing.Play{Name: "Hamlet", Type: "tragedy"}) {
		t.Fatalf("unexpected yaml play: %+v", fromYAML["hamlet"])
	}
}

func TestDecodeInvoicesListAndSingle(t *testing.T) {
	list, err := DecodeInvoices(strings.NewReader(invoicesJSON), FormatJSON)
	if err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || len(list[0].Performances) != 3 || list[0].Performances[0].Audience != 55 {
		t.Fatalf("unexpected invoices: %+v", list)
	}

	single, err := DecodeInvoices(strings.NewReader(invoiceYAML), FormatYAML)
	if err != nil {
		t.Fatalf("decode single yaml: %v", err)
	}
	if len(single) != 1 || single[0].Customer != "BigCo" || single[0].Performances[1].PlayID != "as-like" {
		t.Fatalf("unexpected yaml invoices: %+v", single)
	}
}

func TestDecodeInvoiceMissingAudience(t *testing.T) {
	_, err := DecodeInvoice(strings.NewReader(`{"customer":"BigCo","performances":[{"playID":"hamlet"}]}`), FormatJSON)
	if !errors.Is(err, billing.ErrInvalidAudience) {
		t.Fatalf("expected ErrInvalidAudience, got %v", err)
	}
}

func TestDecodeInvoiceZeroAudience(t *testing.T) {
	invoice, err := DecodeInvoice(strings.NewReader(`{"customer":"BigCo","performances":[{"playID":"hamlet","audience":0}]}`), FormatJSON)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if invoice.Performances[0].Audience != 0 {
		t.Fatalf("audience = %d", invoice.Performances[0].Audience)
	}
}

func TestFormatFromPath(t *testing.T) {
	if FormatFromPath("plays.YML") != FormatYAML || FormatFromPath("plays.yaml") != FormatYAML {
		t.Fatalf("expected yaml format")
	}
	if FormatFromPath("plays.json") != FormatJSON || FormatFromPath("plays") != FormatJSON {
		t.Fatalf("expected json format")
	}
}

func TestFileCatalogReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plays.json")
	if err := os.WriteFile(path, []byte(playsJSON), 0o644); err != nil {
		t.Fatalf("write plays: %v", err)
	}
	logger, _ := test.NewNullLogger()

	c, err := NewFileCatalog(path, logger)
	if err != nil {
		t.Fatalf("new file catalog: %v", err)
	}
	plays, _ := c.Catalog(context.Background())
	if len(plays) != 3 {
		t.Fatalf("plays = %d, want 3", len(plays))
	}

	if err := os.WriteFile(path, []byte(`{"lear": {"name": "King Lear", "type": "tragedy"}}`), 0o644); err != nil {
		t.Fatalf("rewrite plays: %v", err)
	}
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	c.reloadIfChanged()

	plays, _ = c.Catalog(context.Background())
	if _, err := plays.Lookup("lear"); err != nil {
		t.Fatalf("expected reloaded catalog: %v", err)
	}
	if _, err := plays.Lookup("hamlet"); !errors.Is(err, billing.ErrUnknownPlay) {
		t.Fatalf("expected hamlet to be gone, got %v", err)
	}
}

func TestFileCatalogKeepsPreviousOnBadReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plays.yaml")
	if err := os.WriteFile(path, []byte(playsYAML), 0o644); err != nil {
		t.Fatalf("write plays: %v", err)
	}
	logger, hook := test.NewNullLogger()
	c, err := NewFileCatalog(path, logger)
	if err != nil {
		t.Fatalf("new file catalog: %v", err)
	}

	if err := os.WriteFile(path, []byte("hamlet: [unterminated"), 0o644); err != nil {
		t.Fatalf("rewrite plays: %v", err)
	}
	future := time.Now().Add(time.Hour)
	_ = os.Chtimes(path, future, future)
	c.reloadIfChanged()

	plays, _ := c.Catalog(context.Background())
	if len(plays) != 2 {
		t.Fatalf("expected previous catalog to survive, got %d plays", len(plays))
	}
	if hook.LastEntry() == nil || hook.LastEntry().Message != "catalog reload failed" {
		t.Fatalf("expected reload failure to be logged")
	}
}

func TestNewFileCatalogMissingFile(t *testing.T) {
	if _, err := NewFileCatalog(filepath.Join(t.TempDir(), "missing.json"), nil); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadInvoices(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoices.json")
	if err := os.WriteFile(path, []byte(invoicesJSON), 0o644); err != nil {
		t.Fatalf("write invoices: %v", err)
	}
	invoices, err := LoadInvoices(path)
	if err != nil {
		t.Fatalf("load invoices: %v", err)
	}
	if len(invoices) != 1 || invoices[0].Customer != "BigCo" {
		t.Fatalf("unexpected invoices: %+v", invoices)
	}
}
