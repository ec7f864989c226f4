package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	billing "theatre-billing/internal/billing/domain"
)

// Format is the encoding of a catalog or invoice document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the document format from a file extension.
// Anything other than .yaml/.yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

type invoiceDoc struct {
	Customer     string           `json:"customer" yaml:"customer"`
	Performances []performanceDoc `json:"performances" yaml:"performances"`
}

type performanceDoc struct {
	PlayID   string `json:"playID" yaml:"playID"`
	Audience *int   `json:"audience" yaml:"audience"`
}

// DecodePlays reads a play catalog keyed by play id.
func DecodePlays(r io.Reader, format Format) (billing.Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	plays := billing.Catalog{}
	if err := unmarshal(data, format, &plays); err != nil {
		return nil, fmt.Errorf("decode plays: %w", err)
	}
	return plays, nil
}

// DecodeInvoice reads a single invoice document.
func DecodeInvoice(r io.Reader, format Format) (billing.Invoice, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return billing.Invoice{}, err
	}
	var doc invoiceDoc
	if err := unmarshal(data, format, &doc); err != nil {
		return billing.Invoice{}, fmt.Errorf("decode invoice: %w", err)
	}
	return doc.toInvoice()
}

// DecodeInvoices reads either one invoice or a list of invoices.
func DecodeInvoices(r io.Reader, format Format) ([]billing.Invoice, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	list, err := isList(data, format)
	if err != nil {
		return nil, fmt.Errorf("decode invoices: %w", err)
	}
	var docs []invoiceDoc
	if list {
		if err := unmarshal(data, format, &docs); err != nil {
			return nil, fmt.Errorf("decode invoices: %w", err)
		}
	} else {
		var doc invoiceDoc
		if err := unmarshal(data, format, &doc); err != nil {
			return nil, fmt.Errorf("decode invoices: %w", err)
		}
		docs = append(docs, doc)
	}

	invoices := make([]billing.Invoice, 0, len(docs))
	for i, doc := range docs {
		invoice, err := doc.toInvoice()
		if err != nil {
			return nil, fmt.Errorf("invoice %d: %w", i, err)
		}
		invoices = append(invoices, invoice)
	}
	return invoices, nil
}

func (d invoiceDoc) toInvoice() (billing.Invoice, error) {
	invoice := billing.Invoice{
		Customer:     d.Customer,
		Performances: make([]billing.InvoiceLine, 0, len(d.Performances)),
	}
	for i, perf := range d.Performances {
		if perf.Audience == nil {
			return billing.Invoice{}, fmt.Errorf("%w: missing audience for performance %d (%q)", billing.ErrInvalidAudience, i, perf.PlayID)
		}
		invoice.Performances = append(invoice.Performances, billing.InvoiceLine{
			PlayID:   perf.PlayID,
			Audience: *perf.Audience,
		})
	}
	return invoice, nil
}

func unmarshal(data []byte, format Format, out any) error {
	if format == FormatYAML {
		return yaml.Unmarshal(data, out)
	}
	return json.Unmarshal(data, out)
}

func isList(data []byte, format Format) (bool, error) {
	if format == FormatYAML {
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return false, err
		}
		return len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode, nil
	}
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '[', nil
}
