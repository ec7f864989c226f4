package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	billing "theatre-billing/internal/billing/domain"
	"theatre-billing/internal/billing/infrastructure/catalog"
	billinginterfaces "theatre-billing/internal/billing/interfaces"
)

type config struct {
	playsPath    string
	invoicesPath string
	format       string
	outDir       string
	currency     string
}

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	failed, err := run(cfg, os.Stdout, logger)
	if err != nil {
		logger.WithError(err).Error("statement run failed")
		os.Exit(2)
	}
	if failed > 0 {
		logger.WithField("failed", failed).Error("some invoices could not be billed")
		os.Exit(1)
	}
}

func parseFlags(args []string) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("statement", flag.ContinueOnError)
	fs.StringVar(&cfg.playsPath, "plays", getenvDefault("CATALOG_PATH", ""), "plays catalog file (.json or .yaml)")
	fs.StringVar(&cfg.invoicesPath, "invoices", "", "invoices file (.json or .yaml), one invoice or a list")
	fs.StringVar(&cfg.format, "format", "text", "output format: text, pdf or xlsx")
	fs.StringVar(&cfg.outDir, "out", "", "output directory (required for pdf and xlsx)")
	fs.StringVar(&cfg.currency, "currency", getenvDefault("CURRENCY", "USD"), "currency label for exports")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if cfg.playsPath == "" {
		return cfg, errors.New("missing --plays or CATALOG_PATH")
	}
	if cfg.invoicesPath == "" {
		return cfg, errors.New("missing --invoices")
	}
	switch cfg.format {
	case "text":
	case "pdf", "xlsx":
		if cfg.outDir == "" {
			return cfg, fmt.Errorf("--out is required for %s output", cfg.format)
		}
	default:
		return cfg, fmt.Errorf("unsupported --format %q", cfg.format)
	}
	return cfg, nil
}

// run bills every invoice and returns how many failed. A returned error means
// the inputs themselves could not be read.
func run(cfg config, stdout io.Writer, logger logrus.FieldLogger) (int, error) {
	plays, err := catalog.LoadPlays(cfg.playsPath)
	if err != nil {
		return 0, fmt.Errorf("load plays: %w", err)
	}
	invoices, err := catalog.LoadInvoices(cfg.invoicesPath)
	if err != nil {
		return 0, fmt.Errorf("load invoices: %w", err)
	}
	if cfg.outDir != "" {
		if err := os.MkdirAll(cfg.outDir, 0o755); err != nil {
			return 0, fmt.Errorf("create out dir: %w", err)
		}
	}

	failed := 0
	for i, invoice := range invoices {
		log := logger.WithFields(logrus.Fields{"invoice": i, "customer": invoice.Customer})
		stmt, err := billing.BuildStatement(invoice, plays)
		if err != nil {
			log.WithError(err).Error("statement failed")
			failed++
			continue
		}
		if cfg.format == "text" {
			if _, err := io.WriteString(stdout, stmt.Text()); err != nil {
				return failed, err
			}
			continue
		}
		path, err := writeExport(cfg, i, stmt)
		if err != nil {
			log.WithError(err).Error("export failed")
			failed++
			continue
		}
		log.WithField("path", path).Info("statement written")
	}
	return failed, nil
}

func writeExport(cfg config, index int, stmt *billing.Statement) (string, error) {
	id := fmt.Sprintf("%03d-%s", index+1, fileSafe(stmt.Customer()))
	record := billing.NewStatementRecord(id, "", cfg.currency, stmt, time.Now().UTC())

	var (
		data []byte
		err  error
	)
	switch cfg.format {
	case "pdf":
		data, err = billinginterfaces.BuildStatementPDF(record)
	case "xlsx":
		data, err = billinginterfaces.BuildStatementXLSX(record)
	default:
		return "", fmt.Errorf("unsupported format %q", cfg.format)
	}
	if err != nil {
		return "", err
	}
	path := filepath.Join(cfg.outDir, "statement-"+id+"."+cfg.format)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

func fileSafe(name string) string {
	cleaned := strings.Trim(unsafeChars.ReplaceAllString(name, "-"), "-")
	if cleaned == "" {
		return "customer"
	}
	return strings.ToLower(cleaned)
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
