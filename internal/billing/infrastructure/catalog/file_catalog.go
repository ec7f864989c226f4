package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	billing "theatre-billing/internal/billing/domain"
	"theatre-billing/internal/observability/metrics"
)

// FileCatalog serves a play catalog read from a JSON or YAML file.
// Reloads swap the whole map; a returned catalog is never mutated.
type FileCatalog struct {
	path   string
	logger logrus.FieldLogger

	mu      sync.RWMutex
	plays   billing.Catalog
	modTime time.Time
}

// NewFileCatalog loads the catalog at path.
func NewFileCatalog(path string, logger logrus.FieldLogger) (*FileCatalog, error) {
	if path == "" {
		return nil, errors.New("file catalog: empty path")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	c := &FileCatalog{path: path, logger: logger}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Catalog returns the current plays.
func (c *FileCatalog) Catalog(_ context.Context) (billing.Catalog, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.plays, nil
}

// Reload re-reads the catalog file. On failure the previous catalog is kept.
func (c *FileCatalog) Reload() error {
	plays, modTime, err := readPlays(c.path)
	if err != nil {
		metrics.ObserveCatalogReload(metrics.ResultError, 0)
		return err
	}
	c.mu.Lock()
	c.plays = plays
	c.modTime = modTime
	c.mu.Unlock()
	metrics.ObserveCatalogReload(metrics.ResultSuccess, len(plays))
	return nil
}

// Watch polls the file modification time and reloads on change until ctx is done.
func (c *FileCatalog) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.reloadIfChanged()
		}
	}
}

func (c *FileCatalog) reloadIfChanged() {
	info, err := os.Stat(c.path)
	if err != nil {
		c.logger.WithError(err).WithField("path", c.path).Warn("catalog stat failed")
		return
	}
	c.mu.RLock()
	last := c.modTime
	c.mu.RUnlock()
	if !info.ModTime().After(last) {
		return
	}
	if err := c.Reload(); err != nil {
		c.logger.WithError(err).WithField("path", c.path).Error("catalog reload failed")
		return
	}
	c.logger.WithField("path", c.path).Info("catalog reloaded")
}

func readPlays(path string) (billing.Catalog, time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, time.Time{}, err
	}
	plays, err := DecodePlays(f, FormatFromPath(path))
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("%s: %w", path, err)
	}
	return plays, info.ModTime(), nil
}

// LoadPlays reads a play catalog from a JSON or YAML file.
func LoadPlays(path string) (billing.Catalog, error) {
	plays, _, err := readPlays(path)
	return plays, err
}

// LoadInvoices reads invoices from a JSON or YAML file.
func LoadInvoices(path string) ([]billing.Invoice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	invoices, err := DecodeInvoices(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return invoices, nil
}

// Static is a fixed in-memory catalog.
type Static billing.Catalog

// Catalog returns the fixed plays.
func (s Static) Catalog(_ context.Context) (billing.Catalog, error) {
	return billing.Catalog(s), nil
}
