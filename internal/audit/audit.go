package audit

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// Entry is one audited statement action.
type Entry struct {
	ID            string
	TenantID      string
	Actor         string
	Role          string
	Action        string
	ResourceType  string
	ResourceID    string
	Customer      string
	Metadata      json.RawMessage
	PayloadDigest string
	IP            string
	UserAgent     string
	CreatedAt     time.Time
}

// Logger writes audit entries.
type Logger interface {
	Log(ctx context.Context, entry Entry) error
}

// NewID generates a random audit id.
func NewID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return "audit-" + hex.EncodeToString(buf)
}

// DigestJSON computes a SHA256 hex digest for metadata payloads.
func DigestJSON(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func normalize(entry Entry) Entry {
	if entry.ID == "" {
		entry.ID = NewID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.PayloadDigest == "" {
		entry.PayloadDigest = DigestJSON(entry.Metadata)
	}
	return entry
}

// FieldLogger writes audit entries as structured log lines. It is used when
// no database is configured.
type FieldLogger struct {
	logger logrus.FieldLogger
}

// NewFieldLogger constructs a log-backed audit logger.
func NewFieldLogger(logger logrus.FieldLogger) *FieldLogger {
	if logger == nil {
		return nil
	}
	return &FieldLogger{logger: logger}
}

// Log writes the entry at info level.
func (l *FieldLogger) Log(_ context.Context, entry Entry) error {
	if l == nil || l.logger == nil {
		return nil
	}
	entry = normalize(entry)
	l.logger.WithFields(logrus.Fields{
		"audit_id":      entry.ID,
		"tenant_id":     entry.TenantID,
		"actor":         entry.Actor,
		"role":          entry.Role,
		"resource_type": entry.ResourceType,
		"resource_id":   entry.ResourceID,
		"customer":      entry.Customer,
		"digest":        entry.PayloadDigest,
		"ip":            entry.IP,
	}).Info(entry.Action)
	return nil
}
