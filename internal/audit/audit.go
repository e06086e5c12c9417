// Package audit trace les actions sensibles (connexions, mutations admin,
// commandes, paiements) dans ScyllaDB, ou dans les logs à défaut.
package audit

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"furniro_back_end/internal/models"

	"github.com/gocql/gocql"
)

type Logger interface {
	Log(ctx context.Context, entry models.AuditLog)
	Close()
}

// Reader relit le journal d'audit; seul ScyllaLogger l'implémente.
type Reader interface {
	Query(ctx context.Context, f Filter) ([]models.AuditLog, error)
}

const (
	DefaultQueryLimit = 100
	MaxQueryLimit     = 500
)

type Filter struct {
	UserID     string
	Action     string
	Resource   string
	ResourceID string
	Success    *bool
	Limit      int
}

func (f Filter) limit() int {
	switch {
	case f.Limit <= 0:
		return DefaultQueryLimit
	case f.Limit > MaxQueryLimit:
		return MaxQueryLimit
	default:
		return f.Limit
	}
}

// Meta décrit la requête HTTP à l'origine d'une action.
type Meta struct {
	RequestID string
	IPAddress string
	UserAgent string
	UserID    string
	Email     string
}

type metaKey struct{}

func WithMeta(ctx context.Context, m Meta) context.Context {
	return context.WithValue(ctx, metaKey{}, m)
}

func MetaFrom(ctx context.Context) Meta {
	m, _ := ctx.Value(metaKey{}).(Meta)
	return m
}

// Record construit l'entrée à partir du contexte de la requête et l'envoie au logger.
func Record(ctx context.Context, l Logger, action, resource, resourceID string, value any, err error) {
	if l == nil {
		return
	}
	meta := MetaFrom(ctx)
	entry := models.AuditLog{
		ID:         gocql.TimeUUID(),
		UserID:     meta.UserID,
		UserEmail:  meta.Email,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		Success:    err == nil,
		Timestamp:  time.Now(),
	}
	if value != nil {
		if b, mErr := json.Marshal(value); mErr == nil {
			entry.NewValue = string(b)
		}
	}
	if err != nil {
		entry.ErrorMsg = err.Error()
	}
	l.Log(ctx, entry)
}

// LogLogger écrit les entrées dans les logs standard.
type LogLogger struct{}

func (LogLogger) Log(_ context.Context, e models.AuditLog) {
	status := "✅"
	if !e.Success {
		status = "❌"
	}
	log.Printf("📝 audit %s %s %s/%s user=%s ip=%s %s", status, e.Action, e.Resource, e.ResourceID, e.UserID, e.IPAddress, e.ErrorMsg)
}

func (LogLogger) Close() {}
