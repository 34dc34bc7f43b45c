// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"fmt"

	"github.com/arikst/schoolhub/internal/app/store/audit"
	"github.com/arikst/schoolhub/internal/domain/models"
	"go.uber.org/zap"
)

// Config controls where change records go.
// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only),
// "off" (disabled).
type Config struct {
	Mode string
}

// Logger is the change logger: it appends one immutable audit_trail row per
// changed field and mirrors the row into structured logs per configuration.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// Stringify coerces a field value to its audit text form. A missing or falsy
// value becomes the empty string; note that this deliberately conflates
// "empty string" with "absent/zero", matching the recorded behavior the
// audit history was built on.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		s := fmt.Sprintf("%v", t)
		if s == "0" || s == "false" || s == "<nil>" {
			return ""
		}
		return s
	}
}

func (l *Logger) logToZap(entry models.AuditEntry) {
	l.zapLog.Info("audit change",
		zap.Bool("audit", true),
		zap.String("entity", entry.Entity),
		zap.String("entity_id", entry.EntityID),
		zap.String("field", entry.Field),
		zap.String("old_value", entry.OldValue),
		zap.String("new_value", entry.NewValue),
		zap.String("user", entry.User),
	)
}

// Change records one field-level change. oldValue/newValue are coerced to
// text with "" standing in for an absent old value; actor is the acting
// user's display name ("Anonymous" for unauthenticated callers — callers use
// authz.ActorName). For a multi-field update the caller invokes Change once
// per changed field, and only for fields whose stringified values differ.
//
// A nil logger is a no-op (allows tests to pass a nil audit logger).
func (l *Logger) Change(ctx context.Context, entity, entityID, field string, oldValue, newValue any, actor string) error {
	if l == nil {
		return nil
	}
	if l.config.Mode == "off" {
		return nil
	}

	entry := models.AuditEntry{
		Entity:   entity,
		EntityID: entityID,
		Field:    field,
		OldValue: Stringify(oldValue),
		NewValue: Stringify(newValue),
		User:     actor,
	}

	if l.config.Mode == "all" || l.config.Mode == "log" {
		l.logToZap(entry)
	}

	if l.config.Mode == "all" || l.config.Mode == "db" || l.config.Mode == "" {
		if _, err := l.store.Log(ctx, entry); err != nil {
			l.zapLog.Error("failed to store audit row",
				zap.Error(err),
				zap.String("entity", entity),
				zap.String("field", field),
			)
			return err
		}
	}
	return nil
}

// Created records the lifecycle row for a newly persisted entity: old value
// empty, new value the record's display form.
func (l *Logger) Created(ctx context.Context, entity, entityID, display, actor string) error {
	return l.Change(ctx, entity, entityID, audit.FieldCreated, "", display, actor)
}

// Deleted records the lifecycle row for a removed entity: old value the
// pre-delete display form, new value empty.
func (l *Logger) Deleted(ctx context.Context, entity, entityID, display, actor string) error {
	return l.Change(ctx, entity, entityID, audit.FieldDeleted, display, "", actor)
}

// FieldChanged logs a change only when the stringified old and new values
// differ, and reports whether a row was written.
func (l *Logger) FieldChanged(ctx context.Context, entity, entityID, field string, oldValue, newValue any, actor string) (bool, error) {
	oldS, newS := Stringify(oldValue), Stringify(newValue)
	if oldS == newS {
		return false, nil
	}
	if err := l.Change(ctx, entity, entityID, field, oldS, newS, actor); err != nil {
		return false, err
	}
	return true, nil
}
