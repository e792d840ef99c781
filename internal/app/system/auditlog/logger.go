// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/learnhub/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Logger records admin actions to the audit_log collection and mirrors
// them to structured logs. Audit failures are logged but never fail the
// action they describe.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger) *Logger {
	return &Logger{store: store, zapLog: zapLog}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

// AdminAction records one admin action against an entity. r may be nil
// for actions without a request (background workers).
func (l *Logger) AdminAction(ctx context.Context, r *http.Request, eventType string, entityID, actorID primitive.ObjectID, details map[string]string) {
	e := audit.Event{
		EventType: eventType,
		EntityID:  &entityID,
		ActorID:   &actorID,
		Details:   details,
	}
	if r != nil {
		e.IP = getClientIP(r)
	}

	if err := l.store.Insert(ctx, e); err != nil {
		l.zapLog.Error("audit insert failed",
			zap.String("event_type", eventType), zap.Error(err))
	}

	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("event_type", eventType),
		zap.String("entity_id", entityID.Hex()),
		zap.String("actor_id", actorID.Hex()),
	}
	for k, v := range details {
		fields = append(fields, zap.String(k, v))
	}
	l.zapLog.Info("admin action", fields...)
}
