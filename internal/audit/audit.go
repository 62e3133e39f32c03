// Package audit persists the append-only trail of visits, downloads and admin actions.
//
// Admin events are fire-and-forget: Record never returns an error and a failed write
// never changes the outcome of the operation being audited. Client events arrive
// through the public ingestion endpoint, where the write itself is the operation,
// so RecordClient does report failures.
package audit

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"atlasdocs/internal/model"
	"atlasdocs/internal/repository"
)

// ErrMissingAction rejects client events without an action tag.
var ErrMissingAction = errors.New("action is required")

// writeTimeout bounds an audit insert that outlives its request.
const writeTimeout = 5 * time.Second

// RequestContext is the caller information attached to every event.
type RequestContext struct {
	IPAddress *string
	Path      string
	UserAgent string
}

// ClientEvent is telemetry sent by the browser (page visits, download clicks).
type ClientEvent struct {
	Action   string
	Path     string
	FileName string
	Extra    map[string]any
}

// Logger writes audit events to the repository.
type Logger struct {
	repo     repository.AuditRepository
	log      zerolog.Logger
	events   *prometheus.CounterVec
	failures prometheus.Counter
}

// NewLogger registers the audit metrics on reg (nil skips registration).
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewLogger(repo repository.AuditRepository, reg prometheus.Registerer, log zerolog.Logger) (*Logger, error) {
	l := &Logger{
		repo: repo,
		log:  log,
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "audit_events_total",
				Help: "Audit events by source and write outcome.",
			},
			[]string{"source", "outcome"},
		),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_write_failures_total",
			Help: "Audit events that could not be persisted.",
		}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{l.events, l.failures} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return l, nil
}

// Record persists an admin event. Failures are logged and counted, never returned.
func (l *Logger) Record(ctx context.Context, rc RequestContext, action, fileName string, extra map[string]any) {
	ev := &model.AuditEvent{
		IPAddress: rc.IPAddress,
		Path:      optional(rc.Path),
		Action:    action,
		FileName:  optional(fileName),
		Extra:     withUserAgent(extra, rc.UserAgent),
	}
	if err := l.insert(ctx, ev); err != nil {
		l.events.WithLabelValues("admin", "failed").Inc()
		l.failures.Inc()
		l.log.Error().
			Err(err).
			Str("action", action).
			Str("file_name", fileName).
			Interface("extra", ev.Extra).
			Msg("audit event not persisted")
		return
	}
	l.events.WithLabelValues("admin", "stored").Inc()
}

// RecordClient validates and persists a client event.
func (l *Logger) RecordClient(ctx context.Context, rc RequestContext, ce ClientEvent) error {
	action := strings.TrimSpace(ce.Action)
	if action == "" {
		return ErrMissingAction
	}

	ev := &model.AuditEvent{
		IPAddress: rc.IPAddress,
		Path:      optional(ce.Path),
		Action:    action,
		FileName:  optional(ce.FileName),
		Extra:     withUserAgent(ce.Extra, rc.UserAgent),
	}
	if err := l.insert(ctx, ev); err != nil {
		l.events.WithLabelValues("client", "failed").Inc()
		l.failures.Inc()
		l.log.Error().Err(err).Str("action", action).Msg("client event not persisted")
		return err
	}
	l.events.WithLabelValues("client", "stored").Inc()
	return nil
}

// insert detaches from request cancellation so an aborted request still leaves its trail.
func (l *Logger) insert(ctx context.Context, ev *model.AuditEvent) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	return l.repo.Insert(ctx, ev)
}

// ResolveIP prefers the first X-Forwarded-For entry, then the transport peer.
// Absence of both yields nil.
func ResolveIP(forwardedFor, remoteAddr string) *string {
	if forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return &ip
		}
	}

	remoteAddr = strings.TrimSpace(remoteAddr)
	if remoteAddr == "" {
		return nil
	}
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		remoteAddr = host
	}
	if remoteAddr == "" {
		return nil
	}
	return &remoteAddr
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// withUserAgent copies extra so the caller's map is never mutated.
func withUserAgent(extra map[string]any, ua string) map[string]any {
	if ua == "" && len(extra) == 0 {
		return nil
	}
	out := make(map[string]any, len(extra)+1)
	for k, v := range extra {
		out[k] = v
	}
	if _, ok := out["user_agent"]; !ok && ua != "" {
		out["user_agent"] = ua
	}
	return out
}
