// Package scope carries the identifiers of one rating call through context:
// the transport request id, a correlation id shared with upstream callers,
// and the quote request id and mode once the payload has been read.
package scope

import (
	"context"
	"strings"

	"github.com/oklog/ulid/v2"
)

type scopeKey struct{}

// Scope is owned by the goroutine serving the request.
type Scope struct {
	RequestID      string
	CorrelationID  string
	QuoteRequestID string
	Mode           string
}

// Begin attaches a new scope to ctx. A blank correlationID is replaced by a
// fresh ULID.
func Begin(ctx context.Context, requestID, correlationID string) (context.Context, *Scope) {
	s := &Scope{
		RequestID:     strings.TrimSpace(requestID),
		CorrelationID: strings.TrimSpace(correlationID),
	}
	if s.CorrelationID == "" {
		s.CorrelationID = ulid.Make().String()
	}
	return context.WithValue(ctx, scopeKey{}, s), s
}

// From returns the scope on ctx, or nil.
func From(ctx context.Context) *Scope {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(scopeKey{}).(*Scope)
	return s
}

// CorrelationID returns the correlation id on ctx, or "".
func CorrelationID(ctx context.Context) string {
	if s := From(ctx); s != nil {
		return s.CorrelationID
	}
	return ""
}

// SetQuote records the quote request id and mode. Blank values keep what
// was recorded before.
func (s *Scope) SetQuote(requestID, mode string) {
	if s == nil {
		return
	}
	if v := strings.TrimSpace(requestID); v != "" {
		s.QuoteRequestID = v
	}
	if v := strings.TrimSpace(mode); v != "" {
		s.Mode = strings.ToUpper(v)
	}
}
