package scope

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginGeneratesCorrelationID(t *testing.T) {
	ctx, s := Begin(context.Background(), " req-1 ", "")
	require.NotNil(t, s)
	assert.Equal(t, "req-1", s.RequestID)
	assert.Len(t, s.CorrelationID, 26)
	assert.Same(t, s, From(ctx))
	assert.Equal(t, s.CorrelationID, CorrelationID(ctx))
}

func TestBeginKeepsCallerCorrelationID(t *testing.T) {
	ctx, _ := Begin(context.Background(), "req-1", "upstream-7")
	assert.Equal(t, "upstream-7", CorrelationID(ctx))
}

func TestSetQuoteKeepsEarlierValues(t *testing.T) {
	_, s := Begin(context.Background(), "req-1", "")
	s.SetQuote("abc", "ltl")
	s.SetQuote("", "")
	assert.Equal(t, "abc", s.QuoteRequestID)
	assert.Equal(t, "LTL", s.Mode)
}

func TestMissingScope(t *testing.T) {
	assert.Nil(t, From(context.Background()))
	assert.Empty(t, CorrelationID(context.Background()))

	var s *Scope
	assert.NotPanics(t, func() { s.SetQuote("abc", "FTL") })
}
