package requestid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", FromContext(ctx))
}

func TestFromContext_GeneratesWhenMissing(t *testing.T) {
	id := FromContext(context.Background())
	assert.NotEmpty(t, id)

	// Each call without a stored ID yields a fresh one.
	assert.NotEqual(t, id, FromContext(context.Background()))
}

func TestNew(t *testing.T) {
	ctx, id := New(context.Background())
	assert.NotEmpty(t, id)
	assert.Equal(t, id, FromContext(ctx))
}
