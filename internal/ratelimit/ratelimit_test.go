package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowRespectsBurst(t *testing.T) {
	kl := New(1, 2)

	assert.True(t, kl.Allow("ip"))
	assert.True(t, kl.Allow("ip"))
	assert.False(t, kl.Allow("ip"), "burst exhausted")
}

func TestKeysAreIndependent(t *testing.T) {
	kl := New(1, 1)

	require.True(t, kl.Allow("10.0.0.1"))
	assert.False(t, kl.Allow("10.0.0.1"))
	assert.True(t, kl.Allow("10.0.0.2"), "second key has its own bucket")
}

func TestWaitHonorsContext(t *testing.T) {
	kl := New(0.1, 1)
	kl.Allow("ip")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := kl.Wait(ctx, "ip")
	require.Error(t, err, "wait must give up when the context expires")
}
