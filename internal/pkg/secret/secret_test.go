package secret

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("Plain", func(t *testing.T) {
		got, err := Resolve(ctx, "senderpass$", EncodingPlain)
		require.NoError(t, err)
		assert.Equal(t, "senderpass$", got)
	})

	t.Run("DefaultIsPlain", func(t *testing.T) {
		got, err := Resolve(ctx, " keep spaces ", "")
		require.NoError(t, err)
		assert.Equal(t, " keep spaces ", got)
	})

	t.Run("Base64", func(t *testing.T) {
		// encoded with a trailing newline, as `echo pass | base64` does
		got, err := Resolve(ctx, "c2VuZGVycGFzcyQK", EncodingBase64)
		require.NoError(t, err)
		assert.Equal(t, "senderpass$", got)
	})

	t.Run("Base64RoundTrip", func(t *testing.T) {
		got, err := Resolve(ctx, EncodeBase64("app password"), "BASE64")
		require.NoError(t, err)
		assert.Equal(t, "app password", got)
	})

	t.Run("Base64Invalid", func(t *testing.T) {
		_, err := Resolve(ctx, "%%%not-base64", EncodingBase64)
		assert.ErrorContains(t, err, "decode base64")
	})

	t.Run("UnknownEncoding", func(t *testing.T) {
		_, err := Resolve(ctx, "x", "rot13")
		assert.ErrorIs(t, err, ErrUnknownEncoding)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := Resolve(ctx, "", EncodingPlain)
		assert.ErrorIs(t, err, ErrEmpty)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := Resolve(cctx, "x", EncodingPlain)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestResolveKeyring(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set(KeyringService, "me@example.com", "from-keyring"))

	got, err := Resolve(context.Background(), "me@example.com", EncodingKeyring)
	require.NoError(t, err)
	assert.Equal(t, "from-keyring", got)

	_, err = Resolve(context.Background(), "nobody@example.com", EncodingKeyring)
	assert.ErrorIs(t, err, keyring.ErrNotFound)
}
