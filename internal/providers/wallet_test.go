package providers

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboarding/internal/onboarding/models"
	id "onboarding/pkg/domain"
)

func TestGeneratedWalletVerifies(t *testing.T) {
	ctx := context.Background()
	gen := NewWalletGenerator(0)
	verifier := NewSignatureVerifier()
	uid := id.UserID("u1")

	pub, err := gen.Generate(ctx, uid, models.ChainSolana)
	require.NoError(t, err)
	raw, err := base58.Decode(pub)
	require.NoError(t, err)
	assert.Len(t, raw, ed25519.PublicKeySize)

	msg := "link wallet for u1"
	sig, ok := gen.Sign(uid, msg)
	require.True(t, ok)

	t.Run("valid signature", func(t *testing.T) {
		valid, err := verifier.Verify(ctx, models.ChainSolana, pub, sig, msg)
		require.NoError(t, err)
		assert.True(t, valid)
	})

	t.Run("tampered message", func(t *testing.T) {
		valid, err := verifier.Verify(ctx, models.ChainSolana, pub, sig, msg+"!")
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("undecodable inputs are invalid, not errors", func(t *testing.T) {
		valid, err := verifier.Verify(ctx, models.ChainSolana, "not-base58-0", sig, msg)
		require.NoError(t, err)
		assert.False(t, valid)

		valid, err = verifier.Verify(ctx, models.ChainSolana, pub, "abc", msg)
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("unsupported chain", func(t *testing.T) {
		_, err := verifier.Verify(ctx, models.Chain("ethereum"), pub, sig, msg)
		require.Error(t, err)
		_, err = gen.Generate(ctx, uid, models.Chain("ethereum"))
		require.Error(t, err)
	})

	t.Run("no key for unknown user", func(t *testing.T) {
		_, ok := gen.Sign(id.UserID("u2"), msg)
		assert.False(t, ok)
	})
}
