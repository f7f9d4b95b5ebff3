package providers

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"sync"
	"time"

	"github.com/mr-tron/base58"

	"onboarding/internal/onboarding/models"
	id "onboarding/pkg/domain"
)

const (
	walletProviderID    = "mock-custody"
	signatureProviderID = "ed25519-verifier"
)

// SignatureVerifier checks Solana-style wallet proofs: base58 ed25519 public
// key, base58 signature over the raw message bytes.
type SignatureVerifier struct{}

func NewSignatureVerifier() SignatureVerifier {
	return SignatureVerifier{}
}

// Verify returns false for a well-formed but wrong signature and an error
// only for inputs that cannot be decoded.
func (SignatureVerifier) Verify(_ context.Context, chain models.Chain, publicKey, signature, message string) (bool, error) {
	if chain != models.ChainSolana {
		return false, newProviderError(ErrorBadData, signatureProviderID, "unsupported chain", nil)
	}
	pub, err := base58.Decode(publicKey)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false, nil
	}
	sig, err := base58.Decode(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false, nil
	}
	return ed25519.Verify(ed25519.PublicKey(pub), []byte(message), sig), nil
}

// WalletGenerator creates custodial ed25519 keypairs. Private keys stay in
// process memory; this adapter stands in for a custody service.
type WalletGenerator struct {
	latency time.Duration

	mu   sync.Mutex
	keys map[id.UserID]ed25519.PrivateKey
}

func NewWalletGenerator(latency time.Duration) *WalletGenerator {
	return &WalletGenerator{latency: latency, keys: make(map[id.UserID]ed25519.PrivateKey)}
}

func (g *WalletGenerator) Generate(ctx context.Context, uid id.UserID, chain models.Chain) (string, error) {
	if err := simulateLatency(ctx, walletProviderID, g.latency); err != nil {
		return "", err
	}
	if chain != models.ChainSolana {
		return "", newProviderError(ErrorBadData, walletProviderID, "unsupported chain", nil)
	}
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", newProviderError(ErrorProviderOutage, walletProviderID, "generate key", err)
	}
	g.mu.Lock()
	g.keys[uid] = priv
	g.mu.Unlock()
	return base58.Encode(pub), nil
}

// Sign signs message with the custodial key generated for uid.
func (g *WalletGenerator) Sign(uid id.UserID, message string) (string, bool) {
	g.mu.Lock()
	priv, ok := g.keys[uid]
	g.mu.Unlock()
	if !ok {
		return "", false
	}
	return base58.Encode(ed25519.Sign(priv, []byte(message))), true
}
