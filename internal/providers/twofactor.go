package providers

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"onboarding/internal/onboarding/models"
	id "onboarding/pkg/domain"
)

const (
	twoFactorProviderID = "mock-2fa"
	backupCodeCount     = 10
)

// TwoFactorProvisioner issues a TOTP secret (or a WebAuthn challenge) and a
// set of one-time backup codes. Only bcrypt hashes of the codes are kept.
type TwoFactorProvisioner struct {
	latency time.Duration
	cost    int

	mu     sync.Mutex
	hashes map[id.UserID][][]byte
}

// NewTwoFactor constructs a provisioner. cost is the bcrypt cost; zero uses
// bcrypt.DefaultCost.
func NewTwoFactor(latency time.Duration, cost int) *TwoFactorProvisioner {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &TwoFactorProvisioner{
		latency: latency,
		cost:    cost,
		hashes:  make(map[id.UserID][][]byte),
	}
}

func (p *TwoFactorProvisioner) Enable(ctx context.Context, uid id.UserID, method models.TwoFAMethod) (models.TwoFAEnrollment, error) {
	if err := simulateLatency(ctx, twoFactorProviderID, p.latency); err != nil {
		return models.TwoFAEnrollment{}, err
	}
	if !method.IsValid() {
		return models.TwoFAEnrollment{}, newProviderError(ErrorBadData, twoFactorProviderID, "unsupported method", nil)
	}

	secret, err := randomBase32(20)
	if err != nil {
		return models.TwoFAEnrollment{}, newProviderError(ErrorProviderOutage, twoFactorProviderID, "generate secret", err)
	}

	codes := make([]string, backupCodeCount)
	hashes := make([][]byte, backupCodeCount)
	for i := range codes {
		raw, err := randomBase32(5)
		if err != nil {
			return models.TwoFAEnrollment{}, newProviderError(ErrorProviderOutage, twoFactorProviderID, "generate backup code", err)
		}
		codes[i] = raw[:4] + "-" + raw[4:8]
		hashes[i], err = bcrypt.GenerateFromPassword([]byte(codes[i]), p.cost)
		if err != nil {
			return models.TwoFAEnrollment{}, newProviderError(ErrorProviderOutage, twoFactorProviderID, "hash backup code", err)
		}
	}

	p.mu.Lock()
	p.hashes[uid] = hashes
	p.mu.Unlock()

	return models.TwoFAEnrollment{Method: method, Secret: secret, BackupCodes: codes}, nil
}

// RedeemBackupCode consumes a backup code. Each code works once.
func (p *TwoFactorProvisioner) RedeemBackupCode(uid id.UserID, code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	p.mu.Lock()
	defer p.mu.Unlock()
	hashes := p.hashes[uid]
	for i, h := range hashes {
		if bcrypt.CompareHashAndPassword(h, []byte(code)) == nil {
			p.hashes[uid] = append(hashes[:i:i], hashes[i+1:]...)
			return true
		}
	}
	return false
}

func randomBase32(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(b), nil
}
