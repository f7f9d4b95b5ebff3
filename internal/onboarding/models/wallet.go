package models

import (
	"strings"
	"time"

	dErrors "onboarding/pkg/domain-errors"
)

// Chain identifies the blockchain a wallet lives on.
type Chain string

const ChainSolana Chain = "solana"

func (c Chain) IsValid() bool {
	return c == ChainSolana
}

// Wallet is the linked wallet sub-record. PublicKey is unique across users.
type Wallet struct {
	Chain       Chain     `json:"chain"`
	PublicKey   string    `json:"public_key"`
	VerifiedAt  time.Time `json:"verified_at"`
	IsGenerated bool      `json:"is_generated"`
}

func (w *Wallet) Clone() *Wallet {
	if w == nil {
		return nil
	}
	v := *w
	return &v
}

// WalletRequest is the wallet step payload. External wallets carry a
// signature over Message proving control of PublicKey; generated wallets
// carry neither.
type WalletRequest struct {
	Chain       string `json:"chain"`
	PublicKey   string `json:"public_key"`
	Signature   string `json:"signature"`
	Message     string `json:"message"`
	IsGenerated bool   `json:"is_generated"`
}

func (r *WalletRequest) Normalize() {
	if r == nil {
		return
	}
	r.Chain = strings.ToLower(strings.TrimSpace(r.Chain))
	if r.Chain == "" {
		r.Chain = string(ChainSolana)
	}
	r.PublicKey = strings.TrimSpace(r.PublicKey)
	r.Signature = strings.TrimSpace(r.Signature)
}

func (r *WalletRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request is required")
	}
	if !Chain(r.Chain).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unsupported chain")
	}
	if r.IsGenerated {
		if r.Signature != "" {
			return dErrors.New(dErrors.CodeValidation, "generated wallets must not carry a signature")
		}
		return nil
	}
	if r.PublicKey == "" {
		return dErrors.New(dErrors.CodeValidation, "public_key is required")
	}
	if r.Signature == "" || r.Message == "" {
		return dErrors.New(dErrors.CodeValidation, "signature and message are required for external wallets")
	}
	return nil
}
