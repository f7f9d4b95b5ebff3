package service

import (
	"context"
	"errors"
	"strings"

	"onboarding/internal/onboarding/models"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	audit "onboarding/pkg/platform/audit"
	"onboarding/pkg/platform/sentinel"
	"onboarding/pkg/requestcontext"
)

// LinkWallet links an external wallet (proven by signature, KYC approved
// required) or a server-generated one (KYC not required). A public key
// belongs to at most one user; relinking the same key to the same user is a
// no-op.
func (s *Service) LinkWallet(ctx context.Context, uid id.UserID, req *models.WalletRequest) (_ *models.UserAggregate, err error) {
	ctx, span := s.startSpan(ctx, "LinkWallet", uid)
	defer func() { endSpan(span, err) }()

	if req == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	attempt := models.Attempt{Step: models.StepWallet, GeneratedWallet: req.IsGenerated}
	u, err := s.load(ctx, uid, attempt)
	if err != nil {
		return nil, err
	}

	chain := models.Chain(req.Chain)
	var publicKey string
	if req.IsGenerated {
		publicKey, err = s.generatedKey(ctx, u, chain)
	} else {
		publicKey, err = s.verifiedKey(ctx, u, chain, req)
	}
	if err != nil {
		return nil, err
	}

	if err := s.ensureKeyAvailable(ctx, uid, publicKey); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	decision := "external"
	if req.IsGenerated {
		decision = "generated"
	}
	return s.applyStep(ctx, uid, models.StepUpdate{
		Attempt: attempt,
		Mutate: func(u *models.UserAggregate) error {
			if walletLinked(u, chain, publicKey) && u.Wallet.IsGenerated == req.IsGenerated {
				return models.ErrNoChange
			}
			u.Wallet = &models.Wallet{
				Chain:       chain,
				PublicKey:   publicKey,
				VerifiedAt:  now,
				IsGenerated: req.IsGenerated,
			}
			u.MarkStepCompleted(models.StepWallet, now)
			u.Touch(now)
			return nil
		},
	}, audit.Event{
		Action:   string(audit.EventWalletLinked),
		Decision: decision,
		Reason:   string(chain) + ":" + publicKey,
	})
}

// generatedKey returns the user's existing generated key or asks the
// generator for a new one.
func (s *Service) generatedKey(ctx context.Context, u *models.UserAggregate, chain models.Chain) (string, error) {
	if generatedWalletReusable(u, chain) {
		return u.Wallet.PublicKey, nil
	}
	key, err := callCollaborator(ctx, s, CollaboratorWallets, func(ctx context.Context) (string, error) {
		return s.collab.Wallets.Generate(ctx, u.UID, chain)
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(key) == "" {
		return "", dErrors.New(dErrors.CodeCollaboratorFailure, "wallet generator returned an empty key")
	}
	return key, nil
}

// verifiedKey checks that the signed message is bound to this user and that
// the signature proves control of the key.
func (s *Service) verifiedKey(ctx context.Context, u *models.UserAggregate, chain models.Chain, req *models.WalletRequest) (string, error) {
	if !strings.Contains(req.Message, u.UID.String()) {
		return "", dErrors.New(dErrors.CodeValidation, "signed message must reference the user id")
	}
	ok, err := callCollaborator(ctx, s, CollaboratorSignatures, func(ctx context.Context) (bool, error) {
		return s.collab.Signatures.Verify(ctx, chain, req.PublicKey, req.Signature, req.Message)
	})
	if err != nil {
		return "", err
	}
	if !ok {
		return "", dErrors.New(dErrors.CodeValidation, "wallet signature verification failed")
	}
	return req.PublicKey, nil
}

// ensureKeyAvailable is the fast-path uniqueness check. The store enforces
// the same rule at write time.
func (s *Service) ensureKeyAvailable(ctx context.Context, uid id.UserID, publicKey string) error {
	owner, err := s.store.FindByWalletKey(ctx, publicKey)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return nil
	case err != nil:
		return s.translate(err, "failed to check wallet ownership")
	case owner.UID != uid:
		return errWalletTaken
	}
	return nil
}

var errWalletTaken = dErrors.New(dErrors.CodeConflict, "wallet public key is already linked to another user")
