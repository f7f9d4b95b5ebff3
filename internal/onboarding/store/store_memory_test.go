package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"onboarding/internal/onboarding/models"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) create(uid id.UserID, email string, steps ...models.Step) *models.UserAggregate {
	u := models.NewUserAggregate(uid, email, "en", s.now)
	for _, step := range steps {
		u.MarkStepCompleted(step, s.now)
	}
	stored, created, err := s.store.Create(s.ctx, u, nil)
	s.Require().NoError(err)
	s.Require().True(created)
	return stored
}

func (s *InMemoryStoreSuite) linkWallet(uid id.UserID, key string) (*models.UserAggregate, error) {
	return s.store.ApplyStepUpdate(s.ctx, uid, models.StepUpdate{
		Attempt: models.Attempt{Step: models.StepWallet, GeneratedWallet: true},
		Mutate: func(u *models.UserAggregate) error {
			u.Wallet = &models.Wallet{Chain: models.ChainSolana, PublicKey: key, VerifiedAt: s.now, IsGenerated: true}
			u.MarkStepCompleted(models.StepWallet, s.now)
			return nil
		},
	})
}

func (s *InMemoryStoreSuite) TestCreate() {
	s.Run("second create returns the stored record unchanged", func() {
		first := s.create("u1", "a@example.com")
		again, created, err := s.store.Create(s.ctx, models.NewUserAggregate("u1", "other@example.com", "fr", s.now.Add(time.Hour)), nil)
		s.Require().NoError(err)
		s.False(created)
		s.Equal(first, again)
	})

	s.Run("email held by another uid conflicts", func() {
		_, _, err := s.store.Create(s.ctx, models.NewUserAggregate("u2", "a@example.com", "en", s.now), nil)
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("hook failure leaves nothing behind", func() {
		boom := errors.New("audit down")
		_, _, err := s.store.Create(s.ctx, models.NewUserAggregate("u3", "c@example.com", "en", s.now),
			func(context.Context, *models.UserAggregate) error { return boom })
		s.ErrorIs(err, boom)
		_, err = s.store.FindByID(s.ctx, "u3")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestApplyStepUpdate() {
	s.Run("unknown uid is not found", func() {
		_, err := s.store.ApplyStepUpdate(s.ctx, "missing", models.StepUpdate{Attempt: models.Attempt{Step: models.StepConsents}})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("precondition is re-evaluated under the lock", func() {
		before := s.create("order", "order@example.com")
		_, err := s.store.ApplyStepUpdate(s.ctx, "order", models.StepUpdate{
			Attempt: models.Attempt{Step: models.StepProfile},
			Mutate: func(u *models.UserAggregate) error {
				u.Profile = &models.Profile{FirstName: "Ada"}
				return nil
			},
		})
		s.True(dErrors.HasCode(err, dErrors.CodePreconditionFailed))
		after, err := s.store.FindByID(s.ctx, "order")
		s.Require().NoError(err)
		s.Equal(before, after)
	})

	s.Run("hook failure rolls back the step", func() {
		s.create("hook", "hook@example.com")
		boom := errors.New("outbox unavailable")
		_, err := s.store.ApplyStepUpdate(s.ctx, "hook", models.StepUpdate{
			Attempt: models.Attempt{Step: models.StepConsents},
			Mutate: func(u *models.UserAggregate) error {
				u.Consents = models.NewConsents(models.LegalVersions{TOS: "1", Privacy: "1", Risk: "1"}, s.now)
				u.MarkStepCompleted(models.StepConsents, s.now)
				return nil
			},
			AfterWrite: func(context.Context, *models.UserAggregate) error { return boom },
		})
		s.ErrorIs(err, boom)
		got, err := s.store.FindByID(s.ctx, "hook")
		s.Require().NoError(err)
		s.Nil(got.Consents)
		s.Empty(got.Onboarding.CompletedSteps)
	})

	s.Run("no change skips the write and the hook", func() {
		before := s.create("noop", "noop@example.com")
		hooked := false
		got, err := s.store.ApplyStepUpdate(s.ctx, "noop", models.StepUpdate{
			Attempt:    models.Attempt{Step: models.StepConsents},
			Mutate:     func(*models.UserAggregate) error { return models.ErrNoChange },
			AfterWrite: func(context.Context, *models.UserAggregate) error { hooked = true; return nil },
		})
		s.Require().NoError(err)
		s.False(hooked)
		s.Equal(before, got)
	})

	s.Run("only the step's own column group is persisted", func() {
		s.create("cols", "cols@example.com")
		got, err := s.store.ApplyStepUpdate(s.ctx, "cols", models.StepUpdate{
			Attempt: models.Attempt{Step: models.StepConsents},
			Mutate: func(u *models.UserAggregate) error {
				u.Consents = models.NewConsents(models.LegalVersions{TOS: "1", Privacy: "1", Risk: "1"}, s.now)
				u.Profile = &models.Profile{FirstName: "stray"}
				u.MarkStepCompleted(models.StepConsents, s.now)
				return nil
			},
		})
		s.Require().NoError(err)
		s.NotNil(got.Consents)
		s.Nil(got.Profile)
		s.Equal(models.StepProfile, got.Onboarding.CurrentStep)
	})

	s.Run("returned aggregate is a copy", func() {
		got, err := s.store.FindByID(s.ctx, "cols")
		s.Require().NoError(err)
		got.Consents.TOS.Version = "tampered"
		again, err := s.store.FindByID(s.ctx, "cols")
		s.Require().NoError(err)
		s.Equal("1", again.Consents.TOS.Version)
	})
}

func (s *InMemoryStoreSuite) TestWalletUniqueness() {
	s.create("a", "a@example.com", models.StepConsents, models.StepProfile)
	s.create("b", "b@example.com", models.StepConsents, models.StepProfile)

	_, err := s.linkWallet("a", "KEY-X")
	s.Require().NoError(err)

	owner, err := s.store.FindByWalletKey(s.ctx, "KEY-X")
	s.Require().NoError(err)
	s.Equal(id.UserID("a"), owner.UID)

	_, err = s.linkWallet("b", "KEY-X")
	s.ErrorIs(err, sentinel.ErrConflict)
	b, err := s.store.FindByID(s.ctx, "b")
	s.Require().NoError(err)
	s.Nil(b.Wallet)

	_, err = s.linkWallet("a", "KEY-X")
	s.NoError(err, "relinking to the same user is allowed")

	_, err = s.linkWallet("a", "KEY-Y")
	s.Require().NoError(err)
	_, err = s.store.FindByWalletKey(s.ctx, "KEY-X")
	s.ErrorIs(err, sentinel.ErrNotFound, "old key is released")

	_, err = s.linkWallet("b", "KEY-X")
	s.NoError(err)
}

// TestConcurrentDifferentSteps submits two different steps for the same user
// many times in parallel; neither step's data may be lost.
func (s *InMemoryStoreSuite) TestConcurrentDifferentSteps() {
	s.create("race", "race@example.com", models.StepConsents, models.StepProfile)

	const rounds = 50
	var wg sync.WaitGroup
	errs := make(chan error, 2*rounds)
	for i := range rounds {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.store.ApplyStepUpdate(s.ctx, "race", models.StepUpdate{
				Attempt: models.Attempt{Step: models.StepKYC},
				Mutate: func(u *models.UserAggregate) error {
					u.KYC = models.NewKYC(models.KYCResult{Status: models.KYCStatusPending, Reference: fmt.Sprintf("ref-%d", i)}, s.now)
					return nil
				},
			})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := s.store.ApplyStepUpdate(s.ctx, "race", models.StepUpdate{
				Attempt: models.Attempt{Step: models.StepWallet, GeneratedWallet: true},
				Mutate: func(u *models.UserAggregate) error {
					u.Wallet = &models.Wallet{Chain: models.ChainSolana, PublicKey: fmt.Sprintf("gen-%d", i), IsGenerated: true}
					u.MarkStepCompleted(models.StepWallet, s.now)
					return nil
				},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	got, err := s.store.FindByID(s.ctx, "race")
	s.Require().NoError(err)
	s.Require().NotNil(got.KYC)
	s.Require().NotNil(got.Wallet)
	s.True(got.IsStepCompleted(models.StepWallet))
	s.Len(got.Onboarding.CompletedSteps, 3)

	owner, err := s.store.FindByWalletKey(s.ctx, got.Wallet.PublicKey)
	s.Require().NoError(err)
	s.Equal(id.UserID("race"), owner.UID)
}

func (s *InMemoryStoreSuite) TestCancelledContext() {
	s.create("ctx", "ctx@example.com")
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err := s.store.ApplyStepUpdate(ctx, "ctx", models.StepUpdate{Attempt: models.Attempt{Step: models.StepConsents}})
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
}
