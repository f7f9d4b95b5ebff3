package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"onboarding/internal/onboarding/models"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/platform/sentinel"
)

// numShards spreads per-user locks so unrelated users do not contend.
const numShards = 128

const defaultTxTimeout = 5 * time.Second

// InMemoryStore keeps aggregates in process memory.
//
// Lock order: user shard, then walletMu, then mu.
type InMemoryStore struct {
	shards  [numShards]sync.Mutex
	timeout time.Duration

	mu     sync.RWMutex
	users  map[id.UserID]*models.UserAggregate
	emails map[string]id.UserID

	walletMu sync.Mutex
	wallets  map[string]id.UserID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		timeout: defaultTxTimeout,
		users:   make(map[id.UserID]*models.UserAggregate),
		emails:  make(map[string]id.UserID),
		wallets: make(map[string]id.UserID),
	}
}

func (s *InMemoryStore) Create(ctx context.Context, u *models.UserAggregate, onCreate func(context.Context, *models.UserAggregate) error) (*models.UserAggregate, bool, error) {
	if u == nil {
		return nil, false, errors.New("user aggregate is required")
	}
	var (
		out     *models.UserAggregate
		created bool
	)
	err := s.withUserLock(ctx, u.UID, func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		if existing, ok := s.users[u.UID]; ok {
			out = existing.Clone()
			return nil
		}
		if owner, ok := s.emails[u.Email]; ok && owner != u.UID {
			return sentinel.ErrConflict
		}
		stored := u.Clone()
		if onCreate != nil {
			if err := onCreate(ctx, stored.Clone()); err != nil {
				return err
			}
		}
		s.users[u.UID] = stored
		s.emails[u.Email] = u.UID
		out = stored.Clone()
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, created, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, uid id.UserID) (*models.UserAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[uid]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return u.Clone(), nil
}

func (s *InMemoryStore) FindByWalletKey(ctx context.Context, publicKey string) (*models.UserAggregate, error) {
	s.walletMu.Lock()
	owner, ok := s.wallets[publicKey]
	s.walletMu.Unlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.FindByID(ctx, owner)
}

func (s *InMemoryStore) ApplyStepUpdate(ctx context.Context, uid id.UserID, update models.StepUpdate) (*models.UserAggregate, error) {
	var out *models.UserAggregate
	err := s.withUserLock(ctx, uid, func(ctx context.Context) error {
		s.mu.RLock()
		current, ok := s.users[uid]
		s.mu.RUnlock()
		if !ok {
			return sentinel.ErrNotFound
		}

		next := current.Clone()
		if err := update.Prepare(next); err != nil {
			if errors.Is(err, models.ErrNoChange) {
				out = current.Clone()
				return nil
			}
			return err
		}

		group := update.Group()
		if group == models.StepWallet {
			s.walletMu.Lock()
			defer s.walletMu.Unlock()
			if err := s.checkWalletKey(uid, next.Wallet); err != nil {
				return err
			}
		}

		if update.AfterWrite != nil {
			if err := update.AfterWrite(ctx, next.Clone()); err != nil {
				return err
			}
		}

		stored := current.Clone()
		copyGroup(stored, next, group)
		if group == models.StepWallet {
			s.indexWallet(uid, current.Wallet, stored.Wallet)
		}

		s.mu.Lock()
		s.users[uid] = stored
		s.mu.Unlock()
		out = stored.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// checkWalletKey fails when the key is held by another user. Caller holds walletMu.
func (s *InMemoryStore) checkWalletKey(uid id.UserID, w *models.Wallet) error {
	if w == nil {
		return nil
	}
	if owner, ok := s.wallets[w.PublicKey]; ok && owner != uid {
		return sentinel.ErrConflict
	}
	return nil
}

// indexWallet moves uid's index entry from prev to next. Caller holds walletMu.
func (s *InMemoryStore) indexWallet(uid id.UserID, prev, next *models.Wallet) {
	if prev != nil && (next == nil || prev.PublicKey != next.PublicKey) {
		if s.wallets[prev.PublicKey] == uid {
			delete(s.wallets, prev.PublicKey)
		}
	}
	if next != nil {
		s.wallets[next.PublicKey] = uid
	}
}

// withUserLock serializes fn per uid with a bounded wait.
func (s *InMemoryStore) withUserLock(ctx context.Context, uid id.UserID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	shard := &s.shards[hashUID(uid)%numShards]
	shard.Lock()
	defer shard.Unlock()

	// re-check after waiting for the lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx)
}

// hashUID is FNV-1a.
func hashUID(uid id.UserID) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	s := string(uid)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
