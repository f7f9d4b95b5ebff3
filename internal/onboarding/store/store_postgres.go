package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/lib/pq"

	"onboarding/internal/onboarding/jurisdiction"
	"onboarding/internal/onboarding/models"
	"onboarding/internal/platform/postgres"
	id "onboarding/pkg/domain"
	"onboarding/pkg/platform/sentinel"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the schema files for postgres.Migrate.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

const userColumns = `uid, email, locale, jurisdiction, current_step, completed_steps, completed,
	completed_at, last_activity_at, consents, profile, kyc, wallet, broker, security,
	preferences, created_at`

// PostgresStore persists aggregates in the onboarding_users table.
type PostgresStore struct {
	db        *sql.DB
	txTimeout time.Duration
}

// NewPostgres constructs a PostgreSQL-backed store. txTimeout bounds each
// transaction; zero uses the platform default.
func NewPostgres(db *sql.DB, txTimeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, txTimeout: txTimeout}
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) Create(ctx context.Context, u *models.UserAggregate, onCreate func(context.Context, *models.UserAggregate) error) (*models.UserAggregate, bool, error) {
	if u == nil {
		return nil, false, errors.New("user aggregate is required")
	}
	var (
		out     *models.UserAggregate
		created bool
	)
	err := postgres.RunInTx(ctx, s.db, s.txTimeout, func(ctx context.Context, tx *sql.Tx) error {
		existing, err := s.selectUser(ctx, tx, `WHERE uid = $1`, u.UID.String())
		if err == nil {
			out = existing
			return nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO onboarding_users (uid, email, locale, jurisdiction, current_step, completed_steps,
				completed, last_activity_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7, $8, $8)
			ON CONFLICT (uid) DO NOTHING
		`, u.UID.String(), u.Email, u.Locale, string(u.Jurisdiction), string(u.Onboarding.CurrentStep),
			pq.Array(stepStrings(u.Onboarding.CompletedSteps)), u.Onboarding.LastActivityAt, u.CreatedAt)
		if err != nil {
			if _, ok := postgres.UniqueViolation(err); ok {
				return fmt.Errorf("email %s: %w", u.Email, sentinel.ErrConflict)
			}
			return fmt.Errorf("insert onboarding user: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			// lost an insert race for the same uid
			existing, err := s.selectUser(ctx, tx, `WHERE uid = $1`, u.UID.String())
			if err != nil {
				return err
			}
			out = existing
			return nil
		}

		if onCreate != nil {
			if err := onCreate(ctx, u.Clone()); err != nil {
				return err
			}
		}
		// read back so callers see the stored timestamp precision
		out, err = s.selectUser(ctx, tx, `WHERE uid = $1`, u.UID.String())
		created = err == nil
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return out, created, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, uid id.UserID) (*models.UserAggregate, error) {
	return s.selectUser(ctx, s.db, `WHERE uid = $1`, uid.String())
}

func (s *PostgresStore) FindByWalletKey(ctx context.Context, publicKey string) (*models.UserAggregate, error) {
	return s.selectUser(ctx, s.db, `WHERE wallet_public_key = $1`, publicKey)
}

func (s *PostgresStore) ApplyStepUpdate(ctx context.Context, uid id.UserID, update models.StepUpdate) (*models.UserAggregate, error) {
	var out *models.UserAggregate
	err := postgres.RunInTx(ctx, s.db, s.txTimeout, func(ctx context.Context, tx *sql.Tx) error {
		current, err := s.selectUser(ctx, tx, `WHERE uid = $1 FOR UPDATE`, uid.String())
		if err != nil {
			return err
		}

		next := current.Clone()
		if err := update.Prepare(next); err != nil {
			if errors.Is(err, models.ErrNoChange) {
				out = current
				return nil
			}
			return err
		}

		group := update.Group()
		if err := s.writeGroup(ctx, tx, uid, next, group); err != nil {
			return err
		}
		if update.AfterWrite != nil {
			if err := update.AfterWrite(ctx, next.Clone()); err != nil {
				return err
			}
		}

		out, err = s.selectUser(ctx, tx, `WHERE uid = $1`, uid.String())
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// writeGroup updates the progress columns plus the columns owned by group.
func (s *PostgresStore) writeGroup(ctx context.Context, tx *sql.Tx, uid id.UserID, u *models.UserAggregate, group models.Step) error {
	p := u.Onboarding
	args := []any{
		uid.String(),
		string(p.CurrentStep),
		pq.Array(stepStrings(p.CompletedSteps)),
		p.Completed,
		nullTime(p.CompletedAt),
		p.LastActivityAt,
		time.Now().UTC(),
	}
	set := `current_step = $2, completed_steps = $3, completed = $4, completed_at = $5,
		last_activity_at = $6, updated_at = $7`

	var (
		extra []string
		vals  []any
		err   error
	)
	switch group {
	case models.StepConsents:
		extra, vals, err = jsonColumn("consents", u.Consents)
	case models.StepProfile:
		extra, vals, err = jsonColumn("profile", u.Profile)
		extra, vals = append(extra, "jurisdiction"), append(vals, string(u.Jurisdiction))
	case models.StepKYC:
		extra, vals, err = jsonColumn("kyc", u.KYC)
		var status any
		if u.KYC != nil {
			status = string(u.KYC.Status)
		}
		extra, vals = append(extra, "kyc_status"), append(vals, status)
	case models.StepWallet:
		extra, vals, err = jsonColumn("wallet", u.Wallet)
		var key any
		if u.Wallet != nil {
			key = u.Wallet.PublicKey
		}
		extra, vals = append(extra, "wallet_public_key"), append(vals, key)
	case models.StepBroker:
		extra, vals, err = jsonColumn("broker", u.Broker)
	case models.StepSecurity:
		extra, vals, err = jsonColumn("security", u.Security)
	case models.StepPreferences:
		extra, vals, err = jsonColumn("preferences", u.Preferences)
	}
	if err != nil {
		return err
	}
	for i, col := range extra {
		args = append(args, vals[i])
		set += fmt.Sprintf(", %s = $%d", col, len(args))
	}

	res, err := tx.ExecContext(ctx, `UPDATE onboarding_users SET `+set+` WHERE uid = $1`, args...)
	if err != nil {
		if _, ok := postgres.UniqueViolation(err); ok {
			return fmt.Errorf("update %s: %w", group, sentinel.ErrConflict)
		}
		return fmt.Errorf("update onboarding user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) selectUser(ctx context.Context, q queryer, where string, args ...any) (*models.UserAggregate, error) {
	var (
		u           models.UserAggregate
		uid         string
		juris       string
		currentStep string
		steps       []string
		completedAt sql.NullTime
		consents    []byte
		profile     []byte
		kyc         []byte
		wallet      []byte
		broker      []byte
		security    []byte
		preferences []byte
	)
	err := q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM onboarding_users `+where, args...).Scan(
		&uid, &u.Email, &u.Locale, &juris, &currentStep, pq.Array(&steps), &u.Onboarding.Completed,
		&completedAt, &u.Onboarding.LastActivityAt, &consents, &profile, &kyc, &wallet, &broker,
		&security, &preferences, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("select onboarding user: %w", err)
	}

	u.UID = id.UserID(uid)
	u.Jurisdiction = jurisdiction.Jurisdiction(juris)
	u.Onboarding.CurrentStep = models.Step(currentStep)
	u.Onboarding.CompletedSteps = make([]models.Step, 0, len(steps))
	for _, st := range steps {
		u.Onboarding.CompletedSteps = append(u.Onboarding.CompletedSteps, models.Step(st))
	}
	if completedAt.Valid {
		t := completedAt.Time
		u.Onboarding.CompletedAt = &t
	}

	for _, col := range []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"consents", consents, &u.Consents},
		{"profile", profile, &u.Profile},
		{"kyc", kyc, &u.KYC},
		{"wallet", wallet, &u.Wallet},
		{"broker", broker, &u.Broker},
		{"security", security, &u.Security},
		{"preferences", preferences, &u.Preferences},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dst); err != nil {
			return nil, fmt.Errorf("decode %s column: %w", col.name, err)
		}
	}
	return &u, nil
}

// jsonColumn encodes v for a JSONB column. A nil pointer stores NULL.
func jsonColumn[T any](name string, v *T) ([]string, []any, error) {
	if v == nil {
		return []string{name}, []any{nil}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encode %s column: %w", name, err)
	}
	return []string{name}, []any{string(b)}, nil
}

func stepStrings(steps []models.Step) []string {
	out := make([]string, len(steps))
	for i, st := range steps {
		out[i] = string(st)
	}
	return out
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
