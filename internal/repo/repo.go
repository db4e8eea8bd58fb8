package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"

	"clubhub/internal/model"
)

type Repository interface {
	// events
	CreateEvent(ctx context.Context, e *model.Event) (int64, error)
	UpdateEvent(ctx context.Context, e *model.Event) error
	GetEventByID(ctx context.Context, id int64) (*model.Event, error)
	GetAllEvents(ctx context.Context) ([]model.Event, error)
	DeleteEventTx(ctx context.Context, id int64) error
	CountRegistrations(ctx context.Context, eventID int64) (int, error)

	// registrations
	RegisterTx(ctx context.Context, reg *model.Registration) (int64, error)
	GetRegistrationByID(ctx context.Context, id int64) (*model.Registration, error)
	GetRegistrationsByEventID(ctx context.Context, eventID int64) ([]model.Registration, error)
	DeleteRegistration(ctx context.Context, id int64) error
	SetRegistrationPaymentRef(ctx context.Context, id int64, ref string, amount int) error
	ConfirmRegistrationPayment(ctx context.Context, id int64) error
	DeleteIfPaymentPendingTx(ctx context.Context, id int64) (bool, error)

	// members
	CreateMember(ctx context.Context, m *model.Member) error
	GetMemberByID(ctx context.Context, id string) (*model.Member, error)
	GetMemberByUserID(ctx context.Context, userID string) (*model.Member, error)
	GetAllMembers(ctx context.Context) ([]model.Member, error)
	ApproveMemberTx(ctx context.Context, id string, validTill time.Time, confirmPayment bool) (*model.Member, error)
	RejectMember(ctx context.Context, id string) error
	DeleteMemberTx(ctx context.Context, id string) error
	UpdateMemberProfile(ctx context.Context, id string, p model.ProfileUpdate) error
	UpdateMemberAdmin(ctx context.Context, id string, u model.AdminUpdate) error
	SetMemberPaymentRef(ctx context.Context, id, ref string, amount int, duration string) error

	// fee plans
	GetFeePlans(ctx context.Context) ([]model.FeePlan, error)
	GetFeePlanByLabel(ctx context.Context, label string) (*model.FeePlan, error)
}

type repository struct {
	db       *dbpg.DB
	log      *zerolog.Logger
	strategy retry.Strategy
}

func NewRepository(db *dbpg.DB, log *zerolog.Logger) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.Master.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return &repository{
		db:  db,
		log: log,
		strategy: retry.Strategy{
			Attempts: 3,
			Delay:    500 * time.Millisecond,
			Backoff:  2,
		},
	}, nil
}

// withTxRetry runs fn inside a transaction and re-runs it only when the
// failure classifies as retryable. Terminal errors surface unchanged.
func (r *repository) withTxRetry(ctx context.Context, fn func(tx *sql.Tx) error) error {
	delay := r.strategy.Delay
	var err error
	for attempt := 1; ; attempt++ {
		err = r.runTx(ctx, fn)
		if err == nil || !Retryable(err) || attempt >= r.strategy.Attempts {
			return err
		}
		r.log.Warn().Err(err).Int("attempt", attempt).Msg("retrying transaction")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * float64(r.strategy.Backoff))
	}
}

func (r *repository) runTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return classify(fmt.Errorf("failed to start transaction: %w", err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return classify(err)
	}
	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

func noRowsAs(err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return classify(err)
}
