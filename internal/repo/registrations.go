package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"clubhub/internal/model"
)

const registrationColumns = `
	id, event_id, member_id, full_name, email, phone, branch, year,
	payment_status, payment_ref, amount_paid, created_at, updated_at
`

func scanRegistration(row interface{ Scan(...any) error }, reg *model.Registration) error {
	return row.Scan(
		&reg.ID, &reg.EventID, &reg.MemberID, &reg.FullName, &reg.Email,
		&reg.Phone, &reg.Branch, &reg.Year,
		&reg.PaymentStatus, &reg.PaymentRef, &reg.AmountPaid,
		&reg.CreatedAt, &reg.UpdatedAt,
	)
}

// RegisterTx admits a registration attempt. The event row is locked, the
// seat count and duplicate checks are evaluated against committed state,
// and the insert happens in the same transaction. A created registration
// occupies a seat regardless of payment status.
func (r *repository) RegisterTx(ctx context.Context, reg *model.Registration) (int64, error) {
	var id int64
	err := r.withTxRetry(ctx, func(tx *sql.Tx) error {
		var event model.Event
		err := tx.QueryRowContext(ctx, `
			SELECT id, date, total_seats, is_paid, fee_amount
			FROM events
			WHERE id = $1
			FOR UPDATE
		`, reg.EventID).Scan(&event.ID, &event.Date, &event.TotalSeats, &event.IsPaid, &event.FeeAmount)
		if err != nil {
			return noRowsAs(err, ErrEventNotFound)
		}

		if event.EndedAt(time.Now()) {
			return ErrEventClosed
		}

		var count int
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM registrations WHERE event_id = $1
		`, reg.EventID).Scan(&count)
		if err != nil {
			return fmt.Errorf("failed to count registrations: %w", err)
		}
		if count >= event.TotalSeats {
			return ErrSoldOut
		}

		var existing int
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM registrations
			WHERE event_id = $1
			  AND (email = $2 OR (member_id IS NOT NULL AND member_id = $3))
		`, reg.EventID, reg.Email, reg.MemberID).Scan(&existing)
		if err != nil {
			return fmt.Errorf("failed to check duplicate registration: %w", err)
		}
		if existing > 0 {
			return ErrDuplicateRegistration
		}

		reg.PaymentStatus = model.PaymentNone
		if event.IsPaid {
			reg.PaymentStatus = model.PaymentPending
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO registrations (event_id, member_id, full_name, email, phone,
			                           branch, year, payment_status, payment_ref, amount_paid)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id
		`, reg.EventID, reg.MemberID, reg.FullName, reg.Email, reg.Phone,
			reg.Branch, reg.Year, reg.PaymentStatus, reg.PaymentRef, reg.AmountPaid,
		).Scan(&id)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateRegistration
			}
			return fmt.Errorf("failed to create registration: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	reg.ID = id
	return id, nil
}

func (r *repository) GetRegistrationByID(ctx context.Context, id int64) (*model.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`

	row, err := r.db.QueryRowWithRetry(ctx, r.strategy, query, id)
	if err != nil {
		return nil, classify(fmt.Errorf("get registration: %w", err))
	}

	var reg model.Registration
	if err := scanRegistration(row, &reg); err != nil {
		return nil, noRowsAs(err, ErrRegistrationNotFound)
	}
	return &reg, nil
}

func (r *repository) GetRegistrationsByEventID(ctx context.Context, eventID int64) ([]model.Registration, error) {
	query := `SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryWithRetry(ctx, r.strategy, query, eventID)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to get registrations: %w", err))
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var reg model.Registration
		if err := scanRegistration(rows, &reg); err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

// DeleteRegistration frees the seat. Absence is the source of truth for
// "did not pay"; there is no rejected payment state.
func (r *repository) DeleteRegistration(ctx context.Context, id int64) error {
	var deleted int64
	err := r.db.QueryRowContext(ctx,
		`DELETE FROM registrations WHERE id = $1 RETURNING id`, id,
	).Scan(&deleted)
	if err != nil {
		return noRowsAs(err, ErrRegistrationNotFound)
	}
	return nil
}

// SetRegistrationPaymentRef captures a payment reference; entry to pending
// is forward-only (a confirmed payment is never touched).
func (r *repository) SetRegistrationPaymentRef(ctx context.Context, id int64, ref string, amount int) error {
	query := `
		UPDATE registrations
		SET payment_status = $1, payment_ref = $2, amount_paid = $3, updated_at = NOW()
		WHERE id = $4 AND payment_status != $5
		RETURNING id
	`
	var updated int64
	err := r.db.QueryRowContext(ctx, query,
		model.PaymentPending, ref, amount, id, model.PaymentConfirmed,
	).Scan(&updated)
	if err != nil {
		if err == sql.ErrNoRows {
			if _, getErr := r.GetRegistrationByID(ctx, id); getErr != nil {
				return getErr
			}
			return ErrPaymentNotPending
		}
		return classify(fmt.Errorf("failed to set payment reference: %w", err))
	}
	return nil
}

// ConfirmRegistrationPayment transitions pending -> confirmed. No other
// transition is possible.
func (r *repository) ConfirmRegistrationPayment(ctx context.Context, id int64) error {
	query := `
		UPDATE registrations
		SET payment_status = $1, updated_at = NOW()
		WHERE id = $2 AND payment_status = $3
		RETURNING id
	`
	var updated int64
	err := r.db.QueryRowContext(ctx, query,
		model.PaymentConfirmed, id, model.PaymentPending,
	).Scan(&updated)
	if err != nil {
		if err == sql.ErrNoRows {
			if _, getErr := r.GetRegistrationByID(ctx, id); getErr != nil {
				return getErr
			}
			return ErrPaymentNotPending
		}
		return classify(fmt.Errorf("failed to confirm payment: %w", err))
	}
	return nil
}

// DeleteIfPaymentPendingTx removes the registration only if its payment is
// still pending, freeing the seat. Returns false when the registration was
// already confirmed or gone.
func (r *repository) DeleteIfPaymentPendingTx(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := r.withTxRetry(ctx, func(tx *sql.Tx) error {
		var status model.PaymentStatus
		err := tx.QueryRowContext(ctx, `
			SELECT payment_status FROM registrations WHERE id = $1 FOR UPDATE
		`, id).Scan(&status)
		if err != nil {
			if err == sql.ErrNoRows {
				deleted = false
				return nil
			}
			return fmt.Errorf("failed to select registration for expiry: %w", err)
		}

		if status != model.PaymentPending {
			deleted = false
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM registrations WHERE id = $1`, id,
		); err != nil {
			return fmt.Errorf("failed to delete expired registration: %w", err)
		}
		deleted = true
		return nil
	})
	return deleted, err
}
