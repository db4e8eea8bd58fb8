package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"clubhub/internal/model"
)

const memberColumns = `
	id, user_id, name, email, phone, department, year, course, college,
	status, role, position, valid_till, payment_status, payment_ref,
	amount_paid, duration, profile_pic, created_at, updated_at
`

func scanMember(row interface{ Scan(...any) error }, m *model.Member) error {
	return row.Scan(
		&m.ID, &m.UserID, &m.Name, &m.Email, &m.Phone, &m.Department,
		&m.Year, &m.Course, &m.College,
		&m.Status, &m.Role, &m.Position, &m.ValidTill,
		&m.PaymentStatus, &m.PaymentRef, &m.AmountPaid, &m.Duration,
		&m.ProfilePic, &m.CreatedAt, &m.UpdatedAt,
	)
}

func (r *repository) CreateMember(ctx context.Context, m *model.Member) error {
	query := `
		INSERT INTO members (id, user_id, name, email, phone, department, year,
		                     course, college, status, role, payment_status,
		                     payment_ref, amount_paid, duration)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.UserID, m.Name, m.Email, m.Phone, m.Department, m.Year,
		m.Course, m.College, m.Status, m.Role, m.PaymentStatus,
		m.PaymentRef, m.AmountPaid, m.Duration,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateMember
		}
		return classify(fmt.Errorf("failed to insert member: %w", err))
	}
	return nil
}

func (r *repository) GetMemberByID(ctx context.Context, id string) (*model.Member, error) {
	return r.getMember(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id)
}

func (r *repository) GetMemberByUserID(ctx context.Context, userID string) (*model.Member, error) {
	return r.getMember(ctx, `SELECT `+memberColumns+` FROM members WHERE user_id = $1`, userID)
}

func (r *repository) getMember(ctx context.Context, query, key string) (*model.Member, error) {
	row, err := r.db.QueryRowWithRetry(ctx, r.strategy, query, key)
	if err != nil {
		return nil, classify(fmt.Errorf("get member: %w", err))
	}

	var m model.Member
	if err := scanMember(row, &m); err != nil {
		return nil, noRowsAs(err, ErrMemberNotFound)
	}
	return &m, nil
}

func (r *repository) GetAllMembers(ctx context.Context) ([]model.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members ORDER BY created_at DESC`

	rows, err := r.db.QueryWithRetry(ctx, r.strategy, query)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to get members: %w", err))
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		var m model.Member
		if err := scanMember(rows, &m); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// ApproveMemberTx sets the member approved with the given validity date.
// Idempotent: approving an approved member only refreshes valid_till. An
// elevated role is never downgraded; position gets a default when empty.
// With confirmPayment the update only lands on a pending payment.
func (r *repository) ApproveMemberTx(ctx context.Context, id string, validTill time.Time, confirmPayment bool) (*model.Member, error) {
	var m model.Member
	err := r.withTxRetry(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE members
			SET status = $1,
			    role = CASE WHEN role IN ('admin', 'execom') THEN role ELSE 'member' END,
			    position = COALESCE(NULLIF(position, ''), $2),
			    valid_till = $3,
			    payment_status = CASE WHEN $4 THEN 'confirmed' ELSE payment_status END,
			    updated_at = NOW()
			WHERE id = $5 AND (NOT $4 OR payment_status = $6)
			RETURNING ` + memberColumns + `
		`
		err := scanMember(tx.QueryRowContext(ctx, query,
			model.MemberApproved, model.DefaultPosition, validTill, confirmPayment, id,
			model.PaymentPending,
		), &m)
		if err != nil {
			if err == sql.ErrNoRows {
				if _, getErr := r.GetMemberByID(ctx, id); getErr != nil {
					return getErr
				}
				return ErrPaymentNotPending
			}
			return classify(fmt.Errorf("failed to approve member: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) RejectMember(ctx context.Context, id string) error {
	var updated string
	err := r.db.QueryRowContext(ctx, `
		UPDATE members SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING id
	`, model.MemberRejected, id, model.MemberPending).Scan(&updated)
	if err != nil {
		if err == sql.ErrNoRows {
			if _, getErr := r.GetMemberByID(ctx, id); getErr != nil {
				return getErr
			}
			return ErrMemberNotPending
		}
		return classify(fmt.Errorf("failed to reject member: %w", err))
	}
	return nil
}

// DeleteMemberTx removes the member and detaches their registrations by
// nulling the identity link, so historical registration rows survive.
func (r *repository) DeleteMemberTx(ctx context.Context, id string) error {
	return r.withTxRetry(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE registrations SET member_id = NULL, updated_at = NOW() WHERE member_id = $1`, id,
		); err != nil {
			return fmt.Errorf("failed to detach registrations: %w", err)
		}

		var deleted string
		err := tx.QueryRowContext(ctx,
			`DELETE FROM members WHERE id = $1 RETURNING id`, id,
		).Scan(&deleted)
		if err != nil {
			return noRowsAs(err, ErrMemberNotFound)
		}
		return nil
	})
}

func (r *repository) UpdateMemberProfile(ctx context.Context, id string, p model.ProfileUpdate) error {
	query := `
		UPDATE members
		SET name = COALESCE($1, name),
		    phone = COALESCE($2, phone),
		    department = COALESCE($3, department),
		    year = COALESCE($4, year),
		    course = COALESCE($5, course),
		    profile_pic = COALESCE($6, profile_pic),
		    updated_at = NOW()
		WHERE id = $7
		RETURNING id
	`
	var updated string
	err := r.db.QueryRowContext(ctx, query,
		p.Name, p.Phone, p.Department, p.Year, p.Course, p.ProfilePic, id,
	).Scan(&updated)
	if err != nil {
		return noRowsAs(err, ErrMemberNotFound)
	}
	return nil
}

func (r *repository) UpdateMemberAdmin(ctx context.Context, id string, u model.AdminUpdate) error {
	query := `
		UPDATE members
		SET role = COALESCE($1, role),
		    status = COALESCE($2, status),
		    position = COALESCE($3, position),
		    duration = COALESCE($4, duration),
		    payment_ref = COALESCE($5, payment_ref),
		    amount_paid = COALESCE($6, amount_paid),
		    valid_till = COALESCE($7, valid_till),
		    updated_at = NOW()
		WHERE id = $8
		RETURNING id
	`
	var updated string
	err := r.db.QueryRowContext(ctx, query,
		u.Role, u.Status, u.Position, u.Duration, u.PaymentRef,
		u.AmountPaid, u.ValidTill, id,
	).Scan(&updated)
	if err != nil {
		return noRowsAs(err, ErrMemberNotFound)
	}
	return nil
}

// SetMemberPaymentRef captures a membership payment reference; the record
// stays pending until an elevated actor verifies it.
func (r *repository) SetMemberPaymentRef(ctx context.Context, id, ref string, amount int, duration string) error {
	query := `
		UPDATE members
		SET payment_status = $1, payment_ref = $2, amount_paid = $3,
		    duration = $4, updated_at = NOW()
		WHERE id = $5 AND payment_status != $6
		RETURNING id
	`
	var updated string
	err := r.db.QueryRowContext(ctx, query,
		model.PaymentPending, ref, amount, duration, id, model.PaymentConfirmed,
	).Scan(&updated)
	if err != nil {
		if err == sql.ErrNoRows {
			if _, getErr := r.GetMemberByID(ctx, id); getErr != nil {
				return getErr
			}
			return ErrPaymentNotPending
		}
		return classify(fmt.Errorf("failed to set member payment reference: %w", err))
	}
	return nil
}
