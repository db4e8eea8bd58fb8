package repo

import (
	"context"
	"database/sql"
	"fmt"

	"clubhub/internal/model"
)

const eventColumns = `
	id, title, description, type, date, time, location,
	total_seats, is_paid, fee_amount, payment_timeout_minutes,
	display_order, image_url, whatsapp_link, external_link,
	created_at, updated_at
`

func scanEvent(row interface{ Scan(...any) error }, e *model.Event) error {
	return row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Type, &e.Date, &e.Time, &e.Location,
		&e.TotalSeats, &e.IsPaid, &e.FeeAmount, &e.PaymentTimeoutMinutes,
		&e.DisplayOrder, &e.ImageURL, &e.WhatsappLink, &e.ExternalLink,
		&e.CreatedAt, &e.UpdatedAt,
	)
}

func (r *repository) CreateEvent(ctx context.Context, e *model.Event) (int64, error) {
	query := `
		INSERT INTO events (title, description, type, date, time, location,
		                    total_seats, is_paid, fee_amount, payment_timeout_minutes,
		                    display_order, image_url, whatsapp_link, external_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	row := r.db.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Type, e.Date, e.Time, e.Location,
		e.TotalSeats, e.IsPaid, e.FeeAmount, e.PaymentTimeoutMinutes,
		e.DisplayOrder, e.ImageURL, e.WhatsappLink, e.ExternalLink,
	)

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, classify(fmt.Errorf("failed to insert event: %w", err))
	}
	return id, nil
}

// UpdateEvent rewrites the event row. Capacity may not drop below the
// seats already taken, so the shrink check rides the same statement.
func (r *repository) UpdateEvent(ctx context.Context, e *model.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, type = $3, date = $4, time = $5,
		    location = $6, total_seats = $7, is_paid = $8, fee_amount = $9,
		    payment_timeout_minutes = $10, display_order = $11, image_url = $12,
		    whatsapp_link = $13, external_link = $14, updated_at = NOW()
		WHERE id = $15
		  AND $7 >= (SELECT COUNT(*) FROM registrations WHERE event_id = $15)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Type, e.Date, e.Time, e.Location,
		e.TotalSeats, e.IsPaid, e.FeeAmount, e.PaymentTimeoutMinutes,
		e.DisplayOrder, e.ImageURL, e.WhatsappLink, e.ExternalLink, e.ID,
	).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			if _, getErr := r.GetEventByID(ctx, e.ID); getErr != nil {
				return getErr
			}
			return ErrSeatsBelowRegistered
		}
		return classify(fmt.Errorf("failed to update event: %w", err))
	}
	return nil
}

func (r *repository) GetEventByID(ctx context.Context, id int64) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	row, err := r.db.QueryRowWithRetry(ctx, r.strategy, query, id)
	if err != nil {
		return nil, classify(fmt.Errorf("get event: %w", err))
	}

	var e model.Event
	if err := scanEvent(row, &e); err != nil {
		return nil, noRowsAs(err, ErrEventNotFound)
	}
	return &e, nil
}

func (r *repository) GetAllEvents(ctx context.Context) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY display_order ASC, date ASC`

	rows, err := r.db.QueryWithRetry(ctx, r.strategy, query)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to get events: %w", err))
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeleteEventTx removes an event and all of its registrations in one
// transaction. A failure partway leaves the pre-delete state.
func (r *repository) DeleteEventTx(ctx context.Context, id int64) error {
	return r.withTxRetry(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM registrations WHERE event_id = $1`, id,
		); err != nil {
			return fmt.Errorf("failed to delete registrations for event: %w", err)
		}

		var deleted int64
		err := tx.QueryRowContext(ctx,
			`DELETE FROM events WHERE id = $1 RETURNING id`, id,
		).Scan(&deleted)
		if err != nil {
			return noRowsAs(err, ErrEventNotFound)
		}
		return nil
	})
}

func (r *repository) CountRegistrations(ctx context.Context, eventID int64) (int, error) {
	query := `SELECT COUNT(*) FROM registrations WHERE event_id = $1`

	row, err := r.db.QueryRowWithRetry(ctx, r.strategy, query, eventID)
	if err != nil {
		return 0, classify(fmt.Errorf("count registrations: %w", err))
	}

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return count, nil
}
