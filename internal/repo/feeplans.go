package repo

import (
	"context"
	"fmt"

	"clubhub/internal/model"
)

func (r *repository) GetFeePlans(ctx context.Context) ([]model.FeePlan, error) {
	query := `SELECT id, label, amount, years FROM fee_plans ORDER BY amount ASC`

	rows, err := r.db.QueryWithRetry(ctx, r.strategy, query)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to get fee plans: %w", err))
	}
	defer rows.Close()

	var plans []model.FeePlan
	for rows.Next() {
		var p model.FeePlan
		if err := rows.Scan(&p.ID, &p.Label, &p.Amount, &p.Years); err != nil {
			return nil, fmt.Errorf("failed to scan fee plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (r *repository) GetFeePlanByLabel(ctx context.Context, label string) (*model.FeePlan, error) {
	query := `SELECT id, label, amount, years FROM fee_plans WHERE label = $1`

	row, err := r.db.QueryRowWithRetry(ctx, r.strategy, query, label)
	if err != nil {
		return nil, classify(fmt.Errorf("get fee plan: %w", err))
	}

	var p model.FeePlan
	if err := row.Scan(&p.ID, &p.Label, &p.Amount, &p.Years); err != nil {
		return nil, noRowsAs(err, ErrFeePlanNotFound)
	}
	return &p, nil
}
