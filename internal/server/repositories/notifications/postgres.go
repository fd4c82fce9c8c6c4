package notifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dreamteller/internal/dbx"
	"github.com/dmitrijs2005/dreamteller/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetSubscription(ctx context.Context, userID string) (models.Subscription, error) {
	var sub models.Subscription
	err := r.db.QueryRowContext(ctx,
		`SELECT daily, interpretation FROM subscriptions WHERE user_id = $1`, userID).
		Scan(&sub.Daily, &sub.Interpretation)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Subscription{}, nil
	}
	if err != nil {
		return sub, fmt.Errorf("db error: %w", err)
	}
	return sub, nil
}

func (r *PostgresRepository) SetSubscription(ctx context.Context, userID string, sub models.Subscription) error {
	query :=
		`INSERT INTO subscriptions (user_id, daily, interpretation)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE
		 SET daily = EXCLUDED.daily, interpretation = EXCLUDED.interpretation, updated_at = now()
		 `
	if _, err := r.db.ExecContext(ctx, query, userID, sub.Daily, sub.Interpretation); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SaveFCMToken(ctx context.Context, userID, token string) error {
	query :=
		`INSERT INTO fcm_tokens (user_id, token)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, token) DO UPDATE SET updated_at = now()
		 `
	if _, err := r.db.ExecContext(ctx, query, userID, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FCMTokens(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT token FROM fcm_tokens WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	tokens := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tokens, nil
}
