package dreams

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dreamteller/internal/common"
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

func (r *PostgresRepository) Create(ctx context.Context, d *models.Dream) error {
	query :=
		`INSERT INTO dreams (id, user_id, date_key, input)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at
		 `
	if err := r.db.QueryRowContext(ctx, query, d.ID, d.UserID, d.DateKey, d.Input).Scan(&d.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const selectDream = `SELECT id, user_id, date_key, input, title, interpretation, image_name, created_at FROM dreams`

type scanner interface {
	Scan(dest ...any) error
}

func scanDream(s scanner) (models.Dream, error) {
	var (
		d                              models.Dream
		title, interpretation, imgName sql.NullString
	)
	err := s.Scan(&d.ID, &d.UserID, &d.DateKey, &d.Input, &title, &interpretation, &imgName, &d.CreatedAt)
	if err != nil {
		return d, err
	}
	d.Title = nullable(title)
	d.Interpretation = nullable(interpretation)
	d.ImageName = nullable(imgName)
	return d, nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Dream, error) {
	row := r.db.QueryRowContext(ctx, selectDream+` WHERE id = $1 AND user_id = $2`, id, userID)
	d, err := scanDream(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &d, nil
}

func (r *PostgresRepository) ListByDay(ctx context.Context, userID, dateKey string) ([]models.Dream, error) {
	rows, err := r.db.QueryContext(ctx, selectDream+` WHERE user_id = $1 AND date_key = $2 ORDER BY created_at`, userID, dateKey)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	list := []models.Dream{}
	for rows.Next() {
		d, err := scanDream(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}

func (r *PostgresRepository) DaysWithDreams(ctx context.Context, userID, monthPrefix string) ([]string, error) {
	query :=
		`SELECT DISTINCT date_key FROM dreams
		 WHERE user_id = $1 AND date_key LIKE $2
		 ORDER BY date_key
		 `
	rows, err := r.db.QueryContext(ctx, query, userID, monthPrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	days := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		days = append(days, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return days, nil
}

func (r *PostgresRepository) SetInterpretation(ctx context.Context, id string, in models.Interpretation) error {
	query :=
		`UPDATE dreams SET title = $2, interpretation = $3, image_name = $4
		 WHERE id = $1
		 `
	err := dbx.ExecOne(ctx, r.db, query, id, in.Title, in.Interpretation, in.ImageName)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("db error: %w", err)
	}
	return err
}
