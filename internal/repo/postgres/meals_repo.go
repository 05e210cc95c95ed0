package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/diettrack/internal/domain/meal"
	"github.com/geocoder89/diettrack/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MealsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewMealsRepo(pool *pgxpool.Pool, prom *observability.Prom) *MealsRepo {
	return &MealsRepo{pool: pool, prom: prom}
}

func (r *MealsRepo) observe(op string, fn func() error) error {
	if r.prom == nil {
		return fn()
	}

	return r.prom.ObserveDB(op, fn)
}

func (r *MealsRepo) Create(ctx context.Context, m meal.Meal) error {
	return r.observe("meals.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO meals (id, user_id, name, description, is_on_diet, date, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			m.ID, m.UserID, m.Name, m.Description, m.IsOnDiet, m.Date, m.CreatedAt,
		)

		return err
	})
}

func (r *MealsRepo) ListByUser(ctx context.Context, userID string) ([]meal.Meal, error) {
	return r.list(ctx, "meals.list_by_user",
		`SELECT id, user_id, name, description, is_on_diet, date, created_at
		 FROM meals
		 WHERE user_id = $1`,
		userID,
	)
}

// ListByUserOrderedByDate feeds the metrics scan, which depends on
// ascending date order.
func (r *MealsRepo) ListByUserOrderedByDate(ctx context.Context, userID string) ([]meal.Meal, error) {
	return r.list(ctx, "meals.list_by_user_ordered",
		`SELECT id, user_id, name, description, is_on_diet, date, created_at
		 FROM meals
		 WHERE user_id = $1
		 ORDER BY date ASC`,
		userID,
	)
}

func (r *MealsRepo) list(ctx context.Context, op, query, userID string) ([]meal.Meal, error) {
	out := make([]meal.Meal, 0)

	err := r.observe(op, func() error {
		rows, err := r.pool.Query(ctx, query, userID)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var m meal.Meal

			err = rows.Scan(&m.ID, &m.UserID, &m.Name, &m.Description, &m.IsOnDiet, &m.Date, &m.CreatedAt)

			if err != nil {
				return err
			}

			out = append(out, m)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *MealsRepo) GetByID(ctx context.Context, id string) (meal.Meal, error) {
	var m meal.Meal

	err := r.observe("meals.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, user_id, name, description, is_on_diet, date, created_at
			 FROM meals
			 WHERE id = $1`,
			id,
		).Scan(&m.ID, &m.UserID, &m.Name, &m.Description, &m.IsOnDiet, &m.Date, &m.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return meal.Meal{}, meal.ErrNotFound
		}

		return meal.Meal{}, err
	}

	return m, nil
}

func (r *MealsRepo) Update(ctx context.Context, id string, req meal.UpdateMealRequest) error {
	return r.observe("meals.update", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE meals
			 SET name = $2,
			     description = $3,
			     is_on_diet = $4,
			     date = $5
			 WHERE id = $1`,
			id, req.Name, req.Description, *req.IsOnDiet, req.Date.UnixMilli(),
		)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return meal.ErrNotFound
		}

		return nil
	})
}

func (r *MealsRepo) Delete(ctx context.Context, id string) error {
	return r.observe("meals.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM meals WHERE id = $1`, id)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return meal.ErrNotFound
		}

		return nil
	})
}
