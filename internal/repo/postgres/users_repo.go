package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/diettrack/internal/domain/user"
	"github.com/geocoder89/diettrack/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

// prom may be nil, queries then run unobserved.
func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom == nil {
		return fn()
	}

	return r.prom.ObserveDB(op, fn)
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) error {
	return r.observe("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (id, name, email, session_id, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			u.ID, u.Name, u.Email, u.SessionID, u.CreatedAt,
		)

		if err != nil {
			// the unique index on email is the authoritative duplicate check;
			// the handler's lookup before insert can lose a race
			var pgErr *pgconn.PgError

			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return user.ErrEmailTaken
			}

			return err
		}

		return nil
	})
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, email, COALESCE(session_id, ''), created_at
			 FROM users
			 WHERE email = $1`,
			email,
		).Scan(&u.ID, &u.Name, &u.Email, &u.SessionID, &u.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetBySessionID(ctx context.Context, sessionID string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_session", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, email, COALESCE(session_id, ''), created_at
			 FROM users
			 WHERE session_id = $1`,
			sessionID,
		).Scan(&u.ID, &u.Name, &u.Email, &u.SessionID, &u.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}
