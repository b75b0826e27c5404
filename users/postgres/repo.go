// Package postgres persists users in PostgreSQL through the pgx stdlib
// driver. Schema management is handled by embedded goose migrations run at
// startup.
package postgres

import (
	"context"
	"database/sql"
	"embed"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"github.com/shopstack/auth-service/users"
)

//go:embed migrations/*.sql
var migrations embed.FS

const uniqueViolationCode = "23505"

type Repo struct {
	db *sql.DB
}

var _ users.Repo = (*Repo)(nil)

// Open connects to the database, runs pending migrations, and returns the
// ready-to-use repo.
func Open(ctx context.Context, dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "[postgres.Open] opening database")
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "[postgres.Open] pinging database")
	}

	repo := &Repo{db: db}
	if err := repo.runMigrations(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *Repo) runMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "[postgres.runMigrations] setting dialect")
	}
	if err := goose.UpContext(ctx, r.db, "migrations"); err != nil {
		return errors.Wrap(err, "[postgres.runMigrations] applying migrations")
	}
	return nil
}

func (r *Repo) Close() error {
	return r.db.Close()
}

func (r *Repo) Create(ctx context.Context, user *users.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	query := `INSERT INTO users (id, email, password_hash, name, role)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Role,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return users.ErrEmailTaken
		}
		return errors.Wrap(err, "[postgres.Create] inserting user")
	}
	return nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.getBy(ctx, "email = $1", email)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.getBy(ctx, "id = $1", id)
}

func (r *Repo) getBy(ctx context.Context, where string, arg any) (*users.User, error) {
	query := `SELECT id, email, password_hash, name, role, refresh_fingerprint, created_at, updated_at
	          FROM users WHERE ` + where

	user := &users.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Role,
		&user.RefreshFingerprint, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, errors.Wrap(err, "[postgres.getBy] querying user")
	}
	return user, nil
}

func (r *Repo) SetRefreshFingerprint(ctx context.Context, id string, fingerprint *string) error {
	query := `UPDATE users SET refresh_fingerprint = $2, updated_at = now() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, fingerprint)
	if err != nil {
		return errors.Wrap(err, "[postgres.SetRefreshFingerprint] updating fingerprint")
	}
	return requireRow(result, users.ErrNotFound)
}

// RotateRefreshFingerprint relies on the conditional UPDATE being atomic per
// row: of two concurrent rotations carrying the same current fingerprint,
// exactly one matches the WHERE clause.
func (r *Repo) RotateRefreshFingerprint(ctx context.Context, id, current, next string) error {
	query := `UPDATE users SET refresh_fingerprint = $3, updated_at = now()
	          WHERE id = $1 AND refresh_fingerprint = $2`

	result, err := r.db.ExecContext(ctx, query, id, current, next)
	if err != nil {
		return errors.Wrap(err, "[postgres.RotateRefreshFingerprint] updating fingerprint")
	}
	return requireRow(result, users.ErrStaleFingerprint)
}

func (r *Repo) ClearRefreshFingerprint(ctx context.Context, id string) error {
	query := `UPDATE users SET refresh_fingerprint = NULL, updated_at = now()
	          WHERE id = $1 AND refresh_fingerprint IS NOT NULL`

	// Zero rows affected means the user was already logged out, which is a
	// successful no-op, so the row count is deliberately not checked.
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return errors.Wrap(err, "[postgres.ClearRefreshFingerprint] clearing fingerprint")
	}
	return nil
}

func requireRow(result sql.Result, missing error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "reading affected rows")
	}
	if affected == 0 {
		return missing
	}
	return nil
}
