package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/identity-service/internal/domain"
)

// ErrConcurrentModification is returned when an optimistic update loses.
var ErrConcurrentModification = errors.New("user modified concurrently")

// UserRepository defines persistence access for users. Remove is the hard
// removal of a row, distinct from the soft Delete marker on the entity.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByIssuerSubject(ctx context.Context, issuer, subject string) (*domain.User, error)
	GetByName(ctx context.Context, nameSpace, name string) (*domain.User, error)
	List(ctx context.Context, nameSpace string) ([]*domain.User, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, name_space, name, issuer, subject, email, phone, authorities,
        created, modified, deleted, banned_on, detainment_duration, detained_till`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (id, name_space, name, issuer, subject, email, phone, authorities)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created, modified`

	return r.pool.QueryRow(ctx, query,
		user.ID,
		user.NameSpace,
		user.Name,
		user.Issuer,
		user.Subject,
		user.Email,
		user.Phone,
		user.Authorities,
	).Scan(&user.Created, &user.Modified)
}

// Update mirrors the full record. The modified timestamp doubles as the
// optimistic-concurrency token: a stale copy loses with
// ErrConcurrentModification.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name_space=$1, name=$2, issuer=$3, subject=$4, email=$5, phone=$6,
            authorities=$7, deleted=$8, banned_on=$9, detainment_duration=$10, detained_till=$11,
            modified=NOW()
        WHERE id=$12 AND modified=$13
        RETURNING modified`

	var modified time.Time
	err := r.pool.QueryRow(ctx, query,
		user.NameSpace,
		user.Name,
		user.Issuer,
		user.Subject,
		user.Email,
		user.Phone,
		user.Authorities,
		user.Deleted,
		user.BannedOn,
		user.DetainmentDuration,
		user.DetainedTill,
		user.ID,
		user.Modified,
	).Scan(&modified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.classifyUpdateMiss(ctx, user.ID)
		}
		return err
	}
	user.Modified = modified
	return nil
}

func (r *userRepository) classifyUpdateMiss(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrConcurrentModification
	}
	return pgx.ErrNoRows
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByIssuerSubject(ctx context.Context, issuer, subject string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE issuer=$1 AND subject=$2`
	return r.scanOne(r.pool.QueryRow(ctx, query, issuer, subject))
}

func (r *userRepository) GetByName(ctx context.Context, nameSpace, name string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE name_space=$1 AND name=$2`
	return r.scanOne(r.pool.QueryRow(ctx, query, nameSpace, name))
}

func (r *userRepository) List(ctx context.Context, nameSpace string) ([]*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE name_space=$1 ORDER BY name`

	rows, err := r.pool.Query(ctx, query, nameSpace)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepository) Remove(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) scanOne(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.NameSpace,
		&user.Name,
		&user.Issuer,
		&user.Subject,
		&user.Email,
		&user.Phone,
		&user.Authorities,
		&user.Created,
		&user.Modified,
		&user.Deleted,
		&user.BannedOn,
		&user.DetainmentDuration,
		&user.DetainedTill,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
