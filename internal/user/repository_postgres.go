package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/knpstore/sport-store/internal/validation"
)

// uniqueViolation is the Postgres SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	getUserByIDQuery = `
		SELECT id, full_name, email, hashed_password, date_of_birth, gender, is_admin, created_at
		FROM users
		WHERE id = $1
	`
	getUserByEmailQuery = `
		SELECT id, full_name, email, hashed_password, date_of_birth, gender, is_admin, created_at
		FROM users
		WHERE lower(email) = lower($1)
	`
	insertUserQuery = `
		INSERT INTO users (id, full_name, email, hashed_password, date_of_birth, gender, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	updateUserQuery = `
		UPDATE users
		SET full_name = $1,
			date_of_birth = $2,
			gender = $3
		WHERE id = $4
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (User, error) {
	return r.getOne(ctx, getUserByIDQuery, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, getUserByEmailQuery, email)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user User) (User, error) {
	_, err := r.db.ExecContext(ctx, insertUserQuery,
		user.ID,
		user.FullName,
		user.Email,
		user.HashedPassword,
		nullTime(user.DateOfBirth),
		nullGender(user.Gender),
		user.IsAdmin,
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return User{}, ErrEmailExists
		}
		return User{}, err
	}
	return user, nil
}

func (r *PostgresRepository) Update(ctx context.Context, update User) (User, error) {
	result, err := r.db.ExecContext(ctx, updateUserQuery,
		update.FullName,
		nullTime(update.DateOfBirth),
		nullGender(update.Gender),
		update.ID,
	)
	if err != nil {
		return User{}, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return User{}, err
	}
	if affected == 0 {
		return User{}, ErrNotFound
	}

	return r.GetByID(ctx, update.ID)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullGender(g validation.Gender) sql.NullString {
	if g == validation.GenderUnset {
		return sql.NullString{}
	}
	return sql.NullString{String: string(g), Valid: true}
}

func scanUser(scanner rowScanner) (User, error) {
	user := User{}
	var dob sql.NullTime
	var gender sql.NullString

	if err := scanner.Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.HashedPassword,
		&dob,
		&gender,
		&user.IsAdmin,
		&user.CreatedAt,
	); err != nil {
		return User{}, err
	}

	if dob.Valid {
		d := dob.Time
		user.DateOfBirth = &d
	}
	if gender.Valid {
		user.Gender = validation.Gender(gender.String)
	}
	return user, nil
}
