package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/quadbase/ocms/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

type dbUser struct {
	ID           int       `db:"id"`
	Username     string    `db:"username"`
	PasswordHash []byte    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

func (u dbUser) toUser() user.User {
	return user.User{
		ID:           u.ID,
		Username:     u.Username,
		Role:         user.Role(u.Role),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username string) error {
	var exists bool
	err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM app_user WHERE username = $1)`, username)
	if err != nil {
		return errors.Wrap(err, "checking username uniqueness")
	}
	if exists {
		return user.ErrUsernameExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO app_user (username, password_hash, role, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		usr.Username, usr.PasswordHash, usr.Role, usr.CreatedAt,
	).Scan(&usr.ID)
	if err != nil {
		if pqErrorCode(err) == pqUniqueViolation {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var u dbUser
	err := repo.db.GetContext(ctx, &u,
		`SELECT id, username, password_hash, role, created_at FROM app_user WHERE id = $1`, id)
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by id")
	}
	return u.toUser(), nil
}

func (repo userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	var u dbUser
	err := repo.db.GetContext(ctx, &u,
		`SELECT id, username, password_hash, role, created_at FROM app_user WHERE username = $1`, username)
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by username")
	}
	return u.toUser(), nil
}

func (repo userRepository) UpdatePasswordHash(ctx context.Context, id int, hash []byte) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE app_user SET password_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return errors.Wrap(err, "updating password hash")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrNotFound
	}
	return nil
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}
