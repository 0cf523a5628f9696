package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/user"
)

const userColumns = `id, email, phone, first_name, last_name, is_active, is_superuser,
	password_hash, code_confirm, created_at, updated_at, last_login`

type userRow struct {
	ID           int         `db:"id"`
	Email        string      `db:"email"`
	Phone        null.String `db:"phone"`
	FirstName    null.String `db:"first_name"`
	LastName     null.String `db:"last_name"`
	IsActive     bool        `db:"is_active"`
	IsSuperuser  bool        `db:"is_superuser"`
	PasswordHash []byte      `db:"password_hash"`
	CodeConfirm  null.String `db:"code_confirm"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

func toUserRow(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Email:        usr.Email,
		Phone:        nullString(usr.Phone),
		FirstName:    nullString(usr.FirstName),
		LastName:     nullString(usr.LastName),
		IsActive:     usr.IsActive,
		IsSuperuser:  usr.IsSuperuser,
		PasswordHash: usr.PasswordHash,
		CodeConfirm:  nullString(usr.CodeConfirm),
		CreatedAt:    usr.CreatedAt,
		UpdatedAt:    usr.UpdatedAt,
		LastLogin:    null.NewTime(usr.LastLogin, !usr.LastLogin.IsZero()),
	}
}

func (r userRow) toUser() user.User {
	return user.User{
		ID:           r.ID,
		Email:        r.Email,
		Phone:        r.Phone.String,
		FirstName:    r.FirstName.String,
		LastName:     r.LastName.String,
		IsActive:     r.IsActive,
		IsSuperuser:  r.IsSuperuser,
		PasswordHash: r.PasswordHash,
		CodeConfirm:  r.CodeConfirm.String,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
		LastLogin:    r.LastLogin.Time.UTC(),
	}
}

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db core.DB) user.Repository {
	return &userRepository{exec: db}
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedIDs ...int) error {
	var (
		count int
		err   error
	)
	if len(excludedIDs) > 0 {
		q, args, qErr := in(repo.exec, `SELECT COUNT(*) FROM "user" WHERE email = ? AND id NOT IN (?)`, email, excludedIDs)
		if qErr != nil {
			return errors.Wrap(qErr, "building query")
		}
		err = repo.exec.GetContext(ctx, &count, q, args...)
	} else {
		err = repo.exec.GetContext(ctx, &count, `SELECT COUNT(*) FROM "user" WHERE email = $1`, email)
	}
	if err != nil {
		return err
	}
	if count > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := toUserRow(usr)
	err := repo.exec.GetContext(ctx, &row.ID, `
		INSERT INTO "user" (email, phone, first_name, last_name, is_active, is_superuser,
		                    password_hash, code_confirm, created_at, updated_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		row.Email, row.Phone, row.FirstName, row.LastName, row.IsActive, row.IsSuperuser,
		row.PasswordHash, row.CodeConfirm, row.CreatedAt, row.UpdatedAt, row.LastLogin,
	)
	if err != nil {
		if pqCode(err) == uniqueViolation {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, err
	}
	return row.toUser(), nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var (
		row userRow
		err error
	)
	switch {
	case filter.ID != 0:
		err = repo.exec.GetContext(ctx, &row, `SELECT `+userColumns+` FROM "user" WHERE id = $1`, filter.ID)
	case filter.Email != "":
		err = repo.exec.GetContext(ctx, &row, `SELECT `+userColumns+` FROM "user" WHERE email = $1`, filter.Email)
	default:
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, notFound(err, user.ErrNotFound)
	}
	return row.toUser(), nil
}

func (repo *userRepository) FindByConfirmation(ctx context.Context, email, phone, code string) (user.User, error) {
	var row userRow
	err := repo.exec.GetContext(ctx, &row,
		`SELECT `+userColumns+` FROM "user" WHERE email = $1 AND phone = $2 AND code_confirm = $3`,
		email, phone, code,
	)
	if err != nil {
		return user.User{}, notFound(err, user.ErrNotFound)
	}
	return row.toUser(), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := toUserRow(usr)
	res, err := repo.exec.NamedExecContext(ctx, `
		UPDATE "user" SET
			email = :email, phone = :phone, first_name = :first_name, last_name = :last_name,
			is_active = :is_active, is_superuser = :is_superuser, password_hash = :password_hash,
			code_confirm = :code_confirm, updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`, row)
	if err != nil {
		if pqCode(err) == uniqueViolation {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return row.toUser(), nil
}
