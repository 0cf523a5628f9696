package user

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/coursehub/core"
)

// User is identified by its email; the teacher/student role is implied by course ownership & enrollment.
type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsActive     bool      `json:"is_active"`
	IsSuperuser  bool      `json:"is_superuser"`
	PasswordHash []byte    `json:"-"`
	CodeConfirm  string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

// FullName returns the first & last names, or the email when both are empty.
func (u User) FullName() string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Email
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"omitempty,max=35"`
	FirstName       string `json:"first_name" validate:"omitempty,max=150"`
	LastName        string `json:"last_name" validate:"omitempty,max=150"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Phone = core.CleanString(nu.Phone)
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Email)
}

func (NewUser) Schema() core.FormSchema {
	return core.FormSchema{
		Name: "register",
		Fields: []core.FormField{
			core.Field("phone", "phone", core.WidgetText, false),
			core.Field("email", "email", core.WidgetEmail, true),
			core.Field("password", "password", core.WidgetPassword, true),
			core.Field("password_confirm", "password confirmation", core.WidgetPassword, true),
		},
	}
}

// ConfirmCode is the email + phone + one-time code triple submitted to activate an account.
type ConfirmCode struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
	Code  string `json:"code_confirm"`
}

func (cc *ConfirmCode) Clean() {
	cc.Email = core.CleanString(cc.Email, true /* lower */)
	cc.Phone = core.CleanString(cc.Phone)
	cc.Code = core.CleanString(cc.Code)
}

func (cc ConfirmCode) Complete() bool {
	return cc.Email != "" && cc.Phone != "" && cc.Code != ""
}

func (ConfirmCode) Schema() core.FormSchema {
	return core.FormSchema{
		Name: "code_confirm",
		Fields: []core.FormField{
			core.Field("email", "email", core.WidgetEmail, true),
			core.Field("phone", "phone", core.WidgetText, true),
			core.Field("code_confirm", "confirmation code", core.WidgetText, true),
		},
	}
}

type GetFilter struct {
	ID    int
	Email string
}
