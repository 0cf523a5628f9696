package user

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/mail"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/coursehub/core"
)

var (
	// errors
	ErrNotFound            = core.NewNotFoundError("user")
	ErrEmailExists         = errors.New("a user with this email already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountInactive     = errors.New("account deactivated")
	ErrIncompleteConfirm   = errors.New("all fields are required")
	ErrInvalidConfirmation = errors.New("the entered information is incorrect")
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")

	codeLen      = 6
	codeGenFunc  = genConfirmCode // mockable
	confirmEmail = "confirm_code"
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedIDs ...int) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		// FindByConfirmation finds the user matching the email, phone & confirmation code triple.
		FindByConfirmation(ctx context.Context, email, phone, code string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service interface {
		CheckUniqueness(ctx context.Context, email string, excludedIDs ...int) error
		Register(ctx context.Context, nu NewUser) (User, error)
		ConfirmCode(ctx context.Context, cc ConfirmCode) (User, error)
		VerifyEmail(ctx context.Context, uid, token string) (User, error)
		Authenticate(ctx context.Context, email, pwd string) (User, error)
		GetByID(ctx context.Context, id int) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		ResetPassword(ctx context.Context, email, pwd string) (User, error)
		CreateSuperuser(ctx context.Context, email, phone, pwd string) (User, error)
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		tokens  *tokenGenerator
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		tokens:  newTokenGenerator(conf.SecretKey, conf.VerificationTimeoutDelta),
		conf:    conf,
	}
}

func (svc *service) CheckUniqueness(ctx context.Context, email string, excludedIDs ...int) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, excludedIDs...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return errors.Wrap(err, "checking email uniqueness")
	}
	return nil
}

// Register creates an inactive User and sends it the one-time confirmation code.
func (svc *service) Register(ctx context.Context, nu NewUser) (User, error) {
	code, err := codeGenFunc()
	if err != nil {
		return User{}, errors.Wrap(err, "generating confirmation code")
	}

	now := time.Now().UTC()
	usr := User{
		Email:       nu.Email,
		Phone:       nu.Phone,
		FirstName:   nu.FirstName,
		LastName:    nu.LastName,
		IsActive:    false,
		CodeConfirm: code,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err = usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	if usr, err = svc.repo.CreateUser(ctx, usr); err != nil {
		return User{}, errors.Wrap(err, "creating user")
	}

	svc.sendConfirmationMail(usr)
	return usr, nil
}

func (svc *service) sendConfirmationMail(usr User) {
	verifyURL := fmt.Sprintf(
		"%s/api/users/email-confirm/%s/%s",
		svc.conf.FrontendBaseURL, EncodeUID(usr), url.PathEscape(svc.tokens.makeToken(usr)),
	)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: usr.Email}},
		Subject:      "Confirm your account",
		TemplateName: confirmEmail,
		TemplateData: map[string]interface{}{
			"Code":      usr.CodeConfirm,
			"VerifyURL": verifyURL,
		},
	})
}

// ConfirmCode activates the User matching the email, phone & code triple.
func (svc *service) ConfirmCode(ctx context.Context, cc ConfirmCode) (User, error) {
	cc.Clean()
	if !cc.Complete() {
		return User{}, core.NewValidationError(ErrIncompleteConfirm)
	}

	usr, err := svc.repo.FindByConfirmation(ctx, cc.Email, cc.Phone, cc.Code)
	if err != nil {
		if core.IsNotFound(err) {
			return User{}, core.NewValidationError(ErrInvalidConfirmation)
		}
		return User{}, errors.Wrap(err, "finding user by confirmation")
	}
	return svc.activate(ctx, usr)
}

// VerifyEmail activates the User identified by uid if token is valid.
func (svc *service) VerifyEmail(ctx context.Context, uid, token string) (User, error) {
	id, err := DecodeUID(uid)
	if err != nil {
		return User{}, ErrInvalidToken
	}
	usr, err := svc.repo.GetUser(ctx, GetFilter{ID: id})
	if err != nil {
		if core.IsNotFound(err) {
			return User{}, ErrInvalidToken
		}
		return User{}, errors.Wrap(err, "finding user by ID")
	}
	if err = svc.tokens.verifyToken(usr, token); err != nil {
		return User{}, err
	}
	return svc.activate(ctx, usr)
}

func (svc *service) activate(ctx context.Context, usr User) (User, error) {
	usr.IsActive = true
	usr.CodeConfirm = ""
	usr.UpdatedAt = time.Now().UTC()
	usr, err := svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "activating user")
}

// Authenticate checks the credentials of an active User and records the login.
func (svc *service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if core.IsNotFound(err) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !usr.IsActive {
		return User{}, ErrAccountInactive
	}

	usr.LastLogin = time.Now().UTC()
	usr, err = svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "setting lastLogin")
}

func (svc *service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	email = core.CleanString(email, true /* lower */)
	if email == "" {
		return User{}, ErrNotFound
	}
	return svc.repo.GetUser(ctx, GetFilter{Email: email})
}

func (svc *service) ResetPassword(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	usr, err = svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "updating user")
}

// CreateSuperuser updates or creates an active superuser.
func (svc *service) CreateSuperuser(ctx context.Context, email, phone, pwd string) (User, error) {
	email = core.CleanString(email, true /* lower */)
	now := time.Now().UTC()

	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if !core.IsNotFound(err) {
			return User{}, err
		}
		usr = User{Email: email, CreatedAt: now}
	}
	usr.Phone = core.CleanString(phone)
	usr.IsActive = true
	usr.IsSuperuser = true
	usr.CodeConfirm = ""
	usr.UpdatedAt = now
	if err = usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}

	if usr.ID == 0 {
		usr, err = svc.repo.CreateUser(ctx, usr)
		return usr, errors.Wrap(err, "creating superuser")
	}
	usr, err = svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "updating superuser")
}

// genConfirmCode returns a random numeric code of codeLen digits.
func genConfirmCode() (string, error) {
	code := make([]byte, codeLen)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}
