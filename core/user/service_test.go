package user_test

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/user"
	emailsvc "github.com/trezcool/coursehub/services/email"
	"github.com/trezcool/coursehub/testutil"
)

const strongPwd = "Sup3r-s3cret!"

func register(t *testing.T, app *testutil.App, email, phone string) user.User {
	t.Helper()
	nu := user.NewUser{Email: email, Phone: phone, Password: strongPwd, PasswordConfirm: strongPwd}
	require.NoError(t, nu.Validate(context.Background(), app.Validate, app.UserSvc))
	usr, err := app.UserSvc.Register(context.Background(), nu)
	require.NoError(t, err)
	return usr
}

func TestNewUser_Validate(t *testing.T) {
	ctx := context.Background()
	app := testutil.NewApp(t)
	testutil.CreateUser(t, app.UserRepo, "taken@test.cd", "", true)

	tests := []struct {
		name      string
		nu        user.NewUser
		wantField string
	}{
		{name: "valid", nu: user.NewUser{Email: " Valid@Test.cd ", Password: strongPwd, PasswordConfirm: strongPwd}},
		{name: "bad email", nu: user.NewUser{Email: "nope", Password: strongPwd, PasswordConfirm: strongPwd}, wantField: "Email"},
		{name: "mismatch", nu: user.NewUser{Email: "a@test.cd", Password: strongPwd, PasswordConfirm: "other"}, wantField: "PasswordConfirm"},
		{name: "short", nu: user.NewUser{Email: "a@test.cd", Password: "Ab1!", PasswordConfirm: "Ab1!"}, wantField: "Password"},
		{name: "numeric", nu: user.NewUser{Email: "a@test.cd", Password: "12345678", PasswordConfirm: "12345678"}, wantField: "Password"},
		{name: "simple", nu: user.NewUser{Email: "a@test.cd", Password: "abcdefgh", PasswordConfirm: "abcdefgh"}, wantField: "Password"},
		{name: "similar to email", nu: user.NewUser{Email: "johnsmith@test.cd", Password: "JohnSmith1!", PasswordConfirm: "JohnSmith1!"}, wantField: "Password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nu.Validate(ctx, app.Validate, app.UserSvc)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var vErrs validator.ValidationErrors
			require.True(t, errors.As(err, &vErrs), "got %v", err)
			assert.Equal(t, tt.wantField, vErrs[0].StructField())
		})
	}

	t.Run("taken email", func(t *testing.T) {
		nu := user.NewUser{Email: "TAKEN@test.cd", Password: strongPwd, PasswordConfirm: strongPwd}
		err := nu.Validate(ctx, app.Validate, app.UserSvc)
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr), "got %v", err)
		assert.Equal(t, "email", vErr.Fields[0].Field)
	})
}

func Test_service_ConfirmCode(t *testing.T) {
	ctx := context.Background()
	app := testutil.NewApp(t)
	usr := register(t, app, "new@test.cd", "+79001234567")
	assert.False(t, usr.IsActive)
	assert.Len(t, usr.CodeConfirm, 6)

	msg, ok := emailsvc.LastSentMessage()
	require.True(t, ok)
	assert.Equal(t, "new@test.cd", msg.To[0].Address)
	assert.Equal(t, usr.CodeConfirm, msg.TemplateData.(map[string]interface{})["Code"])

	_, err := app.UserSvc.Authenticate(ctx, "new@test.cd", strongPwd)
	assert.Equal(t, user.ErrAccountInactive, err)

	invalid := []user.ConfirmCode{
		{Email: "new@test.cd", Code: usr.CodeConfirm},
		{Email: "new@test.cd", Phone: "+79001234567", Code: "000000x"},
		{Email: "other@test.cd", Phone: "+79001234567", Code: usr.CodeConfirm},
	}
	for _, cc := range invalid {
		_, err := app.UserSvc.ConfirmCode(ctx, cc)
		var vErr *core.ValidationError
		assert.True(t, errors.As(err, &vErr), "got %v", err)
	}

	got, err := app.UserSvc.ConfirmCode(ctx, user.ConfirmCode{Email: " NEW@test.cd", Phone: "+79001234567 ", Code: usr.CodeConfirm})
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Empty(t, got.CodeConfirm)

	// single use
	_, err = app.UserSvc.ConfirmCode(ctx, user.ConfirmCode{Email: "new@test.cd", Phone: "+79001234567", Code: usr.CodeConfirm})
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, user.ErrInvalidConfirmation, vErr.Err)

	got, err = app.UserSvc.Authenticate(ctx, "new@test.cd", strongPwd)
	require.NoError(t, err)
	assert.False(t, got.LastLogin.IsZero())
}

func Test_service_VerifyEmail(t *testing.T) {
	ctx := context.Background()
	app := testutil.NewApp(t)
	usr := register(t, app, "verify@test.cd", "+79001234567")

	msg, ok := emailsvc.LastSentMessage()
	require.True(t, ok)
	parts := strings.Split(msg.TemplateData.(map[string]interface{})["VerifyURL"].(string), "/")
	uid := parts[len(parts)-2]
	token, err := url.PathUnescape(parts[len(parts)-1])
	require.NoError(t, err)
	assert.Equal(t, user.EncodeUID(usr), uid)

	_, err = app.UserSvc.VerifyEmail(ctx, "bad", token)
	assert.Equal(t, user.ErrInvalidToken, err)
	_, err = app.UserSvc.VerifyEmail(ctx, uid, "bad-token")
	assert.Equal(t, user.ErrInvalidToken, err)

	got, err := app.UserSvc.VerifyEmail(ctx, uid, token)
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	_, err = app.UserSvc.VerifyEmail(ctx, uid, token)
	assert.Equal(t, user.ErrInvalidToken, err, "token is single use")
}

func Test_service_Authenticate(t *testing.T) {
	ctx := context.Background()
	app := testutil.NewApp(t)
	testutil.CreateUser(t, app.UserRepo, "active@test.cd", strongPwd, true)

	tests := []struct {
		name    string
		email   string
		pwd     string
		wantErr error
	}{
		{name: "no email", pwd: strongPwd, wantErr: user.ErrInvalidCredentials},
		{name: "unknown email", email: "who@test.cd", pwd: strongPwd, wantErr: user.ErrInvalidCredentials},
		{name: "wrong password", email: "active@test.cd", pwd: "nope", wantErr: user.ErrInvalidCredentials},
		{name: "ok", email: " Active@Test.cd", pwd: strongPwd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.UserSvc.Authenticate(ctx, tt.email, tt.pwd)
			assert.Equal(t, tt.wantErr, errors.Cause(err))
		})
	}
}

func Test_service_CreateSuperuser(t *testing.T) {
	ctx := context.Background()
	app := testutil.NewApp(t)
	inactive := testutil.CreateUser(t, app.UserRepo, "boss@test.cd", "", false)

	usr, err := app.UserSvc.CreateSuperuser(ctx, "BOSS@test.cd", "+79000000000", strongPwd)
	require.NoError(t, err)
	assert.Equal(t, inactive.ID, usr.ID)
	assert.True(t, usr.IsActive)
	assert.True(t, usr.IsSuperuser)

	usr, err = app.UserSvc.CreateSuperuser(ctx, "root@test.cd", "", strongPwd)
	require.NoError(t, err)
	assert.NotEqual(t, inactive.ID, usr.ID)

	usr, err = app.UserSvc.ResetPassword(ctx, "root@test.cd", "An0ther-secret")
	require.NoError(t, err)
	assert.NoError(t, usr.CheckPassword("An0ther-secret"))

	_, err = app.UserSvc.ResetPassword(ctx, "ghost@test.cd", strongPwd)
	assert.True(t, core.IsNotFound(err))
}
