package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadbase/ocms/core"
	"github.com/quadbase/ocms/core/user"
	"github.com/quadbase/ocms/services/email"
	"github.com/quadbase/ocms/storage/database/inmem"
)

func setup() *user.Service {
	repo := inmemdb.NewUserRepository(inmemdb.New())
	return user.NewService(repo, emailsvc.NewConsoleServiceMock(), nil)
}

func Test_service_Create(t *testing.T) {
	svc := setup()
	ctx := context.Background()

	nu := user.NewUser{
		Username:        "Kela_01",
		Password:        "secret1",
		PasswordConfirm: "secret1",
		Role:            user.RoleStudent,
	}
	require.NoError(t, nu.Validate(ctx, svc))
	assert.Equal(t, "kela_01", nu.Username) // cleaned and lowered

	usr, err := svc.Create(ctx, nu)
	require.NoError(t, err)
	assert.NotZero(t, usr.ID)
	assert.Equal(t, user.RoleStudent, usr.Role)
	assert.NoError(t, usr.CheckPassword("secret1"))

	// duplicate username
	err = nu.Validate(ctx, svc)
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "username", vErr.Fields[0].Field)

	// invalid role
	bad := user.NewUser{Username: "other", Password: "secret1", PasswordConfirm: "secret1", Role: "boss"}
	assert.Error(t, bad.Validate(ctx, svc))

	// password mismatch
	bad = user.NewUser{Username: "other", Password: "secret1", PasswordConfirm: "secret2", Role: user.RoleStudent}
	assert.Error(t, bad.Validate(ctx, svc))
}

func Test_service_Authenticate(t *testing.T) {
	svc := setup()
	ctx := context.Background()

	nu := user.NewUser{Username: "kela", Password: "secret1", PasswordConfirm: "secret1", Role: user.RoleStudent}
	_, err := svc.Create(ctx, nu)
	require.NoError(t, err)

	usr, err := svc.Authenticate(ctx, "kela", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "kela", usr.Username)

	// wrong password and unknown user are indistinguishable
	_, err = svc.Authenticate(ctx, "kela", "nope")
	assert.Equal(t, user.ErrInvalidLogin, err)
	_, err = svc.Authenticate(ctx, "ghost", "secret1")
	assert.Equal(t, user.ErrInvalidLogin, err)
}

func Test_service_ChangePassword(t *testing.T) {
	svc := setup()
	ctx := context.Background()

	usr, err := svc.Create(ctx, user.NewUser{
		Username: "kela", Password: "secret1", PasswordConfirm: "secret1", Role: user.RoleStudent,
	})
	require.NoError(t, err)

	// wrong old password
	err = svc.ChangePassword(ctx, usr.ID, user.ChangePassword{
		OldPassword: "nope", NewPassword: "secret2", PasswordConfirm: "secret2",
	})
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "old_password", vErr.Fields[0].Field)

	err = svc.ChangePassword(ctx, usr.ID, user.ChangePassword{
		OldPassword: "secret1", NewPassword: "secret2", PasswordConfirm: "secret2",
	})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "kela", "secret2")
	assert.NoError(t, err)
	_, err = svc.Authenticate(ctx, "kela", "secret1")
	assert.Equal(t, user.ErrInvalidLogin, err)
}
