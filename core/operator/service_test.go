package operator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/operator"
	dummydb "github.com/telepoint/backoffice/storage/database/dummy"
)

// base32 of the RFC 6238 reference key; at unix 59 the code is 287082
const (
	totpSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
	totpAt59   = "287082"
)

func setup(t *testing.T) *operator.Service {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)
	return operator.NewService(dummydb.NewOperatorRepository(db), nil)
}

func createOperator(t *testing.T, svc *operator.Service, uname, pwd string) operator.Operator {
	t.Helper()
	op, err := svc.Create(operator.NewOperator{
		Name: "Mario Rossi", Username: uname, Email: uname + "@example.com", Password: pwd,
	})
	require.NoError(t, err)
	return op
}

func mockNow(t *testing.T, at time.Time) {
	t.Helper()
	operator.NowFunc = func() time.Time { return at }
	t.Cleanup(func() { operator.NowFunc = time.Now })
}

func TestService_Authenticate(t *testing.T) {
	svc := setup(t)
	op := createOperator(t, svc, "mario", "Str0ng-pass!")

	got, err := svc.Authenticate("mario", "Str0ng-pass!")
	require.NoError(t, err)
	assert.Equal(t, op.ID, got.ID)

	// email works too
	_, err = svc.Authenticate("mario@example.com", "Str0ng-pass!")
	require.NoError(t, err)

	_, err = svc.Authenticate("mario", "wrong")
	assert.Equal(t, operator.ErrAuthenticationFailed, err)
	_, err = svc.Authenticate("nobody", "Str0ng-pass!")
	assert.Equal(t, operator.ErrAuthenticationFailed, err)
}

func TestService_Authenticate_deactivatedAccount(t *testing.T) {
	svc := setup(t)
	op := createOperator(t, svc, "mario", "Str0ng-pass!")

	inactive := false
	_, err := svc.Update(op.ID, operator.UpdateOperator{
		Name: op.Name, Username: op.Username, Email: op.Email, IsActive: &inactive,
	})
	require.NoError(t, err)

	_, err = svc.Authenticate("mario", "Str0ng-pass!")
	assert.Equal(t, operator.ErrAccountDeactivated, err)
}

func TestService_MFALifecycle(t *testing.T) {
	svc := setup(t)
	op := createOperator(t, svc, "mario", "Str0ng-pass!")
	mockNow(t, time.Unix(59, 0))

	// a wrong code does not enable anything
	err := svc.EnableMFA(op.ID, totpSecret, "000000")
	assert.Equal(t, operator.ErrInvalidMFACode, err)
	got, err := svc.GetByID(op.ID)
	require.NoError(t, err)
	assert.False(t, got.MFAEnabled)

	require.NoError(t, svc.EnableMFA(op.ID, totpSecret, totpAt59))

	got, err = svc.GetByID(op.ID)
	require.NoError(t, err)
	assert.True(t, got.MFAEnabled)
	assert.Equal(t, totpSecret, got.MFASecret)

	require.NoError(t, svc.VerifyMFA(got, totpAt59))
	assert.Equal(t, operator.ErrInvalidMFACode, svc.VerifyMFA(got, "999999"))

	require.NoError(t, svc.DisableMFA(op.ID))
	got, err = svc.GetByID(op.ID)
	require.NoError(t, err)
	assert.False(t, got.MFAEnabled)
	assert.Empty(t, got.MFASecret)
	assert.Equal(t, operator.ErrInvalidMFACode, svc.VerifyMFA(got, totpAt59))
}

func TestNewOperator_Validate_uniqueness(t *testing.T) {
	svc := setup(t)
	createOperator(t, svc, "mario", "Str0ng-pass!")

	no := operator.NewOperator{
		Name: "Altro", Username: "mario", Email: "altro@example.com",
		Password: "Str0ng-pass!", PasswordConfirm: "Str0ng-pass!",
	}
	err := no.Validate(svc)
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestNewOperator_Validate_passwordPolicy(t *testing.T) {
	svc := setup(t)

	tests := []struct {
		name, password, want string
	}{
		{"too short", "S0r!t", "password: password must contain at least 8 characters"},
		{"all numeric", "12345678", "password: password cannot be entirely numeric"},
		{"missing complexity", "lowercase1", "password: password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"},
		{"too common", "P@$$w0rd1", "password: password is too common"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			no := operator.NewOperator{
				Name: "Luca Bianchi", Username: "luca", Email: "luca@example.com",
				Password: tt.password, PasswordConfirm: tt.password,
			}
			err := no.Validate(svc)
			require.Error(t, err)
			assert.Contains(t, core.FeedbackFromError(err).Errors, tt.want)
		})
	}
}

func TestService_PasswordReset(t *testing.T) {
	svc := setup(t)
	op := createOperator(t, svc, "mario", "Str0ng-pass!")

	token, err := operator.MakeToken(op)
	require.NoError(t, err)

	updated, err := svc.ConfirmPasswordReset(operator.ResetPassword{
		UID: operator.EncodeUID(op), Token: token,
		Password: "N3w-pass-word!", PasswordConfirm: "N3w-pass-word!",
	})
	require.NoError(t, err)
	require.NoError(t, updated.CheckPassword("N3w-pass-word!"))
	assert.Error(t, updated.CheckPassword("Str0ng-pass!"))

	// tokens embed the password hash, so a used token no longer verifies
	_, err = svc.ConfirmPasswordReset(operator.ResetPassword{
		UID: operator.EncodeUID(op), Token: token,
		Password: "An0ther-pass!", PasswordConfirm: "An0ther-pass!",
	})
	require.Error(t, err)
}
