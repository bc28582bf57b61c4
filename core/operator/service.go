package operator

import (
	"errors"
	"net/mail"
	"time"

	"github.com/telepoint/backoffice/core"
)

var (
	// errors
	ErrNotFound             = errors.New("operator not found")
	ErrEmailExists          = errors.New("an operator with this email already exists")
	ErrUsernameExists       = errors.New("an operator with this username already exists")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrAccountDeactivated   = errors.New("account deactivated")
	ErrInvalidMFACode       = errors.New("invalid verification code")
)

type (
	Repository interface {
		CheckUsernameUniqueness(username, email string, excluded ...Operator) error
		CreateOperator(op Operator) (Operator, error)
		QueryAllOperators() ([]Operator, error)
		GetOperatorByID(id int) (Operator, error)
		GetOperatorByUsername(username string) (Operator, error)
		GetOperatorByEmail(email string) (Operator, error)
		GetOperatorByUsernameOrEmail(username string) (Operator, error)
		// FilterOperators applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Name, Username or Email.
		FilterOperators(filter QueryFilter) ([]Operator, error)
		UpdateOperator(op Operator, isAdmin, isActive *bool) (Operator, error)
		SetOperatorMFA(id int, enabled bool, secret string) error
		SetOperatorLastLogin(id int, t time.Time) error
		DeleteOperatorsByID(ids ...int) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mailSvc: mailSvc}
}

func (svc *Service) checkUniqueness(uname, email string, excl ...Operator) error {
	if err := svc.repo.CheckUsernameUniqueness(uname, email, excl...); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *Service) Create(no NewOperator) (Operator, error) {
	now := time.Now().UTC()
	op := Operator{
		Name:      no.Name,
		Username:  no.Username,
		Email:     no.Email,
		IsAdmin:   no.IsAdmin,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := op.SetPassword(no.Password); err != nil {
		return Operator{}, err
	}
	return svc.repo.CreateOperator(op)
}

func (svc *Service) QueryAll() ([]Operator, error) {
	return svc.repo.QueryAllOperators()
}

func (svc *Service) GetByID(id int) (Operator, error) {
	return svc.repo.GetOperatorByID(id)
}

func (svc *Service) GetByUsername(uname string) (Operator, error) {
	return svc.repo.GetOperatorByUsername(core.CleanString(uname, true /* lower */))
}

func (svc *Service) GetByEmail(email string) (Operator, error) {
	return svc.repo.GetOperatorByEmail(core.CleanString(email, true /* lower */))
}

func (svc *Service) GetByUsernameOrEmail(uname string) (Operator, error) {
	return svc.repo.GetOperatorByUsernameOrEmail(core.CleanString(uname, true /* lower */))
}

func (svc *Service) Filter(filter QueryFilter) ([]Operator, error) {
	return svc.repo.FilterOperators(filter)
}

func (svc *Service) Update(id int, uo UpdateOperator) (Operator, error) {
	op := Operator{
		ID:        id,
		Name:      uo.Name,
		Username:  uo.Username,
		Email:     uo.Email,
		UpdatedAt: time.Now().UTC(),
	}
	if uo.Password != "" {
		if err := op.SetPassword(uo.Password); err != nil {
			return Operator{}, err
		}
	}
	return svc.repo.UpdateOperator(op, uo.IsAdmin, uo.IsActive)
}

func (svc *Service) Delete(ids ...int) error {
	return svc.repo.DeleteOperatorsByID(ids...)
}

// Authenticate matches a username/email + password pair against an active account.
// Failures are indistinguishable to the caller except for a deactivated account.
func (svc *Service) Authenticate(uname, pwd string) (Operator, error) {
	op, err := svc.GetByUsernameOrEmail(uname)
	if err != nil {
		return Operator{}, ErrAuthenticationFailed
	}
	if err := op.CheckPassword(pwd); err != nil {
		return Operator{}, ErrAuthenticationFailed
	}
	if !op.IsActive {
		return Operator{}, ErrAccountDeactivated
	}
	_ = svc.repo.SetOperatorLastLogin(op.ID, time.Now().UTC())
	return op, nil
}

// EnableMFA verifies the code against the pending secret, then persists both.
func (svc *Service) EnableMFA(id int, secret, code string) error {
	if !VerifyTOTP(secret, code) {
		return ErrInvalidMFACode
	}
	return svc.repo.SetOperatorMFA(id, true, secret)
}

func (svc *Service) DisableMFA(id int) error {
	return svc.repo.SetOperatorMFA(id, false, "")
}

// VerifyMFA checks a login-time TOTP code for the operator.
func (svc *Service) VerifyMFA(op Operator, code string) error {
	if !op.MFAEnabled || !VerifyTOTP(op.MFASecret, code) {
		return ErrInvalidMFACode
	}
	return nil
}

// RequestPasswordReset emails a reset link to the operator's address.
func (svc *Service) RequestPasswordReset(email string) error {
	op, err := svc.GetByEmail(email)
	if err != nil {
		return err
	}
	token, err := MakeToken(op)
	if err != nil {
		return err
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: op.Name, Address: op.Email}},
		Subject:      "Reimposta la password",
		TemplateName: "password-reset",
		TemplateData: struct {
			Operator Operator
			UID      string
			Token    string
		}{op, EncodeUID(op), token},
	})
	return nil
}

// ConfirmPasswordReset validates the token and sets the new password.
func (svc *Service) ConfirmPasswordReset(rp ResetPassword) (Operator, error) {
	if err := rp.Validate(); err != nil {
		return Operator{}, err
	}
	id, err := decodeUID(rp.UID)
	if err != nil {
		return Operator{}, err
	}
	op, err := svc.GetByID(id)
	if err != nil {
		return Operator{}, err
	}
	if err := verifyToken(op, rp.Token); err != nil {
		return Operator{}, err
	}
	if err := op.SetPassword(rp.Password); err != nil {
		return Operator{}, err
	}
	op.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateOperator(op, nil, nil)
}
