package storefront

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/knpstore/sport-store/internal/apiclient"
	"github.com/knpstore/sport-store/internal/validation"
)

// FieldGeneral holds errors that belong to no single field.
const FieldGeneral = "general"

const SuccessMessage = "Your account has been created! You can sign in now."

// Registrar creates accounts.
type Registrar interface {
	Register(ctx context.Context, req apiclient.RegisterRequest) (apiclient.User, error)
}

// RegisterPage is the standalone sign-up form.
type RegisterPage struct {
	auth Registrar
	now  func() time.Time
	log  *slog.Logger

	mu         sync.Mutex
	form       validation.RegistrationForm
	errs       validation.FieldErrors
	success    string
	submitting bool
}

func NewRegisterPage(auth Registrar, log *slog.Logger) *RegisterPage {
	return &RegisterPage{
		auth: auth,
		now:  time.Now,
		log:  log,
		form: emptyForm(),
		errs: validation.FieldErrors{},
	}
}

func emptyForm() validation.RegistrationForm {
	return validation.RegistrationForm{Gender: validation.GenderMale}
}

// Change sets a field and clears its error.
func (p *RegisterPage) Change(field, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch field {
	case validation.FieldFullName:
		p.form.FullName = value
	case validation.FieldEmail:
		p.form.Email = value
	case validation.FieldDateOfBirth:
		p.form.DateOfBirth = value
	case validation.FieldGender:
		p.form.Gender = validation.Gender(value)
	case validation.FieldPassword:
		p.form.Password = value
	case validation.FieldConfirmPassword:
		p.form.ConfirmPassword = value
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	p.errs.Clear(field)
	return nil
}

func (p *RegisterPage) Form() validation.RegistrationForm {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.form
}

// Errors returns a copy of the current field errors.
func (p *RegisterPage) Errors() validation.FieldErrors {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(validation.FieldErrors, len(p.errs))
	for k, v := range p.errs {
		out[k] = v
	}
	return out
}

func (p *RegisterPage) Success() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.success
}

// Submit validates the whole form and, when it is valid, creates the account.
// It reports whether the account was created. Submits while one is in flight
// are ignored.
func (p *RegisterPage) Submit(ctx context.Context) (bool, error) {
	p.mu.Lock()
	if p.submitting {
		p.mu.Unlock()
		return false, nil
	}
	errs := validation.Validate(p.form, p.now())
	if !errs.Valid() {
		p.errs = errs
		p.mu.Unlock()
		return false, nil
	}
	form := p.form
	p.submitting = true
	p.success = ""
	p.errs = validation.FieldErrors{}
	p.mu.Unlock()

	dob := strings.TrimSpace(form.DateOfBirth)
	_, err := p.auth.Register(ctx, apiclient.RegisterRequest{
		FullName:    strings.TrimSpace(form.FullName),
		Email:       strings.TrimSpace(form.Email),
		Password:    form.Password,
		DateOfBirth: &dob,
		Gender:      string(form.Gender),
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	p.submitting = false
	if err != nil {
		p.log.Warn("registration failed", "err", err)
		p.errs = validation.FieldErrors{FieldGeneral: apiclient.RawMessage(err)}
		return false, err
	}
	p.success = SuccessMessage
	p.form = emptyForm()
	return true, nil
}
