package overlay

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/knpstore/sport-store/internal/apiclient"
	"github.com/knpstore/sport-store/internal/session"
	"github.com/knpstore/sport-store/internal/validation"
)

// FollowUpDelay separates a successful sign-up from the additional info prompt.
const FollowUpDelay = 500 * time.Millisecond

const (
	IncompleteMessage   = "Please fill in all fields"
	NotImageMessage     = "Please choose an image file"
	UpdateFailedMessage = "Failed to update profile"
)

var (
	ErrIncomplete = errors.New("overlay: gender and date of birth are required")
	ErrNotImage   = errors.New("overlay: file is not an image")
	ErrNoImage    = errors.New("overlay: no image selected")
)

// AuthClient is the part of the store API the overlays use.
type AuthClient interface {
	Register(ctx context.Context, req apiclient.RegisterRequest) (apiclient.User, error)
	Login(ctx context.Context, email, password string) (apiclient.TokenResponse, error)
	UpdateProfile(ctx context.Context, req apiclient.ProfileUpdate) (apiclient.User, error)
}

type Timer interface {
	Stop() bool
}

type Orchestrator struct {
	auth      AuthClient
	session   *session.Manager
	log       *slog.Logger
	now       func() time.Time
	afterFunc func(time.Duration, func()) Timer
	onChange  func(Overlay)

	mu       sync.Mutex
	current  Overlay
	followUp Timer
	disposed bool
}

type Option func(*Orchestrator)

func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithAfterFunc replaces time.AfterFunc for the follow-up prompt.
func WithAfterFunc(fn func(time.Duration, func()) Timer) Option {
	return func(o *Orchestrator) { o.afterFunc = fn }
}

// WithOnChange registers a callback run after every transition.
func WithOnChange(fn func(Overlay)) Option {
	return func(o *Orchestrator) { o.onChange = fn }
}

func New(auth AuthClient, sessions *session.Manager, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		auth:    auth,
		session: sessions,
		log:     slog.Default(),
		now:     time.Now,
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Current returns a copy of the active overlay.
func (o *Orchestrator) Current() Overlay {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current.clone()
}

// transition applies fn to the active overlay unless the orchestrator was disposed.
func (o *Orchestrator) transition(fn func(cur *Overlay)) bool {
	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		return false
	}
	fn(&o.current)
	snapshot := o.current.clone()
	o.mu.Unlock()

	if o.onChange != nil {
		o.onChange(snapshot)
	}
	return true
}

func (o *Orchestrator) set(next Overlay) {
	o.transition(func(cur *Overlay) { *cur = next })
}

func (o *Orchestrator) OpenLogin() {
	o.set(loginOverlay(ModeLogin))
}

func (o *Orchestrator) OpenRegister() {
	o.set(loginOverlay(ModeRegister))
}

// ToggleMode switches the login overlay between sign-in and sign-up.
func (o *Orchestrator) ToggleMode() {
	o.transition(func(cur *Overlay) {
		if cur.Kind != KindLogin {
			return
		}
		if cur.Mode == ModeLogin {
			*cur = loginOverlay(ModeRegister)
		} else {
			*cur = loginOverlay(ModeLogin)
		}
	})
}

func (o *Orchestrator) OpenImageSearch() {
	o.set(Overlay{Kind: KindImageSearch})
}

// Close dismisses the active overlay. Closing an error returns to the overlay
// that failed.
func (o *Orchestrator) Close() {
	o.transition(func(cur *Overlay) {
		if cur.Kind == KindError && cur.Back != nil {
			*cur = *cur.Back
			return
		}
		*cur = Overlay{}
	})
}

func (o *Orchestrator) fail(back Overlay, err error) {
	o.set(Overlay{Kind: KindError, Message: apiclient.Message(err), Back: &back})
}

// SubmitLogin signs in. On success the session is stored and the overlay closes;
// on failure the error overlay opens on top of the login form.
func (o *Orchestrator) SubmitLogin(ctx context.Context, email, password string) error {
	resp, err := o.auth.Login(ctx, email, password)
	if o.isDisposed() {
		return err
	}
	if err != nil {
		o.log.Info("login failed", "err", err)
		o.fail(loginOverlay(ModeLogin), err)
		return err
	}
	if err := o.session.Set(resp); err != nil {
		o.log.Error("store session", "err", err)
		o.fail(loginOverlay(ModeLogin), err)
		return err
	}

	o.log.Info("signed in", "user_id", resp.User.ID)
	o.set(Overlay{})
	return nil
}

// SubmitRegister validates the sign-up form and creates the account. Field
// errors keep the form open and nothing is sent. After a successful sign-up the
// user is signed in with the same credentials and, after FollowUpDelay, asked
// for the remaining profile details.
func (o *Orchestrator) SubmitRegister(ctx context.Context, form validation.RegistrationForm) (validation.FieldErrors, error) {
	fieldErrs := validation.ValidateAccount(form, o.now())
	if !fieldErrs.Valid() {
		o.transition(func(cur *Overlay) {
			*cur = loginOverlay(ModeRegister)
			cur.FieldErrors = fieldErrs
		})
		return fieldErrs, nil
	}

	req := apiclient.RegisterRequest{
		FullName: strings.TrimSpace(form.FullName),
		Email:    strings.TrimSpace(form.Email),
		Password: form.Password,
		Gender:   string(form.Gender),
	}
	if dob := strings.TrimSpace(form.DateOfBirth); dob != "" {
		req.DateOfBirth = &dob
	}

	user, err := o.auth.Register(ctx, req)
	if o.isDisposed() {
		return nil, err
	}
	if err != nil {
		o.log.Info("sign-up failed", "err", err)
		o.fail(loginOverlay(ModeRegister), err)
		return nil, err
	}
	o.log.Info("account created", "user_id", user.ID)

	if resp, err := o.auth.Login(ctx, req.Email, req.Password); err != nil {
		o.log.Warn("sign-in after sign-up failed", "err", err)
	} else if err := o.session.Set(resp); err != nil {
		o.log.Error("store session", "err", err)
	}

	o.transition(func(cur *Overlay) {
		*cur = Overlay{}
		if o.followUp != nil {
			o.followUp.Stop()
		}
		o.followUp = o.afterFunc(FollowUpDelay, o.openAdditionalInfo)
	})
	return nil, nil
}

func (o *Orchestrator) openAdditionalInfo() {
	o.transition(func(cur *Overlay) {
		o.followUp = nil
		if cur.Kind != KindNone {
			return
		}
		*cur = Overlay{Kind: KindAdditionalInfo}
	})
}

// genderFromCode maps the additional info form codes: 1 male, 0 female, anything else other.
func genderFromCode(code string) validation.Gender {
	switch code {
	case "1":
		return validation.GenderMale
	case "0":
		return validation.GenderFemale
	default:
		return validation.GenderOther
	}
}

// SubmitAdditionalInfo sends gender and date of birth to the profile endpoint and
// remembers them locally. Failures stay inline in the overlay.
func (o *Orchestrator) SubmitAdditionalInfo(ctx context.Context, genderCode, dateOfBirth string) error {
	genderCode = strings.TrimSpace(genderCode)
	dateOfBirth = strings.TrimSpace(dateOfBirth)
	if genderCode == "" || dateOfBirth == "" {
		o.setInline(KindAdditionalInfo, IncompleteMessage)
		return ErrIncomplete
	}

	gender := genderFromCode(genderCode)
	_, err := o.auth.UpdateProfile(ctx, apiclient.ProfileUpdate{Gender: string(gender), DateOfBirth: dateOfBirth})
	if o.isDisposed() {
		return err
	}
	if err != nil {
		msg := UpdateFailedMessage
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) {
			msg = apiErr.Detail.Format(UpdateFailedMessage)
		}
		o.setInline(KindAdditionalInfo, msg)
		return err
	}

	if err := o.session.SavePreferences(session.Preferences{Gender: string(gender), DateOfBirth: dateOfBirth}); err != nil {
		o.log.Error("store preferences", "err", err)
	}
	o.set(Overlay{})
	return nil
}

func (o *Orchestrator) SkipAdditionalInfo() {
	o.Close()
}

func (o *Orchestrator) setInline(kind Kind, msg string) {
	o.transition(func(cur *Overlay) {
		if cur.Kind != kind {
			*cur = Overlay{Kind: kind}
		}
		cur.InlineError = msg
	})
}

// SelectImage accepts a file for image search if its content sniffs as an image.
func (o *Orchestrator) SelectImage(name string, data []byte) error {
	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		o.setInline(KindImageSearch, NotImageMessage)
		return ErrNotImage
	}
	o.transition(func(cur *Overlay) {
		*cur = Overlay{Kind: KindImageSearch, Image: &Image{Name: name, ContentType: ct, Size: len(data)}}
	})
	return nil
}

// SearchImage is a placeholder for the image search integration: it logs the
// selected file and closes the overlay.
func (o *Orchestrator) SearchImage() error {
	cur := o.Current()
	if cur.Kind != KindImageSearch || cur.Image == nil {
		return ErrNoImage
	}
	o.log.Info("image search requested", "name", cur.Image.Name, "content_type", cur.Image.ContentType, "size", cur.Image.Size)
	o.set(Overlay{})
	return nil
}

// SocialLogin is a placeholder for third-party sign-in.
func (o *Orchestrator) SocialLogin(provider string) {
	o.log.Info("social login requested", "provider", provider)
	o.set(Overlay{})
}

// AddToCart opens the login overlay for guests. For signed-in users the cart
// call is logged; it reports whether the product was accepted.
func (o *Orchestrator) AddToCart(productID int) bool {
	s, ok := o.session.Current()
	if !ok {
		o.OpenLogin()
		return false
	}
	o.log.Info("add to cart", "product_id", productID, "user_id", s.User.ID)
	return true
}

// Dispose stops the pending follow-up prompt; later completions leave the
// state untouched.
func (o *Orchestrator) Dispose() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.disposed = true
	if o.followUp != nil {
		o.followUp.Stop()
		o.followUp = nil
	}
}

func (o *Orchestrator) isDisposed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.disposed
}

// Session returns the signed-in user's session, if any.
func (o *Orchestrator) Session() (session.Session, bool) {
	return o.session.Current()
}

func (o *Orchestrator) SignOut() error {
	if err := o.session.Clear(); err != nil {
		return err
	}
	o.log.Info("signed out")
	return nil
}
