package storefront

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knpstore/sport-store/internal/apiclient"
	"github.com/knpstore/sport-store/internal/apierror"
	"github.com/knpstore/sport-store/internal/listing"
	"github.com/knpstore/sport-store/internal/overlay"
	"github.com/knpstore/sport-store/internal/product"
	"github.com/knpstore/sport-store/internal/session"
	"github.com/knpstore/sport-store/internal/validation"
)

var discard = slog.New(slog.DiscardHandler)

func TestFormatVND(t *testing.T) {
	assert.Equal(t, "1.250.000 ₫", FormatVND(decimal.NewFromInt(1_250_000)))
	assert.Equal(t, "200.000 ₫", FormatVND(decimal.NewFromInt(200_000)))
	assert.Equal(t, "999 ₫", FormatVND(decimal.RequireFromString("999.4")))
}

func TestNewCard(t *testing.T) {
	p := product.Product{
		ID:       13,
		Name:     "Sport product 13",
		Price:    decimal.NewFromInt(1_000_000),
		Image:    "img",
		Category: "Sneakers",
		Rating:   decimal.RequireFromString("4.5"),
		Sold:     42,
	}
	c := NewCard(p)

	assert.Equal(t, "1.000.000 ₫", c.Price)
	assert.Equal(t, "1.300.000 ₫", c.ListPrice)
	assert.Equal(t, "4.5", c.Rating)
	assert.Equal(t, "Sold 42", c.SoldLabel)
	assert.Equal(t, "Sneakers", c.Category)
	assert.Equal(t, c.Discount, NewCard(p).Discount, "badge is stable across renders")

	p.Rating = decimal.NewFromInt(4)
	assert.Equal(t, "4.0", NewCard(p).Rating)
}

func TestDiscountRange(t *testing.T) {
	for id := 1; id <= 500; id++ {
		d := discountFor(id)
		assert.GreaterOrEqual(t, d, 10)
		assert.LessOrEqual(t, d, 39)
	}
}

type fakeRegistrar struct {
	err   error
	calls int
	last  apiclient.RegisterRequest
}

func (f *fakeRegistrar) Register(_ context.Context, req apiclient.RegisterRequest) (apiclient.User, error) {
	f.calls++
	f.last = req
	return apiclient.User{ID: "u-1"}, f.err
}

func fill(t *testing.T, p *RegisterPage, values map[string]string) {
	t.Helper()
	for field, v := range values {
		require.NoError(t, p.Change(field, v))
	}
}

func validValues() map[string]string {
	return map[string]string{
		validation.FieldFullName:        "An Nguyen",
		validation.FieldEmail:           "an@example.com",
		validation.FieldDateOfBirth:     "1990-01-02",
		validation.FieldGender:          "female",
		validation.FieldPassword:        "secret1",
		validation.FieldConfirmPassword: "secret1",
	}
}

func TestRegisterPage_InvalidFormIsNotSent(t *testing.T) {
	auth := &fakeRegistrar{}
	p := NewRegisterPage(auth, discard)

	ok, err := p.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, auth.calls)

	errs := p.Errors()
	assert.Equal(t, "Full name is required", errs[validation.FieldFullName])
	assert.Equal(t, "Email is required", errs[validation.FieldEmail])
	assert.Equal(t, "Date of birth is required", errs[validation.FieldDateOfBirth])
	assert.False(t, errs.Has(validation.FieldGender), "gender defaults to male")

	require.NoError(t, p.Change(validation.FieldEmail, "an@"))
	assert.False(t, p.Errors().Has(validation.FieldEmail), "editing clears the field error")
	assert.True(t, p.Errors().Has(validation.FieldFullName))

	assert.Error(t, p.Change("nickname", "x"))
}

func TestRegisterPage_Success(t *testing.T) {
	auth := &fakeRegistrar{}
	p := NewRegisterPage(auth, discard)
	p.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	fill(t, p, validValues())

	ok, err := p.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, SuccessMessage, p.Success())
	assert.Empty(t, p.Errors())
	assert.Equal(t, emptyForm(), p.Form())

	require.NotNil(t, auth.last.DateOfBirth)
	assert.Equal(t, "1990-01-02", *auth.last.DateOfBirth)
	assert.Equal(t, "female", auth.last.Gender)
}

func TestRegisterPage_FailureSetsGeneralError(t *testing.T) {
	auth := &fakeRegistrar{err: &apiclient.APIError{Status: 400, Detail: apierror.Detail{Message: "Email already registered"}}}
	p := NewRegisterPage(auth, discard)
	fill(t, p, validValues())

	ok, err := p.Submit(context.Background())
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Email already registered", p.Errors()[FieldGeneral])
	assert.Equal(t, "an@example.com", p.Form().Email, "form is kept on failure")
	assert.Empty(t, p.Success())
}

func TestStorefront(t *testing.T) {
	sessions := session.NewManager(session.NewMemoryStore())
	overlays := overlay.New(apiclient.New(""), sessions, overlay.WithLogger(discard))
	loader := listing.NewLoader(listing.NewMockSource(1, 0), listing.WithLogger(discard))
	s := New(loader, overlays, NewRegisterPage(apiclient.New(""), discard), discard)
	defer s.Close()

	require.NoError(t, s.Open(context.Background()))
	cards := s.Cards()
	require.Len(t, cards, product.DefaultPageSize)
	assert.Equal(t, 1, cards[0].ID)

	assert.False(t, s.AddToCart(cards[0].ID))
	assert.Equal(t, overlay.KindLogin, s.Overlays.Current().Kind)

	s.Header.OpenImageSearch()
	assert.Equal(t, overlay.KindImageSearch, s.Overlays.Current().Kind)
	s.Header.Search("running shoes")
	assert.Equal(t, []string{"Sneakers", "Apparel", "Accessories", "Equipment"}, s.Header.Categories())
}
