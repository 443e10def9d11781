package validation

import (
	"context"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/knpstore/sport-store/internal/apierror"
)

// DateLayout is the layout of a date-of-birth entered in a form.
const DateLayout = "2006-01-02"

type nowKey struct{}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NewValidator returns a validator with the store's custom tags registered and
// field names reported by their json tag:
//
//	required_trimmed  non-empty after trimming whitespace
//	trimmed_min=N     at least N runes after trimming
//	trimmed_max=N     at most N runes after trimming
//	simple_email      local@domain.tld
//	past_date         a date strictly before "now" (taken from the context, see WithNow)
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("required_trimmed", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("trimmed_min", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
	})
	_ = v.RegisterValidation("trimmed_max", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) <= n
	})
	_ = v.RegisterValidation("simple_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidationCtx("past_date", func(ctx context.Context, fl validator.FieldLevel) bool {
		now := nowFrom(ctx)
		switch fl.Field().Kind() {
		case reflect.String:
			d, ok := ParseDate(fl.Field().String())
			return ok && d.Before(now)
		case reflect.Struct:
			if t, ok := fl.Field().Interface().(time.Time); ok {
				return t.Before(now)
			}
		}
		return false
	})
	return v
}

// WithNow pins the instant used by past_date.
func WithNow(ctx context.Context, now time.Time) context.Context {
	return context.WithValue(ctx, nowKey{}, now)
}

func nowFrom(ctx context.Context) time.Time {
	if now, ok := ctx.Value(nowKey{}).(time.Time); ok {
		return now
	}
	return time.Now()
}

// ParseDate accepts a form date (2006-01-02) or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d, true
	}
	if d, err := time.Parse(time.RFC3339, s); err == nil {
		return d, true
	}
	return time.Time{}, false
}

// Problems converts validator output into API problems located in the request body.
// Errors that are not validation errors yield nil.
func Problems(err error) []apierror.Problem {
	ves, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	out := make([]apierror.Problem, 0, len(ves))
	for _, fe := range ves {
		out = append(out, problemFor(fe))
	}
	return out
}

func problemFor(fe validator.FieldError) apierror.Problem {
	p := apierror.Problem{
		Loc:   apierror.BodyLoc(fe.Field()),
		Input: fe.Value(),
	}
	switch fe.Tag() {
	case "required", "required_trimmed":
		p.Type, p.Msg = "missing", "Field required"
	case "min", "trimmed_min":
		p.Type = "string_too_short"
		p.Msg = "String should have at least " + fe.Param() + " characters"
		p.Ctx = map[string]any{"min_length": atoi(fe.Param())}
	case "max", "trimmed_max":
		p.Type = "string_too_long"
		p.Msg = "String should have at most " + fe.Param() + " characters"
		p.Ctx = map[string]any{"max_length": atoi(fe.Param())}
	case "simple_email", "email":
		p.Type, p.Msg = "value_error", "value is not a valid email address"
	case "oneof":
		p.Type = "enum"
		p.Msg = "Input should be " + quoteList(strings.Fields(fe.Param()))
		p.Ctx = map[string]any{"expected": fe.Param()}
	case "past_date":
		p.Type, p.Msg = "value_error", "date must be in the past"
	default:
		p.Type, p.Msg = "value_error", "failed on the '"+fe.Tag()+"' rule"
	}
	return p
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = "'" + it + "'"
	}
	if len(quoted) <= 1 {
		return strings.Join(quoted, "")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + " or " + quoted[len(quoted)-1]
}
