package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/knpstore/sport-store/internal/apierror"
)

type User struct {
	ID          string `json:"_id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	DateOfBirth *Time  `json:"date_of_birth"`
	Gender      string `json:"gender,omitempty"`
	IsAdmin     bool   `json:"is_admin"`
	CreatedAt   Time   `json:"created_at"`
}

// timeLayouts are tried in order. The API may omit the zone, in which case
// the value is read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// Time is a timestamp as sent by the store API.
type Time struct {
	time.Time
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("time: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v
			return nil
		}
	}
	return fmt.Errorf("time: unsupported format %q", s)
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// RegisterRequest is the sign-up payload. DateOfBirth is YYYY-MM-DD or nil.
type RegisterRequest struct {
	FullName    string  `json:"full_name"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	DateOfBirth *string `json:"date_of_birth"`
	Gender      string  `json:"gender,omitempty"`
}

type ProfileUpdate struct {
	Gender      string `json:"gender"`
	DateOfBirth string `json:"date_of_birth"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// APIError is a non-2xx answer from the store API.
type APIError struct {
	Status int
	Detail apierror.Detail
	// Raw is the response body as received.
	Raw []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("store api: status %d: %s", e.Status, e.Detail.Format(""))
}
