package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knpstore/sport-store/internal/apierror"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/api")
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestRegister_Success(t *testing.T) {
	var got RegisterRequest
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/register", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusCreated, `{"_id":"u-1","full_name":"An Nguyen","email":"an@example.com","date_of_birth":null,"is_admin":false,"created_at":"2024-05-01T08:00:00Z"}`)
	})

	u, err := c.Register(context.Background(), RegisterRequest{FullName: "An Nguyen", Email: "an@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.Nil(t, u.DateOfBirth)
	assert.Equal(t, "An Nguyen", got.FullName)
	assert.Nil(t, got.DateOfBirth)
}

func TestRegister_ErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"string detail", http.StatusBadRequest, `{"detail":"Email already registered"}`, "Email already registered"},
		{"structured detail", http.StatusUnprocessableEntity,
			`{"detail":[{"type":"value_error","loc":["body","email"],"msg":"already registered","input":"x"},{"type":"missing","loc":["body","password"],"msg":"Field required","input":null}]}`,
			"Email: already registered"},
		{"no detail", http.StatusInternalServerError, `{}`, apierror.GenericMessage},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, apierror.GenericMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			_, err := c.Register(context.Background(), RegisterRequest{})
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.want, Message(err))
		})
	}
}

func TestRawMessage_FallsBackToBody(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"error":"boom"}`)
	})
	_, err := c.Register(context.Background(), RegisterRequest{})
	assert.Equal(t, `{"error":"boom"}`, RawMessage(err))
}

func TestLogin(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret1" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, `{"access_token":"tok","token_type":"bearer","user":{"_id":"u-1","email":"an@example.com"}}`)
	})

	resp, err := c.Login(context.Background(), "an@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "u-1", resp.User.ID)

	_, err = c.Login(context.Background(), "an@example.com", "nope")
	require.Error(t, err)
	assert.Equal(t, InvalidCredentialsMessage, Message(err))
}

func TestLogin_ZonelessTimestamps(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"access_token":"tok","token_type":"bearer","user":{"_id":"u-1","email":"an@example.com","date_of_birth":"1990-01-02T00:00:00","created_at":"2024-05-01T08:00:00.123000"}}`)
	})

	resp, err := c.Login(context.Background(), "an@example.com", "secret1")
	require.NoError(t, err)
	require.NotNil(t, resp.User.DateOfBirth)
	assert.Equal(t, time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC), resp.User.DateOfBirth.Time)
	assert.Equal(t, time.Date(2024, 5, 1, 8, 0, 0, 123000000, time.UTC), resp.User.CreatedAt.Time)
}

func TestTime_Layouts(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{`"2024-05-01T08:00:00Z"`, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)},
		{`"2024-05-01T08:00:00.5+07:00"`, time.Date(2024, 5, 1, 1, 0, 0, 500000000, time.UTC)},
		{`"2024-05-01T08:00:00"`, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)},
		{`"1990-01-02"`, time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		var got Time
		require.NoError(t, json.Unmarshal([]byte(tt.in), &got), tt.in)
		assert.True(t, tt.want.Equal(got.Time), "%s: got %v", tt.in, got.Time)
	}

	var bad Time
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &bad))

	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"date_of_birth":null,"created_at":null}`), &u))
	assert.Nil(t, u.DateOfBirth)
	assert.True(t, u.CreatedAt.IsZero())

	out, err := json.Marshal(User{CreatedAt: Time{time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"created_at":"2024-05-01T08:00:00Z"`)
}

func TestUpdateProfile_SendsBearerToken(t *testing.T) {
	var auth string
	var got ProfileUpdate
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, `{"_id":"u-1","gender":"male","date_of_birth":"1990-01-02T00:00:00Z"}`)
	}))
	defer srv.Close()

	c := New(srv.URL+"/api/", WithToken(func() string { return "tok" }))
	u, err := c.UpdateProfile(context.Background(), ProfileUpdate{Gender: "male", DateOfBirth: "1990-01-02"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, ProfileUpdate{Gender: "male", DateOfBirth: "1990-01-02"}, got)
	assert.Equal(t, "male", u.Gender)
	require.NotNil(t, u.DateOfBirth)
	assert.Equal(t, 1990, u.DateOfBirth.Year())
}

func TestListProducts(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "12", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, `{"items":[{"id":13,"name":"Sport product 13","price":"1250000","image":"img","category":"Sneakers","rating":"4.5","sold":3}],"page":2,"limit":12,"total":60,"has_more":true}`)
	})

	p, err := c.ListProducts(context.Background(), 2, 12)
	require.NoError(t, err)
	require.Len(t, p.Items, 1)
	assert.Equal(t, 13, p.Items[0].ID)
	assert.Equal(t, "1250000", p.Items[0].Price.String())
	assert.True(t, p.HasMore)
}

func TestTransportFailure_GenericMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(srv.URL, WithTimeout(20*time.Millisecond))
	_, err := c.Login(context.Background(), "an@example.com", "secret1")
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Equal(t, apierror.GenericMessage, Message(err))
}
