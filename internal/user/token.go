package user

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// DefaultTokenTTL is how long an access token stays valid when no expiry is configured.
const DefaultTokenTTL = 30 * time.Minute

// TokenIssuer signs HS256 access tokens carrying the user id in "sub".
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Secret is the signing key, shared with the JWT middleware.
func (t *TokenIssuer) Secret() []byte {
	return t.secret
}

func (t *TokenIssuer) Issue(user User) (string, error) {
	if len(t.secret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"exp":   t.now().Add(t.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// GetUserIDFromCtx extracts the "sub" claim from the JWT token stored in
// c.Locals("user") by the JWT middleware.
func GetUserIDFromCtx(c *fiber.Ctx) (string, error) {
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return "", fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", fiber.ErrUnauthorized
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fiber.ErrUnauthorized
	}
	return sub, nil
}
