package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	repo   Repository
	tokens *TokenIssuer
	now    func() time.Time
}

func NewService(repo Repository, tokens *TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens, now: time.Now}
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	email := normalizeEmail(in.Email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrEmailExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	return s.repo.Create(ctx, User{
		ID:             uuid.NewString(),
		FullName:       strings.TrimSpace(in.FullName),
		Email:          email,
		HashedPassword: string(hashed),
		DateOfBirth:    in.DateOfBirth,
		Gender:         in.Gender,
		CreatedAt:      s.now().UTC(),
	})
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return User{}, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}

	return user, nil
}

// Login authenticates the user and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return TokenResponse{}, err
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{AccessToken: token, TokenType: "bearer", User: user}, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id string, in ProfileInput) (User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if in.Gender != nil {
		user.Gender = *in.Gender
	}
	if in.DateOfBirth != nil {
		user.DateOfBirth = in.DateOfBirth
	}
	return s.repo.Update(ctx, user)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
