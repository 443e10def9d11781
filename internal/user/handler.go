package user

import (
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/knpstore/sport-store/internal/apierror"
	"github.com/knpstore/sport-store/internal/validation"
)

type Handler struct {
	service  *Service
	validate *validator.Validate
	log      *slog.Logger
}

type loginRequest struct {
	Email    string `json:"email" validate:"required_trimmed,simple_email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	FullName    string  `json:"full_name" validate:"required_trimmed,trimmed_min=2,trimmed_max=100"`
	Email       string  `json:"email" validate:"required_trimmed,simple_email"`
	Password    string  `json:"password" validate:"required,min=6,max=100"`
	DateOfBirth *string `json:"date_of_birth" validate:"omitempty,past_date"`
	Gender      *string `json:"gender" validate:"omitempty,oneof=male female other"`
}

type profileRequest struct {
	Gender      *string `json:"gender" validate:"omitempty,oneof=male female other"`
	DateOfBirth *string `json:"date_of_birth" validate:"omitempty,past_date"`
}

func NewHandler(service *Service, log *slog.Logger) *Handler {
	return &Handler{service: service, validate: validation.NewValidator(), log: log}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/auth/register", h.register)
	app.Post("/api/auth/login", h.login)
}

// RegisterProtectedRoutes expects the JWT middleware to run first.
func (h *Handler) RegisterProtectedRoutes(router fiber.Router) {
	router.Patch("/api/auth/update-profile", h.updateProfile)
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(registerRequest)
	if ok, err := h.bind(c, payload); !ok {
		return err
	}

	in := RegisterInput{
		FullName:    payload.FullName,
		Email:       payload.Email,
		Password:    payload.Password,
		DateOfBirth: parseOptionalDate(payload.DateOfBirth),
	}
	if payload.Gender != nil {
		in.Gender = validation.Gender(*payload.Gender)
	}

	created, err := h.service.Register(c.UserContext(), in)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return apierror.Send(c, fiber.StatusBadRequest, "Email already registered")
		}
		h.log.Error("register user", "email", payload.Email, "err", err)
		return apierror.Send(c, fiber.StatusInternalServerError, "Failed to create account")
	}

	h.log.Info("user registered", "user_id", created.ID)
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if ok, err := h.bind(c, payload); !ok {
		return err
	}

	resp, err := h.service.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return apierror.Send(c, fiber.StatusUnauthorized, "Invalid email or password")
		}
		h.log.Error("login", "err", err)
		return apierror.Send(c, fiber.StatusInternalServerError, "Failed to sign in")
	}

	return c.JSON(resp)
}

func (h *Handler) updateProfile(c *fiber.Ctx) error {
	userID, err := GetUserIDFromCtx(c)
	if err != nil {
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		return apierror.Send(c, fiber.StatusUnauthorized, "Could not validate credentials")
	}

	payload := new(profileRequest)
	if ok, err := h.bind(c, payload); !ok {
		return err
	}

	in := ProfileInput{DateOfBirth: parseOptionalDate(payload.DateOfBirth)}
	if payload.Gender != nil {
		g := validation.Gender(*payload.Gender)
		in.Gender = &g
	}

	updated, err := h.service.UpdateProfile(c.UserContext(), userID, in)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apierror.Send(c, fiber.StatusNotFound, "User not found")
		}
		h.log.Error("update profile", "user_id", userID, "err", err)
		return apierror.Send(c, fiber.StatusInternalServerError, "Failed to update profile")
	}

	return c.JSON(updated)
}

// bind decodes and validates the JSON body. When it reports false the
// response has been written and err is what the handler should return.
func (h *Handler) bind(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, apierror.SendProblems(c, []apierror.Problem{{
			Type: "json_invalid",
			Loc:  apierror.Loc{"body"},
			Msg:  "JSON decode error",
		}})
	}
	if err := h.validate.StructCtx(c.UserContext(), out); err != nil {
		if problems := validation.Problems(err); len(problems) > 0 {
			return false, apierror.SendProblems(c, problems)
		}
		return false, err
	}
	return true, nil
}

func parseOptionalDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	d, ok := validation.ParseDate(*s)
	if !ok {
		return nil
	}
	return &d
}
