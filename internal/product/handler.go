package product

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/knpstore/sport-store/internal/apierror"
	"github.com/knpstore/sport-store/internal/category"
)

// SeedSize is the size of the demo catalogue: five pages of twelve products.
const SeedSize = 5 * DefaultPageSize

type Handler struct {
	service    *Service
	allowReset bool
	log        *slog.Logger
}

// NewHandler builds the product handler. allowReset enables the dev-only
// POST /dev/reset-products endpoint.
func NewHandler(service *Service, allowReset bool, log *slog.Logger) *Handler {
	return &Handler{service: service, allowReset: allowReset, log: log}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/products", h.getProducts)
	app.Get("/api/products/:id<[0-9]+>", h.getProduct)

	app.Post("/dev/reset-products", h.resetProducts)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", DefaultPageSize)

	p, err := h.service.Page(page, limit)
	if err != nil {
		h.log.Error("list products", "page", page, "limit", limit, "err", err)
		return apierror.Send(c, fiber.StatusInternalServerError, "Failed to load products")
	}
	return c.JSON(p)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return apierror.Send(c, fiber.StatusBadRequest, "invalid id")
	}

	p, err := h.service.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apierror.Send(c, fiber.StatusNotFound, "Product not found")
		}
		return apierror.Send(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(p)
}

// resetProducts replaces the catalogue with the posted list, or with a freshly
// generated demo catalogue when the body is not a product list.
func (h *Handler) resetProducts(c *fiber.Ctx) error {
	if !h.allowReset {
		return apierror.Send(c, fiber.StatusForbidden, "reset not allowed")
	}

	var products []Product
	if err := c.BodyParser(&products); err != nil {
		products = Generate(rand.New(rand.NewPCG(1, 2)), 1, SeedSize)
	}

	// validate payload and return all validation errors together
	var problems []apierror.Problem
	for i := range products {
		problems = append(problems, validateProductPayload(i, &products[i])...)
	}
	if len(problems) > 0 {
		return apierror.SendProblems(c, problems)
	}

	if err := h.service.ResetProducts(products); err != nil {
		return apierror.Send(c, fiber.StatusInternalServerError, err.Error())
	}
	h.log.Info("products reset", "count", len(products))
	return c.JSON(fiber.Map{"inserted": len(products)})
}

func validateProductPayload(i int, p *Product) []apierror.Problem {
	var errs []apierror.Problem
	loc := func(field string) apierror.Loc {
		return apierror.Loc{"body", strconv.Itoa(i), field}
	}
	if p.Name == "" {
		errs = append(errs, apierror.Problem{Type: "missing", Loc: loc("name"), Msg: "Field required", Input: p.Name})
	}
	if p.Price.IsNegative() {
		errs = append(errs, apierror.Problem{Type: "greater_than_equal", Loc: loc("price"), Msg: "price must be >= 0", Input: p.Price})
	}
	if p.Rating.IsNegative() || p.Rating.GreaterThan(maxRating) {
		errs = append(errs, apierror.Problem{Type: "value_error", Loc: loc("rating"), Msg: "rating must be between 0 and 5", Input: p.Rating})
	}
	if p.Sold < 0 {
		errs = append(errs, apierror.Problem{Type: "greater_than_equal", Loc: loc("sold"), Msg: "sold must be >= 0", Input: p.Sold})
	}
	if !category.Valid(p.Category) {
		errs = append(errs, apierror.Problem{Type: "enum", Loc: loc("category"), Msg: "invalid category", Input: p.Category})
	}
	return errs
}
