package main

import (
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	jwtware "github.com/gofiber/jwt/v2"

	"github.com/knpstore/sport-store/internal/apierror"
	"github.com/knpstore/sport-store/internal/category"
	"github.com/knpstore/sport-store/internal/config"
	"github.com/knpstore/sport-store/internal/product"
	"github.com/knpstore/sport-store/internal/user"
)

const apiVersion = "1.0.0"

// protectedPrefixes are the paths that require a bearer token.
var protectedPrefixes = []string{"/api/auth/update-profile"}

func newApp(cfg config.Config, log *slog.Logger, db *sql.DB, users user.Repository, products product.Repository) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "KNP STORE API",
		ErrorHandler: apierror.ErrorHandler,
	})
	app.Use(recover.New())
	setupCORS(app, cfg.CORSOrigins)
	app.Use(requestLogger(log))

	tokens := user.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	userHandler := user.NewHandler(user.NewService(users, tokens), log)
	productHandler := product.NewHandler(product.NewService(products), cfg.AllowReset, log)
	categoryHandler := category.NewHandler()

	app.Get("/", welcome)
	app.Get("/health", health(db))
	userHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	categoryHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey:    tokens.Secret(),
		SigningMethod: "HS256",
		Filter: func(c *fiber.Ctx) bool {
			for _, p := range protectedPrefixes {
				if strings.HasPrefix(c.Path(), p) {
					return false
				}
			}
			return true
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Debug("rejected token", "path", c.Path(), "err", err)
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return apierror.Send(c, fiber.StatusUnauthorized, "Could not validate credentials")
		},
	}))
	userHandler.RegisterProtectedRoutes(app)

	return app
}

func setupCORS(app *fiber.App, origins string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func welcome(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Welcome to the Smart Sport Store API!",
		"version": apiVersion,
		"status":  "running",
	})
}

func health(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db == nil {
			return c.JSON(fiber.Map{"status": "healthy", "database": "in-memory"})
		}
		if err := db.PingContext(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unhealthy", "database": "disconnected"})
		}
		return c.JSON(fiber.Map{"status": "healthy", "database": "connected"})
	}
}

func requestLogger(log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		log.Info("request",
			"method", c.Method(),
			"url", c.OriginalURL(),
			"status", status,
			"duration", time.Since(start),
		)
		return err
	}
}
