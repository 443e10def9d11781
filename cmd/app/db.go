package main

import (
	"context"
	"database/sql"
	"math/rand/v2"

	"github.com/knpstore/sport-store/internal/product"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	full_name TEXT NOT NULL,
	email TEXT NOT NULL,
	hashed_password TEXT NOT NULL,
	date_of_birth TIMESTAMPTZ,
	gender TEXT,
	is_admin BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (lower(email));

CREATE TABLE IF NOT EXISTS product (
	product_id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	price NUMERIC(14, 0) NOT NULL,
	image TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL,
	rating NUMERIC(2, 1) NOT NULL DEFAULT 0,
	sold INT NOT NULL DEFAULT 0
);
`

func openDB(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

// seedProducts fills an empty catalogue with the demo products.
func seedProducts(ctx context.Context, db *sql.DB, repo *product.PostgresRepository) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM product`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return repo.Reset(product.Generate(rand.New(rand.NewPCG(1, 2)), 1, product.SeedSize))
}
