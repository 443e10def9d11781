package product

import (
	"database/sql"
	"errors"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	pageProductsQuery = `
		SELECT product_id, name, price, image, category, rating, sold
		FROM product
		ORDER BY product_id
		LIMIT $1 OFFSET $2
	`
	countProductsQuery  = `SELECT COUNT(*) FROM product`
	getProductByIDQuery = `
		SELECT product_id, name, price, image, category, rating, sold
		FROM product
		WHERE product_id = $1
	`
	deleteProductsQuery = `DELETE FROM product`
	insertProductQuery  = `
		INSERT INTO product (product_id, name, price, image, category, rating, sold)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	syncProductIDQuery = `
		SELECT setval(pg_get_serial_sequence('product', 'product_id'), $1)
	`
	insertProductAutoIDQuery = `
		INSERT INTO product (name, price, image, category, rating, sold)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Page(offset, limit int) ([]Product, int, error) {
	var total int
	if err := r.db.QueryRow(countProductsQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(pageProductsQuery, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PostgresRepository) GetByID(id int) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(getProductByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

// Reset deletes every product and inserts the given list in one transaction.
// Products with an explicit id go first; the id sequence is then moved past
// the largest of them so products without an id never collide.
func (r *PostgresRepository) Reset(products []Product) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(deleteProductsQuery); err != nil {
		return err
	}
	maxID := 0
	for _, p := range products {
		if p.ID == 0 {
			continue
		}
		if _, err := tx.Exec(insertProductQuery, p.ID, p.Name, p.Price, p.Image, p.Category, p.Rating, p.Sold); err != nil {
			return err
		}
		maxID = max(maxID, p.ID)
	}
	if maxID > 0 {
		if _, err := tx.Exec(syncProductIDQuery, maxID); err != nil {
			return err
		}
	}
	for _, p := range products {
		if p.ID != 0 {
			continue
		}
		if _, err := tx.Exec(insertProductAutoIDQuery, p.Name, p.Price, p.Image, p.Category, p.Rating, p.Sold); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Image, &p.Category, &p.Rating, &p.Sold)
	return p, err
}
