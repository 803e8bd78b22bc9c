package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"kcal-cli/internal/model"
)

func (s *Store) CreateProduct(ctx context.Context, name string, caloriesPer100g int) (model.Product, error) {
	name = strings.TrimSpace(name)
	res, err := s.db.ExecContext(ctx, `INSERT INTO products(name, calories_per_100g) VALUES(?, ?)`, name, caloriesPer100g)
	if err != nil {
		return model.Product{}, fmt.Errorf("insert product: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Product{}, err
	}
	return model.Product{ID: id, Name: name, CaloriesPer100g: caloriesPer100g}, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := s.db.QueryRowContext(ctx, `SELECT id, name, calories_per_100g FROM products WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.CaloriesPer100g)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, calories_per_100g FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

// FindProductByName returns the earliest product named exactly name,
// ignoring case.
func (s *Store) FindProductByName(ctx context.Context, name string) (model.Product, error) {
	name = strings.TrimSpace(name)
	var p model.Product
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, calories_per_100g FROM products WHERE lower(name) = lower(?) ORDER BY id LIMIT 1`, name).
		Scan(&p.ID, &p.Name, &p.CaloriesPer100g)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, fmt.Errorf("product %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// FindProducts returns products whose name contains q, ignoring case,
// ordered by id.
func (s *Store) FindProducts(ctx context.Context, q string) ([]model.Product, error) {
	q = strings.TrimSpace(q)
	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, calories_per_100g FROM products WHERE lower(name) LIKE ? ESCAPE '\' ORDER BY id`, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (s *Store) UpdateProduct(ctx context.Context, id int64, name string, caloriesPer100g int) (model.Product, error) {
	name = strings.TrimSpace(name)
	res, err := s.db.ExecContext(ctx, `UPDATE products SET name = ?, calories_per_100g = ? WHERE id = ?`, name, caloriesPer100g, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return model.Product{ID: id, Name: name, CaloriesPer100g: caloriesPer100g}, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return nil
}

func scanProducts(rows *sql.Rows) ([]model.Product, error) {
	out := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.CaloriesPer100g); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
