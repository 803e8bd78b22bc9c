package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kcal-cli/internal/model"
)

// CreateMeal stores a meal together with its entries in one transaction.
// IDs are assigned and written back into the returned meal.
func (s *Store) CreateMeal(ctx context.Context, name string, entries []model.MealProduct) (model.Meal, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return model.Meal{}, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `INSERT INTO meals(name, created_at_unixms) VALUES(?, ?)`, name, now.UnixMilli())
	if err != nil {
		return model.Meal{}, fmt.Errorf("insert meal: %w", err)
	}
	mealID, err := res.LastInsertId()
	if err != nil {
		return model.Meal{}, err
	}

	meal := model.Meal{ID: mealID, Name: name, CreatedAt: time.UnixMilli(now.UnixMilli()).UTC()}
	for _, e := range entries {
		mp, err := insertMealProduct(ctx, tx, mealID, e.ProductID, e.Grams)
		if err != nil {
			return model.Meal{}, err
		}
		mp.Product = e.Product
		meal.Products = append(meal.Products, mp)
	}
	if err := tx.Commit(); err != nil {
		return model.Meal{}, err
	}
	return meal, nil
}

// AddMealProduct appends one entry to an existing meal.
func (s *Store) AddMealProduct(ctx context.Context, mealID, productID int64, grams int) (model.MealProduct, error) {
	if _, err := s.getMealRow(ctx, mealID); err != nil {
		return model.MealProduct{}, err
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return model.MealProduct{}, err
	}
	defer func() { _ = tx.Rollback() }()
	mp, err := insertMealProduct(ctx, tx, mealID, productID, grams)
	if err != nil {
		return model.MealProduct{}, err
	}
	return mp, tx.Commit()
}

func insertMealProduct(ctx context.Context, tx *sql.Tx, mealID, productID int64, grams int) (model.MealProduct, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO meal_products(meal_id, product_id, grams) VALUES(?, ?, ?)`, mealID, productID, grams)
	if err != nil {
		return model.MealProduct{}, fmt.Errorf("insert meal product: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.MealProduct{}, err
	}
	return model.MealProduct{ID: id, MealID: mealID, ProductID: productID, Grams: grams}, nil
}

// GetMeal loads a meal and its entries (with products).
func (s *Store) GetMeal(ctx context.Context, id int64) (model.Meal, error) {
	m, err := s.getMealRow(ctx, id)
	if err != nil {
		return model.Meal{}, err
	}
	entries, err := s.mealProducts(ctx, id)
	if err != nil {
		return model.Meal{}, err
	}
	m.Products = entries
	return m, nil
}

// ListMeals returns every meal, newest first, with entries.
func (s *Store) ListMeals(ctx context.Context) ([]model.Meal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at_unixms FROM meals ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	var meals []model.Meal
	for rows.Next() {
		var m model.Meal
		var ms int64
		if err := rows.Scan(&m.ID, &m.Name, &ms); err != nil {
			rows.Close()
			return nil, err
		}
		m.CreatedAt = time.UnixMilli(ms).UTC()
		meals = append(meals, m)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range meals {
		entries, err := s.mealProducts(ctx, meals[i].ID)
		if err != nil {
			return nil, err
		}
		meals[i].Products = entries
	}
	if meals == nil {
		meals = []model.Meal{}
	}
	return meals, nil
}

func (s *Store) getMealRow(ctx context.Context, id int64) (model.Meal, error) {
	var m model.Meal
	var ms int64
	err := s.db.QueryRowContext(ctx, `SELECT id, name, created_at_unixms FROM meals WHERE id = ?`, id).Scan(&m.ID, &m.Name, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Meal{}, fmt.Errorf("meal %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Meal{}, err
	}
	m.CreatedAt = time.UnixMilli(ms).UTC()
	return m, nil
}

func (s *Store) mealProducts(ctx context.Context, mealID int64) ([]model.MealProduct, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT mp.id, mp.meal_id, mp.product_id, mp.grams, p.name, p.calories_per_100g
		FROM meal_products mp JOIN products p ON p.id = mp.product_id
		WHERE mp.meal_id = ?
		ORDER BY mp.id`, mealID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MealProduct
	for rows.Next() {
		var mp model.MealProduct
		p := &model.Product{}
		if err := rows.Scan(&mp.ID, &mp.MealID, &mp.ProductID, &mp.Grams, &p.Name, &p.CaloriesPer100g); err != nil {
			return nil, err
		}
		p.ID = mp.ProductID
		mp.Product = p
		out = append(out, mp)
	}
	return out, rows.Err()
}
