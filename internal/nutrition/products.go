package nutrition

import (
	"context"
	"fmt"
	"strings"

	"kcal-cli/internal/model"
)

func validateProduct(name string, caloriesPer100g int) error {
	if strings.TrimSpace(name) == "" {
		return badRequest("parameter 'name' must not be empty")
	}
	if caloriesPer100g < 0 {
		return badRequest("parameter 'caloriesPer100g' must not be negative")
	}
	return nil
}

func (s *Service) CreateProduct(ctx context.Context, name string, caloriesPer100g int) (model.Product, error) {
	if err := validateProduct(name, caloriesPer100g); err != nil {
		return model.Product{}, err
	}
	p, err := s.store.CreateProduct(ctx, name, caloriesPer100g)
	if err != nil {
		return model.Product{}, err
	}
	s.invalidateProducts()
	return p, nil
}

func (s *Service) Product(ctx context.Context, id int64) (model.Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, s.mapStoreErr(err, "product with id %d not found", id)
	}
	return p, nil
}

func (s *Service) Products(ctx context.Context) ([]model.Product, error) {
	return s.store.ListProducts(ctx)
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, name string, caloriesPer100g int) (model.Product, error) {
	if err := validateProduct(name, caloriesPer100g); err != nil {
		return model.Product{}, err
	}
	p, err := s.store.UpdateProduct(ctx, id, name, caloriesPer100g)
	if err != nil {
		return model.Product{}, s.mapStoreErr(err, "product with id %d not found", id)
	}
	s.invalidateProducts()
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return s.mapStoreErr(err, "product with id %d not found", id)
	}
	s.invalidateProducts()
	return nil
}

// invalidateProducts drops cached results that depend on product data.
func (s *Service) invalidateProducts() {
	s.cache.Clear(cacheCalories)
}

// ProductMessage is the confirmation text returned by the product endpoints.
func ProductMessage(verb string, p model.Product) string {
	return fmt.Sprintf("Product %s: %s (%d kcal/100g, id %d)", verb, p.Name, p.CaloriesPer100g, p.ID)
}
