package nutrition

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kcal-cli/internal/model"
	"kcal-cli/internal/store"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Service computes meal calories and manages the product catalogue.
type Service struct {
	store  *store.Store
	lookup Lookup
	cache  *Cache
	log    *zap.Logger

	resolve singleflight.Group
	now     func() time.Time
}

type Option func(*Service)

// WithLookup sets the backend used for foods missing from the store.
func WithLookup(l Lookup) Option { return func(s *Service) { s.lookup = l } }

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.log = l } }

func NewService(st *store.Store, opts ...Option) *Service {
	s := &Service{
		store: st,
		cache: NewCache(),
		log:   zap.NewNop(),
		now:   time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Cache() *Cache { return s.cache }

// Calculate returns one display line per food plus a final total line,
// and records the request as a new meal. Identical requests are served
// from cache without creating another meal.
func (s *Service) Calculate(ctx context.Context, req Request) ([]string, error) {
	key := req.cacheKey()
	if lines, ok := s.cache.Get(cacheCalories, key); ok {
		s.log.Debug("calories cache hit", zap.String("key", key))
		return lines, nil
	}

	lines := make([]string, 0, req.Len()+1)
	entries := make([]model.MealProduct, 0, req.Len())
	total := 0
	for i, food := range req.Foods {
		p, err := s.resolveProduct(ctx, food)
		if err != nil {
			return nil, err
		}
		grams := req.Grams[i]
		total += p.Calories(grams)
		lines = append(lines, fmt.Sprintf("%dg. %s / cal/100g: %d", grams, p.Name, p.CaloriesPer100g))
		pp := p
		entries = append(entries, model.MealProduct{ProductID: p.ID, Grams: grams, Product: &pp})
	}
	lines = append(lines, fmt.Sprintf("Total calories: %d", total))

	name := "Meal created on " + s.now().UTC().Format(time.RFC1123)
	meal, err := s.store.CreateMeal(ctx, name, entries)
	if err != nil {
		return nil, fmt.Errorf("save meal: %w", err)
	}
	s.log.Info("meal calculated",
		zap.Int64("mealId", meal.ID),
		zap.Int("products", req.Len()),
		zap.Int("totalCalories", total))

	s.cache.Put(cacheCalories, key, lines)
	return lines, nil
}

// resolveProduct finds food in the store or, failing that, asks the lookup
// backend and stores the result. Concurrent resolutions of the same name
// share one lookup.
func (s *Service) resolveProduct(ctx context.Context, food string) (model.Product, error) {
	v, err, _ := s.resolve.Do(strings.ToLower(food), func() (any, error) {
		if p, ok, err := s.storedProduct(ctx, food); err != nil || ok {
			return p, err
		}
		if s.lookup == nil {
			return model.Product{}, notFound(nil, "product %s not found", food)
		}

		res, err := s.lookup.Lookup(ctx, food)
		if err != nil {
			s.log.Warn("calorie lookup failed", zap.String("food", food), zap.Error(err))
			var nf *NotFoundError
			var br *BadRequestError
			if errors.As(err, &nf) || errors.As(err, &br) {
				return model.Product{}, err
			}
			return model.Product{}, &BadRequestError{Message: fmt.Sprintf("could not get calorie data for %q", food), Err: err}
		}

		// The lookup may normalise the name to one we already know.
		if known, ok, err := s.storedProduct(ctx, res.Name); err == nil && ok {
			if known.CaloriesPer100g != res.CaloriesPer100g {
				s.log.Warn("calorie mismatch",
					zap.String("product", known.Name),
					zap.Int("stored", known.CaloriesPer100g),
					zap.Int("lookup", res.CaloriesPer100g))
			}
			return known, nil
		}
		p, err := s.store.CreateProduct(ctx, res.Name, res.CaloriesPer100g)
		if err != nil {
			return model.Product{}, err
		}
		s.log.Info("stored new product", zap.String("name", p.Name), zap.Int("caloriesPer100g", p.CaloriesPer100g))
		return p, nil
	})
	if err != nil {
		return model.Product{}, err
	}
	return v.(model.Product), nil
}

// storedProduct prefers a product named exactly food and only then falls
// back to the first name containing it.
func (s *Service) storedProduct(ctx context.Context, food string) (model.Product, bool, error) {
	p, err := s.store.FindProductByName(ctx, food)
	if err == nil {
		return p, true, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return model.Product{}, false, err
	}
	found, err := s.store.FindProducts(ctx, food)
	if err != nil || len(found) == 0 {
		return model.Product{}, false, err
	}
	return found[0], true, nil
}

// AddProductToMeal appends grams of the product matching productName
// to an existing meal and returns a confirmation line.
func (s *Service) AddProductToMeal(ctx context.Context, mealID int64, productName string, grams int) (string, error) {
	productName = strings.TrimSpace(productName)
	if productName == "" {
		return "", badRequest("parameter 'productName' must not be empty")
	}
	if grams <= 0 {
		return "", badRequest("parameter 'grams' must be a positive number")
	}
	meal, err := s.store.GetMeal(ctx, mealID)
	if err != nil {
		return "", s.mapStoreErr(err, "meal with id %d not found", mealID)
	}
	p, ok, err := s.storedProduct(ctx, productName)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", notFound(nil, "product %s not found; add it first or calculate a meal that contains it", productName)
	}
	if _, err := s.store.AddMealProduct(ctx, mealID, p.ID, grams); err != nil {
		return "", s.mapStoreErr(err, "meal with id %d not found", mealID)
	}
	return fmt.Sprintf("Added %dg of %s (%d kcal) to meal '%s'", grams, p.Name, p.Calories(grams), meal.Name), nil
}

func (s *Service) Meal(ctx context.Context, id int64) (model.Meal, error) {
	m, err := s.store.GetMeal(ctx, id)
	if err != nil {
		return model.Meal{}, s.mapStoreErr(err, "meal with id %d not found", id)
	}
	return m, nil
}

func (s *Service) Meals(ctx context.Context) ([]model.Meal, error) {
	return s.store.ListMeals(ctx)
}

func (s *Service) mapStoreErr(err error, format string, args ...any) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound(err, format, args...)
	}
	return err
}
