package model

import "time"

type Product struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	CaloriesPer100g int    `json:"caloriesPer100g"`
}

// Calories returns the energy in grams of this product, rounded down.
func (p Product) Calories(grams int) int {
	return p.CaloriesPer100g * grams / 100
}

type Meal struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	CreatedAt time.Time     `json:"createdAt"`
	Products  []MealProduct `json:"products,omitempty"`
}

// TotalCalories sums the calories of every entry in the meal.
func (m Meal) TotalCalories() int {
	total := 0
	for _, mp := range m.Products {
		total += mp.Calories()
	}
	return total
}

type MealProduct struct {
	ID        int64 `json:"id"`
	MealID    int64 `json:"mealId"`
	ProductID int64 `json:"productId"`
	Grams     int   `json:"grams"`

	// Product is filled when loaded together with its meal.
	Product *Product `json:"product,omitempty"`
}

func (mp MealProduct) Calories() int {
	if mp.Product == nil {
		return 0
	}
	return mp.Product.Calories(mp.Grams)
}
