package nutrition

import (
	"net/url"
	"strconv"
	"strings"
)

// Request is a validated calorie calculation request.
type Request struct {
	Foods []string
	Grams []int
}

func (r Request) Len() int { return len(r.Foods) }

// ParseRequest reads productCount/food/gram from query values, applying the
// same rules as the calculation endpoint has always had.
func ParseRequest(v url.Values) (Request, error) {
	var missing []string
	if !v.Has("productCount") {
		missing = append(missing, "productCount")
	}
	if !v.Has("food") {
		missing = append(missing, "food")
	}
	if !v.Has("gram") {
		missing = append(missing, "gram")
	}
	if len(missing) > 0 {
		return Request{}, badRequest("missing required parameters: %s", strings.Join(missing, ", "))
	}

	count, err := strconv.Atoi(strings.TrimSpace(v.Get("productCount")))
	if err != nil {
		return Request{}, badRequest("parameter 'productCount' must be an integer")
	}
	return NewRequest(count, v["food"], v["gram"])
}

// NewRequest validates raw food/gram lists against count.
func NewRequest(count int, foods []string, grams []string) (Request, error) {
	if count <= 0 {
		return Request{}, badRequest("parameter 'productCount' must be a positive number")
	}
	if len(foods) != count || len(grams) != count {
		return Request{}, badRequest("the lengths of 'food' and 'gram' must match 'productCount'")
	}
	req := Request{Foods: make([]string, count), Grams: make([]int, count)}
	for i := 0; i < count; i++ {
		food := strings.TrimSpace(foods[i])
		if food == "" {
			return Request{}, badRequest("food name at index %d must not be empty", i)
		}
		g, err := strconv.Atoi(strings.TrimSpace(grams[i]))
		if err != nil || g <= 0 {
			return Request{}, badRequest("gram for '%s' must be a positive number", food)
		}
		req.Foods[i] = food
		req.Grams[i] = g
	}
	return req, nil
}

// cacheKey quotes each food so separators inside names cannot make two
// different requests share a key.
func (r Request) cacheKey() string {
	parts := make([]string, 0, len(r.Foods))
	for i, f := range r.Foods {
		parts = append(parts, strconv.Quote(f)+"="+strconv.Itoa(r.Grams[i]))
	}
	return strings.Join(parts, ",")
}
