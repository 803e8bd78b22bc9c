package web

import (
	"net/http"

	"kcal-cli/internal/nutrition"
)

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	req, err := nutrition.ParseRequest(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	lines, err := s.svc.Calculate(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func (s *Server) handleProductsList(w http.ResponseWriter, r *http.Request) {
	ps, err := s.svc.Products(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (s *Server) handleProductCreate(w http.ResponseWriter, r *http.Request) {
	cal, err := queryInt(r, "caloriesPer100g")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.svc.CreateProduct(r.Context(), r.URL.Query().Get("name"), cal)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeText(w, http.StatusCreated, nutrition.ProductMessage("created", p))
}

func (s *Server) handleProductGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.svc.Product(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleProductUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cal, err := queryInt(r, "caloriesPer100g")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.svc.UpdateProduct(r.Context(), id, r.URL.Query().Get("name"), cal)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, nutrition.ProductMessage("updated", p))
}

func (s *Server) handleProductDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.DeleteProduct(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, "Product deleted")
}

func (s *Server) handleMealsList(w http.ResponseWriter, r *http.Request) {
	meals, err := s.svc.Meals(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meals)
}

func (s *Server) handleMealGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := s.svc.Meal(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleMealAddProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	grams, err := queryInt(r, "grams")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	msg, err := s.svc.AddProductToMeal(r.Context(), id, r.URL.Query().Get("productName"), grams)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, msg)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.snapshot())
}
