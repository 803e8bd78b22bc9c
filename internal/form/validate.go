package form

import (
	"fmt"
	"strconv"
	"strings"
)

type Field string

const (
	FieldFood  Field = "food"
	FieldGrams Field = "grams"
)

// FieldError describes one invalid field. Row is zero-based.
type FieldError struct {
	Row     int    `json:"row"`
	Field   Field  `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return fmt.Sprintf("row %d %s: %s", e.Row+1, e.Field, e.Message)
}

// ValidationError collects every field error found in one pass.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	switch len(e.Fields) {
	case 0:
		return "invalid form"
	case 1:
		return "invalid form: " + e.Fields[0].String()
	}
	return fmt.Sprintf("invalid form: %d problems", len(e.Fields))
}

// Lines returns a human summary, one line per field error.
func (e *ValidationError) Lines() []string {
	out := make([]string, 0, len(e.Fields)+1)
	out = append(out, "Please fix the highlighted rows:")
	for _, f := range e.Fields {
		out = append(out, f.String())
	}
	return out
}

// For reports whether row i has an error on field f.
func (e *ValidationError) For(i int, f Field) bool {
	if e == nil {
		return false
	}
	for _, fe := range e.Fields {
		if fe.Row == i && fe.Field == f {
			return true
		}
	}
	return false
}

// ValidateRows checks that every row has a non-blank food name and an
// integer gram amount of at least 1. It returns nil when all rows pass.
func ValidateRows(rows []Row) *ValidationError {
	var errs []FieldError
	for i, r := range rows {
		if strings.TrimSpace(r.Food) == "" {
			errs = append(errs, FieldError{Row: i, Field: FieldFood, Message: "food name is required"})
		}
		g := strings.TrimSpace(r.Grams)
		switch n, err := strconv.Atoi(g); {
		case g == "":
			errs = append(errs, FieldError{Row: i, Field: FieldGrams, Message: "grams is required"})
		case err != nil:
			errs = append(errs, FieldError{Row: i, Field: FieldGrams, Message: fmt.Sprintf("%q is not a whole number", g)})
		case n < 1:
			errs = append(errs, FieldError{Row: i, Field: FieldGrams, Message: "grams must be at least 1"})
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Fields: errs}
}

// Validate checks the current rows.
func (c *Controller) Validate() *ValidationError {
	return ValidateRows(c.rows)
}
