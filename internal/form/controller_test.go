package form

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAddDelete_LabelsStayContiguous(t *testing.T) {
	for n := 1; n <= 6; n++ {
		// Every subset of rows to delete, encoded as a bitmask.
		for mask := 0; mask < 1<<n; mask++ {
			c := NewController()
			for i := 0; i < n; i++ {
				c.AddRow()
				c.SetFood(i, fmt.Sprintf("food-%d", i))
			}
			// Delete from the back so indexes of pending deletions stay valid.
			for i := n - 1; i >= 0; i-- {
				if mask&(1<<i) != 0 {
					if !c.DeleteRow(i) {
						t.Fatalf("n=%d mask=%b: delete %d failed", n, mask, i)
					}
				}
			}
			want := Renumber(c.Len())
			if diff := cmp.Diff(want, c.Labels()); diff != "" {
				t.Fatalf("n=%d mask=%b labels (-want +got):\n%s", n, mask, diff)
			}
			for i, l := range c.Labels() {
				if l != fmt.Sprintf("%d.", i+1) {
					t.Fatalf("n=%d mask=%b: label[%d]=%q", n, mask, i, l)
				}
			}
		}
	}
}

func TestDelete_KeepsRemainingRowsInOrder(t *testing.T) {
	c := NewController()
	for _, f := range []string{"a", "b", "c", "d"} {
		i := c.AddRow()
		c.SetFood(i, f)
	}
	c.DeleteRow(1)

	var got []string
	for _, r := range c.Rows() {
		got = append(got, r.Food)
	}
	if diff := cmp.Diff([]string{"a", "c", "d"}, got); diff != "" {
		t.Fatalf("rows (-want +got):\n%s", diff)
	}
	if c.Label(2) != "3." {
		t.Fatalf("expected last label 3., got %q", c.Label(2))
	}
}

func TestEmptyIndicator(t *testing.T) {
	c := NewController()
	if !c.Empty() {
		t.Fatalf("new controller should be empty")
	}
	c.AddRow()
	if c.Empty() {
		t.Fatalf("add should hide the empty indicator")
	}
	c.AddRow()
	c.DeleteRow(0)
	if c.Empty() {
		t.Fatalf("one row left; should not be empty")
	}
	c.DeleteRow(0)
	if !c.Empty() {
		t.Fatalf("deleting the last row should re-show the empty indicator")
	}
}

func TestDeleteRow_OutOfRangeIsNoop(t *testing.T) {
	c := NewController()
	c.AddRow()
	if c.DeleteRow(3) || c.DeleteRow(-1) {
		t.Fatalf("expected out-of-range delete to fail")
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", c.Len())
	}
}

func TestBuildQuery_PreservesOrderAndTrimsFood(t *testing.T) {
	rows := []Row{{Food: " Apple ", Grams: "150"}, {Food: "Rice", Grams: "200"}}
	got := BuildQuery(rows).Encode()
	want := "productCount=2&food=Apple&gram=150&food=Rice&gram=200"
	if got != want {
		t.Fatalf("query:\n got %s\nwant %s", got, want)
	}
}

func TestBuildQuery_ZeroRows(t *testing.T) {
	got := NewController().Query().Encode()
	if got != "productCount=0" {
		t.Fatalf("expected productCount=0, got %q", got)
	}
}

func TestBuildQuery_EscapesValues(t *testing.T) {
	got := BuildQuery([]Row{{Food: "Chicken Breast & rice", Grams: "10"}}).Encode()
	want := "productCount=1&food=Chicken+Breast+%26+rice&gram=10"
	if got != want {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestValidateRows(t *testing.T) {
	rows := []Row{
		{Food: "Apple", Grams: "150"},
		{Food: "  ", Grams: "0"},
		{Food: "Rice", Grams: "abc"},
		{Food: "Oats", Grams: ""},
	}
	verr := ValidateRows(rows)
	if verr == nil {
		t.Fatalf("expected validation errors")
	}
	want := []FieldError{
		{Row: 1, Field: FieldFood, Message: "food name is required"},
		{Row: 1, Field: FieldGrams, Message: "grams must be at least 1"},
		{Row: 2, Field: FieldGrams, Message: `"abc" is not a whole number`},
		{Row: 3, Field: FieldGrams, Message: "grams is required"},
	}
	if diff := cmp.Diff(want, verr.Fields); diff != "" {
		t.Fatalf("field errors (-want +got):\n%s", diff)
	}
	if !verr.For(2, FieldGrams) || verr.For(0, FieldFood) {
		t.Fatalf("For() mismatch")
	}
	if ValidateRows(rows[:1]) != nil {
		t.Fatalf("valid row should pass")
	}
}

func TestBeginSubmit_BlocksInvalidRows(t *testing.T) {
	c := NewController()
	c.AddRow()
	_, err := c.BeginSubmit()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if c.InFlight() {
		t.Fatalf("invalid submit must not start a request")
	}
}

func TestBeginSubmit_ZeroRowsIsAllowed(t *testing.T) {
	c := NewController()
	tk, err := c.BeginSubmit()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tk.Query.Encode() != "productCount=0" {
		t.Fatalf("unexpected query %q", tk.Query.Encode())
	}
}

func TestSubmit_InFlightGuardAndGenerations(t *testing.T) {
	c := NewController()
	c.AddRow()
	c.SetFood(0, "Apple")
	c.SetGrams(0, "150")

	tk, err := c.BeginSubmit()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := c.BeginSubmit(); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}

	if _, applied := c.FinishSubmit(tk.Gen+1, []string{"x"}, nil); applied {
		t.Fatalf("result for unknown generation must be ignored")
	}
	seq, applied := c.FinishSubmit(tk.Gen, []string{"Total: 500 kcal"}, nil)
	if !applied {
		t.Fatalf("expected latest result to apply")
	}
	st := c.Status()
	if !st.Visible || st.Kind != StatusSuccess || st.Seq != seq {
		t.Fatalf("unexpected status %+v", st)
	}
	if diff := cmp.Diff([]string{"Total: 500 kcal"}, st.Lines); diff != "" {
		t.Fatalf("lines (-want +got):\n%s", diff)
	}

	// A late duplicate of the same generation is dropped.
	if _, applied := c.FinishSubmit(tk.Gen, nil, errors.New("late")); applied {
		t.Fatalf("finished generation must not apply twice")
	}
	if c.Submission().State != SubmitDone {
		t.Fatalf("expected done, got %v", c.Submission().State)
	}
}

func TestFinishSubmit_ErrorShowsMessage(t *testing.T) {
	c := NewController()
	tk, _ := c.BeginSubmit()
	c.FinishSubmit(tk.Gen, nil, errors.New("Network Error"))
	st := c.Status()
	if !st.IsError() || !st.Visible {
		t.Fatalf("expected visible error status, got %+v", st)
	}
	if len(st.Lines) != 1 || st.Lines[0] != "Network Error" {
		t.Fatalf("expected single error line, got %q", st.Lines)
	}
}

func TestStatus_DismissAndExpire(t *testing.T) {
	c := NewController()
	seq := c.ShowStatus(StatusSuccess, []string{"ok"})
	c.Dismiss()
	if c.Status().Visible {
		t.Fatalf("dismiss should hide immediately")
	}
	if c.ExpireStatus(seq) {
		t.Fatalf("stale expiry must be a no-op")
	}

	first := c.ShowStatus(StatusSuccess, []string{"one"})
	second := c.ShowStatus(StatusError, []string{"two"})
	if c.ExpireStatus(first) {
		t.Fatalf("expiry of a replaced status must not hide the new one")
	}
	if !c.Status().Visible {
		t.Fatalf("second status should still be visible")
	}
	if !c.ExpireStatus(second) {
		t.Fatalf("current expiry should hide")
	}
	if c.Status().Visible {
		t.Fatalf("expected hidden")
	}
}
