package form

import (
	"fmt"
	"strings"
	"time"
)

// StatusTTL is how long a status message stays visible unless dismissed.
const StatusTTL = 15 * time.Second

// Row is one food/grams entry. Rows have no stable id; a row is addressed
// by its position in display order.
type Row struct {
	Food  string `json:"food"`
	Grams string `json:"grams"`
}

// Controller owns the row list and the status area for one form session.
//
// It is not safe for concurrent use; the TUI drives it from its update loop.
type Controller struct {
	rows   []Row
	labels []string

	status Status
	sub    Submission
}

func NewController() *Controller {
	return &Controller{}
}

// Rows returns a copy of the rows in display order.
func (c *Controller) Rows() []Row {
	out := make([]Row, len(c.rows))
	copy(out, c.rows)
	return out
}

func (c *Controller) Len() int { return len(c.rows) }

// Empty reports whether the empty-state indicator should be shown.
func (c *Controller) Empty() bool { return len(c.rows) == 0 }

// Labels returns the display label of every row ("1.", "2.", ...).
func (c *Controller) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

// Label returns the display label of row i, or "" when i is out of range.
func (c *Controller) Label(i int) string {
	if i < 0 || i >= len(c.labels) {
		return ""
	}
	return c.labels[i]
}

// AddRow appends an empty row and returns its index.
func (c *Controller) AddRow() int {
	c.rows = append(c.rows, Row{})
	c.renumber()
	return len(c.rows) - 1
}

// DeleteRow removes row i. It returns false when i does not name a row.
func (c *Controller) DeleteRow(i int) bool {
	if i < 0 || i >= len(c.rows) {
		return false
	}
	c.rows = append(c.rows[:i], c.rows[i+1:]...)
	c.renumber()
	return true
}

func (c *Controller) SetFood(i int, s string) bool {
	if i < 0 || i >= len(c.rows) {
		return false
	}
	c.rows[i].Food = s
	return true
}

func (c *Controller) SetGrams(i int, s string) bool {
	if i < 0 || i >= len(c.rows) {
		return false
	}
	c.rows[i].Grams = s
	return true
}

// renumber recomputes every label from scratch.
func (c *Controller) renumber() {
	c.labels = Renumber(len(c.rows))
}

// Renumber returns the labels for n rows in display order.
func Renumber(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("%d.", i+1)
	}
	return labels
}

// Status returns a snapshot of the status area.
func (c *Controller) Status() Status {
	st := c.status
	st.Lines = append([]string(nil), c.status.Lines...)
	return st
}

// ShowStatus makes the status visible with the given content and returns
// the sequence number the caller must pass to ExpireStatus after StatusTTL.
// Showing a new status invalidates any pending expiry.
func (c *Controller) ShowStatus(kind StatusKind, lines []string) int {
	c.status.Seq++
	c.status.Kind = kind
	c.status.Lines = cleanLines(lines)
	c.status.Visible = true
	return c.status.Seq
}

// Dismiss hides the status immediately and cancels the pending expiry.
func (c *Controller) Dismiss() {
	c.status.Seq++
	c.status.Visible = false
}

// ExpireStatus hides the status if seq is still the current one.
// It reports whether anything changed.
func (c *Controller) ExpireStatus(seq int) bool {
	if seq != c.status.Seq || !c.status.Visible {
		return false
	}
	c.status.Visible = false
	return true
}

func cleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, strings.ReplaceAll(l, "\r", ""))
	}
	return out
}
