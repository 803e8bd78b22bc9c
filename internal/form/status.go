package form

type StatusKind string

const (
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// Status is the transient outcome area shown below the list.
// Lines are plain text; renderers must not interpret them as markup.
type Status struct {
	Kind    StatusKind `json:"kind"`
	Lines   []string   `json:"lines"`
	Visible bool       `json:"visible"`

	// Seq identifies the current expiry timer. It changes whenever the
	// status is shown or dismissed.
	Seq int `json:"-"`
}

func (s Status) IsError() bool { return s.Kind == StatusError }
