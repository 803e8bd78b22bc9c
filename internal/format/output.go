package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formats lists the values accepted by Write.
var Formats = []string{"json", "edn", "text"}

// Write renders v as json (default), edn or text.
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "text":
		return WriteText(w, v)
	case "edn":
		return WriteEDN(w, v, pretty)
	default:
		return fmt.Errorf("unknown format: %s (expected %s)", format, strings.Join(Formats, "|"))
	}
}

// Lines is implemented by values with a line-oriented text form.
type Lines interface {
	TextLines() []string
}

// WriteText prints one line per entry. Values without a text form fall back
// to indented JSON.
func WriteText(w io.Writer, v any) error {
	var lines []string
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		lines = []string{t}
	case []string:
		lines = t
	case Lines:
		lines = t.TextLines()
	case fmt.Stringer:
		lines = []string{t.String()}
	default:
		return WriteJSON(w, v, true)
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
