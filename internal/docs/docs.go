package docs

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
)

//go:embed content/*.md
var contentFS embed.FS

// Topics lists the embedded help topics, sorted.
func Topics() []string {
	entries, err := fs.Glob(contentFS, "content/*.md")
	if err != nil {
		return nil
	}
	topics := make([]string, 0, len(entries))
	for _, p := range entries {
		if t := strings.TrimSuffix(path.Base(p), ".md"); t != "" {
			topics = append(topics, t)
		}
	}
	sort.Strings(topics)
	return topics
}

// Get returns the raw markdown for topic.
func Get(topic string) (string, bool) {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" || strings.ContainsAny(topic, `/\`) {
		return "", false
	}
	b, err := contentFS.ReadFile(path.Join("content", topic+".md"))
	if err != nil {
		return "", false
	}
	return string(b), true
}

// Render formats markdown for a terminal of the given width.
// style is a glamour standard style ("dark", "light", "notty").
func Render(md string, style string, width int) (string, error) {
	if style == "" {
		style = "notty"
	}
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
