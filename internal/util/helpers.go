package util

import (
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"time"
)

// =============================================================================
// Template Compilation Helpers
// =============================================================================

// MustCompileTemplate compiles a template with the given name and content.
// Exits with a fatal error if compilation fails; used during initialization
// when template failures are unrecoverable.
func MustCompileTemplate(name string, funcs template.FuncMap, content string) *template.Template {
	t, err := template.New(name).Funcs(funcs).Parse(content)
	if err != nil {
		slog.Error("failed to compile template", "template", name, "error", err)
		os.Exit(1)
	}
	return t
}

// =============================================================================
// Formatting Helpers
// =============================================================================

// RelTime formats a timestamp as a compact relative age ("3h", "2d") for
// list views, falling back to a date once it is older than a week.
func RelTime(t time.Time, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

// Truncate shortens s to at most n runes, appending an ellipsis when it cut
// anything.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
