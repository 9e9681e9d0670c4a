package status

import (
	"strings"
	"unicode/utf8"

	"podknight/internal/tasktree"
)

const (
	// DefaultMaxChars keeps a snapshot under the webhook content limit.
	DefaultMaxChars = 1900
	// ExcerptChars caps the progress excerpt shown per task.
	ExcerptChars = 100
)

// OverallIcon is the headline marker for a subtree state.
func OverallIcon(state tasktree.State) string {
	switch state {
	case tasktree.Completed, tasktree.Skipped:
		return "✅"
	case tasktree.Failed:
		return "❌"
	default:
		return "⏳"
	}
}

// TaskIcon is the per-line marker for a task state.
func TaskIcon(state tasktree.State) string {
	switch state {
	case tasktree.Running:
		return "🔄"
	case tasktree.Completed:
		return "✅"
	case tasktree.Failed:
		return "❌"
	default:
		return "⬜"
	}
}

// Render formats snap as a compact multi-line listing no longer than
// maxChars runes. Skipped tasks are omitted.
func Render(snap tasktree.Snapshot, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	var b strings.Builder
	b.WriteString(OverallIcon(snap.State))
	b.WriteString(" **")
	b.WriteString(snap.Title)
	b.WriteString("**")

	var writeChildren func(children []tasktree.Snapshot, depth int)
	writeChildren = func(children []tasktree.Snapshot, depth int) {
		for _, child := range children {
			if child.State == tasktree.Skipped {
				continue
			}
			b.WriteByte('\n')
			b.WriteString(strings.Repeat("  ", depth))
			b.WriteString(TaskIcon(child.State))
			b.WriteByte(' ')
			b.WriteString(child.Title)
			if child.State != tasktree.Completed {
				if excerpt := Excerpt(child.Output, ExcerptChars); excerpt != "" {
					b.WriteString(" `")
					b.WriteString(excerpt)
					b.WriteByte('`')
				}
			}
			writeChildren(child.Children, depth+1)
		}
	}
	writeChildren(snap.Children, 0)

	return Truncate(b.String(), maxChars)
}

// Excerpt flattens text onto one line and truncates it to limit runes.
func Excerpt(text string, limit int) string {
	text = strings.Join(strings.Fields(strings.ReplaceAll(text, "`", "'")), " ")
	return Truncate(text, limit)
}

// Truncate shortens text to at most limit runes, marking the cut with an
// ellipsis.
func Truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	if limit == 1 {
		return "…"
	}
	runes := []rune(text)
	return string(runes[:limit-1]) + "…"
}
