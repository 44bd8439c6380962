package publish

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"tasktree-cli/internal/model"
)

type RenderOptions struct {
	IncludeCompleted bool
}

// RenderProjectMarkdown renders tasks (in flattened order) as a nested checklist linking to
// the per-task pages.
func RenderProjectMarkdown(p model.Project, tasks []model.Task, opt RenderOptions) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	title := strings.TrimSpace(p.Name)
	if title == "" {
		title = p.ID
	}
	writeLn("# " + title)
	writeLn("")
	writeLn("## Tasks")
	writeLn("")

	hidden := hiddenTasks(tasks, opt.IncludeCompleted)
	n := 0
	for _, t := range tasks {
		if hidden[t.ID] {
			continue
		}
		fmt.Fprintf(&buf, "%s- %s [%s](tasks/%s.md)%s\n", strings.Repeat("  ", t.Depth), checkbox(t), escapeLinkText(t.Title), t.ID, dateSuffix(t))
		n++
	}
	if n == 0 {
		writeLn("_No tasks._")
	}
	return buf.String()
}

// RenderTaskMarkdown renders one task page. children are its direct children in order.
func RenderTaskMarkdown(p model.Project, t model.Task, parent *model.Task, children []model.Task) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(t.Title))
	writeLn("")
	writeLn("## Meta")
	writeLn("")
	writeLn("- ID: " + t.ID)
	if name := strings.TrimSpace(p.Name); name != "" {
		writeLn("- Project: " + name + " (" + p.ID + ")")
	} else {
		writeLn("- Project: " + t.ProjectID)
	}
	if parent != nil {
		writeLn(fmt.Sprintf("- Parent: [%s](%s.md)", escapeLinkText(parent.Title), parent.ID))
	}
	if t.StartDate != nil {
		writeLn("- Start: " + t.StartDate.String())
	}
	if t.EndDate != nil {
		writeLn("- End: " + t.EndDate.String())
	}
	if t.IsCompleted {
		writeLn("- Completed: true")
	}
	if !t.CreatedAt.IsZero() {
		writeLn("- Created: " + t.CreatedAt.UTC().Format(time.RFC3339))
	}
	if !t.UpdatedAt.IsZero() {
		writeLn("- Updated: " + t.UpdatedAt.UTC().Format(time.RFC3339))
	}

	if len(children) > 0 {
		writeLn("")
		writeLn("## Subtasks")
		writeLn("")
		for _, c := range children {
			writeLn(fmt.Sprintf("- %s [%s](%s.md)%s", checkbox(c), escapeLinkText(c.Title), c.ID, dateSuffix(c)))
		}
	}
	return buf.String()
}

// hiddenTasks marks completed tasks, and everything under them, unless completed tasks are included.
func hiddenTasks(tasks []model.Task, includeCompleted bool) map[string]bool {
	hidden := map[string]bool{}
	if includeCompleted {
		return hidden
	}
	for _, t := range tasks {
		if t.IsCompleted || (t.ParentID != nil && hidden[*t.ParentID]) {
			hidden[t.ID] = true
		}
	}
	return hidden
}

func checkbox(t model.Task) string {
	if t.IsCompleted {
		return "[x]"
	}
	return "[ ]"
}

func dateSuffix(t model.Task) string {
	switch {
	case t.StartDate == nil && t.EndDate == nil:
		return ""
	case t.StartDate == nil:
		return " (until " + t.EndDate.String() + ")"
	case t.EndDate == nil || *t.StartDate == *t.EndDate:
		return " (" + t.StartDate.String() + ")"
	default:
		return " (" + t.StartDate.String() + " to " + t.EndDate.String() + ")"
	}
}

var linkTextEscaper = strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`)

func escapeLinkText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(untitled)"
	}
	return linkTextEscaper.Replace(s)
}
