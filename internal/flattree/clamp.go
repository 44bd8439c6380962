package flattree

import "tasktree-cli/internal/model"

type DateChange struct {
	ID       string
	OldStart *model.Date
	OldEnd   *model.Date
	NewStart *model.Date
	NewEnd   *model.Date
}

// ClampToParent tightens task's date range so it fits inside [ps, pe].
//
//   - parent without a start: the task loses both dates
//   - task entirely before the parent's start: collapses onto the parent's start
//   - task starting after the parent's end: collapses onto the parent's end
//   - otherwise the start is raised to ps and the end lowered to pe where needed
//
// It reports whether anything changed.
func ClampToParent(task *model.Task, ps, pe *model.Date) (DateChange, bool) {
	ch := DateChange{
		ID:       task.ID,
		OldStart: copyDate(task.StartDate),
		OldEnd:   copyDate(task.EndDate),
	}
	start, end := copyDate(task.StartDate), copyDate(task.EndDate)

	switch {
	case ps == nil:
		start, end = nil, nil
	case start != nil && lastDay(start, end).Before(*ps):
		start, end = copyDate(ps), copyDate(ps)
	case start != nil && pe != nil && start.After(*pe):
		start, end = copyDate(pe), copyDate(pe)
	default:
		if start != nil && start.Before(*ps) {
			start = copyDate(ps)
		}
		if end != nil && pe != nil && end.After(*pe) {
			end = copyDate(pe)
		}
		if end != nil && end.Before(*ps) {
			end = copyDate(ps)
		}
	}

	if model.SameDate(start, task.StartDate) && model.SameDate(end, task.EndDate) {
		return DateChange{}, false
	}
	task.StartDate, task.EndDate = start, end
	ch.NewStart, ch.NewEnd = copyDate(start), copyDate(end)
	return ch, true
}

func lastDay(start, end *model.Date) model.Date {
	if end != nil {
		return *end
	}
	return *start
}

func copyDate(d *model.Date) *model.Date {
	if d == nil {
		return nil
	}
	return model.DatePtr(*d)
}
