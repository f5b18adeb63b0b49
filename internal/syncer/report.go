package syncer

import (
	"fmt"
	"io"
	"sort"
)

// Named is implemented by decision payloads that can identify their unit
// in a report.
type Named interface {
	DisplayName() string
}

// SortActions orders a plan for display and execution: pushes first, then
// pulls, then skips, each group sorted by unit name.
func SortActions[P Named](actions []Decision[P]) {
	sort.SliceStable(actions, func(i, j int) bool {
		if actions[i].Op != actions[j].Op {
			return actions[i].Op < actions[j].Op
		}
		return actions[i].Payload.DisplayName() < actions[j].Payload.DisplayName()
	})
}

// WriteReport renders one line per decision, in plan order. The report is
// shown to the user before any transfer runs.
func WriteReport[P Named](w io.Writer, actions []Decision[P]) error {
	for _, action := range actions {
		var err error
		switch action.Op {
		case OpPush:
			_, err = fmt.Fprintf(w, "<- PUSH: %s\n", action.Payload.DisplayName())
		case OpPull:
			_, err = fmt.Fprintf(w, "-> PULL: %s\n", action.Payload.DisplayName())
		default:
			_, err = fmt.Fprintf(w, "   SKIP: %s (%s)\n", action.Payload.DisplayName(), action.Reason)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Unchanged reports whether the plan contains no transfers at all.
func Unchanged[P any](actions []Decision[P]) bool {
	for _, action := range actions {
		if action.Op != OpSkip {
			return false
		}
	}
	return true
}
