package app

import (
	"context"
	"fmt"
	"strings"
)

// View is one of the mutually exclusive planner panels.
type View int

const (
	ViewNone View = iota
	ViewDaily
	ViewWeekly
	ViewMonthly
	ViewHabits
	ViewGoals
)

var viewNames = map[View]string{
	ViewNone:    "uninitialized",
	ViewDaily:   "daily",
	ViewWeekly:  "weekly",
	ViewMonthly: "monthly",
	ViewHabits:  "habits",
	ViewGoals:   "goals",
}

func (v View) String() string {
	if n, ok := viewNames[v]; ok {
		return n
	}
	return fmt.Sprintf("View(%d)", int(v))
}

// ParseView maps a navigation name to its view.
func ParseView(s string) (View, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for v, n := range viewNames {
		if v != ViewNone && n == name {
			return v, nil
		}
	}
	return ViewNone, fmt.Errorf("unknown view %q", s)
}

// ReadyFunc runs once, the first time a view is shown.
type ReadyFunc func(ctx context.Context, v View) error

// Views switches between panels. A panel is built on its first visit only; that first
// visit emits the view-ready signal to every registered ReadyFunc.
type Views struct {
	active View
	built  map[View]bool
	ready  []ReadyFunc
}

// NewViews starts uninitialized.
func NewViews() *Views {
	return &Views{built: make(map[View]bool)}
}

// OnReady registers fn for view-ready signals.
func (vs *Views) OnReady(fn ReadyFunc) {
	vs.ready = append(vs.ready, fn)
}

// Active returns the current view.
func (vs *Views) Active() View { return vs.active }

// Built reports whether v was ever shown.
func (vs *Views) Built(v View) bool { return vs.built[v] }

// Show deactivates the current view and activates target. The first error returned by a
// ReadyFunc is returned; the view stays active and built.
func (vs *Views) Show(ctx context.Context, target View) error {
	if target == ViewNone || viewNames[target] == "" {
		return fmt.Errorf("cannot show %s", target)
	}
	vs.active = target
	if vs.built[target] {
		return nil
	}
	vs.built[target] = true
	var first error
	for _, fn := range vs.ready {
		if err := fn(ctx, target); err != nil && first == nil {
			first = err
		}
	}
	return first
}
