package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cppla/planner/models"
	"github.com/cppla/planner/planner"
)

// GoalItem is a goal and its milestones.
type GoalItem struct {
	Goal       models.Goal
	Milestones []models.Milestone
}

// GoalsView indexes goals and milestones by id.
type GoalsView struct {
	s     *Session
	order []string
	goals map[string]*GoalItem
}

// Load fetches goals and milestones. Milestones whose goal is gone are dropped.
func (g *GoalsView) Load(ctx context.Context) error {
	g.order = nil
	g.goals = make(map[string]*GoalItem)

	goals, err := queryAll[models.Goal](ctx, g.s, models.TableGoals)
	if err != nil {
		return err
	}
	for _, goal := range goals {
		g.goals[goal.ID] = &GoalItem{Goal: goal}
		g.order = append(g.order, goal.ID)
	}

	milestones, err := queryAll[models.Milestone](ctx, g.s, models.TableMilestones)
	if err != nil {
		return err
	}
	for _, m := range milestones {
		if item, ok := g.goals[m.GoalID]; ok {
			item.Milestones = append(item.Milestones, m)
		}
	}
	return nil
}

// Get returns a goal by id.
func (g *GoalsView) Get(id string) (GoalItem, error) {
	item, ok := g.goals[id]
	if !ok {
		return GoalItem{}, fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	return *item, nil
}

// List returns the goals shown under tab, optionally limited to one category.
func (g *GoalsView) List(tab planner.GoalTab, category string) ([]GoalItem, error) {
	if category != "" {
		c, err := planner.NormalizeCategory(category)
		if err != nil {
			return nil, err
		}
		category = c
	}
	var out []GoalItem
	for _, id := range g.order {
		item := g.goals[id]
		if !tab.Shows(item.Goal.Category, item.Goal.Completed) {
			continue
		}
		if category != "" && item.Goal.Category != category {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

// NewGoal is the add-goal form.
type NewGoal struct {
	Title       string
	Category    string
	Description string
	Deadline    string
	Milestones  []string
}

// Add saves the goal, then each non-blank milestone under the new goal id.
func (g *GoalsView) Add(ctx context.Context, in NewGoal) (GoalItem, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return GoalItem{}, planner.Invalid("title", "is required")
	}
	category, err := planner.NormalizeCategory(in.Category)
	if err != nil {
		return GoalItem{}, err
	}
	if in.Deadline != "" && !planner.ValidDate(in.Deadline) {
		return GoalItem{}, planner.Invalid("deadline", "must be YYYY-MM-DD")
	}

	goal, err := upsertOne[models.Goal](ctx, g.s, models.TableGoals, models.Goal{
		Owned:       g.s.owned(""),
		Title:       title,
		Category:    category,
		Description: strings.TrimSpace(in.Description),
		Deadline:    in.Deadline,
	})
	if err != nil {
		return GoalItem{}, err
	}
	item := &GoalItem{Goal: goal}
	g.goals[goal.ID] = item
	g.order = append(g.order, goal.ID)

	for _, text := range in.Milestones {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		m, err := upsertOne[models.Milestone](ctx, g.s, models.TableMilestones, models.Milestone{
			Owned:  g.s.owned(""),
			GoalID: goal.ID,
			Text:   text,
		})
		if err != nil {
			return *item, err
		}
		item.Milestones = append(item.Milestones, m)
	}
	return *item, nil
}

// ToggleMilestone flips a milestone, then recomputes and stores the goal progress.
func (g *GoalsView) ToggleMilestone(ctx context.Context, goalID, milestoneID string) (int, error) {
	item, ok := g.goals[goalID]
	if !ok {
		return 0, fmt.Errorf("goal %s: %w", goalID, ErrNotFound)
	}
	idx := -1
	for i, m := range item.Milestones {
		if m.ID == milestoneID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return item.Goal.Progress, fmt.Errorf("milestone %s: %w", milestoneID, ErrNotFound)
	}

	m := &item.Milestones[idx]
	m.Completed = !m.Completed
	done := make([]bool, len(item.Milestones))
	for i, ms := range item.Milestones {
		done[i] = ms.Completed
	}
	item.Goal.Progress = planner.ProgressOf(done)

	if _, err := upsertOne[models.Milestone](ctx, g.s, models.TableMilestones, g.s.patch(m.ID, map[string]interface{}{
		"goal_id":   goalID,
		"completed": m.Completed,
	})); err != nil {
		return item.Goal.Progress, err
	}
	_, err := upsertOne[models.Goal](ctx, g.s, models.TableGoals, g.s.patch(goalID, map[string]interface{}{
		"progress": item.Goal.Progress,
	}))
	return item.Goal.Progress, err
}

// SetCompleted marks the goal done or active.
func (g *GoalsView) SetCompleted(ctx context.Context, goalID string, completed bool) error {
	item, ok := g.goals[goalID]
	if !ok {
		return fmt.Errorf("goal %s: %w", goalID, ErrNotFound)
	}
	goal, err := upsertOne[models.Goal](ctx, g.s, models.TableGoals, g.s.patch(goalID, map[string]interface{}{
		"completed": completed,
	}))
	if err != nil {
		return err
	}
	item.Goal = goal
	return nil
}

// Delete removes the goal, then each of its milestones. The two phases are independent
// calls; milestones that fail to delete are reported together and dropped from the index.
func (g *GoalsView) Delete(ctx context.Context, goalID string) error {
	item, ok := g.goals[goalID]
	if !ok {
		return fmt.Errorf("goal %s: %w", goalID, ErrNotFound)
	}
	if err := g.s.deleteByID(ctx, models.TableGoals, goalID); err != nil {
		return err
	}
	delete(g.goals, goalID)
	for i, id := range g.order {
		if id == goalID {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}

	var errs []error
	for _, m := range item.Milestones {
		if err := g.s.deleteByID(ctx, models.TableMilestones, m.ID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
