package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"tableflip.dev/agenda/pkg/api"
	"tableflip.dev/agenda/pkg/cache"
	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/mutation"
	"tableflip.dev/agenda/pkg/reorder"
)

func sortByPosition(subs []entity.Subtask) {
	sort.SliceStable(subs, func(i, j int) bool { return subs[i].Position < subs[j].Position })
}

// Subtasks returns the subtasks of taskID in position order.
func (s *Service) Subtasks(ctx context.Context, taskID entity.ID) ([]entity.Subtask, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	subs, err := cache.EnsureList[entity.Subtask](ctx, s.loader, cache.SubtasksKey(taskID))
	if err != nil {
		return nil, err
	}
	sortByPosition(subs)
	return subs, nil
}

// SetSubtaskCompleted toggles one subtask. The server's echo carries the
// new updated_at.
func (s *Service) SetSubtaskCompleted(ctx context.Context, taskID, subtaskID entity.ID, completed bool) (entity.Subtask, error) {
	if err := s.ready(); err != nil {
		return entity.Subtask{}, err
	}
	key := cache.SubtasksKey(taskID)
	patch := entity.SubtaskPatch{Completed: &completed}
	return mutation.Perform(ctx, s.co, mutation.Mutation[entity.Subtask]{
		Name: "complete-subtask",
		Keys: []cache.Key{key, cache.KeyTasks},
		Optimistic: func(c *cache.Cache) {
			cache.PatchItem(c, key, subtaskID, patch.Apply)
			cache.PatchItem(c, cache.KeyTasks, taskID, func(t entity.Task) entity.Task {
				if completed {
					t.CompletedSubtasks++
				} else if t.CompletedSubtasks > 0 {
					t.CompletedSubtasks--
				}
				return t
			})
		},
		Remote: func(ctx context.Context) (entity.Subtask, error) {
			return s.Remote.UpdateSubtask(ctx, taskID, subtaskID, patch)
		},
		Commit: func(c *cache.Cache, sub entity.Subtask) {
			cache.ReplaceItem(c, key, sub)
		},
		Invalidate: []cache.Key{cache.KeyTasks},
		OnNotFound: func(c *cache.Cache) {
			cache.RemoveItem[entity.Subtask](c, key, subtaskID)
			c.Invalidate(key, cache.KeyTasks)
		},
	})
}

// RenameSubtask sends a title change straight away. Editors debounce calls
// to it.
func (s *Service) RenameSubtask(ctx context.Context, taskID, subtaskID entity.ID, title string) (entity.Subtask, error) {
	if err := s.ready(); err != nil {
		return entity.Subtask{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return entity.Subtask{}, &entity.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	key := cache.SubtasksKey(taskID)
	patch := entity.SubtaskPatch{Title: &title}
	return mutation.Perform(ctx, s.co, mutation.Mutation[entity.Subtask]{
		Name: "rename-subtask",
		Keys: []cache.Key{key},
		Optimistic: func(c *cache.Cache) {
			cache.PatchItem(c, key, subtaskID, patch.Apply)
		},
		Remote: func(ctx context.Context) (entity.Subtask, error) {
			return s.Remote.UpdateSubtask(ctx, taskID, subtaskID, patch)
		},
		Commit: func(c *cache.Cache, sub entity.Subtask) {
			cache.ReplaceItem(c, key, sub)
		},
		OnNotFound: func(c *cache.Cache) {
			cache.RemoveItem[entity.Subtask](c, key, subtaskID)
		},
	})
}

// PositionResult reports one position update.
type PositionResult struct {
	Update  reorder.PositionUpdate `json:"update"`
	Subtask entity.Subtask         `json:"subtask"`
	Err     error                  `json:"-"`
}

func (r PositionResult) OK() bool { return r.Err == nil }

// UpdatePositions sends each position change on its own. They are not a
// transaction: every result is reported separately, echoed timestamps are
// merged into the cached list, and a failure marks the list stale so the
// server's order is fetched again.
func (s *Service) UpdatePositions(ctx context.Context, taskID entity.ID, updates []reorder.PositionUpdate) []PositionResult {
	if len(updates) == 0 {
		return nil
	}
	key := cache.SubtasksKey(taskID)
	s.cache.CancelFetches(key)
	out := make([]PositionResult, 0, len(updates))
	var echoed []entity.Subtask
	failed := false
	for _, u := range updates {
		pos := u.Position
		sub, err := s.Remote.UpdateSubtask(ctx, taskID, u.ID, entity.SubtaskPatch{Position: &pos})
		out = append(out, PositionResult{Update: u, Subtask: sub, Err: err})
		if err != nil {
			failed = true
			s.logger.Warn("subtask position update failed", "task", taskID, "subtask", u.ID, "err", err)
			continue
		}
		echoed = append(echoed, sub)
	}

	s.cache.Update(key, func(current any, ok bool) (any, bool) {
		subs, isList := current.([]entity.Subtask)
		if !ok || !isList {
			return nil, false
		}
		next := reorder.MergeEchoed(subs, echoed)
		for i := range next {
			for _, e := range echoed {
				if e.ID == next[i].ID {
					next[i].Position = e.Position
				}
			}
		}
		sortByPosition(next)
		return next, true
	})
	if failed {
		s.cache.Invalidate(key)
	}
	return out
}

// SaveSubtasks replaces the subtask list of taskID with items. Blank rows
// are dropped and positions renumbered; new rows get server ids. The list is
// not inserted speculatively.
func (s *Service) SaveSubtasks(ctx context.Context, taskID entity.ID, items []entity.Subtask) ([]entity.Subtask, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	kept := make([]entity.Subtask, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Title) == "" {
			continue
		}
		kept = append(kept, it)
	}
	reorder.Renumber(kept)
	drafts := make([]entity.SubtaskDraft, len(kept))
	for i, it := range kept {
		drafts[i] = it.Draft()
	}

	key := cache.SubtasksKey(taskID)
	return mutation.Perform(ctx, s.co, mutation.Mutation[[]entity.Subtask]{
		Name: "save-subtasks",
		Keys: []cache.Key{key},
		Remote: func(ctx context.Context) ([]entity.Subtask, error) {
			return s.Remote.ReplaceSubtasks(ctx, taskID, drafts)
		},
		Commit: func(c *cache.Cache, subs []entity.Subtask) {
			sorted := append([]entity.Subtask(nil), subs...)
			sortByPosition(sorted)
			cache.SetList(c, key, sorted)
		},
		Invalidate: []cache.Key{cache.KeyTasks, cache.KeyTasksWithSubtasks},
		OnNotFound: s.forgetTask(taskID),
	})
}

// GenerateSubtasks asks the assistant for count subtask titles for a task.
// A usage-limit error is returned as is and never retried.
func (s *Service) GenerateSubtasks(ctx context.Context, taskID entity.ID, count int) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if count < 1 || count > api.MaxGenerated {
		return nil, &entity.ValidationError{Field: "count", Reason: fmt.Sprintf("must be between 1 and %d", api.MaxGenerated)}
	}
	t, err := s.Task(ctx, taskID)
	if err != nil {
		return nil, err
	}
	titles, err := s.Remote.GenerateSubtasks(ctx, api.GenerateRequest{
		Title:       t.Title,
		Description: t.Description,
		Count:       count,
	})
	if err != nil {
		if api.IsUsageLimit(err) {
			s.logger.Info("subtask generation limit reached", "task", taskID)
		}
		return nil, err
	}
	out := make([]string, 0, len(titles))
	for _, title := range titles {
		if title = strings.TrimSpace(title); title != "" {
			out = append(out, title)
		}
	}
	return out, nil
}
