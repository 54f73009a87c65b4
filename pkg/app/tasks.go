package app

import (
	"context"
	"fmt"

	"tableflip.dev/agenda/pkg/cache"
	"tableflip.dev/agenda/pkg/cascade"
	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/mutation"
	"tableflip.dev/agenda/pkg/viewmodel"
)

// Tasks returns the cached task list, fetching it when stale.
func (s *Service) Tasks(ctx context.Context) ([]entity.Task, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return cache.EnsureList[entity.Task](ctx, s.loader, cache.KeyTasks)
}

// Task returns one task from the cached list.
func (s *Service) Task(ctx context.Context, id entity.ID) (entity.Task, error) {
	tasks, err := s.Tasks(ctx)
	if err != nil {
		return entity.Task{}, err
	}
	t, ok := lookup(tasks, id)
	if !ok {
		return entity.Task{}, fmt.Errorf("app: task %d not found", id)
	}
	return t, nil
}

// TaskViews classifies the task list and applies f to every bucket.
func (s *Service) TaskViews(ctx context.Context, f viewmodel.TaskFilter) (viewmodel.TaskViews, error) {
	tasks, err := s.Tasks(ctx)
	if err != nil {
		return viewmodel.TaskViews{}, err
	}
	return viewmodel.ClassifyTasks(tasks, s.now()).Apply(f), nil
}

// Summary counts tasks per bucket.
func (s *Service) Summary(ctx context.Context) (viewmodel.Summary, error) {
	tasks, err := s.Tasks(ctx)
	if err != nil {
		return viewmodel.Summary{}, err
	}
	return viewmodel.Summarize(tasks, s.now()), nil
}

// CreateTask sends draft to the server. Nothing is inserted speculatively;
// the server's task is added once it answers and the list is marked stale.
func (s *Service) CreateTask(ctx context.Context, draft entity.Task) (entity.Task, error) {
	if err := s.ready(); err != nil {
		return entity.Task{}, err
	}
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return entity.Task{}, err
	}
	body := draft.Draft()
	return mutation.Perform(ctx, s.co, mutation.Mutation[entity.Task]{
		Name: "create-task",
		Keys: []cache.Key{cache.KeyTasks},
		Remote: func(ctx context.Context) (entity.Task, error) {
			return s.Remote.CreateTask(ctx, body)
		},
		Commit: func(c *cache.Cache, t entity.Task) {
			cache.UpsertItem(c, cache.KeyTasks, t)
		},
		Invalidate: []cache.Key{cache.KeyTasks, cache.KeyTasksWithSubtasks},
	})
}

// UpdateTask applies patch optimistically and commits the server's task.
func (s *Service) UpdateTask(ctx context.Context, id entity.ID, patch entity.TaskPatch) (entity.Task, error) {
	if err := s.ready(); err != nil {
		return entity.Task{}, err
	}
	if patch.Empty() {
		return s.Task(ctx, id)
	}
	current, err := s.Task(ctx, id)
	if err != nil {
		return entity.Task{}, err
	}
	if err := patch.Validate(current); err != nil {
		return entity.Task{}, err
	}
	return mutation.Perform(ctx, s.co, mutation.Mutation[entity.Task]{
		Name: "update-task",
		Keys: []cache.Key{cache.KeyTasks},
		Optimistic: func(c *cache.Cache) {
			cache.PatchItem(c, cache.KeyTasks, id, patch.Apply)
		},
		Remote: func(ctx context.Context) (entity.Task, error) {
			return s.Remote.UpdateTask(ctx, id, patch)
		},
		Commit: func(c *cache.Cache, t entity.Task) {
			cache.ReplaceItem(c, cache.KeyTasks, t)
		},
		OnNotFound: s.forgetTask(id),
	})
}

// SetTaskCompleted toggles completion. This is the Direct path of a
// completion request.
func (s *Service) SetTaskCompleted(ctx context.Context, id entity.ID, completed bool) (entity.Task, error) {
	if err := s.ready(); err != nil {
		return entity.Task{}, err
	}
	var invalidate []cache.Key
	if t, ok := cache.Find[entity.Task](s.cache, cache.KeyTasks, id); ok && (t.IsRecurring || t.IsInstance()) {
		// The server rolls recurring series forward on completion.
		invalidate = append(invalidate, cache.KeyTasks)
	}
	patch := entity.TaskPatch{Completed: &completed}
	return mutation.Perform(ctx, s.co, mutation.Mutation[entity.Task]{
		Name: "complete-task",
		Keys: []cache.Key{cache.KeyTasks},
		Optimistic: func(c *cache.Cache) {
			cache.PatchItem(c, cache.KeyTasks, id, func(t entity.Task) entity.Task {
				t.Completed = completed
				return t
			})
		},
		Remote: func(ctx context.Context) (entity.Task, error) {
			return s.Remote.UpdateTask(ctx, id, patch)
		},
		Commit: func(c *cache.Cache, t entity.Task) {
			cache.ReplaceItem(c, cache.KeyTasks, t)
		},
		Invalidate: invalidate,
		OnNotFound: s.forgetTask(id),
	})
}

// RequestCompletion decides whether toggling id needs the user to confirm a
// cascade. It performs no writes.
func (s *Service) RequestCompletion(ctx context.Context, id entity.ID, checked bool) (cascade.Decision, error) {
	t, err := s.Task(ctx, id)
	if err != nil {
		return cascade.Direct, err
	}
	return cascade.Decide(t, checked), nil
}

// ConfirmCascade completes the task and all of its open subtasks.
func (s *Service) ConfirmCascade(ctx context.Context, id entity.ID) (cascade.Result, error) {
	if err := s.ready(); err != nil {
		return cascade.Result{}, err
	}
	return s.cascade.Confirm(ctx, id)
}

// RetryCascade retries one failed subtask of a cascade.
func (s *Service) RetryCascade(ctx context.Context, id entity.ID, r cascade.SubtaskResult) cascade.SubtaskResult {
	return s.cascade.Retry(ctx, id, r)
}

// DeleteTask removes the task optimistically. Its subtask list and the
// has-subtasks index are invalidated once the server confirms.
func (s *Service) DeleteTask(ctx context.Context, id entity.ID) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := mutation.Perform(ctx, s.co, mutation.Mutation[struct{}]{
		Name: "delete-task",
		Keys: []cache.Key{cache.KeyTasks},
		Optimistic: func(c *cache.Cache) {
			cache.RemoveItem[entity.Task](c, cache.KeyTasks, id)
		},
		Remote: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.Remote.DeleteTask(ctx, id)
		},
		Commit: func(c *cache.Cache, _ struct{}) {
			c.Remove(cache.SubtasksKey(id))
		},
		Invalidate: []cache.Key{cache.SubtasksKey(id), cache.KeyTasksWithSubtasks},
		OnNotFound: s.forgetTask(id),
	})
	return err
}

func (s *Service) forgetTask(id entity.ID) func(*cache.Cache) {
	return func(c *cache.Cache) {
		cache.RemoveItem[entity.Task](c, cache.KeyTasks, id)
		c.Remove(cache.SubtasksKey(id))
		c.Invalidate(cache.KeyTasksWithSubtasks)
	}
}

// TasksWithSubtasks lists the ids of tasks that own at least one subtask.
func (s *Service) TasksWithSubtasks(ctx context.Context) ([]entity.ID, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return cache.EnsureList[entity.ID](ctx, s.loader, cache.KeyTasksWithSubtasks)
}
