// Package cascade decides whether completing a task should also complete its
// subtasks, and carries that out once the user agrees.
package cascade

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"tableflip.dev/agenda/pkg/entity"
)

// Decision is the outcome of a completion request.
type Decision int

const (
	// Direct means the toggle can be applied as is.
	Direct Decision = iota
	// NeedsConfirmation means incomplete subtasks would be left behind.
	NeedsConfirmation
)

func (d Decision) String() string {
	if d == NeedsConfirmation {
		return "needs_confirmation"
	}
	return "direct"
}

// Decide asks for confirmation only when checking a task that still has
// incomplete subtasks.
func Decide(task entity.Task, checked bool) Decision {
	if !checked || !task.HasSubtasks {
		return Direct
	}
	if task.CompletedSubtasks >= task.TotalSubtasks {
		return Direct
	}
	return NeedsConfirmation
}

// Completer performs the individual writes of a cascade.
type Completer interface {
	SetTaskCompleted(ctx context.Context, id entity.ID, completed bool) (entity.Task, error)
	SetSubtaskCompleted(ctx context.Context, taskID, subtaskID entity.ID, completed bool) (entity.Subtask, error)
	Subtasks(ctx context.Context, taskID entity.ID) ([]entity.Subtask, error)
}

// SubtaskResult reports one subtask completion.
type SubtaskResult struct {
	SubtaskID entity.ID      `json:"subtask_id"`
	Title     string         `json:"title"`
	Subtask   entity.Subtask `json:"subtask"`
	Err       error          `json:"-"`
}

func (r SubtaskResult) OK() bool { return r.Err == nil }

// Result is the outcome of a confirmed cascade. The task stays completed
// even when some subtasks failed.
type Result struct {
	Task     entity.Task     `json:"task"`
	Subtasks []SubtaskResult `json:"subtasks"`
}

// Failed lists the subtasks that could not be completed.
func (r Result) Failed() []SubtaskResult {
	var out []SubtaskResult
	for _, s := range r.Subtasks {
		if !s.OK() {
			out = append(out, s)
		}
	}
	return out
}

// Engine runs confirmed cascades.
type Engine struct {
	completer Completer
	logger    *slog.Logger
}

func NewEngine(c Completer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{completer: c, logger: logger}
}

// Confirm completes the task and then each incomplete subtask independently.
// An error is returned only when the task itself could not be completed or
// its subtasks could not be listed.
func (e *Engine) Confirm(ctx context.Context, taskID entity.ID) (Result, error) {
	task, err := e.completer.SetTaskCompleted(ctx, taskID, true)
	if err != nil {
		return Result{}, fmt.Errorf("cascade: complete task %d: %w", taskID, err)
	}
	res := Result{Task: task}

	subtasks, err := e.completer.Subtasks(ctx, taskID)
	if err != nil {
		return res, fmt.Errorf("cascade: list subtasks of %d: %w", taskID, err)
	}

	var open []entity.Subtask
	for _, s := range subtasks {
		if !s.Completed {
			open = append(open, s)
		}
	}
	res.Subtasks = make([]SubtaskResult, len(open))

	var wg sync.WaitGroup
	for i, s := range open {
		wg.Add(1)
		go func(i int, s entity.Subtask) {
			defer wg.Done()
			res.Subtasks[i] = e.complete(ctx, taskID, s)
		}(i, s)
	}
	wg.Wait()

	if failed := res.Failed(); len(failed) > 0 {
		e.logger.Warn("cascade left subtasks incomplete", "task", taskID, "failed", len(failed), "total", len(open))
	}
	return res, nil
}

// Retry attempts a failed subtask again.
func (e *Engine) Retry(ctx context.Context, taskID entity.ID, r SubtaskResult) SubtaskResult {
	if r.OK() {
		return r
	}
	return e.complete(ctx, taskID, entity.Subtask{ID: r.SubtaskID, TaskID: taskID, Title: r.Title})
}

func (e *Engine) complete(ctx context.Context, taskID entity.ID, s entity.Subtask) SubtaskResult {
	out := SubtaskResult{SubtaskID: s.ID, Title: s.Title}
	updated, err := e.completer.SetSubtaskCompleted(ctx, taskID, s.ID, true)
	if err != nil {
		out.Err = err
		out.Subtask = s
		return out
	}
	out.Subtask = updated
	return out
}
