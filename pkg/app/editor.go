package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/reorder"
)

// ReportKind says which background write a Report is about.
type ReportKind string

const (
	ReportPosition ReportKind = "position"
	ReportTitle    ReportKind = "title"
)

// Report is the outcome of a write the editor issued in the background.
type Report struct {
	Kind      ReportKind `json:"kind"`
	SubtaskID entity.ID  `json:"subtask_id"`
	Err       error      `json:"-"`
}

// SubtaskEditor is an editing session over one task's subtasks. Local edits
// show up immediately; title changes reach the server after a quiet period
// and position changes are sent as soon as an item is moved.
type SubtaskEditor struct {
	svc    *Service
	taskID entity.ID
	temp   entity.TempIDs

	mu      sync.Mutex
	items   []entity.Subtask
	reports []Report
	closed  bool

	inflight sync.WaitGroup // position updates
}

// OpenEditor starts an editing session for taskID.
func (s *Service) OpenEditor(ctx context.Context, taskID entity.ID) (*SubtaskEditor, error) {
	subs, err := s.Subtasks(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return &SubtaskEditor{svc: s, taskID: taskID, items: subs}, nil
}

func (e *SubtaskEditor) TaskID() entity.ID { return e.taskID }

// Items returns the current local list.
func (e *SubtaskEditor) Items() []entity.Subtask {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]entity.Subtask(nil), e.items...)
}

// Add appends a local-only subtask.
func (e *SubtaskEditor) Add(title string) entity.Subtask {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.addLocked(title)
}

// AddGenerated appends local-only subtasks for each title.
func (e *SubtaskEditor) AddGenerated(titles []string) []entity.Subtask {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]entity.Subtask, 0, len(titles))
	for _, t := range titles {
		out = append(out, e.addLocked(t))
	}
	return out
}

func (e *SubtaskEditor) addLocked(title string) entity.Subtask {
	sub := entity.Subtask{
		ID:       e.temp.Next(),
		TaskID:   e.taskID,
		Title:    title,
		Position: len(e.items),
	}
	e.items = append(e.items, sub)
	return sub
}

func (e *SubtaskEditor) indexLocked(id entity.ID) int {
	for i := range e.items {
		if e.items[i].ID == id {
			return i
		}
	}
	return -1
}

func debounceKey(id entity.ID) string {
	return fmt.Sprintf("subtask/%d/title", id)
}

// Rename changes a title locally at once. For persisted subtasks the server
// call is debounced so a burst of edits becomes one request.
func (e *SubtaskEditor) Rename(ctx context.Context, id entity.ID, title string) error {
	e.mu.Lock()
	i := e.indexLocked(id)
	if i < 0 {
		e.mu.Unlock()
		return nil
	}
	e.items[i].Title = title
	e.mu.Unlock()

	if id.Pending() || strings.TrimSpace(title) == "" {
		return nil
	}
	bg := context.WithoutCancel(ctx)
	e.svc.debouncer.Schedule(debounceKey(id), e.svc.debounce, func() {
		_, err := e.svc.RenameSubtask(bg, e.taskID, id, title)
		e.report(Report{Kind: ReportTitle, SubtaskID: id, Err: err})
	})
	return nil
}

// Toggle flips a subtask's completion. Persisted subtasks are written
// through the coordinator right away; local-only ones change in memory.
func (e *SubtaskEditor) Toggle(ctx context.Context, id entity.ID) (entity.Subtask, error) {
	e.mu.Lock()
	i := e.indexLocked(id)
	if i < 0 {
		e.mu.Unlock()
		return entity.Subtask{}, fmt.Errorf("app: subtask %d not found", id)
	}
	e.items[i].Completed = !e.items[i].Completed
	sub := e.items[i]
	e.mu.Unlock()

	if id.Pending() {
		return sub, nil
	}
	updated, err := e.svc.SetSubtaskCompleted(ctx, e.taskID, id, sub.Completed)

	e.mu.Lock()
	defer e.mu.Unlock()
	if i = e.indexLocked(id); i < 0 {
		return updated, err
	}
	if err != nil {
		e.items[i].Completed = !sub.Completed
		return e.items[i], err
	}
	e.items[i].Completed = updated.Completed
	e.items[i].UpdatedAt = updated.UpdatedAt
	return e.items[i], nil
}

// Move reorders the local list and queues the new order for the server.
// Position updates run in the background, one batch at a time per task.
// Closing the editor does not cancel them.
func (e *SubtaskEditor) Move(ctx context.Context, from, to int) []entity.Subtask {
	e.mu.Lock()
	before := e.items
	after := reorder.Move(before, from, to)
	e.items = after
	items := append([]entity.Subtask(nil), after...)
	e.mu.Unlock()

	if len(reorder.Updates(before, after)) == 0 {
		return items
	}
	e.inflight.Add(1)
	e.svc.QueuePositions(ctx, e.taskID, before, items, func(results []PositionResult) {
		defer e.inflight.Done()
		echoed := make([]entity.Subtask, 0, len(results))
		for _, r := range results {
			e.report(Report{Kind: ReportPosition, SubtaskID: r.Update.ID, Err: r.Err})
			if r.OK() {
				echoed = append(echoed, r.Subtask)
			}
		}
		e.mu.Lock()
		e.items = reorder.MergeEchoed(e.items, echoed)
		e.mu.Unlock()
	})
	return items
}

// Remove drops a subtask from the local list. It is deleted on the server
// when the list is saved.
func (e *SubtaskEditor) Remove(id entity.ID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.indexLocked(id)
	if i < 0 {
		return false
	}
	next := make([]entity.Subtask, 0, len(e.items)-1)
	next = append(next, e.items[:i]...)
	next = append(next, e.items[i+1:]...)
	reorder.Renumber(next)
	e.items = next
	e.svc.debouncer.Cancel(debounceKey(id))
	return true
}

// Save writes the whole list. Pending title edits are folded into the save
// instead of being sent separately.
func (e *SubtaskEditor) Save(ctx context.Context) ([]entity.Subtask, error) {
	items := e.Items()
	for _, it := range items {
		e.svc.debouncer.Cancel(debounceKey(it.ID))
	}
	saved, err := e.svc.SaveSubtasks(ctx, e.taskID, items)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.items = append([]entity.Subtask(nil), saved...)
	e.mu.Unlock()
	return saved, nil
}

func (e *SubtaskEditor) report(r Report) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reports = append(e.reports, r)
}

// Reports drains the outcomes of background writes.
func (e *SubtaskEditor) Reports() []Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.reports
	e.reports = nil
	return out
}

// Wait blocks until position updates have finished. Title edits still
// waiting out their quiet period are not included.
func (e *SubtaskEditor) Wait() {
	e.inflight.Wait()
}

// Close ends the session. Pending title edits are sent now; position
// updates already issued keep running.
func (e *SubtaskEditor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	ids := make([]entity.ID, 0, len(e.items))
	for _, it := range e.items {
		ids = append(ids, it.ID)
	}
	e.mu.Unlock()

	for _, id := range ids {
		e.svc.debouncer.Flush(debounceKey(id))
	}
}
