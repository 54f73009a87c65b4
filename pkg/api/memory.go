package api

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"tableflip.dev/agenda/pkg/entity"
)

// Memory is an in-process Remote. It backs the demo mode and tests, and can
// be told to fail the next call to any operation.
type Memory struct {
	mu sync.Mutex

	nextID    entity.ID
	tasks     []entity.Task
	subtasks  map[entity.ID][]entity.Subtask
	appts     []entity.Appointment
	meetings  []entity.Meeting
	settings  entity.UserSettings
	generated []string

	failures map[string][]error
	calls    map[string]int
	now      func() time.Time
}

var _ Remote = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		nextID:   1,
		subtasks: make(map[entity.ID][]entity.Subtask),
		failures: make(map[string][]error),
		calls:    make(map[string]int),
		now:      time.Now,
		settings: entity.UserSettings{
			WorkStartHour: 9 * 3600,
			WorkEndHour:   17 * 3600,
			Theme:         "system",
		},
	}
}

// FailNext queues err for the next call to op, for example "UpdateTask".
func (m *Memory) FailNext(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op] = append(m.failures[op], err)
}

// Calls reports how many times op was called.
func (m *Memory) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// SetGenerated sets the titles GenerateSubtasks suggests.
func (m *Memory) SetGenerated(titles ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generated = titles
}

// AddTask stores t with a fresh id.
func (m *Memory) AddTask(t entity.Task) entity.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.allocLocked()
	t.Normalize()
	m.tasks = append(m.tasks, t)
	return t
}

// AddSubtask appends a subtask to taskID.
func (m *Memory) AddSubtask(taskID entity.ID, title string, completed bool) entity.Subtask {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := entity.At(m.now())
	sub := entity.Subtask{
		ID:        m.allocLocked(),
		TaskID:    taskID,
		Title:     title,
		Completed: completed,
		Position:  len(m.subtasks[taskID]),
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.subtasks[taskID] = append(m.subtasks[taskID], sub)
	m.recountLocked(taskID)
	return sub
}

func (m *Memory) AddAppointment(a entity.Appointment) entity.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = m.allocLocked()
	m.appts = append(m.appts, a)
	return a
}

func (m *Memory) AddMeeting(mt entity.Meeting) entity.Meeting {
	m.mu.Lock()
	defer m.mu.Unlock()
	mt.ID = m.allocLocked()
	m.meetings = append(m.meetings, mt)
	return mt
}

func (m *Memory) allocLocked() entity.ID {
	id := m.nextID
	m.nextID++
	return id
}

// enter counts the call and pops a queued failure.
func (m *Memory) enter(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return &TransportError{Op: op, Err: err}
	}
	m.calls[op]++
	if q := m.failures[op]; len(q) > 0 {
		m.failures[op] = q[1:]
		return q[0]
	}
	return nil
}

func (m *Memory) recountLocked(taskID entity.ID) {
	for i := range m.tasks {
		if m.tasks[i].ID != taskID {
			continue
		}
		subs := m.subtasks[taskID]
		done := 0
		for _, s := range subs {
			if s.Completed {
				done++
			}
		}
		m.tasks[i].HasSubtasks = len(subs) > 0
		m.tasks[i].TotalSubtasks = len(subs)
		m.tasks[i].CompletedSubtasks = done
	}
}

func (m *Memory) taskIndexLocked(id entity.ID) int {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) ListTasks(ctx context.Context) ([]entity.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "ListTasks"); err != nil {
		return nil, err
	}
	return append([]entity.Task(nil), m.tasks...), nil
}

func (m *Memory) CreateTask(ctx context.Context, draft entity.TaskDraft) (entity.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "CreateTask"); err != nil {
		return entity.Task{}, err
	}
	t := entity.Task{
		ID:                 m.allocLocked(),
		Title:              draft.Title,
		Description:        draft.Description,
		Priority:           draft.Priority,
		DueDate:            draft.DueDate,
		IsRecurring:        draft.IsRecurring,
		RecurrencePattern:  draft.RecurrencePattern,
		RecurrenceInterval: draft.RecurrenceInterval,
		RecurrenceEndDate:  draft.RecurrenceEndDate,
	}
	t.Normalize()
	m.tasks = append(m.tasks, t)
	return t, nil
}

func (m *Memory) UpdateTask(ctx context.Context, id entity.ID, patch entity.TaskPatch) (entity.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "UpdateTask"); err != nil {
		return entity.Task{}, err
	}
	i := m.taskIndexLocked(id)
	if i < 0 {
		return entity.Task{}, &NotFoundError{Resource: "task", ID: id}
	}
	m.tasks[i] = patch.Apply(m.tasks[i])
	return m.tasks[i], nil
}

func (m *Memory) DeleteTask(ctx context.Context, id entity.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "DeleteTask"); err != nil {
		return err
	}
	i := m.taskIndexLocked(id)
	if i < 0 {
		return &NotFoundError{Resource: "task", ID: id}
	}
	m.tasks = append(m.tasks[:i:i], m.tasks[i+1:]...)
	delete(m.subtasks, id)
	return nil
}

func (m *Memory) TasksWithSubtasks(ctx context.Context) ([]entity.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "TasksWithSubtasks"); err != nil {
		return nil, err
	}
	var ids []entity.ID
	for id, subs := range m.subtasks {
		if len(subs) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *Memory) ListSubtasks(ctx context.Context, taskID entity.ID) ([]entity.Subtask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "ListSubtasks"); err != nil {
		return nil, err
	}
	if m.taskIndexLocked(taskID) < 0 {
		return nil, &NotFoundError{Resource: "task", ID: taskID}
	}
	return append([]entity.Subtask(nil), m.subtasks[taskID]...), nil
}

func (m *Memory) ReplaceSubtasks(ctx context.Context, taskID entity.ID, drafts []entity.SubtaskDraft) ([]entity.Subtask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "ReplaceSubtasks"); err != nil {
		return nil, err
	}
	if m.taskIndexLocked(taskID) < 0 {
		return nil, &NotFoundError{Resource: "task", ID: taskID}
	}
	prev := make(map[entity.ID]entity.Subtask)
	for _, s := range m.subtasks[taskID] {
		prev[s.ID] = s
	}
	now := entity.At(m.now())
	out := make([]entity.Subtask, 0, len(drafts))
	for _, d := range drafts {
		sub := entity.Subtask{TaskID: taskID, Title: d.Title, Completed: d.Completed, Position: d.Position, UpdatedAt: now}
		if d.ID != nil {
			if old, ok := prev[*d.ID]; ok {
				sub.ID = old.ID
				sub.CreatedAt = old.CreatedAt
			}
		}
		if sub.ID == 0 {
			sub.ID = m.allocLocked()
			sub.CreatedAt = now
		}
		out = append(out, sub)
	}
	m.subtasks[taskID] = out
	m.recountLocked(taskID)
	return append([]entity.Subtask(nil), out...), nil
}

func (m *Memory) UpdateSubtask(ctx context.Context, taskID, subtaskID entity.ID, patch entity.SubtaskPatch) (entity.Subtask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "UpdateSubtask"); err != nil {
		return entity.Subtask{}, err
	}
	subs := m.subtasks[taskID]
	for i := range subs {
		if subs[i].ID != subtaskID {
			continue
		}
		subs[i] = patch.Apply(subs[i])
		subs[i].UpdatedAt = entity.At(m.now())
		m.recountLocked(taskID)
		return subs[i], nil
	}
	return entity.Subtask{}, &NotFoundError{Resource: "subtask", ID: subtaskID}
}

func (m *Memory) GenerateSubtasks(ctx context.Context, req GenerateRequest) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "GenerateSubtasks"); err != nil {
		return nil, err
	}
	out := append([]string(nil), m.generated...)
	if len(out) == 0 {
		for i := 1; i <= req.Count; i++ {
			out = append(out, fmt.Sprintf("%s: step %d", strings.TrimSpace(req.Title), i))
		}
	}
	if len(out) > req.Count {
		out = out[:req.Count]
	}
	return out, nil
}

func (m *Memory) ListAppointments(ctx context.Context) ([]entity.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "ListAppointments"); err != nil {
		return nil, err
	}
	return append([]entity.Appointment(nil), m.appts...), nil
}

func (m *Memory) CreateAppointment(ctx context.Context, draft entity.AppointmentDraft) (entity.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "CreateAppointment"); err != nil {
		return entity.Appointment{}, err
	}
	a := entity.Appointment{
		ID:                 m.allocLocked(),
		Title:              draft.Title,
		Description:        draft.Description,
		StartTime:          draft.StartTime,
		EndTime:            draft.EndTime,
		AllDay:             draft.AllDay,
		IsRecurring:        draft.IsRecurring,
		RecurrencePattern:  draft.RecurrencePattern,
		RecurrenceInterval: draft.RecurrenceInterval,
		RecurrenceEndDate:  draft.RecurrenceEndDate,
	}
	m.appts = append(m.appts, a)
	return a, nil
}

func (m *Memory) UpdateAppointment(ctx context.Context, id entity.ID, patch entity.AppointmentPatch) (entity.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "UpdateAppointment"); err != nil {
		return entity.Appointment{}, err
	}
	for i := range m.appts {
		if m.appts[i].ID == id {
			m.appts[i] = patch.Apply(m.appts[i])
			return m.appts[i], nil
		}
	}
	return entity.Appointment{}, &NotFoundError{Resource: "appointment", ID: id}
}

func (m *Memory) DeleteAppointment(ctx context.Context, id entity.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "DeleteAppointment"); err != nil {
		return err
	}
	for i := range m.appts {
		if m.appts[i].ID == id {
			m.appts = append(m.appts[:i:i], m.appts[i+1:]...)
			return nil
		}
	}
	return &NotFoundError{Resource: "appointment", ID: id}
}

func (m *Memory) ListMeetings(ctx context.Context) ([]entity.Meeting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "ListMeetings"); err != nil {
		return nil, err
	}
	return append([]entity.Meeting(nil), m.meetings...), nil
}

func (m *Memory) GetSettings(ctx context.Context) (entity.UserSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "GetSettings"); err != nil {
		return entity.UserSettings{}, err
	}
	return m.settings, nil
}

func (m *Memory) UpdateSettings(ctx context.Context, patch entity.SettingsPatch) (entity.UserSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "UpdateSettings"); err != nil {
		return entity.UserSettings{}, err
	}
	m.settings = patch.Apply(m.settings)
	return m.settings, nil
}
