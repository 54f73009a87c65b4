package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/agenda/pkg/app"
	"tableflip.dev/agenda/pkg/cascade"
	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/timeutil"
	"tableflip.dev/agenda/pkg/viewmodel"
)

type handlers struct {
	svc *app.Service
}

func registerTools(srv *server.MCPServer, h *handlers) {
	registerTaskTools(srv, h)
	registerSubtaskTools(srv, h)
	registerAppointmentTools(srv, h)
	registerSettingsTools(srv, h)
}

func registerTaskTools(srv *server.MCPServer, h *handlers) {
	srv.AddTool(mcp.NewTool(
		"list_tasks",
		mcp.WithDescription("List tasks grouped into active, overdue and completed views."),
		mcp.WithString("view",
			mcp.Description("Only return one view."),
			mcp.Enum("active", "overdue", "completed"),
		),
		mcp.WithString("search",
			mcp.Description("Case-insensitive text matched against titles and descriptions."),
		),
		mcp.WithString("priority",
			mcp.Description("Only tasks with this priority."),
			mcp.Enum("low", "medium", "high"),
		),
		mcp.WithString("within",
			mcp.Description("Only tasks due within this window from the start of today, such as 3d or 1w2d."),
		),
		mcp.WithString("sort",
			mcp.Description("Sort each view by due date."),
			mcp.Enum("asc", "desc"),
		),
		mcp.WithNumber("page",
			mcp.Description("1-based page of each view. Omit for everything."),
		),
		mcp.WithObject("pages",
			mcp.Description(`1-based page per view, such as {"active": 2}. Views left out start at page 1, or at page when it is set.`),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Items per page, default 20."),
		),
	), h.listTasks)

	srv.AddTool(mcp.NewTool(
		"get_task",
		mcp.WithDescription("Fetch a task with its subtasks."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Task identifier."),
		),
	), h.getTask)

	srv.AddTool(mcp.NewTool(
		"create_task",
		mcp.WithDescription("Create a task."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Task title."),
		),
		mcp.WithString("description",
			mcp.Description("Optional longer description."),
		),
		mcp.WithString("priority",
			mcp.Description("Priority, default medium."),
			mcp.Enum("low", "medium", "high"),
		),
		mcp.WithString("due",
			mcp.Description("Optional RFC3339 due date."),
		),
		mcp.WithString("repeat",
			mcp.Description("Optional repeat pattern."),
			mcp.Enum("daily", "weekly", "monthly", "yearly"),
		),
		mcp.WithNumber("every",
			mcp.Description("Repeat every N periods, default 1."),
		),
	), h.createTask)

	srv.AddTool(mcp.NewTool(
		"update_task",
		mcp.WithDescription("Change the title, description, priority or due date of a task."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Task identifier."),
		),
		mcp.WithString("title", mcp.Description("New title.")),
		mcp.WithString("description", mcp.Description("New description. An empty string clears it.")),
		mcp.WithString("priority",
			mcp.Description("New priority."),
			mcp.Enum("low", "medium", "high"),
		),
		mcp.WithString("due", mcp.Description("New RFC3339 due date. An empty string clears it.")),
	), h.updateTask)

	srv.AddTool(mcp.NewTool(
		"set_task_completed",
		mcp.WithDescription("Complete or reopen a task. Completing a task with open subtasks is not applied; the result asks for confirm_task_cascade instead."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Task identifier."),
		),
		mcp.WithBoolean("completed",
			mcp.Description("True to complete, false to reopen. Default true."),
		),
	), h.setTaskCompleted)

	srv.AddTool(mcp.NewTool(
		"confirm_task_cascade",
		mcp.WithDescription("Complete a task and all of its open subtasks. Each subtask reports its own outcome."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Task identifier."),
		),
	), h.confirmCascade)

	srv.AddTool(mcp.NewTool(
		"delete_task",
		mcp.WithDescription("Delete a task and its subtasks."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Task identifier."),
		),
	), h.deleteTask)

	srv.AddTool(mcp.NewTool(
		"task_summary",
		mcp.WithDescription("Count tasks per view."),
	), h.summary)
}

func registerSubtaskTools(srv *server.MCPServer, h *handlers) {
	srv.AddTool(mcp.NewTool(
		"reorder_subtasks",
		mcp.WithDescription("Move one subtask to a new 0-based position. Only the subtasks whose position changed are sent."),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("Owning task identifier."),
		),
		mcp.WithNumber("from",
			mcp.Required(),
			mcp.Description("Current 0-based position."),
		),
		mcp.WithNumber("to",
			mcp.Required(),
			mcp.Description("New 0-based position."),
		),
	), h.reorderSubtasks)

	srv.AddTool(mcp.NewTool(
		"generate_subtasks",
		mcp.WithDescription("Suggest subtask titles for a task. With save set they are appended to the task."),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("Task identifier."),
		),
		mcp.WithNumber("count",
			mcp.Description("How many to suggest, default 5."),
		),
		mcp.WithBoolean("save",
			mcp.Description("Append the suggestions to the task."),
		),
	), h.generateSubtasks)

	srv.AddTool(mcp.NewTool(
		"set_subtask_completed",
		mcp.WithDescription("Check or uncheck one subtask."),
		mcp.WithNumber("task_id", mcp.Required(), mcp.Description("Owning task identifier.")),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Subtask identifier.")),
		mcp.WithBoolean("completed", mcp.Description("Default true.")),
	), h.setSubtaskCompleted)
}

func registerAppointmentTools(srv *server.MCPServer, h *handlers) {
	windowArgs := []mcp.ToolOption{
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Appointment title."),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("RFC3339 start time."),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("RFC3339 end time."),
		),
		mcp.WithBoolean("all_day",
			mcp.Description("Compare and show by calendar date only."),
		),
		mcp.WithString("description",
			mcp.Description("Optional description."),
		),
	}

	srv.AddTool(mcp.NewTool(
		"list_appointments",
		mcp.WithDescription("List appointments grouped into in progress, upcoming, past and completed."),
		mcp.WithString("search",
			mcp.Description("Case-insensitive text matched against titles and descriptions."),
		),
	), h.listAppointments)

	srv.AddTool(mcp.NewTool(
		"propose_appointment",
		append([]mcp.ToolOption{mcp.WithDescription("Validate an appointment and report the first overlapping appointment or meeting. Nothing is booked.")}, windowArgs...)...,
	), h.proposeAppointment)

	srv.AddTool(mcp.NewTool(
		"create_appointment",
		append([]mcp.ToolOption{
			mcp.WithDescription("Book an appointment. An overlap is refused unless force is set."),
			mcp.WithBoolean("force", mcp.Description("Book even when the time overlaps.")),
		}, windowArgs...)...,
	), h.createAppointment)

	srv.AddTool(mcp.NewTool(
		"agenda",
		mcp.WithDescription("Open tasks due and appointments starting each day, with upcoming repeats of recurring tasks."),
		mcp.WithString("from",
			mcp.Description("RFC3339 start, default now."),
		),
		mcp.WithNumber("days",
			mcp.Description("Number of days, default 7."),
		),
	), h.agenda)
}

func registerSettingsTools(srv *server.MCPServer, h *handlers) {
	srv.AddTool(mcp.NewTool(
		"get_settings",
		mcp.WithDescription("Read the user's settings, including timezone and work hours."),
	), h.getSettings)

	srv.AddTool(mcp.NewTool(
		"set_work_hours",
		mcp.WithDescription("Set the work day."),
		mcp.WithString("start", mcp.Required(), mcp.Description("Start as HH:MM.")),
		mcp.WithString("end", mcp.Required(), mcp.Description("End as HH:MM, up to 24:00.")),
	), h.setWorkHours)
}

func requireID(request mcp.CallToolRequest, key string) (entity.ID, error) {
	v, err := request.RequireFloat(key)
	if err != nil {
		return 0, err
	}
	return entity.ID(int64(v)), nil
}

func parseTime(key, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value: %v", key, err)
	}
	return &t, nil
}

func (h *handlers) listTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		View     string `json:"view"`
		Search   string `json:"search"`
		Priority string `json:"priority"`
		Within   string `json:"within"`
		Sort     string `json:"sort"`
		Page     int            `json:"page"`
		Pages    map[string]int `json:"pages"`
		PageSize int            `json:"page_size"`
	}
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	f := viewmodel.TaskFilter{Search: args.Search}
	if args.Priority != "" {
		p, err := entity.ParsePriority(args.Priority)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		f.Priority = p
	}
	if args.Within != "" {
		from, to, err := timeutil.DueRange(time.Now(), args.Within, h.svc.Location())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		f.DueFrom, f.DueTo = &from, &to
	}
	sort, err := viewmodel.ParseSortOrder(args.Sort)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	f.Sort = sort

	views, err := h.svc.TaskViews(ctx, f)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	buckets := viewmodel.TaskBuckets
	if args.View != "" {
		buckets = []viewmodel.TaskBucket{viewmodel.TaskBucket(args.View)}
	}
	var pager *viewmodel.Pager
	if args.Page > 0 || len(args.Pages) > 0 {
		pager = viewmodel.NewPager(args.PageSize)
		for _, b := range buckets {
			if args.Page > 0 {
				pager.Set(string(b), args.Page)
			}
			if n, ok := args.Pages[string(b)]; ok {
				pager.Set(string(b), n)
			}
		}
	}
	out := make(map[string]any, len(buckets))
	for _, b := range buckets {
		if pager != nil {
			out[string(b)] = viewmodel.PageOf(pager, string(b), views.Bucket(b))
		} else {
			out[string(b)] = views.Bucket(b)
		}
	}
	return toJSONResult(out)
}

func (h *handlers) getTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	task, err := h.svc.Task(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var subs []entity.Subtask
	if task.HasSubtasks {
		if subs, err = h.svc.Subtasks(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	return toJSONResult(map[string]any{
		"task":     task,
		"subtasks": subs,
	})
}

func (h *handlers) createTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
		Due         string `json:"due"`
		Repeat      string `json:"repeat"`
		Every       int    `json:"every"`
	}
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	t := entity.Task{Title: args.Title, Priority: entity.PriorityMedium}
	if args.Priority != "" {
		p, err := entity.ParsePriority(args.Priority)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		t.Priority = p
	}
	if args.Description != "" {
		t.Description = &args.Description
	}
	due, err := parseTime("due", args.Due)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if due != nil {
		t.DueDate = entity.At(*due)
	}
	if args.Repeat != "" {
		p, err := timeutil.ParsePattern(args.Repeat)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		every := args.Every
		if every == 0 {
			every = 1
		}
		t.IsRecurring = true
		t.RecurrencePattern = &p
		t.RecurrenceInterval = &every
	}

	created, err := h.svc.CreateTask(ctx, t)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toJSONResult(created)
}

func (h *handlers) updateTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args := request.GetArguments()

	var patch entity.TaskPatch
	if _, ok := args["title"]; ok {
		title := request.GetString("title", "")
		patch.Title = &title
	}
	if _, ok := args["description"]; ok {
		d := request.GetString("description", "")
		patch.Description = &d
	}
	if _, ok := args["priority"]; ok {
		p, err := entity.ParsePriority(request.GetString("priority", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		patch.Priority = &p
	}
	if _, ok := args["due"]; ok {
		due, err := parseTime("due", request.GetString("due", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if due == nil {
			patch.ClearDueDate = true
		} else {
			patch.DueDate = entity.At(*due)
		}
	}
	if patch.Empty() {
		return mcp.NewToolResultError("nothing to update"), nil
	}

	task, err := h.svc.UpdateTask(ctx, id, patch)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toJSONResult(task)
}

func (h *handlers) setTaskCompleted(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	completed := request.GetBool("completed", true)

	decision, err := h.svc.RequestCompletion(ctx, id, completed)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if decision == cascade.NeedsConfirmation {
		task, err := h.svc.Task(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"decision": decision.String(),
			"task":     task,
			"message":  fmt.Sprintf("%d of %d subtasks are still open. Call confirm_task_cascade to complete them all.", task.TotalSubtasks-task.CompletedSubtasks, task.TotalSubtasks),
		})
	}

	task, err := h.svc.SetTaskCompleted(ctx, id, completed)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toJSONResult(map[string]any{
		"decision": decision.String(),
		"task":     task,
	})
}

type subtaskOutcome struct {
	ID    entity.ID `json:"id"`
	Title string    `json:"title"`
	OK    bool      `json:"ok"`
	Error string    `json:"error,omitempty"`
}

func (h *handlers) confirmCascade(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := h.svc.ConfirmCascade(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outcomes := make([]subtaskOutcome, 0, len(res.Subtasks))
	for _, s := range res.Subtasks {
		o := subtaskOutcome{ID: s.SubtaskID, Title: s.Title, OK: s.OK()}
		if s.Err != nil {
			o.Error = s.Err.Error()
		}
		outcomes = append(outcomes, o)
	}
	return toJSONResult(map[string]any{
		"task":     res.Task,
		"subtasks": outcomes,
		"failed":   len(res.Failed()),
	})
}

func (h *handlers) deleteTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := h.svc.DeleteTask(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toJSONResult(map[string]any{"deleted": id})
}

func (h *handlers) summary(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, err := h.svc.Summary(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toJSONResult(s)
}

func (h *handlers) reorderSubtasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := requireID(request, "task_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	from, err := request.RequireFloat("from")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := request.RequireFloat("to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	editor, err := h.svc.OpenEditor(ctx, taskID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer editor.Close()

	n := len(editor.Items())
	if int(from) < 0 || int(from) >= n || int(to) < 0 || int(to) >= n {
		return mcp.NewToolResultError(fmt.Sprintf("positions must be between 0 and %d", n-1)), nil
	}
	editor.Move(ctx, int(from), int(to))
	editor.Wait()

	var failed []string
	for _, r := range editor.Reports() {
		if r.Err != nil {
			failed = append(failed, fmt.Sprintf("subtask %d: %v", r.SubtaskID, r.Err))
		}
	}
	return toJSONResult(map[string]any{
		"subtasks": editor.Items(),
		"failed":   failed,
	})
}

func (h *handlers) generateSubtasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := requireID(request, "task_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	count := request.GetInt("count", 5)
	titles, err := h.svc.GenerateSubtasks(ctx, taskID, count)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !request.GetBool("save", false) {
		return toJSONResult(map[string]any{"titles": titles})
	}

	editor, err := h.svc.OpenEditor(ctx, taskID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer editor.Close()
	editor.AddGenerated(titles)
	saved, err := editor.Save(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toJSONResult(map[string]any{"titles": titles, "subtasks": saved})
}

func (h *handlers) setSubtaskCompleted(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := requireID(request, "task_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := requireID(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sub, err := h.svc.SetSubtaskCompleted(ctx, taskID, id, request.GetBool("completed", true))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toJSONResult(sub)
}

func (h *handlers) listAppointments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	views, err := h.svc.AppointmentViews(ctx, request.GetString("search", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toJSONResult(views)
}

func (h *handlers) appointmentArgs(request mcp.CallToolRequest) (entity.Appointment, error) {
	var args struct {
		Title       string `json:"title"`
		Start       string `json:"start"`
		End         string `json:"end"`
		AllDay      bool   `json:"all_day"`
		Description string `json:"description"`
	}
	if err := request.BindArguments(&args); err != nil {
		return entity.Appointment{}, fmt.Errorf("invalid arguments: %v", err)
	}
	start, err := parseTime("start", args.Start)
	if err != nil {
		return entity.Appointment{}, err
	}
	end, err := parseTime("end", args.End)
	if err != nil {
		return entity.Appointment{}, err
	}
	if start == nil || end == nil {
		return entity.Appointment{}, fmt.Errorf("start and end are required")
	}
	a := entity.Appointment{
		Title:     args.Title,
		StartTime: entity.Timestamp{Time: *start},
		EndTime:   entity.Timestamp{Time: *end},
		AllDay:    args.AllDay,
	}
	if args.Description != "" {
		a.Description = &args.Description
	}
	return a, nil
}

func (h *handlers) proposeAppointment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := h.appointmentArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := h.svc.ProposeAppointment(ctx, a)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toJSONResult(p)
}

func (h *handlers) createAppointment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := h.appointmentArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := h.svc.ProposeAppointment(ctx, a)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if p.HasConflict() && !request.GetBool("force", false) {
		return mcp.NewToolResultError(fmt.Sprintf("overlaps %s %q; set force to book anyway", p.Conflict.Kind, p.Conflict.Title)), nil
	}
	booked, err := p.Confirm(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toJSONResult(booked)
}

func (h *handlers) agenda(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from := time.Now()
	if raw := request.GetString("from", ""); raw != "" {
		t, err := parseTime("from", raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		from = *t
	}
	days := request.GetInt("days", 7)
	if days < 1 {
		return mcp.NewToolResultError("days must be at least 1"), nil
	}
	res, err := h.svc.Agenda(ctx, from, from.AddDate(0, 0, days))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toJSONResult(res)
}

func (h *handlers) getSettings(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, err := h.svc.Settings(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	start, end := s.WorkHours()
	return toJSONResult(map[string]any{
		"settings":   s,
		"work_start": start.String(),
		"work_end":   end.String(),
	})
}

func (h *handlers) setWorkHours(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawStart, err := request.RequireString("start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rawEnd, err := request.RequireString("end")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	start, err := timeutil.ParseTimeOfDay(rawStart)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := timeutil.ParseTimeOfDay(rawEnd)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s, err := h.svc.SetWorkHours(ctx, start, end)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toJSONResult(s)
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
