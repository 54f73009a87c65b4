package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/viewmodel"
)

func registerResources(srv *server.MCPServer, h *handlers) {
	registerTasksResource(srv, h)
	registerTaskTemplate(srv, h)
	registerAppointmentsResource(srv, h)
	registerSettingsResource(srv, h)
}

func registerTasksResource(srv *server.MCPServer, h *handlers) {
	resource := mcp.NewResource(
		"agenda://tasks",
		"Tasks",
		mcp.WithResourceDescription("Every task grouped into active, overdue and completed views, with counts."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		views, err := h.svc.TaskViews(ctx, viewmodel.TaskFilter{})
		if err != nil {
			return nil, err
		}
		summary, err := h.svc.Summary(ctx)
		if err != nil {
			return nil, err
		}

		payload := map[string]any{
			"views":   views,
			"summary": summary,
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerTaskTemplate(srv *server.MCPServer, h *handlers) {
	template := mcp.NewResourceTemplate(
		"agenda://tasks/{id}",
		"Task Details",
		mcp.WithTemplateDescription("A single task with its subtasks in position order."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		raw := templateArg(request.Params.Arguments["id"])
		if raw == "" {
			return nil, fmt.Errorf("task id is required")
		}
		id, err := entity.ParseID(raw)
		if err != nil {
			return nil, err
		}

		task, err := h.svc.Task(ctx, id)
		if err != nil {
			return nil, err
		}
		subs := []entity.Subtask{}
		if task.HasSubtasks {
			if subs, err = h.svc.Subtasks(ctx, id); err != nil {
				return nil, err
			}
		}

		payload := map[string]any{
			"task":     task,
			"subtasks": subs,
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerAppointmentsResource(srv *server.MCPServer, h *handlers) {
	resource := mcp.NewResource(
		"agenda://appointments",
		"Appointments",
		mcp.WithResourceDescription("Appointments grouped into in progress, upcoming, past and completed."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		views, err := h.svc.AppointmentViews(ctx, "")
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, views)
	})
}

func registerSettingsResource(srv *server.MCPServer, h *handlers) {
	resource := mcp.NewResource(
		"agenda://settings",
		"Settings",
		mcp.WithResourceDescription("The user's timezone, work hours and display preferences."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		s, err := h.svc.Settings(ctx)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, s)
	})
}

// templateArg reads a URI template variable, which arrives as a string or a
// single-element list depending on the matcher.
func templateArg(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		if len(t) > 0 {
			return t[0]
		}
	case float64:
		return strconv.FormatInt(int64(t), 10)
	}
	return ""
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
