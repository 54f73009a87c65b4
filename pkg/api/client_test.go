package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/agenda/pkg/entity"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL+"/", WithToken("secret"))
	require.NoError(t, err)
	return c
}

func TestUpdateTaskSendsPatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/tasks/7", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"completed":true}`, string(body))

		_, _ = io.WriteString(w, `{"id":7,"title":"Pay rent","priority":"high","completed":true,"due_date":null}`)
	})

	done := true
	task, err := c.UpdateTask(context.Background(), 7, entity.TaskPatch{Completed: &done})
	require.NoError(t, err)
	assert.True(t, task.Completed)
	assert.Nil(t, task.DueDate)
}

func TestNotFoundIsTyped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"not found"}`)
	})

	_, err := c.UpdateSubtask(context.Background(), 1, 9, entity.SubtaskPatch{})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsRetryable(err))

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "subtask", nf.Resource)
	assert.Equal(t, entity.ID(9), nf.ID)
}

func TestUsageLimitIsTyped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ai/subtasks", r.URL.Path)
		var req GenerateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 3, req.Count)

		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"code":"usage_limit_reached","message":"Upgrade to keep generating"}`)
	})

	_, err := c.GenerateSubtasks(context.Background(), GenerateRequest{Title: "Move house", Count: 3})
	require.Error(t, err)
	assert.True(t, IsUsageLimit(err))
	assert.False(t, IsRetryable(err))
	assert.Contains(t, err.Error(), "Upgrade to keep generating")
}

func TestServerErrorIsRetryable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.ListTasks(context.Background())
	require.Error(t, err)
	assert.True(t, IsRetryable(err))

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusBadGateway, te.Status)
}

func TestGenerateAndReplaceSubtasks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ai/subtasks":
			_, _ = io.WriteString(w, `{"subtasks":["Pack","Label boxes"]}`)
		case "/tasks/3/subtasks":
			var body struct {
				Subtasks []entity.SubtaskDraft `json:"subtasks"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if assert.Len(t, body.Subtasks, 2) {
				assert.Nil(t, body.Subtasks[1].ID)
			}
			_, _ = io.WriteString(w, `[{"id":1,"task_id":3,"title":"Pack","position":0,"updated_at":1700000000},
				{"id":2,"task_id":3,"title":"Label boxes","position":1,"updated_at":1700000000}]`)
		default:
			http.NotFound(w, r)
		}
	})

	titles, err := c.GenerateSubtasks(context.Background(), GenerateRequest{Title: "Move", Count: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pack", "Label boxes"}, titles)

	existing := entity.ID(1)
	subs, err := c.ReplaceSubtasks(context.Background(), 3, []entity.SubtaskDraft{
		{ID: &existing, Title: "Pack"},
		{Title: "Label boxes", Position: 1},
	})
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, int64(1700000000), subs[1].UpdatedAt.Unix())
}

func TestClientErrorsAreNotRetryable(t *testing.T) {
	cases := []struct {
		status    int
		retryable bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusForbidden, false},
		{http.StatusConflict, false},
		{http.StatusUnprocessableEntity, false},
		{http.StatusRequestTimeout, true},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, `{"error":"nope"}`)
			})

			_, err := c.UpdateTask(context.Background(), 7, entity.TaskPatch{})
			require.Error(t, err)
			assert.Equal(t, tc.retryable, IsRetryable(err))

			var te *TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tc.status, te.Status)
		})
	}
}

func TestNetworkFailureIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	c, err := NewClient(srv.URL + "/")
	require.NoError(t, err)
	srv.Close()

	_, err = c.ListTasks(context.Background())
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
}
