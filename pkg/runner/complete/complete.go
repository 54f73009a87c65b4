// Package complete provides the runner logic for completing tasks, including
// the subtask cascade.
package complete

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tableflip.dev/agenda/pkg/app"
	"tableflip.dev/agenda/pkg/cascade"
	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/printers"
)

// Confirmer answers yes/no questions.
type Confirmer interface {
	Confirm(label string) (bool, error)
}

// Complete marks a task completed, or open again when Reopen is set.
type Complete struct {
	Service *app.Service
	ID      entity.ID
	Reopen  bool
	Confirm Confirmer
	ShowID  bool
	JSON    bool
	Out     io.Writer
}

// Do toggles the task. Completing a task with open subtasks asks before
// completing them all, and offers one retry of any that fail.
func (n *Complete) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not complete, no service")
	}
	pp := printers.PrettyPrint{Out: n.Out, ShowID: n.ShowID, Location: n.Service.Location()}

	decision, err := n.Service.RequestCompletion(ctx, n.ID, !n.Reopen)
	if err != nil {
		return err
	}

	if decision == cascade.Direct {
		task, err := n.Service.SetTaskCompleted(ctx, n.ID, !n.Reopen)
		if err != nil {
			return err
		}
		if n.JSON {
			return pp.JSON(task)
		}
		pp.Tasks([]entity.Task{task})
		return nil
	}

	task, err := n.Service.Task(ctx, n.ID)
	if err != nil {
		return err
	}
	if n.Confirm == nil {
		return errors.New("can not complete, task has open subtasks and nothing to confirm with")
	}
	open := task.TotalSubtasks - task.CompletedSubtasks
	ok, err := n.Confirm.Confirm(fmt.Sprintf("%q has %d open subtasks. Complete them too", task.Title, open))
	if err != nil {
		return err
	}
	if !ok {
		if !n.JSON {
			pp.Noticef("%q left open", task.Title)
		}
		return nil
	}

	res, err := n.Service.ConfirmCascade(ctx, n.ID)
	if err != nil {
		return err
	}
	if failed := res.Failed(); len(failed) > 0 && !n.JSON {
		pp.Cascade(res)
		retry, err := n.Confirm.Confirm(fmt.Sprintf("Retry %d failed subtasks", len(failed)))
		if err != nil {
			return err
		}
		if !retry {
			return nil
		}
		res = n.retry(ctx, res)
	}
	if n.JSON {
		return pp.JSON(res)
	}
	pp.Cascade(res)
	return nil
}

func (n *Complete) retry(ctx context.Context, res cascade.Result) cascade.Result {
	for i, r := range res.Subtasks {
		if r.OK() {
			continue
		}
		res.Subtasks[i] = n.Service.RetryCascade(ctx, n.ID, r)
	}
	return res
}
