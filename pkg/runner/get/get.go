// Package get provides the runner logic for listing tasks.
package get

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/agenda/pkg/app"
	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/printers"
	"tableflip.dev/agenda/pkg/viewmodel"
)

// Get lists tasks by view.
type Get struct {
	Service *app.Service
	Filter  viewmodel.TaskFilter
	Buckets []viewmodel.TaskBucket
	Pages   *viewmodel.Pager // paginates every view when set
	Summary bool
	ShowID  bool
	JSON    bool
	Out     io.Writer
}

func (n *Get) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not get, no service")
	}
	pp := printers.PrettyPrint{Out: n.Out, ShowID: n.ShowID, Location: n.Service.Location()}

	if n.Summary {
		s, err := n.Service.Summary(ctx)
		if err != nil {
			return err
		}
		if n.JSON {
			return pp.JSON(s)
		}
		pp.Summary(s)
		return nil
	}

	views, err := n.Service.TaskViews(ctx, n.Filter)
	if err != nil {
		return err
	}
	buckets := n.Buckets
	if len(buckets) == 0 {
		buckets = viewmodel.TaskBuckets
	}

	if n.Pages != nil {
		pages := make(map[viewmodel.TaskBucket]viewmodel.Page[entity.Task], len(buckets))
		for _, b := range buckets {
			pages[b] = viewmodel.PageOf(n.Pages, string(b), views.Bucket(b))
		}
		if n.JSON {
			return pp.JSON(pages)
		}
		for _, b := range buckets {
			pp.TaskPage(b, pages[b])
		}
		return nil
	}

	if n.JSON {
		out := make(map[viewmodel.TaskBucket][]entity.Task, len(buckets))
		for _, b := range buckets {
			out[b] = views.Bucket(b)
		}
		return pp.JSON(out)
	}
	pp.TaskViews(views, buckets...)
	return nil
}
