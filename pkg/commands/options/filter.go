package options

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/timeutil"
	"tableflip.dev/agenda/pkg/viewmodel"
)

// FilterOptions
type FilterOptions struct {
	Search   string
	Priority string
	Within   string
	Sort     string
	View     string
	Pages    []string
}

func AddFilterArgs(cmd *cobra.Command, o *FilterOptions) {
	cmd.Flags().StringVarP(&o.Search, "search", "s", "",
		"Only tasks whose title or description contains this text.")
	cmd.Flags().StringVarP(&o.Priority, "priority", "p", "",
		"Only tasks with this priority.")
	cmd.Flags().StringVarP(&o.Within, "within", "w", "",
		`Only tasks due within a window from today, example: --within=3d or --within=1w2d.`)
	cmd.Flags().StringVar(&o.Sort, "sort", "",
		"Sort by due date: asc or desc.")
	cmd.Flags().StringVar(&o.View, "view", "",
		"Show one view: active, overdue or completed.")
	cmd.Flags().StringSliceVar(&o.Pages, "page", nil,
		`Page to show, starting at 1. A bare number applies to every view, example: --page=2 or --page=active=2,overdue=3.`)
}

// Filter builds the task filter from the flags.
func (o *FilterOptions) Filter(now time.Time, loc *time.Location) (viewmodel.TaskFilter, error) {
	var f viewmodel.TaskFilter
	f.Search = o.Search
	if o.Priority != "" {
		p, err := entity.ParsePriority(o.Priority)
		if err != nil {
			return f, err
		}
		f.Priority = p
	}
	if o.Within != "" {
		from, to, err := timeutil.DueRange(now, o.Within, loc)
		if err != nil {
			return f, err
		}
		f.DueFrom, f.DueTo = &from, &to
	}
	sort, err := viewmodel.ParseSortOrder(o.Sort)
	if err != nil {
		return f, err
	}
	f.Sort = sort
	return f, nil
}

// Buckets returns the views to show.
func (o *FilterOptions) Buckets() ([]viewmodel.TaskBucket, error) {
	if o.View == "" {
		return viewmodel.TaskBuckets, nil
	}
	b, err := parseBucket(o.View)
	if err != nil {
		return nil, err
	}
	return []viewmodel.TaskBucket{b}, nil
}

func parseBucket(s string) (viewmodel.TaskBucket, error) {
	for _, b := range viewmodel.TaskBuckets {
		if string(b) == s {
			return b, nil
		}
	}
	return "", &entity.ValidationError{Field: "view", Reason: "must be active, overdue or completed"}
}

// Pager reads --page into the page of each view. It returns nil when no page
// was asked for.
func (o *FilterOptions) Pager(size int, buckets []viewmodel.TaskBucket) (*viewmodel.Pager, error) {
	if len(o.Pages) == 0 {
		return nil, nil
	}
	p := viewmodel.NewPager(size)
	for _, v := range o.Pages {
		view, num, named := strings.Cut(strings.TrimSpace(v), "=")
		if !named {
			num = view
		}
		n, err := strconv.Atoi(strings.TrimSpace(num))
		if err != nil || n < 1 {
			return nil, &entity.ValidationError{Field: "page", Reason: fmt.Sprintf("%q is not a page number", num)}
		}
		if !named {
			for _, b := range buckets {
				p.Set(string(b), n)
			}
			continue
		}
		b, err := parseBucket(strings.TrimSpace(view))
		if err != nil {
			return nil, err
		}
		p.Set(string(b), n)
	}
	return p, nil
}
