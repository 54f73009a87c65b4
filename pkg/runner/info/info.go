// Package info provides the runner logic for showing where the client reads
// its configuration and keeps its local state.
package info

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/agenda/pkg/config"
	"tableflip.dev/agenda/pkg/journal"
	"tableflip.dev/agenda/pkg/store"
)

type Info struct {
	Config      *config.Config
	Persistence store.Persistence
	Journal     *journal.Journal
	Out         io.Writer
}

func (n *Info) Do(ctx context.Context) error {
	out := n.Out
	if out == nil {
		out = color.Output
	}
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	if override := os.Getenv("AGENDA_CONFIG_PATH"); override != "" {
		_, _ = fmt.Fprintln(out, "AGENDA_CONFIG_PATH found on env, using", override)
	} else {
		_, _ = faint.Fprintln(out, "AGENDA_CONFIG_PATH env var not set")
	}

	if n.Config == nil {
		var err error
		if n.Config, err = config.Load(); err != nil {
			return err
		}
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("api"), n.Config.APIURL)
	tbl.AddRow(bold.Sprint("timezone"), n.Config.Timezone)
	tbl.AddRow(bold.Sprint("cache"), n.Config.CachePath)
	tbl.AddRow(bold.Sprint("journal"), n.Config.JournalPath)
	tbl.AddRow(bold.Sprint("refresh"), n.Config.RefreshInterval)
	if n.Config.RefreshCron != "" {
		tbl.AddRow(bold.Sprint("refresh cron"), n.Config.RefreshCron)
	}

	if n.Persistence != nil {
		tbl.AddRow(bold.Sprint("cached keys"), len(n.Persistence.Keys(ctx)))
	} else {
		tbl.AddRow(bold.Sprint("cached keys"), faint.Sprint("no local cache"))
	}

	if n.Journal != nil {
		open, err := n.Journal.List(ctx, false)
		if err != nil {
			return err
		}
		tbl.AddRow(bold.Sprint("open failures"), len(open))
	}

	_, _ = fmt.Fprintln(out, tbl)
	return nil
}
