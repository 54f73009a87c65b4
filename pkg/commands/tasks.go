package commands

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/agenda/pkg/commands/options"
	"tableflip.dev/agenda/pkg/runner/get"
)

func addTasks(topLevel *cobra.Command) {
	fo := &options.FilterOptions{}
	io := &options.IDOptions{}
	summary := false

	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"ls"},
		Short:   "list tasks by view",
		Long: options.Wrap80(`List tasks grouped into active, overdue and completed views. ` +
			`Filters apply to every view. --page shows one page of each view, ` +
			`and each view can be given its own page.`),
		Example: `
agenda tasks
agenda tasks --view overdue
agenda tasks --search report --within 1w --sort asc
agenda tasks --summary
agenda tasks --page active=2,overdue=1
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			s, err := openSession(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()

			f, err := fo.Filter(time.Now(), s.svc.Location())
			if err != nil {
				return output.HandleError(err)
			}
			buckets, err := fo.Buckets()
			if err != nil {
				return output.HandleError(err)
			}
			pages, err := fo.Pager(s.cfg.PageSize, buckets)
			if err != nil {
				return output.HandleError(err)
			}

			g := get.Get{
				Service:  s.svc,
				Filter:   f,
				Buckets:  buckets,
				Pages:   pages,
				Summary: summary,
				ShowID:  io.ShowID,
				JSON:    output.JSON,
			}
			return output.HandleError(g.Do(cmd.Context()))
		},
	}

	options.AddFilterArgs(cmd, fo)
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, output)
	cmd.Flags().BoolVar(&summary, "summary", false, "Only count the tasks in each view.")
	_ = cmd.RegisterFlagCompletionFunc("view", fixedCompletions("active", "overdue", "completed"))
	_ = cmd.RegisterFlagCompletionFunc("priority", fixedCompletions("low", "medium", "high"))
	_ = cmd.RegisterFlagCompletionFunc("sort", fixedCompletions("asc", "desc"))

	topLevel.AddCommand(cmd)
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
