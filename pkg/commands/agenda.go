package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/agenda/pkg/commands/options"
	"tableflip.dev/agenda/pkg/runner/agenda"
)

func addAgenda(topLevel *cobra.Command) {
	oo := &options.OnOptions{}
	days := 7
	month := false

	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "show what is due and booked, day by day",
		Example: `
agenda agenda
agenda agenda --on tomorrow --days 3
agenda agenda --month --on 2026-4-1
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			s, err := openSession(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()

			now := time.Now()
			on, err := oo.GetOn(now, s.svc.Location())
			if err != nil {
				return output.HandleError(err)
			}
			if on == nil {
				on = &now
			}
			a := agenda.Agenda{
				Service: s.svc,
				On:      *on,
				Days:    days,
				Month:   month,
				JSON:    output.JSON,
			}
			return output.HandleError(a.Do(cmd.Context()))
		},
	}

	options.AddOnArgs(cmd, oo)
	options.AddOutputArg(cmd, output)
	cmd.Flags().IntVar(&days, "days", 7, "Number of days to show.")
	cmd.Flags().BoolVar(&month, "month", false, "Show the whole month with a calendar.")

	topLevel.AddCommand(cmd)
}
