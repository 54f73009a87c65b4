package commands

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/agenda/pkg/app"
	"tableflip.dev/agenda/pkg/cache"
	"tableflip.dev/agenda/pkg/commands/options"
	"tableflip.dev/agenda/pkg/refresh"
)

func addSync(topLevel *cobra.Command) {
	watch := false

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "refetch everything and save it to the local cache",
		Long: options.Wrap80(`Refetch tasks, appointments, meetings, settings and every cached subtask ` +
			`list. With --watch keep running, refreshing stale data on the configured ` +
			`interval and picking up changes written by other agenda processes.`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			s, err := openSession(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()

			pp := s.printer(false)
			results := s.svc.RefreshAll(cmd.Context())
			report := syncReport(s.svc.Cache(), results)
			if output.JSON {
				if err := pp.JSON(report); err != nil {
					return err
				}
			} else {
				for _, r := range report {
					if r.Error != "" {
						pp.Errorf("%s: %s", r.Key, r.Error)
					} else {
						pp.Noticef("%s: ok, version %d", r.Key, r.Version)
					}
				}
			}
			if !watch {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			onPass := refresh.OnPass(func(results []refresh.Result) {
				for _, r := range results {
					if r.Err != nil && !output.JSON {
						pp.Errorf("%s: %v", r.Key, r.Err)
					}
				}
			})
			return output.HandleError(s.background(ctx, onPass))
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep refreshing until interrupted.")
	options.AddOutputArg(cmd, output)

	topLevel.AddCommand(cmd)
}

type syncResult struct {
	Key       string     `json:"key"`
	Version   uint64     `json:"version"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	Stale     bool       `json:"stale"`
	Error     string     `json:"error,omitempty"`
}

// syncReport pairs each refresh result with the state the cache now holds
// for its key.
func syncReport(c *cache.Cache, results []app.RefreshResult) []syncResult {
	out := make([]syncResult, 0, len(results))
	for _, r := range results {
		sr := syncResult{Key: string(r.Key), Version: c.Version(r.Key), Stale: c.IsStale(r.Key)}
		if at, ok := c.UpdatedAt(r.Key); ok {
			sr.UpdatedAt = &at
		}
		if r.Err != nil {
			sr.Error = r.Err.Error()
		}
		out = append(out, sr)
	}
	return out
}
