package commands

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/agenda/pkg/commands/options"
	"tableflip.dev/agenda/pkg/timeutil"
)

var errNoJournal = errors.New("the failure journal is not open")

func addFailures(topLevel *cobra.Command) {
	all := false

	cmd := &cobra.Command{
		Use:   "failures",
		Short: "list changes that were rolled back",
		Long: options.Wrap80(`Every change the server rejected is rolled back locally and recorded in ` +
			`the failure journal. Resolving an entry refetches what it touched.`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			s, err := openSession(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()
			if s.journal == nil {
				return output.HandleError(errNoJournal)
			}

			entries, err := s.journal.List(cmd.Context(), all)
			if err != nil {
				return output.HandleError(err)
			}
			pp := s.printer(true)
			if output.JSON {
				return pp.JSON(entries)
			}
			pp.Failures(entries)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include resolved failures.")
	options.AddOutputArg(cmd, output)

	addFailuresResolve(cmd)
	addFailuresPrune(cmd)

	topLevel.AddCommand(cmd)
}

func addFailuresResolve(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "resolve <failure id>",
		Short: "mark a failure handled and refetch the data it touched",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return output.HandleError(fmt.Errorf("failure id %q: %w", args[0], err))
			}
			s, err := openSession(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()
			if s.journal == nil {
				return output.HandleError(errNoJournal)
			}

			entry, err := s.journal.Resolve(cmd.Context(), uint(id))
			if err != nil {
				return output.HandleError(err)
			}
			pp := s.printer(false)
			for _, key := range entry.CacheKeys() {
				if !s.svc.Loader().Known(key) {
					continue
				}
				if _, err := s.svc.Loader().Refresh(cmd.Context(), key); err != nil && !output.JSON {
					pp.Errorf("refreshing %s: %v", key, err)
				}
			}
			if output.JSON {
				return pp.JSON(entry)
			}
			pp.Noticef("resolved %d (%s)", entry.ID, entry.Name)
			return nil
		},
	}

	options.AddOutputArg(cmd, output)

	parent.AddCommand(cmd)
}

func addFailuresPrune(parent *cobra.Command) {
	olderThan := "4w"

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "delete resolved failures",
		Example: `
agenda failures prune --older-than 2w
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			d, label, err := timeutil.ParseWindow(olderThan)
			if err != nil {
				return output.HandleError(err)
			}
			s, err := openSession(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()
			if s.journal == nil {
				return output.HandleError(errNoJournal)
			}

			n, err := s.journal.Prune(cmd.Context(), time.Now().Add(-d))
			if err != nil {
				return output.HandleError(err)
			}
			pp := s.printer(false)
			if output.JSON {
				return pp.JSON(map[string]interface{}{"pruned": n, "older_than": label})
			}
			pp.Noticef("pruned %d resolved failures older than %s", n, label)
			return nil
		},
	}

	cmd.Flags().StringVar(&olderThan, "older-than", "4w", "Only prune failures resolved before this long ago, example: 3d, 2w.")
	options.AddOutputArg(cmd, output)

	parent.AddCommand(cmd)
}
