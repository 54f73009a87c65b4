package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"tableflip.dev/agenda/pkg/commands/options"
)

var (
	output = &options.OutputOptions{}
	root   = &rootOptions{}
)

type rootOptions struct {
	Verbose bool
	Demo    bool
	Yes     bool
}

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "agenda",
		Short: options.Wrap80("Tasks, subtasks and appointments on the command line, kept in step with the agenda server."),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if root.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&root.Verbose, "verbose", "v", false,
		"Log cache, sync and request details to stderr.")
	cmd.PersistentFlags().BoolVar(&root.Demo, "demo", false,
		"Use a seeded in-memory server instead of the configured one.")
	cmd.PersistentFlags().BoolVarP(&root.Yes, "yes", "y", false,
		"Answer yes to every confirmation.")

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addTasks(topLevel)
	addTask(topLevel)
	addSubtasks(topLevel)
	addAppointments(topLevel)
	addAppointment(topLevel)
	addAgenda(topLevel)
	addSettings(topLevel)
	addFailures(topLevel)
	addSync(topLevel)
	addInfo(topLevel)
	addMCP(topLevel)
	addVersion(topLevel)
	addUpgrade(topLevel)
	addCompletions(topLevel)
}
