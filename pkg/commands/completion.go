package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/agenda/pkg/app"
	"tableflip.dev/agenda/pkg/cache"
	"tableflip.dev/agenda/pkg/config"
	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/store"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generates shell completion scripts",
		Long: `To load completion run

. <(agenda completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(agenda completion)
`,
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := "bash"
			if len(args) > 0 {
				shell = args[0]
			}
			switch shell {
			case "bash":
				return topLevel.GenBashCompletion(os.Stdout)
			case "zsh":
				return topLevel.GenZshCompletion(os.Stdout)
			case "fish":
				return topLevel.GenFishCompletion(os.Stdout, true)
			case "powershell":
				return topLevel.GenPowerShellCompletion(os.Stdout)
			}
			return fmt.Errorf("unsupported shell %q", shell)
		},
	}

	topLevel.AddCommand(cmd)
}

// taskCompletions offers task ids from the local cache, so completing never
// waits on the server.
func taskCompletions(toComplete string) []string {
	cfg, err := config.Load()
	if err != nil {
		return nil
	}
	p, err := store.Load(cfg)
	if err != nil {
		return nil
	}
	data, err := p.Read(cache.KeyTasks)
	if err != nil {
		return nil
	}
	v, err := app.DecodeEntry(cache.KeyTasks, data)
	if err != nil {
		return nil
	}
	tasks, _ := v.([]entity.Task)
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		id := t.ID.String()
		if strings.HasPrefix(id, toComplete) {
			out = append(out, id+"\t"+t.Title)
		}
	}
	return out
}

func completeTaskID(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return taskCompletions(toComplete), cobra.ShellCompDirectiveNoFileComp
}

func fixedCompletions(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}
