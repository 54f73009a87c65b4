package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/agenda/pkg/commands/options"
	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/runner/add"
	"tableflip.dev/agenda/pkg/runner/complete"
)

func addTask(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "add, show, change or complete one task",
	}

	addTaskAdd(cmd)
	addTaskShow(cmd)
	addTaskEdit(cmd)
	addTaskComplete(cmd, "complete", false)
	addTaskComplete(cmd, "reopen", true)
	addTaskDelete(cmd)

	topLevel.AddCommand(cmd)
}

func addTaskAdd(parent *cobra.Command) {
	to := &options.TaskOptions{}

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "add a task",
		Example: `
agenda task add Write the quarterly report --due "tomorrow 17:00" -p high
agenda task add Water plants --due today --repeat weekly
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := openSession(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()

			title := joinArgs(args)
			if title == "" {
				if title, err = s.prompt.Ask("Title", ""); err != nil {
					return output.HandleError(err)
				}
			}
			task, err := to.Task(title, time.Now(), s.svc.Location())
			if err != nil {
				return output.HandleError(err)
			}

			a := add.Add{
				Service: s.svc,
				Task:    task,
				ShowID:  true,
				JSON:    output.JSON,
			}
			return output.HandleError(a.Do(cmd.Context()))
		},
	}

	options.AddTaskArgs(cmd, to)
	options.AddOutputArg(cmd, output)
	_ = cmd.RegisterFlagCompletionFunc("priority", fixedCompletions("low", "medium", "high"))
	_ = cmd.RegisterFlagCompletionFunc("repeat", fixedCompletions("daily", "weekly", "monthly", "yearly"))

	parent.AddCommand(cmd)
}

func addTaskShow(parent *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:               "show <task id>",
		Short:             "show a task and its subtasks",
		ValidArgsFunction: completeTaskID,
		Args: func(_ *cobra.Command, args []string) error {
			return io.ParseID(args, "task")
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			s, err := openSession(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()

			task, err := s.svc.Task(cmd.Context(), io.ID)
			if err != nil {
				return output.HandleError(err)
			}
			var subs []entity.Subtask
			if task.HasSubtasks {
				if subs, err = s.svc.Subtasks(cmd.Context(), io.ID); err != nil {
					return output.HandleError(err)
				}
			}
			pp := s.printer(io.ShowID)
			if output.JSON {
				return pp.JSON(map[string]interface{}{"task": task, "subtasks": subs})
			}
			pp.Task(task, subs)
			return nil
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, output)

	parent.AddCommand(cmd)
}

func addTaskEdit(parent *cobra.Command) {
	to := &options.TaskOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "edit <task id> [new title]",
		Short: "change a task",
		Example: `
agenda task edit 12 --priority low
agenda task edit 12 Send the report --no-due
agenda task edit 12 --repeat monthly --every 2
`,
		ValidArgsFunction: completeTaskID,
		Args: func(_ *cobra.Command, args []string) error {
			return io.ParseID(args, "task")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := openSession(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()

			patch, err := to.Patch(cmd, joinArgs(args[1:]), time.Now(), s.svc.Location())
			if err != nil {
				return output.HandleError(err)
			}
			if patch.Empty() {
				return output.HandleError(errors.New("nothing to change"))
			}
			task, err := s.svc.UpdateTask(cmd.Context(), io.ID, patch)
			if err != nil {
				return output.HandleError(err)
			}
			pp := s.printer(true)
			if output.JSON {
				return pp.JSON(task)
			}
			pp.Tasks([]entity.Task{task})
			return nil
		},
	}

	options.AddTaskArgs(cmd, to)
	options.AddTaskClearArgs(cmd, to)
	options.AddOutputArg(cmd, output)
	_ = cmd.RegisterFlagCompletionFunc("priority", fixedCompletions("low", "medium", "high"))
	_ = cmd.RegisterFlagCompletionFunc("repeat", fixedCompletions("daily", "weekly", "monthly", "yearly"))

	parent.AddCommand(cmd)
}

func addTaskComplete(parent *cobra.Command, use string, reopen bool) {
	io := &options.IDOptions{}

	short := "complete a task, asking before completing its open subtasks"
	aliases := []string{"done"}
	if reopen {
		short = "mark a completed task as open again"
		aliases = []string{"undo"}
	}

	cmd := &cobra.Command{
		Use:               use + " <task id>",
		Aliases:           aliases,
		Short:             short,
		ValidArgsFunction: completeTaskID,
		Args: func(_ *cobra.Command, args []string) error {
			return io.ParseID(args, "task")
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			s, err := openSession(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()

			c := complete.Complete{
				Service: s.svc,
				ID:      io.ID,
				Reopen:  reopen,
				Confirm: s.prompt,
				ShowID:  true,
				JSON:    output.JSON,
			}
			return output.HandleError(c.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, output)

	parent.AddCommand(cmd)
}

func addTaskDelete(parent *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:               "delete <task id>",
		Aliases:           []string{"rm"},
		Short:             "delete a task and its subtasks",
		ValidArgsFunction: completeTaskID,
		Args: func(_ *cobra.Command, args []string) error {
			return io.ParseID(args, "task")
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			s, err := openSession(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()

			task, err := s.svc.Task(cmd.Context(), io.ID)
			if err != nil {
				return output.HandleError(err)
			}
			ok, err := s.prompt.Confirm(fmt.Sprintf("Delete %q", task.Title))
			if err != nil || !ok {
				return output.HandleError(err)
			}
			if err := s.svc.DeleteTask(cmd.Context(), io.ID); err != nil {
				return output.HandleError(err)
			}
			pp := s.printer(false)
			if output.JSON {
				return pp.JSON(map[string]interface{}{"deleted": io.ID})
			}
			pp.Noticef("deleted %q", task.Title)
			return nil
		},
	}

	options.AddOutputArg(cmd, output)

	parent.AddCommand(cmd)
}
