package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tableflip.dev/agenda/pkg/app"
	"tableflip.dev/agenda/pkg/commands/options"
	"tableflip.dev/agenda/pkg/entity"
)

func addSubtasks(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "subtasks <task id>",
		Aliases: []string{"sub"},
		Short:   "list and edit the subtasks of a task",
		Example: `
agenda subtasks 12
agenda subtasks add 12 Draft the outline
agenda subtasks move 12 3 1
agenda subtasks generate 12 --count 4 --save
`,
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

			subs, err := s.svc.Subtasks(cmd.Context(), io.ID)
			if err != nil {
				return output.HandleError(err)
			}
			pp := s.printer(io.ShowID)
			if output.JSON {
				return pp.JSON(subs)
			}
			pp.Subtasks(subs)
			return nil
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, output)

	addSubtaskAdd(cmd)
	addSubtaskToggle(cmd)
	addSubtaskRename(cmd)
	addSubtaskMove(cmd)
	addSubtaskRemove(cmd)
	addSubtaskGenerate(cmd)

	topLevel.AddCommand(cmd)
}

// withEditor opens an editing session on the task named by args[0], runs fn
// and prints the list it leaves behind.
func withEditor(cmd *cobra.Command, args []string, fn func(s *session, e *app.SubtaskEditor) error) error {
	cmd.SilenceUsage = true
	taskID, err := entity.ParseID(args[0])
	if err != nil {
		return output.HandleError(err)
	}
	s, err := openSession(cmd.Context())
	if err != nil {
		return output.HandleError(err)
	}
	defer s.Close()

	e, err := s.svc.OpenEditor(cmd.Context(), taskID)
	if err != nil {
		return output.HandleError(err)
	}
	if err := fn(s, e); err != nil {
		e.Close()
		return output.HandleError(err)
	}
	e.Close()
	e.Wait()

	pp := s.printer(true)
	reports := e.Reports()
	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
			if !output.JSON {
				pp.Errorf("%s update for subtask %s failed: %v", r.Kind, r.SubtaskID, r.Err)
			}
		}
	}
	if output.JSON {
		return pp.JSON(map[string]interface{}{"subtasks": e.Items(), "failed": failed})
	}
	pp.Subtasks(e.Items())
	return nil
}

func subtaskID(s string) (entity.ID, error) {
	id, err := entity.ParseID(s)
	if err != nil {
		return 0, fmt.Errorf("subtask id: %w", err)
	}
	return id, nil
}

func addSubtaskAdd(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "add <task id> <title>",
		Short: "add a subtask",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEditor(cmd, args, func(_ *session, e *app.SubtaskEditor) error {
				title := joinArgs(args[1:])
				if title == "" {
					return &entity.ValidationError{Field: "title", Reason: "must not be empty"}
				}
				e.Add(title)
				_, err := e.Save(cmd.Context())
				return err
			})
		},
	}
	options.AddOutputArg(cmd, output)
	parent.AddCommand(cmd)
}

func addSubtaskToggle(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "toggle <task id> <subtask id>",
		Aliases: []string{"check"},
		Short:   "flip a subtask between open and done",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEditor(cmd, args, func(_ *session, e *app.SubtaskEditor) error {
				id, err := subtaskID(args[1])
				if err != nil {
					return err
				}
				_, err = e.Toggle(cmd.Context(), id)
				return err
			})
		},
	}
	options.AddOutputArg(cmd, output)
	parent.AddCommand(cmd)
}

func addSubtaskRename(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "rename <task id> <subtask id> <title>",
		Short: "change the title of a subtask",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEditor(cmd, args, func(_ *session, e *app.SubtaskEditor) error {
				id, err := subtaskID(args[1])
				if err != nil {
					return err
				}
				title := joinArgs(args[2:])
				if title == "" {
					return &entity.ValidationError{Field: "title", Reason: "must not be empty"}
				}
				return e.Rename(cmd.Context(), id, title)
			})
		},
	}
	options.AddOutputArg(cmd, output)
	parent.AddCommand(cmd)
}

func addSubtaskMove(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "move <task id> <from> <to>",
		Short: "move a subtask to another place in the list, counting from 1",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEditor(cmd, args, func(_ *session, e *app.SubtaskEditor) error {
				n := len(e.Items())
				from, err := position(args[1], n)
				if err != nil {
					return err
				}
				to, err := position(args[2], n)
				if err != nil {
					return err
				}
				e.Move(cmd.Context(), from, to)
				return nil
			})
		},
	}
	options.AddOutputArg(cmd, output)
	parent.AddCommand(cmd)
}

func position(s string, n int) (int, error) {
	p, err := strconv.Atoi(s)
	if err != nil || p < 1 || p > n {
		return 0, fmt.Errorf("position %q is not between 1 and %d", s, n)
	}
	return p - 1, nil
}

func addSubtaskRemove(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "remove <task id> <subtask id>",
		Aliases: []string{"rm"},
		Short:   "remove a subtask",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEditor(cmd, args, func(_ *session, e *app.SubtaskEditor) error {
				id, err := subtaskID(args[1])
				if err != nil {
					return err
				}
				if !e.Remove(id) {
					return fmt.Errorf("subtask %s not found", id)
				}
				_, err = e.Save(cmd.Context())
				return err
			})
		},
	}
	options.AddOutputArg(cmd, output)
	parent.AddCommand(cmd)
}

func addSubtaskGenerate(parent *cobra.Command) {
	count := 5
	save := false

	cmd := &cobra.Command{
		Use:   "generate <task id>",
		Short: "suggest subtasks for a task",
		Long: options.Wrap80(`Ask the assistant for subtask titles based on the task title and description. ` +
			`Suggestions are only printed unless --save is given.`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if save {
				return withEditor(cmd, args, func(s *session, e *app.SubtaskEditor) error {
					titles, err := s.svc.GenerateSubtasks(cmd.Context(), e.TaskID(), count)
					if err != nil {
						return err
					}
					e.AddGenerated(titles)
					_, err = e.Save(cmd.Context())
					return err
				})
			}

			cmd.SilenceUsage = true
			taskID, err := entity.ParseID(args[0])
			if err != nil {
				return output.HandleError(err)
			}
			s, err := openSession(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()

			titles, err := s.svc.GenerateSubtasks(cmd.Context(), taskID, count)
			if err != nil {
				return output.HandleError(err)
			}
			pp := s.printer(false)
			if output.JSON {
				return pp.JSON(titles)
			}
			pp.Title("Suggested")
			for _, t := range titles {
				pp.Noticef("  %s", t)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 5, "How many subtasks to suggest.")
	cmd.Flags().BoolVar(&save, "save", false, "Append the suggestions to the list and save it.")
	options.AddOutputArg(cmd, output)
	parent.AddCommand(cmd)
}
