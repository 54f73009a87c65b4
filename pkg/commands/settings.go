package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/agenda/pkg/commands/options"
	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/snake"
	"tableflip.dev/agenda/pkg/timeutil"
)

func addSettings(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "show your settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			s, err := openSession(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()

			st, err := s.svc.Settings(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			return printSettings(s, st)
		},
	}

	options.AddOutputArg(cmd, output)
	addSettingsSet(cmd)
	addSettingsWorkHours(cmd)

	topLevel.AddCommand(cmd)
}

func printSettings(s *session, st entity.UserSettings) error {
	pp := s.printer(false)
	if output.JSON {
		start, end := st.WorkHours()
		return pp.JSON(map[string]interface{}{
			"settings":   st,
			"work_start": start.String(),
			"work_end":   end.String(),
		})
	}
	pp.Settings(st)
	return nil
}

func addSettingsSet(parent *cobra.Command) {
	var timezone, theme, view, email, push string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "change settings",
		Example: `
agenda settings set --timezone Europe/Berlin
agenda settings set --email off --push on
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			var patch entity.SettingsPatch
			changed := cmd.Flags().Changed
			if changed("timezone") {
				patch.Timezone = &timezone
			}
			if changed("theme") {
				patch.Theme = &theme
			}
			if changed("view") {
				patch.DefaultCalendarView = &view
			}
			if changed("email") {
				b, err := snake.ParseBool(email)
				if err != nil {
					return output.HandleError(err)
				}
				patch.EmailNotifications = &b
			}
			if changed("push") {
				b, err := snake.ParseBool(push)
				if err != nil {
					return output.HandleError(err)
				}
				patch.PushNotifications = &b
			}
			if patch == (entity.SettingsPatch{}) {
				return output.HandleError(errors.New("nothing to change"))
			}

			s, err := openSession(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()

			st, err := s.svc.UpdateSettings(cmd.Context(), patch)
			if err != nil {
				return output.HandleError(err)
			}
			return printSettings(s, st)
		},
	}

	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone, example: America/New_York.")
	cmd.Flags().StringVar(&theme, "theme", "", "Theme: light, dark or system.")
	cmd.Flags().StringVar(&view, "view", "", "Default calendar view: day, week or month.")
	cmd.Flags().StringVar(&email, "email", "", "Email notifications, on or off.")
	cmd.Flags().StringVar(&push, "push", "", "Push notifications, on or off.")
	options.AddOutputArg(cmd, output)
	_ = cmd.RegisterFlagCompletionFunc("theme", fixedCompletions("light", "dark", "system"))
	_ = cmd.RegisterFlagCompletionFunc("view", fixedCompletions("day", "week", "month"))
	_ = cmd.RegisterFlagCompletionFunc("email", fixedCompletions("on", "off"))
	_ = cmd.RegisterFlagCompletionFunc("push", fixedCompletions("on", "off"))

	parent.AddCommand(cmd)
}

func addSettingsWorkHours(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "work-hours <start> <end>",
		Short: "set the working day, example: 9:00 17:30",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			start, err := timeutil.ParseTimeOfDay(args[0])
			if err != nil {
				return output.HandleError(err)
			}
			end, err := timeutil.ParseTimeOfDay(args[1])
			if err != nil {
				return output.HandleError(err)
			}

			s, err := openSession(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()

			st, err := s.svc.SetWorkHours(cmd.Context(), start, end)
			if err != nil {
				return output.HandleError(err)
			}
			return printSettings(s, st)
		},
	}

	options.AddOutputArg(cmd, output)

	parent.AddCommand(cmd)
}
