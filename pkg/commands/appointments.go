package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/agenda/pkg/commands/options"
	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/runner/add"
)

func addAppointments(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	search := ""

	cmd := &cobra.Command{
		Use:     "appointments",
		Aliases: []string{"appts"},
		Short:   "list appointments by view",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			s, err := openSession(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()

			v, err := s.svc.AppointmentViews(cmd.Context(), search)
			if err != nil {
				return output.HandleError(err)
			}
			pp := s.printer(io.ShowID)
			if output.JSON {
				return pp.JSON(v)
			}
			pp.AppointmentViews(v)
			return nil
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, output)
	cmd.Flags().StringVarP(&search, "search", "s", "", "Only show appointments whose title or description contains this.")

	topLevel.AddCommand(cmd)
}

// appointmentOptions holds the flags shared by add and edit.
type appointmentOptions struct {
	Start       string
	End         string
	AllDay      bool
	Description string
	Repeat      string
	Every       int
	Until       string
	NoRepeat    bool
}

func addAppointmentArgs(cmd *cobra.Command, o *appointmentOptions) {
	cmd.Flags().StringVar(&o.Start, "start", "",
		`Start, example: --start="2020-2-28 10:00" or --start="tomorrow 9:30".`)
	cmd.Flags().StringVar(&o.End, "end", "",
		"End. Defaults to an hour after the start, or the start date when all day.")
	cmd.Flags().BoolVar(&o.AllDay, "all-day", false,
		"The appointment takes whole days.")
	cmd.Flags().StringVar(&o.Description, "description", "",
		"Longer description of the appointment. Empty removes it.")
	cmd.Flags().StringVar(&o.Repeat, "repeat", "",
		"Repeat pattern: daily, weekly, monthly or yearly.")
	cmd.Flags().IntVar(&o.Every, "every", 1,
		"Repeat every N periods.")
	cmd.Flags().StringVar(&o.Until, "until", "",
		"Last date the appointment repeats on.")
	_ = cmd.RegisterFlagCompletionFunc("repeat", fixedCompletions("daily", "weekly", "monthly", "yearly"))
}

func (o *appointmentOptions) window(now time.Time, loc *time.Location) (*time.Time, *time.Time, error) {
	start, err := options.ParseDate(o.Start, now, loc)
	if err != nil {
		return nil, nil, err
	}
	end, err := options.ParseDate(o.End, now, loc)
	if err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

func (o *appointmentOptions) appointment(title string, now time.Time, loc *time.Location) (entity.Appointment, error) {
	a := entity.Appointment{Title: title, AllDay: o.AllDay}
	start, end, err := o.window(now, loc)
	if err != nil {
		return a, err
	}
	if start == nil {
		return a, &entity.ValidationError{Field: "start_time", Reason: "--start is required"}
	}
	if end == nil {
		e := start.Add(time.Hour)
		if o.AllDay {
			e = *start
		}
		end = &e
	}
	a.StartTime = *entity.At(*start)
	a.EndTime = *entity.At(*end)
	if o.Description != "" {
		d := o.Description
		a.Description = &d
	}
	if o.Repeat != "" {
		pattern, until, err := options.Recurrence(o.Repeat, o.Until, now, loc)
		if err != nil {
			return a, err
		}
		every := o.Every
		a.IsRecurring = true
		a.RecurrencePattern = pattern
		a.RecurrenceInterval = &every
		a.RecurrenceEndDate = until
	}
	return a, nil
}

func (o *appointmentOptions) patch(cmd *cobra.Command, title string, now time.Time, loc *time.Location) (entity.AppointmentPatch, error) {
	var patch entity.AppointmentPatch
	changed := cmd.Flags().Changed
	if title != "" {
		patch.Title = &title
	}
	if changed("description") {
		d := o.Description
		patch.Description = &d
	}
	if changed("all-day") {
		all := o.AllDay
		patch.AllDay = &all
	}
	start, end, err := o.window(now, loc)
	if err != nil {
		return patch, err
	}
	if start != nil {
		patch.StartTime = entity.At(*start)
	}
	if end != nil {
		patch.EndTime = entity.At(*end)
	}
	switch {
	case o.NoRepeat:
		off := false
		patch.IsRecurring = &off
	case changed("repeat"):
		pattern, until, err := options.Recurrence(o.Repeat, o.Until, now, loc)
		if err != nil {
			return patch, err
		}
		on := true
		every := o.Every
		patch.IsRecurring = &on
		patch.RecurrencePattern = pattern
		patch.RecurrenceInterval = &every
		patch.RecurrenceEndDate = until
	case changed("every"):
		every := o.Every
		patch.RecurrenceInterval = &every
	}
	return patch, nil
}

func addAppointment(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "appointment",
		Aliases: []string{"appt"},
		Short:   "book, change or complete one appointment",
	}

	addAppointmentAdd(cmd)
	addAppointmentEdit(cmd)
	addAppointmentComplete(cmd, "complete", true)
	addAppointmentComplete(cmd, "reopen", false)
	addAppointmentDelete(cmd)

	topLevel.AddCommand(cmd)
}

func addAppointmentAdd(parent *cobra.Command) {
	ao := &appointmentOptions{}

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "book an appointment, warning when it overlaps the calendar",
		Example: `
agenda appointment add Dentist --start "3/12 14:00" --end "3/12 15:00"
agenda appointment add Offsite --start 2026-4-2 --all-day
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := openSession(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()

			a, err := ao.appointment(joinArgs(args), time.Now(), s.svc.Location())
			if err != nil {
				return output.HandleError(err)
			}
			b := add.Book{
				Service:     s.svc,
				Appointment: a,
				Confirm:     s.prompt,
				ShowID:      true,
				JSON:        output.JSON,
			}
			return output.HandleError(b.Do(cmd.Context()))
		},
	}

	addAppointmentArgs(cmd, ao)
	options.AddOutputArg(cmd, output)

	parent.AddCommand(cmd)
}

func addAppointmentEdit(parent *cobra.Command) {
	ao := &appointmentOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "edit <appointment id> [new title]",
		Short: "change an appointment, warning when the new time overlaps",
		Args: func(_ *cobra.Command, args []string) error {
			return io.ParseID(args, "appointment")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := openSession(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()

			patch, err := ao.patch(cmd, joinArgs(args[1:]), time.Now(), s.svc.Location())
			if err != nil {
				return output.HandleError(err)
			}
			if patch.Empty() {
				return output.HandleError(errors.New("nothing to change"))
			}
			id := io.ID
			b := add.Book{
				Service: s.svc,
				ID:      &id,
				Patch:   patch,
				Confirm: s.prompt,
				ShowID:  true,
				JSON:    output.JSON,
			}
			return output.HandleError(b.Do(cmd.Context()))
		},
	}

	addAppointmentArgs(cmd, ao)
	cmd.Flags().BoolVar(&ao.NoRepeat, "no-repeat", false,
		"Stop the appointment repeating.")
	options.AddOutputArg(cmd, output)

	parent.AddCommand(cmd)
}

func addAppointmentComplete(parent *cobra.Command, use string, completed bool) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   use + " <appointment id>",
		Short: use + " an appointment",
		Args: func(_ *cobra.Command, args []string) error {
			return io.ParseID(args, "appointment")
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			s, err := openSession(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()

			a, err := s.svc.SetAppointmentCompleted(cmd.Context(), io.ID, completed)
			if err != nil {
				return output.HandleError(err)
			}
			pp := s.printer(true)
			if output.JSON {
				return pp.JSON(a)
			}
			pp.Appointments([]entity.Appointment{a})
			return nil
		},
	}

	options.AddOutputArg(cmd, output)

	parent.AddCommand(cmd)
}

func addAppointmentDelete(parent *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "delete <appointment id>",
		Aliases: []string{"rm"},
		Short:   "delete an appointment",
		Args: func(_ *cobra.Command, args []string) error {
			return io.ParseID(args, "appointment")
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			s, err := openSession(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()

			ok, err := s.prompt.Confirm(fmt.Sprintf("Delete appointment %s", io.ID))
			if err != nil || !ok {
				return output.HandleError(err)
			}
			if err := s.svc.DeleteAppointment(cmd.Context(), io.ID); err != nil {
				return output.HandleError(err)
			}
			pp := s.printer(false)
			if output.JSON {
				return pp.JSON(map[string]interface{}{"deleted": io.ID})
			}
			pp.Noticef("deleted appointment %s", io.ID)
			return nil
		},
	}

	options.AddOutputArg(cmd, output)

	parent.AddCommand(cmd)
}
