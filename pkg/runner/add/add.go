// Package add provides the runner logic for creating tasks and booking
// appointments.
package add

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/agenda/pkg/app"
	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/printers"
)

// Confirmer answers yes/no questions.
type Confirmer interface {
	Confirm(label string) (bool, error)
}

// Add creates a task.
type Add struct {
	Service *app.Service
	Task    entity.Task
	ShowID  bool
	JSON    bool
	Out     io.Writer
}

func (n *Add) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not add, no service")
	}
	pp := printers.PrettyPrint{Out: n.Out, ShowID: n.ShowID, Location: n.Service.Location()}

	task, err := n.Service.CreateTask(ctx, n.Task)
	if err != nil {
		return err
	}
	if n.JSON {
		return pp.JSON(task)
	}
	pp.Title("Added")
	pp.Tasks([]entity.Task{task})
	return nil
}

// Book creates an appointment, or updates one when ID is set. An overlap
// with the existing calendar is shown and needs confirming.
type Book struct {
	Service     *app.Service
	Appointment entity.Appointment
	ID          *entity.ID
	Patch       entity.AppointmentPatch
	Confirm     Confirmer
	ShowID      bool
	JSON        bool
	Out         io.Writer
}

func (n *Book) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not book, no service")
	}
	pp := printers.PrettyPrint{Out: n.Out, ShowID: n.ShowID, Location: n.Service.Location()}

	var (
		proposal *app.Proposal
		err      error
	)
	if n.ID != nil {
		proposal, err = n.Service.ProposeAppointmentUpdate(ctx, *n.ID, n.Patch)
	} else {
		proposal, err = n.Service.ProposeAppointment(ctx, n.Appointment)
	}
	if err != nil {
		return err
	}

	if proposal.HasConflict() {
		if !n.JSON {
			pp.Conflict(proposal.Conflict)
		}
		if n.Confirm == nil {
			if n.JSON {
				// Unconfirmed proposals are reported, not booked.
				return pp.JSON(proposal)
			}
			return errors.New("can not book, the time overlaps and nothing to confirm with")
		}
		ok, err := n.Confirm.Confirm("Book anyway")
		if err != nil {
			return err
		}
		if !ok {
			if !n.JSON {
				pp.Noticef("%q not booked", proposal.Appointment.Title)
			}
			return nil
		}
	}

	a, err := proposal.Confirm(ctx)
	if err != nil {
		return err
	}
	if n.JSON {
		return pp.JSON(a)
	}
	pp.Title("Booked")
	pp.Appointments([]entity.Appointment{a})
	return nil
}
