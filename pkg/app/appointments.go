package app

import (
	"context"
	"fmt"

	"tableflip.dev/agenda/pkg/cache"
	"tableflip.dev/agenda/pkg/conflict"
	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/mutation"
	"tableflip.dev/agenda/pkg/viewmodel"
)

func (s *Service) Appointments(ctx context.Context) ([]entity.Appointment, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return cache.EnsureList[entity.Appointment](ctx, s.loader, cache.KeyAppointments)
}

func (s *Service) Meetings(ctx context.Context) ([]entity.Meeting, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return cache.EnsureList[entity.Meeting](ctx, s.loader, cache.KeyMeetings)
}

// AppointmentViews buckets appointments relative to now.
func (s *Service) AppointmentViews(ctx context.Context, search string) (viewmodel.AppointmentViews, error) {
	list, err := s.Appointments(ctx)
	if err != nil {
		return viewmodel.AppointmentViews{}, err
	}
	return viewmodel.ClassifyAppointments(list, s.now(),
		viewmodel.WithLocation(s.Location()),
		viewmodel.WithSearch(search),
	), nil
}

// Proposal is a validated appointment write waiting for the user. When
// Conflict is set the caller should ask before calling Confirm.
type Proposal struct {
	Appointment entity.Appointment `json:"appointment"`
	Conflict    *conflict.Match    `json:"conflict,omitempty"`

	svc   *Service
	id    *entity.ID
	patch entity.AppointmentPatch
}

func (p *Proposal) HasConflict() bool { return p.Conflict != nil }

// Confirm sends the proposal. A conflict does not block it.
func (p *Proposal) Confirm(ctx context.Context) (entity.Appointment, error) {
	if p.id == nil {
		return p.svc.createAppointment(ctx, p.Appointment)
	}
	return p.svc.UpdateAppointment(ctx, *p.id, p.patch)
}

// ProposeAppointment validates draft and checks it against the cached
// calendar. Nothing is written.
func (s *Service) ProposeAppointment(ctx context.Context, draft entity.Appointment) (*Proposal, error) {
	if err := draft.Validate(s.Location()); err != nil {
		return nil, err
	}
	match, err := s.findConflict(ctx, draft.Window(), nil)
	if err != nil {
		return nil, err
	}
	return &Proposal{Appointment: draft, Conflict: match, svc: s}, nil
}

// ProposeAppointmentUpdate validates patch against the cached appointment.
// The appointment never conflicts with itself.
func (s *Service) ProposeAppointmentUpdate(ctx context.Context, id entity.ID, patch entity.AppointmentPatch) (*Proposal, error) {
	list, err := s.Appointments(ctx)
	if err != nil {
		return nil, err
	}
	current, ok := lookup(list, id)
	if !ok {
		return nil, fmt.Errorf("app: appointment %d not found", id)
	}
	next := patch.Apply(current)
	if err := next.Validate(s.Location()); err != nil {
		return nil, err
	}
	p := &Proposal{Appointment: next, svc: s, id: &id, patch: patch}
	if patch.TouchesSchedule() {
		if p.Conflict, err = s.findConflict(ctx, next.Window(), &id); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (s *Service) findConflict(ctx context.Context, w entity.Window, exclude *entity.ID) (*conflict.Match, error) {
	appts, err := s.Appointments(ctx)
	if err != nil {
		return nil, err
	}
	meetings, err := s.Meetings(ctx)
	if err != nil {
		// Meetings come from an external sync that may be off.
		s.logger.Warn("meetings unavailable for conflict check", "error", err)
		meetings = nil
	}
	return s.detector().FindConflict(w, appts, meetings, exclude), nil
}

func (s *Service) createAppointment(ctx context.Context, a entity.Appointment) (entity.Appointment, error) {
	if err := s.ready(); err != nil {
		return entity.Appointment{}, err
	}
	body := a.Draft()
	return mutation.Perform(ctx, s.co, mutation.Mutation[entity.Appointment]{
		Name: "create-appointment",
		Keys: []cache.Key{cache.KeyAppointments},
		Remote: func(ctx context.Context) (entity.Appointment, error) {
			return s.Remote.CreateAppointment(ctx, body)
		},
		Commit: func(c *cache.Cache, a entity.Appointment) {
			cache.UpsertItem(c, cache.KeyAppointments, a)
		},
		Invalidate: []cache.Key{cache.KeyAppointments},
	})
}

// UpdateAppointment applies patch optimistically.
func (s *Service) UpdateAppointment(ctx context.Context, id entity.ID, patch entity.AppointmentPatch) (entity.Appointment, error) {
	if err := s.ready(); err != nil {
		return entity.Appointment{}, err
	}
	var invalidate []cache.Key
	if a, ok := cache.Find[entity.Appointment](s.cache, cache.KeyAppointments, id); ok && (a.IsRecurring || a.ParentAppointmentID != nil) && patch.TouchesSchedule() {
		invalidate = append(invalidate, cache.KeyAppointments)
	}
	return mutation.Perform(ctx, s.co, mutation.Mutation[entity.Appointment]{
		Name: "update-appointment",
		Keys: []cache.Key{cache.KeyAppointments},
		Optimistic: func(c *cache.Cache) {
			cache.PatchItem(c, cache.KeyAppointments, id, patch.Apply)
		},
		Remote: func(ctx context.Context) (entity.Appointment, error) {
			return s.Remote.UpdateAppointment(ctx, id, patch)
		},
		Commit: func(c *cache.Cache, a entity.Appointment) {
			cache.ReplaceItem(c, cache.KeyAppointments, a)
		},
		Invalidate: invalidate,
		OnNotFound: func(c *cache.Cache) {
			cache.RemoveItem[entity.Appointment](c, cache.KeyAppointments, id)
		},
	})
}

func (s *Service) SetAppointmentCompleted(ctx context.Context, id entity.ID, completed bool) (entity.Appointment, error) {
	return s.UpdateAppointment(ctx, id, entity.AppointmentPatch{Completed: &completed})
}

// DeleteAppointment removes the appointment optimistically.
func (s *Service) DeleteAppointment(ctx context.Context, id entity.ID) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := mutation.Perform(ctx, s.co, mutation.Mutation[struct{}]{
		Name: "delete-appointment",
		Keys: []cache.Key{cache.KeyAppointments},
		Optimistic: func(c *cache.Cache) {
			cache.RemoveItem[entity.Appointment](c, cache.KeyAppointments, id)
		},
		Remote: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.Remote.DeleteAppointment(ctx, id)
		},
		OnNotFound: func(c *cache.Cache) {
			cache.RemoveItem[entity.Appointment](c, cache.KeyAppointments, id)
		},
	})
	return err
}
