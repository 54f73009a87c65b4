package app

import (
	"context"

	"tableflip.dev/agenda/pkg/cache"
	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/mutation"
	"tableflip.dev/agenda/pkg/timeutil"
)

func (s *Service) Settings(ctx context.Context) (entity.UserSettings, error) {
	if err := s.ready(); err != nil {
		return entity.UserSettings{}, err
	}
	st, err := cache.EnsureValue[entity.UserSettings](ctx, s.loader, cache.KeySettings)
	if err != nil {
		return st, err
	}
	s.adoptTimezone(st)
	return st, nil
}

func (s *Service) adoptTimezone(st entity.UserSettings) {
	if st.Timezone == "" {
		return
	}
	loc, err := st.Location()
	if err != nil {
		s.logger.Warn("ignoring unknown timezone", "timezone", st.Timezone, "error", err)
		return
	}
	s.setLocation(loc)
}

// UpdateSettings applies patch optimistically. A timezone change takes
// effect for date comparisons once the server accepts it.
func (s *Service) UpdateSettings(ctx context.Context, patch entity.SettingsPatch) (entity.UserSettings, error) {
	if err := s.ready(); err != nil {
		return entity.UserSettings{}, err
	}
	if err := patch.Validate(); err != nil {
		return entity.UserSettings{}, err
	}
	st, err := mutation.Perform(ctx, s.co, mutation.Mutation[entity.UserSettings]{
		Name: "update-settings",
		Keys: []cache.Key{cache.KeySettings},
		Optimistic: func(c *cache.Cache) {
			c.Update(cache.KeySettings, func(cur any, ok bool) (any, bool) {
				st, isSettings := cur.(entity.UserSettings)
				if !ok || !isSettings {
					return nil, false
				}
				return patch.Apply(st), true
			})
		},
		Remote: func(ctx context.Context) (entity.UserSettings, error) {
			return s.Remote.UpdateSettings(ctx, patch)
		},
		Commit: func(c *cache.Cache, st entity.UserSettings) {
			c.Set(cache.KeySettings, st)
		},
	})
	if err != nil {
		return st, err
	}
	if patch.Timezone != nil {
		s.adoptTimezone(st)
	}
	return st, nil
}

// SetWorkHours validates and stores the work day.
func (s *Service) SetWorkHours(ctx context.Context, start, end timeutil.TimeOfDay) (entity.UserSettings, error) {
	patch, err := entity.WorkHoursPatch(start, end)
	if err != nil {
		return entity.UserSettings{}, err
	}
	return s.UpdateSettings(ctx, patch)
}
