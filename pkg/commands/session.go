package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"tableflip.dev/agenda/pkg/api"
	"tableflip.dev/agenda/pkg/app"
	"tableflip.dev/agenda/pkg/cache"
	"tableflip.dev/agenda/pkg/config"
	"tableflip.dev/agenda/pkg/journal"
	"tableflip.dev/agenda/pkg/printers"
	"tableflip.dev/agenda/pkg/refresh"
	"tableflip.dev/agenda/pkg/snake"
	"tableflip.dev/agenda/pkg/store"
)

// session is everything one command invocation needs: the service, its
// on-disk mirror and the failure journal.
type session struct {
	cfg         *config.Config
	svc         *app.Service
	persistence store.Persistence
	mirror      *store.Mirror
	journal     *journal.Journal
	prompt      *snake.Prompter
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	logger := slog.Default()

	s := &session{cfg: cfg, prompt: snake.New()}
	if root.Yes {
		s.prompt.AssumeYes()
	}

	opts := []app.Option{
		app.WithLocation(loc),
		app.WithLogger(logger),
		app.WithDebounce(cfg.Debounce),
	}

	var remote api.Remote
	if root.Demo {
		remote = api.Demo(time.Now().In(loc))
	} else {
		client, err := api.NewClient(cfg.APIURL, api.WithToken(cfg.Token), api.WithUserAgent("agenda/"+version))
		if err != nil {
			return nil, err
		}
		remote = client

		if j, err := journal.Open(cfg.JournalPath); err != nil {
			logger.Warn("failure journal unavailable", "path", cfg.JournalPath, "error", err)
		} else {
			s.journal = j
			opts = append(opts, app.WithRecorder(j))
		}
	}

	c := cache.New()
	s.svc = app.NewService(remote, c, opts...)

	if !root.Demo {
		if p, err := store.Load(cfg); err != nil {
			logger.Warn("local cache unavailable", "path", cfg.CachePath, "error", err)
		} else {
			s.persistence = p
			s.mirror = store.NewMirror(c, p, app.DecodeEntry, store.WithLogger(logger))
			n, err := s.mirror.Restore(ctx)
			if err != nil {
				logger.Warn("restoring local cache", "error", err)
			}
			logger.Debug("restored local cache", "keys", n)
		}
	}
	return s, nil
}

func (s *session) printer(showID bool) *printers.PrettyPrint {
	return &printers.PrettyPrint{ShowID: showID, Location: s.svc.Location()}
}

func (s *session) Close() {
	s.svc.Close()
	if s.mirror != nil {
		if err := s.mirror.Sync(); err != nil {
			slog.Warn("saving local cache", "error", err)
		}
	}
	if s.journal != nil {
		_ = s.journal.Close()
	}
}

// background keeps the session fresh until ctx is done: stale keys are
// refetched on the configured interval and the mirror follows the cache.
func (s *session) background(ctx context.Context, opts ...refresh.Option) error {
	opts = append([]refresh.Option{refresh.WithLogger(slog.Default())}, opts...)
	r := refresh.New(s.svc.Loader(), s.svc.Cache(), s.svc.Location(), opts...)
	if _, err := r.Every(s.cfg.RefreshInterval); err != nil {
		return err
	}
	if s.cfg.RefreshCron != "" {
		if _, err := r.Schedule(s.cfg.RefreshCron); err != nil {
			return fmt.Errorf("refresh_cron %q: %w", s.cfg.RefreshCron, err)
		}
	}
	r.Start()
	defer r.Stop()

	g, ctx := errgroup.WithContext(ctx)
	if s.mirror != nil {
		g.Go(func() error { return s.mirror.Run(ctx) })
	}
	g.Go(func() error {
		<-ctx.Done()
		return nil
	})
	return g.Wait()
}
