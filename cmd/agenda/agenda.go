package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/julefagdag/agenda/internal/agenda"
	"github.com/julefagdag/agenda/internal/apperr"
	"github.com/julefagdag/agenda/internal/models"
	"github.com/julefagdag/agenda/internal/notify"
	"github.com/julefagdag/agenda/internal/render"
	"github.com/julefagdag/agenda/internal/watch"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var onlyFavorites bool
	var at string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the agenda grouped into current, upcoming and completed sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			now, err := parseAt(at)
			if err != nil {
				return err
			}
			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()

			sessions, err := a.api.ListSessions(ctx)
			if err != nil {
				return fmt.Errorf("kunne ikke hente sesjoner: %w", err)
			}
			store, err := a.favorites(ctx)
			if err != nil {
				return err
			}
			favs := store.GetAll()
			shown := sessions
			if onlyFavorites {
				shown = watch.FilterFavorites(sessions, favs)
			}
			out := render.Agenda(agenda.SortAndGroup(shown, now), now, favs, notify.UpcomingBanner(now, sessions, favs), a.loc)
			_, _ = fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&onlyFavorites, "favorites", false, "show favorite sessions only")
	cmd.Flags().StringVar(&at, "at", "", "reference time (RFC3339), default now")
	return cmd
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var onlyFavorites, noNotify, alert bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the agenda up to date and remind about favorite sessions 10 minutes before start",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()

			sessions, err := a.api.ListSessions(ctx)
			if err != nil {
				return fmt.Errorf("kunne ikke hente sesjoner: %w", err)
			}
			store, err := a.favorites(ctx)
			if err != nil {
				return err
			}

			var notifier notify.Notifier = notify.Disabled{}
			if !noNotify {
				notifier = notify.NewDesktopNotifier(a.cfg.Client.AppName, alert)
			}
			scheduler := notify.NewScheduler(notify.NewPermissionGate(notifier, a.logger), a.logger)

			out := cmd.OutOrStdout()
			loop := watch.NewLoop(sessions, store, scheduler, nil, a.logger).
				WithInterval(a.cfg.Client.TickInterval).
				FavoritesOnly(onlyFavorites).
				OnFrame(func(f watch.Frame) { printFrame(out, f, a.loc) })
			loop.Run(ctx)
			return nil
		},
	}
	cmd.Flags().BoolVar(&onlyFavorites, "favorites", false, "show favorite sessions only")
	cmd.Flags().BoolVar(&noNotify, "no-notify", false, "disable desktop notifications")
	cmd.Flags().BoolVar(&alert, "alert", false, "use alert notifications with sound")
	return cmd
}

func printFrame(w io.Writer, f watch.Frame, loc *time.Location) {
	for _, n := range f.Notifications {
		_, _ = fmt.Fprintln(w, render.Notification(n))
	}
	_, _ = fmt.Fprintf(w, "\n%s\n", render.Muted.Render("Oppdatert "+f.At.In(loc).Format("15:04")))
	_, _ = fmt.Fprint(w, render.Agenda(f.Agenda, f.At, f.Favorites, f.Banner, loc))
}

func newFavoritesCmd(opts *rootOptions) *cobra.Command {
	fav := &cobra.Command{Use: "favorites", Short: "Manage favorite sessions"}

	fav.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List favorite sessions in start order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()

			store, err := a.favorites(ctx)
			if err != nil {
				return err
			}
			favs := store.GetAll()
			if len(favs) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Ingen favoritter ennå")
				return nil
			}
			sessions, err := a.api.ListSessions(ctx)
			if err != nil {
				return fmt.Errorf("kunne ikke hente sesjoner: %w", err)
			}
			now := time.Now()
			for _, s := range agenda.Sort(watch.FilterFavorites(sessions, favs), now) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), render.SessionLine(s, now, favs, a.loc))
			}
			return nil
		},
	})

	fav.AddCommand(&cobra.Command{
		Use:   "toggle <session-id>",
		Short: "Add or remove a favorite session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()

			session, err := findSession(ctx, a, args[0])
			if err != nil {
				return err
			}
			store, err := a.favorites(ctx)
			if err != nil {
				return err
			}
			set, err := store.Toggle(ctx, session.ID.String())
			if err != nil {
				return err
			}
			verb := "Fjernet fra"
			if set.Contains(session.ID.String()) {
				verb = "Lagt til i"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s favoritter: %s\n", verb, session.DisplayTitle())
			return nil
		},
	})
	return fav
}

// findSession resolves a session id against the published agenda.
func findSession(ctx context.Context, a *app, raw string) (models.Session, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return models.Session{}, apperr.Validation("session_id", "must be a uuid")
	}
	sessions, err := a.api.ListSessions(ctx)
	if err != nil {
		return models.Session{}, fmt.Errorf("kunne ikke hente sesjoner: %w", err)
	}
	for _, s := range sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Session{}, apperr.NotFound("session", raw)
}

func parseAt(at string) (time.Time, error) {
	if at == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, apperr.Validation("at", "must be RFC3339")
	}
	return t, nil
}
