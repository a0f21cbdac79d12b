package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/julefagdag/agenda/internal/adminview"
	"github.com/julefagdag/agenda/internal/apperr"
	"github.com/julefagdag/agenda/internal/models"
	"github.com/julefagdag/agenda/internal/render"
)

func newAdminCmd(opts *rootOptions) *cobra.Command {
	admin := &cobra.Command{Use: "admin", Short: "Organizer commands behind the password gate"}
	admin.AddCommand(newAdminLoginCmd(opts))
	admin.AddCommand(newAdminLogoutCmd(opts))
	admin.AddCommand(newAdminResultsCmd(opts))
	admin.AddCommand(newAdminExportCmd(opts))
	return admin
}

func newAdminLoginCmd(opts *rootOptions) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with the organizer password (read from stdin when --password is empty)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), "Passord: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				password = strings.TrimSpace(line)
			}
			if password == "" {
				return apperr.Validation("password", "is required")
			}
			ctx := cmd.Context()
			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()

			expires, err := a.api.Login(ctx, password)
			if err != nil {
				if apperr.IsAuth(err) {
					return errors.New("feil passord")
				}
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logget inn til %s\n", expires.In(a.loc).Format("02.01 15:04"))
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "organizer password")
	return cmd
}

func newAdminLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the organizer credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.api.Logout(ctx); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logget ut")
			return nil
		},
	}
}

func newAdminResultsCmd(opts *rootOptions) *cobra.Command {
	var follow bool
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show feedback results per session and for the event",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()
			view := adminview.New(ctx, a.api, nil, a.logger).WithInterval(a.cfg.Client.RefreshInterval)
			if view.Snapshot().State != adminview.Authenticated {
				return apperr.Unauthorized("logg inn med 'agenda admin login' først")
			}
			if !follow {
				if err := view.Refresh(ctx, time.Now()); err != nil {
					return err
				}
				printResults(out, view.Snapshot(), a)
				return nil
			}

			unsub := view.Subscribe(func(s adminview.Snapshot) {
				switch {
				case s.State == adminview.Anonymous:
					_, _ = fmt.Fprintln(out, render.Alert.Render("Innloggingen er utløpt"))
					stop()
				case s.Err != nil:
					_, _ = fmt.Fprintln(out, render.Alert.Render(s.Err.Error()))
				default:
					printResults(out, s, a)
				}
			})
			defer unsub()
			view.Run(ctx)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "refresh every 30 seconds until interrupted")
	return cmd
}

func printResults(w io.Writer, s adminview.Snapshot, a *app) {
	_, _ = fmt.Fprintf(w, "\n%s\n", render.Muted.Render("Oppdatert "+s.RefreshedAt.In(a.loc).Format("15:04:05")))
	_, _ = fmt.Fprint(w, render.Results(s.Results, a.loc))
	if s.EventFeedback != nil {
		_, _ = fmt.Fprint(w, render.EventFeedback(s.EventFeedback.Summary, s.EventFeedback.Feedbacks, a.loc))
	}
}

func newAdminExportCmd(opts *rootOptions) *cobra.Command {
	var wait time.Duration
	cmd := &cobra.Command{
		Use:   "export [export-id]",
		Short: "Queue a results export, or show the status of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()

			var id uuid.UUID
			if len(args) == 1 {
				if id, err = uuid.Parse(args[0]); err != nil {
					return apperr.Validation("export_id", "must be a uuid")
				}
			} else {
				exp, err := a.api.CreateExport(ctx)
				if err != nil {
					return err
				}
				id = exp.ID
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Eksport %s lagt i kø\n", id)
			}

			deadline := time.Now().Add(wait)
			for {
				exp, err := a.api.GetExport(ctx, id)
				if err != nil {
					return err
				}
				if exp.Status != models.ExportPending || !time.Now().Before(deadline) {
					printExport(cmd.OutOrStdout(), exp.Status, exp.DownloadURL, exp.Error)
					return nil
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(2 * time.Second):
				}
			}
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 0, "poll until the export finishes or this long has passed")
	return cmd
}

func printExport(w io.Writer, status models.ExportStatus, url string, reason *string) {
	_, _ = fmt.Fprintf(w, "Status: %s\n", status)
	if url != "" {
		_, _ = fmt.Fprintf(w, "Last ned: %s\n", url)
	}
	if reason != nil {
		_, _ = fmt.Fprintf(w, "Feil: %s\n", *reason)
	}
}
