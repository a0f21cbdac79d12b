package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/julefagdag/agenda/internal/agenda"
	"github.com/julefagdag/agenda/internal/apperr"
	"github.com/julefagdag/agenda/internal/client"
)

var errAlreadySubmitted = errors.New("du har allerede gitt tilbakemelding")

func newFeedbackCmd(opts *rootOptions) *cobra.Command {
	var useful, learned, explore bool

	cmd := &cobra.Command{
		Use:   "feedback <session-id> --useful=<bool> --learned=<bool> --explore=<bool>",
		Short: "Give feedback on a session that has started",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range []string{"useful", "learned", "explore"} {
				if !cmd.Flags().Changed(name) {
					return apperr.Validation(name, "is required")
				}
			}
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
			id := session.ID.String()
			if a.receipts.HasSubmittedFeedback(ctx, id) {
				return errAlreadySubmitted
			}
			if agenda.Classify(session, time.Now()) == agenda.StatusUpcoming {
				return apperr.Validation("session_id", "session has not started")
			}
			if _, err := a.api.SubmitFeedback(ctx, client.FeedbackInput{
				SessionID: id,
				Useful:    useful,
				Learned:   learned,
				Explore:   explore,
			}); err != nil {
				return fmt.Errorf("kunne ikke sende tilbakemelding: %w", err)
			}
			if err := a.receipts.MarkFeedbackSubmitted(ctx, id); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Takk for tilbakemeldingen på %s!\n", session.DisplayTitle())
			return nil
		},
	}
	cmd.Flags().BoolVar(&useful, "useful", false, "fikk noe nyttig ut av foredraget")
	cmd.Flags().BoolVar(&learned, "learned", false, "lærte noe nytt")
	cmd.Flags().BoolVar(&explore, "explore", false, "vil utforske temaet videre")
	return cmd
}

func newEventFeedbackCmd(opts *rootOptions) *cobra.Command {
	var comment string
	var rating int

	cmd := &cobra.Command{
		Use:   "event-feedback [--comment <text>] [--rating <1-5>]",
		Short: "Give feedback on the whole event",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := client.EventFeedbackInput{}
			if c := strings.TrimSpace(comment); c != "" {
				in.Comment = &c
			}
			if cmd.Flags().Changed("rating") {
				in.Rating = &rating
			}
			if in.Comment == nil && in.Rating == nil {
				return apperr.Validation("", "vennligst skriv en kommentar eller gi en vurdering")
			}
			ctx := cmd.Context()
			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()

			if a.receipts.HasSubmittedEventFeedback(ctx) {
				return errAlreadySubmitted
			}
			if _, err := a.api.SubmitEventFeedback(ctx, in); err != nil {
				return fmt.Errorf("kunne ikke sende tilbakemelding: %w", err)
			}
			if err := a.receipts.MarkEventFeedbackSubmitted(ctx); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Takk for tilbakemeldingen!")
			return nil
		},
	}
	cmd.Flags().StringVar(&comment, "comment", "", "kommentar (maks 1000 tegn)")
	cmd.Flags().IntVar(&rating, "rating", 0, "vurdering 1-5")
	return cmd
}
