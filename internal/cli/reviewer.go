package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cliadapter "github.com/example/confer/internal/adapters/cli"
	"github.com/example/confer/internal/ports/primary"
	"github.com/example/confer/internal/wire"
)

// ReviewerCmd returns the reviewer command with all subcommands attached.
func ReviewerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reviewer",
		Aliases: []string{"rev"},
		Short:   "Manage program reviewers",
		Long: `Manage program reviewers through their lifecycle:
created → invited → accepted | rejected`,
	}

	cmd.AddCommand(reviewerCreateCmd())
	cmd.AddCommand(reviewerListCmd())
	cmd.AddCommand(reviewerShowCmd())
	cmd.AddCommand(reviewerUpdateCmd())
	cmd.AddCommand(reviewerInviteCmd())
	cmd.AddCommand(reviewerAcceptCmd())
	cmd.AddCommand(reviewerRejectCmd())
	cmd.AddCommand(reviewerDeleteCmd())
	cmd.AddCommand(reviewerCanReviewCmd())
	cmd.AddCommand(reviewerSyncRolesCmd())

	return cmd
}

const prefHelp = "Preference as track:level[:accepted|declined] (repeatable)"

// reviewerIDArg requires exactly one argument shaped like a reviewer ID.
func reviewerIDArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return err
	}
	return cliadapter.ValidateReviewerID(args[0])
}

func reviewerCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a reviewer and send the invitation",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("user")
			userID, _ := cmd.Flags().GetInt64("user-id")
			agreement, _ := cmd.Flags().GetBool("agreement")
			rawPrefs, _ := cmd.Flags().GetStringArray("pref")

			prefs, err := cliadapter.ParsePreferences(rawPrefs)
			if err != nil {
				return err
			}

			return wire.ReviewerAdapter().Create(NewContext(), primary.CreateReviewerRequest{
				UserID:            userID,
				Username:          username,
				ReviewerAgreement: agreement,
				Preferences:       prefs,
			})
		},
	}
	cmd.Flags().StringP("user", "u", "", "Username of the reviewer")
	cmd.Flags().Int64("user-id", 0, "User ID of the reviewer (ignored when --user is set)")
	cmd.Flags().Bool("agreement", false, "Record the reviewer agreement as accepted")
	cmd.Flags().StringArrayP("pref", "p", nil, prefHelp)
	return cmd
}

func reviewerListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reviewers",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, _ := cmd.Flags().GetString("state")
			username, _ := cmd.Flags().GetString("user")
			limit, _ := cmd.Flags().GetInt("limit")

			return wire.ReviewerAdapter().List(NewContext(), primary.ReviewerFilters{
				State:    state,
				Username: username,
				Limit:    limit,
			})
		},
	}
	cmd.Flags().StringP("state", "s", "", "Filter by state (created, invited, accepted, rejected)")
	cmd.Flags().StringP("user", "u", "", "Filter by username")
	cmd.Flags().IntP("limit", "n", 0, "Maximum reviewers to show")
	return cmd
}

func reviewerShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [reviewer-id]",
		Short: "Show reviewer details",
		Args:  reviewerIDArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.ReviewerAdapter().Show(NewContext(), args[0])
			return err
		},
	}
}

func reviewerUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [reviewer-id]",
		Short: "Update a reviewer and optionally fire a lifecycle event",
		Args:  reviewerIDArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := primary.UpdateReviewerRequest{ReviewerID: args[0]}

			if cmd.Flags().Changed("user") {
				username, _ := cmd.Flags().GetString("user")
				req.Username = &username
			}
			if cmd.Flags().Changed("user-id") {
				userID, _ := cmd.Flags().GetInt64("user-id")
				req.UserID = &userID
			}
			if cmd.Flags().Changed("agreement") {
				agreement, _ := cmd.Flags().GetBool("agreement")
				req.ReviewerAgreement = &agreement
			}
			rawPrefs, _ := cmd.Flags().GetStringArray("pref")
			prefs, err := cliadapter.ParsePreferences(rawPrefs)
			if err != nil {
				return err
			}
			req.AddPreferences = prefs
			req.StateEvent, _ = cmd.Flags().GetString("event")

			return wire.ReviewerAdapter().Update(NewContext(), req)
		},
	}
	cmd.Flags().StringP("user", "u", "", "Move the reviewer to another username")
	cmd.Flags().Int64("user-id", 0, "Move the reviewer to another user ID (ignored when --user is set)")
	cmd.Flags().Bool("agreement", false, "Set the reviewer agreement flag")
	cmd.Flags().StringArrayP("pref", "p", nil, prefHelp)
	cmd.Flags().StringP("event", "e", "", "Lifecycle event to fire (invite, accept, reject)")
	return cmd
}

func reviewerInviteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invite [reviewer-id]",
		Short: "Send or re-send the invitation",
		Args:  reviewerIDArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.ReviewerAdapter().Invite(NewContext(), args[0])
		},
	}
}

func reviewerAcceptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accept [reviewer-id]",
		Short: "Accept the invitation with agreement and track preferences",
		Args:  reviewerIDArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := primary.AcceptReviewerRequest{ReviewerID: args[0]}
			if cmd.Flags().Changed("agreement") {
				agreement, _ := cmd.Flags().GetBool("agreement")
				req.ReviewerAgreement = &agreement
			}
			rawPrefs, _ := cmd.Flags().GetStringArray("pref")
			prefs, err := cliadapter.ParsePreferences(rawPrefs)
			if err != nil {
				return err
			}
			req.Preferences = prefs

			return wire.ReviewerAdapter().Accept(NewContext(), req)
		},
	}
	cmd.Flags().Bool("agreement", false, "Accept the reviewer agreement")
	cmd.Flags().StringArrayP("pref", "p", nil, prefHelp)
	return cmd
}

func reviewerRejectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reject [reviewer-id]",
		Short: "Decline the invitation",
		Args:  reviewerIDArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.ReviewerAdapter().Reject(NewContext(), args[0])
		},
	}
}

func reviewerDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [reviewer-id]",
		Short: "Delete a reviewer and its preferences",
		Args:  reviewerIDArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.ReviewerAdapter().Delete(NewContext(), args[0])
		},
	}
}

func reviewerCanReviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "can-review [reviewer-id] [track-id]",
		Short: "Check whether a reviewer may review a track",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cliadapter.ValidateReviewerID(args[0]); err != nil {
				return err
			}
			trackID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid track ID %q: %w", args[1], err)
			}
			_, err = wire.ReviewerAdapter().CanReview(NewContext(), args[0], trackID)
			return err
		},
	}
}

func reviewerSyncRolesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-roles",
		Short: "Recompute the reviewer role for every affected user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.ReviewerAdapter().SyncRoles(NewContext())
		},
	}
}
