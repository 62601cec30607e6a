package main

import (
	"fmt"

	"github.com/habiliai/edudash/entity"
	"github.com/habiliai/edudash/notify"
	"github.com/jcooky/go-din"
	"github.com/mokiat/gog"
	"github.com/spf13/cobra"
)

// newPushesCmd drains the push queue the way a device gateway would.
func newPushesCmd() *cobra.Command {
	flags := &struct {
		limit int
		ack   bool
	}{}

	cmd := &cobra.Command{
		Use:   "pushes",
		Short: "List queued push notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := din.NewContainer(cmd.Context(), din.EnvProd)
			client, err := din.GetT[notify.JsonRpcClient](c)
			if err != nil {
				return err
			}

			res, err := client.Pending(cmd.Context(), &notify.PendingRequest{Limit: flags.limit})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, n := range res.Notifications {
				fmt.Fprintf(out, "%s\t%s\t%s: %s\n", n.CreatedAt.Format("2006-01-02 15:04"), n.RecipientID, n.Title, n.Body)
			}
			if !flags.ack || len(res.Notifications) == 0 {
				return nil
			}

			return client.MarkDispatched(cmd.Context(), &notify.MarkDispatchedRequest{
				IDs: gog.Map(res.Notifications, func(n entity.Notification) string { return n.ID }),
			})
		},
	}

	cmd.Flags().IntVar(&flags.limit, "limit", 50, "maximum number of pushes to list")
	cmd.Flags().BoolVar(&flags.ack, "ack", false, "mark the listed pushes as dispatched")

	return cmd
}
