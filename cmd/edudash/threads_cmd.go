package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/habiliai/edudash/conversation"
	"github.com/habiliai/edudash/internal/stringutils"
	"github.com/jcooky/go-din"
	"github.com/spf13/cobra"
)

func newThreadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "threads",
		Aliases: []string{"ls"},
		Short:   "List the signed-in user's threads",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := din.NewContainer(cmd.Context(), din.EnvProd)
			view, err := din.GetT[*conversation.View](c)
			if err != nil {
				return err
			}
			defer view.Close()

			if err := view.Start(cmd.Context()); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tLAST\tUNREAD\tPREVIEW")
			for _, item := range view.Threads() {
				var (
					preview string
					unread  int
				)
				switch t := item.(type) {
				case conversation.VirtualThread:
					preview = t.Preview
				case conversation.RemoteThread:
					if t.LastMessage != nil {
						preview = t.LastMessage.Content
					}
					unread = t.UnreadCount
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", item.ItemID(), item.Title(), since(item), unread, stringutils.Ellipsis(preview, 40))
			}

			return w.Flush()
		},
	}
}

func since(item conversation.ThreadItem) string {
	if item.Recency().IsZero() {
		return "-"
	}
	return humanize.Time(item.Recency())
}
