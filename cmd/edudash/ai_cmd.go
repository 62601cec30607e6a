package main

import (
	"fmt"
	"strings"

	"github.com/habiliai/edudash/aichat"
	"github.com/jcooky/go-din"
	"github.com/spf13/cobra"
)

func newAICmd() *cobra.Command {
	flags := &struct {
		clear bool
	}{}

	cmd := &cobra.Command{
		Use:   "ai [prompt...]",
		Short: "Talk to the assistant, or print the conversation without a prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := din.NewContainer(cmd.Context(), din.EnvProd)
			store, err := din.GetT[*aichat.Store](c)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flags.clear {
				if err := store.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(out, "conversation cleared")
				return nil
			}

			if err := store.Open(cmd.Context()); err != nil {
				return err
			}

			if len(args) == 0 {
				for _, m := range store.Messages() {
					fmt.Fprintf(out, "%s: %s\n", speaker(store, m), m.Content)
				}
				return nil
			}

			reply, err := store.Send(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: %s\n", speaker(store, *reply), reply.Content)

			return nil
		},
	}

	cmd.Flags().BoolVar(&flags.clear, "clear", false, "reset the conversation to the greeting")

	return cmd
}

func speaker(store *aichat.Store, m aichat.Message) string {
	if m.Role == aichat.RoleAssistant {
		return store.AssistantName()
	}
	return "you"
}
