package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/habiliai/edudash/aichat"
	"github.com/habiliai/edudash/config"
	"github.com/habiliai/edudash/conversation"
	"github.com/jcooky/go-din"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive messaging view",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := din.NewContainer(cmd.Context(), din.EnvProd)
			conf := din.MustGetT[*config.ClientConfig](c)
			if conf.UserID == "" {
				return errors.New("EDUDASH_USER_ID is required")
			}
			view, err := din.GetT[*conversation.View](c)
			if err != nil {
				return err
			}
			defer view.Close()
			store, err := din.GetT[*aichat.Store](c)
			if err != nil {
				return err
			}

			if err := view.Start(cmd.Context()); err != nil {
				return err
			}

			program := tea.NewProgram(
				newChatModel(cmd.Context(), view, store),
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
			)
			_, err = program.Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		},
	}
}
