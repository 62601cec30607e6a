package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newCmd() *cobra.Command {
	flags := &struct {
		envFiles []string
	}{}

	cmd := &cobra.Command{
		Use:           "edudash",
		Short:         "EduDash parent and teacher messaging",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			files := make([]string, 0, len(flags.envFiles))
			for _, f := range flags.envFiles {
				if _, err := os.Stat(f); err == nil {
					files = append(files, f)
				}
			}
			if len(files) == 0 {
				return nil
			}
			return godotenv.Load(files...)
		},
	}

	cmd.PersistentFlags().StringSliceVar(&flags.envFiles, "env-file", []string{".env"}, "dotenv files to load, missing ones are skipped")

	cmd.AddCommand(
		newServerCmd(),
		newSeedCmd(),
		newThreadsCmd(),
		newChatCmd(),
		newAICmd(),
		newPushesCmd(),
	)

	return cmd
}
