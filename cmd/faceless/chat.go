package main

import (
	"errors"
	"os"

	"github.com/aretw0/faceless/internal/cli"
	"github.com/aretw0/faceless/internal/presentation/tui"
	"github.com/aretw0/faceless/pkg/domain"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a persona in the terminal",
	Long: `Starts an interactive conversation. A random persona is picked unless --persona is given.
Inside the session use /mode, /persona, /reset and /quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		persona, _ := cmd.Flags().GetString("persona")
		modeFlag, _ := cmd.Flags().GetString("mode")
		mode, err := domain.ParseMode(modeFlag)
		if err != nil {
			return err
		}

		ctx, stop := cli.NotifyContext(cmd.Context())
		defer stop()

		svc, _, err := openService(ctx, cmd)
		if err != nil {
			return err
		}
		defer svc.Close()
		if !svc.ChatEnabled() {
			return errors.New("chat is unavailable: configure the model API key (GROQ_API_KEY or GEMINI_API_KEY)")
		}

		interactive := term.IsTerminal(int(os.Stdout.Fd()))
		opts := []cli.ChatOption{
			cli.WithPersona(persona),
			cli.WithMode(mode),
			cli.WithBanner(interactive),
			cli.WithLogger(svc.Logger()),
		}
		if interactive {
			opts = append(opts, cli.WithRenderer(tui.NewRenderer()))
		}

		return cli.NewChatSession(svc, cmd.InOrStdin(), cmd.OutOrStdout(), opts...).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("persona", "", "Persona description (default: random from the catalogue)")
	chatCmd.Flags().String("mode", string(domain.ModeRegular), "Content mode: regular or uncensored")
}
