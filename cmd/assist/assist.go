// Package assist contains the interactive agent subcommand.
package assist

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"google.golang.org/genai"

	"github.com/doctor-kat/ynab-assist/cmd/root"
	"github.com/doctor-kat/ynab-assist/internal/agent"
)

// Cmd starts the interactive agent session.
var Cmd = &cobra.Command{
	Use:   "assist [initial prompt]",
	Short: "Start an interactive session with the AI assistant.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		c, err := root.Build()
		if err != nil {
			root.Exit(err)
		}
		c.Initialize(ctx)

		var clientConfig *genai.ClientConfig
		if key := c.Config().AI.APIKey; key != "" {
			clientConfig = &genai.ClientConfig{APIKey: key}
		}
		client, err := genai.NewClient(ctx, clientConfig)
		if err != nil {
			root.Exit(err)
		}

		a := agent.New(os.Stdout, os.Stdin, c.Toolset().Registry(), c.Config().AI.Model, c.Logger())

		var prompts []string
		if len(args) > 0 {
			prompts = append(prompts, strings.Join(args, " "))
		}
		if err := a.Run(ctx, client, prompts...); err != nil {
			root.Exit(err)
		}
	},
}
