package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aguilarm/scrumd/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP JSON API",
	Long: `Serve every planning operation over an HTTP JSON API backed by the
same local database the CLI uses.`,
	Run: withDB(func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		srv := server.New(logger)
		if err := srv.Run(addr); err != nil {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}),
}

func init() {
	serveCmd.Flags().StringP("addr", "a", ":8080", "Listen address")
}
