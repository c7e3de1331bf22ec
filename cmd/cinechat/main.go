package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cinechat",
	Short: "Movie recommendations over a self-querying vector index",
	Long: `cinechat indexes a movie catalog, answers free-text movie queries with
filtered semantic search, live TMDB metadata and an LLM follow-up
recommendation.

  cinechat serve         start the HTTP service
  cinechat chat          open a terminal chat against a running service
  cinechat init-config   write the default config.yaml`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
