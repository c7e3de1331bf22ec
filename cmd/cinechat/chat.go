package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"cinechat/internal/tui"
)

var chatAddr string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open a terminal chat against a running cinechat service",
	Long: `Open a terminal chat against a running cinechat service.

Controls:
  Enter      - Send the query
  Up/Down    - Browse returned movies
  Ctrl+C     - Quit`,
	RunE: runChat,
}

func init() {
	defaultAddr := "http://localhost:5000"
	if port := os.Getenv("PORT"); port != "" {
		defaultAddr = "http://localhost:" + port
	}
	chatCmd.Flags().StringVar(&chatAddr, "addr", defaultAddr, "Base URL of the cinechat service")
	rootCmd.AddCommand(chatCmd)
}

func runChat(_ *cobra.Command, _ []string) error {
	m := tui.New(tui.NewClient(chatAddr, 0))
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	return nil
}
