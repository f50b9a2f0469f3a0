package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/sriram629/AI-ChatBot/client/internal/types"
)

var (
	idStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	titleStyle = lipgloss.NewStyle().Bold(true)
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newSessionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List saved conversations, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireToken(); err != nil {
				return err
			}
			list, err := a.client.ListSessions(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}
			writeSessions(cmd.OutOrStdout(), list)
			return nil
		},
	}
}

func writeSessions(w io.Writer, list []types.SessionSummary) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No conversations yet.")
		return
	}
	for _, s := range list {
		title := s.Title
		if title == "" {
			title = "Untitled"
		}
		fmt.Fprintf(w, "%s  %s  %s\n",
			idStyle.Render(s.SessionID),
			titleStyle.Render(title),
			timeStyle.Render(s.UpdatedAt.Local().Format(time.DateTime)))
	}
}
