package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/sriram629/AI-ChatBot/client/internal/types"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
	formatTOML = "toml"
)

// transcript is the export shape for the structured formats
type transcript struct {
	SessionID string          `json:"session_id" yaml:"session_id" toml:"session_id"`
	Messages  []exportMessage `json:"messages" yaml:"messages" toml:"messages"`
}

type exportMessage struct {
	ID          string             `json:"id" yaml:"id" toml:"id"`
	Role        types.Role         `json:"role" yaml:"role" toml:"role"`
	Content     string             `json:"content" yaml:"content" toml:"content"`
	Attachments []exportAttachment `json:"attachments,omitempty" yaml:"attachments,omitempty" toml:"attachments,omitempty"`
}

type exportAttachment struct {
	Type     types.AttachmentType `json:"type" yaml:"type" toml:"type"`
	Filename string               `json:"filename" yaml:"filename" toml:"filename"`
	URL      string               `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`
}

func newTranscript(sessionID string, msgs []types.Message) transcript {
	doc := transcript{SessionID: sessionID, Messages: make([]exportMessage, 0, len(msgs))}
	for _, m := range msgs {
		em := exportMessage{ID: m.ID, Role: m.Role, Content: m.Content}
		for _, att := range m.Attachments {
			em.Attachments = append(em.Attachments, exportAttachment{
				Type:     att.Type,
				Filename: att.Filename,
				URL:      att.URL,
			})
		}
		doc.Messages = append(doc.Messages, em)
	}
	return doc
}

func newHistoryCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "history <session-id>",
		Short: "Print the transcript of a saved conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(format); err != nil {
				return err
			}
			if err := a.requireToken(); err != nil {
				return err
			}
			msgs, err := a.client.FetchHistory(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to fetch history: %w", err)
			}
			return writeTranscript(cmd.OutOrStdout(), format, args[0], msgs)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text, json, yaml or toml")
	return cmd
}

func validFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML, formatTOML:
		return nil
	}
	return fmt.Errorf("unknown format %q (want text, json, yaml or toml)", format)
}

func writeTranscript(w io.Writer, format, sessionID string, msgs []types.Message) error {
	if err := validFormat(format); err != nil {
		return err
	}
	doc := newTranscript(sessionID, msgs)

	switch format {
	case formatJSON:
		data, err := sonic.ConfigStd.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode transcript: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case formatYAML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode transcript: %w", err)
		}
		_, err = w.Write(data)
		return err
	case formatTOML:
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("failed to encode transcript: %w", err)
		}
		return nil
	}

	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		speaker := "You"
		if m.Role == types.RoleAssistant {
			speaker = "Assistant"
		}
		fmt.Fprintf(&b, "%s:\n%s\n", speaker, m.Content)
		for _, att := range m.Attachments {
			fmt.Fprintf(&b, "  [%s] %s\n", att.Type, att.Filename)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
