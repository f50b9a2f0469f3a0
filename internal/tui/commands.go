package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies an input line command
type Kind int

const (
	KindSend Kind = iota
	KindEdit
	KindRegenerate
	KindStop
	KindNew
	KindOpen
	KindAttach
	KindLogin
	KindSessions
	KindHelp
	KindQuit
)

// Command is one parsed input line
type Command struct {
	Kind  Kind
	Text  string // message text, edit text
	Arg   string // session id, path, token
	Index int    // 1-based position among the user's messages
}

var ErrEmptyInput = errors.New("empty input")

const helpText = "/edit <n> <text> · /regen · /stop · /new · /open <id> · /attach <path> · /login <token> · /sessions · /quit"

// Parse turns an input line into a Command. Lines not starting with a slash
// are sent as-is; a leading "//" escapes a literal slash.
func Parse(line string) (Command, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Command{}, ErrEmptyInput
	}
	if strings.HasPrefix(trimmed, "//") {
		return Command{Kind: KindSend, Text: line[strings.Index(line, "/")+1:]}, nil
	}
	if !strings.HasPrefix(trimmed, "/") {
		return Command{Kind: KindSend, Text: line}, nil
	}

	name, rest, _ := strings.Cut(trimmed[1:], " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(name) {
	case "edit":
		num, text, _ := strings.Cut(rest, " ")
		n, err := strconv.Atoi(num)
		if err != nil || n < 1 {
			return Command{}, fmt.Errorf("usage: /edit <n> <text>")
		}
		if strings.TrimSpace(text) == "" {
			return Command{}, fmt.Errorf("usage: /edit <n> <text>")
		}
		return Command{Kind: KindEdit, Index: n, Text: strings.TrimSpace(text)}, nil
	case "regen", "regenerate":
		return Command{Kind: KindRegenerate}, nil
	case "stop":
		return Command{Kind: KindStop}, nil
	case "new":
		return Command{Kind: KindNew}, nil
	case "open":
		if rest == "" {
			return Command{}, fmt.Errorf("usage: /open <id>")
		}
		return Command{Kind: KindOpen, Arg: rest}, nil
	case "attach":
		if rest == "" {
			return Command{}, fmt.Errorf("usage: /attach <path>")
		}
		return Command{Kind: KindAttach, Arg: rest}, nil
	case "login":
		if rest == "" {
			return Command{}, fmt.Errorf("usage: /login <token>")
		}
		return Command{Kind: KindLogin, Arg: rest}, nil
	case "sessions":
		return Command{Kind: KindSessions}, nil
	case "help":
		return Command{Kind: KindHelp}, nil
	case "quit", "exit":
		return Command{Kind: KindQuit}, nil
	default:
		return Command{}, fmt.Errorf("unknown command /%s", name)
	}
}
