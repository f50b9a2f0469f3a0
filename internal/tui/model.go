package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sriram629/AI-ChatBot/client/internal/auth"
	"github.com/sriram629/AI-ChatBot/client/internal/chat"
	"github.com/sriram629/AI-ChatBot/client/internal/logging"
	"github.com/sriram629/AI-ChatBot/client/internal/types"
)

const sessionsPaneWidth = 34

// Controller is the part of chat.Controller the view drives
type Controller interface {
	Send(ctx context.Context, content string, attachment *types.Attachment) error
	Edit(messageID, newContent string) error
	Regenerate() error
	Stop() error
	Open(sessionID string)
	Snapshot() chat.Snapshot
}

// SessionLister loads the saved chats pane
type SessionLister interface {
	ListSessions(ctx context.Context) ([]types.SessionSummary, error)
}

// Config wires a Model
type Config struct {
	Controller  Controller
	Sessions    SessionLister
	Credentials *auth.Credentials
	Bridge      *Bridge
	Logger      *logging.Logger
}

type actionDoneMsg struct {
	op  string
	err error
}

type sessionsLoadedMsg struct {
	sessions []types.SessionSummary
	err      error
}

// Model is the bubbletea model of the chat screen
type Model struct {
	ctrl     Controller
	sessions SessionLister
	creds    *auth.Credentials
	bridge   *Bridge
	logger   *logging.Logger

	snap         chat.Snapshot
	notice       string
	noticeLevel  chat.Level
	attachment   *types.Attachment
	sessionList  []types.SessionSummary
	showSessions bool
	titles       map[string]string

	width  int
	height int

	input      textinput.Model
	transcript viewport.Model
	spinner    spinner.Model
	theme      theme
}

// New creates the model
func New(cfg Config) Model {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}

	input := textinput.New()
	input.Prompt = "❯ "
	input.CharLimit = 8000
	input.Placeholder = "Message, or /help"
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points

	transcript := viewport.New(0, 0)
	transcript.MouseWheelEnabled = true

	m := Model{
		ctrl:       cfg.Controller,
		sessions:   cfg.Sessions,
		creds:      cfg.Credentials,
		bridge:     cfg.Bridge,
		logger:     cfg.Logger.Named("tui"),
		snap:       cfg.Controller.Snapshot(),
		titles:     make(map[string]string),
		input:      input,
		transcript: transcript,
		spinner:    sp,
		theme:      newTheme(),
	}
	m.spinner.Style = m.theme.assistant
	return m
}

// Init starts listening for controller callbacks
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.bridge.waitSnapshot(),
		m.bridge.waitInbound(),
		m.loadSessions(),
	)
}

// Update handles one message
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.render()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			return m, m.run("stop", m.ctrl.Stop)
		case tea.KeyEnter:
			line := m.input.Value()
			m.input.Reset()
			return m.submit(line)
		}

	case snapshotMsg:
		// the bridge may hand over the same version twice
		if msg.snap.Version >= m.snap.Version {
			m.snap = msg.snap
			m.render()
		}
		cmds = append(cmds, m.bridge.waitSnapshot())

	case noticeMsg:
		m.setNotice(msg.level, msg.text)
		cmds = append(cmds, m.bridge.waitInbound())

	case navigatedMsg:
		m.logger.Debug("Navigated", zap.String("session_id", msg.sessionID))
		cmds = append(cmds, m.bridge.waitInbound())

	case authRejectedMsg:
		m.setNotice(chat.LevelError, "Logged out. Use /login <token> to continue.")
		cmds = append(cmds, m.bridge.waitInbound())

	case sessionEventMsg:
		if msg.event.Title != "" {
			m.titles[msg.event.SessionID] = msg.event.Title
		}
		cmds = append(cmds, m.loadSessions(), m.bridge.waitInbound())

	case sessionsLoadedMsg:
		if msg.err != nil {
			m.logger.Debug("Listing sessions failed", zap.Error(msg.err))
			break
		}
		m.sessionList = msg.sessions

	case actionDoneMsg:
		if msg.err != nil {
			m.logger.Debug("Command returned error", zap.String("op", msg.op), zap.Error(msg.err))
		}
		if text := describeError(msg.err); text != "" {
			m.setNotice(chat.LevelWarn, text)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.snap.Streaming {
			m.render()
		}
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if scrollsTranscript(msg) {
		m.transcript, cmd = m.transcript.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// scrollsTranscript keeps typed letters out of the viewport's key bindings
func scrollsTranscript(msg tea.Msg) bool {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return true
	}
	switch key.Type {
	case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
		return true
	default:
		return false
	}
}

func (m Model) submit(line string) (tea.Model, tea.Cmd) {
	cmd, err := Parse(line)
	if errors.Is(err, ErrEmptyInput) {
		return m, nil
	}
	if err != nil {
		m.setNotice(chat.LevelWarn, err.Error())
		return m, nil
	}

	switch cmd.Kind {
	case KindSend:
		att := m.attachment
		m.attachment = nil
		return m, m.run("send", func() error {
			return m.ctrl.Send(context.Background(), cmd.Text, att)
		})
	case KindEdit:
		target, ok := nthUserMessage(m.snap.Messages, cmd.Index)
		if !ok {
			m.setNotice(chat.LevelWarn, fmt.Sprintf("No message #%d", cmd.Index))
			return m, nil
		}
		return m, m.run("edit", func() error { return m.ctrl.Edit(target.ID, cmd.Text) })
	case KindRegenerate:
		return m, m.run("regenerate", m.ctrl.Regenerate)
	case KindStop:
		return m, m.run("stop", m.ctrl.Stop)
	case KindNew:
		m.ctrl.Open("")
		m.attachment = nil
	case KindOpen:
		m.ctrl.Open(cmd.Arg)
	case KindAttach:
		att, err := LoadAttachment(cmd.Arg)
		if err != nil {
			m.setNotice(chat.LevelWarn, err.Error())
			return m, nil
		}
		m.attachment = att
		m.setNotice(chat.LevelInfo, fmt.Sprintf("Attached %s (%s)", att.Filename, att.Type))
	case KindLogin:
		m.creds.Set(cmd.Arg)
		m.setNotice(chat.LevelInfo, "Logged in")
		return m, m.loadSessions()
	case KindSessions:
		m.showSessions = !m.showSessions
		m.layout()
		m.render()
		if m.showSessions {
			return m, m.loadSessions()
		}
	case KindHelp:
		m.setNotice(chat.LevelInfo, helpText)
	case KindQuit:
		return m, tea.Quit
	}
	return m, nil
}

// run performs a controller call off the update loop
func (m Model) run(op string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{op: op, err: fn()}
	}
}

func (m Model) loadSessions() tea.Cmd {
	if m.sessions == nil || m.creds == nil || !m.creds.Present() {
		return nil
	}
	lister := m.sessions
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		list, err := lister.ListSessions(ctx)
		return sessionsLoadedMsg{sessions: list, err: err}
	}
}

func (m *Model) setNotice(level chat.Level, text string) {
	m.notice = text
	m.noticeLevel = level
}

// describeError returns the text to show for a failed command, or empty
// when the controller already told the user
func describeError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, chat.ErrPendingBusy):
		return "Still delivering your previous message"
	case errors.Is(err, chat.ErrNotEditable):
		return "Only your own messages can be edited"
	case errors.Is(err, chat.ErrMessageNotFound):
		return "That message no longer exists"
	case errors.Is(err, chat.ErrEmptyMessage):
		return "Nothing to send"
	case errors.Is(err, chat.ErrNoCredential),
		errors.Is(err, chat.ErrNotConnected),
		errors.Is(err, chat.ErrBootstrapFailed),
		errors.Is(err, chat.ErrBootstrapAbandoned),
		errors.Is(err, chat.ErrClosed):
		return ""
	default:
		return err.Error()
	}
}

func nthUserMessage(msgs []types.Message, n int) (types.Message, bool) {
	seen := 0
	for _, msg := range msgs {
		if msg.Role != types.RoleUser {
			continue
		}
		seen++
		if seen == n {
			return msg, true
		}
	}
	return types.Message{}, false
}

func (m *Model) layout() {
	width := m.width
	if m.showSessions {
		width -= sessionsPaneWidth
	}
	// header, status line, notice and the bordered input
	height := m.height - 7
	m.transcript.Width = max(width, 10)
	m.transcript.Height = max(height, 3)
	m.input.Width = max(m.width-6, 10)
}

func (m *Model) render() {
	atBottom := m.transcript.AtBottom()
	m.transcript.SetContent(renderTranscript(m.snap.Messages, m.theme, m.transcript.Width))
	if atBottom || m.snap.Streaming {
		m.transcript.GotoBottom()
	}
}

// View renders the screen
func (m Model) View() string {
	body := m.transcript.View()
	if m.showSessions {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderSessions())
	}

	parts := []string{
		m.theme.header.Render(m.headerText()),
		body,
		m.statusLine(),
		m.noticeLine(),
		m.theme.input.Render(m.input.View()),
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) headerText() string {
	title := "New chat"
	if id := m.snap.SessionID; id != "" {
		title = id
		if t, ok := m.titles[id]; ok {
			title = t
		} else {
			for _, s := range m.sessionList {
				if s.SessionID == id {
					title = s.Title
					break
				}
			}
		}
	}

	state := "offline"
	switch {
	case m.snap.Connected:
		state = "connected"
	case m.snap.Connecting:
		state = "connecting"
	case m.creds != nil && !m.creds.Present():
		state = "logged out"
	}
	return fmt.Sprintf("%s · %s", title, state)
}

func (m Model) statusLine() string {
	switch {
	case m.snap.Loading:
		return m.theme.status.Render("Loading history...")
	case m.snap.Streaming:
		text := m.snap.VisibleStatus()
		if text == "" {
			text = "Generating · Esc to stop"
		}
		return m.spinner.View() + " " + m.theme.status.Render(text)
	case m.attachment != nil:
		return m.theme.attachment.Render("📎 " + m.attachment.Filename)
	default:
		return ""
	}
}

func (m Model) noticeLine() string {
	if m.notice == "" {
		return ""
	}
	switch m.noticeLevel {
	case chat.LevelError:
		return m.theme.err.Render(m.notice)
	case chat.LevelWarn:
		return m.theme.warn.Render(m.notice)
	default:
		return m.theme.info.Render(m.notice)
	}
}

func (m Model) renderSessions() string {
	var b strings.Builder
	b.WriteString(m.theme.panelTitle.Render("Saved chats"))
	b.WriteString("\n")
	if len(m.sessionList) == 0 {
		b.WriteString(m.theme.muted.Render("none yet"))
	}
	for _, s := range m.sessionList {
		title := s.Title
		if t, ok := m.titles[s.SessionID]; ok {
			title = t
		}
		line := truncate(title, sessionsPaneWidth-6)
		if s.SessionID == m.snap.SessionID {
			line = m.theme.selected.Render("▸ " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
		b.WriteString(m.theme.muted.Render("  "+truncate(s.SessionID, sessionsPaneWidth-6)) + "\n")
	}
	return m.theme.panel.Width(sessionsPaneWidth - 2).Height(m.transcript.Height).Render(b.String())
}

// renderTranscript prints message bodies verbatim under a role label
func renderTranscript(msgs []types.Message, th theme, width int) string {
	if len(msgs) == 0 {
		return th.muted.Render("Start typing to begin a conversation.")
	}

	var b strings.Builder
	userN := 0
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		switch msg.Role {
		case types.RoleUser:
			userN++
			b.WriteString(th.user.Render(fmt.Sprintf("You #%d", userN)))
		default:
			b.WriteString(th.assistant.Render("Assistant"))
		}
		b.WriteString("\n")
		for _, att := range msg.Attachments {
			line := fmt.Sprintf("[%s: %s]", att.Type, att.Filename)
			if att.Preview != "" {
				line += " " + att.Preview
			}
			b.WriteString(th.attachment.Render(line))
			b.WriteString("\n")
		}
		if msg.Content != "" {
			b.WriteString(lipgloss.NewStyle().Width(max(width, 10)).Render(msg.Content))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
