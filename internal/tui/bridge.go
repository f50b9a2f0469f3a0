package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sriram629/AI-ChatBot/client/internal/chat"
	"github.com/sriram629/AI-ChatBot/client/internal/events"
)

type snapshotMsg struct {
	snap chat.Snapshot
}

type noticeMsg struct {
	level chat.Level
	text  string
}

type navigatedMsg struct {
	sessionID string
}

type authRejectedMsg struct {
	reason string
}

type sessionEventMsg struct {
	event events.SessionEvent
}

// Bridge receives controller callbacks on any goroutine and queues them for
// the bubbletea program. It implements chat.Notifier, chat.Navigator and
// chat.AuthHandler; Observe is a chat.Observer and OnSessionEvent a bus
// subscriber. Navigation and auth rejection go on an unbounded queue and
// are delivered before notices; notices and session events may be dropped.
type Bridge struct {
	mu      sync.Mutex
	latest  chat.Snapshot
	have    bool
	control []tea.Msg

	wake        chan struct{}
	controlWake chan struct{}
	inbound     chan tea.Msg
}

// NewBridge creates an empty bridge
func NewBridge() *Bridge {
	return &Bridge{
		wake:        make(chan struct{}, 1),
		controlWake: make(chan struct{}, 1),
		inbound:     make(chan tea.Msg, 64),
	}
}

// Observe keeps s if it is newer than what is queued
func (b *Bridge) Observe(s chat.Snapshot) {
	b.mu.Lock()
	if !b.have || s.Version > b.latest.Version {
		b.latest = s
		b.have = true
	}
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Bridge) Notify(level chat.Level, text string) {
	b.post(noticeMsg{level: level, text: text})
}

func (b *Bridge) Navigate(sessionID string) {
	b.postControl(navigatedMsg{sessionID: sessionID})
}

func (b *Bridge) Rejected(reason string) {
	b.postControl(authRejectedMsg{reason: reason})
}

func (b *Bridge) OnSessionEvent(ev events.SessionEvent) {
	b.post(sessionEventMsg{event: ev})
}

// post drops the message when the program is not keeping up
func (b *Bridge) post(msg tea.Msg) {
	select {
	case b.inbound <- msg:
	default:
	}
}

func (b *Bridge) postControl(msg tea.Msg) {
	b.mu.Lock()
	b.control = append(b.control, msg)
	b.mu.Unlock()

	select {
	case b.controlWake <- struct{}{}:
	default:
	}
}

func (b *Bridge) popControl() (tea.Msg, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.control) == 0 {
		return nil, false
	}
	msg := b.control[0]
	b.control[0] = nil
	b.control = b.control[1:]
	return msg, true
}

func (b *Bridge) waitSnapshot() tea.Cmd {
	return func() tea.Msg {
		<-b.wake
		b.mu.Lock()
		defer b.mu.Unlock()
		return snapshotMsg{snap: b.latest}
	}
}

func (b *Bridge) waitInbound() tea.Cmd {
	return func() tea.Msg {
		for {
			if msg, ok := b.popControl(); ok {
				return msg
			}
			select {
			case <-b.controlWake:
			case msg := <-b.inbound:
				return msg
			}
		}
	}
}
