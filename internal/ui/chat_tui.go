package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/josephgoksu/taskmate/internal/events"
	"github.com/josephgoksu/taskmate/internal/task"
	"github.com/josephgoksu/taskmate/internal/taskclient"
)

const (
	taskPaneWidth   = 42
	minChatWidth    = 30
	inputBoxHeight  = 3
	headerHeight    = 1
	defaultTermW    = 100
	defaultTermH    = 30
	transcriptWidth = defaultTermW - taskPaneWidth - 4
)

// ChatBackend is what the chat view needs from a taskmate server.
type ChatBackend interface {
	Chat(ctx context.Context, threadID, message string) (taskclient.ChatReply, error)
	ListTasks(ctx context.Context, status task.Status) ([]task.Task, error)
}

// ChatOptions configures RunChat.
type ChatOptions struct {
	ThreadID string
	// Events, when set, triggers a task refresh on every server-side change.
	Events <-chan events.TaskUpdated
}

type chatEntry struct {
	role string // "you", "agent", "error", "system"
	text string
}

// ChatModel is the Bubble Tea model of the chat view.
type ChatModel struct {
	ctx      context.Context
	backend  ChatBackend
	threadID string
	events   <-chan events.TaskUpdated

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	entries  []chatEntry
	tasks    []task.Task
	waiting  bool
	width    int
	height   int
	quitting bool
}

type msgChatReply struct {
	reply taskclient.ChatReply
	err   error
}

type msgTasks struct {
	tasks []task.Task
	err   error
}

type msgTaskEvent struct {
	ev events.TaskUpdated
	ok bool
}

// NewChatModel builds the chat view.
func NewChatModel(ctx context.Context, backend ChatBackend, opts ChatOptions) ChatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask me to add, update, complete or delete tasks..."
	ti.Prompt = "› "
	ti.CharLimit = 2000
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = StylePrimary

	vp := viewport.New(transcriptWidth, defaultTermH-inputBoxHeight-headerHeight-2)

	m := ChatModel{
		ctx:      ctx,
		backend:  backend,
		threadID: opts.ThreadID,
		events:   opts.Events,
		input:    ti,
		viewport: vp,
		spinner:  s,
		width:    defaultTermW,
		height:   defaultTermH,
		entries: []chatEntry{{
			role: "system",
			text: "Connected. Type a message and press Enter. Esc quits.",
		}},
	}
	m.refreshTranscript()
	return m
}

func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadTasks(), m.waitForEvent())
}

func (m ChatModel) loadTasks() tea.Cmd {
	return func() tea.Msg {
		tasks, err := m.backend.ListTasks(m.ctx, task.StatusAll)
		return msgTasks{tasks: tasks, err: err}
	}
}

func (m ChatModel) sendMessage(text string) tea.Cmd {
	return func() tea.Msg {
		reply, err := m.backend.Chat(m.ctx, m.threadID, text)
		return msgChatReply{reply: reply, err: err}
	}
}

// waitForEvent blocks on the event stream; nil when there is none.
func (m ChatModel) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	ch := m.events
	return func() tea.Msg {
		ev, ok := <-ch
		return msgTaskEvent{ev: ev, ok: ok}
	}
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.waiting {
				return m, nil
			}
			m.input.Reset()
			m.addEntry("you", text)
			m.waiting = true
			return m, tea.Batch(m.sendMessage(text), m.spinner.Tick)
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()

	case msgChatReply:
		m.waiting = false
		if msg.err != nil {
			m.addEntry("error", msg.err.Error())
			return m, nil
		}
		m.addEntry("agent", msg.reply.Response)
		// Without an event stream the reply flag is the refresh signal.
		if msg.reply.TaskUpdated && m.events == nil {
			cmds = append(cmds, m.loadTasks())
		}

	case msgTasks:
		if msg.err != nil {
			m.addEntry("error", "Could not load tasks: "+msg.err.Error())
		} else {
			m.tasks = msg.tasks
		}

	case msgTaskEvent:
		if !msg.ok {
			m.events = nil
			m.addEntry("system", "Event stream closed; the task list refreshes after each reply.")
			return m, nil
		}
		cmds = append(cmds, m.loadTasks(), m.waitForEvent())

	case spinner.TickMsg:
		if m.waiting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *ChatModel) addEntry(role, text string) {
	m.entries = append(m.entries, chatEntry{role: role, text: text})
	m.refreshTranscript()
}

func (m *ChatModel) resize() {
	chatWidth := max(m.width-taskPaneWidth-4, minChatWidth)
	m.viewport.Width = chatWidth
	m.viewport.Height = max(m.height-inputBoxHeight-headerHeight-2, 3)
	m.input.Width = chatWidth - 4
	m.refreshTranscript()
}

func (m *ChatModel) refreshTranscript() {
	width := max(m.viewport.Width-2, 10)
	var sb strings.Builder
	for i, e := range m.entries {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(renderEntry(e, width))
	}
	m.viewport.SetContent(sb.String())
	m.viewport.GotoBottom()
}

func renderEntry(e chatEntry, width int) string {
	var prefix string
	switch e.role {
	case "you":
		prefix = StylePrefixUser.Render("You")
	case "agent":
		prefix = StylePrefixAgent.Render("Agent")
	case "error":
		prefix = StylePrefixError.Render("Error")
	default:
		return StylePrefixSystem.Render(WrapText(e.text, width))
	}
	return prefix + "\n" + WrapText(e.text, width)
}

func (m ChatModel) View() string {
	if m.quitting {
		return ""
	}

	header := StyleHeader.Render("taskmate")
	if m.threadID != "" {
		header += StyleSubtle.Render(fmt.Sprintf(" thread %s", m.threadID))
	}

	status := ""
	if m.waiting {
		status = m.spinner.View() + StyleSubtle.Render(" thinking...")
	}
	left := lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		status,
		StyleInputBox.Width(m.viewport.Width).Render(m.input.View()),
	)

	open := 0
	for _, t := range m.tasks {
		if !t.Completed {
			open++
		}
	}
	paneTitle := StyleTitle.Render(fmt.Sprintf("Tasks (%d open)", open))
	right := StyleTaskPane.Width(taskPaneWidth).Render(paneTitle + "\n\n" + RenderTaskPane(m.tasks, taskPaneWidth-4))

	return header + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

// RunChat runs the interactive chat view until the user quits.
func RunChat(ctx context.Context, backend ChatBackend, opts ChatOptions) error {
	p := tea.NewProgram(NewChatModel(ctx, backend, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat view: %w", err)
	}
	return nil
}
