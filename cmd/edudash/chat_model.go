package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/habiliai/edudash/aichat"
	"github.com/habiliai/edudash/conversation"
	"github.com/habiliai/edudash/internal/stringutils"
)

const (
	listWidth   = 34
	inputHeight = 2
)

// wallpapers are cycled with ctrl+w; the empty one is the terminal default.
var wallpapers = []string{"", "235", "17", "22", "52"}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("24")).Bold(true)
	unreadStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("160")).Padding(0, 1)
	senderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("67")).Bold(true)
	failedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	listStyle     = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderRight(true).BorderForeground(lipgloss.Color("240"))
)

type (
	changedMsg  struct{}
	selectedMsg struct{ route conversation.Route }
	errMsg      struct{ err error }
)

type chatModel struct {
	ctx   context.Context
	view  *conversation.View
	store *aichat.Store

	cursor int
	aiMode bool
	status string

	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	width    int
	height   int
}

func newChatModel(ctx context.Context, view *conversation.View, store *aichat.Store) *chatModel {
	input := textarea.New()
	input.Placeholder = "Write a message…"
	input.ShowLineNumbers = false
	input.SetHeight(inputHeight)
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &chatModel{
		ctx:      ctx,
		view:     view,
		store:    store,
		input:    input,
		viewport: viewport.New(0, 0),
		spinner:  sp,
	}
}

func (m *chatModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, m.waitForChange())
}

func (m *chatModel) waitForChange() tea.Cmd {
	changes := m.view.Changes()
	return func() tea.Msg {
		select {
		case <-changes:
			return changedMsg{}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.refresh()
		return m, nil
	case changedMsg:
		m.refresh()
		return m, m.waitForChange()
	case selectedMsg:
		m.aiMode = msg.route == conversation.RouteAIChat
		m.status = ""
		m.refresh()
		return m, nil
	case errMsg:
		m.status = msg.err.Error()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *chatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.aiMode = false
		m.view.HandleKey(conversation.KeyEvent{Key: conversation.KeyEscape})
		m.input.Reset()
		return m, nil
	}

	if !m.aiMode && m.view.State().Selection == conversation.SelectionNone {
		items := m.view.Threads()
		switch msg.String() {
		case "up", "k":
			m.cursor = max(m.cursor-1, 0)
		case "down", "j":
			m.cursor = min(m.cursor+1, len(items)-1)
		case "enter":
			if m.cursor < len(items) {
				return m, m.selectThread(items[m.cursor].ItemID())
			}
		case "q":
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		if !m.aiMode && m.input.Value() == "" {
			m.view.HandleKey(conversation.KeyEvent{Key: conversation.KeyClear})
			return m, nil
		}
	case "ctrl+r":
		return m, m.retryFailed()
	case "ctrl+w":
		return m, m.cycleWallpaper()
	case "enter":
		text := m.input.Value()
		m.input.Reset()
		if m.aiMode {
			return m, m.askAssistant(text)
		}
		m.view.SetComposeText(m.ctx, text)
		return m, m.send()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if !m.aiMode {
		m.view.SetComposeText(m.ctx, m.input.Value())
	}
	return m, cmd
}

func (m *chatModel) selectThread(threadID string) tea.Cmd {
	return func() tea.Msg {
		route, err := m.view.SelectThread(m.ctx, threadID)
		if err != nil {
			return errMsg{err}
		}
		return selectedMsg{route}
	}
}

func (m *chatModel) send() tea.Cmd {
	return func() tea.Msg {
		if err := m.view.Send(m.ctx); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m *chatModel) retryFailed() tea.Cmd {
	messages := m.view.Messages()
	i := slices.IndexFunc(messages, func(v conversation.MessageView) bool {
		return v.Status == conversation.StatusFailed
	})
	if i < 0 {
		return nil
	}
	id := messages[i].ID
	return func() tea.Msg {
		if err := m.view.RetrySend(m.ctx, id); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m *chatModel) cycleWallpaper() tea.Cmd {
	next := wallpapers[(slices.Index(wallpapers, m.view.Wallpaper())+1)%len(wallpapers)]
	return func() tea.Msg {
		if err := m.view.SetWallpaper(m.ctx, next); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m *chatModel) askAssistant(text string) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.store.Send(m.ctx, text); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m *chatModel) layout() {
	m.viewport.Width = max(m.width-listWidth-1, 10)
	m.viewport.Height = max(m.height-inputHeight-3, 3)
	m.input.SetWidth(m.viewport.Width)
}

func (m *chatModel) refresh() {
	var lines []string
	if m.aiMode {
		for _, msg := range m.store.Messages() {
			name := "you"
			if msg.Role == aichat.RoleAssistant {
				name = m.store.AssistantName()
			}
			lines = append(lines, senderStyle.Render(name)+" "+dimStyle.Render(humanize.Time(msg.CreatedAt)), msg.Content, "")
		}
	} else {
		for _, msg := range m.view.Messages() {
			lines = append(lines, renderMessage(msg)...)
		}
	}

	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.GotoBottom()
}

func renderMessage(msg conversation.MessageView) []string {
	name := msg.SenderName
	if name == "" {
		name = msg.SenderID
	}
	header := senderStyle.Render(name) + " " + dimStyle.Render(humanize.Time(msg.CreatedAt))
	if msg.EditedAt != nil {
		header += dimStyle.Render(" (edited)")
	}
	if msg.ForwardedFromID != nil {
		header += dimStyle.Render(" (forwarded)")
	}

	var lines []string
	lines = append(lines, header)
	if msg.Reply != nil {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("↪ %s: %s", msg.Reply.SenderName, stringutils.Ellipsis(msg.Reply.Content, 40))))
	}
	lines = append(lines, msg.Content)

	var footer []string
	for _, g := range msg.Reactions {
		footer = append(footer, fmt.Sprintf("%s %d", g.Emoji, g.Count))
	}
	switch msg.Status {
	case conversation.StatusPending:
		footer = append(footer, dimStyle.Render("sending…"))
	case conversation.StatusFailed:
		footer = append(footer, failedStyle.Render("failed, ctrl+r to retry"))
	}
	if len(footer) > 0 {
		lines = append(lines, strings.Join(footer, "  "))
	}

	return append(lines, "")
}

func (m *chatModel) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			listStyle.Width(listWidth).Height(max(m.height-1, 1)).Render(m.renderThreads()),
			m.renderConversation(),
		),
		dimStyle.Render(m.statusLine()),
	)
}

func (m *chatModel) renderThreads() string {
	state := m.view.State()
	var rows []string
	for i, item := range m.view.Threads() {
		title := stringutils.Ellipsis(item.Title(), listWidth-8)
		var badge, preview string
		switch t := item.(type) {
		case conversation.VirtualThread:
			preview = t.Preview
			if t.Loading {
				badge = m.spinner.View()
			}
		case conversation.RemoteThread:
			if t.LastMessage != nil {
				preview = t.LastMessage.Content
			}
			if t.UnreadCount > 0 {
				badge = unreadStyle.Render(fmt.Sprint(t.UnreadCount))
			}
			if t.Thread.Student != nil {
				title = stringutils.Ellipsis(title+" · "+t.Thread.Student.DisplayName(), listWidth-8)
			}
		}

		row := title + " " + badge
		selected := item.ItemID() == state.ThreadID || (state.Selection == conversation.SelectionNone && i == m.cursor)
		if selected {
			row = selectedStyle.Render(row)
		} else {
			row = titleStyle.Render(title) + " " + badge
		}
		rows = append(rows, row, dimStyle.Render(stringutils.Ellipsis(preview, listWidth-2)+" "+since(item)))
	}
	if err := state.Err; err != nil {
		rows = append(rows, failedStyle.Render("failed to load threads"))
	}

	return strings.Join(rows, "\n")
}

func (m *chatModel) renderConversation() string {
	state := m.view.State()
	if state.Selection == conversation.SelectionNone && !m.aiMode {
		return dimStyle.Render("  select a thread with ↑/↓ and enter")
	}

	header := titleStyle.Render(m.currentTitle())
	switch {
	case state.Loading:
		header += " " + m.spinner.View()
	case m.aiMode && m.store.Loading():
		header += " " + m.spinner.View() + dimStyle.Render(" thinking")
	case state.CounterpartTyping:
		header += dimStyle.Render(" typing…")
	}

	pane := lipgloss.NewStyle()
	if wp := m.view.Wallpaper(); wp != "" {
		pane = pane.Background(lipgloss.Color(wp))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, pane.Render(m.viewport.View()), m.input.View())
}

func (m *chatModel) currentTitle() string {
	if m.aiMode {
		return m.store.AssistantName()
	}
	threadID := m.view.State().ThreadID
	for _, item := range m.view.Threads() {
		if item.ItemID() == threadID {
			return item.Title()
		}
	}
	return threadID
}

func (m *chatModel) statusLine() string {
	if m.status != "" {
		return m.status
	}
	if m.view.State().Selection == conversation.SelectionNone && !m.aiMode {
		return "enter: open  q: quit"
	}
	return "enter: send  esc: back  ctrl+w: wallpaper  ctrl+r: retry"
}
