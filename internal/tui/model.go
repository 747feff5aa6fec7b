// Package tui is an interactive chat over the question answering service.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/elsayed85/quick-rag/internal/service"
)

// Asker is the TUI-facing subset of the service.
type Asker interface {
	Ask(ctx context.Context, req service.AskRequest) (*service.AskResponse, error)
}

// exchange is one question and its outcome.
type exchange struct {
	question string
	resp     *service.AskResponse
	err      error
}

type answerMsg struct {
	resp *service.AskResponse
	err  error
}

// Model is the Bubble Tea model for the chat.
type Model struct {
	ctx      context.Context
	service  Asker
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	summary  string
	history  []exchange
	pending  string
	status   string
	ready    bool
}

// New creates a chat model. summary is shown under the title.
func New(ctx context.Context, svc Asker, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question about your books and press Enter"
	ti.Focus()
	ti.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))

	return Model{
		ctx:      ctx,
		service:  svc,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		summary:  summary,
		status:   "Ready. Ctrl+C to quit.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header, summary, status, input
		m.viewport.Width = max(20, msg.Width-4)
		m.viewport.Height = max(3, msg.Height-reserved-ch)
		m.input.Width = max(10, msg.Width-6)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyEnter:
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.pending != "" {
				return m, nil
			}
			m.pending = q
			m.input.Reset()
			m.status = "Thinking..."
			m.refresh()
			return m, tea.Batch(m.spinner.Tick, m.ask(q))
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case answerMsg:
		m.history = append(m.history, exchange{question: m.pending, resp: msg.resp, err: msg.err})
		m.pending = ""
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("Answered (%s, %d rewrites).", msg.resp.Route, msg.resp.Rewrites)
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if m.pending == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(q string) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.service.Ask(m.ctx, service.AskRequest{Question: q, IncludeSources: true})
		return answerMsg{resp: resp, err: err}
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render("School Books Assistant")
	summary := mutedStyle.Render(m.summary)
	chat := chatBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + summary + "\n" + chat + "\n" + input + "\n" + status
}

// refresh re-renders the transcript and keeps the newest message in view.
func (m *Model) refresh() {
	m.viewport.SetContent(m.transcript())
	m.viewport.GotoBottom()
}

func (m Model) transcript() string {
	if len(m.history) == 0 && m.pending == "" {
		return mutedStyle.Render("No questions yet.")
	}
	var b strings.Builder
	for _, ex := range m.history {
		b.WriteString(renderExchange(ex))
		b.WriteString("\n")
	}
	if m.pending != "" {
		b.WriteString(questionStyle.Render("You: " + m.pending))
		b.WriteString("\n" + m.spinner.View() + " working...\n")
	}
	return b.String()
}

func renderExchange(ex exchange) string {
	var b strings.Builder
	b.WriteString(questionStyle.Render("You: " + ex.question))
	b.WriteString("\n")
	if ex.err != nil {
		b.WriteString(errorStyle.Render("Error: " + ex.err.Error()))
		b.WriteString("\n")
		return b.String()
	}
	for _, step := range ex.resp.Trace {
		b.WriteString(traceStyle.Render("  · " + step.String()))
		b.WriteString("\n")
	}
	b.WriteString(answerStyle.Render(ex.resp.Answer))
	b.WriteString("\n")
	for i, src := range ex.resp.Sources {
		b.WriteString(sourceStyle.Render(fmt.Sprintf("  [%d] %s, page %d", i+1, src.SourceFile, src.Page)))
		b.WriteString("\n      ")
		b.WriteString(highlightBestSentence(src.ContentPreview, ex.question))
		b.WriteString("\n")
	}
	return b.String()
}
