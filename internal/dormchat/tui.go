package dormchat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dorm2mcp/internal/dormchat/ui"
)

type chatReplyMsg struct {
	output string
	quit   bool
}

type chatModel struct {
	ctx       context.Context
	turn      TurnFunc
	viewport  viewport.Model
	textInput textinput.Model
	spinner   spinner.Model
	messages  []string
	isLoading bool
	ready     bool
	width     int
	height    int
}

func newChatModel(ctx context.Context, turn TurnFunc) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask about students, rooms or maintenance..."
	ti.Focus()
	ti.CharLimit = 1000
	ti.Width = 80

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ui.ClrBrand)

	banner := []string{
		ui.Brand.Render("=== Dormitory RAG System ==="),
		ui.Dim("Type 'exit' or 'quit' to stop."),
	}

	return chatModel{
		ctx:       ctx,
		turn:      turn,
		textInput: ti,
		spinner:   s,
		messages:  banner,
	}
}

// RunTUI starts the full-screen chat interface.
func RunTUI(ctx context.Context, turn TurnFunc) error {
	p := tea.NewProgram(newChatModel(ctx, turn), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	m.textInput, tiCmd = m.textInput.Update(msg)
	m.spinner, spCmd = m.spinner.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.isLoading {
				return m, nil
			}
			input := strings.TrimSpace(m.textInput.Value())
			if input == "" {
				return m, nil
			}
			m.textInput.SetValue("")

			switch strings.ToLower(input) {
			case "exit", "quit":
				return m, tea.Quit
			}

			m.messages = append(m.messages, ui.Prompt()+input)
			m.isLoading = true
			m.refreshViewport()
			return m, tea.Batch(m.turnCmd(input), m.spinner.Tick)
		}

	case tea.WindowSizeMsg:
		m.applyWindowSize(msg.Width, msg.Height)

	case chatReplyMsg:
		m.isLoading = false
		if msg.quit {
			return m, tea.Quit
		}
		if msg.output != "" {
			m.messages = append(m.messages, msg.output)
		}
		m.refreshViewport()
		return m, nil
	}

	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

func (m chatModel) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.isLoading {
		b.WriteString(m.spinner.View() + " ")
	} else {
		b.WriteString(ui.Prompt())
	}
	b.WriteString(m.textInput.View())
	b.WriteString("\n")
	b.WriteString(ui.Dim("esc to quit"))
	return b.String()
}

func (m *chatModel) refreshViewport() {
	m.viewport.SetContent(strings.Join(m.messages, "\n\n"))
	m.viewport.GotoBottom()
}

func (m *chatModel) applyWindowSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width = width
	m.height = height

	vpWidth := maxInt(width-2, 1)
	m.textInput.Width = maxInt(width-16, 1)
	vpHeight := maxInt(height-3, 1)

	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.viewport.SetContent(strings.Join(m.messages, "\n\n"))
		m.ready = true
		return
	}
	m.viewport.Width = vpWidth
	m.viewport.Height = vpHeight
}

func (m *chatModel) turnCmd(input string) tea.Cmd {
	return func() tea.Msg {
		return chatReplyMsg{output: m.turn(m.ctx, input)}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
