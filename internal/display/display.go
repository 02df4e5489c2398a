// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type keeps a catalog status bar and an input prompt at the
// bottom of the terminal. All application output is printed above the
// rendered area via Program.Println / Printf, so concurrent writes never
// garble the display.
package display

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/recipebook/internal/catalog"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	liveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	mockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a")).
			Italic(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// BannerStyle is muted slate for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd")).
			Bold(true)

	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	urgentOutputStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fca5a5"))

	userInputEchoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a1a1aa"))
)

const prompt = "recipes> "

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may safely call
// [UI.Println], [UI.Printf], [UI.SetState] and read from [UI.InputChan]
// at any time after [UI.WaitReady] returns.
type UI struct {
	program *tea.Program
	inputCh chan string
	readyCh chan struct{}
	quitCh  chan struct{}
	initial catalog.State
	done    atomic.Bool
}

// NewUI creates the display with the state shown until the first update.
func NewUI(initial catalog.State) *UI {
	return &UI{
		initial: initial,
		inputCh: make(chan string, 16),
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
}

// Println prints a line above the prompt. Thread-safe. Falls back to
// fmt.Println before the program starts or after it ends.
func (u *UI) Println(a ...any) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// Printf prints formatted text above the prompt on its own line.
func (u *UI) Printf(format string, a ...any) {
	if u.program != nil && !u.done.Load() {
		u.program.Printf(format, a...)
	} else {
		fmt.Printf(format+"\n", a...)
	}
}

// SetState refreshes the status bar. Safe to pass to catalog.Store.Subscribe.
func (u *UI) SetState(st catalog.State) {
	if u.program != nil && !u.done.Load() {
		u.program.Send(stateMsg(st))
	}
}

// InputChan returns completed user-input lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// ── Styled print helpers ─────────────────────────────────────────

// PrintBlock prints pre-rendered multi-line output as is.
func (u *UI) PrintBlock(text string) {
	u.Println(strings.TrimRight(text, "\n"))
}

// PrintSuccess prints a confirmation line.
func (u *UI) PrintSuccess(text string) {
	u.Println(successStyle.Render("  " + text))
}

// PrintInfo prints a plain informational line.
func (u *UI) PrintInfo(text string) {
	u.Println(primaryStyle.Render("  " + text))
}

// PrintHint prints a secondary, dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(secondaryStyle.Render("  " + text))
}

// PrintUrgent prints an error line.
func (u *UI) PrintUrgent(text string) {
	u.Println(urgentOutputStyle.Render("  " + text))
}

// PrintUserInput echoes the user's typed command into the scrollback.
func (u *UI) PrintUserInput(text string) {
	u.Println(promptStyle.Render("recipes") + secondaryStyle.Render("> ") + userInputEchoStyle.Render(text))
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	ti := textinput.New()
	// Plain-text prompt: styled prompts add ANSI bytes that break the
	// textinput width math.
	ti.Prompt = prompt
	ti.PromptStyle = promptStyle
	ti.TextStyle = userInputEchoStyle
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60 // updated on first WindowSizeMsg

	m := model{
		state:   u.initial,
		input:   ti,
		inputCh: u.inputCh,
		readyCh: u.readyCh,
		echoFn:  u.PrintUserInput,
	}

	u.program = tea.NewProgram(m)
	_, err := u.program.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	state   catalog.State
	input   textinput.Model
	inputCh chan<- string
	readyCh chan struct{}
	echoFn  func(string)
	width   int
}

type stateMsg catalog.State

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		signalReady(m.readyCh),
		tea.SetWindowTitle(WindowTitle(m.state)),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			v := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(v) != "" {
				m.inputCh <- v
				// Echo from a Cmd so Println does not re-enter Update.
				echoFn := m.echoFn
				return m, func() tea.Msg {
					echoFn(v)
					return nil
				}
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > len(prompt) {
			m.input.Width = msg.Width - len(prompt)
		}
		return m, nil

	case stateMsg:
		m.state = catalog.State(msg)
		return m, tea.SetWindowTitle(WindowTitle(m.state))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(m.renderBar())
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	return b.String()
}

func (m model) renderBar() string {
	parts := []string{modeBadge(m.state.MockMode)}
	for _, seg := range statusSegments(m.state) {
		parts = append(parts, labelStyle.Render(seg))
	}
	if m.state.Loading {
		parts = append(parts, loadingStyle.Render("loading…"))
	}

	content := " " + strings.Join(parts, sepStyle.Render("  │  ")) + " "

	w := m.width
	if w <= 0 {
		w = 80
	}
	return barBg.Width(w).Render(content)
}

func modeBadge(mock bool) string {
	if mock {
		return mockStyle.Render("MOCK")
	}
	return liveStyle.Render("LIVE")
}
