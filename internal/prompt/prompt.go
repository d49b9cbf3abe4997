// Package prompt asks for the details of a new project in the terminal.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/oseda-dev/oseda/internal/models"
)

// MinTitleLength is the shortest title accepted.
const MinTitleLength = 2

// ErrAborted is returned when the user quits before answering every question.
var ErrAborted = errors.New("init aborted")

// Answers holds everything init asks for.
type Answers struct {
	Title      string
	Categories []models.Category
	Color      models.Color
	Template   models.Template
}

type step int

const (
	stepTitle step = iota
	stepCategories
	stepColor
	stepTemplate
	stepDone
)

var (
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	hintStyle     = lipgloss.NewStyle().Faint(true)
)

// Model is the bubbletea model for the init questions.
type Model struct {
	step     step
	title    textinput.Model
	cursor   int
	selected map[int]bool
	answers  Answers
	err      string
	aborted  bool
}

// New creates a Model positioned on the first question.
func New() Model {
	ti := textinput.New()
	ti.Placeholder = "algo-101"
	ti.CharLimit = 80
	ti.Width = 40
	ti.Focus()
	return Model{title: ti, selected: map[int]bool{}}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.step == stepTitle {
			var cmd tea.Cmd
			m.title, cmd = m.title.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc":
		m.aborted = true
		return m, tea.Quit
	}

	if m.step == stepTitle {
		if key.String() == "enter" {
			return m.submitTitle()
		}
		var cmd tea.Cmd
		m.title, cmd = m.title.Update(msg)
		m.err = ""
		return m, cmd
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.options()-1 {
			m.cursor++
		}
	case " ", "x":
		if m.step == stepCategories {
			m.selected[m.cursor] = !m.selected[m.cursor]
			m.err = ""
		}
	case "enter":
		return m.submitChoice()
	}
	return m, nil
}

func (m Model) submitTitle() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.title.Value())
	if utf8.RuneCountInString(raw) < MinTitleLength {
		m.err = fmt.Sprintf("title must be at least %d characters", MinTitleLength)
		return m, nil
	}
	m.answers.Title = models.NormalizeTitle(raw)
	m.title.Blur()
	m.err = ""
	m.step = stepCategories
	m.cursor = 0
	return m, nil
}

func (m Model) submitChoice() (tea.Model, tea.Cmd) {
	switch m.step {
	case stepCategories:
		var picked []models.Category
		for i, c := range models.AllCategories() {
			if m.selected[i] {
				picked = append(picked, c)
			}
		}
		if len(picked) == 0 {
			m.err = "select at least one category with space"
			return m, nil
		}
		m.answers.Categories = picked
	case stepColor:
		m.answers.Color = models.AllColors()[m.cursor]
	case stepTemplate:
		m.answers.Template = models.AllTemplates()[m.cursor]
	}
	m.err = ""
	m.cursor = 0
	m.step++
	if m.step == stepDone {
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) options() int {
	switch m.step {
	case stepCategories:
		return len(models.AllCategories())
	case stepColor:
		return len(models.AllColors())
	case stepTemplate:
		return len(models.AllTemplates())
	default:
		return 0
	}
}

// View renders the current question.
func (m Model) View() string {
	var b strings.Builder
	switch m.step {
	case stepTitle:
		b.WriteString(questionStyle.Render("Title") + "\n")
		b.WriteString(m.title.View() + "\n")
	case stepCategories:
		b.WriteString(questionStyle.Render("Categories") + " " + hintStyle.Render("(space to toggle, enter to confirm)") + "\n")
		for i, c := range models.AllCategories() {
			box := "[ ]"
			if m.selected[i] {
				box = "[x]"
			}
			b.WriteString(m.line(i, box+" "+c.Label()))
		}
	case stepColor:
		b.WriteString(questionStyle.Render("Color") + "\n")
		for i, c := range models.AllColors() {
			swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render("██")
			b.WriteString(m.line(i, swatch+" "+string(c)))
		}
	case stepTemplate:
		b.WriteString(questionStyle.Render("Template") + "\n")
		for i, t := range models.AllTemplates() {
			b.WriteString(m.line(i, string(t)))
		}
	case stepDone:
		return ""
	}
	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err) + "\n")
	}
	b.WriteString(hintStyle.Render("esc to cancel") + "\n")
	return b.String()
}

func (m Model) line(i int, text string) string {
	if i == m.cursor {
		return cursorStyle.Render("> "+text) + "\n"
	}
	return "  " + text + "\n"
}

// Answers returns the collected answers, or ErrAborted if the prompt did not finish.
func (m Model) Answers() (Answers, error) {
	if m.aborted || m.step != stepDone {
		return Answers{}, ErrAborted
	}
	return m.answers, nil
}

// Run asks every question on the given terminal streams.
func Run(in io.Reader, out io.Writer) (Answers, error) {
	p := tea.NewProgram(New(), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return Answers{}, fmt.Errorf("run prompt: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return Answers{}, ErrAborted
	}
	return m.Answers()
}
