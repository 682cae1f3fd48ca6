package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Pager styles
var (
	pagerCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	pagerDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	pagerMatchStyle  = lipgloss.NewStyle().Reverse(true)
)

// =============================================================================
// TreeViewModel - Interactive tree pager
// =============================================================================

// TreeViewModel is the bubbletea model for browsing a rendered tree.
// Typing "/" starts a search; enter jumps to the next line containing the
// query and "n" repeats the jump.
type TreeViewModel struct {
	Title     string
	Lines     []string
	Legend    []string
	Cursor    int
	Offset    int
	Height    int
	Query     string
	searching bool
}

// NewTreeViewModel creates a pager over the given tree and legend lines.
func NewTreeViewModel(title string, lines, legend []string) TreeViewModel {
	return TreeViewModel{
		Title:  title,
		Lines:  lines,
		Legend: legend,
		Height: 20,
	}
}

func (m TreeViewModel) Init() tea.Cmd {
	return nil
}

func (m TreeViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg), nil
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup", "b":
			m.move(-m.Height)
		case "pgdown", "f", " ":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.Lines))
		case "end", "G":
			m.move(len(m.Lines))
		case "/":
			m.searching = true
			m.Query = ""
		case "n":
			m.next()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-5-len(m.Legend), 5)
		m.move(0)
	}
	return m, nil
}

func (m TreeViewModel) updateSearch(msg tea.KeyMsg) TreeViewModel {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.next()
	case tea.KeyEsc, tea.KeyCtrlC:
		m.searching = false
		m.Query = ""
	case tea.KeyBackspace:
		if m.Query != "" {
			m.Query = m.Query[:len(m.Query)-1]
		}
	case tea.KeyRunes, tea.KeySpace:
		m.Query += string(msg.Runes)
	}
	return m
}

// move shifts the cursor by delta lines and keeps it inside the window.
func (m *TreeViewModel) move(delta int) {
	if len(m.Lines) == 0 {
		m.Cursor, m.Offset = 0, 0
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.Lines)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// next moves the cursor to the next line after it containing Query, wrapping
// around at the end.
func (m *TreeViewModel) next() {
	if m.Query == "" {
		return
	}
	for i := 1; i <= len(m.Lines); i++ {
		idx := (m.Cursor + i) % len(m.Lines)
		if strings.Contains(m.Lines[idx], m.Query) {
			m.move(idx - m.Cursor)
			return
		}
	}
}

func (m TreeViewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(pagerDimStyle.Render("↑/↓ scroll  / search  n next  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Lines))
	for i := m.Offset; i < end; i++ {
		line := m.Lines[i]
		switch {
		case i == m.Cursor:
			b.WriteString(pagerCursorStyle.Render("▸ ") + m.highlight(line))
		default:
			b.WriteString("  " + m.highlight(line))
		}
		b.WriteString("\n")
	}
	for _, l := range m.Legend {
		b.WriteString(styleLegend.Render(l) + "\n")
	}

	b.WriteString("\n")
	if m.searching {
		b.WriteString("/" + m.Query)
	} else {
		b.WriteString(pagerDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.Lines)), len(m.Lines))))
	}
	return b.String()
}

func (m TreeViewModel) highlight(line string) string {
	if m.Query == "" || m.searching {
		return styleLine(line)
	}
	before, after, ok := strings.Cut(line, m.Query)
	if !ok {
		return styleLine(line)
	}
	return before + pagerMatchStyle.Render(m.Query) + after
}

// runPager shows the tree in an interactive pager until the user quits.
func runPager(title string, lines, legend []string) error {
	_, err := tea.NewProgram(NewTreeViewModel(title, lines, legend), tea.WithAltScreen()).Run()
	return err
}
