package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/typediagram/pkg/diagram"
	"github.com/matzehuels/typediagram/pkg/infer"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// SampleListModel - Interactive sample selection
// =============================================================================

// SampleListModel is the bubbletea model for picking an example program.
type SampleListModel struct {
	Samples  []infer.Sample
	Cursor   int
	Selected *infer.Sample
	Height   int
	Offset   int
}

// NewSampleListModel creates a new sample list model.
func NewSampleListModel(samples []infer.Sample) SampleListModel {
	return SampleListModel{
		Samples: samples,
		Height:  15,
	}
}

func (m SampleListModel) Init() tea.Cmd {
	return nil
}

func (m SampleListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Samples)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Samples) == 0 {
				return m, nil
			}
			s := m.Samples[m.Cursor]
			m.Selected = &s
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m SampleListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Sample"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Samples))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		s := m.Samples[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, infer.SampleSlug(s.Name), s.Expression})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Sample", "Expression").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col == 2 {
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Samples))))

	return b.String()
}

// =============================================================================
// PanelPickerModel - Interactive panel selection
// =============================================================================

// PanelPickerModel toggles which panels of a typing result get drawn.
type PanelPickerModel struct {
	Panels  []string
	Chosen  map[string]bool
	Cursor  int
	Done    bool
	Aborted bool
}

// NewPanelPickerModel creates a picker with every panel chosen.
func NewPanelPickerModel() PanelPickerModel {
	m := PanelPickerModel{
		Panels: append([]string(nil), diagram.PanelNames...),
		Chosen: make(map[string]bool, len(diagram.PanelNames)),
	}
	for _, p := range m.Panels {
		m.Chosen[p] = true
	}
	return m
}

// Selection returns the chosen panels in display order.
func (m PanelPickerModel) Selection() []string {
	var out []string
	for _, p := range m.Panels {
		if m.Chosen[p] {
			out = append(out, p)
		}
	}
	return out
}

func (m PanelPickerModel) Init() tea.Cmd {
	return nil
}

func (m PanelPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		m.Aborted = true
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Panels)-1 {
			m.Cursor++
		}
	case " ", "x":
		p := m.Panels[m.Cursor]
		m.Chosen[p] = !m.Chosen[p]
	case "enter":
		if len(m.Selection()) == 0 {
			return m, nil
		}
		m.Done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m PanelPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Panels"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("arrows: navigate  space: toggle  enter: confirm  q: quit"))
	b.WriteString("\n\n")

	for i, p := range m.Panels {
		cursor := "  "
		if i == m.Cursor {
			cursor = "> "
		}
		mark := "[ ]"
		if m.Chosen[p] {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s%s %s", cursor, mark, p)

		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case m.Chosen[p]:
			b.WriteString(listNormalStyle.Render(line))
		default:
			b.WriteString(listDimStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// formatDuration rounds d for display.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
}
