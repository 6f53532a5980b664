package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/fluxlab/flowsheet/pkg/flow"
	"github.com/fluxlab/flowsheet/pkg/model"
	"github.com/fluxlab/flowsheet/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// inspectCommand creates the inspect command for browsing snapshot components.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [snapshot]",
		Short: "Browse a snapshot's components interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(args[0])
		},
	}
}

// runInspect loads the snapshot, computes the layout, and opens the
// component browser. Selecting a component prints its details after the
// program exits.
func (c *CLI) runInspect(input string) error {
	s, err := model.ReadFile(input)
	if err != nil {
		return err
	}
	g, err := model.BuildGraph(s, c.Logger)
	if err != nil {
		return err
	}

	opts := c.pipelineOptions()
	opts.SetLayoutDefaults()
	positions := pipeline.ComputeLayout(g, opts)

	m := newInspectModel(s, g, positions)
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return fmt.Errorf("run component browser: %w", err)
	}

	if fm, ok := final.(inspectModel); ok && fm.selected != nil {
		printComponent(*fm.selected)
	}
	return nil
}

// =============================================================================
// inspectModel - Interactive component browser
// =============================================================================

// componentRow is one line in the component browser.
type componentRow struct {
	name    string
	kind    string
	carrier string
	degree  int
	pos     flow.Point
	placed  bool
}

// inspectModel is the bubbletea model for the component browser.
type inspectModel struct {
	title    string
	rows     []componentRow
	cursor   int
	height   int
	offset   int
	selected *componentRow
}

// newInspectModel builds browser rows from the snapshot and layout.
// Connection components appear without kind-specific geometry: they are
// edges in the graph, so they carry no position.
func newInspectModel(s model.Snapshot, g *flow.Graph, positions map[string]flow.Point) inspectModel {
	title := s.Name
	if title == "" {
		title = "snapshot"
	}

	rows := make([]componentRow, 0, len(s.Components))
	for _, comp := range s.Components {
		row := componentRow{
			name:    comp.Name,
			kind:    comp.Tag(),
			carrier: comp.Carrier,
		}
		if _, ok := g.Vertex(comp.Name); ok {
			row.degree = g.Degree(comp.Name)
			if pos, placed := positions[comp.Name]; placed {
				row.pos = pos
				row.placed = true
			}
		}
		rows = append(rows, row)
	}

	return inspectModel{
		title:  title,
		rows:   rows,
		height: 15,
	}
}

func (m inspectModel) Init() tea.Cmd {
	return nil
}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			if len(m.rows) > 0 {
				row := m.rows[m.cursor]
				m.selected = &row
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m inspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Components: " + m.title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		r := m.rows[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		carrier := r.carrier
		if carrier == "" {
			carrier = "—"
		}

		rows = append(rows, []string{cursor, r.name, r.kind, carrier, fmt.Sprintf("%d", r.degree), formatPosition(r)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Component", "Kind", "Carrier", "Degree", "Position").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.offset + row
			if actualIdx >= len(m.rows) {
				return lipgloss.NewStyle()
			}
			r := m.rows[actualIdx]

			if actualIdx == m.cursor {
				if r.placed {
					return listSelectedStyle
				}
				return lipgloss.NewStyle().Foreground(colorDim).Bold(true)
			}
			if !r.placed {
				return listDimStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.rows))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// formatPosition renders a row's layout position, or a dash for
// components that are not part of the laid-out graph.
func formatPosition(r componentRow) string {
	if !r.placed {
		return "—"
	}
	return fmt.Sprintf("(%.0f, %.0f)", r.pos.X, r.pos.Y)
}

// printComponent prints the selected component's details.
func printComponent(r componentRow) {
	printKeyValue("component", r.name)
	printKeyValue("kind", r.kind)
	if r.carrier != "" {
		printKeyValue("carrier", r.carrier)
	}
	printKeyValue("degree", fmt.Sprintf("%d", r.degree))
	printKeyValue("position", formatPosition(r))
}
