package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/vpypenode/pkg/node"
)

// errPickerAborted is returned when the user quits the picker without choosing.
var errPickerAborted = errors.New("no node selected")

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// NodePickerModel is the bubbletea model for interactive node selection.
// The parameters of the node under the cursor are shown below the list.
type NodePickerModel struct {
	Nodes    []node.Node
	Cursor   int
	Selected node.Node
}

// NewNodePickerModel creates a picker over nodes.
func NewNodePickerModel(nodes []node.Node) NodePickerModel {
	return NodePickerModel{Nodes: nodes}
}

func (m NodePickerModel) Init() tea.Cmd {
	return nil
}

func (m NodePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Nodes)-1 {
			m.Cursor++
		}
	case "enter":
		if len(m.Nodes) > 0 {
			m.Selected = m.Nodes[m.Cursor]
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m NodePickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Node"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	rows := make([][]string, len(m.Nodes))
	for i, n := range m.Nodes {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		info := n.Info()
		rows[i] = []string{cursor, info.DisplayName, info.Name, info.ReturnName}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Class", "Returns").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col >= 2 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")

	if len(m.Nodes) > 0 {
		for _, p := range m.Nodes[m.Cursor].Schema() {
			b.WriteString(listDimStyle.Render("  " + describeParam(p)))
			b.WriteString("\n")
		}
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("\n  [%d/%d]", m.Cursor+1, len(m.Nodes))))
	return b.String()
}

// pickNode runs the picker on the terminal and returns the chosen node.
// It draws on stderr so stdout can still be piped.
func pickNode(reg *node.Registry) (node.Node, error) {
	final, err := tea.NewProgram(NewNodePickerModel(reg.All()), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return nil, fmt.Errorf("node picker: %w", err)
	}
	m := final.(NodePickerModel)
	if m.Selected == nil {
		return nil, errPickerAborted
	}
	return m.Selected, nil
}
