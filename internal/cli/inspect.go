package cli

import (
	"fmt"
	"sort"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/canopyhq/canopy/pkg/geometry"
	"github.com/canopyhq/canopy/pkg/scene"
	"github.com/canopyhq/canopy/pkg/stacking"
)

// inspectCommand creates the inspect command: an interactive stacking-order
// explorer. Selecting a container scene simulates a touch event, so the
// effect of interaction recency on z-order is visible immediately.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [document]",
		Short: "Interactively explore stacking order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := scene.ReadDocumentFile(args[0])
			if err != nil {
				return err
			}
			m := newInspectModel(s)
			_, err = tea.NewProgram(m).Run()
			return err
		},
	}
}

// inspectModel is the bubbletea model for the stacking explorer.
type inspectModel struct {
	scene   *scene.Scene
	touched *stacking.TouchList
	nodes   []*scene.Node
	cursor  int
}

func newInspectModel(s *scene.Scene) inspectModel {
	return inspectModel{
		scene:   s,
		touched: stacking.NewTouchList(),
		nodes:   s.Nodes(),
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
			}
		case "down", "j":
			if m.cursor < len(m.nodes)-1 {
				m.cursor++
			}
		case "enter", " ":
			n := m.nodes[m.cursor]
			// Touching targets the containing scene, as a click on the
			// canvas would.
			id := n.ID
			if n.ParentID != "" {
				if _, ok := m.scene.Node(n.ParentID); ok {
					id = n.ParentID
				}
			}
			m.touched.Touch(id)
		case "r":
			m.touched.Reset()
		}
	}
	return m, nil
}

func (m inspectModel) View() string {
	assigner := stacking.NewAssigner(m.scene, m.touched)
	resolver := geometry.NewResolver(m.scene, nil)

	type row struct {
		node *scene.Node
		z    int
	}
	rows := make([]row, len(m.nodes))
	for i, n := range m.nodes {
		rows[i] = row{node: n, z: assigner.ZIndexForNode(n.ID)}
	}
	ordered := make([]row, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].z > ordered[j].z })

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("", "NODE", "PARENT", "Z", "POSITION")

	selected := m.nodes[m.cursor].ID
	for _, r := range ordered {
		marker := " "
		if r.node.ID == selected {
			marker = "▸"
		}
		pos := "?"
		if abs, provisional, err := resolver.AbsolutePosition(r.node.ID); err == nil {
			pos = fmt.Sprintf("(%g, %g)", abs.X, abs.Y)
			if provisional {
				pos += " ~"
			}
		}
		tbl.Row(marker, r.node.ID, r.node.ParentID, strconv.Itoa(r.z), pos)
	}

	header := StyleTitle.Render("Stacking order") + "  " +
		StyleDim.Render(fmt.Sprintf("%d nodes, %d touched", len(m.nodes), m.touched.Len()))
	help := StyleDim.Render("↑/↓ select · enter touch · r reset · q quit")

	return header + "\n" + tbl.Render() + "\n" + help + "\n"
}
