package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depends/pkg/graph"
)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <graph.json>",
		Short: "Explore a saved graph in the terminal",
		Long: `Open an interactive three-pane browser over a saved graph: every node on
the left, the selected node's dependencies in the middle and its dependents
on the right.

Keys:
  ↑/↓ j/k   move        tab        switch pane
  ⏎         jump to the highlighted dependency or dependent
  q         quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGraph(args[0])
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(newBrowseModel(g), tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

// =============================================================================
// Styles
// =============================================================================

var (
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
	paneFocusedStyle = paneStyle.BorderForeground(colorCyan)
	paneTitleStyle   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	selectedStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
)

// =============================================================================
// browseModel
// =============================================================================

type pane int

const (
	paneNodes pane = iota
	paneOutgoing
	paneIncoming
	paneCount
)

// browseModel is the bubbletea model for the graph browser.
type browseModel struct {
	g     *graph.Graph
	nodes []graph.Node

	focus   pane
	cursors [paneCount]int
	offset  int // first visible row of the node pane

	width  int
	height int
}

func newBrowseModel(g *graph.Graph) browseModel {
	m := browseModel{g: g, nodes: g.Nodes(), width: 120, height: 24}
	m.selectNode(g.Root().ID)
	return m
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.focus = (m.focus + 1) % paneCount
		case "shift+tab":
			m.focus = (m.focus + paneCount - 1) % paneCount
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "enter":
			m.follow()
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.scroll()
	}
	return m, nil
}

// selected returns the node highlighted in the node pane.
func (m browseModel) selected() graph.Node {
	return m.nodes[m.cursors[paneNodes]]
}

// outgoing lists the selected node's package and assembly dependencies.
func (m browseModel) outgoing() []graph.Edge {
	var out []graph.Edge
	for _, e := range m.g.Outgoing(m.selected().ID) {
		if e.End.Kind == graph.KindPackage || e.End.Kind == graph.KindAssembly {
			out = append(out, e)
		}
	}
	return out
}

func (m browseModel) incoming() []graph.Edge {
	return m.g.Incoming(m.selected().ID)
}

func (m browseModel) paneLen(p pane) int {
	switch p {
	case paneOutgoing:
		return len(m.outgoing())
	case paneIncoming:
		return len(m.incoming())
	}
	return len(m.nodes)
}

func (m *browseModel) move(delta int) {
	n := m.paneLen(m.focus)
	if n == 0 {
		return
	}
	c := min(max(m.cursors[m.focus]+delta, 0), n-1)
	m.cursors[m.focus] = c
	if m.focus == paneNodes {
		m.cursors[paneOutgoing], m.cursors[paneIncoming] = 0, 0
		m.scroll()
	}
}

// follow moves the node cursor to the other end of the highlighted edge.
func (m *browseModel) follow() {
	var target graph.Node
	switch m.focus {
	case paneOutgoing:
		out := m.outgoing()
		if len(out) == 0 {
			return
		}
		target = out[m.cursors[paneOutgoing]].End
	case paneIncoming:
		in := m.incoming()
		if len(in) == 0 {
			return
		}
		target = in[m.cursors[paneIncoming]].Start
	default:
		return
	}
	m.selectNode(target.ID)
	m.focus = paneNodes
}

func (m *browseModel) selectNode(id string) {
	for i, n := range m.nodes {
		if strings.EqualFold(n.ID, id) {
			m.cursors = [paneCount]int{paneNodes: i}
			m.scroll()
			return
		}
	}
}

// rows is the number of list rows that fit in a pane.
func (m browseModel) rows() int {
	return max(m.height-6, 3)
}

func (m *browseModel) scroll() {
	c, rows := m.cursors[paneNodes], m.rows()
	if c < m.offset {
		m.offset = c
	}
	if c >= m.offset+rows {
		m.offset = c - rows + 1
	}
}

func (m browseModel) View() string {
	paneWidth := max(m.width/3-4, 20)

	nodeLines := make([]string, 0, m.rows())
	end := min(m.offset+m.rows(), len(m.nodes))
	for i := m.offset; i < end; i++ {
		nodeLines = append(nodeLines, m.line(paneNodes, i, kindLabel(m.nodes[i])))
	}

	var outLines, inLines []string
	for i, e := range m.outgoing() {
		outLines = append(outLines, m.line(paneOutgoing, i, edgeLabel(e, e.End)))
	}
	for i, e := range m.incoming() {
		inLines = append(inLines, m.line(paneIncoming, i, edgeLabel(e, e.Start)))
	}

	sel := m.selected()
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.pane(paneNodes, fmt.Sprintf("Nodes (%d)", len(m.nodes)), nodeLines, paneWidth),
		m.pane(paneOutgoing, fmt.Sprintf("Depends on (%d)", len(outLines)), outLines, paneWidth),
		m.pane(paneIncoming, fmt.Sprintf("Used by (%d)", len(inLines)), inLines, paneWidth),
	)

	var b strings.Builder
	b.WriteString(StyleTitle.Render(sel.Label()))
	b.WriteString(" ")
	b.WriteString(StyleDim.Render(string(sel.Kind)))
	b.WriteString("\n")
	b.WriteString(panes)
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ move  tab switch pane  ⏎ follow  q quit"))
	return b.String()
}

func (m browseModel) line(p pane, i int, text string) string {
	if i == m.cursors[p] {
		if m.focus == p {
			return selectedStyle.Render("▸ " + text)
		}
		return StyleHighlight.Render("  " + text)
	}
	return "  " + text
}

func (m browseModel) pane(p pane, title string, lines []string, width int) string {
	style := paneStyle
	if m.focus == p {
		style = paneFocusedStyle
	}
	if len(lines) == 0 {
		lines = []string{StyleDim.Render("(none)")}
	}
	if len(lines) > m.rows() {
		lines = lines[:m.rows()]
	}
	body := paneTitleStyle.Render(title) + "\n" + strings.Join(lines, "\n")
	return style.Width(width).Height(m.rows() + 1).Render(body)
}

func kindLabel(n graph.Node) string {
	return kindStyles[n.Kind].Render(n.Label())
}

func edgeLabel(e graph.Edge, other graph.Node) string {
	s := kindLabel(other)
	if e.Label != "" {
		s += " " + StyleDim.Render(e.Label)
	}
	return s
}
