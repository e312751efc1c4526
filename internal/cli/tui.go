package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowedit/pkg/diagram"
	"github.com/matzehuels/flowedit/pkg/editor"
	ferrors "github.com/matzehuels/flowedit/pkg/errors"
)

// tuiCommand creates the full-screen editor command.
func (c *CLI) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Edit a diagram in a full-screen terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m := NewEditorModel(ctx, c.newSession(ctx))
			p := tea.NewProgram(m,
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
				tea.WithAltScreen(),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run editor: %w", err)
			}
			return nil
		},
	}
}

// nudge is the distance in pixels a node moves per key press.
const nudge = 10

// kindKeys maps a key to the node kind it adds.
var kindKeys = map[string]diagram.Kind{
	"c": diagram.KindCircular,
	"i": diagram.KindIcon,
	"m": diagram.KindImage,
	"d": diagram.KindDefault,
	"n": diagram.KindInput,
	"o": diagram.KindOutput,
	"x": diagram.KindCustom,
}

var (
	statusInfoStyle  = lipgloss.NewStyle().Foreground(colorGray)
	statusWarnStyle  = lipgloss.NewStyle().Foreground(colorYellow)
	statusErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
	helpStyle        = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// EditorModel - Interactive diagram editing
// =============================================================================

// EditorModel is the bubbletea model for the diagram editor.
//
// The cursor selects a node. Enter marks it as the pending source of a
// connection; a second Enter on another node connects the two. Alternatively
// e opens a prompt that takes "<source> <target>".
type EditorModel struct {
	ctx  context.Context
	sess *editor.Session

	Cursor  int
	Pending diagram.NodeID // source awaiting a target, or empty
	Status  string
	level   statusLevel

	Prompting bool   // typing "<source> <target>" after e
	Input     string // prompt buffer
}

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusWarn
	statusError
)

// NewEditorModel creates an editor model over sess.
func NewEditorModel(ctx context.Context, sess *editor.Session) EditorModel {
	return EditorModel{ctx: ctx, sess: sess, Cursor: -1}
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.Prompting {
		return m.updatePrompt(key), nil
	}

	k := key.String()
	if kind, ok := kindKeys[k]; ok {
		id, err := m.sess.AddNode(m.ctx, kind)
		if err != nil {
			return m.fail(err), nil
		}
		m.Cursor = m.sess.State().NodeCount() - 1
		return m.info("added %s", id), nil
	}

	switch k {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.Pending = ""
		return m.info("connection cancelled"), nil
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < m.sess.State().NodeCount()-1 {
			m.Cursor++
		}
	case "enter":
		return m.pick(), nil
	case "e":
		m.Prompting, m.Input, m.Pending = true, "", ""
		m.Status = ""
	case "H", "J", "K", "L":
		return m.move(k), nil
	case "l":
		if err := m.sess.AutoLayout(m.ctx); err != nil {
			return m.fail(err), nil
		}
		return m.info("layout applied"), nil
	case "u":
		if _, ok := m.sess.Undo(m.ctx); !ok {
			return m.info("nothing to undo"), nil
		}
		return m.clamp().info("undo"), nil
	case "r":
		if _, ok := m.sess.Redo(m.ctx); !ok {
			return m.info("nothing to redo"), nil
		}
		return m.clamp().info("redo"), nil
	}
	return m, nil
}

// updatePrompt edits the connect prompt and submits it on enter.
func (m EditorModel) updatePrompt(key tea.KeyMsg) EditorModel {
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.Prompting, m.Input = false, ""
		return m.info("connection cancelled")
	case tea.KeyBackspace:
		if len(m.Input) > 0 {
			m.Input = m.Input[:len(m.Input)-1]
		}
	case tea.KeySpace:
		m.Input += " "
	case tea.KeyRunes:
		m.Input += string(key.Runes)
	case tea.KeyEnter:
		m.Prompting = false
		fields := strings.Fields(m.Input)
		m.Input = ""
		if len(fields) != 2 {
			return m.fail(usage("<source> <target>"))
		}
		return m.connect(diagram.NodeID(fields[0]), diagram.NodeID(fields[1]))
	}
	return m
}

// pick marks the cursor node as pending source, or connects the pending
// source to it.
func (m EditorModel) pick() EditorModel {
	n, ok := m.selected()
	if !ok {
		return m
	}
	if m.Pending == "" {
		m.Pending = n.ID
		return m.info("connect %s %s ... (enter on target, esc to cancel)", n.ID, iconArrow)
	}

	source := m.Pending
	m.Pending = ""
	return m.connect(source, n.ID)
}

func (m EditorModel) connect(source, target diagram.NodeID) EditorModel {
	out, err := m.sess.Connect(m.ctx, source, target)
	if err != nil {
		return m.fail(err)
	}
	if out.Duplicate {
		return m.info("edge %s already exists", out.Edge.ID)
	}
	if out.Assigned != "" {
		return m.info("connected %s %s %s, joined %s", source, iconArrow, target, out.Assigned)
	}
	return m.info("connected %s %s %s", source, iconArrow, target)
}

func (m EditorModel) move(k string) EditorModel {
	n, ok := m.selected()
	if !ok {
		return m
	}
	pos := n.Position
	switch k {
	case "H":
		pos.X -= nudge
	case "L":
		pos.X += nudge
	case "K":
		pos.Y -= nudge
	case "J":
		pos.Y += nudge
	}
	if err := m.sess.MoveNode(m.ctx, n.ID, pos); err != nil {
		return m.fail(err)
	}
	return m.info("moved %s to %s, %s", n.ID, formatCoord(pos.X), formatCoord(pos.Y))
}

func (m EditorModel) selected() (diagram.Node, bool) {
	nodes := m.sess.State().Nodes()
	if m.Cursor < 0 || m.Cursor >= len(nodes) {
		return diagram.Node{}, false
	}
	return nodes[m.Cursor], true
}

// clamp keeps the cursor on a node after the node count changed.
func (m EditorModel) clamp() EditorModel {
	n := m.sess.State().NodeCount()
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 && n > 0 {
		m.Cursor = 0
	}
	if m.Pending != "" && !m.sess.State().HasNode(m.Pending) {
		m.Pending = ""
	}
	return m
}

func (m EditorModel) info(format string, args ...any) EditorModel {
	m.Status, m.level = fmt.Sprintf(format, args...), statusInfo
	return m
}

func (m EditorModel) fail(err error) EditorModel {
	m.Status = ferrors.UserMessage(err)
	switch {
	case ferrors.IsNoOp(err):
		m.level = statusInfo
	case ferrors.Is(err, ferrors.ErrCodeValidationRejected):
		m.level = statusWarn
	default:
		m.level = statusError
	}
	return m
}

func (m EditorModel) View() string {
	var b strings.Builder
	snap := m.sess.Snapshot()

	b.WriteString(StyleTitle.Render("Flow Diagram"))
	b.WriteString("  ")
	b.WriteString(helpStyle.Render("started " + formatRelativeTime(m.sess.Created(), time.Now())))
	b.WriteString("\n\n")

	if snap.Graph.NodeCount() == 0 {
		b.WriteString(helpStyle.Render("empty: press d to add a default node, c for a circular one"))
	} else {
		b.WriteString(nodeTableWithCursor(snap.Graph, max(m.Cursor, 0), m.Pending))
		b.WriteString("\n")
		b.WriteString(edgeList(snap.Graph))
	}
	b.WriteString("\n\n")
	b.WriteString(statsLine(snap))
	b.WriteString("\n")

	if m.Prompting {
		b.WriteString(StyleHighlight.Render("connect> ") + m.Input + "█")
	} else if m.Status != "" {
		style := statusInfoStyle
		switch m.level {
		case statusWarn:
			style = statusWarnStyle
		case statusError:
			style = statusErrorStyle
		}
		b.WriteString(style.Render(m.Status))
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("add: c circular  i icon  m image  d default  n input  o output  x custom"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select  ⏎ connect  e connect by id  H/J/K/L nudge  l layout  u undo  r redo  q quit"))
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
