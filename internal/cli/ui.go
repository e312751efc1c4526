package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/flowedit/pkg/diagram"
	"github.com/matzehuels/flowedit/pkg/editor"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
	colorPurple = lipgloss.Color("141") // Circular nodes
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)

	styleHeader   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleCircular = lipgloss.NewStyle().Foreground(colorPurple)
	styleBranch   = lipgloss.NewStyle().Foreground(colorGreen)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCurrent = "▸"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+msg)
}

// printError prints an error message.
func printError(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+msg)
}

// printWarning prints a warning message.
func printWarning(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+msg)
}

// printDetail prints a detail line (indented).
func printDetail(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, "  "+StyleDim.Render(msg))
}

// printKeyValue prints a labeled value.
func printKeyValue(w io.Writer, key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(w, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(w io.Writer, description, cmd string) {
	fmt.Fprintln(w, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// =============================================================================
// Diagram Display
// =============================================================================

// statsLine summarizes a snapshot on one line: counts and history position.
func statsLine(snap editor.Snapshot) string {
	parts := []string{
		fmt.Sprintf("%d nodes", snap.Graph.NodeCount()),
		fmt.Sprintf("%d edges", snap.Graph.EdgeCount()),
		fmt.Sprintf("history %d/%d", snap.Index, snap.Len-1),
	}
	if snap.CanUndo {
		parts = append(parts, "undo")
	}
	if snap.CanRedo {
		parts = append(parts, "redo")
	}
	return StyleDim.Render(strings.Join(parts, " · "))
}

// nodeTable renders the nodes of g as a rounded table.
func nodeTable(g diagram.Graph) string {
	return nodeTableWithCursor(g, -1, "")
}

// nodeTableWithCursor renders the node table with a leading marker column.
// The row at cursor gets iconCurrent and the node marked pending gets iconArrow.
// A negative cursor omits the marker column.
func nodeTableWithCursor(g diagram.Graph, cursor int, pending diagram.NodeID) string {
	nodes := g.Nodes()
	marked := cursor >= 0
	offset := 0
	if marked {
		offset = 1
	}

	rows := make([][]string, 0, len(nodes))
	for i, n := range nodes {
		branch := "—"
		if n.HasBranch() {
			branch = string(n.Branch)
		}
		row := []string{
			string(n.ID),
			string(n.Kind),
			n.Label,
			branch,
			formatCoord(n.Position.X) + ", " + formatCoord(n.Position.Y),
		}
		if marked {
			marker := " "
			switch {
			case i == cursor:
				marker = iconCurrent
			case n.ID == pending:
				marker = iconArrow
			}
			row = append([]string{marker}, row...)
		}
		rows = append(rows, row)
	}

	headers := []string{"ID", "Kind", "Label", "Branch", "Position"}
	if marked {
		headers = append([]string{""}, headers...)
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row < 0 || row >= len(nodes) {
				return base
			}
			if marked && row == cursor {
				base = base.Bold(true)
			}
			switch col - offset {
			case -1:
				return base.Foreground(colorCyan)
			case 1:
				if nodes[row].IsCircular() {
					return base.Inherit(styleCircular)
				}
			case 3:
				if nodes[row].HasBranch() {
					return base.Inherit(styleBranch)
				}
				return base.Foreground(colorGray)
			case 4:
				return base.Foreground(colorGray)
			}
			return base
		}).
		Render()
}

// edgeList renders the edges of g one per line.
func edgeList(g diagram.Graph) string {
	edges := g.Edges()
	if len(edges) == 0 {
		return StyleDim.Render("no edges")
	}
	lines := make([]string, len(edges))
	for i, e := range edges {
		lines[i] = fmt.Sprintf("%s %s %s  %s",
			StyleValue.Render(string(e.Source)),
			StyleDim.Render(iconArrow),
			StyleValue.Render(string(e.Target)),
			StyleDim.Render(string(e.ID)))
	}
	return strings.Join(lines, "\n")
}

// printDiagram prints the full state of a snapshot.
func printDiagram(w io.Writer, snap editor.Snapshot) {
	if snap.Graph.NodeCount() == 0 {
		printInfo(w, "empty diagram")
		fmt.Fprintln(w, "  "+statsLine(snap))
		return
	}
	fmt.Fprintln(w, nodeTable(snap.Graph))
	fmt.Fprintln(w, edgeList(snap.Graph))
	fmt.Fprintln(w, statsLine(snap))
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}
