package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowedit/pkg/connect"
	"github.com/matzehuels/flowedit/pkg/diagram"
	"github.com/matzehuels/flowedit/pkg/editor"
	ferrors "github.com/matzehuels/flowedit/pkg/errors"
)

// shellCommand creates the interactive line editor command.
func (c *CLI) shellCommand() *cobra.Command {
	var script string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Edit a diagram with line commands",
		Long: `Edit a diagram by typing one command per line.

Commands are read from standard input, or from a file with --script.
Type "help" inside the shell for the command list.`,
		Example: `  flowedit shell
  flowedit shell --script build.flow`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sh := newShell(c.newSession(ctx), cmd.OutOrStdout())

			if script == "" {
				sh.prompt = true
				return sh.run(ctx, cmd.InOrStdin())
			}

			f, err := os.Open(script)
			if err != nil {
				return fmt.Errorf("open script: %w", err)
			}
			defer f.Close()

			prog := newProgress(loggerFromContext(ctx))
			err = sh.run(ctx, f)
			prog.done("Script finished")
			return err
		},
	}

	cmd.Flags().StringVar(&script, "script", "", "read commands from file and exit")
	return cmd
}

// =============================================================================
// Shell
// =============================================================================

// shell executes line commands against one editing session.
type shell struct {
	sess   *editor.Session
	out    io.Writer
	prompt bool

	failed int // hard errors; rejections and no-ops are not counted
}

func newShell(sess *editor.Session, out io.Writer) *shell {
	return &shell{sess: sess, out: out}
}

// errQuit ends the read loop.
var errQuit = errors.New("quit")

// run reads commands until EOF or quit. When not interactive it returns an
// error if any command failed outright.
func (sh *shell) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	line := 0
	for {
		if sh.prompt {
			fmt.Fprint(sh.out, styleCommand.Render(appName+"> "))
		}
		if !scanner.Scan() {
			break
		}
		line++
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := sh.exec(ctx, scanner.Text()); err != nil {
			if errors.Is(err, errQuit) {
				break
			}
			sh.report(err, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read commands: %w", err)
	}
	if !sh.prompt && sh.failed > 0 {
		return fmt.Errorf("%d command(s) failed", sh.failed)
	}
	return nil
}

// report prints err according to its category.
func (sh *shell) report(err error, line int) {
	msg := ferrors.UserMessage(err)
	if !sh.prompt {
		msg = fmt.Sprintf("line %d: %s", line, msg)
	}
	switch {
	case ferrors.IsNoOp(err):
		printDetail(sh.out, "%s", msg)
	case ferrors.Is(err, ferrors.ErrCodeValidationRejected):
		printWarning(sh.out, "%s", msg)
	default:
		sh.failed++
		printError(sh.out, "%s", msg)
	}
}

// exec runs one command line.
func (sh *shell) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	name, args := fields[0], fields[1:]

	switch name {
	case "add":
		return sh.add(ctx, args)
	case "connect":
		return sh.connect(ctx, args)
	case "move":
		return sh.move(ctx, args)
	case "layout":
		if err := sh.sess.AutoLayout(ctx); err != nil {
			return err
		}
		printSuccess(sh.out, "Laid out %d nodes", sh.sess.State().NodeCount())
	case "undo":
		return sh.step(ctx, true)
	case "redo":
		return sh.step(ctx, false)
	case "show":
		printDiagram(sh.out, sh.sess.Snapshot())
	case "viewport":
		return sh.viewport(ctx, args)
	case "history":
		sh.history()
	case "help":
		sh.help()
	case "quit", "exit":
		return errQuit
	default:
		return ferrors.New(ferrors.ErrCodeInvalidInput, "unknown command %q (try \"help\")", name)
	}
	return nil
}

func (sh *shell) add(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("add <kind>")
	}
	id, err := sh.sess.AddNode(ctx, diagram.Kind(args[0]))
	if err != nil {
		return err
	}
	n, _ := sh.sess.State().Node(id)
	printSuccess(sh.out, "Added %s %s", StyleValue.Render(string(id)), StyleDim.Render(n.Label))
	return nil
}

func (sh *shell) connect(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("connect <source> <target>")
	}
	out, err := sh.sess.Connect(ctx, diagram.NodeID(args[0]), diagram.NodeID(args[1]))
	if err != nil {
		return err
	}
	if out.Duplicate {
		printDetail(sh.out, "edge %s already exists", out.Edge.ID)
		return nil
	}
	printSuccess(sh.out, "Connected %s %s %s", out.Edge.Source, iconArrow, out.Edge.Target)
	describeOutcome(sh.out, out)
	return nil
}

func describeOutcome(w io.Writer, out connect.Outcome) {
	if out.Assigned != "" {
		printDetail(w, "%s joins %s", out.Edge.Target, out.Assigned)
	}
	if out.EndOfBranch {
		printDetail(w, "%s ends its parallel branch", out.Edge.Source)
	}
}

func (sh *shell) move(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return usage("move <node> <x> <y>")
	}
	x, y, err := parsePair(args[1], args[2])
	if err != nil {
		return err
	}
	if err := sh.sess.MoveNode(ctx, diagram.NodeID(args[0]), diagram.Position{X: x, Y: y}); err != nil {
		return err
	}
	printSuccess(sh.out, "Moved %s to %s, %s", args[0], formatCoord(x), formatCoord(y))
	return nil
}

// step performs undo (back) or redo and names the action it crossed.
func (sh *shell) step(ctx context.Context, back bool) error {
	entries, idx := sh.sess.History()
	if back {
		if _, ok := sh.sess.Undo(ctx); !ok {
			printDetail(sh.out, "nothing to undo")
			return nil
		}
		printInfo(sh.out, "Undid %s", entries[idx].Action)
		return nil
	}
	if _, ok := sh.sess.Redo(ctx); !ok {
		printDetail(sh.out, "nothing to redo")
		return nil
	}
	printInfo(sh.out, "Redid %s", entries[idx+1].Action)
	return nil
}

func (sh *shell) viewport(ctx context.Context, args []string) error {
	switch len(args) {
	case 0:
		v := sh.sess.Viewport()
		printKeyValue(sh.out, "viewport", formatCoord(v.Width)+" x "+formatCoord(v.Height))
		return nil
	case 2:
		w, h, err := parsePair(args[0], args[1])
		if err != nil {
			return err
		}
		if err := sh.sess.SetViewport(ctx, diagram.Viewport{Width: w, Height: h}); err != nil {
			return err
		}
		printSuccess(sh.out, "Viewport set to %s x %s", formatCoord(w), formatCoord(h))
		return nil
	}
	return usage("viewport [<width> <height>]")
}

func (sh *shell) history() {
	entries, idx := sh.sess.History()
	for i, e := range entries {
		marker := " "
		line := fmt.Sprintf("%2d %-10s %d nodes, %d edges", i, e.Action, e.Graph.NodeCount(), e.Graph.EdgeCount())
		switch {
		case i == idx:
			marker = iconCurrent
			line = StyleHighlight.Render(line)
		case i > idx:
			line = StyleDim.Render(line)
		}
		fmt.Fprintln(sh.out, marker+" "+line)
	}
}

func (sh *shell) help() {
	kinds := make([]string, len(diagram.Kinds))
	for i, k := range diagram.Kinds {
		kinds[i] = string(k)
	}

	fmt.Fprintln(sh.out, StyleTitle.Render("Commands"))
	for _, c := range [][2]string{
		{"add <kind>", "add a node (" + strings.Join(kinds, ", ") + ")"},
		{"connect <src> <dst>", "add an edge"},
		{"move <node> <x> <y>", "move a node"},
		{"layout", "arrange nodes as a tree"},
		{"undo, redo", "step through history"},
		{"show", "print nodes and edges"},
		{"viewport [<w> <h>]", "show or set the viewport"},
		{"history", "list history entries"},
		{"quit", "leave the shell"},
	} {
		fmt.Fprintf(sh.out, "  %s %s\n", styleCommand.Render(fmt.Sprintf("%-22s", c[0])), StyleDim.Render(c[1]))
	}
}

func usage(form string) error {
	return ferrors.New(ferrors.ErrCodeInvalidInput, "usage: %s", form)
}

func parsePair(a, b string) (float64, float64, error) {
	x, err := strconv.ParseFloat(a, 64)
	if err != nil {
		return 0, 0, ferrors.New(ferrors.ErrCodeInvalidInput, "not a number: %q", a)
	}
	y, err := strconv.ParseFloat(b, 64)
	if err != nil {
		return 0, 0, ferrors.New(ferrors.ErrCodeInvalidInput, "not a number: %q", b)
	}
	return x, y, nil
}
