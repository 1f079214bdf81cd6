package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/facet-dev/facet/datastore"
	"github.com/facet-dev/facet/internal/cli/ui"
)

var inspectDepth int

// Containers wider than this show a trailing "more" marker in the preview.
const maxPreviewChildren = 8

// NewInspectCommand creates the inspect command
func NewInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize a value tree",
		Long: `Parse a file into a datastore tree and show its shape: node counts per
kind, nesting depth, and a preview of the first levels.`,
		Example: `  facet inspect scene.json
  facet inspect save.cbor --depth 4`,
		Args: cobra.ExactArgs(1),
		RunE: runInspect,
	}

	cmd.Flags().IntVar(&inspectDepth, "depth", 3, "Levels shown in the tree preview")

	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]
	w := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	if _, ok := formatOf(path); !ok {
		fmt.Fprint(stderr, ui.UnknownFormatError(path, readFormats, rootNoColor))
		return fmt.Errorf("unknown input format: %s", path)
	}

	n, format, err := readNodeFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}
		fmt.Fprint(stderr, ui.ParseFailedError(path, strings.ToUpper(format), err, rootNoColor))
		return fmt.Errorf("parsing %s failed: %w", path, err)
	}

	st := collectStats(n)

	ui.Header(w, path, rootNoColor)
	kv := ui.NewKeyValueTable(w, rootNoColor)
	kv.AddRow("Format", format)
	kv.AddRow("Root", n.Kind().String())
	kv.AddRow("Nodes", strconv.Itoa(st.total))
	kv.AddRow("Depth", strconv.Itoa(st.depth))
	for _, k := range statKinds {
		if c := st.byKind[k]; c > 0 {
			kv.AddRow(k.String(), strconv.Itoa(c))
		}
	}
	kv.Render()

	fmt.Fprintln(w)
	printNode(w, "", n, 0, inspectDepth, rootNoColor)
	return nil
}

// printNode renders one node of the preview tree and recurses into
// containers until the depth limit runs out.
func printNode(w io.Writer, label string, n *datastore.Node, indent, remaining int, noColor bool) {
	key := color.New(color.FgCyan)
	dim := color.New(color.FgHiBlack)
	if noColor {
		key.DisableColor()
		dim.DisableColor()
	}

	fmt.Fprint(w, strings.Repeat("  ", indent))
	if label != "" {
		key.Fprintf(w, "%s: ", label)
	}

	switch n.Kind() {
	case datastore.KindArray:
		count, _ := n.ArrayLen()
		suffix := ""
		if remaining <= 0 && count > 0 {
			suffix = " …"
		}
		dim.Fprintf(w, "Array(%d)%s\n", count, suffix)
		if remaining <= 0 {
			return
		}
		shown := count
		if shown > maxPreviewChildren {
			shown = maxPreviewChildren
		}
		for i := 0; i < shown; i++ {
			child, _ := n.ArrayGet(i)
			printNode(w, fmt.Sprintf("[%d]", i), child, indent+1, remaining-1, noColor)
		}
		if count > shown {
			fmt.Fprint(w, strings.Repeat("  ", indent+1))
			dim.Fprintf(w, "… (+%d more)\n", count-shown)
		}
	case datastore.KindTable:
		keys := n.TableKeys()
		suffix := ""
		if remaining <= 0 && len(keys) > 0 {
			suffix = " …"
		}
		dim.Fprintf(w, "Table(%d)%s\n", len(keys), suffix)
		if remaining <= 0 {
			return
		}
		shown := len(keys)
		if shown > maxPreviewChildren {
			shown = maxPreviewChildren
		}
		for _, k := range keys[:shown] {
			child, _ := n.TableGet(k)
			printNode(w, k, child, indent+1, remaining-1, noColor)
		}
		if len(keys) > shown {
			fmt.Fprint(w, strings.Repeat("  ", indent+1))
			dim.Fprintf(w, "… (+%d more)\n", len(keys)-shown)
		}
	default:
		fmt.Fprintf(w, "%s\n", previewValue(n))
	}
}

// previewValue renders a scalar node the way it would appear in JSON.
func previewValue(n *datastore.Node) string {
	switch n.Kind() {
	case datastore.KindNull:
		return "null"
	case datastore.KindBool:
		v, _ := n.AsBool()
		return strconv.FormatBool(v)
	case datastore.KindInt64:
		v, _ := n.AsInt64()
		return strconv.FormatInt(v, 10)
	case datastore.KindUint64:
		v, _ := n.AsUint64()
		return strconv.FormatUint(v, 10)
	case datastore.KindFloat64:
		v, _ := n.AsFloat64()
		return strconv.FormatFloat(v, 'g', -1, 64)
	case datastore.KindString:
		v, _ := n.AsString()
		return strconv.Quote(v)
	case datastore.KindSpecialErase:
		return "<erase>"
	}
	return n.Kind().String()
}
