package commands

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/facet-dev/facet/cmdargs"
	"github.com/facet-dev/facet/internal/cli/ui"
	"github.com/facet-dev/facet/internal/demo"
	"github.com/facet-dev/facet/reflection"
)

// NewArgsCommand creates the args command
func NewArgsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "args -- <argv>...",
		Short: "Parse a command line against the demo engine bindings",
		Long: `Feed an argv through the reflection-driven argument parser and
print what landed in the engine's registered bindings. Flags after
the boot script positional pass through untouched.`,
		Example: `  facet args -- -config engine.yml -width 1920 boot.lua --port 8080
  facet args -- -fullscreen -difficulty Insane -Dgfx=high
  facet args -- -help`,
		Args: cobra.ArbitraryArgs,
		RunE: runArgs,
	}
}

func runArgs(cmd *cobra.Command, args []string) error {
	demo.Register()

	parser := cmdargs.New("facet args",
		cmdargs.WithOutput(cmd.OutOrStdout()),
		cmdargs.WithDiagnostics(cmd.ErrOrStderr()),
	)

	rest, err := parser.Parse(args)
	if err != nil {
		// The parser already printed its usage text.
		if errors.Is(err, cmdargs.ErrHelpRequested) {
			return nil
		}
		return err
	}

	kv := ui.NewKeyValueTable(cmd.OutOrStdout(), rootNoColor)
	kv.AddRow("Config", demo.ArgConfig)
	kv.AddRow("Fullscreen", strconv.FormatBool(demo.ArgFullscreen))
	kv.AddRow("Width", strconv.FormatInt(int64(demo.ArgWidth), 10))
	kv.AddRow("Difficulty", difficultyName(demo.ArgDifficulty))
	kv.AddRow("Defines", formatDefines(demo.ArgDefines))
	kv.AddRow("Script", string(demo.ArgScript))
	kv.AddRow("Script offset", strconv.Itoa(demo.ScriptArgOffset))
	kv.AddRow("Passthrough", strings.Join(rest, " "))
	kv.Render()

	return nil
}

func difficultyName(d demo.Difficulty) string {
	if t, ok := reflection.GetType("Difficulty"); ok {
		if enum, ok := t.TryGetEnum(); ok {
			if name, ok := enum.TryGetName(int64(d)); ok {
				return name
			}
		}
	}
	return strconv.FormatInt(int64(d), 10)
}

func formatDefines(defines map[string]string) string {
	if len(defines) == 0 {
		return "(none)"
	}
	pairs := make([]string, 0, len(defines))
	for k, v := range defines {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, " ")
}
