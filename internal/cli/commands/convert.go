package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/facet-dev/facet/internal/cli/config"
	"github.com/facet-dev/facet/internal/cli/ui"
)

var (
	convertIn     string
	convertOut    string
	convertIndent bool
)

// NewConvertCommand creates the convert command
func NewConvertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a value tree between file formats",
		Long: `Convert a datastore value tree between file formats.

The format is picked from the file extension: .json, .yaml/.yml, .toml,
and .cbor are read; .json and .cbor are written. YAML and TOML are
ingest formats only.`,
		Example: `  facet convert -i scene.json -o scene.cbor
  facet convert -i settings.toml -o settings.json
  facet convert -i save.cbor -o save.json --indent=false`,
		RunE: runConvert,
	}

	cmd.Flags().StringVarP(&convertIn, "in", "i", "", "Input file (json|yaml|toml|cbor)")
	cmd.Flags().StringVarP(&convertOut, "out", "o", "", "Output file (json|cbor)")
	cmd.Flags().BoolVar(&convertIndent, "indent", true, "Indent JSON output")
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("out")

	return cmd
}

func runConvert(cmd *cobra.Command, args []string) error {
	// The config default applies only when the flag is not given
	if !cmd.Flags().Changed("indent") {
		if cfg, err := config.Load(); err == nil {
			convertIndent = cfg.Output.Indent
		}
	}

	stderr := cmd.ErrOrStderr()

	if _, ok := formatOf(convertIn); !ok {
		fmt.Fprint(stderr, ui.UnknownFormatError(convertIn, readFormats, rootNoColor))
		return fmt.Errorf("unknown input format: %s", convertIn)
	}
	outFormat, ok := formatOf(convertOut)
	if !ok || outFormat == "yaml" || outFormat == "toml" {
		fmt.Fprint(stderr, ui.UnknownFormatError(convertOut, writeFormats, rootNoColor))
		return fmt.Errorf("cannot write %s output (use %s)", outFormat, strings.Join(writeFormats, " or "))
	}

	spinner := ui.NewSpinner(cmd.OutOrStdout(), ui.SpinnerOptions{
		Message: fmt.Sprintf("Converting %s", convertIn),
		NoColor: rootNoColor,
	})
	spinner.Start()

	n, inFormat, err := readNodeFile(convertIn)
	if err != nil {
		spinner.Stop()
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("cannot read %s: %w", convertIn, err)
		}
		fmt.Fprint(stderr, ui.ParseFailedError(convertIn, strings.ToUpper(inFormat), err, rootNoColor))
		return fmt.Errorf("parsing %s failed: %w", convertIn, err)
	}

	if _, err := writeNodeFile(convertOut, n, convertIndent); err != nil {
		spinner.Stop()
		return fmt.Errorf("writing %s failed: %w", convertOut, err)
	}

	st := collectStats(n)
	spinner.Success(fmt.Sprintf("Wrote %s (%d nodes)", convertOut, st.total))
	return nil
}
