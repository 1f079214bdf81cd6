package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/facet-dev/facet/internal/cli/config"
	"github.com/facet-dev/facet/internal/cli/ui"
	"github.com/facet-dev/facet/internal/demo"
	"github.com/facet-dev/facet/internal/util/similar"
	"github.com/facet-dev/facet/reflection"
)

var (
	typesFormat string
	typesDump   bool
)

// NewTypesCommand creates the types command group
func NewTypesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types",
		Short: "Introspect the type registry",
		Long: `Query the reflection registry the way the serializer sees it.

The demo domain (Scene, Entity, Component, ...) is registered on startup
alongside the engine's builtin scalar handlers, so the registry is never
empty.`,
		Example: `  facet types list
  facet types list --format json
  facet types describe Scene
  facet types describe Color --dump`,
	}

	cmd.PersistentFlags().StringVar(&typesFormat, "format", "table", "Output format (table|json)")

	cmd.AddCommand(newTypesListCommand())
	cmd.AddCommand(newTypesDescribeCommand())

	return cmd
}

func newTypesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all registered types",
		Long: `List every type in the registry with its shape and member counts.

Shape is the serializer's dispatch class: enum, scalar, array, table,
interface, a simple kind, or object.`,
		Example: `  facet types list
  facet types list --format json`,
		RunE: runTypesList,
	}
}

func newTypesDescribeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe [name]",
		Short: "Describe one registered type",
		Long: `Show a type's full registration: properties with their attributes,
methods, parents, aliases, and enum values.

With no name the command prompts with a picker. --dump appends a go-spew
dump of a freshly constructed instance, which shows the Go-level layout
behind the registration.`,
		Example: `  facet types describe Scene
  facet types describe Difficulty --format json
  facet types describe Color --dump`,
		Args: cobra.MaximumNArgs(1),
		RunE: runTypesDescribe,
	}

	cmd.Flags().BoolVar(&typesDump, "dump", false, "Dump a zero instance with go-spew")

	return cmd
}

func runTypesList(cmd *cobra.Command, args []string) error {
	demo.Register()

	listing := typesListing{}
	for _, t := range reflection.Types() {
		listing.Types = append(listing.Types, typeRow{
			Name:        t.Name(),
			Shape:       shapeOf(t),
			Properties:  t.PropertyCount(),
			Methods:     t.MethodCount(),
			Description: descriptionOf(t.Attributes()),
		})
	}
	sort.Slice(listing.Types, func(i, j int) bool {
		return listing.Types[i].Name < listing.Types[j].Name
	})
	listing.Count = len(listing.Types)

	formatter, err := GetFormatter(effectiveFormat(cmd), cmd.OutOrStdout(), rootNoColor)
	if err != nil {
		return err
	}
	return formatter.Format(listing)
}

func runTypesDescribe(cmd *cobra.Command, args []string) error {
	demo.Register()

	var name string
	if len(args) == 1 {
		name = args[0]
	} else {
		prompt := &survey.Select{
			Message:  "Pick a type to describe:",
			Options:  reflection.TypeNames(),
			PageSize: 15,
		}
		if err := survey.AskOne(prompt, &name); err != nil {
			return err
		}
	}

	t, ok := reflection.GetType(name)
	if !ok {
		suggestions := similar.Find(name, reflection.TypeNames(), nil)
		fmt.Fprint(cmd.ErrOrStderr(), ui.TypeNotFoundError(name, suggestions, rootNoColor))
		return fmt.Errorf("type %q is not registered", name)
	}

	formatter, err := GetFormatter(effectiveFormat(cmd), cmd.OutOrStdout(), rootNoColor)
	if err != nil {
		return err
	}
	if err := formatter.Format(describeType(t)); err != nil {
		return err
	}

	if typesDump {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w)
		if inst, ok := t.New(); ok {
			spewConfig.Fdump(w, inst.Interface())
		} else {
			fmt.Fprintf(w, "%s cannot be instantiated\n", t.Name())
		}
	}
	return nil
}

// spewConfig keeps dumps deterministic: no pointer addresses, sorted map
// keys.
var spewConfig = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// effectiveFormat resolves the output format: an explicit flag wins, then
// the config file, then the flag default.
func effectiveFormat(cmd *cobra.Command) string {
	if cmd.Flags().Changed("format") {
		return typesFormat
	}
	if cfg, err := config.Load(); err == nil {
		return cfg.Output.Format
	}
	return typesFormat
}

// The row types double as the JSON payloads for --format json.

type typesListing struct {
	Count int       `json:"count"`
	Types []typeRow `json:"types"`
}

type typeRow struct {
	Name        string `json:"name"`
	Shape       string `json:"shape"`
	Properties  int    `json:"properties"`
	Methods     int    `json:"methods"`
	Description string `json:"description,omitempty"`
}

type typeDetails struct {
	Name        string         `json:"name"`
	GoType      string         `json:"go_type"`
	Shape       string         `json:"shape"`
	Aliases     []string       `json:"aliases,omitempty"`
	Description string         `json:"description,omitempty"`
	CanNew      bool           `json:"can_new"`
	Parents     []string       `json:"parents,omitempty"`
	Attributes  []string       `json:"attributes,omitempty"`
	Properties  []propertyRow  `json:"properties,omitempty"`
	Methods     []methodRow    `json:"methods,omitempty"`
	EnumValues  []enumValueRow `json:"enum_values,omitempty"`
}

type propertyRow struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Static     bool     `json:"static,omitempty"`
	ReadOnly   bool     `json:"read_only,omitempty"`
	Attributes []string `json:"attributes,omitempty"`
}

type methodRow struct {
	Name    string   `json:"name"`
	Static  bool     `json:"static,omitempty"`
	Params  []string `json:"params,omitempty"`
	Returns string   `json:"returns,omitempty"`
}

type enumValueRow struct {
	Name        string `json:"name"`
	Value       int64  `json:"value"`
	Description string `json:"description,omitempty"`
}

func describeType(t *reflection.Type) typeDetails {
	d := typeDetails{
		Name:        t.Name(),
		GoType:      t.TypeInfo().Name(),
		Shape:       shapeOf(t),
		Aliases:     append([]string(nil), t.Aliases()...),
		Description: descriptionOf(t.Attributes()),
		CanNew:      t.CanNew(),
		Attributes:  attrLabels(t.Attributes()),
	}
	for i := 0; i < t.ParentCount(); i++ {
		p := t.ParentAt(i)
		if pt := p.TypeInfo().Type(); pt != nil {
			d.Parents = append(d.Parents, pt.Name())
		} else {
			d.Parents = append(d.Parents, p.TypeInfo().Name())
		}
	}
	for i := 0; i < t.PropertyCount(); i++ {
		p := t.PropertyAt(i)
		d.Properties = append(d.Properties, propertyRow{
			Name:       p.Name(),
			Type:       p.TypeInfo().Name(),
			Static:     p.IsStatic(),
			ReadOnly:   p.CanRead() && !p.CanWrite(),
			Attributes: attrLabels(p.Attributes()),
		})
	}
	for i := 0; i < t.MethodCount(); i++ {
		m := t.MethodAt(i)
		row := methodRow{Name: m.Name(), Static: m.IsStatic()}
		for j := 0; j < m.Arity(); j++ {
			row.Params = append(row.Params, m.ParamTypeInfo(j).Name())
		}
		if ret := m.ReturnTypeInfo(); ret != nil {
			row.Returns = ret.Name()
		}
		d.Methods = append(d.Methods, row)
	}
	if e, ok := t.TryGetEnum(); ok {
		for _, v := range e.Values() {
			d.EnumValues = append(d.EnumValues, enumValueRow{
				Name:        v.Name(),
				Value:       v.Value(),
				Description: descriptionOf(v.Attributes()),
			})
		}
	}
	return d
}

// shapeOf classifies a registered type the way the serializer dispatches on
// it: a scalar handler wins over derived container adapters.
func shapeOf(t *reflection.Type) string {
	if _, ok := t.TryGetEnum(); ok {
		return "enum"
	}
	if _, ok := t.ScalarHandler(); ok {
		return "scalar"
	}
	if _, ok := t.TryGetArray(); ok {
		return "array"
	}
	if _, ok := t.TryGetTable(); ok {
		return "table"
	}
	if t.TypeInfo().IsInterface() {
		return "interface"
	}
	if k := t.TypeInfo().SimpleKind(); k != reflection.ComplexKind {
		return k.String()
	}
	return "object"
}

func descriptionOf(c *reflection.AttributeCollection) string {
	if d, ok := reflection.AttrOf[reflection.Description](c); ok {
		return d.Text
	}
	return ""
}

// attrLabels renders attributes as "ID" or "ID(fields)". Description is
// left out; it gets its own column.
func attrLabels(c *reflection.AttributeCollection) []string {
	var out []string
	for i := 0; i < c.Len(); i++ {
		a := c.At(i)
		if _, ok := a.(reflection.Description); ok {
			continue
		}
		out = append(out, attrLabel(a))
	}
	return out
}

func attrLabel(a reflection.Attribute) string {
	id := a.AttributeID()
	// The comparison value is an Any; its innards are not printable.
	if _, ok := a.(reflection.DoNotSerializeIfEqualToSimpleType); ok {
		return id
	}
	detail := fmt.Sprintf("%+v", a)
	detail = strings.TrimPrefix(detail, "{")
	detail = strings.TrimSuffix(detail, "}")
	if detail == "" {
		return id
	}
	return fmt.Sprintf("%s(%s)", id, detail)
}

// Formatter formats introspection payloads for output
type Formatter interface {
	Format(data interface{}) error
}

// TableFormatter formats data as human-readable tables
type TableFormatter struct {
	writer  io.Writer
	noColor bool
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(w io.Writer, noColor bool) *TableFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &TableFormatter{writer: w, noColor: noColor}
}

// Format renders the payload as tables and sections
func (f *TableFormatter) Format(data interface{}) error {
	switch v := data.(type) {
	case typesListing:
		table := ui.NewTable(f.writer, f.noColor, "NAME", "SHAPE", "PROPERTIES", "METHODS", "DESCRIPTION")
		for _, row := range v.Types {
			table.AddRow(row.Name, row.Shape,
				strconv.Itoa(row.Properties), strconv.Itoa(row.Methods), row.Description)
		}
		table.Render()
		fmt.Fprintf(f.writer, "\n%d types registered\n", v.Count)
	case typeDetails:
		f.formatDetails(v)
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(f.writer, "%s: %v\n", k, v[k])
		}
	case []interface{}:
		for i, item := range v {
			fmt.Fprintf(f.writer, "%d. %v\n", i+1, item)
		}
	default:
		fmt.Fprintf(f.writer, "%v\n", data)
	}
	return nil
}

func (f *TableFormatter) formatDetails(d typeDetails) {
	ui.Header(f.writer, d.Name, f.noColor)

	kv := ui.NewKeyValueTable(f.writer, f.noColor)
	kv.AddRow("Go type", d.GoType)
	kv.AddRow("Shape", d.Shape)
	if len(d.Aliases) > 0 {
		kv.AddRow("Aliases", strings.Join(d.Aliases, ", "))
	}
	if d.Description != "" {
		kv.AddRow("Description", d.Description)
	}
	kv.AddRow("Instantiable", strconv.FormatBool(d.CanNew))
	if len(d.Parents) > 0 {
		kv.AddRow("Parents", strings.Join(d.Parents, ", "))
	}
	if len(d.Attributes) > 0 {
		kv.AddRow("Attributes", strings.Join(d.Attributes, ", "))
	}
	kv.Render()
	fmt.Fprintln(f.writer)

	if len(d.Properties) > 0 {
		section := ui.NewSection(f.writer, "Properties", f.noColor)
		for _, p := range d.Properties {
			line := fmt.Sprintf("%s: %s", p.Name, p.Type)
			var marks []string
			if p.Static {
				marks = append(marks, "static")
			}
			if p.ReadOnly {
				marks = append(marks, "read-only")
			}
			marks = append(marks, p.Attributes...)
			if len(marks) > 0 {
				line += " [" + strings.Join(marks, ", ") + "]"
			}
			section.AddLine(line)
		}
		section.Render()
	}

	if len(d.Methods) > 0 {
		section := ui.NewSection(f.writer, "Methods", f.noColor)
		for _, m := range d.Methods {
			sig := m.Name + "(" + strings.Join(m.Params, ", ") + ")"
			if m.Returns != "" {
				sig += " " + m.Returns
			}
			if m.Static {
				sig = "static " + sig
			}
			section.AddLine(sig)
		}
		section.Render()
	}

	if len(d.EnumValues) > 0 {
		section := ui.NewSection(f.writer, "Values", f.noColor)
		for _, v := range d.EnumValues {
			line := fmt.Sprintf("%s = %d", v.Name, v.Value)
			if v.Description != "" {
				line += "  " + v.Description
			}
			section.AddLine(line)
		}
		section.Render()
	}
}

// JSONFormatter formats data as indented JSON
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &JSONFormatter{writer: w}
}

// Format renders the payload as JSON
func (f *JSONFormatter) Format(data interface{}) error {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	_, err = fmt.Fprintln(f.writer, string(encoded))
	return err
}

// GetFormatter returns the formatter for the requested format
func GetFormatter(format string, w io.Writer, noColor bool) (Formatter, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONFormatter(w), nil
	case "table":
		return NewTableFormatter(w, noColor), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (use table or json)", format)
	}
}
