package cmdargs

import (
	"fmt"
	"io"

	"github.com/facet-dev/facet/reflection"
)

// Help layout limits.
const (
	maxFlagColumn   = 25
	maxRemarksWidth = 76
)

// PrintHelp writes usage, options, and remarks for the gathered slots to the
// parser's output writer. Descriptions come from Description attributes on
// the bound properties; the remarks section appears when any slot carries a
// Remarks attribute or is enum-typed, with enum slots listing their value
// set.
func (p *Parser) PrintHelp() {
	p.writeHelp(p.out)
}

func (p *Parser) writeHelp(w io.Writer) {
	fmt.Fprintf(w, "\nUSAGE: %s", p.program)
	if len(p.named) > 0 {
		fmt.Fprint(w, " [options]")
	}
	for _, s := range p.positional {
		if s.arg.Required {
			fmt.Fprintf(w, " %s", s.arg.ValueLabel)
		} else {
			fmt.Fprintf(w, " [%s]", s.arg.ValueLabel)
		}
	}
	fmt.Fprintln(w)

	names := sortedNames(p.named)
	if len(names) > 0 {
		fmt.Fprint(w, "\nOPTIONS:\n")

		column := 0
		for _, name := range names {
			if fw := flagWidth(name, p.named[name].arg) + 1; fw > column {
				column = fw
			}
		}
		if column > maxFlagColumn {
			column = maxFlagColumn
		}

		for _, name := range names {
			s := p.named[name]
			fmt.Fprintf(w, "  %s", flagText(name, s.arg))
			if d, ok := reflection.AttrOf[reflection.Description](s.prop.Attributes()); ok {
				pad := column - flagWidth(name, s.arg)
				if pad < 1 {
					pad = 1
				}
				fmt.Fprintf(w, "%*s%s", pad, "", d.Text)
			}
			fmt.Fprintln(w)
		}
	}

	if p.hasRemarks() {
		fmt.Fprint(w, "\nREMARKS:\n")
		for _, s := range p.positional {
			p.writeRemarks(w, s.arg.ValueLabel, s)
		}
		for _, name := range names {
			p.writeRemarks(w, name, p.named[name])
		}
	}
}

// flagText renders one option as it appears in the OPTIONS column. Prefix
// flags abut their key label, matching how they are typed.
func flagText(name string, arg reflection.CommandLineArg) string {
	text := "-" + name
	if arg.ValueLabel != "" {
		if arg.Prefix {
			text += "<" + arg.ValueLabel + ">"
		} else {
			text += " <" + arg.ValueLabel + ">"
		}
	}
	return text
}

// flagWidth is the rendered width plus one trailing space.
func flagWidth(name string, arg reflection.CommandLineArg) int {
	return len(flagText(name, arg)) + 1
}

func (p *Parser) hasRemarks() bool {
	for _, s := range p.positional {
		if slotHasRemarks(s) {
			return true
		}
	}
	for _, s := range p.named {
		if slotHasRemarks(s) {
			return true
		}
	}
	return false
}

func slotHasRemarks(s *slot) bool {
	return s.prop.Attributes().Has(reflection.AttrRemarks) ||
		s.prop.TypeInfo().SimpleKind() == reflection.EnumKind
}

// writeRemarks emits the slot's Remarks attribute when present. Enum-typed
// slots without one get their value set listed instead, with per-value
// Description attributes in a second column.
func (p *Parser) writeRemarks(w io.Writer, label string, s *slot) {
	if rem, ok := reflection.AttrOf[reflection.Remarks](s.prop.Attributes()); ok {
		wrapRemarks(w, rem.Text)
		return
	}
	if s.prop.TypeInfo().SimpleKind() != reflection.EnumKind {
		return
	}
	e, ok := enumOf(s.prop.TypeInfo())
	if !ok {
		return
	}

	column := 0
	for _, v := range e.Values() {
		if len(v.Name())+3 > column {
			column = len(v.Name()) + 3
		}
	}

	fmt.Fprintf(w, "  - <%s>:\n", label)
	for _, v := range e.Values() {
		fmt.Fprintf(w, "    * %s", v.Name())
		if d, ok := reflection.AttrOf[reflection.Description](v.Attributes()); ok {
			pad := column - (len(v.Name()) + 2)
			if pad < 1 {
				pad = 1
			}
			fmt.Fprintf(w, "%*s%s", pad, "", d.Text)
		}
		fmt.Fprintln(w)
	}
}

// wrapRemarks writes text as one bullet, breaking on spaces at the width
// limit. Continuation lines indent under the bullet text.
func wrapRemarks(w io.Writer, text string) {
	prefix := "  - "
	for len(text) > maxRemarksWidth {
		cut := maxRemarksWidth
		for cut > 0 && text[cut] != ' ' {
			cut--
		}
		if cut == 0 {
			break
		}
		fmt.Fprintf(w, "%s%s\n", prefix, text[:cut])
		text = text[cut+1:]
		prefix = "    "
	}
	fmt.Fprintf(w, "%s%s\n", prefix, text)
}
