package cmdargs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/facet-dev/facet/reflection"
)

// ErrHelpRequested reports that argv asked for help with -h, -help, or -?.
// The help text has already been written to the parser's output writer when
// this is returned.
var ErrHelpRequested = errors.New("help requested")

// ArgOffsetRecorder lets a bound value learn where on the command line it was
// filled. After a slot is set from argv, the parser checks whether a pointer
// to the bound variable implements this interface and, if so, hands it the
// index of the token that named the argument. Environment fallback never
// records an offset.
type ArgOffsetRecorder interface {
	RecordArgOffset(offset int)
}

// slot tracks one gathered argument through the parse phases.
type slot struct {
	prop   *reflection.Property
	arg    reflection.CommandLineArg
	filled bool
}

// Parser binds command line arguments to static properties tagged with the
// CommandLineArg attribute. The zero value is not usable; construct with New.
//
// Parsing runs in a fixed order: Gather collects slots from the registry,
// Consume applies argv, ApplyEnvironment fills named slots argv left empty,
// and Verify checks required slots. Parse runs all four. The parser never
// calls os.Exit; every failure writes a diagnostic and returns an error for
// the caller to act on.
type Parser struct {
	program   string
	envPrefix string
	out       io.Writer
	diag      io.Writer
	lookupEnv func(string) (string, bool)

	named      map[string]*slot
	positional []*slot
}

// Option configures a Parser.
type Option func(*Parser)

// WithEnvPrefix overrides the prefix ApplyEnvironment prepends to uppercased
// argument names. The default is "FACET_ENV_".
func WithEnvPrefix(prefix string) Option {
	return func(p *Parser) { p.envPrefix = prefix }
}

// WithOutput redirects help text, which defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(p *Parser) { p.out = w }
}

// WithDiagnostics redirects error diagnostics, which default to stderr.
func WithDiagnostics(w io.Writer) Option {
	return func(p *Parser) { p.diag = w }
}

// WithLookupEnv replaces the environment probe, normally os.LookupEnv.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(p *Parser) { p.lookupEnv = fn }
}

// New returns a Parser that reports diagnostics under the given program name.
func New(program string, opts ...Option) *Parser {
	p := &Parser{
		program:   program,
		envPrefix: "FACET_ENV_",
		out:       os.Stdout,
		diag:      os.Stderr,
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse runs Gather, Consume, ApplyEnvironment, and Verify. It returns the
// unconsumed remainder when a terminator positional stopped consumption. On
// failure a diagnostic has been written, the returned error carries the same
// message, and the bound variables are left in whatever state the phases
// reached; callers must not rely on partially parsed values.
func (p *Parser) Parse(argv []string) ([]string, error) {
	if err := p.Gather(); err != nil {
		return nil, err
	}
	rest, err := p.Consume(argv)
	if err != nil {
		return nil, err
	}
	if err := p.ApplyEnvironment(); err != nil {
		return nil, err
	}
	if err := p.Verify(); err != nil {
		return nil, err
	}
	return rest, nil
}

// Gather scans every registered type for static properties tagged
// CommandLineArg and partitions them into named and positional slots. Types
// named by a DisableCommandLineArgs attribute anywhere in the registry are
// skipped. Positional slots must be dense from zero, prefix slots must be a
// single letter bound to a map[string]string static, and every other slot
// must bind a simple-kinded variable. Calling Gather again rebuilds the
// slots and clears any fill state.
func (p *Parser) Gather() error {
	p.named = make(map[string]*slot)
	p.positional = nil

	types := reflection.Types()

	disabled := make(map[string]bool)
	for _, t := range types {
		if d, ok := reflection.AttrOf[reflection.DisableCommandLineArgs](t.Attributes()); ok {
			disabled[d.TypeName] = true
		}
	}

	for _, t := range types {
		if disabled[t.Name()] {
			continue
		}
		for i := 0; i < t.PropertyCount(); i++ {
			prop := t.PropertyAt(i)
			arg, ok := reflection.AttrOf[reflection.CommandLineArg](prop.Attributes())
			if !ok {
				continue
			}
			if !prop.IsStatic() {
				return p.errorf("%s.%s is tagged CommandLineArg but is not static", t.Name(), prop.Name())
			}
			s := &slot{prop: prop, arg: arg}
			var err error
			if arg.Name != "" {
				err = p.placeNamed(t, s)
			} else {
				err = p.placePositional(t, s)
			}
			if err != nil {
				return err
			}
		}
	}

	for i, s := range p.positional {
		if s == nil {
			return p.errorf("no argument is defined for position %d; positions must be dense from 0", i)
		}
	}
	return nil
}

func (p *Parser) placeNamed(t *reflection.Type, s *slot) error {
	name := s.arg.Name
	if _, dup := p.named[name]; dup {
		return p.errorf("named argument '%s' is defined twice", name)
	}
	if s.arg.Prefix {
		if len(name) != 1 {
			return p.errorf("prefix argument '%s' must be a single letter", name)
		}
		if _, ok := p.prefixTable(s); !ok {
			return p.errorf("prefix argument '%s' must bind a map[string]string static", name)
		}
	} else if err := p.checkBindable(t, s); err != nil {
		return err
	}
	p.named[name] = s
	return nil
}

func (p *Parser) placePositional(t *reflection.Type, s *slot) error {
	pos := s.arg.Position
	if pos < 0 {
		return p.errorf("%s.%s has negative position %d", t.Name(), s.prop.Name(), pos)
	}
	if err := p.checkBindable(t, s); err != nil {
		return err
	}
	for len(p.positional) <= pos {
		p.positional = append(p.positional, nil)
	}
	if p.positional[pos] != nil {
		return p.errorf("position %d is defined twice", pos)
	}
	p.positional[pos] = s
	return nil
}

// checkBindable rejects slots whose variable cannot be filled from a single
// token. Prefix slots are checked separately against the table contract.
func (p *Parser) checkBindable(t *reflection.Type, s *slot) error {
	if s.prop.TypeInfo().SimpleKind() == reflection.ComplexKind {
		return p.errorf("%s.%s is tagged CommandLineArg but %s is not a simple type",
			t.Name(), s.prop.Name(), s.prop.TypeInfo())
	}
	return nil
}

// prefixTable resolves the map a prefix slot writes through.
func (p *Parser) prefixTable(s *slot) (*map[string]string, bool) {
	w, ok := s.prop.TryGetPtr(reflection.WeakAny{})
	if !ok {
		return nil, false
	}
	return reflection.PointerTo[map[string]string](w)
}

// Consume walks argv left to right, filling named and positional slots. A
// positional slot marked Terminator stops consumption; the tokens after it
// are returned for the caller to hand to the wrapped program. nil means argv
// was consumed in full.
func (p *Parser) Consume(argv []string) ([]string, error) {
	pos := 0
	for i := 0; i < len(argv); i++ {
		tok := argv[i]

		if !isFlag(tok) {
			if pos >= len(p.positional) {
				return nil, p.errorf("too many positional arguments, at most %d expected", len(p.positional))
			}
			s := p.positional[pos]
			if s.filled {
				return nil, p.errorf("positional argument '%s' is defined twice", s.arg.ValueLabel)
			}
			if err := p.setSlot(s, s.arg.ValueLabel, tok, true, nil); err != nil {
				return nil, err
			}
			p.recordOffset(s, i)
			s.filled = true
			pos++
			if s.arg.Terminator {
				return argv[i+1:], nil
			}
			continue
		}

		key, value, hasValue := splitFlag(tok)
		if key == "" || key[0] == '-' {
			return nil, p.errorf("invalid named argument '%s'", tok)
		}
		offset := i

		// -key value form: take the next token as the value unless it looks
		// like another flag.
		pushBackable := false
		if !hasValue && i+1 < len(argv) && !isFlag(argv[i+1]) {
			value = argv[i+1]
			hasValue = true
			pushBackable = true
			i++
		}

		if key == "h" || key == "help" || key == "?" {
			p.PrintHelp()
			return nil, ErrHelpRequested
		}

		pushedBack, err := p.applyNamed(key, value, hasValue, pushBackable, offset)
		if err != nil {
			return nil, err
		}
		if pushedBack {
			i--
		}
	}
	return nil, nil
}

// ApplyEnvironment fills named slots that argv left empty from environment
// variables named prefix plus the uppercased argument name. Unset and empty
// variables are skipped, as are prefix slots.
func (p *Parser) ApplyEnvironment() error {
	for _, name := range sortedNames(p.named) {
		s := p.named[name]
		if s.filled || s.arg.Prefix {
			continue
		}
		value, ok := p.lookupEnv(p.envPrefix + strings.ToUpper(name))
		if !ok || value == "" {
			continue
		}
		if err := p.setSlot(s, name, value, true, nil); err != nil {
			return err
		}
		s.filled = true
	}
	return nil
}

// Verify checks that every required slot was filled by argv or the
// environment, and that a terminator, when declared, is the last positional.
func (p *Parser) Verify() error {
	for _, s := range p.positional {
		if s.arg.Required && !s.filled {
			return p.errorf("missing required argument '%s'", s.arg.ValueLabel)
		}
	}
	for _, name := range sortedNames(p.named) {
		s := p.named[name]
		if s.arg.Required && !s.filled {
			return p.errorf("missing required argument '%s'", name)
		}
	}
	for i, s := range p.positional {
		if s.arg.Terminator && i+1 != len(p.positional) {
			return p.errorf("argument '%s' is marked as terminator but is not the last positional", s.arg.ValueLabel)
		}
	}
	return nil
}

// isFlag reports whether the token names an argument rather than filling a
// positional slot.
func isFlag(tok string) bool {
	return len(tok) > 0 && (tok[0] == '-' || tok[0] == '/')
}

// splitFlag strips the -, --, or / marker and cuts an inline =value.
func splitFlag(tok string) (key, value string, hasValue bool) {
	body := tok[1:]
	if tok[0] == '-' && strings.HasPrefix(body, "-") {
		body = body[1:]
	}
	key = body
	if eq := strings.IndexByte(body, '='); eq >= 0 {
		key = body[:eq]
		value = body[eq+1:]
		hasValue = true
	}
	return key, value, hasValue
}

// applyNamed routes one named token to its slot. A key that is not itself a
// slot falls back to prefix resolution on its first letter, so -Dkey=value
// lands in the table bound to the prefix slot D. Prefix slots may repeat;
// every other named slot errors on a second assignment.
func (p *Parser) applyNamed(key, value string, hasValue, pushBackable bool, offset int) (pushedBack bool, err error) {
	s, ok := p.named[key]
	subKey := ""
	if !ok && len(key) > 1 {
		if ps, found := p.named[key[:1]]; found && ps.arg.Prefix {
			s, ok = ps, true
			subKey = key[1:]
		}
	}
	if !ok {
		return false, p.errorf("invalid argument '%s'", key)
	}

	if s.arg.Prefix {
		if subKey == "" {
			return false, p.errorf("invalid prefix argument '%s'", key)
		}
		tbl, ok := p.prefixTable(s)
		if !ok {
			return false, p.errorf("invalid prefix argument '%s'", key)
		}
		if *tbl == nil {
			*tbl = make(map[string]string)
		}
		(*tbl)[subKey] = strings.TrimSpace(value)
	} else {
		if s.filled {
			return false, p.errorf("argument '%s' is defined twice", key)
		}
		var pb *bool
		if pushBackable {
			pb = &pushedBack
		}
		if err := p.setSlot(s, key, value, hasValue, pb); err != nil {
			return false, err
		}
	}

	p.recordOffset(s, offset)
	s.filled = true
	return pushedBack, nil
}

// setSlot parses raw per the slot's simple kind and writes it through the
// property. pushBack, when non-nil, enables the boolean disambiguation: a
// value that does not parse as a boolean sets the flag true and reports the
// token for reuse as a positional.
func (p *Parser) setSlot(s *slot, name, raw string, hasValue bool, pushBack *bool) error {
	kind := s.prop.TypeInfo().SimpleKind()

	value := strings.TrimSpace(raw)
	if !hasValue || value == "" {
		// Only booleans accept a bare flag.
		if kind != reflection.BoolKind {
			return p.errorf("argument to '%s' is missing (expected 1 value)", name)
		}
		if !s.prop.TrySet(reflection.WeakAny{}, reflection.AnyOf(true)) {
			return p.errorf("'%s' expects boolean", name)
		}
		return nil
	}

	var v reflection.Any
	switch {
	case kind == reflection.BoolKind:
		b, err := strconv.ParseBool(value)
		if err != nil {
			if pushBack == nil {
				return p.errorf("'%s' expects boolean", name)
			}
			*pushBack = true
			b = true
		}
		v = reflection.AnyOf(b)

	case kind == reflection.EnumKind:
		// Integer first, then name lookup; names include registered aliases.
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			e, ok := enumOf(s.prop.TypeInfo())
			if !ok {
				return p.errorf("'%s' expects valid option, not '%s'", name, value)
			}
			n, ok = e.TryGetValue(value)
			if !ok {
				return p.errorf("'%s' expects valid option, not '%s'", name, value)
			}
		}
		v = reflection.AnyOf(n)

	case kind.IsSigned():
		n, err := strconv.ParseInt(value, 10, kindBits(kind))
		if err != nil {
			return p.errorf("'%s' expects %s", name, kind)
		}
		v = reflection.AnyOf(n)

	case kind.IsUnsigned():
		n, err := strconv.ParseUint(value, 10, kindBits(kind))
		if err != nil {
			return p.errorf("'%s' expects %s", name, kind)
		}
		v = reflection.AnyOf(n)

	case kind.IsFloat():
		f, err := strconv.ParseFloat(value, kindBits(kind))
		if err != nil {
			return p.errorf("'%s' expects %s", name, kind)
		}
		v = reflection.AnyOf(f)

	case kind == reflection.StringKind:
		v = reflection.AnyOf(value)

	default:
		return p.errorf("'%s' has unsupported type %s", name, s.prop.TypeInfo())
	}

	if !s.prop.TrySet(reflection.WeakAny{}, v) {
		return p.errorf("'%s' expects %s", name, kind)
	}
	return nil
}

// recordOffset reports the argv index to bound values that track their
// origin on the command line.
func (p *Parser) recordOffset(s *slot, offset int) {
	w, ok := s.prop.TryGetPtr(reflection.WeakAny{})
	if !ok {
		return
	}
	if rec, ok := w.Interface().(ArgOffsetRecorder); ok {
		rec.RecordArgOffset(offset)
	}
}

// errorf writes a program-prefixed diagnostic and returns the bare message
// as an error.
func (p *Parser) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(p.diag, "%s: error: %s\n", p.program, msg)
	return errors.New(msg)
}

func enumOf(ti *reflection.TypeInfo) (*reflection.Enum, bool) {
	t := ti.Type()
	if t == nil {
		return nil, false
	}
	return t.TryGetEnum()
}

func kindBits(k reflection.SimpleKind) int {
	switch k {
	case reflection.Int8Kind, reflection.Uint8Kind:
		return 8
	case reflection.Int16Kind, reflection.Uint16Kind:
		return 16
	case reflection.Int32Kind, reflection.Uint32Kind, reflection.Float32Kind:
		return 32
	default:
		return 64
	}
}

func sortedNames(m map[string]*slot) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
