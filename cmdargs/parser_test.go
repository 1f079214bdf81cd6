package cmdargs

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facet-dev/facet/reflection"
)

// Static variables bound by the test registrations. Tests reset the registry
// and re-register, so every helper also restores the zero values.
type coreArgs struct{}

var (
	argWidth   int32
	argName    string
	argVerbose bool
	argInput   string
)

func registerCoreArgs() {
	argWidth, argName, argVerbose, argInput = 0, "", false, ""
	reflection.RegisterStatic[coreArgs]("CoreArgs").
		StaticVar("Width", &argWidth,
			reflection.CommandLineArg{Name: "width", ValueLabel: "pixels"},
			reflection.Description{Text: "Viewport width in pixels."}).
		StaticVar("Name", &argName,
			reflection.CommandLineArg{Name: "name", ValueLabel: "text"}).
		StaticVar("Verbose", &argVerbose,
			reflection.CommandLineArg{Name: "verbose"},
			reflection.Description{Text: "Verbose output."}).
		StaticVar("Input", &argInput,
			reflection.CommandLineArg{Position: 0, ValueLabel: "input"}).
		Register()
}

type defineArgs struct{}

var argDefines map[string]string

func registerDefineArgs() {
	argDefines = nil
	reflection.RegisterStatic[defineArgs]("DefineArgs").
		StaticVar("Defines", &argDefines,
			reflection.CommandLineArg{Name: "D", ValueLabel: "key=value", Prefix: true}).
		Register()
}

// scriptPath records where on the command line it was assigned.
type scriptPath string

var (
	argScript       scriptPath
	argScriptOffset int
)

func (*scriptPath) RecordArgOffset(offset int) { argScriptOffset = offset }

func newTestParser() (*Parser, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	diag := &bytes.Buffer{}
	p := New("facet",
		WithOutput(out),
		WithDiagnostics(diag),
		WithLookupEnv(func(string) (string, bool) { return "", false }),
	)
	return p, out, diag
}

func TestParser_NamedAndPositional(t *testing.T) {
	defer reflection.Reset()
	registerCoreArgs()
	p, _, _ := newTestParser()

	rest, err := p.Parse([]string{"-width", "800", "positional1"})
	require.NoError(t, err)
	assert.Nil(t, rest)
	assert.Equal(t, int32(800), argWidth)
	assert.Equal(t, "positional1", argInput)
}

func TestParser_ValueForms(t *testing.T) {
	defer reflection.Reset()
	registerCoreArgs()

	cases := []struct {
		name string
		argv []string
	}{
		{"single dash equals", []string{"-width=640"}},
		{"double dash space", []string{"--width", "640"}},
		{"double dash equals", []string{"--width=640"}},
		{"slash space", []string{"/width", "640"}},
		{"slash equals", []string{"/width=640"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			argWidth = 0
			p, _, _ := newTestParser()
			_, err := p.Parse(tc.argv)
			require.NoError(t, err)
			assert.Equal(t, int32(640), argWidth)
		})
	}
}

func TestParser_RequiredMissing(t *testing.T) {
	defer reflection.Reset()
	var width int32
	type reqArgs struct{}
	reflection.RegisterStatic[reqArgs]("ReqArgs").
		StaticVar("Width", &width,
			reflection.CommandLineArg{Name: "width", ValueLabel: "pixels", Required: true}).
		Register()

	p, _, diag := newTestParser()
	_, err := p.Parse(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required argument 'width'")
	assert.Equal(t, "facet: error: missing required argument 'width'\n", diag.String())
}

func TestParser_PrefixArgs(t *testing.T) {
	defer reflection.Reset()
	registerDefineArgs()
	p, _, _ := newTestParser()

	_, err := p.Parse([]string{"-Dfoo=bar", "-Dbaz=qux"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"foo": "bar", "baz": "qux"}, argDefines)
}

func TestParser_PrefixArgs_EmptyAndRepeat(t *testing.T) {
	defer reflection.Reset()
	registerDefineArgs()
	p, _, _ := newTestParser()

	// A prefix key without a value binds the empty string, and repeated
	// assignment is allowed.
	_, err := p.Parse([]string{"-Dflag", "-Dmode=fast", "-Dmode=slow"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"flag": "", "mode": "slow"}, argDefines)
}

func TestParser_PrefixArgs_BareLetter(t *testing.T) {
	defer reflection.Reset()
	registerDefineArgs()
	p, _, _ := newTestParser()

	_, err := p.Parse([]string{"-D"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid prefix argument 'D'")
}

func TestParser_BoolPushBack(t *testing.T) {
	defer reflection.Reset()
	registerCoreArgs()
	p, _, _ := newTestParser()

	// input.txt does not parse as a boolean, so -verbose becomes true and
	// the token is consumed by the positional slot instead.
	_, err := p.Parse([]string{"-verbose", "input.txt"})
	require.NoError(t, err)
	assert.True(t, argVerbose)
	assert.Equal(t, "input.txt", argInput)
}

func TestParser_BoolExplicitValue(t *testing.T) {
	defer reflection.Reset()
	registerCoreArgs()

	p, _, _ := newTestParser()
	_, err := p.Parse([]string{"-verbose", "false", "in.txt"})
	require.NoError(t, err)
	assert.False(t, argVerbose)
	assert.Equal(t, "in.txt", argInput)

	p, _, _ = newTestParser()
	_, err = p.Parse([]string{"-verbose"})
	require.NoError(t, err)
	assert.True(t, argVerbose)

	// An inline value never pushes back.
	p, _, _ = newTestParser()
	_, err = p.Parse([]string{"-verbose=bananas"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'verbose' expects boolean")
}

func TestParser_MissingValue(t *testing.T) {
	defer reflection.Reset()
	registerCoreArgs()

	cases := []struct {
		name string
		argv []string
	}{
		{"at end", []string{"-name"}},
		{"before flag", []string{"-name", "-verbose"}},
		{"empty inline", []string{"-name="}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, _, _ := newTestParser()
			_, err := p.Parse(tc.argv)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "argument to 'name' is missing (expected 1 value)")
		})
	}
}

func TestParser_NumericKinds(t *testing.T) {
	defer reflection.Reset()
	var (
		tiny  int8
		port  uint16
		scale float32
	)
	type numArgs struct{}
	reflection.RegisterStatic[numArgs]("NumArgs").
		StaticVar("Tiny", &tiny, reflection.CommandLineArg{Name: "tiny", ValueLabel: "n"}).
		StaticVar("Port", &port, reflection.CommandLineArg{Name: "port", ValueLabel: "n"}).
		StaticVar("Scale", &scale, reflection.CommandLineArg{Name: "scale", ValueLabel: "f"}).
		Register()

	p, _, _ := newTestParser()
	_, err := p.Parse([]string{"-tiny=-5", "-port", "65535", "-scale", "1.5"})
	require.NoError(t, err)
	assert.Equal(t, int8(-5), tiny)
	assert.Equal(t, uint16(65535), port)
	assert.Equal(t, float32(1.5), scale)

	p, _, _ = newTestParser()
	_, err = p.Parse([]string{"-tiny", "200"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'tiny' expects int8")

	p, _, _ = newTestParser()
	_, err = p.Parse([]string{"-port=70000"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'port' expects uint16")

	p, _, _ = newTestParser()
	_, err = p.Parse([]string{"-scale=x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'scale' expects float32")
}

func TestParser_EnumValues(t *testing.T) {
	defer reflection.Reset()
	type logLevel int32
	const (
		logInfo  logLevel = 0
		logWarn  logLevel = 1
		logError logLevel = 2
	)
	var level logLevel
	type levelArgs struct{}

	reflection.RegisterEnum[logLevel]("LogLevel").
		Value("Info", logInfo).
		Value("Warn", logWarn).
		Value("Error", logError).
		Alias("Warning", "Warn").
		Register()
	reflection.RegisterStatic[levelArgs]("LevelArgs").
		StaticVar("Level", &level,
			reflection.CommandLineArg{Name: "level", ValueLabel: "level"}).
		Register()

	p, _, _ := newTestParser()
	_, err := p.Parse([]string{"-level", "Warn"})
	require.NoError(t, err)
	assert.Equal(t, logWarn, level)

	_, err = p.Parse([]string{"-level", "2"})
	require.NoError(t, err)
	assert.Equal(t, logError, level)

	_, err = p.Parse([]string{"-level", "Warning"})
	require.NoError(t, err)
	assert.Equal(t, logWarn, level)

	_, err = p.Parse([]string{"-level", "Fatal"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'level' expects valid option, not 'Fatal'")
}

func TestParser_Help(t *testing.T) {
	defer reflection.Reset()
	registerCoreArgs()

	for _, flag := range []string{"-h", "-help", "-?", "/?", "--help"} {
		p, out, diag := newTestParser()
		_, err := p.Parse([]string{flag})
		assert.ErrorIs(t, err, ErrHelpRequested)
		assert.Contains(t, out.String(), "USAGE: facet")
		assert.Contains(t, out.String(), "OPTIONS:")
		assert.Empty(t, diag.String())
	}
}

func TestParser_Environment(t *testing.T) {
	defer reflection.Reset()
	registerCoreArgs()

	env := map[string]string{
		"FACET_ENV_WIDTH": "1024",
		"FACET_ENV_NAME":  "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	p := New("facet", WithDiagnostics(&bytes.Buffer{}), WithLookupEnv(lookup))

	_, err := p.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1024), argWidth)
	assert.Equal(t, "", argName, "empty environment values are ignored")

	// argv wins over the environment.
	reflection.Reset()
	registerCoreArgs()
	_, err = p.Parse([]string{"-width", "800"})
	require.NoError(t, err)
	assert.Equal(t, int32(800), argWidth)
}

func TestParser_Environment_ParseFailure(t *testing.T) {
	defer reflection.Reset()
	registerCoreArgs()

	lookup := func(k string) (string, bool) {
		if k == "FACET_ENV_WIDTH" {
			return "abc", true
		}
		return "", false
	}
	p := New("facet", WithDiagnostics(&bytes.Buffer{}), WithLookupEnv(lookup))
	_, err := p.Parse(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'width' expects int32")
}

func TestParser_EnvPrefixOption(t *testing.T) {
	defer reflection.Reset()
	registerCoreArgs()

	lookup := func(k string) (string, bool) {
		if k == "APP_WIDTH" {
			return "640", true
		}
		return "", false
	}
	p := New("facet",
		WithDiagnostics(&bytes.Buffer{}),
		WithEnvPrefix("APP_"),
		WithLookupEnv(lookup),
	)
	_, err := p.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, int32(640), argWidth)
}

func TestParser_Terminator(t *testing.T) {
	defer reflection.Reset()
	var width int32
	argScript, argScriptOffset = "", -1
	type wrapArgs struct{}
	reflection.RegisterStatic[wrapArgs]("WrapArgs").
		StaticVar("Width", &width,
			reflection.CommandLineArg{Name: "width", ValueLabel: "pixels"}).
		StaticVar("Script", &argScript,
			reflection.CommandLineArg{Position: 0, ValueLabel: "script", Required: true, Terminator: true}).
		Register()

	p, _, _ := newTestParser()
	rest, err := p.Parse([]string{"-width", "800", "run.js", "--wrapped", "x"})
	require.NoError(t, err)
	assert.Equal(t, int32(800), width)
	assert.Equal(t, scriptPath("run.js"), argScript)
	assert.Equal(t, []string{"--wrapped", "x"}, rest)
	assert.Equal(t, 2, argScriptOffset, "terminator records its argv index")
}

func TestParser_NamedArgOffset(t *testing.T) {
	defer reflection.Reset()
	argScript, argScriptOffset = "", -1
	type runArgs struct{}
	reflection.RegisterStatic[runArgs]("RunArgs").
		StaticVar("Run", &argScript,
			reflection.CommandLineArg{Name: "run", ValueLabel: "script"}).
		Register()

	p, _, _ := newTestParser()
	_, err := p.Parse([]string{"-run", "x.js"})
	require.NoError(t, err)
	assert.Equal(t, scriptPath("x.js"), argScript)
	assert.Equal(t, 0, argScriptOffset, "offset is the flag token index")
}

func TestParser_DuplicateAssignment(t *testing.T) {
	defer reflection.Reset()
	registerCoreArgs()

	p, _, _ := newTestParser()
	_, err := p.Parse([]string{"-width", "1", "-width", "2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "argument 'width' is defined twice")

	// Positional fill state survives across Consume calls on one parser.
	p, _, _ = newTestParser()
	require.NoError(t, p.Gather())
	_, err = p.Consume([]string{"in1"})
	require.NoError(t, err)
	_, err = p.Consume([]string{"in2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "positional argument 'input' is defined twice")
}

func TestParser_PositionalOverflow(t *testing.T) {
	defer reflection.Reset()
	registerCoreArgs()
	p, _, _ := newTestParser()

	_, err := p.Parse([]string{"one", "two"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many positional arguments, at most 1 expected")
}

func TestParser_UnknownAndMalformedFlags(t *testing.T) {
	defer reflection.Reset()
	registerCoreArgs()

	p, _, _ := newTestParser()
	_, err := p.Parse([]string{"-nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid argument 'nope'")

	for _, tok := range []string{"-", "--", "-=x", "---x"} {
		p, _, _ := newTestParser()
		_, err := p.Parse([]string{tok})
		assert.Error(t, err, "token %q", tok)
	}
}

func TestParser_Gather_NonStaticTagged(t *testing.T) {
	defer reflection.Reset()
	type badHolder struct{ Width int32 }
	reflection.Register[badHolder]("BadHolder").
		PropAttrs("Width", reflection.CommandLineArg{Name: "width"}).
		Register()

	p, _, _ := newTestParser()
	err := p.Gather()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not static")
}

func TestParser_Gather_PositionGap(t *testing.T) {
	defer reflection.Reset()
	var a, c string
	type gapArgs struct{}
	reflection.RegisterStatic[gapArgs]("GapArgs").
		StaticVar("A", &a, reflection.CommandLineArg{Position: 0, ValueLabel: "a"}).
		StaticVar("C", &c, reflection.CommandLineArg{Position: 2, ValueLabel: "c"}).
		Register()

	p, _, _ := newTestParser()
	err := p.Gather()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no argument is defined for position 1")
}

func TestParser_Gather_DuplicateSlots(t *testing.T) {
	defer reflection.Reset()
	var a, b string
	type dupNamed struct{}
	reflection.RegisterStatic[dupNamed]("DupNamed").
		StaticVar("A", &a, reflection.CommandLineArg{Name: "out", ValueLabel: "a"}).
		StaticVar("B", &b, reflection.CommandLineArg{Name: "out", ValueLabel: "b"}).
		Register()

	p, _, _ := newTestParser()
	err := p.Gather()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "named argument 'out' is defined twice")

	reflection.Reset()
	type dupPos struct{}
	reflection.RegisterStatic[dupPos]("DupPos").
		StaticVar("A", &a, reflection.CommandLineArg{Position: 0, ValueLabel: "a"}).
		StaticVar("B", &b, reflection.CommandLineArg{Position: 0, ValueLabel: "b"}).
		Register()

	p, _, _ = newTestParser()
	err = p.Gather()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "position 0 is defined twice")
}

func TestParser_Gather_ComplexType(t *testing.T) {
	defer reflection.Reset()
	var list []string
	type listArgs struct{}
	reflection.RegisterStatic[listArgs]("ListArgs").
		StaticVar("List", &list, reflection.CommandLineArg{Name: "list", ValueLabel: "items"}).
		Register()

	p, _, _ := newTestParser()
	err := p.Gather()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a simple type")
}

func TestParser_Gather_DisableCommandLineArgs(t *testing.T) {
	defer reflection.Reset()
	var kept, dropped string
	type keptArgs struct{}
	type droppedArgs struct{}
	reflection.RegisterStatic[keptArgs]("KeptArgs").
		Attrs(reflection.DisableCommandLineArgs{TypeName: "DroppedArgs"}).
		StaticVar("Kept", &kept, reflection.CommandLineArg{Name: "kept", ValueLabel: "v"}).
		Register()
	reflection.RegisterStatic[droppedArgs]("DroppedArgs").
		StaticVar("Dropped", &dropped, reflection.CommandLineArg{Name: "dropped", ValueLabel: "v"}).
		Register()

	p, _, _ := newTestParser()
	require.NoError(t, p.Gather())

	_, err := p.Consume([]string{"-kept", "yes"})
	require.NoError(t, err)
	assert.Equal(t, "yes", kept)

	_, err = p.Consume([]string{"-dropped", "no"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid argument 'dropped'")
}

func TestParser_Verify_TerminatorNotLast(t *testing.T) {
	defer reflection.Reset()
	var s1, s2 string
	type badOrder struct{}
	reflection.RegisterStatic[badOrder]("BadOrder").
		StaticVar("Script", &s1,
			reflection.CommandLineArg{Position: 0, ValueLabel: "script", Terminator: true}).
		StaticVar("Extra", &s2,
			reflection.CommandLineArg{Position: 1, ValueLabel: "extra"}).
		Register()

	p, _, _ := newTestParser()
	_, err := p.Parse(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marked as terminator but is not the last positional")
}

func TestParser_PrefixConsumesNextToken(t *testing.T) {
	defer reflection.Reset()
	registerDefineArgs()
	p, _, _ := newTestParser()

	// Space-separated prefix values follow the same -key value rule.
	_, err := p.Parse([]string{"-Dfoo", "bar"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"foo": "bar"}, argDefines)
}
