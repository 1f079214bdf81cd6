package demo

import "github.com/facet-dev/facet/reflection"

// EngineArgs carries no instance state; it exists to anchor the engine's
// command line bindings in the registry.
type EngineArgs struct{}

// ScriptPath is the boot script positional. It remembers where on the
// command line it was found so the remainder can be handed to the script.
type ScriptPath string

// RecordArgOffset stores the argv index the script path was parsed from.
func (*ScriptPath) RecordArgOffset(offset int) { ScriptArgOffset = offset }

// Command line bindings. The parser fills these from argv or from
// FACET_ENV_* variables.
var (
	ArgConfig     string
	ArgFullscreen bool
	ArgWidth      int32
	ArgDifficulty Difficulty
	ArgDefines    map[string]string
	ArgScript     ScriptPath

	// ScriptArgOffset is the argv index ArgScript was filled from, or -1.
	ScriptArgOffset = -1
)

func registerArgs() {
	reflection.RegisterStatic[EngineArgs]("EngineArgs").
		Attrs(reflection.Description{Text: "Engine command line arguments."}).
		StaticVar("Config", &ArgConfig,
			reflection.CommandLineArg{Name: "config", ValueLabel: "path"},
			reflection.Description{Text: "Engine configuration file to load."}).
		StaticVar("Fullscreen", &ArgFullscreen,
			reflection.CommandLineArg{Name: "fullscreen"},
			reflection.Description{Text: "Start in fullscreen mode."}).
		StaticVar("Width", &ArgWidth,
			reflection.CommandLineArg{Name: "width", ValueLabel: "pixels"},
			reflection.Description{Text: "Backbuffer width in pixels."}).
		StaticVar("Difficulty", &ArgDifficulty,
			reflection.CommandLineArg{Name: "difficulty", ValueLabel: "level"},
			reflection.Description{Text: "Difficulty preset to boot into."}).
		StaticVar("Defines", &ArgDefines,
			reflection.CommandLineArg{Name: "D", ValueLabel: "key=value", Prefix: true},
			reflection.Description{Text: "Script preprocessor defines."},
			reflection.Remarks{Text: "-D may repeat; later values overwrite earlier ones."}).
		StaticVar("Script", &ArgScript,
			reflection.CommandLineArg{Position: 0, ValueLabel: "script", Terminator: true},
			reflection.Description{Text: "Boot script; later arguments pass through to it."}).
		Register()
}
