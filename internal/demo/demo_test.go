package demo

import (
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facet-dev/facet/cmdargs"
	"github.com/facet-dev/facet/datastore"
	"github.com/facet-dev/facet/reflection"
)

func sampleScene() *Scene {
	return &Scene{
		Name:       "Foundry",
		Difficulty: DifficultyHard,
		Ambient:    Color{R: 16, G: 32, B: 48, A: 255},
		Entities: []Entity{
			{
				ID:     uuid.MustParse("1b671a64-40d5-491e-99b0-da01ff1f3341"),
				Name:   "crate",
				Static: true,
				Transform: Transform{
					Position: Vec2{X: 4.5, Y: -2.25},
					Rotation: 90,
					Scale:    Vec2{X: 1, Y: 1},
				},
				Components: []Component{
					&Sprite{Texture: "crate.png", Tint: Color{R: 255, G: 128, B: 0, A: 255}, Layer: 3},
				},
			},
			{
				ID:   uuid.MustParse("f47ac10b-58cc-4372-a567-0e02b2c3d479"),
				Name: "ball",
				Transform: Transform{
					Position: Vec2{X: 0, Y: 8},
					Scale:    Vec2{X: 0.5, Y: 0.5},
				},
				Components: []Component{
					&Physics{
						Mass:        4.5,
						Velocity:    Vec2{X: 1.5, Y: -0.5},
						VelocitySet: true,
						Layers:      []string{"debris", "vehicles"},
					},
					&Sprite{Texture: "ball.png", Tint: Color{R: 0, G: 0, B: 255, A: 255}, Layer: 1},
				},
			},
		},
		Settings: map[string]float64{"gravity": 9.5, "timescale": 1},
	}
}

func TestSceneRoundTrip(t *testing.T) {
	in := sampleScene()
	n, err := reflection.SerializeToNode(in)
	require.NoError(t, err)

	var out Scene
	require.NoError(t, reflection.DeserializeFromNode(n, &out))
	assert.Equal(t, in, &out)
}

func TestSceneSerialize_SkipsDefaults(t *testing.T) {
	n, err := reflection.SerializeToNode(sampleScene())
	require.NoError(t, err)

	entities, ok := n.TableGet("Entities")
	require.True(t, ok)
	crate, ok := entities.ArrayGet(0)
	require.True(t, ok)
	ball, ok := entities.ArrayGet(1)
	require.True(t, ok)

	_, ok = crate.TableGet("Static")
	assert.True(t, ok, "a static entity writes the flag")
	_, ok = ball.TableGet("Static")
	assert.False(t, ok, "a false Static flag is the default and stays out of data")

	tf, ok := ball.TableGet("Transform")
	require.True(t, ok)
	_, ok = tf.TableGet("Rotation")
	assert.False(t, ok, "zero rotation stays out of data")

	_, ok = n.TableGet("LegacyName")
	assert.False(t, ok, "deprecated properties never serialize")
}

func TestSceneSerialize_SkipsEmptyEntityList(t *testing.T) {
	n, err := reflection.SerializeToNode(&Scene{Name: "Lobby"})
	require.NoError(t, err)

	_, ok := n.TableGet("Entities")
	assert.False(t, ok, "HasNoEntities keeps the list out of data")

	var out Scene
	require.NoError(t, reflection.DeserializeFromNode(n, &out))
	assert.Nil(t, out.Entities)
}

func TestComponentPolymorphism(t *testing.T) {
	n, err := reflection.SerializeToNode(sampleScene())
	require.NoError(t, err)

	entities, _ := n.TableGet("Entities")
	ball, _ := entities.ArrayGet(1)
	comps, ok := ball.TableGet("Components")
	require.True(t, ok)
	first, ok := comps.ArrayGet(0)
	require.True(t, ok)
	kind, ok := first.TableGet("Type")
	require.True(t, ok)
	name, _ := kind.AsString()
	assert.Equal(t, "Physics", name)

	var out Scene
	require.NoError(t, reflection.DeserializeFromNode(n, &out))
	require.Len(t, out.Entities, 2)
	require.Len(t, out.Entities[1].Components, 2)
	assert.IsType(t, &Physics{}, out.Entities[1].Components[0])
	assert.IsType(t, &Sprite{}, out.Entities[1].Components[1])
}

func TestColorHexForm(t *testing.T) {
	n, err := reflection.SerializeToNode(Color{R: 255, G: 128, B: 0, A: 255})
	require.NoError(t, err)
	s, ok := n.AsString()
	require.True(t, ok)
	assert.Equal(t, "FF8000FF", s)

	var c Color
	require.NoError(t, reflection.DeserializeFromNode(datastore.String("ff8000ff"), &c))
	assert.Equal(t, Color{R: 255, G: 128, B: 0, A: 255}, c, "lowercase hex is accepted")

	assert.Error(t, reflection.DeserializeFromNode(datastore.String("F80F"), &c))
	assert.Error(t, reflection.DeserializeFromNode(datastore.String("XXYYZZWW"), &c))
}

func TestPhysicsLayersCodec(t *testing.T) {
	p := &Physics{Layers: []string{"debris", "vehicles"}, VelocitySet: true}
	n, err := reflection.SerializeToNode(p)
	require.NoError(t, err)

	layers, ok := n.TableGet("Layers")
	require.True(t, ok)
	s, _ := layers.AsString()
	assert.Equal(t, "debris,vehicles", s)

	var out Physics
	require.NoError(t, reflection.DeserializeFromNode(n, &out))
	assert.Equal(t, []string{"debris", "vehicles"}, out.Layers)
	assert.True(t, out.VelocitySet, "reading Velocity flips the tracking flag")
}

func TestSceneValidateHook(t *testing.T) {
	n, err := reflection.SerializeToNode(&Scene{})
	require.NoError(t, err)

	var out Scene
	err = reflection.DeserializeFromNode(n, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Validate")
}

func TestLegacyNameIgnored(t *testing.T) {
	n, err := reflection.SerializeToNode(sampleScene())
	require.NoError(t, err)
	n.TableSet("LegacyName", datastore.String("old-foundry"))

	var out Scene
	require.NoError(t, reflection.DeserializeFromNode(n, &out))
	assert.Empty(t, out.LegacyName, "deprecated input is tolerated but not read")
}

func TestUnknownKeysTolerated(t *testing.T) {
	n, err := reflection.SerializeToNode(sampleScene())
	require.NoError(t, err)
	n.TableSet("Weathr", datastore.String("rain"))

	var out Scene
	require.NoError(t, reflection.DeserializeFromNode(n, &out))
}

func TestSceneLevelAlias(t *testing.T) {
	byAlias, ok := reflection.GetType("Level")
	require.True(t, ok)
	byName, ok := reflection.GetType("Scene")
	require.True(t, ok)
	assert.Same(t, byName, byAlias)
}

func TestDifficultyEnum(t *testing.T) {
	dt, ok := reflection.GetType("Difficulty")
	require.True(t, ok)
	e, ok := dt.TryGetEnum()
	require.True(t, ok)

	v, ok := e.TryGetValue("Insane")
	require.True(t, ok)
	assert.Equal(t, int64(DifficultyNightmare), v)

	name, ok := e.TryGetName(int64(DifficultyNightmare))
	require.True(t, ok)
	assert.Equal(t, "Nightmare", name, "aliases never render")
}

func TestRegisterIdempotent(t *testing.T) {
	require.NotPanics(t, func() { Register() })
}

func clearEngineArgs() {
	ArgConfig = ""
	ArgFullscreen = false
	ArgWidth = 0
	ArgDifficulty = DifficultyEasy
	ArgDefines = nil
	ArgScript = ""
	ScriptArgOffset = -1
}

func TestEngineArgsParse(t *testing.T) {
	clearEngineArgs()
	p := cmdargs.New("demo",
		cmdargs.WithOutput(io.Discard),
		cmdargs.WithDiagnostics(io.Discard))

	rest, err := p.Parse([]string{
		"-config", "engine.yml",
		"-fullscreen",
		"-width=1920",
		"-difficulty", "Insane",
		"-Dgfx=high", "-Dsnd=off",
		"boot.lua",
		"--port", "8080",
	})
	require.NoError(t, err)

	assert.Equal(t, "engine.yml", ArgConfig)
	assert.True(t, ArgFullscreen)
	assert.Equal(t, int32(1920), ArgWidth)
	assert.Equal(t, DifficultyNightmare, ArgDifficulty)
	assert.Equal(t, map[string]string{"gfx": "high", "snd": "off"}, ArgDefines)
	assert.Equal(t, ScriptPath("boot.lua"), ArgScript)
	assert.Equal(t, 8, ScriptArgOffset, "the script sits at argv index 8")
	assert.Equal(t, []string{"--port", "8080"}, rest, "everything after the script passes through")
}

func TestEngineArgsEnvFallback(t *testing.T) {
	clearEngineArgs()
	env := map[string]string{"FACET_ENV_WIDTH": "1280"}
	p := cmdargs.New("demo",
		cmdargs.WithOutput(io.Discard),
		cmdargs.WithDiagnostics(io.Discard),
		cmdargs.WithLookupEnv(func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		}))

	_, err := p.Parse([]string{"boot.lua"})
	require.NoError(t, err)
	assert.Equal(t, int32(1280), ArgWidth)
	assert.Equal(t, 0, ScriptArgOffset, "the script sits at argv index 0")
}
