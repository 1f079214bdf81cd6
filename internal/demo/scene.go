package demo

import (
	"strings"

	"github.com/google/uuid"

	"github.com/facet-dev/facet/datastore"
	"github.com/facet-dev/facet/reflection"
)

// Difficulty selects the challenge preset a scene boots into.
type Difficulty int32

const (
	DifficultyEasy Difficulty = iota
	DifficultyNormal
	DifficultyHard
	DifficultyNightmare
)

// Vec2 is a 2D vector.
type Vec2 struct {
	X float32
	Y float32
}

// Transform places an entity in the scene.
type Transform struct {
	Position Vec2
	Rotation float32
	Scale    Vec2
}

// Component is one piece of entity behavior. Concrete components round-trip
// through data with their registered name under the "Type" key.
type Component interface {
	Kind() string
}

// Sprite draws a textured quad.
type Sprite struct {
	Texture string
	Tint    Color
	Layer   int32
}

// Kind identifies the component in diagnostics.
func (*Sprite) Kind() string { return "Sprite" }

// Physics gives an entity mass and motion.
type Physics struct {
	Mass        float32
	Velocity    Vec2
	VelocitySet bool
	Kinematic   bool
	Layers      []string
}

func (*Physics) Kind() string { return "Physics" }

// SerializeLayers writes the collision layer list as one comma-joined
// string, the form the level tooling edits by hand.
func (p *Physics) SerializeLayers(ctx *reflection.Context) *datastore.Node {
	return datastore.String(strings.Join(p.Layers, ","))
}

// DeserializeLayers reads the comma-joined collision layer list.
func (p *Physics) DeserializeLayers(ctx *reflection.Context, n *datastore.Node) bool {
	s, ok := n.AsString()
	if !ok {
		return false
	}
	if s == "" {
		p.Layers = nil
		return true
	}
	p.Layers = strings.Split(s, ",")
	return true
}

// Entity is one placed object in a scene.
type Entity struct {
	ID         uuid.UUID
	Name       string
	Static     bool
	Transform  Transform
	Components []Component
}

// Scene is the root of a loaded level.
type Scene struct {
	Name       string
	Difficulty Difficulty
	Ambient    Color
	Entities   []Entity
	Settings   map[string]float64
	LegacyName string
}

// HasNoEntities reports whether the entity list can stay out of data.
func (s *Scene) HasNoEntities() bool { return len(s.Entities) == 0 }

// Validate rejects scenes that deserialized without a name.
func (s *Scene) Validate() bool { return s.Name != "" }

func registerScene() {
	reflection.RegisterEnum[Difficulty]("Difficulty").
		Value("Easy", DifficultyEasy, reflection.Description{Text: "Forgiving timers and damage."}).
		Value("Normal", DifficultyNormal, reflection.Description{Text: "The intended balance."}).
		Value("Hard", DifficultyHard, reflection.Description{Text: "Less ammo, faster enemies."}).
		Value("Nightmare", DifficultyNightmare, reflection.Description{Text: "No quarter given."}).
		Alias("Insane", "Nightmare").
		Register()

	reflection.Register[Vec2]("Vec2").Register()

	reflection.Register[Transform]("Transform").
		PropAttrs("Rotation",
			reflection.DoNotSerializeIfEqualToSimpleType{Value: reflection.AnyOf(float32(0))},
			reflection.NotRequired{},
			reflection.Range{Min: 0, Max: 360}).
		Register()

	reflection.RegisterInterface[Component]("Component",
		reflection.PolymorphicKey{Key: "Type"},
		reflection.Description{Text: "Entity behavior picked by the Type key."})

	reflection.Register[Sprite]("Sprite").
		Implements(reflection.TypeInfoOf[Component]()).
		Method("Kind").
		Register()

	reflection.Register[Physics]("Physics").
		Implements(reflection.TypeInfoOf[Component]()).
		Method("Kind").
		Method("SerializeLayers").
		Method("DeserializeLayers").
		PropAttrs("Velocity", reflection.IfDeserializedSetTrue{PropertyName: "VelocitySet"}).
		PropAttrs("VelocitySet", reflection.DoNotSerialize{}, reflection.NotRequired{}).
		PropAttrs("Kinematic", reflection.NotRequired{}).
		PropAttrs("Layers", reflection.CustomSerializeProperty{
			SerializeMethod:   "SerializeLayers",
			DeserializeMethod: "DeserializeLayers",
		}).
		Register()

	reflection.Register[Entity]("Entity").
		PropAttrs("ID", reflection.DoNotEdit{}).
		PropAttrs("Static",
			reflection.DoNotSerializeIfEqualToSimpleType{Value: reflection.AnyOf(false)},
			reflection.NotRequired{}).
		PropAttrs("Components", reflection.NotRequired{}).
		Register()

	reflection.Register[Scene]("Scene").
		Aliases("Level").
		Attrs(
			reflection.Description{Text: "Root of a loaded level."},
			reflection.PostSerializeType{DeserializeMethod: "Validate"}).
		Method("HasNoEntities").
		Method("Validate").
		PropAttrs("Difficulty", reflection.Category{Name: "Gameplay"}).
		PropAttrs("Ambient", reflection.DisplayName{Name: "Ambient Color"}).
		PropAttrs("Entities",
			reflection.DoNotSerializeIf{MethodName: "HasNoEntities"},
			reflection.NotRequired{}).
		PropAttrs("Settings", reflection.NotRequired{}).
		PropAttrs("LegacyName", reflection.Deprecated{}).
		Register()
}
