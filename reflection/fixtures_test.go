package reflection

import (
	"testing"

	"github.com/facet-dev/facet/datastore"
)

// Shared fixture types for the package tests. Each test registers what it
// needs and clears the registry with Reset when done, so registrations never
// leak between tests.

type fxDifficulty int32

const (
	fxEasy fxDifficulty = iota
	fxNormal
	fxHard
)

func registerDifficulty() *Type {
	return RegisterEnum[fxDifficulty]("Difficulty").
		Value("Easy", fxEasy).
		Value("Normal", fxNormal).
		Value("Hard", fxHard).
		Alias("Medium", "Normal").
		Register()
}

type fxPoint struct {
	X float32
	Y float32
}

func registerPoint() *Type { return Register[fxPoint]("Point").Register() }

// fxComponent is the polymorphic slot used by the entity fixtures. Both
// implementations use pointer receivers, so interface values hold pointers.
type fxComponent interface {
	ComponentName() string
}

type fxSprite struct {
	Path  string
	Layer int32
}

func (s *fxSprite) ComponentName() string { return "Sprite" }

type fxBody struct {
	Mass  float32
	Fixed bool
}

func (b *fxBody) ComponentName() string { return "Body" }

func registerComponents() *Type {
	iface := RegisterInterface[fxComponent]("Component", PolymorphicKey{})
	Register[fxSprite]("Sprite").Implements(iface.TypeInfo()).Register()
	Register[fxBody]("Body").Implements(iface.TypeInfo()).Register()
	return iface
}

type fxBase struct {
	ID  string
	Tag string
}

type fxChild struct {
	fxBase
	Tag   string
	Level int32
}

func registerBaseChild() {
	Register[fxBase]("Base").Register()
	Register[fxChild]("Child").Register()
}

func mustParseJSON(t *testing.T, src string) *datastore.Node {
	t.Helper()
	n, err := datastore.ParseJSON([]byte(src))
	if err != nil {
		t.Fatalf("parse fixture JSON: %v", err)
	}
	return n
}

// tableString reads a string entry out of a table node or fails the test.
func tableString(t *testing.T, n *datastore.Node, key string) string {
	t.Helper()
	v, ok := n.TableGet(key)
	if !ok {
		t.Fatalf("table has no key %q (keys: %v)", key, n.TableKeys())
	}
	s, ok := v.AsString()
	if !ok {
		t.Fatalf("key %q is %s, want a string", key, v.Kind())
	}
	return s
}

func tableInt(t *testing.T, n *datastore.Node, key string) int64 {
	t.Helper()
	v, ok := n.TableGet(key)
	if !ok {
		t.Fatalf("table has no key %q (keys: %v)", key, n.TableKeys())
	}
	i, ok := v.AsInt64()
	if !ok {
		t.Fatalf("key %q is %s, want an integer", key, v.Kind())
	}
	return i
}

// errorKinds collects the kinds raised on a context, in raise order.
func errorKinds(ctx *Context) []ErrorKind {
	out := make([]ErrorKind, 0, len(ctx.Errors()))
	for _, e := range ctx.Errors() {
		out = append(out, e.Kind)
	}
	return out
}

func hasErrorKind(ctx *Context, kind ErrorKind) bool {
	for _, e := range ctx.Errors() {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// handleAll is a policy that treats every raised error as handled, so walks
// skip the failing piece and keep going.
func handleAll(*Error) bool { return true }

// handleNothing aborts on the first raised error.
func handleNothing(*Error) bool { return false }
