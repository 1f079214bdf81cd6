package reflection

import (
	"testing"
)

func TestArrayFor_Shapes(t *testing.T) {
	a, ok := arrayFor(TypeInfoOf[[]int32]())
	if !ok {
		t.Fatal("slice should derive an array adapter")
	}
	if !a.CanResize() {
		t.Error("slice adapter should be resizable")
	}
	if a.ElementTypeInfo() != TypeInfoOf[int32]() {
		t.Errorf("ElementTypeInfo() = %v, want int32", a.ElementTypeInfo())
	}

	f, ok := arrayFor(TypeInfoOf[[4]byte]())
	if !ok {
		t.Fatal("fixed array should derive an adapter")
	}
	if f.CanResize() {
		t.Error("fixed array adapter should not be resizable")
	}

	if _, ok := arrayFor(TypeInfoOf[map[string]int]()); ok {
		t.Error("map should not derive an array adapter")
	}
	if _, ok := arrayFor(TypeInfoOf[fxPoint]()); ok {
		t.Error("struct should not derive an array adapter")
	}
	if _, ok := arrayFor(TypeInfoOf[string]()); ok {
		t.Error("string should not derive an array adapter")
	}

	again, _ := arrayFor(TypeInfoOf[[]int32]())
	if again != a {
		t.Error("adapter should be cached per TypeInfo")
	}
}

func TestSliceArray_Resize(t *testing.T) {
	a, _ := arrayFor(TypeInfoOf[[]int32]())

	s := []int32{1, 2, 3}
	w := WeakPtr(&s)

	if size, ok := a.TryGetSize(w); !ok || size != 3 {
		t.Fatalf("TryGetSize = %d, %v, want 3, true", size, ok)
	}
	if !a.TryResize(w, 5) {
		t.Fatal("grow failed")
	}
	if len(s) != 5 || s[0] != 1 || s[2] != 3 || s[3] != 0 || s[4] != 0 {
		t.Fatalf("after grow s = %v, want prefix kept and zero tail", s)
	}
	if !a.TryResize(w, 2) {
		t.Fatal("shrink failed")
	}
	if len(s) != 2 || s[0] != 1 || s[1] != 2 {
		t.Fatalf("after shrink s = %v, want [1 2]", s)
	}
	if a.TryResize(w, -1) {
		t.Error("negative size should fail")
	}
	if a.TryResize(w.AsReadOnly(), 4) {
		t.Error("resize through a read-only view should fail")
	}
	if a.TryResize(NewWeakAny(s), 4) {
		t.Error("resize through a value view should fail")
	}
}

func TestSliceArray_GetSet(t *testing.T) {
	a, _ := arrayFor(TypeInfoOf[[]int32]())

	s := []int32{10, 20}
	w := WeakPtr(&s)

	got, ok := a.TryGet(w, 0)
	if !ok {
		t.Fatal("TryGet failed")
	}
	s[0] = 99
	if v, _ := AnyValueTo[int32](got); v != 10 {
		t.Errorf("TryGet should copy the element out: got %d, want 10", v)
	}

	if !a.TrySet(w, 1, AnyOf(7)) {
		t.Fatal("TrySet with a coercible value failed")
	}
	if s[1] != 7 {
		t.Errorf("s[1] = %d, want 7", s[1])
	}
	if a.TrySet(w, 1, AnyOf("x")) {
		t.Error("TrySet with an incompatible value should fail")
	}
	if a.TrySet(w, 5, AnyOf(1)) {
		t.Error("TrySet out of range should fail")
	}
	if a.TrySet(w.AsReadOnly(), 0, AnyOf(1)) {
		t.Error("TrySet through a read-only view should fail")
	}
	if _, ok := a.TryGet(w, -1); ok {
		t.Error("TryGet out of range should fail")
	}
}

func TestSliceArray_ElementPtr(t *testing.T) {
	a, _ := arrayFor(TypeInfoOf[[]int32]())

	s := []int32{1, 2}
	w := WeakPtr(&s)

	ep, ok := a.TryGetElementPtr(w, 0)
	if !ok {
		t.Fatal("TryGetElementPtr failed")
	}
	p, ok := PointerTo[int32](ep)
	if !ok {
		t.Fatal("element pointer should be writable")
	}
	*p = 42
	if s[0] != 42 {
		t.Errorf("s[0] = %d, want 42 after writing through the pointer", s[0])
	}

	if _, ok := a.TryGetElementPtr(w.AsReadOnly(), 0); ok {
		t.Error("mutable pointer through a read-only view should fail")
	}

	// Slice elements stay addressable through the backing array even when the
	// header is held by value.
	cp, ok := a.TryGetElementConstPtr(NewWeakAny(s), 1)
	if !ok {
		t.Fatal("const element pointer through a value view failed")
	}
	if _, ok := PointerTo[int32](cp); ok {
		t.Error("const pointer should refuse mutable access")
	}
	if v, ok := ConstPointerTo[int32](cp); !ok || *v != 2 {
		t.Errorf("const pointer read = %v, %v, want 2, true", v, ok)
	}
}

func TestFixedArray_ResizeIsIdentityOnly(t *testing.T) {
	a, _ := arrayFor(TypeInfoOf[[4]int32]())

	arr := [4]int32{1, 2, 3, 4}
	w := WeakPtr(&arr)

	if size, ok := a.TryGetSize(w); !ok || size != 4 {
		t.Fatalf("TryGetSize = %d, %v, want 4, true", size, ok)
	}
	if !a.TryResize(w, 4) {
		t.Error("resize to the existing size should succeed")
	}
	if a.TryResize(w, 2) || a.TryResize(w, 5) {
		t.Error("resize to any other size should fail")
	}

	if !a.TrySet(w, 2, AnyOf(int32(30))) {
		t.Fatal("TrySet failed")
	}
	if arr[2] != 30 {
		t.Errorf("arr[2] = %d, want 30", arr[2])
	}
	if got, ok := a.TryGet(w, 3); !ok {
		t.Fatal("TryGet failed")
	} else if v, _ := AnyValueTo[int32](got); v != 4 {
		t.Errorf("TryGet(3) = %d, want 4", v)
	}

	// An array held by value is not addressable, so in-place views fail.
	if _, ok := a.TryGetElementConstPtr(NewWeakAny(arr), 0); ok {
		t.Error("const element pointer on an array value should fail")
	}
}

// arDeck keeps its elements behind an unexported field, so the derived
// adapters cannot reach them; the custom adapter below exposes them.
type arDeck struct {
	cards []string
}

type deckArray struct{}

func (deckArray) ElementTypeInfo() *TypeInfo { return TypeInfoOf[string]() }
func (deckArray) CanResize() bool            { return true }

func (deckArray) TryGetSize(this WeakAny) (int, bool) {
	d, ok := ConstPointerTo[arDeck](this)
	if !ok {
		return 0, false
	}
	return len(d.cards), true
}

func (deckArray) TryResize(this WeakAny, size int) bool {
	d, ok := PointerTo[arDeck](this)
	if !ok || size < 0 {
		return false
	}
	ns := make([]string, size)
	copy(ns, d.cards)
	d.cards = ns
	return true
}

func (deckArray) TryGet(this WeakAny, i int) (Any, bool) {
	d, ok := ConstPointerTo[arDeck](this)
	if !ok || i < 0 || i >= len(d.cards) {
		return Any{}, false
	}
	return AnyOf(d.cards[i]), true
}

func (deckArray) TrySet(this WeakAny, i int, v Any) bool {
	d, ok := PointerTo[arDeck](this)
	if !ok || i < 0 || i >= len(d.cards) {
		return false
	}
	s, sok := AnyValueTo[string](v)
	if !sok {
		return false
	}
	d.cards[i] = s
	return true
}

func (deckArray) TryGetElementPtr(this WeakAny, i int) (WeakAny, bool) {
	d, ok := PointerTo[arDeck](this)
	if !ok || i < 0 || i >= len(d.cards) {
		return WeakAny{}, false
	}
	return WeakPtr(&d.cards[i]), true
}

func (deckArray) TryGetElementConstPtr(this WeakAny, i int) (WeakAny, bool) {
	d, ok := ConstPointerTo[arDeck](this)
	if !ok || i < 0 || i >= len(d.cards) {
		return WeakAny{}, false
	}
	return WeakPtr(&d.cards[i]).AsReadOnly(), true
}

func TestArray_CustomAdapter(t *testing.T) {
	defer Reset()
	Register[arDeck]("Deck").ArrayAdapter(deckArray{}).Register()

	a, ok := arrayFor(TypeInfoOf[arDeck]())
	if !ok {
		t.Fatal("registered adapter not found")
	}
	if _, isCustom := a.(deckArray); !isCustom {
		t.Fatalf("arrayFor returned %T, want the registered adapter", a)
	}

	d := arDeck{cards: []string{"ace", "king"}}
	n, err := SerializeToNode(&d)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if size, _ := n.ArrayLen(); !n.IsArray() || size != 2 {
		t.Fatalf("node = %s of %d, want an array of 2", n.Kind(), size)
	}

	var out arDeck
	if err := DeserializeFromNode(n, &out); err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if len(out.cards) != 2 || out.cards[0] != "ace" || out.cards[1] != "king" {
		t.Fatalf("round trip = %v, want [ace king]", out.cards)
	}
}
