package demo

import (
	"fmt"
	"strconv"

	"github.com/facet-dev/facet/datastore"
	"github.com/facet-dev/facet/reflection"
)

// Color is an RGBA color. In data it is a single eight-digit RRGGBBAA hex
// string rather than a four-property table.
type Color struct {
	R, G, B, A uint8
}

// colorHandler packs a Color into its hex string form and back.
type colorHandler struct{}

func (colorHandler) ToNode(v reflection.Any) (*datastore.Node, bool) {
	c, ok := reflection.AnyValueTo[Color](v)
	if !ok {
		return nil, false
	}
	packed := uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
	return datastore.String(fmt.Sprintf("%08X", packed)), true
}

func (colorHandler) FromNode(n *datastore.Node, dst reflection.WeakAny) bool {
	s, ok := n.AsString()
	if !ok || len(s) != 8 {
		return false
	}
	packed, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return false
	}
	p, ok := reflection.PointerTo[Color](dst)
	if !ok {
		return false
	}
	*p = Color{
		R: uint8(packed >> 24),
		G: uint8(packed >> 16),
		B: uint8(packed >> 8),
		A: uint8(packed),
	}
	return true
}

func registerColor() {
	reflection.RegisterScalar[Color]("Color", colorHandler{},
		reflection.Description{Text: "RGBA color stored as an RRGGBBAA hex string."})
}
