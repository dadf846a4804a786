package cfg

import (
	"fmt"

	"github.com/ibex-analyzer/ibex/utils"
)

// Ident is a frontend-generated identifier for an intermediate value: a base
// name paired with a stamp that disambiguates repeated uses of the name.
// Stamps are only unique within one translation unit, so structural
// comparisons across captures must go through a renaming map (see the diff
// package) rather than comparing idents physically.
type Ident struct {
	name  string
	stamp int32
}

// NewIdent assembles an ident from its parts. Fresh idents should normally
// come from an IdentGenerator; this constructor exists for decoders and
// tests.
func NewIdent(name string, stamp int32) Ident {
	return Ident{name: name, stamp: stamp}
}

// Name returns the base name of the ident.
func (id Ident) Name() string { return id.name }

// Stamp returns the disambiguating stamp of the ident.
func (id Ident) Stamp() int32 { return id.stamp }

// IsNone reports whether the ident is the zero "no ident" value, used e.g.
// for calls whose result is discarded.
func (id Ident) IsNone() bool { return id == Ident{} }

func (id Ident) String() string {
	if id.IsNone() {
		return "_"
	}
	return fmt.Sprintf("%s$%d", id.name, id.stamp)
}

// Hash computes a hash usable for immutable containers keyed by idents.
func (id Ident) Hash() uint32 {
	return utils.HashCombine(utils.HashString(id.name), uint32(id.stamp))
}

// Equal checks physical ident equality.
func (id Ident) Equal(other Ident) bool { return id == other }

// Less orders idents by name, then stamp.
func (id Ident) Less(other Ident) bool {
	if id.name != other.name {
		return id.name < other.name
	}
	return id.stamp < other.stamp
}

// IdentGenerator produces fresh idents. One generator is owned by each
// translation context and reset between translation units; nothing in the
// analysis core ever creates idents behind the frontend's back.
type IdentGenerator struct {
	stamps map[string]int32
}

func NewIdentGenerator() *IdentGenerator {
	return &IdentGenerator{stamps: make(map[string]int32)}
}

// Fresh returns a new ident with the given base name and the next unused
// stamp for that name.
func (g *IdentGenerator) Fresh(name string) Ident {
	g.stamps[name]++
	return Ident{name: name, stamp: g.stamps[name]}
}

// Reset forgets all issued stamps. Called between translation units so that
// captures of the same source start from the same stamp sequence.
func (g *IdentGenerator) Reset() {
	g.stamps = make(map[string]int32)
}

// NodeIDGenerator issues control-flow node ids. Like the ident generator it
// is owned by the translation context; node ids are dense small integers in
// translation order, not stable across captures.
type NodeIDGenerator struct {
	next NodeID
}

func NewNodeIDGenerator() *NodeIDGenerator {
	return &NodeIDGenerator{}
}

func (g *NodeIDGenerator) Next() NodeID {
	id := g.next
	g.next++
	return id
}

func (g *NodeIDGenerator) Reset() {
	g.next = 0
}
