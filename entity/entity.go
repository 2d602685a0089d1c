// Package entity defines the identifier algebra for registry entities.
//
// An entity is a single unsigned word that packs a dense table index (the
// "id") into its low bits and a generation counter into its high bits. The
// split point is fixed when a registry is constructed; Traits captures the
// resulting masks so that the hot-path projections are plain shifts and ANDs.
package entity

import (
	"unsafe"

	"github.com/rotisserie/eris"
)

// Word is the set of unsigned integer widths an entity identifier may use.
type Word interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// ErrBadSplit is returned when a split point does not leave at least one bit
// for both the id and the generation.
var ErrBadSplit = eris.New("entity split out of range")

// Traits describes how a word of type E divides into an id subfield and a
// generation subfield. A Traits value is immutable once built.
type Traits[E Word] struct {
	width  uint
	split  uint
	idMask E
	genMax E
}

// BitWidth returns the number of bits in E.
func BitWidth[E Word]() uint {
	var e E
	return uint(unsafe.Sizeof(e)) * 8
}

// NewTraits builds the traits for entity words of type E split at the given
// bit position. The split must satisfy 1 <= split <= BitWidth[E]()-1.
func NewTraits[E Word](split uint) (Traits[E], error) {
	width := BitWidth[E]()
	if split < 1 || split > width-1 {
		return Traits[E]{}, eris.Wrapf(ErrBadSplit, "split %d for %d-bit words", split, width)
	}
	return Traits[E]{
		width:  width,
		split:  split,
		idMask: E(1)<<split - 1,
		genMax: E(1)<<(width-split) - 1,
	}, nil
}

func mustTraits[E Word](split uint) Traits[E] {
	t, err := NewTraits[E](split)
	if err != nil {
		panic(err)
	}
	return t
}

// Canonical presets. Preset32 is the default used by registry.New.
var (
	Preset8      = mustTraits[uint8](4)
	Preset16     = mustTraits[uint16](8)
	Preset32     = mustTraits[uint32](20)
	Preset32Even = mustTraits[uint32](16)
	Preset64     = mustTraits[uint64](32)
)

// Width returns the total number of bits in a word.
func (t Traits[E]) Width() uint { return t.width }

// Split returns the number of bits in the id subfield.
func (t Traits[E]) Split() uint { return t.split }

// Null returns the reserved id value. It never names a live entity and
// terminates the registry free list. It also bounds the number of live
// entities a registry can hold.
func (t Traits[E]) Null() E { return t.idMask }

// GenMax returns the largest generation value before the counter wraps to 0.
func (t Traits[E]) GenMax() E { return t.genMax }

// ID projects the id subfield of e.
func (t Traits[E]) ID(e E) E { return e & t.idMask }

// Gen projects the generation subfield of e.
func (t Traits[E]) Gen(e E) E { return e >> t.split }

// Compose packs an id and a generation into a single word. Both arguments
// must already fit their subfields.
func (t Traits[E]) Compose(id, gen E) E { return id | gen<<t.split }

// NextGen returns the generation that follows gen, wrapping to 0 past GenMax.
func (t Traits[E]) NextGen(gen E) E {
	if gen >= t.genMax {
		return 0
	}
	return gen + 1
}

// IsNull reports whether the id subfield of e is the reserved null id.
func (t Traits[E]) IsNull(e E) bool { return e&t.idMask == t.idMask }
