package stu

import "strings"

// Flags is a bitset over the dependency flag indices below. A single
// dependency node (Direct or Dynamic) carries one Flags value plus, for
// the placed subset, a Place per bit (see header in dependency.go).
type Flags uint8

// Flag bit indices, per the authoritative 8-row table (see DESIGN.md,
// "Open questions resolved", item 1). Indices 0..C_PLACED-1 are placed
// (each carries its own Place); indices 0..C_TRANSITIVE-1 propagate down
// through a Dynamic chain via FlagStack.
const (
	IPersistent        = 0 // -p: don't worry if the target is missing after the command runs
	IOptional           = 1 // -o: don't fail the build if this dependency can't be built
	ITrivial            = 2 // -t: unneeded when only trivial dependents are being rebuilt
	IRead               = 3 // RESULT_ONLY: read the dependency's content rather than rebuild it
	IVariable           = 4 // $[...]: inject a Direct's content as an environment variable
	IOverrideTrivial    = 5 // !: override a trivial flag inherited from above
	INewlineSeparated   = 6 // -n: split copy-rule or concatenated content on newlines
	INulSeparated       = 7 // -0: split copy-rule or concatenated content on NUL bytes
)

// CAll is the total number of flag indices this module models.
const CAll = 8

// CPlaced is the number of indices that carry a Place (0..CPlaced-1).
const CPlaced = 3

// CTransitive is the number of indices that propagate through a dynamic
// dependency chain via FlagStack (0..CTransitive-1).
const CTransitive = 4

const (
	Persistent      Flags = 1 << IPersistent
	Optional        Flags = 1 << IOptional
	Trivial         Flags = 1 << ITrivial
	Read            Flags = 1 << IRead
	Variable        Flags = 1 << IVariable
	OverrideTrivial Flags = 1 << IOverrideTrivial
	NewlineSep      Flags = 1 << INewlineSeparated
	NulSep          Flags = 1 << INulSeparated
)

// flagGlyphs gives the diagnostic character for each of the CAll indices,
// in index order. It drops '/' (the glyph for the execution-only
// COPY_RESULT bit dropped from this module's flag table) from the
// original FLAGS_CHARS string.
const flagGlyphs = "pot*$Tn0"

// Has reports whether all bits in mask are set.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }

// Any reports whether any bit in mask is set.
func (f Flags) Any(mask Flags) bool { return f&mask != 0 }

// Format renders f as a sequence of "-X" diagnostic segments, one per set
// bit, in index order across all CAll indices (a diagnostic form, not for
// round-tripping through source syntax).
func (f Flags) Format() string {
	var b strings.Builder
	for i := 0; i < CAll; i++ {
		if f&(1<<i) != 0 {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte('-')
			b.WriteByte(flagGlyphs[i])
		}
	}
	return b.String()
}

// IndexOfChar maps a literal flag character as it appears in Stu source
// syntax to its bit index. Only the five flags that have a dedicated
// source-syntax character are recognized; any other character is a
// programmer error in the caller (the parser must only call this after
// matching one of these characters).
func IndexOfChar(c byte) (int, bool) {
	switch c {
	case 'p':
		return IPersistent, true
	case 'o':
		return IOptional, true
	case 't':
		return ITrivial, true
	case 'n':
		return INewlineSeparated, true
	case '0':
		return INulSeparated, true
	default:
		return 0, false
	}
}
