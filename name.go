package stu

import "strings"

// ParamName is a parametrized name: literal text with zero or more named
// parameters spliced in, e.g. "build/$config/$name.o" is the literal
// sequence ["build/", "/", ".o"] interleaved with parameters
// ["config", "name"]. The invariant len(Texts) == len(Params)+1 always
// holds, and every adjacent pair of parameters is separated by at least
// one literal character (the grammar never produces "$a$b" with nothing
// between them).
type ParamName struct {
	Texts  []string
	Params []string
}

// NewLiteralName builds a ParamName with no parameters at all.
func NewLiteralName(text string) ParamName {
	return ParamName{Texts: []string{text}}
}

// NumParams reports how many distinct parameter slots the name has.
func (n ParamName) NumParams() int { return len(n.Params) }

// IsUnparametrized reports whether the name has no parameters, i.e. it
// denotes a single fixed string.
func (n ParamName) IsUnparametrized() bool { return len(n.Params) == 0 }

// Unparametrized returns the name's fixed string. It is only meaningful
// when IsUnparametrized is true; call sites that haven't checked that
// first are a programmer error, mirrored here with a panic rather than a
// silent wrong answer.
func (n ParamName) Unparametrized() string {
	if !n.IsUnparametrized() {
		panic("stu: Unparametrized called on a parametrized ParamName")
	}
	if len(n.Texts) == 0 {
		return ""
	}
	return n.Texts[0]
}

// Validate checks the two structural invariants that the parser must
// maintain when it assembles a ParamName out of literal and parameter
// tokens: no parameter name may appear twice, and the literal text
// between two consecutive parameters must be non-empty. place is used to
// anchor any resulting LogicalError; paramPlaces, if non-nil, gives a more
// precise per-parameter place for the duplicate-parameter message.
func (n ParamName) Validate(place Place, paramPlaces []Place) error {
	seen := make(map[string]int, len(n.Params))
	for i, p := range n.Params {
		if j, dup := seen[p]; dup {
			dupPlace := place
			if paramPlaces != nil && i < len(paramPlaces) {
				dupPlace = paramPlaces[i]
			}
			err := NewLogicalError(dupPlace, "duplicate parameter '$%s'", p)
			if paramPlaces != nil && j < len(paramPlaces) {
				err.Because(paramPlaces[j], "parameter '$%s' was already used here", p)
			}
			return err
		}
		seen[p] = i
	}
	for i := 1; i < len(n.Texts)-1; i++ {
		if n.Texts[i] == "" {
			errPlace := place
			if paramPlaces != nil && i-1 < len(paramPlaces) && i < len(paramPlaces) {
				errPlace = paramPlaces[i]
			}
			return NewLogicalError(errPlace, "parameters '$%s' and '$%s' must be separated by at least one character", n.Params[i-1], n.Params[i])
		}
	}
	return nil
}

// Format renders the name back to Stu source syntax, e.g.
// "build/$config/$name.o".
func (n ParamName) Format() string {
	var b strings.Builder
	for i, t := range n.Texts {
		b.WriteString(t)
		if i < len(n.Params) {
			b.WriteByte('$')
			b.WriteString(n.Params[i])
		}
	}
	return b.String()
}

// Instantiate substitutes every parameter with the value the mapping
// gives it, returning a fresh, unparametrized string. A parameter absent
// from mapping is a programmer error: callers are expected to only
// instantiate with a mapping built from the same rule's own parameter
// list.
func (n ParamName) Instantiate(mapping map[string]string) string {
	var b strings.Builder
	for i, t := range n.Texts {
		b.WriteString(t)
		if i < len(n.Params) {
			v, ok := mapping[n.Params[i]]
			if !ok {
				panic("stu: Instantiate: parameter '$" + n.Params[i] + "' not in mapping")
			}
			b.WriteString(v)
		}
	}
	return b.String()
}

// PlaceParamName pairs a ParamName with the place of the name as a whole
// plus one place per parameter occurrence, so errors about a specific
// parameter (a duplicate, an invalid substitution) can point exactly at
// it rather than at the start of the whole name.
type PlaceParamName struct {
	Name        ParamName
	Place       Place
	ParamPlaces []Place
}

func (p PlaceParamName) Validate() error {
	return p.Name.Validate(p.Place, p.ParamPlaces)
}

// BaseKind distinguishes a file target from a transient (phony) one.
type BaseKind int

const (
	KindFile BaseKind = iota
	KindTransient
)

// TargetKind is a target's kind plus how many levels of dynamic
// dependency wrapping produced it: Stu's grammar lets a dependency
// written as "[[name]]" etc. nest arbitrarily, and each level of "[...]"
// wrapping increments the depth of the target the innermost name denotes.
type TargetKind struct {
	Base         BaseKind
	DynamicDepth int
}

// Inc returns k with its dynamic depth incremented by one, used when
// wrapping a target in another layer of Dynamic.
func (k TargetKind) Inc() TargetKind {
	return TargetKind{Base: k.Base, DynamicDepth: k.DynamicDepth + 1}
}

// ParamTarget is a target kind paired with a parametrized name, with no
// place information (used for targets synthesized internally, e.g. during
// instantiation, rather than parsed from source).
type ParamTarget struct {
	Kind TargetKind
	Name ParamName
}

// PlaceParamTarget is the parsed form of a target: a kind, a parametrized
// name with its own per-parameter places, and the place of the target as
// it appeared in source (or on the command line).
type PlaceParamTarget struct {
	Kind  TargetKind
	Name  PlaceParamName
	Place Place
}

// Instantiate substitutes every parameter of the target's name, returning
// a plain ParamTarget (no remaining parameters, no place information).
func (t PlaceParamTarget) Instantiate(mapping map[string]string) ParamTarget {
	return ParamTarget{
		Kind: t.Kind,
		Name: NewLiteralName(t.Name.Name.Instantiate(mapping)),
	}
}

// FormatWord renders the target the way it would be echoed in a verbose
// diagnostic: "@" for a transient, "$[" repeated DynamicDepth times around
// the name for a dynamic target.
func (t PlaceParamTarget) FormatWord() string {
	var b strings.Builder
	for i := 0; i < t.Kind.DynamicDepth; i++ {
		b.WriteString("$[")
	}
	if t.Kind.Base == KindTransient {
		b.WriteByte('@')
	}
	b.WriteString(t.Name.Name.Format())
	for i := 0; i < t.Kind.DynamicDepth; i++ {
		b.WriteByte(']')
	}
	return b.String()
}
