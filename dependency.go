package stu

import "strings"

// Dependency is the tagged-union dependency-tree value: a Direct leaf, a
// Dynamic wrapper (one level of "[...]"), a Compound list ("(a b c)"), or
// a Concatenated list ("a*b*c"). It replaces the original's class
// hierarchy plus downcasting with a closed interface that Go code
// consumes via type switches (see SplitCompound, Clone, and the parser).
type Dependency interface {
	// Flags returns the node's own flag bits (not including anything
	// inherited from an enclosing Dynamic).
	Flags() Flags
	// AddFlags ORs mask into the node's own flags.
	AddFlags(mask Flags)
	// Place returns the node's primary place.
	Place() Place
	// PlaceFlag returns the place recorded for placed-flag index i
	// (0 <= i < CPlaced). The place is returned whether or not the flag
	// bit itself is set; EmptyPlace is returned when no place was recorded
	// for i or i is not a placed index.
	PlaceFlag(i int) Place
	// SetPlaceFlag records the place for placed-flag index i.
	SetPlaceFlag(i int, p Place)
	// IsUnparametrized reports whether every name reachable from this
	// node is unparametrized.
	IsUnparametrized() bool
	// Instantiate substitutes every parameter reachable from this node,
	// returning a fresh subtree. mapping must supply every parameter
	// name the caller's rule declares.
	Instantiate(mapping map[string]string) (Dependency, error)
	// Clone makes a shallow copy of just this node; any children are
	// shared with the original, not copied.
	Clone() Dependency
	// Format renders the node for diagnostics, with each flag shown as a
	// "-X " prefix (see flagPrefixes). No variant quotes names: Dynamic
	// and Concatenated pass quotes on to their children, Direct never
	// reads it, and Compound ignores it entirely (see DESIGN.md, open
	// question 3).
	Format(quotes *bool) string
	// FormatWord renders a single-line, abbreviated form suitable for a
	// "needed by ..." diagnostic.
	FormatWord() string
	// FormatOut renders the form Stu would print back out when echoing a
	// parsed rule (e.g. for -n/"show commands" style output).
	FormatOut() string
}

// header is the flags+places state shared by every Single (leaf-level,
// non-list) dependency variant: Direct and Dynamic.
type header struct {
	flags  Flags
	places [CPlaced]Place
}

func (h *header) Flags() Flags      { return h.flags }
func (h *header) AddFlags(mask Flags) { h.flags |= mask }

func (h *header) PlaceFlag(i int) Place {
	if i < 0 || i >= CPlaced {
		return EmptyPlace
	}
	return h.places[i]
}

func (h *header) SetPlaceFlag(i int, p Place) {
	if i < 0 || i >= CPlaced {
		panic("stu: SetPlaceFlag index out of range")
	}
	h.places[i] = p
}

// addFlagsFrom copies mask's set bits into h, and for each placed index
// set in mask, also copies its place from places — unless h already has a
// place recorded for that index and overwrite is false, matching the original
// Single_Dependency::add_flags(source, overwrite) semantics (see
// SPEC_FULL.md §3: the copy loop is bounded by CPlaced, not CTransitive).
func (h *header) addFlagsFrom(mask Flags, places [CPlaced]Place, overwrite bool) {
	h.flags |= mask
	for i := 0; i < CPlaced; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		if h.places[i].IsEmpty() || overwrite {
			h.places[i] = places[i]
		}
	}
}

// Direct is a leaf dependency: a single target, optionally decorated with
// flags (-p, -o, -t, ! overrides). A Direct carrying the VARIABLE flag is
// the result of parsing "$[...]": its target is always FILE-kind, and it
// additionally carries the environment-variable name to inject under
// (VariableName, only meaningful when Renamed) and, if the "$[...]" body
// led with '<', the fact that its own target doubles as the rule's input
// file (InputFilename).
type Direct struct {
	header
	Target PlaceParamTarget

	// Renamed records whether a VARIABLE Direct was given "= name" to use
	// a different environment-variable name than its own target name.
	Renamed bool
	// VariableName is the environment-variable name to use when Renamed
	// is true; meaningless otherwise, in which case the target's own name
	// is the effective variable name.
	VariableName PlaceParamName
	// InputFilename, when non-nil, is the same name as Target.Name: it
	// records that this VARIABLE dependency's "$[...]" body led with '<',
	// marking its target as also serving as input redirection.
	InputFilename *PlaceParamName
}

func NewDirect(target PlaceParamTarget) *Direct {
	return &Direct{Target: target}
}

func (d *Direct) Place() Place           { return d.Target.Place }
func (d *Direct) IsUnparametrized() bool { return d.Target.Name.Name.IsUnparametrized() }

func (d *Direct) Clone() Dependency {
	c := *d
	return &c
}

// effectiveVariableName returns the name (and its place) that a VARIABLE
// Direct actually injects into the environment: the rename if one was
// given, otherwise the target's own name.
func (d *Direct) effectiveVariableName() (ParamName, Place) {
	if d.Renamed {
		return d.VariableName.Name, d.VariableName.Place
	}
	return d.Target.Name.Name, d.Target.Place
}

func (d *Direct) Instantiate(mapping map[string]string) (Dependency, error) {
	target := d.Target.Instantiate(mapping)
	nd := &Direct{header: d.header, Target: PlaceParamTarget{
		Kind:  target.Kind,
		Name:  PlaceParamName{Name: target.Name, Place: d.Target.Place},
		Place: d.Target.Place,
	}, Renamed: d.Renamed}

	if d.flags.Has(Variable) {
		name, place := d.effectiveVariableName()
		value := name.Instantiate(mapping)
		if strings.ContainsRune(value, '=') {
			// The check happens against the substituted name, but the
			// diagnostic points at the original, pre-substitution node:
			// that's the place the author can actually go fix.
			return nil, NewLogicalError(place, "variable name '%s' must not contain '='", value)
		}
		if d.Renamed {
			nd.VariableName = PlaceParamName{Name: NewLiteralName(value), Place: d.VariableName.Place}
		}
	}
	if d.InputFilename != nil {
		nd.InputFilename = &PlaceParamName{Name: NewLiteralName(nd.Target.Name.Name.Unparametrized()), Place: d.InputFilename.Place}
	}
	return nd, nil
}

// formatVariable renders the "$[...]" form that a VARIABLE Direct prints
// back out: "$[" + ('<' if InputFilename is set) + name + ("=" + rename)?
// + "]".
func (d *Direct) formatVariable() string {
	var b strings.Builder
	b.WriteString("$[")
	if d.InputFilename != nil {
		b.WriteByte('<')
	}
	b.WriteString(d.Target.Name.Name.Format())
	if d.Renamed {
		b.WriteByte('=')
		b.WriteString(d.VariableName.Name.Format())
	}
	b.WriteByte(']')
	return b.String()
}

func (d *Direct) Format(quotes *bool) string {
	if d.flags.Has(Variable) {
		return d.formatVariable()
	}
	prefix := flagPrefixes(d.flags)
	return prefix + d.Target.FormatWord()
}

func (d *Direct) FormatWord() string {
	if d.flags.Has(Variable) {
		return d.formatVariable()
	}
	return d.Target.FormatWord()
}

func (d *Direct) FormatOut() string { return d.Format(nil) }

// Dynamic wraps a single child dependency behind one level of "[...]"
// indirection: Child's content must be read or built before this node's
// own target can be resolved. A freshly wrapped Dynamic always starts with
// flags 0 (see parser.go); in particular READ and VARIABLE never appear on
// a Dynamic node — VARIABLE is carried on a Direct instead (see above).
type Dynamic struct {
	header
	TargetPlace Place
	Child       Dependency
}

func NewDynamic(targetPlace Place, child Dependency) *Dynamic {
	return &Dynamic{TargetPlace: targetPlace, Child: child}
}

func (d *Dynamic) Place() Place { return d.TargetPlace }

func (d *Dynamic) IsUnparametrized() bool {
	return d.Child.IsUnparametrized()
}

func (d *Dynamic) Clone() Dependency {
	c := *d
	return &c
}

func (d *Dynamic) Instantiate(mapping map[string]string) (Dependency, error) {
	child, err := d.Child.Instantiate(mapping)
	if err != nil {
		return nil, err
	}
	nd := &Dynamic{header: d.header, TargetPlace: d.TargetPlace, Child: child}
	return nd, nil
}

func (d *Dynamic) Format(quotes *bool) string {
	prefix := flagPrefixes(d.flags)
	return prefix + "[" + d.Child.Format(quotes) + "]"
}

func (d *Dynamic) FormatWord() string { return "[" + d.Child.FormatWord() + "]" }
func (d *Dynamic) FormatOut() string  { return d.Format(nil) }

// listHeader is the flags+place state shared by the two list variants,
// Compound and Concatenated. Lists have no placed flags of their own in
// this module's grammar (a '?' or '&' prefix on a list records its place
// on each element) but they do carry a borrowed place and a set of flags,
// from a prefix applied to the list or from an enclosing Compound, that
// SplitCompound merges into every element.
type listHeader struct {
	flags Flags
	place Place
}

func (h *listHeader) Flags() Flags        { return h.flags }
func (h *listHeader) AddFlags(mask Flags) { h.flags |= mask }
func (h *listHeader) Place() Place        { return h.place }
func (h *listHeader) PlaceFlag(int) Place { return EmptyPlace }
func (h *listHeader) SetPlaceFlag(int, Place) {
	panic("stu: SetPlaceFlag called on a list dependency")
}

// Compound is a parenthesized list of dependencies, "(a b c)", each
// built/checked independently.
type Compound struct {
	listHeader
	Children []Dependency
}

func NewCompound(place Place, children []Dependency) *Compound {
	return &Compound{listHeader: listHeader{place: place}, Children: children}
}

func (c *Compound) IsUnparametrized() bool {
	for _, ch := range c.Children {
		if !ch.IsUnparametrized() {
			return false
		}
	}
	return true
}

func (c *Compound) Clone() Dependency {
	cc := *c
	return &cc
}

func (c *Compound) Instantiate(mapping map[string]string) (Dependency, error) {
	children := make([]Dependency, len(c.Children))
	for i, ch := range c.Children {
		nch, err := ch.Instantiate(mapping)
		if err != nil {
			return nil, err
		}
		children[i] = nch
	}
	return &Compound{listHeader: c.listHeader, Children: children}, nil
}

// Format ignores quotes entirely: Compound_Dependency::format in the
// original never consults its own quotes parameter, and DESIGN.md pins
// that behavior rather than "fixing" it.
func (c *Compound) Format(quotes *bool) string {
	parts := make([]string, len(c.Children))
	for i, ch := range c.Children {
		parts[i] = ch.Format(nil)
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (c *Compound) FormatWord() string {
	parts := make([]string, len(c.Children))
	for i, ch := range c.Children {
		parts[i] = ch.FormatWord()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (c *Compound) FormatOut() string {
	parts := make([]string, len(c.Children))
	for i, ch := range c.Children {
		parts[i] = ch.FormatOut()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Concatenated is a "*"-joined list of dependencies whose results are
// concatenated together. Splitting a Concatenated dependency into simple
// components is not supported (see DESIGN.md, open question 2): it raises
// splitUnsupported rather than attempting a distributive rewrite.
type Concatenated struct {
	listHeader
	Children []Dependency
}

func NewConcatenated(place Place, children []Dependency) *Concatenated {
	return &Concatenated{listHeader: listHeader{place: place}, Children: children}
}

func (c *Concatenated) IsUnparametrized() bool {
	for _, ch := range c.Children {
		if !ch.IsUnparametrized() {
			return false
		}
	}
	return true
}

func (c *Concatenated) Clone() Dependency {
	cc := *c
	return &cc
}

func (c *Concatenated) Instantiate(mapping map[string]string) (Dependency, error) {
	children := make([]Dependency, len(c.Children))
	for i, ch := range c.Children {
		nch, err := ch.Instantiate(mapping)
		if err != nil {
			return nil, err
		}
		children[i] = nch
	}
	return &Concatenated{listHeader: c.listHeader, Children: children}, nil
}

func (c *Concatenated) Format(quotes *bool) string {
	parts := make([]string, len(c.Children))
	for i, ch := range c.Children {
		parts[i] = ch.Format(quotes)
	}
	return strings.Join(parts, "*")
}

func (c *Concatenated) FormatWord() string {
	parts := make([]string, len(c.Children))
	for i, ch := range c.Children {
		parts[i] = ch.FormatWord()
	}
	return strings.Join(parts, "*")
}

func (c *Concatenated) FormatOut() string {
	parts := make([]string, len(c.Children))
	for i, ch := range c.Children {
		parts[i] = ch.FormatOut()
	}
	return strings.Join(parts, "*")
}

// flagPrefixes renders a Single dependency's own flags as "-X " segments
// using the diagnostic glyphs in flagGlyphs, e.g. "-p -o ". This is not
// the '?'/'&'/'!' prefix syntax the parser reads.
func flagPrefixes(f Flags) string {
	var b strings.Builder
	for i := 0; i < CAll; i++ {
		if f&(1<<i) == 0 {
			continue
		}
		c := flagGlyphs[i]
		b.WriteByte('-')
		b.WriteByte(c)
		b.WriteByte(' ')
	}
	return b.String()
}

// splitUnsupported is the internal-error marker SplitCompound raises when
// asked to split a Concatenated node (see DESIGN.md, open question 2). It
// is recovered at the top of SplitCompound's exported entry point and
// turned into a plain error, so callers never see a raw panic.
type splitUnsupported struct {
	place Place
}

// SplitCompound flattens dep into a slice of dependencies that contain no
// Compound node anywhere in their structure, per the rules in
// SPEC_FULL.md §4.3:
//   - Direct passes through unchanged.
//   - Dynamic recurses on its child, then rewraps every result with a
//     fresh Dynamic carrying the *original* node's own flags and places.
//   - Compound merges its own flags into each child (without overwriting
//     a place the child already has) and then flattens that child.
//   - Concatenated is not supported and returns an error.
func SplitCompound(dep Dependency) (result []Dependency, err error) {
	defer func() {
		if r := recover(); r != nil {
			if su, ok := r.(splitUnsupported); ok {
				err = NewLogicalError(su.place, "concatenated dependencies cannot be split into a list")
				result = nil
				return
			}
			panic(r)
		}
	}()
	var out []Dependency
	splitInto(&out, dep)
	return out, nil
}

func splitInto(out *[]Dependency, dep Dependency) {
	switch d := dep.(type) {
	case *Direct:
		*out = append(*out, d)

	case *Dynamic:
		var childParts []Dependency
		splitInto(&childParts, d.Child)
		for _, part := range childParts {
			*out = append(*out, &Dynamic{header: d.header, TargetPlace: d.TargetPlace, Child: part})
		}

	case *Compound:
		for _, child := range d.Children {
			merged := child.Clone()
			mergeFlagsInto(merged, d.flags)
			splitInto(out, merged)
		}

	case *Concatenated:
		panic(splitUnsupported{place: d.place})

	default:
		panic("stu: SplitCompound: unknown Dependency variant")
	}
}

// mergeFlagsInto ORs mask into dep's own flags without overwriting any
// place dep already recorded for a placed flag, mirroring
// Single_Dependency::add_flags(source, overwrite=false).
func mergeFlagsInto(dep Dependency, mask Flags) {
	switch d := dep.(type) {
	case *Direct:
		d.addFlagsFrom(mask, [CPlaced]Place{}, false)
	case *Dynamic:
		d.addFlagsFrom(mask, [CPlaced]Place{}, false)
	default:
		dep.AddFlags(mask)
	}
}

// Clone makes a shallow, top-node-only copy of dep: any child
// dependencies are shared with the original, never deep-copied.
func Clone(dep Dependency) Dependency { return dep.Clone() }

// IsSimple reports whether dep is itself a Direct or Dynamic node, without
// looking at any descendant. A Compound or Concatenated node is never
// simple, regardless of what it contains.
func IsSimple(dep Dependency) bool {
	switch dep.(type) {
	case *Direct, *Dynamic:
		return true
	default:
		return false
	}
}

// IsSimpleRecursively reports whether dep and every dependency reachable
// from it is simple: dep denotes exactly one target, with no Compound or
// Concatenated node anywhere in its subtree.
func IsSimpleRecursively(dep Dependency) bool {
	switch d := dep.(type) {
	case *Direct:
		return true
	case *Dynamic:
		return IsSimpleRecursively(d.Child)
	default:
		return false
	}
}

// GetSingleTarget collapses a simple-recursively dependency down to the one
// target it denotes, ignoring all flags along the way: a Direct yields its
// own target, and a Dynamic yields its child's target with one more level
// of dynamic wrapping folded in via TargetKind.Inc. Calling it on a
// Compound or Concatenated dependency is a programmer error, since neither
// has a single target to return.
func GetSingleTarget(dep Dependency) ParamTarget {
	switch d := dep.(type) {
	case *Direct:
		return ParamTarget{Kind: d.Target.Kind, Name: d.Target.Name.Name}
	case *Dynamic:
		t := GetSingleTarget(d.Child)
		return ParamTarget{Kind: t.Kind.Inc(), Name: t.Name}
	default:
		panic("stu: GetSingleTarget called on a non-simple dependency")
	}
}
