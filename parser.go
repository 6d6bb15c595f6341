package stu

// ParseOptions is threaded explicitly into the parser rather than read
// from global mutable state, per SPEC_FULL.md's Design Notes.
type ParseOptions struct {
	// NonOptional, when true, strips the Optional bit from every '?'
	// prefixed dependency (the place is still recorded either way — see
	// DESIGN.md, "Open questions resolved", item 4).
	NonOptional bool
	// NonTrivial strips the Trivial bit from every '&' prefixed
	// dependency, symmetrically with NonOptional.
	NonTrivial bool
}

type parser struct {
	s    *TokenStream
	opts ParseOptions
}

// ParseRuleList parses a full Stufile's worth of tokens into a rule list.
func ParseRuleList(tokens []Token, end Place, opts ParseOptions) ([]*Rule, error) {
	p := &parser{s: NewTokenStream(tokens, end), opts: opts}
	var rules []*Rule
	for {
		rule, found, err := p.parseRule()
		if err != nil {
			return nil, err
		}
		if !found {
			break
		}
		rules = append(rules, rule)
	}
	if !p.s.AtEnd() {
		t, _ := p.s.Peek()
		return nil, NewLogicalError(t.TokenPlace(), "expected a rule or end of file")
	}
	return rules, nil
}

// ParseExpressionList parses a standalone dependency-expression list (the
// right-hand side of a rule's ':', without the rule's target/production
// framing), returning the dependencies, an optional input-redirection
// name, and its place.
func ParseExpressionList(tokens []Token, end Place, opts ParseOptions) ([]Dependency, *PlaceParamName, Place, error) {
	p := &parser{s: NewTokenStream(tokens, end), opts: opts}
	deps, input, inputPlace, err := p.parseExpressionList()
	if err != nil {
		return nil, nil, Place{}, err
	}
	if !p.s.AtEnd() {
		t, _ := p.s.Peek()
		return nil, nil, Place{}, NewLogicalError(t.TokenPlace(), "expected a dependency or end of input")
	}
	return deps, input, inputPlace, nil
}

// GetTargetDependency parses the command-line form of a dependency, e.g.
// a target given directly as a program argument rather than parsed out of
// a Stufile.
func GetTargetDependency(text string) (Dependency, error) {
	toks, end, err := Tokenize("<argument>", text)
	if err != nil {
		return nil, err
	}
	p := &parser{s: NewTokenStream(toks, end)}
	dep, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.s.AtEnd() {
		t, _ := p.s.Peek()
		return nil, NewLogicalError(t.TokenPlace(), "unexpected characters after dependency")
	}
	return dep, nil
}

func (p *parser) parseRule() (*Rule, bool, error) {
	targets, outputIndex, outputPlace, err := p.parseTargetList()
	if err != nil {
		return nil, false, err
	}
	if len(targets) == 0 {
		if p.s.AtEnd() {
			return nil, false, nil
		}
		t, _ := p.s.Peek()
		return nil, false, NewLogicalError(t.TokenPlace(), "expected a target or end of file")
	}
	if err := validateSharedParams(targets); err != nil {
		return nil, false, err
	}

	rule := NewRule(targets[0].Place)
	rule.Targets = targets
	rule.OutputIndex = outputIndex

	var inputPlace Place
	switch {
	case p.atOperator(':'):
		p.s.Next()
		deps, input, place, err := p.parseExpressionList()
		if err != nil {
			return nil, false, err
		}
		rule.Deps = deps
		rule.InputFilename = input
		inputPlace = place
		if err := p.parseProduction(rule); err != nil {
			return nil, false, err
		}

	case p.atOperator('='):
		eq, _ := p.s.Next()
		if len(targets) != 1 {
			return nil, false, NewLogicalError(eq.TokenPlace(), "a copy rule requires exactly one target")
		}
		srcTok, ok := p.s.Next()
		nameTok, isName := srcTok.(NameToken)
		if !ok || !isName {
			return nil, false, NewLogicalError(p.s.PlaceOrEnd(), "expected a source name after '='")
		}
		if !p.atOperator(';') {
			return nil, false, NewLogicalError(p.s.PlaceOrEnd(), "expected ';' after copy source")
		}
		p.s.Next()
		copied, err := appendCopy(targets[0].Name.Name, nameTok.Name.Name)
		if err != nil {
			return nil, false, err
		}
		rule.Kind = ProdCopy
		rule.CopySource = &PlaceParamName{Name: copied, Place: nameTok.Pl}

	case p.atOperator(';'):
		p.s.Next()
		rule.Kind = ProdNone

	default:
		if err := p.parseProduction(rule); err != nil {
			return nil, false, err
		}
	}

	if rule.OutputIndex != -1 && rule.Kind != ProdCommand {
		return nil, false, NewLogicalError(outputPlace, "output redirection requires a command production")
	}

	if rule.InputFilename != nil && rule.Kind == ProdNone {
		return nil, false, NewLogicalError(inputPlace, "input redirection is forbidden on a ';'-rule")
	}

	return rule, true, nil
}

// parseProduction consumes whatever comes right after a rule's
// target/dependency framing: a command block, a hardcoded-content block,
// or a bare ';'.
func (p *parser) parseProduction(rule *Rule) error {
	tok, ok := p.s.Peek()
	if !ok {
		return NewLogicalError(p.s.EndPlace(), "expected a command, hardcoded content, or ';'")
	}
	switch t := tok.(type) {
	case CommandToken:
		p.s.Next()
		rule.CommandPlace = t.Pl
		if t.Hardcoded {
			rule.Kind = ProdHardcode
			rule.Content = t.Payload
		} else {
			rule.Kind = ProdCommand
			rule.Command = t.Payload
		}
	case OperatorToken:
		if t.Op == ';' {
			p.s.Next()
			rule.Kind = ProdNone
			return nil
		}
		return NewLogicalError(t.Pl, "expected a command, hardcoded content, or ';'")
	default:
		return NewLogicalError(tok.TokenPlace(), "expected a command, hardcoded content, or ';'")
	}
	return nil
}

// parseTargetList parses the rule's target list, where each target has the
// form "('>')? ('@')? name": an optional per-target output-redirection
// marker followed by an optional transient marker and a name. At most one
// target in the whole list may carry '>', and only onto an unparametrized
// FILE target.
func (p *parser) parseTargetList() ([]*PlaceParamTarget, int, Place, error) {
	var targets []*PlaceParamTarget
	outputIndex := -1
	var outputPlace Place

	for {
		tok, ok := p.s.Peek()
		if !ok {
			break
		}

		hasRedirect := false
		var redirectPlace Place
		if op, isOp := tok.(OperatorToken); isOp && op.Op == '>' {
			p.s.Next()
			hasRedirect = true
			redirectPlace = op.Pl
			tok, ok = p.s.Peek()
			if !ok {
				return nil, -1, Place{}, NewLogicalError(redirectPlace, "expected a target after '>'")
			}
		}

		var target *PlaceParamTarget
		switch t := tok.(type) {
		case OperatorToken:
			if t.Op != '@' {
				if hasRedirect {
					return nil, -1, Place{}, NewLogicalError(redirectPlace, "expected a target after '>'")
				}
				return targets, outputIndex, outputPlace, nil
			}
			p.s.Next()
			nameTok, ok := p.s.Next()
			nt, isName := nameTok.(NameToken)
			if !ok || !isName {
				return nil, -1, Place{}, NewLogicalError(t.Pl, "expected a name after '@'")
			}
			if hasRedirect {
				return nil, -1, Place{}, NewLogicalError(redirectPlace, "output redirection is not allowed on a transient target")
			}
			target = &PlaceParamTarget{Kind: TargetKind{Base: KindTransient}, Name: nt.Name, Place: t.Pl}

		case NameToken:
			p.s.Next()
			target = &PlaceParamTarget{Kind: TargetKind{Base: KindFile}, Name: t.Name, Place: t.Pl}

		default:
			if hasRedirect {
				return nil, -1, Place{}, NewLogicalError(redirectPlace, "expected a target after '>'")
			}
			return targets, outputIndex, outputPlace, nil
		}

		if hasRedirect {
			if !target.Name.Name.IsUnparametrized() {
				return nil, -1, Place{}, NewLogicalError(redirectPlace, "an output-redirection target must be unparametrized")
			}
			if outputIndex != -1 {
				return nil, -1, Place{}, NewLogicalError(redirectPlace, "there must not be a second output redirection").Because(outputPlace, "shadowing previous output redirection here")
			}
			outputIndex = len(targets)
			outputPlace = redirectPlace
		}

		targets = append(targets, target)
	}

	return targets, outputIndex, outputPlace, nil
}

// validateSharedParams checks that every target in a rule declares exactly
// the same set of parameters, per the rule-wide invariant that a rule's
// targets and dependencies are all instantiated from one shared mapping.
func validateSharedParams(targets []*PlaceParamTarget) error {
	if len(targets) == 0 {
		return nil
	}
	base := paramSet(targets[0].Name.Name)
	for _, t := range targets[1:] {
		if !sameParamSet(base, paramSet(t.Name.Name)) {
			return NewLogicalError(t.Place, "the parameters of target '%s' differ from the parameters of target '%s'",
				t.Name.Name.Format(), targets[0].Name.Name.Format()).
				Because(targets[0].Place, "target '%s' was declared here", targets[0].Name.Name.Format())
		}
	}
	return nil
}

func paramSet(n ParamName) map[string]bool {
	s := make(map[string]bool, len(n.Params))
	for _, p := range n.Params {
		s[p] = true
	}
	return s
}

func sameParamSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

func (p *parser) parseExpressionList() ([]Dependency, *PlaceParamName, Place, error) {
	var deps []Dependency
	var input *PlaceParamName
	var inputPlace Place

	for {
		tok, ok := p.s.Peek()
		if !ok {
			break
		}
		if op, isOp := tok.(OperatorToken); isOp {
			if op.Op == ';' {
				break
			}
			if op.Op == '<' {
				p.s.Next()
				nameTok, ok := p.s.Next()
				nt, isName := nameTok.(NameToken)
				if !ok || !isName {
					return nil, nil, Place{}, NewLogicalError(op.Pl, "expected a name after '<'")
				}
				if input != nil {
					return nil, nil, Place{}, NewLogicalError(nt.Pl, "multiple input redirections").Because(inputPlace, "previous input redirection was here")
				}
				input = &nt.Name
				inputPlace = op.Pl
				continue
			}
		}
		if _, isCmd := tok.(CommandToken); isCmd {
			break
		}
		dep, err := p.parseExpression()
		if err != nil {
			return nil, nil, Place{}, err
		}
		deps = append(deps, dep)
	}

	if input != nil {
		for _, d := range deps {
			if p := optionalPlace(d); !p.IsEmpty() {
				return nil, nil, Place{}, NewLogicalError(p, "'?' optional is forbidden together with input redirection").Because(inputPlace, "input redirection was here")
			}
		}
	}

	return deps, input, inputPlace, nil
}

// optionalPlace returns the place recorded for a '?' applied directly to
// dep, or to any dependency nested inside it, or EmptyPlace if '?' never
// appears in dep's subtree.
func optionalPlace(dep Dependency) Place {
	if p := dep.PlaceFlag(IOptional); !p.IsEmpty() {
		return p
	}
	switch d := dep.(type) {
	case *Dynamic:
		return optionalPlace(d.Child)
	case *Compound:
		for _, ch := range d.Children {
			if p := optionalPlace(ch); !p.IsEmpty() {
				return p
			}
		}
	case *Concatenated:
		for _, ch := range d.Children {
			if p := optionalPlace(ch); !p.IsEmpty() {
				return p
			}
		}
	}
	return EmptyPlace
}

func (p *parser) parseExpression() (Dependency, error) {
	first, err := p.parsePrefixedPrimary()
	if err != nil {
		return nil, err
	}
	if !p.atOperator('*') {
		return first, nil
	}
	place := first.Place()
	children := []Dependency{first}
	for p.atOperator('*') {
		p.s.Next()
		next, err := p.parsePrefixedPrimary()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	return NewConcatenated(place, children), nil
}

func (p *parser) parsePrefixedPrimary() (Dependency, error) {
	tok, ok := p.s.Peek()
	if !ok {
		return nil, NewLogicalError(p.s.EndPlace(), "expected a dependency")
	}
	op, isOp := tok.(OperatorToken)
	if !isOp {
		return p.parsePrimary()
	}

	switch op.Op {
	case '@':
		p.s.Next()
		nameTok, ok := p.s.Next()
		nt, isName := nameTok.(NameToken)
		if !ok || !isName {
			return nil, NewLogicalError(op.Pl, "expected a name after '@'")
		}
		return NewDirect(PlaceParamTarget{
			Kind:  TargetKind{Base: KindTransient},
			Name:  nt.Name,
			Place: op.Pl,
		}), nil

	case '!':
		p.s.Next()
		child, err := p.parsePrefixedPrimary()
		if err != nil {
			return nil, err
		}
		child.AddFlags(OverrideTrivial)
		return child, nil

	case '?':
		p.s.Next()
		child, err := p.parsePrefixedPrimary()
		if err != nil {
			return nil, err
		}
		setPlaceFlagOnElements(child, IOptional, op.Pl)
		if !p.opts.NonOptional {
			child.AddFlags(Optional)
		}
		return child, nil

	case '&':
		p.s.Next()
		child, err := p.parsePrefixedPrimary()
		if err != nil {
			return nil, err
		}
		setPlaceFlagOnElements(child, ITrivial, op.Pl)
		if !p.opts.NonTrivial {
			child.AddFlags(Trivial)
		}
		return child, nil

	default:
		return p.parsePrimary()
	}
}

// setPlaceFlagOnElements records place for placed-flag index i on dep, or on each element of a list.
func setPlaceFlagOnElements(dep Dependency, i int, place Place) {
	var children []Dependency
	switch d := dep.(type) {
	case *Compound:
		children = d.Children
	case *Concatenated:
		children = d.Children
	default:
		dep.SetPlaceFlag(i, place)
	}
	for _, ch := range children {
		setPlaceFlagOnElements(ch, i, place)
	}
}

func (p *parser) parsePrimary() (Dependency, error) {
	tok, ok := p.s.Peek()
	if !ok {
		return nil, NewLogicalError(p.s.EndPlace(), "expected a dependency")
	}

	switch t := tok.(type) {
	case NameToken:
		p.s.Next()
		return NewDirect(PlaceParamTarget{
			Kind:  TargetKind{Base: KindFile},
			Name:  t.Name,
			Place: t.Pl,
		}), nil

	case OperatorToken:
		switch t.Op {
		case '(':
			p.s.Next()
			var children []Dependency
			for !p.atOperator(')') {
				if p.s.AtEnd() {
					return nil, NewLogicalError(t.Pl, "unterminated '(': missing ')'")
				}
				child, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				children = append(children, child)
			}
			p.s.Next()
			return NewCompound(t.Pl, children), nil

		case '[':
			p.s.Next()
			child, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if !p.atOperator(']') {
				return nil, NewLogicalError(t.Pl, "unterminated '[': missing ']'")
			}
			p.s.Next()
			// A fresh "[...]" wrapper always starts with flags 0; any
			// flags on it come only from an enclosing prefix ('?', '&',
			// '!') applied outside the brackets.
			return NewDynamic(t.Pl, child), nil

		case '$':
			p.s.Next()
			if !p.atOperator('[') {
				return nil, NewLogicalError(t.Pl, "expected '[' after '$'")
			}
			p.s.Next()
			dep, err := p.parseVariableDependency()
			if err != nil {
				return nil, err
			}
			if !p.atOperator(']') {
				return nil, NewLogicalError(t.Pl, "unterminated '$[': missing ']'")
			}
			p.s.Next()
			return dep, nil
		}
	}

	return nil, NewLogicalError(tok.TokenPlace(), "expected a dependency")
}

// parseVariableDependency parses the body of "$[...]":
//
//	var_dep := ('!' | '?' | '&')* '<'? name ('=' name)?
//
// producing a Direct with the VARIABLE flag, a FILE target kind, and
// (optionally) a renamed variable name and/or an input-filename marker.
func (p *parser) parseVariableDependency() (*Direct, error) {
	dep := NewDirect(PlaceParamTarget{Kind: TargetKind{Base: KindFile}})
	dep.AddFlags(Variable)
	if err := p.consumeVarDepPrefixFlags(dep); err != nil {
		return nil, err
	}

	hasInput := false
	if p.atOperator('<') {
		p.s.Next()
		hasInput = true
	}

	nameTok, ok := p.s.Next()
	nt, isName := nameTok.(NameToken)
	if !ok || !isName {
		return nil, NewLogicalError(p.s.PlaceOrEnd(), "expected a name in '$[...]'")
	}
	dep.Target = PlaceParamTarget{Kind: TargetKind{Base: KindFile}, Name: nt.Name, Place: nt.Pl}
	if hasInput {
		dep.InputFilename = &nt.Name
	}

	if p.atOperator('=') {
		p.s.Next()
		renameTok, ok := p.s.Next()
		rn, isName := renameTok.(NameToken)
		if !ok || !isName {
			return nil, NewLogicalError(p.s.PlaceOrEnd(), "expected a name after '=' in '$[...]'")
		}
		dep.Renamed = true
		dep.VariableName = rn.Name
	}

	return dep, nil
}

// consumeVarDepPrefixFlags consumes the leading '!'/'?'/'&' run inside
// "$[...]", applying each to dep exactly as the same prefixes do outside
// the brackets (see parsePrefixedPrimary): '?' and '&' always record their
// place, but only add their flag bit when the corresponding stripping
// option isn't set. If a '?' was seen and the run is immediately followed
// by '<', that is an input-redirection conflict and is reported here
// rather than left for the caller to notice.
func (p *parser) consumeVarDepPrefixFlags(dep Dependency) error {
	for {
		tok, ok := p.s.Peek()
		if !ok {
			return nil
		}
		op, isOp := tok.(OperatorToken)
		if !isOp {
			return nil
		}
		switch op.Op {
		case '!':
			p.s.Next()
			dep.AddFlags(OverrideTrivial)
		case '?':
			p.s.Next()
			dep.SetPlaceFlag(IOptional, op.Pl)
			if !p.opts.NonOptional {
				dep.AddFlags(Optional)
			}
		case '&':
			p.s.Next()
			dep.SetPlaceFlag(ITrivial, op.Pl)
			if !p.opts.NonTrivial {
				dep.AddFlags(Trivial)
			}
		case '<':
			if p := dep.PlaceFlag(IOptional); !p.IsEmpty() {
				return NewLogicalError(p, "'?' optional is forbidden together with input redirection").Because(op.Pl, "input redirection was here")
			}
			return nil
		default:
			return nil
		}
	}
}

func (p *parser) atOperator(op byte) bool {
	_, ok := p.peekOperator(op)
	return ok
}

func (p *parser) peekOperator(op byte) (OperatorToken, bool) {
	tok, ok := p.s.Peek()
	if !ok {
		return OperatorToken{}, false
	}
	o, isOp := tok.(OperatorToken)
	if !isOp || o.Op != op {
		return OperatorToken{}, false
	}
	return o, true
}

// appendCopy implements the copy-rule slash-append rule: when the copy
// source name is unparametrized and ends in '/', the part of the target's
// name after its last '/' (or the whole name if it has none) is appended
// to it, so "out/prog.bin = src/;" copies "src/prog.bin". Only the
// target's literal text is searched for '/'; its parameters are carried
// over. Otherwise the source name is used exactly as written.
func appendCopy(target, source ParamName) (ParamName, error) {
	if !source.IsUnparametrized() {
		return source, nil
	}
	src := source.Unparametrized()
	if src == "" || src[len(src)-1] != '/' {
		return source, nil
	}
	// Look for the last '/' in the literal texts, from the end.
	for k := len(target.Texts) - 1; k > 0; k-- {
		if seg := lastPathSegment(target.Texts[k]); len(seg) < len(target.Texts[k]) {
			texts := append([]string{src + seg}, target.Texts[k+1:]...)
			return ParamName{Texts: texts, Params: append([]string(nil), target.Params[k:]...)}, nil
		}
	}
	texts := append([]string(nil), target.Texts...)
	texts[0] = src + lastPathSegment(texts[0])
	return ParamName{Texts: texts, Params: target.Params}, nil
}

func lastPathSegment(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return s[i+1:]
		}
	}
	return s
}
