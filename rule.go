package stu

// ProductionKind says how a rule's target gets produced.
type ProductionKind int

const (
	// ProdNone means the rule has no command at all: its targets must
	// already exist (declared solely to attach dependencies/flags).
	ProdNone ProductionKind = iota
	// ProdCommand means the rule's targets are produced by running a
	// shell command (the command's text, not its execution, is in
	// scope here).
	ProdCommand
	// ProdHardcode means the rule's single target is produced directly
	// from a literal content block ("'...'") rather than a command.
	ProdHardcode
	// ProdCopy means the rule's single target is produced by copying the
	// content of another file, named by CopySource.
	ProdCopy
)

// Rule is one parsed rule: a list of targets sharing one dependency list
// and one production.
type Rule struct {
	Targets []*PlaceParamTarget
	Deps    []Dependency
	Kind    ProductionKind

	// Command holds the raw command text when Kind == ProdCommand.
	Command string
	// CommandPlace is where the command body started.
	CommandPlace Place

	// Content holds the literal bytes when Kind == ProdHardcode.
	Content string

	// CopySource names the file to copy from when Kind == ProdCopy.
	CopySource *PlaceParamName

	// OutputIndex is the index into Targets that receives the command's
	// stdout (that target was written with a leading ">" redirection
	// marker, e.g. ">target"), or -1 if there is no output redirection.
	OutputIndex int

	// InputFilename, if non-nil, names the single dependency that was
	// written with "< name" input redirection rather than as a plain
	// dependency in Deps.
	InputFilename *PlaceParamName

	// Place is where the rule as a whole starts (its first target).
	Place Place
}

// NewRule returns an empty rule with no output redirection.
func NewRule(place Place) *Rule {
	return &Rule{Place: place, OutputIndex: -1}
}

// IsUnparametrized reports whether every target and dependency in the rule
// is free of parameters, i.e. the rule can be used as-is without
// instantiation.
func (r *Rule) IsUnparametrized() bool {
	for _, t := range r.Targets {
		if !t.Name.Name.IsUnparametrized() {
			return false
		}
	}
	for _, d := range r.Deps {
		if !d.IsUnparametrized() {
			return false
		}
	}
	return true
}
