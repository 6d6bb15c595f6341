package stu

import "testing"

func TestRuleIsUnparametrized(t *testing.T) {
	r := NewRule(EmptyPlace)
	r.Targets = []*PlaceParamTarget{{Name: PlaceParamName{Name: NewLiteralName("a.o")}}}
	r.Deps = []Dependency{directDep("a.c")}
	if !r.IsUnparametrized() {
		t.Error("expected an all-literal rule to be unparametrized")
	}

	r.Targets[0].Name.Name = ParamName{Texts: []string{"", ".o"}, Params: []string{"name"}}
	if r.IsUnparametrized() {
		t.Error("expected a rule with a parametrized target to be reported as parametrized")
	}
}

func TestNewRuleDefaultsNoOutputRedirection(t *testing.T) {
	r := NewRule(EmptyPlace)
	if r.OutputIndex != -1 {
		t.Errorf("OutputIndex = %d, want -1", r.OutputIndex)
	}
	if r.Kind != ProdNone {
		t.Errorf("Kind = %v, want ProdNone", r.Kind)
	}
}
