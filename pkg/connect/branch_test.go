package connect

import (
	"testing"

	"github.com/matzehuels/flowedit/pkg/diagram"
)

func TestBranchState(t *testing.T) {
	if Unbranched.IsBranched() {
		t.Error("Unbranched.IsBranched() = true")
	}
	if got := Unbranched.String(); got != "unbranched" {
		t.Errorf("Unbranched.String() = %q", got)
	}
	s := Branched("branch_node_3")
	if !s.IsBranched() || s.Tag() != "branch_node_3" {
		t.Errorf("Branched() = %v", s)
	}
	if got := s.String(); got != "branched(branch_node_3)" {
		t.Errorf("String() = %q", got)
	}
	if StateOf(diagram.Node{Branch: "b"}) != Branched("b") {
		t.Error("StateOf() does not read the node tag")
	}
}

func TestTransition(t *testing.T) {
	circ := diagram.Node{ID: "node_1", Kind: diagram.KindCircular}
	tagged := diagram.Node{ID: "node_2", Kind: diagram.KindDefault, Branch: "branch_a"}
	plain := diagram.Node{ID: "node_3", Kind: diagram.KindDefault}

	tests := []struct {
		name     string
		src, dst diagram.Node
		want     diagram.Branch
		changed  bool
	}{
		{"circular source", circ, plain, "branch_node_3", true},
		{"branched source", tagged, plain, "branch_a", true},
		{"plain source", plain, diagram.Node{ID: "node_4"}, "", false},
		{"branched target", circ, tagged, "branch_a", false},
		{"circular target", tagged, diagram.Node{ID: "node_5", Kind: diagram.KindCircular}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := transition(tt.src, tt.dst)
			if changed != tt.changed || got.Branch != tt.want {
				t.Errorf("transition() = %q, %v, want %q, %v", got.Branch, changed, tt.want, tt.changed)
			}
		})
	}
}
