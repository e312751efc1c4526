package connect_test

import (
	"errors"
	"fmt"

	"github.com/matzehuels/flowedit/pkg/connect"
	"github.com/matzehuels/flowedit/pkg/diagram"
)

func ExampleValidator_TryConnect() {
	var g diagram.Graph
	g, _ = g.WithNodes(
		diagram.Node{ID: "node_1", Kind: diagram.KindCircular, Label: "Circular Node 1"},
		diagram.Node{ID: "node_2", Kind: diagram.KindDefault, Label: "Default Node 2"},
	)

	v := connect.New(connect.Options{})
	out, _ := v.TryConnect(g, "node_1", "node_2")
	fmt.Println("Assigned:", out.Assigned)

	_, err := v.TryConnect(out.Graph, "node_2", "node_1")
	var rej *connect.Rejection
	if errors.As(err, &rej) {
		fmt.Println("Rejected:", rej.Rule)
	}
	// Output:
	// Assigned: branch_node_2
	// Rejected: reverse_edge
}
