package debug

import (
	"fmt"
	"strconv"

	"github.com/awalterschulze/gographviz"

	"github.com/kavehparsa/chesszero/mcts"
)

// DOT renders a bounded-depth view of the tree rooted at root as a Graphviz
// DOT graph: one node per explored SearchNode labelled with its incoming
// move, visit count, and Q, and one edge per parent/child link. maxDepth
// bounds how many plies below root are walked; a real search tree is far
// too wide and deep to render in full.
func DOT[P any](root *mcts.SearchNode[P], maxDepth int) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName("search"); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}

	id := 0
	var walk func(n *mcts.SearchNode[P], depth int) string
	walk = func(n *mcts.SearchNode[P], depth int) string {
		name := "n" + strconv.Itoa(id)
		id++

		label := "root"
		if n.IncomingMove() != nil {
			label = n.IncomingMove().UCI()
		}
		var q float32
		if n.Visits() > 0 {
			q = n.Score() / float32(n.Visits())
		}
		attrs := map[string]string{
			"label": fmt.Sprintf("%q", fmt.Sprintf("%s\\nN=%d Q=%.3f", label, n.Visits(), q)),
		}
		_ = g.AddNode("search", name, attrs)

		if depth >= maxDepth {
			return name
		}
		for _, c := range n.Children() {
			childName := walk(c, depth+1)
			_ = g.AddEdge(name, childName, true, nil)
		}
		return name
	}
	walk(root, 0)

	return g.String(), nil
}
