// Package debug is the search's observability surface: a textual Summary of
// a finished search, a Graphviz DOT dump of the explored tree, and a PNG bar
// chart of the root's top candidate moves. None of this is load-bearing for
// the search itself — it exists for a human inspecting a search post-mortem
// (spec §6, "optional but useful").
package debug

import (
	"encoding/json"
	"io"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kavehparsa/chesszero/mcts"
)

// Candidate is one root child's stats, as shown in a Summary's ranked list.
type Candidate struct {
	UCI    string
	Visits uint64
	Q      float32
	Prior  float32
}

// Summary is a snapshot of one finished search.
type Summary struct {
	IterationsRun int
	Elapsed       time.Duration
	TreeSize      int
	RootVisits    uint64
	// VisitEntropy is the Shannon entropy (in nats) of the root's visit
	// distribution over its children — high when the search is spread
	// across many candidates, low when it has converged on one.
	VisitEntropy float64
	TopMoves      []Candidate
}

// Summarize builds a Summary from a finished search's stats and its root,
// keeping at most topK candidates ranked by visit count descending.
func Summarize[P any](stats mcts.Stats, root *mcts.SearchNode[P], topK int) Summary {
	children := root.Children()
	candidates := make([]Candidate, 0, len(children))
	visits := make([]float64, 0, len(children))
	for _, c := range children {
		var q float32
		if c.Visits() > 0 {
			q = c.Score() / float32(c.Visits())
		}
		candidates = append(candidates, Candidate{
			UCI:    c.IncomingMove().UCI(),
			Visits: c.Visits(),
			Q:      q,
			Prior:  root.GetPrior(c.IncomingMove()),
		})
		visits = append(visits, float64(c.Visits()))
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Visits > candidates[j].Visits
	})
	if topK > 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}

	var entropy float64
	if total := sum(visits); total > 0 {
		probs := make([]float64, len(visits))
		for i, v := range visits {
			probs[i] = v / total
		}
		entropy = stat.Entropy(probs)
	}

	return Summary{
		IterationsRun: stats.Iterations,
		Elapsed:       stats.Elapsed,
		TreeSize:      root.SubtreeSize(),
		RootVisits:    root.Visits(),
		VisitEntropy:  entropy,
		TopMoves:      candidates,
	}
}

// WriteJSON writes s as indented JSON, the same shape the teacher persists
// its run metadata in (agogo.go's MetaData via json.MarshalIndent).
func (s Summary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	return enc.Encode(s)
}

func sum(xs []float64) float64 {
	var total float64
	for _, x := range xs {
		total += x
	}
	return total
}
