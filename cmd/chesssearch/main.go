// Command chesssearch is the peripheral stdin/stdout shell around the
// search core: it reads one FEN position per line from stdin and writes one
// line per position to stdout: the best move in UCI form, a tab, then the
// iteration count and elapsed time of that search. It keeps no tree
// across lines — each FEN starts a fresh Search — since stdin gives no
// signal about which move was actually played between positions.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	dual "github.com/kavehparsa/chesszero/dualnet"
	"github.com/kavehparsa/chesszero/engine"
	"github.com/kavehparsa/chesszero/evaluator"
	"github.com/kavehparsa/chesszero/mcts"
)

var (
	maxIterations = flag.Int("max_iterations", 15000, "maximum search iterations per position")
	maxSeconds    = flag.Float64("max_seconds", 5, "maximum search time per position, in seconds")
	cpuct         = flag.Float64("cpuct", 2.0, "PUCT exploration constant")
	useNN         = flag.Bool("use_nn", false, "evaluate leaves with a freshly-initialized dual-head network instead of random rollout")
)

func main() {
	flag.Parse()

	conf := mcts.Config{
		MaxIterations: *maxIterations,
		MaxSeconds:    *maxSeconds,
		CPUCT:         float32(*cpuct),
	}

	opts := []engine.Option{engine.WithConfig(conf)}
	if *useNN {
		ev, err := newEvaluator()
		if err != nil {
			log.Fatalf("chesssearch: constructing evaluator: %v", err)
		}
		opts = append(opts, engine.WithEvaluator(ev))
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fen := scanner.Text()
		if fen == "" {
			continue
		}
		s, err := engine.New(fen, opts...)
		if err != nil {
			log.Printf("chesssearch: %q: %v", fen, err)
			continue
		}
		best, stats, err := s.BestMove()
		if err != nil {
			log.Printf("chesssearch: %q: %v", fen, err)
			continue
		}
		fmt.Printf("%s\t%d iterations in %s\n", best, stats.Iterations, stats.Elapsed)
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("chesssearch: reading stdin: %v", err)
	}
}

// newEvaluator builds an evaluator around a freshly-initialized (untrained)
// dual-head network. Loading trained weights from a file is out of scope;
// --use_nn exists to exercise the evaluator/model forward-pass wiring end
// to end, not to play strong chess.
func newEvaluator() (*evaluator.Evaluator, error) {
	model, err := dual.New(dual.DefaultConfig())
	if err != nil {
		return nil, err
	}
	return evaluator.New(model)
}
