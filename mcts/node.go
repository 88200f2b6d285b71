package mcts

import (
	"log"

	"github.com/chewxy/math32"
)

// SearchNode is a node in the MCTS tree, generic over the concrete position
// type P. Ownership is strict parent-to-child: a node's children slice is
// the only thing keeping those children reachable, and the parent pointer is
// a back-reference walked by Backpropagate and by Expand's subtree-size
// update. It is an ordinary pointer, so it keeps the parent reachable while
// the child is; AdvanceTree clears it on the child that becomes the new root,
// after which Go's garbage collector reclaims the old root and its other
// children once the caller drops its reference to the old root. This
// is the generic-parametrized replacement for the teacher's arena-indexed
// Node: no separate free-list bookkeeping is needed because the tree really
// is a tree (cf. spec §9, "Cyclic tree shape": children are always created
// by apply-move on a fresh position copy, so the shape is acyclic by
// construction).
type SearchNode[P any] struct {
	state        P
	incomingMove Move // nil at the root
	parent       *SearchNode[P]
	children     []*SearchNode[P]

	untried       []Move
	untriedSeeded bool

	visits uint64
	score  float32

	subtreeSize int

	evaluation *NodeEvaluation
}

// NewRoot constructs a fresh, unevaluated root node from state.
func NewRoot[P any](state P) *SearchNode[P] {
	return &SearchNode[P]{state: state, subtreeSize: 1}
}

// State returns the position this node owns.
func (n *SearchNode[P]) State() P { return n.state }

// IncomingMove returns the move that produced this node's position from its
// parent's, or nil at the root.
func (n *SearchNode[P]) IncomingMove() Move { return n.incomingMove }

// Parent returns the back-reference to the parent, or nil at the root
// or after AdvanceTree has detached this node as the new root.
func (n *SearchNode[P]) Parent() *SearchNode[P] { return n.parent }

// Children returns the node's materialized children, in expansion order.
func (n *SearchNode[P]) Children() []*SearchNode[P] { return n.children }

// Visits returns the simulation count through this node.
func (n *SearchNode[P]) Visits() uint64 { return n.visits }

// Score returns the accumulated SideA-perspective value over this node's
// visits; Score()/Visits() is the SideA winrate estimate.
func (n *SearchNode[P]) Score() float32 { return n.score }

// SubtreeSize returns the total node count in this subtree, including self.
func (n *SearchNode[P]) SubtreeSize() int { return n.subtreeSize }

// IsEvaluated reports whether this node has been evaluated exactly once.
func (n *SearchNode[P]) IsEvaluated() bool { return n.evaluation != nil }

// Evaluation returns the node's cached evaluation, or nil if IsEvaluated is
// false.
func (n *SearchNode[P]) Evaluation() *NodeEvaluation { return n.evaluation }

func (n *SearchNode[P]) ensureUntried(adapter GameAdapter[P]) {
	if n.untriedSeeded {
		return
	}
	n.untried = adapter.LegalMoves(n.state)
	n.untriedSeeded = true
}

// IsFullyExpanded reports whether every legal move at this node has already
// been materialized as a child. It seeds the untried-move queue on first
// touch, per spec §3's "seeded lazily or on first touch."
func (n *SearchNode[P]) IsFullyExpanded(adapter GameAdapter[P]) bool {
	n.ensureUntried(adapter)
	return len(n.untried) == 0
}

// IsTerminal reports whether this node's position has no legal continuation.
func (n *SearchNode[P]) IsTerminal(adapter GameAdapter[P]) bool {
	return adapter.IsTerminal(n.state)
}

// Expand pops one move from the untried queue, applies it to a copy of this
// node's position, and appends the resulting child. It does not evaluate
// the child — that happens on a later iteration, when selection descends
// into it. Calling Expand with an empty untried queue is an
// InvariantViolation: the driver must check IsFullyExpanded first.
func (n *SearchNode[P]) Expand(adapter GameAdapter[P]) *SearchNode[P] {
	n.ensureUntried(adapter)
	if len(n.untried) == 0 {
		panicInvariant("expand called on a node with no untried moves")
	}
	m := n.untried[0]
	n.untried = n.untried[1:]

	childState := adapter.Apply(n.state, m)
	child := &SearchNode[P]{
		state:        childState,
		incomingMove: m,
		parent:       n,
		subtreeSize:  1,
	}
	n.children = append(n.children, child)

	// The new child is not covered by Backpropagate (which starts at the
	// node that was evaluated, not the node that was just created), so its
	// contribution to ancestor subtree sizes is accounted for here instead.
	for anc := n; anc != nil; anc = anc.parent {
		anc.subtreeSize++
	}
	return child
}

// Evaluate computes this node's NodeEvaluation exactly once and returns its
// value. Precondition: IsEvaluated() is false. If the position is terminal,
// the terminal value is used and the node becomes absorbing (repeated
// Evaluate calls elsewhere in the tree on this same node never happen, since
// IsEvaluated now guards re-entry). Otherwise, evaluator (if non-nil) is
// tried first; a failed evaluator call is logged and recovered by falling
// back to adapter.Rollout, per spec §7's EvaluationError policy.
func (n *SearchNode[P]) Evaluate(adapter GameAdapter[P], evaluator Evaluator[P]) float32 {
	if n.evaluation != nil {
		panicInvariant("evaluate called on an already-evaluated node")
	}
	if adapter.IsTerminal(n.state) {
		v := adapter.TerminalValue(n.state)
		n.evaluation = &NodeEvaluation{Priors: map[string]float32{}, Value: v}
		return v
	}
	if evaluator != nil {
		ev, err := evaluator.Evaluate(n.state)
		if err == nil {
			n.evaluation = &ev
			return ev.Value
		}
		log.Printf("mcts: evaluator failed, falling back to rollout: %v", err)
	}
	v := adapter.Rollout(n.state)
	n.evaluation = &NodeEvaluation{Priors: map[string]float32{}, Value: v}
	return v
}

// GetPrior looks up the prior probability of move m under this node's own
// evaluation. Per spec §4.3, callers obtain a child's prior from the
// *parent*'s evaluation (parent.GetPrior(child.IncomingMove())); the root
// uses its own evaluation as the lookup context when treated as its own
// selection pivot.
func (n *SearchNode[P]) GetPrior(m Move) float32 {
	if n.evaluation == nil || m == nil {
		return 0
	}
	return n.evaluation.Priors[m.UCI()]
}

// Backpropagate adds value to this node's accumulated score and deltaVisits
// to its visit count, then recurses to the parent. value is always in
// SideA's perspective; no sign-flipping happens here or anywhere else in
// SearchNode — flipping to the selector's perspective happens only inside
// SelectBestChild.
func (n *SearchNode[P]) Backpropagate(value float32, deltaVisits uint64) {
	for cur := n; cur != nil; cur = cur.parent {
		cur.score += value
		cur.visits += deltaVisits
	}
}

// SelectBestChild implements the PUCT selection rule. Precondition: this
// node has at least one child and is evaluated.
//
//	U(s,a) = cpuct * P(s,a) * sqrt(N(s)) / (1 + N(s,a))
//	score  = Q(s,a) + U(s,a)
//
// N(s) is this node's own visit count (parentVisits below), which includes
// this node's own self-evaluation visit — per spec §9's open-question
// resolution, this convention is kept rather than summing child visits.
// Q is computed from the perspective of the side to move AT THIS NODE, by
// flipping the always-SideA-perspective score when that side is SideB.
// Ties are broken by first occurrence: children are scanned in order and a
// strictly-greater score is required to replace the incumbent best.
func (n *SearchNode[P]) SelectBestChild(adapter GameAdapter[P], cpuct float32) *SearchNode[P] {
	if len(n.children) == 0 {
		panicInvariant("select_best_child called on a node with no children")
	}
	selector := adapter.SideToMove(n.state)
	parentVisits := float32(n.visits)
	sqrtParent := math32.Sqrt(parentVisits)
	logParent := math32.Log(parentVisits + 1)

	var best *SearchNode[P]
	bestScore := math32.Inf(-1)
	for _, c := range n.children {
		var q float32
		if c.visits > 0 {
			winrate := c.score / float32(c.visits)
			if selector == SideA {
				q = winrate
			} else {
				q = 1 - winrate
			}
		} else {
			q = 0.5
		}

		var u float32
		if p := n.GetPrior(c.incomingMove); p > 0 {
			u = cpuct * p * sqrtParent / (1 + float32(c.visits))
		} else {
			u = cpuct * math32.Sqrt(logParent/(1+float32(c.visits)))
		}

		score := q + u
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	if best == nil {
		panicInvariant("select_best_child found no active child")
	}
	return best
}

// AdvanceTree reparents the child reached by m as the new root, dropping all
// siblings and the old root. If m is not among this node's explored
// children (UnknownMoveInAdvance), a fresh root is constructed from the
// post-move position with empty statistics instead. Dropped siblings are
// simply unreferenced here; Go's garbage collector reclaims them once they
// become unreachable, which is this module's answer to spec §5's "prompt
// reclamation" requirement.
func (n *SearchNode[P]) AdvanceTree(adapter GameAdapter[P], m Move) *SearchNode[P] {
	for _, c := range n.children {
		if c.incomingMove != nil && c.incomingMove.Equal(m) {
			c.parent = nil
			return c
		}
	}
	newState := adapter.Apply(n.state, m)
	return NewRoot[P](newState)
}

// FindChild returns the child whose incoming move equals m, or nil.
func (n *SearchNode[P]) FindChild(m Move) *SearchNode[P] {
	for _, c := range n.children {
		if c.incomingMove != nil && c.incomingMove.Equal(m) {
			return c
		}
	}
	return nil
}
