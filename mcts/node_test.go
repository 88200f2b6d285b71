package mcts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kavehparsa/chesszero/mcts"
)

func TestNewRoot_Unevaluated(t *testing.T) {
	root := mcts.NewRoot(nimState{remaining: 5, toMove: mcts.SideA})
	assert.False(t, root.IsEvaluated())
	assert.Equal(t, 1, root.SubtreeSize())
	assert.Equal(t, uint64(0), root.Visits())
	assert.Nil(t, root.IncomingMove())
	assert.Nil(t, root.Parent())
}

func TestExpand_AddsChildAndBumpsSubtreeSize(t *testing.T) {
	a := newNimAdapter(1)
	root := mcts.NewRoot(nimState{remaining: 3, toMove: mcts.SideA})

	child := root.Expand(a)
	require.NotNil(t, child)
	assert.Equal(t, 2, root.SubtreeSize())
	assert.Len(t, root.Children(), 1)
	assert.Same(t, root, child.Parent())
	assert.False(t, child.IsEvaluated())
}

func TestExpand_PanicsWhenUntriedExhausted(t *testing.T) {
	a := newNimAdapter(1)
	root := mcts.NewRoot(nimState{remaining: 1, toMove: mcts.SideA})
	require.True(t, root.IsFullyExpanded(a) == false)
	root.Expand(a) // consumes the only legal move (take 1)
	assert.True(t, root.IsFullyExpanded(a))
	assert.Panics(t, func() { root.Expand(a) })
}

func TestEvaluate_TerminalUsesTerminalValue(t *testing.T) {
	a := newNimAdapter(1)
	terminal := mcts.NewRoot(nimState{remaining: 0, toMove: mcts.SideB})
	v := terminal.Evaluate(a, nil)
	assert.Equal(t, float32(1), v) // SideA made the last move
	assert.True(t, terminal.IsEvaluated())
}

func TestEvaluate_PanicsWhenAlreadyEvaluated(t *testing.T) {
	a := newNimAdapter(1)
	n := mcts.NewRoot(nimState{remaining: 2, toMove: mcts.SideA})
	n.Evaluate(a, nil)
	assert.Panics(t, func() { n.Evaluate(a, nil) })
}

func TestBackpropagate_AccumulatesUpToRoot(t *testing.T) {
	a := newNimAdapter(1)
	root := mcts.NewRoot(nimState{remaining: 4, toMove: mcts.SideA})
	child := root.Expand(a)
	grandchild := child.Expand(a)

	grandchild.Backpropagate(1, 1)
	assert.Equal(t, uint64(1), root.Visits())
	assert.Equal(t, uint64(1), child.Visits())
	assert.Equal(t, uint64(1), grandchild.Visits())
	assert.Equal(t, float32(1), root.Score())

	grandchild.Backpropagate(0, 1)
	assert.Equal(t, uint64(2), root.Visits())
	assert.Equal(t, float32(1), root.Score())
}

func TestSelectBestChild_PrefersHigherQForSelector(t *testing.T) {
	a := newNimAdapter(1)
	root := mcts.NewRoot(nimState{remaining: 4, toMove: mcts.SideA})
	root.Evaluate(a, nil)
	c1 := root.Expand(a) // take 1
	c2 := root.Expand(a) // take 2

	c1.Evaluate(a, nil)
	c1.Backpropagate(1, 1) // great for SideA
	c2.Evaluate(a, nil)
	c2.Backpropagate(0, 1) // terrible for SideA

	best := root.SelectBestChild(a, 2.0)
	assert.Same(t, c1, best)
}

func TestSelectBestChild_PanicsWithNoChildren(t *testing.T) {
	a := newNimAdapter(1)
	root := mcts.NewRoot(nimState{remaining: 4, toMove: mcts.SideA})
	root.Evaluate(a, nil)
	assert.Panics(t, func() { root.SelectBestChild(a, 2.0) })
}

func TestAdvanceTree_ReusesExploredChild(t *testing.T) {
	a := newNimAdapter(1)
	root := mcts.NewRoot(nimState{remaining: 4, toMove: mcts.SideA})
	root.Evaluate(a, nil)
	c1 := root.Expand(a)
	c1.Evaluate(a, nil)
	c1.Backpropagate(1, 1)

	newRoot := root.AdvanceTree(a, nimMove{take: 1})
	assert.Same(t, c1, newRoot)
	assert.Nil(t, newRoot.Parent())
	assert.Equal(t, uint64(1), newRoot.Visits())
}

func TestAdvanceTree_UnknownMoveBuildsFreshRoot(t *testing.T) {
	a := newNimAdapter(1)
	root := mcts.NewRoot(nimState{remaining: 4, toMove: mcts.SideA})
	root.Evaluate(a, nil)
	_ = root.Expand(a) // only explores "take 1"

	fresh := root.AdvanceTree(a, nimMove{take: 2})
	assert.Equal(t, uint64(0), fresh.Visits())
	assert.Equal(t, 2, fresh.State().remaining)
	assert.Nil(t, fresh.Parent())
}

func TestFindChild(t *testing.T) {
	a := newNimAdapter(1)
	root := mcts.NewRoot(nimState{remaining: 4, toMove: mcts.SideA})
	c1 := root.Expand(a)

	assert.Same(t, c1, root.FindChild(nimMove{take: 1}))
	assert.Nil(t, root.FindChild(nimMove{take: 2}))
}
