package dual

import (
	"strconv"

	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Model is a constructed forward-pass graph: a Conv2d input stem, a stack
// of SharedLayers residual Conv2d blocks, and two heads — a policy head
// producing ActionSpace raw logits, and a value head producing a single
// SideA-frame scalar in [0,1] via a final sigmoid. It implements the
// evaluator package's Model interface (Forward(input) (policy, value,
// err)) without importing that package, to keep this package free to be
// used by anything wanting a raw forward pass.
type Model struct {
	conf Config

	g       *G.ExprGraph
	input   *G.Node
	policy  *G.Node
	value   *G.Node
	vm      G.VM
	learnables G.Nodes
}

// New constructs the graph described by conf. An invalid conf is a
// ConfigurationError.
func New(conf Config) (*Model, error) {
	if !conf.IsValid() {
		return nil, errors.Errorf("dual: invalid config: %+v", conf)
	}

	g := G.NewGraph()
	input := G.NewTensor(g, tensor.Float32, 4,
		G.WithShape(conf.BatchSize, conf.Features, conf.Height, conf.Width),
		G.WithName("input"))

	x, learnables, err := stem(g, input, conf)
	if err != nil {
		return nil, errors.Wrap(err, "dual: building input stem")
	}
	for i := 0; i < conf.SharedLayers; i++ {
		var blockLearnables G.Nodes
		x, blockLearnables, err = residualBlock(g, x, conf, i)
		if err != nil {
			return nil, errors.Wrapf(err, "dual: building residual block %d", i)
		}
		learnables = append(learnables, blockLearnables...)
	}

	policy, policyLearnables, err := policyHead(g, x, conf)
	if err != nil {
		return nil, errors.Wrap(err, "dual: building policy head")
	}
	value, valueLearnables, err := valueHead(g, x, conf)
	if err != nil {
		return nil, errors.Wrap(err, "dual: building value head")
	}
	learnables = append(learnables, policyLearnables...)
	learnables = append(learnables, valueLearnables...)

	var vm G.VM
	if conf.FwdOnly {
		vm = G.NewTapeMachine(g)
	} else {
		vm = G.NewTapeMachine(g, G.BindDualValues(learnables...))
	}

	return &Model{
		conf:       conf,
		g:          g,
		input:      input,
		policy:     policy,
		value:      value,
		vm:         vm,
		learnables: learnables,
	}, nil
}

// Forward runs one batch-of-one forward pass. input must have exactly
// conf.Features*conf.Height*conf.Width entries, in the same
// plane-major/row-major order game.Encode produces.
func (m *Model) Forward(input []float32) (policy []float32, value float32, err error) {
	want := m.conf.Features * m.conf.Height * m.conf.Width
	if len(input) != want {
		return nil, 0, errors.Errorf("dual: forward: input has %d elements, want %d", len(input), want)
	}

	t := tensor.New(tensor.WithShape(1, m.conf.Features, m.conf.Height, m.conf.Width), tensor.WithBacking(input))
	if err := G.Let(m.input, t); err != nil {
		return nil, 0, errors.Wrap(err, "dual: forward: binding input")
	}
	defer m.vm.Reset()
	if err := m.vm.RunAll(); err != nil {
		return nil, 0, errors.Wrap(err, "dual: forward: running graph")
	}

	policyData, ok := m.policy.Value().Data().([]float32)
	if !ok {
		return nil, 0, errors.New("dual: forward: policy head did not produce a float32 tensor")
	}
	valueData, ok := m.value.Value().Data().([]float32)
	if !ok || len(valueData) != 1 {
		return nil, 0, errors.New("dual: forward: value head did not produce a scalar float32")
	}

	out := make([]float32, len(policyData))
	copy(out, policyData)
	return out, valueData[0], nil
}

func weight(g *G.ExprGraph, name string, shape tensor.Shape) *G.Node {
	return G.NewTensor(g, tensor.Float32, shape.Dims(),
		G.WithShape(shape...), G.WithName(name), G.WithInit(G.GlorotN(1.0)))
}

func conv3x3(g *G.ExprGraph, x *G.Node, inCh, outCh int, name string) (*G.Node, *G.Node, error) {
	w := weight(g, name, tensor.Shape{outCh, inCh, 3, 3})
	out, err := G.Conv2d(x, w, tensor.Shape{3, 3}, []int{1, 1}, []int{1, 1}, []int{1, 1})
	return out, w, err
}

func stem(g *G.ExprGraph, input *G.Node, conf Config) (*G.Node, G.Nodes, error) {
	out, w, err := conv3x3(g, input, conf.Features, conf.K, "stem.conv")
	if err != nil {
		return nil, nil, err
	}
	out, err = G.Rectify(out)
	if err != nil {
		return nil, nil, err
	}
	return out, G.Nodes{w}, nil
}

// residualBlock is conv -> relu -> conv -> add(skip) -> relu, the standard
// AlphaZero-style residual tower block, sized to conf.K filters throughout
// so the skip connection never needs a projection.
func residualBlock(g *G.ExprGraph, x *G.Node, conf Config, idx int) (*G.Node, G.Nodes, error) {
	skip := x
	out, w1, err := conv3x3(g, x, conf.K, conf.K, nodeName("block", idx, "conv1"))
	if err != nil {
		return nil, nil, err
	}
	out, err = G.Rectify(out)
	if err != nil {
		return nil, nil, err
	}
	out, w2, err := conv3x3(g, out, conf.K, conf.K, nodeName("block", idx, "conv2"))
	if err != nil {
		return nil, nil, err
	}
	out, err = G.Add(out, skip)
	if err != nil {
		return nil, nil, err
	}
	out, err = G.Rectify(out)
	if err != nil {
		return nil, nil, err
	}
	return out, G.Nodes{w1, w2}, nil
}

// policyHead reduces to 2 planes, flattens, and runs a single fully
// connected layer to conf.ActionSpace raw logits — no softmax, since the
// evaluator package masks to legal moves before normalizing.
func policyHead(g *G.ExprGraph, x *G.Node, conf Config) (*G.Node, G.Nodes, error) {
	const headPlanes = 2
	w := weight(g, "policy.conv1x1", tensor.Shape{headPlanes, conf.K, 1, 1})
	out, err := G.Conv2d(x, w, tensor.Shape{1, 1}, []int{0, 0}, []int{1, 1}, []int{1, 1})
	if err != nil {
		return nil, nil, err
	}
	out, err = G.Rectify(out)
	if err != nil {
		return nil, nil, err
	}
	flat, err := G.Reshape(out, tensor.Shape{conf.BatchSize, headPlanes * conf.Height * conf.Width})
	if err != nil {
		return nil, nil, err
	}
	fc := weight(g, "policy.fc", tensor.Shape{headPlanes * conf.Height * conf.Width, conf.ActionSpace})
	logits, err := G.Mul(flat, fc)
	if err != nil {
		return nil, nil, err
	}
	return logits, G.Nodes{w, fc}, nil
}

// valueHead reduces to 1 plane, flattens, runs one hidden FC+relu layer,
// then a scalar FC+sigmoid to a SideA-frame value in [0,1].
func valueHead(g *G.ExprGraph, x *G.Node, conf Config) (*G.Node, G.Nodes, error) {
	const headPlanes = 1
	w := weight(g, "value.conv1x1", tensor.Shape{headPlanes, conf.K, 1, 1})
	out, err := G.Conv2d(x, w, tensor.Shape{1, 1}, []int{0, 0}, []int{1, 1}, []int{1, 1})
	if err != nil {
		return nil, nil, err
	}
	out, err = G.Rectify(out)
	if err != nil {
		return nil, nil, err
	}
	flat, err := G.Reshape(out, tensor.Shape{conf.BatchSize, headPlanes * conf.Height * conf.Width})
	if err != nil {
		return nil, nil, err
	}
	fc1 := weight(g, "value.fc1", tensor.Shape{headPlanes * conf.Height * conf.Width, conf.FC})
	hidden, err := G.Mul(flat, fc1)
	if err != nil {
		return nil, nil, err
	}
	hidden, err = G.Rectify(hidden)
	if err != nil {
		return nil, nil, err
	}
	fc2 := weight(g, "value.fc2", tensor.Shape{conf.FC, 1})
	scalar, err := G.Mul(hidden, fc2)
	if err != nil {
		return nil, nil, err
	}
	scalar, err = G.Sigmoid(scalar)
	if err != nil {
		return nil, nil, err
	}
	return scalar, G.Nodes{w, fc1, fc2}, nil
}

func nodeName(prefix string, idx int, suffix string) string {
	return prefix + "." + strconv.Itoa(idx) + "." + suffix
}
