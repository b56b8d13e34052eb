package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/symgrad/internal/gradient"
	"github.com/born-ml/symgrad/internal/graph"
	"github.com/born-ml/symgrad/internal/op"
)

// Loader errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported graph description format")
	ErrInvalidDocument   = errors.New("invalid graph description")
	ErrUnknownOp         = errors.New("unknown operator")
	ErrDuplicateNode     = errors.New("duplicate node name")
	ErrUndefinedNode     = errors.New("reference to undeclared node")
	ErrBadReference      = errors.New("malformed entry reference")
	ErrInputCount        = errors.New("wrong number of inputs")
)

// Loader builds graphs from descriptions using the op kinds of a registry.
type Loader struct {
	registry *op.Registry
	validate *validator.Validate
}

// New creates a loader. A nil registry means op.Default().
func New(registry *op.Registry) *Loader {
	if registry == nil {
		registry = op.Default()
	}
	return &Loader{
		registry: registry,
		validate: newValidator(),
	}
}

// LoadFile reads a description with the default registry.
func LoadFile(path string) (*graph.Graph, error) {
	return New(nil).LoadFile(path)
}

// LoadFile reads and builds the description stored at path.
func (l *Loader) LoadFile(path string) (*graph.Graph, error) {
	if DetectFormat(path) == FormatUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	g, err := l.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Parse decodes, validates and builds a description.
func (l *Loader) Parse(data []byte) (*graph.Graph, error) {
	doc, err := l.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return l.Build(doc)
}

// Decode reads a Document and checks it against its field constraints.
// Unknown fields are rejected.
func (l *Loader) Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidDocument)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if err := l.validate.Struct(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return &doc, nil
}

// Build turns a validated document into a graph.
//
// The graph outputs are the ys entries and its attributes carry the
// gradient request read by gradient.ConfigFromGraph.
func (l *Loader) Build(doc *Document) (*graph.Graph, error) {
	b := &builder{
		registry: l.registry,
		nodes:    make(map[string]*graph.Node, len(doc.Nodes)),
	}
	for _, spec := range doc.Nodes {
		if err := b.add(spec); err != nil {
			return nil, err
		}
	}

	req := doc.Gradient
	ys, err := b.entries("ys", req.Ys, false)
	if err != nil {
		return nil, err
	}
	seeds, err := b.entries("ys_out_grad", req.YsOutGrad, true)
	if err != nil {
		return nil, err
	}
	xs, err := b.entries("xs", req.Xs, false)
	if err != nil {
		return nil, err
	}
	if len(ys) != len(seeds) {
		return nil, fmt.Errorf("%w: %d ys, %d ys_out_grad", ErrInvalidDocument, len(ys), len(seeds))
	}

	g := graph.New(ys...).
		WithAttr(graph.AttrGradYs, ys).
		WithAttr(graph.AttrGradYsOutGrad, seeds).
		WithAttr(graph.AttrGradXs, xs)
	if agg := aggregator(req); agg != nil {
		g = g.WithAttr(graph.AttrGradAggregateFn, agg)
	}
	if len(req.MirrorOps) > 0 {
		g = g.WithAttr(graph.AttrGradMirrorFn, gradient.MirrorOps(req.MirrorOps...))
	}
	return g, nil
}

// aggregator returns the aggregation selected by the request, or nil for the
// plain default.
func aggregator(req GradientSpec) gradient.Aggregator {
	var agg gradient.Aggregator
	if req.Aggregate == "pairwise" {
		agg = gradient.PairwiseAggregate
	}
	if req.Clip != nil {
		return gradient.ClipAggregate(agg, req.Clip.Min, req.Clip.Max)
	}
	return agg
}

type builder struct {
	registry *op.Registry
	nodes    map[string]*graph.Node
}

func (b *builder) add(spec NodeSpec) error {
	if _, ok := b.nodes[spec.Name]; ok {
		return fmt.Errorf("node %q: %w", spec.Name, ErrDuplicateNode)
	}

	if spec.Op == "" {
		if len(spec.Inputs) > 0 || len(spec.ControlDeps) > 0 {
			return fmt.Errorf("node %q: %w: variables take no inputs", spec.Name, ErrInputCount)
		}
		b.nodes[spec.Name] = graph.Variable(spec.Name)
		return nil
	}

	o, ok := b.registry.Lookup(spec.Op)
	if !ok {
		return fmt.Errorf("node %q: %w: %s", spec.Name, ErrUnknownOp, spec.Op)
	}
	if o.NumInputs >= 0 && len(spec.Inputs) != o.NumInputs {
		return fmt.Errorf("node %q: %w: %s takes %d, got %d",
			spec.Name, ErrInputCount, o.Name, o.NumInputs, len(spec.Inputs))
	}

	inputs := make([]graph.NodeEntry, len(spec.Inputs))
	for i, ref := range spec.Inputs {
		e, err := b.entry(ref, false)
		if err != nil {
			return fmt.Errorf("node %q: input %d: %w", spec.Name, i, err)
		}
		inputs[i] = e
	}

	deps := make([]*graph.Node, len(spec.ControlDeps))
	for i, name := range spec.ControlDeps {
		dep, ok := b.nodes[name]
		if !ok {
			return fmt.Errorf("node %q: control dependency %d: %w: %s", spec.Name, i, ErrUndefinedNode, name)
		}
		deps[i] = dep
	}

	n := graph.NewNode(o, spec.Name, spec.Attrs, inputs...)
	if len(deps) > 0 {
		n = n.WithControlDeps(deps...)
	}
	if n.NumOutputs() < 1 {
		return fmt.Errorf("node %q: %s has no outputs", spec.Name, o.Name)
	}
	b.nodes[spec.Name] = n
	return nil
}

// entry resolves a reference. With declare set, an unknown name becomes a
// new variable.
func (b *builder) entry(ref string, declare bool) (graph.NodeEntry, error) {
	r, err := parseEntryRef(ref)
	if err != nil {
		return graph.NodeEntry{}, err
	}
	n, ok := b.nodes[r.name]
	if !ok {
		if !declare {
			return graph.NodeEntry{}, fmt.Errorf("%w: %s", ErrUndefinedNode, r.name)
		}
		n = graph.Variable(r.name)
		b.nodes[r.name] = n
	}
	e := n.Entry(r.index)
	if !e.Valid() {
		return graph.NodeEntry{}, fmt.Errorf("%w: %s has %d outputs", ErrBadReference, ref, n.NumOutputs())
	}
	return e, nil
}

func (b *builder) entries(field string, refs []string, declare bool) ([]graph.NodeEntry, error) {
	out := make([]graph.NodeEntry, len(refs))
	for i, ref := range refs {
		e, err := b.entry(ref, declare)
		if err != nil {
			return nil, fmt.Errorf("gradient.%s[%d]: %w", field, i, err)
		}
		out[i] = e
	}
	return out, nil
}
