// Package gen generates MDL source text from the abstract shading model.
//
// The entry points mirror the plugin contract of a shader generator: every
// implementation element maps to a [NodeImpl] which is initialized once and
// then asked to emit its function definition and per-use-site function
// calls into a [Stage] buffer.
package gen

import (
	"fmt"

	"github.com/gogpu/mdlgen"
	"go.uber.org/zap"
)

// TargetName identifies this generator in implementation target filters.
const TargetName = "genmdl"

// NodeImpl is the per-implementation code generation contract. Initialize
// must be called once, before any emission operation. The emission
// operations are callable repeatedly; they no-op when their preconditions
// do not apply (external implementation, wrong stage, already emitted).
type NodeImpl interface {
	Initialize(impl *mdlgen.Implementation, ctx *Context) error
	EmitFunctionDefinition(node *mdlgen.Node, ctx *Context, stage *Stage) error
	EmitFunctionCall(node *mdlgen.Node, ctx *Context, stage *Stage) error
}

// Generator creates and caches node implementations and drives module
// level emission. Implementations are built once per distinct
// implementation element and reused for every node instance referencing
// them.
type Generator struct {
	impls map[string]NodeImpl
}

// NewGenerator returns an empty generator.
func NewGenerator() *Generator {
	return &Generator{impls: make(map[string]NodeImpl)}
}

// NodeImpl returns the initialized implementation object for impl,
// creating it on first use. Implementations whose source code is an inline
// expression (contains "{{" markers) map to [SourceCodeNode]; statement
// bodies and external module references map to [CustomCodeNode].
func (g *Generator) NodeImpl(impl *mdlgen.Implementation, ctx *Context) (NodeImpl, error) {
	if impl == nil {
		return nil, fmt.Errorf("nil implementation")
	}
	if ni, ok := g.impls[impl.Name]; ok {
		return ni, nil
	}
	ni := newNodeImpl(impl)
	if err := ni.Initialize(impl, ctx); err != nil {
		return nil, err
	}
	g.impls[impl.Name] = ni
	ctx.Logger().Debug("initialized node implementation",
		zap.String("implementation", impl.Name),
		zap.Bool("inline", impl.IsInline()))
	return ni, nil
}

// EmitDependentFunctionCalls emits the function calls of the node's direct
// upstream dependencies whose classification matches class. Other
// dependency kinds are assumed already handled by the general traversal.
func (g *Generator) EmitDependentFunctionCalls(node *mdlgen.Node, ctx *Context, stage *Stage, class mdlgen.Classification) error {
	for _, in := range node.Inputs() {
		if in.Connection == nil {
			continue
		}
		upstream := in.Connection.Node
		if upstream.Class&class == 0 {
			continue
		}
		ni, err := g.NodeImpl(upstream.Impl, ctx)
		if err != nil {
			return err
		}
		if err := ni.EmitFunctionCall(upstream, ctx, stage); err != nil {
			return err
		}
	}
	return nil
}

// GenerateModule emits an MDL module containing the function definitions
// of every inline implementation in the document. Implementations bound to
// a different generator target are skipped.
func (g *Generator) GenerateModule(doc *mdlgen.Document, ctx *Context) (*Stage, error) {
	stage := NewStage(StagePixel)
	stage.WriteLine("mdl " + ctx.Version().String() + ";")
	stage.WriteLine("")
	for _, impl := range doc.Implementations() {
		if impl.Target != "" && impl.Target != TargetName {
			ctx.Logger().Debug("skipping implementation for foreign target",
				zap.String("implementation", impl.Name),
				zap.String("target", impl.Target))
			continue
		}
		ni, err := g.NodeImpl(impl, ctx)
		if err != nil {
			return nil, err
		}
		node, err := mdlgen.NewNode(nodeInstanceName(impl), impl)
		if err != nil {
			return nil, err
		}
		if err := ni.EmitFunctionDefinition(node, ctx, stage); err != nil {
			return nil, err
		}
	}
	return stage, nil
}

func nodeInstanceName(impl *mdlgen.Implementation) string {
	if def := impl.NodeDef(); def != nil && def.Node != "" {
		return def.Node
	}
	return impl.NodeDefName
}

func newNodeImpl(impl *mdlgen.Implementation) NodeImpl {
	if impl.IsInline() && isInlineExpression(impl.SourceCode) {
		return NewSourceCodeNode()
	}
	return NewCustomCodeNode()
}
