package gen

import (
	"strings"

	"github.com/gogpu/mdlgen"
	"github.com/gogpu/mdlgen/syntax"
	"github.com/zclconf/go-cty/cty"
)

// isInlineExpression reports whether inline source is a call-site
// expression template rather than a statement body: expression templates
// reference their inputs through "{{input}}" markers and are substituted
// directly at each use site, without a generated function.
func isInlineExpression(source string) bool {
	return strings.Contains(source, "{{")
}

// SourceCodeNode emits node function calls from a parameterized source
// template. It implements inline-expression implementations directly and
// serves as the emission base of [CustomCodeNode], which builds the
// template from a function signature instead of authored source.
type SourceCodeNode struct {
	// functionName is the local name of the called function, empty for
	// pure expression templates.
	functionName string
	// functionSource is the call template. "{{input}}" markers are
	// resolved per node instance against its wired inputs.
	functionSource string
}

// NewSourceCodeNode returns an implementation for inline expression
// templates.
func NewSourceCodeNode() NodeImpl { return &SourceCodeNode{} }

// Initialize stores the expression template. The implementation must carry
// inline source and declare exactly one output.
func (sc *SourceCodeNode) Initialize(impl *mdlgen.Implementation, ctx *Context) error {
	def := impl.NodeDef()
	if def == nil {
		return configErrorf(impl.Name, "implementation is not attached to a node definition")
	}
	if !impl.IsInline() {
		return configErrorf(impl.Name, "expression implementations cannot reference an external module")
	}
	if impl.SourceCode == "" {
		return configErrorf(impl.Name, "no source code was specified for the implementation")
	}
	if len(def.Outputs) != 1 {
		return configErrorf(impl.Name, "inline expression implementations require exactly one output, node definition %q declares %d", def.Name, len(def.Outputs))
	}
	sc.functionSource = strings.TrimSpace(impl.SourceCode)
	return nil
}

// EmitFunctionDefinition is a no-op: expression templates expand fully at
// their call sites and define no function.
func (sc *SourceCodeNode) EmitFunctionDefinition(node *mdlgen.Node, ctx *Context, stage *Stage) error {
	return nil
}

// EmitFunctionCall writes the resolved expression assigned to the node's
// output variable. Applies in the pixel stage only, once per node.
func (sc *SourceCodeNode) EmitFunctionCall(node *mdlgen.Node, ctx *Context, stage *Stage) error {
	if stage.Name() != StagePixel {
		return nil
	}
	if stage.CallEmitted(node.Name) {
		return nil
	}
	stage.MarkCallEmitted(node.Name)
	return sc.emitTemplateCall(node, ctx, stage)
}

// emitTemplateCall resolves the call template against the node instance's
// wired inputs and declares the output variables it assigns.
func (sc *SourceCodeNode) emitTemplateCall(node *mdlgen.Node, ctx *Context, stage *Stage) error {
	resolved, err := syntax.ReplaceSourceCodeMarkers(node.Name, sc.functionSource, func(marker string) (string, error) {
		return inputExpression(node, marker)
	})
	if err != nil {
		return err
	}
	outs := node.Outputs()
	if len(outs) == 1 {
		out := outs[0]
		tn, err := syntax.TypeName(out.Def.Type)
		if err != nil {
			return err
		}
		stage.WriteLine(tn + " " + out.Variable + " = " + resolved + ";")
		return nil
	}
	// Multiple outputs arrive packed in the function's synthesized return
	// struct; unpack each into its own variable.
	resultType := sc.functionName + "_return_type"
	resultVar := node.Name + "_result"
	stage.WriteLine(resultType + " " + resultVar + " = " + resolved + ";")
	for _, out := range outs {
		tn, err := syntax.TypeName(out.Def.Type)
		if err != nil {
			return err
		}
		field := syntax.Escape(out.Def.Name)
		stage.WriteLine(tn + " " + out.Variable + " = " + resultVar + "." + field + ";")
	}
	return nil
}

// inputExpression returns the text bound to a "{{marker}}" placeholder at
// a node's use site: the upstream output variable when connected, the
// instance value or declared default otherwise, falling back to the
// type's zero value.
func inputExpression(node *mdlgen.Node, inputName string) (string, error) {
	in := node.Input(inputName)
	if in == nil {
		return "", &ConfigurationError{
			Impl:   node.Impl.Name,
			Reason: "call template references unknown input '" + inputName + "'",
		}
	}
	if in.Connection != nil {
		return in.Connection.Variable, nil
	}
	if in.Value != cty.NilVal {
		return syntax.Value(in.Def.Type, in.Value)
	}
	if in.Def.Default != cty.NilVal {
		return syntax.Value(in.Def.Type, in.Def.Default)
	}
	return syntax.ZeroValue(in.Def.Type)
}
