package mdlgen

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Classification is a bitmask describing what role a node plays in a shading
// graph. Generators use it to filter dependency emission; closure-producing
// nodes must have their calls emitted before dependent nodes in the pixel
// stage.
type Classification uint32

const (
	// ClassTexture marks nodes sampling or producing texture data.
	ClassTexture Classification = 1 << iota
	// ClassShader marks nodes producing a shader result.
	ClassShader
	// ClassClosure marks nodes contributing to a deferred shading
	// computation.
	ClassClosure
	// ClassConstant marks nodes with no upstream dependencies.
	ClassConstant
)

// Node is one instance of a node definition inside a shading graph, with its
// inputs wired to upstream outputs or to explicit values.
type Node struct {
	Name  string
	Def   *NodeDef
	Impl  *Implementation
	Class Classification

	inputs  []*InputSocket
	outputs []*OutputSocket
}

// InputSocket is a node instance's binding site for one declared input.
type InputSocket struct {
	Def *InputDef
	// Connection points at the upstream output feeding this input, or nil.
	Connection *OutputSocket
	// Value overrides the declared default when no connection exists.
	// cty.NilVal means unset.
	Value cty.Value
}

// OutputSocket is a node instance's site for one declared output. Variable
// is the identifier the generated call assigns the output to.
type OutputSocket struct {
	Node     *Node
	Def      *OutputDef
	Variable string
}

// NewNode instantiates a node from its definition and implementation.
// Output variables are named <node>_<output>. The node is classified as
// closure-producing when any declared output has a closure type.
func NewNode(name string, impl *Implementation) (*Node, error) {
	if impl == nil {
		return nil, fmt.Errorf("node %q: nil implementation", name)
	}
	def := impl.NodeDef()
	if def == nil {
		return nil, fmt.Errorf("node %q: implementation %q is not attached to a node definition", name, impl.Name)
	}
	n := &Node{Name: name, Def: def, Impl: impl}
	for i := range def.Inputs {
		n.inputs = append(n.inputs, &InputSocket{Def: &def.Inputs[i], Value: cty.NilVal})
	}
	for i := range def.Outputs {
		out := &def.Outputs[i]
		n.outputs = append(n.outputs, &OutputSocket{
			Node:     n,
			Def:      out,
			Variable: name + "_" + out.Name,
		})
		if out.Type.IsClosure() {
			n.Class |= ClassClosure
		}
	}
	if len(def.Inputs) == 0 {
		n.Class |= ClassConstant
	}
	return n, nil
}

// Input returns the socket for the named input or nil.
func (n *Node) Input(name string) *InputSocket {
	for _, in := range n.inputs {
		if in.Def.Name == name {
			return in
		}
	}
	return nil
}

// Output returns the socket for the named output or nil.
func (n *Node) Output(name string) *OutputSocket {
	for _, out := range n.outputs {
		if out.Def.Name == name {
			return out
		}
	}
	return nil
}

// Inputs returns the input sockets in declaration order.
func (n *Node) Inputs() []*InputSocket { return n.inputs }

// Outputs returns the output sockets in declaration order.
func (n *Node) Outputs() []*OutputSocket { return n.outputs }

// Connect wires this node's named input to an upstream node's named output.
func (n *Node) Connect(inputName string, upstream *Node, outputName string) error {
	in := n.Input(inputName)
	if in == nil {
		return fmt.Errorf("node %q has no input %q", n.Name, inputName)
	}
	out := upstream.Output(outputName)
	if out == nil {
		return fmt.Errorf("node %q has no output %q", upstream.Name, outputName)
	}
	in.Connection = out
	return nil
}

// SetValue binds an explicit value to the named input in place of its
// declared default.
func (n *Node) SetValue(inputName string, v cty.Value) error {
	in := n.Input(inputName)
	if in == nil {
		return fmt.Errorf("node %q has no input %q", n.Name, inputName)
	}
	in.Value = v
	return nil
}
