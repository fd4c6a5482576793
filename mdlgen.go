// Package mdlgen provides an abstract shading-network model and code
// generation of NVIDIA Material Definition Language (MDL) source from it.
//
// The model in this package is target-language independent: node definitions
// declare typed inputs and outputs, implementation elements bind a definition
// to either an inline source fragment or a function in an external MDL
// module. The syntax and gen packages turn that model into MDL text.
package mdlgen

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Type is an abstract shading type descriptor. It names the type as authored
// in node definition documents, not its MDL spelling; the syntax package owns
// the mapping to target type names.
type Type uint8

const (
	TypeNone Type = iota
	TypeFloat
	TypeInteger
	TypeBoolean
	TypeString
	TypeFilename
	TypeColor3
	TypeColor4
	TypeVector2
	TypeVector3
	TypeVector4
	TypeMatrix33
	TypeMatrix44
	TypeSurfaceShader
	TypeMaterial
	TypeBSDF
	TypeEDF
	TypeVDF
	maxType
)

var typeNames = [maxType]string{
	TypeNone:          "none",
	TypeFloat:         "float",
	TypeInteger:       "integer",
	TypeBoolean:       "boolean",
	TypeString:        "string",
	TypeFilename:      "filename",
	TypeColor3:        "color3",
	TypeColor4:        "color4",
	TypeVector2:       "vector2",
	TypeVector3:       "vector3",
	TypeVector4:       "vector4",
	TypeMatrix33:      "matrix33",
	TypeMatrix44:      "matrix44",
	TypeSurfaceShader: "surfaceshader",
	TypeMaterial:      "material",
	TypeBSDF:          "BSDF",
	TypeEDF:           "EDF",
	TypeVDF:           "VDF",
}

func (t Type) String() string {
	if t >= maxType {
		return "Type(" + fmt.Sprint(uint8(t)) + ")"
	}
	return typeNames[t]
}

// IsClosure reports whether the type represents a deferred shading
// computation (a closure in MDL terms) rather than a plain value.
func (t Type) IsClosure() bool {
	switch t {
	case TypeSurfaceShader, TypeMaterial, TypeBSDF, TypeEDF, TypeVDF:
		return true
	}
	return false
}

// ParseType returns the type descriptor named by s as spelled in node
// definition documents.
func ParseType(s string) (Type, error) {
	for t := TypeFloat; t < maxType; t++ {
		if typeNames[t] == s {
			return t, nil
		}
	}
	return TypeNone, fmt.Errorf("unknown shading type %q", s)
}

// InputDef declares one input of a node definition.
type InputDef struct {
	Name    string
	Type    Type
	Uniform bool
	// Default is the declared default value, or cty.NilVal when absent.
	Default cty.Value
}

// OutputDef declares one output of a node definition.
type OutputDef struct {
	Name string
	Type Type
	// Default is the declared default value, or cty.NilVal when absent.
	// Absent defaults resolve to the type's canonical zero value at
	// generation time.
	Default cty.Value
}

// NodeDef is the abstract declaration of a node: its name and ordered,
// typed inputs and outputs. It carries no target-language information.
type NodeDef struct {
	// Name is the definition element name, e.g. "ND_add_float".
	Name string
	// Node is the node category the definition declares, e.g. "add".
	Node string
	// Inputs and Outputs preserve declaration order.
	Inputs  []InputDef
	Outputs []OutputDef
}

// Input returns the named input declaration or nil.
func (nd *NodeDef) Input(name string) *InputDef {
	for i := range nd.Inputs {
		if nd.Inputs[i].Name == name {
			return &nd.Inputs[i]
		}
	}
	return nil
}

// Output returns the named output declaration or nil.
func (nd *NodeDef) Output(name string) *OutputDef {
	for i := range nd.Outputs {
		if nd.Outputs[i].Name == name {
			return &nd.Outputs[i]
		}
	}
	return nil
}

// Implementation binds a node definition to concrete source, in exactly one
// of two authoring styles:
//
//   - inline: SourceCode holds the raw body fragment to be wrapped into a
//     generated function.
//   - external: File references an MDL module and Function names the
//     pre-authored function inside it.
type Implementation struct {
	// Name is the implementation element name, e.g. "IM_add_float_genmdl".
	Name string
	// NodeDefName names the node definition this implements.
	NodeDefName string
	// SourceCode is the inline source fragment. Present iff inline.
	SourceCode string
	// File is a path-like reference to an external MDL module, e.g.
	// "bsdf/diffuse.mdl". Present iff external.
	File string
	// Function names the function implementing the node. For external
	// implementations it must name the function inside File.
	Function string
	// Target optionally restricts the implementation to a generator target.
	Target string

	def *NodeDef
}

// IsInline reports whether the implementation carries inline source code
// rather than an external module reference.
func (im *Implementation) IsInline() bool { return im.File == "" }

// NodeDef returns the resolved node definition, or nil when the
// implementation has not been attached to a document.
func (im *Implementation) NodeDef() *NodeDef { return im.def }

// Document aggregates node definitions and implementations, typically the
// contents of one or more definition files.
type Document struct {
	nodeDefs []*NodeDef
	impls    []*Implementation
}

// AddNodeDef registers a node definition. Definition names must be unique.
func (d *Document) AddNodeDef(nd *NodeDef) error {
	if nd.Name == "" {
		return fmt.Errorf("node definition with empty name")
	}
	if d.NodeDef(nd.Name) != nil {
		return fmt.Errorf("duplicate node definition %q", nd.Name)
	}
	d.nodeDefs = append(d.nodeDefs, nd)
	return nil
}

// AddImplementation registers an implementation and resolves its node
// definition reference.
func (d *Document) AddImplementation(im *Implementation) error {
	if im.Name == "" {
		return fmt.Errorf("implementation with empty name")
	}
	if d.Implementation(im.Name) != nil {
		return fmt.Errorf("duplicate implementation %q", im.Name)
	}
	nd := d.NodeDef(im.NodeDefName)
	if nd == nil {
		return fmt.Errorf("implementation %q references unknown node definition %q", im.Name, im.NodeDefName)
	}
	im.def = nd
	d.impls = append(d.impls, im)
	return nil
}

// NodeDef returns the named node definition or nil.
func (d *Document) NodeDef(name string) *NodeDef {
	for _, nd := range d.nodeDefs {
		if nd.Name == name {
			return nd
		}
	}
	return nil
}

// Implementation returns the named implementation or nil.
func (d *Document) Implementation(name string) *Implementation {
	for _, im := range d.impls {
		if im.Name == name {
			return im
		}
	}
	return nil
}

// NodeDefs returns the registered definitions in registration order.
func (d *Document) NodeDefs() []*NodeDef { return d.nodeDefs }

// Implementations returns the registered implementations in registration order.
func (d *Document) Implementations() []*Implementation { return d.impls }
