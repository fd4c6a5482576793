package gen

import (
	"strings"

	"github.com/gogpu/mdlgen"
	"github.com/gogpu/mdlgen/syntax"
	"github.com/zclconf/go-cty/cty"
)

// CustomCodeNode implements user-authored node implementations in both
// authoring styles behind one call-site abstraction:
//
//   - inline: the implementation's source fragment is wrapped into a
//     generated MDL function named after the node definition. Nodes with
//     more than one output get a synthesized "<name>_return_type" struct
//     carrying the outputs across the function boundary.
//   - external: the implementation references a pre-authored function in an
//     MDL module; no definition is emitted, only qualified calls.
//
// All durable state (qualified module name, call template, output
// defaults) is built once during Initialize and read-only afterwards.
type CustomCodeNode struct {
	SourceCodeNode

	useExternalSource bool
	inlineSource      string
	// qualifiedModuleName is the resolved external module, always
	// "::"-prefixed and without the ".mdl" suffix.
	qualifiedModuleName string
	// outputDefaults holds the declared default of each output in
	// declaration order, cty.NilVal where absent.
	outputDefaults []cty.Value
	// id deduplicates definition emission, derived from the function name.
	id uint64
}

// NewCustomCodeNode is the creation entry point for custom code node
// implementations.
func NewCustomCodeNode() NodeImpl { return &CustomCodeNode{} }

// Initialize validates the implementation element and builds the durable
// generation state. Errors are [ConfigurationError]s and fatal for the
// implementation; no partial state survives a failed initialization.
func (cn *CustomCodeNode) Initialize(impl *mdlgen.Implementation, ctx *Context) error {
	def := impl.NodeDef()
	if def == nil {
		return configErrorf(impl.Name, "implementation is not attached to a node definition")
	}
	if len(def.Outputs) == 0 {
		return configErrorf(impl.Name, "node definition %q declares no outputs", def.Name)
	}
	*cn = CustomCodeNode{}
	var err error
	if impl.IsInline() {
		err = cn.initializeInline(impl, def)
	} else {
		cn.useExternalSource = true
		err = cn.initializeExternal(impl, ctx)
	}
	if err != nil {
		*cn = CustomCodeNode{}
		return err
	}
	cn.buildCallTemplate(impl, def)
	cn.collectOutputDefaults(def)
	return nil
}

func (cn *CustomCodeNode) initializeInline(impl *mdlgen.Implementation, def *mdlgen.NodeDef) error {
	if impl.SourceCode == "" {
		return configErrorf(impl.Name, "no source code was specified for the implementation")
	}
	cn.inlineSource = impl.SourceCode
	cn.functionName = def.Name
	cn.id = FunctionID(cn.functionName)
	return nil
}

func (cn *CustomCodeNode) initializeExternal(impl *mdlgen.Implementation, ctx *Context) error {
	if impl.File == "" {
		return configErrorf(impl.Name, "no source file was specified for the implementation")
	}
	if impl.Function == "" {
		return configErrorf(impl.Name, "no function name was specified for the implementation")
	}
	qualified, err := resolveModuleName(impl.Name, impl.File, ctx.Version())
	if err != nil {
		return err
	}
	cn.qualifiedModuleName = qualified
	cn.functionName = impl.Function
	return nil
}

// resolveModuleName maps a path-like module reference to a fully qualified
// MDL module name: path separators become namespace separators, the
// leading namespace prefix is enforced, the required ".mdl" suffix is
// stripped and the version-suffix marker is substituted with the targeted
// version's filename suffix.
func resolveModuleName(implName, file string, version Version) (string, error) {
	if !strings.HasSuffix(file, syntax.ModuleSuffix) {
		return "", configErrorf(implName, "referenced source file is not an MDL module: '%s'", file)
	}
	name := strings.ReplaceAll(file, "/", syntax.NamespaceSeparator)
	if !strings.HasPrefix(name, syntax.NamespacePrefix) {
		name = syntax.NamespacePrefix + name
	}
	name = strings.TrimSuffix(name, syntax.ModuleSuffix)
	return syntax.ReplaceSourceCodeMarkers(implName, name, func(marker string) (string, error) {
		if marker == syntax.VersionSuffixMarker {
			return version.FilenameSuffix(), nil
		}
		return marker, nil
	})
}

// buildCallTemplate constructs the parameterized invocation string
// "<callee>(<p1>: {{i1}}, <p2>: {{i2}}, ...)" shared by both authoring
// styles. Parameter names are escaped against reserved words; the marker
// names are the raw input names and key into instance wiring.
func (cn *CustomCodeNode) buildCallTemplate(impl *mdlgen.Implementation, def *mdlgen.NodeDef) {
	var sb strings.Builder
	if cn.useExternalSource {
		sb.WriteString(strings.TrimPrefix(cn.qualifiedModuleName, syntax.NamespacePrefix))
		sb.WriteString(syntax.NamespaceSeparator)
		sb.WriteString(cn.functionName)
	} else {
		sb.WriteString(cn.functionName)
	}
	sb.WriteByte('(')
	for i := range def.Inputs {
		if i > 0 {
			sb.WriteString(", ")
		}
		in := &def.Inputs[i]
		sb.WriteString(syntax.Escape(in.Name))
		sb.WriteString(": {{")
		sb.WriteString(in.Name)
		sb.WriteString("}}")
	}
	sb.WriteByte(')')
	cn.functionSource = sb.String()
}

// collectOutputDefaults captures each output's declared default at
// initialization time, order preserved. Absent defaults stay cty.NilVal
// and resolve to the type's zero value at definition-emission time.
func (cn *CustomCodeNode) collectOutputDefaults(def *mdlgen.NodeDef) {
	cn.outputDefaults = make([]cty.Value, len(def.Outputs))
	for i := range def.Outputs {
		cn.outputDefaults[i] = def.Outputs[i].Default
	}
}

type outputField struct {
	name         string
	typeName     string
	defaultValue string
}

// EmitFunctionDefinition writes the MDL function implementing an inline
// node. External implementations emit nothing; their defining module is
// assumed to exist already. The definition is written at most once per
// stage regardless of call-site count.
func (cn *CustomCodeNode) EmitFunctionDefinition(node *mdlgen.Node, ctx *Context, stage *Stage) error {
	if cn.useExternalSource {
		return nil
	}
	if stage.FunctionEmitted(cn.id) {
		return nil
	}
	stage.MarkFunctionEmitted(cn.id)

	fields, err := cn.outputFields(node)
	if err != nil {
		return err
	}
	stage.WriteLine("// generated code for implementation: '" + node.Impl.Name + "'")

	returnTypeName := fields[len(fields)-1].typeName
	if len(fields) > 1 {
		// The node's abstract type system has no aggregate values; a
		// struct is synthesized to carry the outputs across the function
		// boundary.
		returnTypeName = cn.functionName + "_return_type"
		stage.WriteLine("struct " + returnTypeName)
		stage.BeginScope("{")
		for _, f := range fields {
			stage.WriteLine(f.typeName + " " + f.name + " = " + f.defaultValue + ";")
		}
		stage.EndScope("};")
	}

	stage.WriteLine(returnTypeName + " " + cn.functionName + "(")
	stage.indent++
	def := node.Def
	for i := range def.Inputs {
		in := &def.Inputs[i]
		qualifier := ""
		if in.Uniform || in.Type == mdlgen.TypeFilename {
			qualifier = syntax.UniformQualifier + " "
		}
		tn, err := syntax.TypeName(in.Type)
		if err != nil {
			return err
		}
		delim := ","
		if i == len(def.Inputs)-1 {
			delim = ""
		}
		stage.WriteLine(qualifier + tn + " " + syntax.Escape(in.Name) + delim)
	}
	stage.indent--
	stage.WriteLine(")")

	stage.BeginScope("{")
	for _, f := range fields {
		stage.WriteLine(f.typeName + " " + f.name + " = " + f.defaultValue + ";")
	}
	stage.WriteBlock(cn.inlineSource)
	if len(fields) == 1 {
		stage.WriteLine("return " + fields[0].name + ";")
	} else {
		var sb strings.Builder
		sb.WriteString("return ")
		sb.WriteString(returnTypeName)
		sb.WriteByte('(')
		for i, f := range fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.name)
		}
		sb.WriteString(");")
		stage.WriteLine(sb.String())
	}
	stage.EndScope("}")
	stage.WriteLine("")
	return nil
}

// outputFields resolves each output's MDL type name and initializer text.
// Outputs with no declared default still get a well defined initializer,
// the type's canonical zero value.
func (cn *CustomCodeNode) outputFields(node *mdlgen.Node) ([]outputField, error) {
	outs := node.Outputs()
	fields := make([]outputField, 0, len(outs))
	for i, out := range outs {
		tn, err := syntax.TypeName(out.Def.Type)
		if err != nil {
			return nil, err
		}
		var text string
		if cn.outputDefaults[i] != cty.NilVal {
			text, err = syntax.Value(out.Def.Type, cn.outputDefaults[i])
		} else {
			text, err = syntax.ZeroValue(out.Def.Type)
		}
		if err != nil {
			return nil, err
		}
		fields = append(fields, outputField{
			name:         syntax.Escape(out.Def.Name),
			typeName:     tn,
			defaultValue: text,
		})
	}
	return fields, nil
}

// EmitFunctionCall emits the calls of upstream closure-producing
// dependencies followed by this node's own call expression. Applies in the
// pixel stage only, once per node per stage.
func (cn *CustomCodeNode) EmitFunctionCall(node *mdlgen.Node, ctx *Context, stage *Stage) error {
	if stage.Name() != StagePixel {
		return nil
	}
	if stage.CallEmitted(node.Name) {
		return nil
	}
	stage.MarkCallEmitted(node.Name)
	if err := ctx.Generator().EmitDependentFunctionCalls(node, ctx, stage, mdlgen.ClassClosure); err != nil {
		return err
	}
	return cn.emitTemplateCall(node, ctx, stage)
}
