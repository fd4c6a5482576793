package gen_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/mdlgen"
	"github.com/gogpu/mdlgen/gen"
)

func newTestDoc(t *testing.T, defs []*mdlgen.NodeDef, impls []*mdlgen.Implementation) *mdlgen.Document {
	t.Helper()
	doc := &mdlgen.Document{}
	for _, nd := range defs {
		if err := doc.AddNodeDef(nd); err != nil {
			t.Fatal(err)
		}
	}
	for _, im := range impls {
		if err := doc.AddImplementation(im); err != nil {
			t.Fatal(err)
		}
	}
	return doc
}

func newTestNode(t *testing.T, doc *mdlgen.Document, nodeName, implName string) (*mdlgen.Node, gen.NodeImpl, *gen.Context) {
	t.Helper()
	g := gen.NewGenerator()
	ctx := gen.NewContext(g)
	impl := doc.Implementation(implName)
	if impl == nil {
		t.Fatalf("no implementation %q in document", implName)
	}
	ni, err := g.NodeImpl(impl, ctx)
	if err != nil {
		t.Fatal(err)
	}
	node, err := mdlgen.NewNode(nodeName, impl)
	if err != nil {
		t.Fatal(err)
	}
	return node, ni, ctx
}

func scaleDoc(t *testing.T) *mdlgen.Document {
	return newTestDoc(t,
		[]*mdlgen.NodeDef{{
			Name:    "foo",
			Inputs:  []mdlgen.InputDef{{Name: "x", Type: mdlgen.TypeFloat}},
			Outputs: []mdlgen.OutputDef{{Name: "out", Type: mdlgen.TypeFloat}},
		}},
		[]*mdlgen.Implementation{{
			Name:        "IM_foo",
			NodeDefName: "foo",
			SourceCode:  "out = x * 2;",
		}},
	)
}

func TestInlineFunctionDefinition(t *testing.T) {
	doc := scaleDoc(t)
	node, ni, ctx := newTestNode(t, doc, "n1", "IM_foo")
	stage := gen.NewStage(gen.StagePixel)
	if err := ni.EmitFunctionDefinition(node, ctx, stage); err != nil {
		t.Fatal(err)
	}
	want := `// generated code for implementation: 'IM_foo'
float foo(
    float x
)
{
    float out = 0.0;
    out = x * 2;
    return out;
}

`
	if got := stage.String(); got != want {
		t.Errorf("definition mismatch.\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestInlineFunctionCall(t *testing.T) {
	doc := scaleDoc(t)
	node, ni, ctx := newTestNode(t, doc, "n1", "IM_foo")
	if err := node.SetValue("x", mdlgen.Float(0.25)); err != nil {
		t.Fatal(err)
	}
	stage := gen.NewStage(gen.StagePixel)
	if err := ni.EmitFunctionCall(node, ctx, stage); err != nil {
		t.Fatal(err)
	}
	want := "float n1_out = foo(x: 0.25);\n"
	if got := stage.String(); got != want {
		t.Errorf("call mismatch.\ngot:  %q\nwant: %q", got, want)
	}
}

func TestDefinitionEmittedOnce(t *testing.T) {
	doc := scaleDoc(t)
	node, ni, ctx := newTestNode(t, doc, "n1", "IM_foo")
	stage := gen.NewStage(gen.StagePixel)
	for i := 0; i < 3; i++ {
		if err := ni.EmitFunctionDefinition(node, ctx, stage); err != nil {
			t.Fatal(err)
		}
	}
	if n := strings.Count(stage.String(), "float foo("); n != 1 {
		t.Errorf("want one definition, got %d:\n%s", n, stage.String())
	}
}

func TestExternalImplementation(t *testing.T) {
	doc := newTestDoc(t,
		[]*mdlgen.NodeDef{{
			Name:    "ND_diffuse",
			Node:    "diffuse",
			Inputs:  []mdlgen.InputDef{{Name: "roughness", Type: mdlgen.TypeFloat, Default: mdlgen.Float(0.5)}},
			Outputs: []mdlgen.OutputDef{{Name: "out", Type: mdlgen.TypeBSDF}},
		}},
		[]*mdlgen.Implementation{{
			Name:        "IM_diffuse",
			NodeDefName: "ND_diffuse",
			File:        "bsdf/diffuse.mdl",
			Function:    "diffuse_bsdf",
		}},
	)
	node, ni, ctx := newTestNode(t, doc, "d1", "IM_diffuse")

	stage := gen.NewStage(gen.StagePixel)
	for i := 0; i < 2; i++ {
		if err := ni.EmitFunctionDefinition(node, ctx, stage); err != nil {
			t.Fatal(err)
		}
	}
	if stage.String() != "" {
		t.Errorf("external implementation emitted definition text:\n%s", stage.String())
	}

	if err := ni.EmitFunctionCall(node, ctx, stage); err != nil {
		t.Fatal(err)
	}
	want := "material d1_out = bsdf::diffuse::diffuse_bsdf(roughness: 0.5);\n"
	if got := stage.String(); got != want {
		t.Errorf("call mismatch.\ngot:  %q\nwant: %q", got, want)
	}
}

func TestVersionSuffixMarkerSubstitution(t *testing.T) {
	doc := newTestDoc(t,
		[]*mdlgen.NodeDef{{
			Name:    "ND_mix",
			Outputs: []mdlgen.OutputDef{{Name: "out", Type: mdlgen.TypeFloat}},
		}},
		[]*mdlgen.Implementation{{
			Name:        "IM_mix",
			NodeDefName: "ND_mix",
			File:        "materialx/stdlib_{{MDL_VERSION_SUFFIX}}.mdl",
			Function:    "mx_mix",
		}},
	)
	g := gen.NewGenerator()
	ctx := gen.NewContext(g, gen.WithVersion(gen.Version1_7))
	ni, err := g.NodeImpl(doc.Implementation("IM_mix"), ctx)
	if err != nil {
		t.Fatal(err)
	}
	node, err := mdlgen.NewNode("m1", doc.Implementation("IM_mix"))
	if err != nil {
		t.Fatal(err)
	}
	stage := gen.NewStage(gen.StagePixel)
	if err := ni.EmitFunctionCall(node, ctx, stage); err != nil {
		t.Fatal(err)
	}
	want := "float m1_out = materialx::stdlib_1_7::mx_mix();\n"
	if got := stage.String(); got != want {
		t.Errorf("call mismatch.\ngot:  %q\nwant: %q", got, want)
	}
}

func TestMultiOutputReturnStruct(t *testing.T) {
	doc := newTestDoc(t,
		[]*mdlgen.NodeDef{{
			Name:   "rg",
			Inputs: []mdlgen.InputDef{{Name: "x", Type: mdlgen.TypeFloat}},
			Outputs: []mdlgen.OutputDef{
				{Name: "r", Type: mdlgen.TypeFloat},
				{Name: "g", Type: mdlgen.TypeFloat},
			},
		}},
		[]*mdlgen.Implementation{{
			Name:        "IM_rg",
			NodeDefName: "rg",
			SourceCode:  "r = x;\ng = x * 2.0;",
		}},
	)
	node, ni, ctx := newTestNode(t, doc, "n1", "IM_rg")
	stage := gen.NewStage(gen.StagePixel)
	if err := ni.EmitFunctionDefinition(node, ctx, stage); err != nil {
		t.Fatal(err)
	}
	src := stage.String()

	wantStruct := `struct rg_return_type
{
    float r = 0.0;
    float g = 0.0;
};
`
	if !strings.Contains(src, wantStruct) {
		t.Errorf("missing return struct declaration:\n%s", src)
	}
	if !strings.Contains(src, "return rg_return_type(r, g);") {
		t.Errorf("missing return constructor call:\n%s", src)
	}
	if n := strings.Count(src, "struct rg_return_type"); n != 1 {
		t.Errorf("want one synthesized return type, got %d", n)
	}
	// Field order must match output declaration order.
	if strings.Index(src, "float r = 0.0;") > strings.Index(src, "float g = 0.0;") {
		t.Errorf("return struct fields out of declaration order:\n%s", src)
	}

	if err := ni.EmitFunctionCall(node, ctx, stage); err != nil {
		t.Fatal(err)
	}
	src = stage.String()
	wantCall := `rg_return_type n1_result = rg(x: 0.0);
float n1_r = n1_result.r;
float n1_g = n1_result.g;
`
	if !strings.Contains(src, wantCall) {
		t.Errorf("multi-output call site mismatch, want:\n%s\ngot:\n%s", wantCall, src)
	}
}

func TestEmptyInlineSourceIsConfigurationError(t *testing.T) {
	doc := newTestDoc(t,
		[]*mdlgen.NodeDef{{
			Name:    "bad",
			Outputs: []mdlgen.OutputDef{{Name: "out", Type: mdlgen.TypeFloat}},
		}},
		nil,
	)
	impl := &mdlgen.Implementation{Name: "IM_bad", NodeDefName: "bad"}
	if err := doc.AddImplementation(impl); err != nil {
		t.Fatal(err)
	}
	g := gen.NewGenerator()
	ctx := gen.NewContext(g)
	_, err := g.NodeImpl(impl, ctx)
	var cfgErr *gen.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("want ConfigurationError, got %v", err)
	}
	if cfgErr.Impl != "IM_bad" {
		t.Errorf("error does not name the offending implementation: %v", err)
	}
	// A failed initialization must not leave a cached implementation behind.
	if _, err := g.NodeImpl(impl, ctx); err == nil {
		t.Error("second lookup of broken implementation succeeded")
	}
}

func TestExternalReferenceValidation(t *testing.T) {
	cases := []struct {
		name string
		impl mdlgen.Implementation
	}{
		{"missing file suffix", mdlgen.Implementation{Name: "IM_x", NodeDefName: "nd", File: "bsdf/diffuse", Function: "f"}},
		{"missing function", mdlgen.Implementation{Name: "IM_x", NodeDefName: "nd", File: "bsdf/diffuse.mdl"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := newTestDoc(t, []*mdlgen.NodeDef{{
				Name:    "nd",
				Outputs: []mdlgen.OutputDef{{Name: "out", Type: mdlgen.TypeFloat}},
			}}, nil)
			impl := tc.impl
			if err := doc.AddImplementation(&impl); err != nil {
				t.Fatal(err)
			}
			g := gen.NewGenerator()
			_, err := g.NodeImpl(&impl, gen.NewContext(g))
			var cfgErr *gen.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("want ConfigurationError, got %v", err)
			}
		})
	}
}

func TestReservedParameterNameEscaped(t *testing.T) {
	doc := newTestDoc(t,
		[]*mdlgen.NodeDef{{
			Name:    "tint",
			Inputs:  []mdlgen.InputDef{{Name: "color", Type: mdlgen.TypeColor3}},
			Outputs: []mdlgen.OutputDef{{Name: "out", Type: mdlgen.TypeColor3}},
		}},
		[]*mdlgen.Implementation{{
			Name:        "IM_tint",
			NodeDefName: "tint",
			SourceCode:  "out = color_;",
		}},
	)
	node, ni, ctx := newTestNode(t, doc, "t1", "IM_tint")
	stage := gen.NewStage(gen.StagePixel)
	if err := ni.EmitFunctionCall(node, ctx, stage); err != nil {
		t.Fatal(err)
	}
	// Parameter name is escaped, the wiring marker keyed the raw input name.
	want := "color t1_out = tint(color_: color(0.0));\n"
	if got := stage.String(); got != want {
		t.Errorf("call mismatch.\ngot:  %q\nwant: %q", got, want)
	}
	if err := ni.EmitFunctionDefinition(node, ctx, stage); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stage.String(), "color color_") {
		t.Errorf("definition parameter not escaped:\n%s", stage.String())
	}
}

func TestCallOutsidePixelStageIsNoop(t *testing.T) {
	doc := scaleDoc(t)
	node, ni, ctx := newTestNode(t, doc, "n1", "IM_foo")
	stage := gen.NewStage("vertex")
	if err := ni.EmitFunctionCall(node, ctx, stage); err != nil {
		t.Fatal(err)
	}
	if stage.String() != "" {
		t.Errorf("call emitted outside pixel stage:\n%s", stage.String())
	}
}

func TestUniformAndFilenameQualifiers(t *testing.T) {
	doc := newTestDoc(t,
		[]*mdlgen.NodeDef{{
			Name: "sample",
			Inputs: []mdlgen.InputDef{
				{Name: "img", Type: mdlgen.TypeFilename},
				{Name: "gain", Type: mdlgen.TypeFloat, Uniform: true},
				{Name: "uv", Type: mdlgen.TypeVector2},
			},
			Outputs: []mdlgen.OutputDef{{Name: "out", Type: mdlgen.TypeColor3}},
		}},
		[]*mdlgen.Implementation{{
			Name:        "IM_sample",
			NodeDefName: "sample",
			SourceCode:  "out = ::tex::lookup_color(img, uv) * gain;",
		}},
	)
	node, ni, ctx := newTestNode(t, doc, "s1", "IM_sample")
	stage := gen.NewStage(gen.StagePixel)
	if err := ni.EmitFunctionDefinition(node, ctx, stage); err != nil {
		t.Fatal(err)
	}
	src := stage.String()
	for _, wantParam := range []string{
		"    uniform texture_2d img,\n",
		"    uniform float gain,\n",
		"    float2 uv\n",
	} {
		if !strings.Contains(src, wantParam) {
			t.Errorf("missing parameter %q in definition:\n%s", wantParam, src)
		}
	}
}

func TestClosureDependencyCallsEmittedFirst(t *testing.T) {
	doc := newTestDoc(t,
		[]*mdlgen.NodeDef{
			{
				Name:    "base",
				Outputs: []mdlgen.OutputDef{{Name: "out", Type: mdlgen.TypeBSDF}},
			},
			{
				Name:    "layered",
				Inputs:  []mdlgen.InputDef{{Name: "base", Type: mdlgen.TypeBSDF}},
				Outputs: []mdlgen.OutputDef{{Name: "out", Type: mdlgen.TypeBSDF}},
			},
		},
		[]*mdlgen.Implementation{
			{Name: "IM_base", NodeDefName: "base", SourceCode: "out = material();"},
			{Name: "IM_layered", NodeDefName: "layered", SourceCode: "out = base;"},
		},
	)
	g := gen.NewGenerator()
	ctx := gen.NewContext(g)
	baseNode, err := mdlgen.NewNode("b1", doc.Implementation("IM_base"))
	if err != nil {
		t.Fatal(err)
	}
	layered, err := mdlgen.NewNode("l1", doc.Implementation("IM_layered"))
	if err != nil {
		t.Fatal(err)
	}
	if err := layered.Connect("base", baseNode, "out"); err != nil {
		t.Fatal(err)
	}
	ni, err := g.NodeImpl(layered.Impl, ctx)
	if err != nil {
		t.Fatal(err)
	}
	stage := gen.NewStage(gen.StagePixel)
	if err := ni.EmitFunctionCall(layered, ctx, stage); err != nil {
		t.Fatal(err)
	}
	src := stage.String()
	want := `material b1_out = base();
material l1_out = layered(base: b1_out);
`
	if src != want {
		t.Errorf("dependency ordering mismatch.\ngot:\n%s\nwant:\n%s", src, want)
	}

	// Re-emitting the dependent node must not duplicate either call.
	if err := ni.EmitFunctionCall(layered, ctx, stage); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(stage.String(), "b1_out = base()"); n != 1 {
		t.Errorf("upstream call emitted %d times", n)
	}
}
