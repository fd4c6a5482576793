package gen

import "strings"

// StagePixel is the fragment-equivalent generation stage. MDL function
// calls are only emitted in this stage.
const StagePixel = "pixel"

const indentStep = "    "

// Stage accumulates generated source text for one stage of one program and
// owns the deduplication ledgers of the generation run: which function
// definitions have been written and which node calls have been emitted.
//
// A Stage is owned by a single sequential generation pass. Concurrent
// passes must each use their own Stage; ledger checks and text appends are
// not atomic.
type Stage struct {
	name   string
	code   []byte
	indent int

	functions map[uint64]struct{}
	calls     map[string]struct{}
}

// NewStage returns an empty stage buffer with the given stage name.
func NewStage(name string) *Stage {
	return &Stage{
		name:      name,
		functions: make(map[uint64]struct{}),
		calls:     make(map[string]struct{}),
	}
}

// Name returns the stage name, e.g. [StagePixel].
func (st *Stage) Name() string { return st.name }

// Bytes returns the accumulated source text.
func (st *Stage) Bytes() []byte { return st.code }

func (st *Stage) String() string { return string(st.code) }

// WriteLine appends line at the current indentation followed by a newline.
// An empty line is written without indentation.
func (st *Stage) WriteLine(line string) {
	if line != "" {
		for i := 0; i < st.indent; i++ {
			st.code = append(st.code, indentStep...)
		}
		st.code = append(st.code, line...)
	}
	st.code = append(st.code, '\n')
}

// WriteBlock appends a multi-line text fragment, indenting every line.
// A trailing newline in the fragment does not produce an extra empty line.
func (st *Stage) WriteBlock(text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		st.WriteLine(line)
	}
}

// BeginScope writes the opening delimiter and increases indentation.
func (st *Stage) BeginScope(open string) {
	st.WriteLine(open)
	st.indent++
}

// EndScope decreases indentation and writes the closing delimiter.
func (st *Stage) EndScope(close string) {
	if st.indent > 0 {
		st.indent--
	}
	st.WriteLine(close)
}

// FunctionEmitted reports whether the function with the given identity has
// already been written to this stage.
func (st *Stage) FunctionEmitted(id uint64) bool {
	_, ok := st.functions[id]
	return ok
}

// MarkFunctionEmitted records the function identity in the write ledger.
func (st *Stage) MarkFunctionEmitted(id uint64) { st.functions[id] = struct{}{} }

// CallEmitted reports whether the named node's function call has already
// been emitted to this stage.
func (st *Stage) CallEmitted(nodeName string) bool {
	_, ok := st.calls[nodeName]
	return ok
}

// MarkCallEmitted records the node in the call ledger.
func (st *Stage) MarkCallEmitted(nodeName string) { st.calls[nodeName] = struct{}{} }
