package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soren-lang/soren/ast"
	"github.com/soren-lang/soren/config"
	"github.com/soren-lang/soren/lexer"
	"github.com/soren-lang/soren/parser"
	"github.com/soren-lang/soren/token"
	"github.com/soren-lang/soren/types"
)

// prelude is the shared declaration header for middle-end tests: one
// resource-owning type and the routines the test bodies call.
const prelude = `type File has copy, sink, destroy
fn open(): File
fn use(f: File)
fn consume(sink f: File)
fn scan(mut f: File)
fn size(f: File): Int
fn ready(): Bool
`

func parseSource(t *testing.T, src string) *ast.Program {
	t.Helper()
	l := lexer.New(src)
	p := parser.New(l)
	program := p.Parse()
	require.Empty(t, p.Errors(), "parse errors")
	return program
}

func checkSource(t *testing.T, src string) *Checker {
	t.Helper()
	program := parseSource(t, src)
	ck := NewChecker()
	require.Empty(t, ck.Check(program), "check errors")
	return ck
}

func checkErrors(t *testing.T, src string) []string {
	t.Helper()
	program := parseSource(t, src)
	ck := NewChecker()
	errs := ck.Check(program)
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Msg
	}
	return msgs
}

func procNamed(t *testing.T, ck *Checker, name string) *ProcInfo {
	t.Helper()
	for _, info := range ck.Procs {
		if info.Decl.Name.Value == name {
			return info
		}
	}
	t.Fatalf("no proc %q", name)
	return nil
}

// lowerProc checks src and runs destructor injection over the named proc.
func lowerProc(t *testing.T, src, name string, opts *config.Options) (*ast.BlockStatement, []*token.CompileError) {
	t.Helper()
	info := procNamed(t, checkSource(t, src), name)
	cfg := BuildCFG(info, info.Decl.Body)
	return InjectDestructors(info, info.Decl.Body, cfg, opts)
}

func TestCheckDeclarations(t *testing.T) {
	ck := checkSource(t, prelude)

	file, ok := ck.Types["File"].(*types.Named)
	require.True(t, ok)
	require.NotNil(t, file.Ops)
	assert.Equal(t, "File.copy", file.Ops.Copy.Name)
	assert.Equal(t, "File.sink", file.Ops.Sink.Name)
	assert.Equal(t, "File.destroy", file.Ops.Destroy.Name)
	assert.True(t, types.OwnsResource(file))

	sig := ck.Funcs["consume"]
	require.NotNil(t, sig)
	require.Len(t, sig.Params, 1)
	assert.Equal(t, types.BySink, sig.Params[0].Mode)
	_, ok = sig.Params[0].Type.(*types.SinkOf)
	assert.True(t, ok)

	sig = ck.Funcs["scan"]
	require.NotNil(t, sig)
	assert.Equal(t, types.ByMut, sig.Params[0].Mode)
	_, ok = sig.Params[0].Type.(*types.Ref)
	assert.True(t, ok)

	sig = ck.Funcs["size"]
	require.NotNil(t, sig)
	assert.Equal(t, types.I64, sig.Result)
}

func TestCheckProcInfo(t *testing.T) {
	src := prelude + `proc relay(sink f: File, n: Int): File {
    return open()
}
`
	info := procNamed(t, checkSource(t, src), "relay")

	require.Len(t, info.Params, 2)
	assert.Equal(t, SinkParam, info.Params[0].Kind)
	assert.True(t, types.OwnsResource(info.Params[0].Type))
	assert.Equal(t, Param, info.Params[1].Kind)
	assert.False(t, info.Params[1].Movable())

	require.NotNil(t, info.Result)
	assert.Equal(t, "result", info.Result.Name)
	assert.Equal(t, Result, info.Result.Kind)
	assert.True(t, info.Result.Movable())

	f, ok := info.Lookup("f")
	require.True(t, ok)
	assert.Same(t, info.Params[0], f)
}

func TestCheckTypeOf(t *testing.T) {
	src := prelude + `proc main() {
    var x: File = open()
    var n = size(x)
    var b = n < 3
}
`
	info := procNamed(t, checkSource(t, src), "main")

	x, ok := info.Lookup("x")
	require.True(t, ok)
	assert.True(t, types.OwnsResource(x.Type))

	n, ok := info.Lookup("n")
	require.True(t, ok)
	assert.Equal(t, types.I64, n.Type)

	b, ok := info.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, types.Bool, b.Type)
}

func TestCheckErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{
			"undefinedVariable",
			prelude + "proc main() {\nuse(x)\n}\n",
			`variable "x" has not been defined`,
		},
		{
			"redeclaredVariable",
			prelude + "proc main() {\nvar x = 1\nvar x = 2\n}\n",
			`variable "x" redeclared`,
		},
		{
			"redeclaredType",
			prelude + "type File has destroy\n",
			`type "File" redeclared`,
		},
		{
			"unknownType",
			"fn f(a: Missing)\n",
			`type "Missing" has not been defined`,
		},
		{
			"undefinedRoutine",
			prelude + "proc main() {\nlaunch()\n}\n",
			`routine "launch" has not been defined`,
		},
		{
			"argCount",
			prelude + "proc main() {\nuse()\n}\n",
			`routine "use" takes 1 arguments, got 0`,
		},
		{
			"assignUndefined",
			prelude + "proc main() {\nx = 1\n}\n",
			`variable "x" has not been defined`,
		},
		{
			"returnFromVoid",
			prelude + "proc main() {\nreturn 1\n}\n",
			`proc "main" returns nothing`,
		},
		{
			"moveNonVariable",
			prelude + "proc main() {\nconsume(move open())\n}\n",
			`cannot move "open()": not a variable`,
		},
		{
			"topLevelStatement",
			prelude + "open()\n",
			"only type, fn and proc declarations are allowed at top level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := checkErrors(t, tt.src)
			require.NotEmpty(t, msgs)
			assert.Contains(t, msgs, tt.msg)
		})
	}
}

func TestCheckNoShadowing(t *testing.T) {
	src := prelude + `proc main(b: Bool) {
    var x = 1
    if b {
        var x = 2
    }
}
`
	msgs := checkErrors(t, src)
	assert.Contains(t, msgs, `variable "x" redeclared`)
}
