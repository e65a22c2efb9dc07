package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildCFG(t *testing.T, src, name string) *CFG {
	t.Helper()
	info := procNamed(t, checkSource(t, src), name)
	return BuildCFG(info, info.Decl.Body)
}

func eventStrings(cfg *CFG) []string {
	out := make([]string, len(cfg.Events))
	for i, ev := range cfg.Events {
		out[i] = ev.String()
	}
	return out
}

func TestCFGStraightLine(t *testing.T) {
	src := prelude + `proc main() {
    var x: File = open()
    use(x)
}
`
	cfg := buildCFG(t, src, "main")
	assert.Equal(t, []string{"def x", "use x"}, eventStrings(cfg))
	assert.Empty(t, cfg.JumpTargets())
}

func TestCFGParamsDefinedAtEntry(t *testing.T) {
	src := prelude + `proc main(f: File, n: Int) {
    use(f)
}
`
	cfg := buildCFG(t, src, "main")
	assert.Equal(t, []string{"def f", "def n", "use f"}, eventStrings(cfg))
}

func TestCFGInitializerReadsBeforeWrite(t *testing.T) {
	src := prelude + `proc main(f: File) {
    var n = size(f)
}
`
	cfg := buildCFG(t, src, "main")
	assert.Equal(t, []string{"def f", "use f", "def n"}, eventStrings(cfg))
}

func TestCFGIf(t *testing.T) {
	src := prelude + `proc main(b: Bool) {
    var x: File = open()
    if b {
        use(x)
    }
}
`
	cfg := buildCFG(t, src, "main")
	assert.Equal(t, []string{"def b", "def x", "use b", "fork 5", "use x"}, eventStrings(cfg))
	assert.Equal(t, map[int]bool{5: true}, cfg.JumpTargets())
}

func TestCFGIfElse(t *testing.T) {
	src := prelude + `proc main(b: Bool) {
    var x: File = open()
    if b {
        use(x)
    } else {
        use(x)
    }
}
`
	cfg := buildCFG(t, src, "main")
	assert.Equal(t, []string{"def b", "def x", "use b", "fork 6", "use x", "goto 7", "use x"}, eventStrings(cfg))
}

func TestCFGWhileBackEdge(t *testing.T) {
	src := prelude + `proc main() {
    var x: File = open()
    while ready() {
        use(x)
    }
}
`
	cfg := buildCFG(t, src, "main")
	assert.Equal(t, []string{"def x", "fork 4", "use x", "goto 1"}, eventStrings(cfg))

	// The loop head is re-entered by the back edge.
	targets := cfg.JumpTargets()
	assert.True(t, targets[1])
	assert.True(t, targets[4])
}

func TestCFGReturnJumpsToExit(t *testing.T) {
	src := prelude + `proc main(b: Bool): Int {
    if b {
        return 1
    }
    return 2
}
`
	cfg := buildCFG(t, src, "main")
	assert.Equal(t, []string{"def b", "use b", "fork 4", "goto 5", "goto 5"}, eventStrings(cfg))
}

func TestCFGMutArgumentIsCapture(t *testing.T) {
	src := prelude + `proc main(mut f: File) {
    scan(f)
}
`
	cfg := buildCFG(t, src, "main")
	require.Len(t, cfg.Events, 2)
	assert.Equal(t, []string{"def f", "usecall f"}, eventStrings(cfg))
}

func TestCFGAssignment(t *testing.T) {
	src := prelude + `proc main() {
    var x: File = open()
    var y: File = open()
    y = x
}
`
	cfg := buildCFG(t, src, "main")
	assert.Equal(t, []string{"def x", "def y", "use x", "def y"}, eventStrings(cfg))
}
