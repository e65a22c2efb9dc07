package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soren-lang/soren/ast"
	"github.com/soren-lang/soren/config"
	"github.com/soren-lang/soren/lexer"
	"github.com/soren-lang/soren/parser"
)

const testSource = `type File has copy, sink, destroy
fn open(): File
fn use(f: File)
proc main() {
    var x: File = open()
    use(x)
}
`

func parseTestSource(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := parser.New(lexer.New(src))
	program := p.Parse()
	require.Empty(t, p.Errors())
	return program
}

func TestSourceHash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.sn")
	require.NoError(t, os.WriteFile(path, []byte("var x = 1\n"), 0644))

	h1, err := sourceHash(path)
	require.NoError(t, err)
	h2, err := sourceHash(path)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	require.NoError(t, os.WriteFile(path, []byte("var x = 2\n"), 0644))
	h3, err := sourceHash(path)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestWriteLowered(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "main.sn")
	require.NoError(t, os.WriteFile(srcPath, []byte(testSource), 0644))

	opts := &config.Options{CacheDir: filepath.Join(dir, "cache")}
	program := parseTestSource(t, testSource)

	require.NoError(t, writeLowered(srcPath, program, opts))

	outPath := filepath.Join(opts.CacheDir, LOWERED_DIR, "main"+OUT_SUFFIX)
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, program.String(), string(data))

	hashPath := filepath.Join(opts.CacheDir, LOWERED_DIR, "main"+HASH_SUFFIX)
	_, err = os.Stat(hashPath)
	require.NoError(t, err)

	// Unchanged source: the cached output survives a rewrite attempt.
	info1, err := os.Stat(outPath)
	require.NoError(t, err)
	require.NoError(t, writeLowered(srcPath, program, opts))
	info2, err := os.Stat(outPath)
	require.NoError(t, err)
	assert.Equal(t, info1.ModTime(), info2.ModTime())
}

func TestWriteLoweredInvalidation(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "main.sn")
	require.NoError(t, os.WriteFile(srcPath, []byte(testSource), 0644))

	opts := &config.Options{CacheDir: filepath.Join(dir, "cache")}
	program := parseTestSource(t, testSource)
	require.NoError(t, writeLowered(srcPath, program, opts))

	// A changed source invalidates the stored hash and the output is
	// rewritten.
	changed := testSource + "\n# touched\n"
	require.NoError(t, os.WriteFile(srcPath, []byte(changed), 0644))
	empty := &ast.Program{}
	require.NoError(t, writeLowered(srcPath, empty, opts))

	outPath := filepath.Join(opts.CacheDir, LOWERED_DIR, "main"+OUT_SUFFIX)
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, empty.String(), string(data))
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "main.sn")
	require.NoError(t, os.WriteFile(srcPath, []byte(testSource), 0644))

	opts := config.Default()
	opts.CacheDir = filepath.Join(dir, "cache")
	require.NoError(t, compileFile(srcPath, opts))

	outPath := filepath.Join(opts.CacheDir, LOWERED_DIR, "main"+OUT_SUFFIX)
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "File.sink(x, open())")
	assert.Contains(t, out, "} ensure {")
	assert.Contains(t, out, "File.destroy(x)")
}

func TestCompileFileReportsErrors(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "bad.sn")
	require.NoError(t, os.WriteFile(srcPath, []byte("proc main() {\nuse(x)\n}\n"), 0644))

	opts := config.Default()
	opts.CacheDir = filepath.Join(dir, "cache")
	err := compileFile(srcPath, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check error")
}
