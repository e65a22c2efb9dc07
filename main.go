package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/soren-lang/soren/ast"
	"github.com/soren-lang/soren/compiler"
	"github.com/soren-lang/soren/config"
	"github.com/soren-lang/soren/lexer"
	"github.com/soren-lang/soren/parser"
	"github.com/soren-lang/soren/token"
)

var SN_SUFFIX = ".sn"

var CONFIG_FILE = "soren.yaml"

// defaultSNCache gets env variable SNCACHE
// if it is not set sets it to default value for windows, mac, linux
func defaultSNCache() string {
	if env := os.Getenv("SNCACHE"); env != "" {
		return env
	}

	homeDir, _ := os.UserHomeDir()
	var sncache string
	switch runtime.GOOS {
	case "windows":
		if localAppData := os.Getenv("LocalAppData"); localAppData != "" {
			sncache = filepath.Join(localAppData, "soren")
			return sncache
		}
		sncache = filepath.Join(homeDir, "AppData", "Local", "soren")

	case "darwin":
		sncache = filepath.Join(homeDir, "Library", "Caches", "soren")

	default: // Linux and others
		if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
			return filepath.Join(xdg, "soren")
		}
		sncache = filepath.Join(homeDir, ".cache", "soren")
	}

	os.Setenv("SNCACHE", sncache)
	return sncache
}

func main() {
	args := os.Args[1:]
	if len(args) == 1 && (args[0] == "--version" || args[0] == "-v") {
		printVersion()
		return
	}
	if len(args) == 0 {
		fmt.Println("usage: soren file.sn ...")
		os.Exit(1)
	}

	opts, err := config.Load(CONFIG_FILE)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if opts.CacheDir == "" {
		opts.CacheDir = defaultSNCache()
	}

	failed := false
	for _, arg := range args {
		if !strings.HasSuffix(arg, SN_SUFFIX) {
			fmt.Printf("skipping %s: not a %s file\n", arg, SN_SUFFIX)
			continue
		}
		if err := compileFile(arg, opts); err != nil {
			fmt.Printf("⚠️ %s: %v\n", arg, err)
			failed = true
			continue
		}
		fmt.Printf("✅ Lowered %s\n", arg)
	}
	if failed {
		os.Exit(1)
	}
}

func compileFile(path string, opts *config.Options) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	l := lexer.New(string(source))
	p := parser.New(l)
	program := p.Parse()
	if errs := p.Errors(); len(errs) > 0 {
		printDiags(path, errs)
		return fmt.Errorf("%d parse error(s)", len(errs))
	}

	ck := compiler.NewChecker()
	if errs := ck.Check(program); len(errs) > 0 {
		printDiags(path, errs)
		return fmt.Errorf("%d check error(s)", len(errs))
	}

	lowered, diags := lowerProgram(ck, program, opts)
	printDiags(path, diags)
	if countErrors(diags) > 0 {
		return fmt.Errorf("%d error(s)", countErrors(diags))
	}

	return writeLowered(path, lowered, opts)
}

// lowerProgram runs destructor injection over every proc body, one pass
// invocation per proc. Declarations pass through untouched.
func lowerProgram(ck *compiler.Checker, program *ast.Program, opts *config.Options) (*ast.Program, []*token.CompileError) {
	infos := make(map[*ast.ProcStatement]*compiler.ProcInfo, len(ck.Procs))
	for _, info := range ck.Procs {
		infos[info.Decl] = info
	}

	var diags []*token.CompileError
	out := &ast.Program{}
	for _, stmt := range program.Statements {
		ps, ok := stmt.(*ast.ProcStatement)
		if !ok {
			out.Statements = append(out.Statements, stmt)
			continue
		}

		info := infos[ps]
		cfg := compiler.BuildCFG(info, ps.Body)
		body, errs := compiler.InjectDestructors(info, ps.Body, cfg, opts)
		diags = append(diags, errs...)
		if body == nil {
			// Fatal resolution failure: this proc cannot be compiled.
			continue
		}
		out.Statements = append(out.Statements, &ast.ProcStatement{
			Token:  ps.Token,
			Name:   ps.Name,
			Params: ps.Params,
			Result: ps.Result,
			Body:   body,
		})
	}
	return out, diags
}

func printDiags(path string, diags []*token.CompileError) {
	for _, d := range diags {
		fmt.Printf("%s:%s\n", path, d)
	}
}

func countErrors(diags []*token.CompileError) int {
	n := 0
	for _, d := range diags {
		if d.Sev == token.Error {
			n++
		}
	}
	return n
}
