package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/soren-lang/soren/ast"
	"github.com/soren-lang/soren/config"
)

var LOWERED_DIR = "lowered"
var OUT_SUFFIX = ".lowered.sn"
var HASH_SUFFIX = ".hash"

// sourceHash fingerprints one input so unchanged files can be skipped on
// rebuild.
func sourceHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:]), nil
}

// writeLowered stores the rewritten program's printed form in the shared
// cache. A file lock ensures concurrent compiler processes see either the
// previous output or the fully written new one, never a partial file.
func writeLowered(srcPath string, program *ast.Program, opts *config.Options) error {
	outDir := filepath.Join(opts.CacheDir, LOWERED_DIR)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	// Lock the entire operation
	lock := flock.New(filepath.Join(outDir, ".lock"))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	defer lock.Unlock()

	base := strings.TrimSuffix(filepath.Base(srcPath), SN_SUFFIX)
	outPath := filepath.Join(outDir, base+OUT_SUFFIX)
	hashPath := filepath.Join(outDir, base+HASH_SUFFIX)

	hash, err := sourceHash(srcPath)
	if err != nil {
		return fmt.Errorf("hash source: %w", err)
	}

	// Unchanged source with an existing output: nothing to do.
	if stored, err := os.ReadFile(hashPath); err == nil && string(stored) == hash {
		if _, err := os.Stat(outPath); err == nil {
			fmt.Printf("Using cached output: %s\n", outPath)
			return nil
		}
	}

	if err := os.WriteFile(outPath, []byte(program.String()), 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Store the hash last; it acts as a completion marker.
	if err := os.WriteFile(hashPath, []byte(hash), 0644); err != nil {
		return fmt.Errorf("write hash file: %w", err)
	}
	return nil
}
