//go:build stave

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
)

// Default target when running `stave` with no arguments.
var Default = Build

// Aliases for common targets.
var Aliases = map[string]interface{}{
	"b": Build,
	"t": Test,
	"v": Vet,
	"l": Lint,
	"i": Install,
	"c": Clean,
}

const (
	binDir     = "bin"
	binaryName = "reap"
	mainPkg    = "./cmd/reap"
	versionPkg = "github.com/jamesainslie/reap/cmd/reap"
)

// targetOSes are vetted separately because tuner and fileid carry
// per-platform files.
var targetOSes = []string{"linux", "darwin", "windows"}

// All lints, vets and tests, then builds.
func All() error {
	st.Deps(Lint, Vet, Test)
	st.Deps(Build)
	return nil
}

// Build compiles bin/reap with version information.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating bin directory: %w", err)
	}
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", binaryPath(binDir), mainPkg)
}

// Install copies the built binary into GOBIN, GOPATH/bin or /usr/local/bin.
func Install() error {
	st.Deps(Build)

	dir, err := installDir()
	if err != nil {
		return err
	}
	src, dst := binaryPath(binDir), binaryPath(dir)
	if st.Verbose() {
		fmt.Printf("Installing %s to %s\n", src, dst)
	}
	return sh.Copy(dst, src)
}

// Uninstall removes the installed binary, if present.
func Uninstall() error {
	dir, err := installDir()
	if err != nil {
		return err
	}

	target := binaryPath(dir)
	if _, err := os.Stat(target); os.IsNotExist(err) {
		if st.Verbose() {
			fmt.Printf("%s not installed\n", target)
		}
		return nil
	}
	return os.Remove(target)
}

// Test runs every test with the race detector and coverage.
func Test() error {
	return sh.RunV("go", "test", "-race", "-cover", "./...")
}

// TestShort skips the timing dependent watcher and monitor tests.
func TestShort() error {
	return sh.RunV("go", "test", "-short", "./...")
}

// Vet runs go vet once per supported OS.
func Vet() error {
	for _, goos := range targetOSes {
		if err := sh.RunV("env", "GOOS="+goos, "go", "vet", "./..."); err != nil {
			return fmt.Errorf("vet %s: %w", goos, err)
		}
	}
	return nil
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Fmt runs gofmt and goimports over the tree.
func Fmt() error {
	if err := sh.Run("gofmt", "-w", "."); err != nil {
		return fmt.Errorf("running gofmt: %w", err)
	}
	return sh.Run("goimports", "-w", ".")
}

// Tidy runs go mod tidy.
func Tidy() error {
	return sh.RunV("go", "mod", "tidy")
}

// Clean removes build artifacts.
func Clean() error {
	return sh.Rm(binDir + "/")
}

func binaryPath(dir string) string {
	p := filepath.Join(dir, binaryName)
	if runtime.GOOS == "windows" {
		p += ".exe"
	}
	return p
}

func installDir() (string, error) {
	gocmd := st.GoCmd()
	if bin, err := sh.Output(gocmd, "env", "GOBIN"); err != nil {
		return "", fmt.Errorf("determining GOBIN: %w", err)
	} else if bin != "" {
		return bin, nil
	}

	gopath, err := sh.Output(gocmd, "env", "GOPATH")
	if err != nil {
		return "", fmt.Errorf("determining GOPATH: %w", err)
	}
	if gopath == "" {
		return "/usr/local/bin", nil
	}
	return filepath.Join(gopath, "bin"), nil
}

// ldflags injects version, commit and build date into cmd/reap.
func ldflags() string {
	vars := map[string]string{
		"version": "dev",
		"commit":  "none",
		"date":    time.Now().UTC().Format(time.RFC3339),
	}
	if v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty"); err == nil && v != "" {
		vars["version"] = strings.TrimSpace(v)
	}
	if c, err := sh.Output("git", "rev-parse", "--short", "HEAD"); err == nil && c != "" {
		vars["commit"] = strings.TrimSpace(c)
	}

	flags := make([]string, 0, len(vars))
	for _, name := range []string{"version", "commit", "date"} {
		flags = append(flags, fmt.Sprintf("-X %s.%s=%s", versionPkg, name, vars[name]))
	}
	return strings.Join(flags, " ")
}
