// copy_go_code copies a Go file into other package directories, renaming its package.
//
// It is used to share the CGO helpers (chelper.go) with every package that uses CGO, since C types cannot cross
// package boundaries. The original may be excluded from its own package with a "//go:build ignore" line, which
// is not copied.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	flagOriginalGoFile = flag.String("original", "",
		"Original file name (or full path) to copy. If not an absolute path, the file is searched for in the "+
			"current directory and its parent directories.")
	flagTargets = flag.String("targets", ".",
		"Comma separated list of directories (relative to the original file directory) where to write the copies. "+
			"The package name of each copy is the base name of its directory.")
	flagTargetGoFile = flag.String("target", "gen_{{original}}",
		"Target file name (not the path). "+
			"The string `{{original}}` is replaced with the base name of --original.")
	flagPrefix = flag.String("prefix", `/* DO NOT EDIT: this is a copy from {{original}} file */\n`,
		"Prefix text to include in copy. "+
			"The string `{{original}}` is replaced with the value set in --original. "+
			"The strings \\t and \\n are also replaced.")
)

var (
	rePackage     = regexp.MustCompile(`(?m)^package\s+\w+$`)
	reBuildIgnore = regexp.MustCompile(`(?m)^//go:build ignore\n\n?`)
)

// copyContents returns the contents of the original file adapted to packageName: the package clause is replaced,
// and the "//go:build ignore" constraint that keeps the original out of its own package is removed.
func copyContents(contents, packageName string) string {
	copied := reBuildIgnore.ReplaceAllString(contents, "")
	return rePackage.ReplaceAllString(copied, "package "+packageName)
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagOriginalGoFile == "" {
		fmt.Fprintln(os.Stderr, "--original is required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	originalPath := must.M1(findOriginal(*flagOriginalGoFile))
	originalName := filepath.Base(originalPath)
	contents := string(must.M1(os.ReadFile(originalPath)))
	prefix := strings.NewReplacer("{{original}}", originalName, `\t`, "\t", `\n`, "\n").Replace(*flagPrefix)
	targetName := strings.ReplaceAll(*flagTargetGoFile, "{{original}}", originalName)

	for _, target := range strings.Split(*flagTargets, ",") {
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		targetDir := filepath.Join(filepath.Dir(originalPath), target)
		packageName := filepath.Base(must.M1(filepath.Abs(targetDir)))
		copied := copyContents(contents, packageName)
		targetPath := filepath.Join(targetDir, targetName)
		must.M(os.WriteFile(targetPath, []byte(prefix+"\n"+copied), 0644))
		fmt.Printf("Generated %q from %q, with package name %q\n", targetPath, originalPath, packageName)
	}
}

// findOriginal searches for the original file in the current directory and its parents, if not given as an absolute path.
func findOriginal(name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}
	dir := must.M1(os.Getwd())
	for {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.Errorf("can't find original file %q in the current directory or any of its parents", name)
		}
		dir = parent
	}
}
