// Package schematron compiles ISO schematron rules into XSLT validators with
// xsltproc and interprets the resulting SVRL reports.
package schematron

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/gobeaver/filescraper/rulecache"
)

// DefaultXSLTDir is where the ISO schematron XSLT 1.0 skeleton is installed.
const DefaultXSLTDir = "/usr/share/iso_schematron_xslt1"

// Invocation is the captured outcome of one xsltproc run.
type Invocation struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// RunFunc invokes a process. It returns an error only when the process could
// not be run to completion.
type RunFunc func(ctx context.Context, argv ...string) (*Invocation, error)

type phase struct {
	stylesheet   string
	outputFilter bool
}

// phases of the ISO schematron XSLT 1.0 pipeline, in order.
var phases = []phase{
	{stylesheet: "iso_dsdl_include.xsl"},
	{stylesheet: "iso_abstract_expand.xsl"},
	{stylesheet: "optimize_schematron.xsl"},
	{stylesheet: "iso_svrl_for_xslt1.xsl", outputFilter: true},
}

// validateExitCodes are the xsltproc exit codes of a completed validation.
// 6 means the document failed to transform, which the report describes.
var validateExitCodes = []int{0, 6}

// CompileError reports a pipeline step that exited unsuccessfully.
type CompileError struct {
	Stylesheet string
	ExitCode   int
	Stdout     string
	Stderr     string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("Error %d\nstdout:\n%s\nstderr:\n%s", e.ExitCode, e.Stdout, e.Stderr)
}

// Options control one compilation or validation.
type Options struct {
	// Verbose keeps every report entry and disables the output filter.
	Verbose bool
	// UseCache allows reusing a previously compiled validator. Fresh
	// compilations are stored either way.
	UseCache bool
	// ExtraHash is an extra cache discriminator.
	ExtraHash string
}

// Compiler turns schematron rule files into validator stylesheets.
type Compiler struct {
	Xsltproc string
	XSLTDir  string
	Cache    rulecache.Store
}

// NewCompiler creates a compiler using the given xsltproc binary, skeleton
// directory and cache.
func NewCompiler(xsltproc, xsltDir string, cache rulecache.Store) *Compiler {
	if xsltproc == "" {
		xsltproc = "xsltproc"
	}
	if xsltDir == "" {
		xsltDir = DefaultXSLTDir
	}
	return &Compiler{Xsltproc: xsltproc, XSLTDir: xsltDir, Cache: cache}
}

func (c *Compiler) argv(stylesheet, input string, filter bool, verbose bool) []string {
	argv := []string{c.Xsltproc}
	if filter && !verbose {
		argv = append(argv, "--stringparam", "outputfilter", "only_messages")
	}
	return append(argv, stylesheet, input)
}

// Compile returns the path of the validator stylesheet for the rule file,
// compiling it when needed.
func (c *Compiler) Compile(ctx context.Context, run RunFunc, rules string, opts Options) (string, error) {
	key, err := rulecache.NewKey(rules, rulecache.Discriminator(opts.Verbose, opts.ExtraHash))
	if err != nil {
		return "", err
	}
	if opts.UseCache {
		if path, ok := c.Cache.Lookup(key); ok {
			return path, nil
		}
	}

	var compiled string
	err = c.Cache.WithWorkDir(func(dir string) error {
		input := rules
		for i, p := range phases {
			argv := c.argv(filepath.Join(c.XSLTDir, p.stylesheet), input, p.outputFilter, opts.Verbose)
			inv, err := run(ctx, argv...)
			if err != nil {
				return err
			}
			if inv.ExitCode != 0 {
				return &CompileError{
					Stylesheet: p.stylesheet,
					ExitCode:   inv.ExitCode,
					Stdout:     string(inv.Stdout),
					Stderr:     string(inv.Stderr),
				}
			}

			name := fmt.Sprintf("step%d.xsl", i+1)
			if i == len(phases)-1 {
				name = "validator.xsl"
			}
			output := filepath.Join(dir, name)
			if err := os.WriteFile(output, inv.Stdout, 0o644); err != nil {
				return errors.Wrapf(err, "write %s", name)
			}
			input = output
		}

		path, err := c.Cache.Put(key, input)
		if err != nil {
			return err
		}
		compiled = path
		return nil
	})
	if err != nil {
		return "", errors.Wrapf(err, "compile schematron %s", rules)
	}
	return compiled, nil
}

// ValidateArgv is the command validating file against a compiled validator.
func (c *Compiler) ValidateArgv(validator, file string) []string {
	return c.argv(validator, file, false, true)
}

// Report is the interpretation of a validation run.
type Report struct {
	// Message is the SVRL report, de-duplicated unless verbose.
	Message string
	// Error is the validator's stderr.
	Error string
	// WellFormed is true when the report is non-empty, contains no failed
	// assertion, stderr is empty and the validator exited 0.
	WellFormed bool
}

// Evaluate interprets a validation run. Exit codes other than 0 and 6 mean
// the validator itself failed and are returned as a CompileError.
func Evaluate(inv *Invocation, verbose bool) (*Report, error) {
	allowed := false
	for _, code := range validateExitCodes {
		if inv.ExitCode == code {
			allowed = true
		}
	}
	if !allowed {
		return nil, &CompileError{
			ExitCode: inv.ExitCode,
			Stdout:   string(inv.Stdout),
			Stderr:   string(inv.Stderr),
		}
	}

	report := inv.Stdout
	if !verbose && inv.ExitCode == 0 && len(bytes.TrimSpace(report)) > 0 {
		if filtered, err := FilterDuplicates(report); err == nil {
			report = filtered
		}
	}

	r := &Report{
		Message: string(report),
		Error:   string(bytes.TrimSpace(inv.Stderr)),
	}
	r.WellFormed = r.Error == "" &&
		len(bytes.TrimSpace(report)) > 0 &&
		!bytes.Contains(report, []byte(FailedAssertMarker)) &&
		inv.ExitCode == 0
	return r, nil
}
