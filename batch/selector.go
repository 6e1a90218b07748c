// Package batch scrapes many files: it walks directory trees with
// composable selectors, scrapes the selected files in parallel and can
// watch a tree for new or changed files.
package batch

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/gobwas/glob"
)

// Entry describes a file or directory met during a walk.
type Entry struct {
	// Path is the full path of the entry.
	Path string
	// Rel is the path relative to the walk root, with forward slashes.
	Rel string
	// Name is the base name.
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// ============================================================================
// Selector Interface
// ============================================================================

// Selector decides which files a walk yields.
//
//	sel := batch.And(
//	    batch.Glob("**/*.{mp4,mkv}"),
//	    batch.Func(func(e *batch.Entry) bool { return e.Size > 0 }),
//	)
type Selector interface {
	// Match returns true if the file should be scraped.
	Match(e *Entry) bool

	// TraverseDescendants returns true if the directory should be entered.
	// Only called for directories.
	TraverseDescendants(e *Entry) bool
}

// ============================================================================
// Built-in Selectors
// ============================================================================

type allSelector struct{}

func (allSelector) Match(*Entry) bool               { return true }
func (allSelector) TraverseDescendants(*Entry) bool { return true }

// All selects every file.
func All() Selector {
	return allSelector{}
}

type globSelector struct {
	pattern string
	g       glob.Glob
}

// Glob selects files whose relative path, or base name for patterns
// without a slash, matches pattern. Supports *, **, ?, [a-z] and {a,b}.
//
//	Glob("*.png")             // PNG files at any depth
//	Glob("masters/**/*.dpx")  // DPX files below masters/
func Glob(pattern string) (Selector, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, err
	}
	return &globSelector{pattern: pattern, g: g}, nil
}

// MustGlob is like Glob but panics on an invalid pattern.
func MustGlob(pattern string) Selector {
	s, err := Glob(pattern)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *globSelector) Match(e *Entry) bool {
	if !strings.Contains(s.pattern, "/") {
		return s.g.Match(e.Name)
	}
	return s.g.Match(e.Rel)
}

func (s *globSelector) TraverseDescendants(*Entry) bool {
	return true
}

type depthSelector struct {
	maxDepth int
}

// Depth limits selection to maxDepth levels below the walk root. Depth 1
// selects the root's immediate children only.
func Depth(maxDepth int) Selector {
	return &depthSelector{maxDepth: maxDepth}
}

func depthOf(rel string) int {
	rel = strings.Trim(filepath.ToSlash(rel), "/")
	if rel == "" || rel == "." {
		return 0
	}
	return strings.Count(rel, "/") + 1
}

func (s *depthSelector) Match(e *Entry) bool {
	return depthOf(e.Rel) <= s.maxDepth
}

func (s *depthSelector) TraverseDescendants(e *Entry) bool {
	return depthOf(e.Rel) < s.maxDepth
}

// ============================================================================
// Composable Selectors (And, Or, Not)
// ============================================================================

type andSelector struct {
	selectors []Selector
}

// And matches only if all selectors match. A directory is entered only if
// every selector allows it.
func And(selectors ...Selector) Selector {
	return &andSelector{selectors: selectors}
}

func (s *andSelector) Match(e *Entry) bool {
	for _, sel := range s.selectors {
		if !sel.Match(e) {
			return false
		}
	}
	return true
}

func (s *andSelector) TraverseDescendants(e *Entry) bool {
	for _, sel := range s.selectors {
		if !sel.TraverseDescendants(e) {
			return false
		}
	}
	return true
}

type orSelector struct {
	selectors []Selector
}

// Or matches if any selector matches.
func Or(selectors ...Selector) Selector {
	return &orSelector{selectors: selectors}
}

func (s *orSelector) Match(e *Entry) bool {
	for _, sel := range s.selectors {
		if sel.Match(e) {
			return true
		}
	}
	return false
}

func (s *orSelector) TraverseDescendants(e *Entry) bool {
	for _, sel := range s.selectors {
		if sel.TraverseDescendants(e) {
			return true
		}
	}
	return false
}

type notSelector struct {
	selector Selector
}

// Not inverts a selector's match result. Traversal is not restricted.
func Not(selector Selector) Selector {
	return &notSelector{selector: selector}
}

func (s *notSelector) Match(e *Entry) bool {
	return !s.selector.Match(e)
}

func (s *notSelector) TraverseDescendants(*Entry) bool {
	return true
}

// ============================================================================
// Func - Custom logic
// ============================================================================

type funcSelector struct {
	matchFn    func(*Entry) bool
	traverseFn func(*Entry) bool
}

// Func creates a selector from a match function; every directory is entered.
func Func(fn func(*Entry) bool) Selector {
	return &funcSelector{
		matchFn:    fn,
		traverseFn: func(*Entry) bool { return true },
	}
}

// FuncFull creates a selector with custom match and traverse functions.
func FuncFull(matchFn, traverseFn func(*Entry) bool) Selector {
	return &funcSelector{matchFn: matchFn, traverseFn: traverseFn}
}

func (s *funcSelector) Match(e *Entry) bool               { return s.matchFn(e) }
func (s *funcSelector) TraverseDescendants(e *Entry) bool { return s.traverseFn(e) }

// SkipHidden skips dot files and dot directories.
func SkipHidden() Selector {
	hidden := func(e *Entry) bool { return strings.HasPrefix(e.Name, ".") }
	return FuncFull(
		func(e *Entry) bool { return !hidden(e) },
		func(e *Entry) bool { return !hidden(e) },
	)
}
