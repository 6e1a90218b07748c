package batch

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// Walk lists the regular files below root accepted by selector, in
// lexical order. A nil selector selects everything.
func Walk(ctx context.Context, root string, selector Selector) ([]Entry, error) {
	if selector == nil {
		selector = All()
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", root)
	}
	if !info.IsDir() {
		e := entryOf(filepath.Dir(root), root, info)
		if selector.Match(&e) {
			return []Entry{e}, nil
		}
		return nil, nil
	}

	var results []Entry
	if err := walkDir(ctx, root, root, selector, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func walkDir(ctx context.Context, root, dir string, selector Selector, results *[]Entry) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, "read directory %s", dir)
	}

	for _, de := range entries {
		path := filepath.Join(dir, de.Name())
		info, err := de.Info()
		if err != nil {
			// Removed while walking.
			continue
		}
		e := entryOf(root, path, info)

		switch {
		case e.IsDir:
			if selector.TraverseDescendants(&e) {
				if err := walkDir(ctx, root, path, selector, results); err != nil {
					return err
				}
			}
		case info.Mode().IsRegular():
			if selector.Match(&e) {
				*results = append(*results, e)
			}
		}
	}
	return nil
}

func entryOf(root, path string, info os.FileInfo) Entry {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = info.Name()
	}
	return Entry{
		Path:    path,
		Rel:     filepath.ToSlash(rel),
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}
}
