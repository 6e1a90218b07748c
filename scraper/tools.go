package scraper

import (
	"sync"

	"github.com/gobeaver/filescraper/rulecache"
	"github.com/gobeaver/filescraper/schematron"
)

// DefaultCacheDir is where compiled schematron validators are kept.
const DefaultCacheDir = "~/.file-scraper/schematron-cache"

// Tools locates the external validators used by the built-in descriptors.
type Tools struct {
	Mediainfo string
	FFmpeg    string
	Pngcheck  string
	Dpxv      string
	Xsltproc  string
	Xmllint   string

	// SchematronXSLTDir holds the ISO schematron XSLT 1.0 skeleton.
	SchematronXSLTDir string

	// Cache stores compiled schematron validators. When nil, a disk cache
	// in CacheDir is opened on first use.
	Cache    rulecache.Store
	CacheDir string
}

// DefaultTools returns tool settings using binaries from PATH.
func DefaultTools() Tools {
	return Tools{
		Mediainfo:         "mediainfo",
		FFmpeg:            "ffmpeg",
		Pngcheck:          "pngcheck",
		Dpxv:              "dpxv",
		Xsltproc:          "xsltproc",
		Xmllint:           "xmllint",
		SchematronXSLTDir: schematron.DefaultXSLTDir,
		CacheDir:          DefaultCacheDir,
	}
}

// withDefaults fills empty settings from DefaultTools.
func (t Tools) withDefaults() Tools {
	d := DefaultTools()
	pick := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	t.Mediainfo = pick(t.Mediainfo, d.Mediainfo)
	t.FFmpeg = pick(t.FFmpeg, d.FFmpeg)
	t.Pngcheck = pick(t.Pngcheck, d.Pngcheck)
	t.Dpxv = pick(t.Dpxv, d.Dpxv)
	t.Xsltproc = pick(t.Xsltproc, d.Xsltproc)
	t.Xmllint = pick(t.Xmllint, d.Xmllint)
	t.SchematronXSLTDir = pick(t.SchematronXSLTDir, d.SchematronXSLTDir)
	t.CacheDir = pick(t.CacheDir, d.CacheDir)
	return t
}

// lazyStore opens the disk cache on first use.
type lazyStore struct {
	dir   string
	once  sync.Once
	store rulecache.Store
	err   error
}

func (l *lazyStore) get() (rulecache.Store, error) {
	l.once.Do(func() {
		l.store, l.err = rulecache.NewDiskCache(l.dir)
	})
	return l.store, l.err
}
