// Package filescraper identifies files, extracts their technical metadata and
// checks whether they are well-formed, by running a set of format-specific
// scrapers and merging what they report into one result.
//
// A scraper is described by a [scraper.Descriptor]: the mimetypes and
// versions it supports, whether it only performs well-formedness checks,
// which parameters it requires and which metadata fields it owns. The
// registry selects every descriptor that accepts a request, the runner
// executes them (most wrap an external tool such as mediainfo, ffmpeg,
// pngcheck, dpxv, xmllint or xsltproc) and the merge engine resolves the
// per-stream metadata and the final verdict.
//
// # Basic Usage
//
//	ctx := context.Background()
//
//	res, err := filescraper.Scrape(ctx, "movie.mpg", "video/mpeg")
//	if err != nil {
//	    log.Fatal(err) // invalid request, e.g. missing file
//	}
//
//	fmt.Println(res.WellFormed) // true, false or unknown
//	for _, s := range res.Streams {
//	    fmt.Println(s.Render())
//	}
//
// An empty mimetype asks the upstream detector to guess it from the file
// content. Only invalid requests return an error; unsupported formats,
// invalid files and validators that could not be run are recorded in the
// result's Errors, Warnings and Scrapers summaries. Use [Check] to turn the
// "nothing could analyze this file" cases into errors.
//
// # Options
//
//	res, err := svc.Scrape(ctx, "doc.xml", "text/xml",
//	    filescraper.WithVersion("1.0"),
//	    filescraper.WithSchematron("rules/mets.sch"),
//	    filescraper.WithChecksums(filescraper.ChecksumMD5),
//	)
//
// [WithFullValidation](false) limits the run to metadata scraping; scrapers
// that only check well-formedness are skipped without launching anything.
//
// # Metadata Values
//
// Each stream field holds a [metadata.Value] that is either concrete, not
// yet resolved, or not applicable to the stream. When scrapers disagree the
// first concrete value in registry order wins and the disagreement is listed
// in Conflicts. A scraper that owns a field can declare it not applicable
// for everyone. Fields nobody could resolve render as "(:unav)", or "0" for
// numeric fields, and produce an incomplete-metadata warning.
//
// # Configuration
//
// The global instance reads its configuration from the environment:
//
//	BEAVER_FILESCRAPER_CACHE_DIR=~/.file-scraper/schematron-cache
//	BEAVER_FILESCRAPER_MEDIAINFO_BIN=/usr/local/bin/mediainfo
//	BEAVER_FILESCRAPER_MAX_PARALLEL_TOOLS=4
//
// Use [WithPrefix] for a different prefix, or [New] with an explicit
// [Config].
//
// # Batch and Watch
//
// Package batch walks directory trees with composable selectors and scrapes
// the selected files in parallel; it can also watch a tree and scrape files
// as they settle. The filescraper command exposes both.
package filescraper
