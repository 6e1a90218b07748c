package filescraper_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobeaver/filescraper"
	"github.com/gobeaver/filescraper/scraper/scrapertest"
)

func exampleFile(name, content string) (string, func()) {
	dir, _ := os.MkdirTemp("", "filescraper-example")
	path := filepath.Join(dir, name)
	_ = os.WriteFile(path, []byte(content), 0o600)
	return path, func() { os.RemoveAll(dir) }
}

func ExampleService_Scrape() {
	path, cleanup := exampleFile("doc.xml", `<?xml version="1.0" encoding="UTF-8"?><root/>`)
	defer cleanup()

	// A scripted executor stands in for xmllint; use the default one in production.
	exec := scrapertest.NewExecutor().On("xmllint", scrapertest.Reply{})

	cfg, _ := filescraper.GetConfig()
	svc, _ := filescraper.New(cfg, filescraper.WithExecutor(exec))

	// An empty mimetype is detected from the content.
	res, err := svc.Scrape(context.Background(), path, "")
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(res.Mimetype, res.Version, res.WellFormed)
	for _, s := range res.Scrapers {
		fmt.Println(s.Scraper, s.State)
	}
	// Output:
	// text/xml 1.0 true
	// FileMagic success
	// Xmllint success
}

func ExampleCheck() {
	path, cleanup := exampleFile("data.bin", "??")
	defer cleanup()

	cfg, _ := filescraper.GetConfig()
	svc, _ := filescraper.New(cfg, filescraper.WithExecutor(scrapertest.NewExecutor()))

	res, _ := svc.Scrape(context.Background(), path, "application/x-unknown")
	err := filescraper.Check(res)
	fmt.Println(filescraper.IsUnsupportedFormat(err))
	fmt.Println(res.Errors[0].Message)
	// Output:
	// true
	// Proper scraper was not found. The file was not analyzed.
}

func ExampleWithChecksums() {
	path, cleanup := exampleFile("a.xml", "<a/>")
	defer cleanup()

	exec := scrapertest.NewExecutor().On("xmllint", scrapertest.Reply{})
	cfg, _ := filescraper.GetConfig()
	svc, _ := filescraper.New(cfg, filescraper.WithExecutor(exec))

	res, _ := svc.Scrape(context.Background(), path, "text/xml",
		filescraper.WithFullValidation(false),
		filescraper.WithChecksums(filescraper.ChecksumSHA1))
	fmt.Println(res.Checksums["sha1"])
	// Output:
	// db9aa86632c6f2cc99684a2dd15d2b64828e7622
}
