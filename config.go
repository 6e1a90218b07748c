package filescraper

import (
	"github.com/gobeaver/beaver-kit/config"
)

type Config struct {
	// Compiled schematron validator cache
	CacheDir     string `env:"FILESCRAPER_CACHE_DIR,default:~/.file-scraper/schematron-cache"`
	CacheEnabled bool   `env:"FILESCRAPER_CACHE_ENABLED,default:true"`

	// ISO schematron XSLT 1.0 skeleton location
	SchematronXSLTDir string `env:"FILESCRAPER_SCHEMATRON_XSLT_DIR,default:/usr/share/iso_schematron_xslt1"`

	// External validator binaries
	MediainfoBin string `env:"FILESCRAPER_MEDIAINFO_BIN,default:mediainfo"`
	FFmpegBin    string `env:"FILESCRAPER_FFMPEG_BIN,default:ffmpeg"`
	PngcheckBin  string `env:"FILESCRAPER_PNGCHECK_BIN,default:pngcheck"`
	DpxvBin      string `env:"FILESCRAPER_DPXV_BIN,default:dpxv"`
	XsltprocBin  string `env:"FILESCRAPER_XSLTPROC_BIN,default:xsltproc"`
	XmllintBin   string `env:"FILESCRAPER_XMLLINT_BIN,default:xmllint"`

	// Concurrency
	MaxParallelTools   int `env:"FILESCRAPER_MAX_PARALLEL_TOOLS,default:4"`
	ToolTimeoutSeconds int `env:"FILESCRAPER_TOOL_TIMEOUT_SECONDS,default:0"` // per tool invocation; 0 disables it

	// Batch mode
	BatchWorkers       int `env:"FILESCRAPER_BATCH_WORKERS,default:4"`
	BatchRatePerSecond int `env:"FILESCRAPER_BATCH_RATE_PER_SECOND,default:0"` // 0 is unlimited

	// Logging
	LogJSON  bool   `env:"FILESCRAPER_LOG_JSON,default:false"`
	LogLevel string `env:"FILESCRAPER_LOG_LEVEL,default:info"`
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
