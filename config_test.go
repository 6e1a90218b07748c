package filescraper

import (
	"os"
	"testing"
)

func TestGetConfig(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		want    Config
	}{
		{
			name:    "default values",
			envVars: map[string]string{},
			want: Config{
				CacheDir:          "~/.file-scraper/schematron-cache",
				CacheEnabled:      true,
				SchematronXSLTDir: "/usr/share/iso_schematron_xslt1",
				MediainfoBin:      "mediainfo",
				FFmpegBin:         "ffmpeg",
				PngcheckBin:       "pngcheck",
				DpxvBin:           "dpxv",
				XsltprocBin:       "xsltproc",
				XmllintBin:        "xmllint",
				MaxParallelTools:  4,
				BatchWorkers:      4,
				LogLevel:          "info",
			},
		},
		{
			name: "cache configuration",
			envVars: map[string]string{
				"BEAVER_FILESCRAPER_CACHE_DIR":            "/var/cache/filescraper",
				"BEAVER_FILESCRAPER_CACHE_ENABLED":        "false",
				"BEAVER_FILESCRAPER_SCHEMATRON_XSLT_DIR": "/opt/schematron",
			},
			want: Config{
				CacheDir:          "/var/cache/filescraper",
				CacheEnabled:      false,
				SchematronXSLTDir: "/opt/schematron",
				MediainfoBin:      "mediainfo",
				FFmpegBin:         "ffmpeg",
				PngcheckBin:       "pngcheck",
				DpxvBin:           "dpxv",
				XsltprocBin:       "xsltproc",
				XmllintBin:        "xmllint",
				MaxParallelTools:  4,
				BatchWorkers:      4,
				LogLevel:          "info",
			},
		},
		{
			name: "tool binaries",
			envVars: map[string]string{
				"BEAVER_FILESCRAPER_MEDIAINFO_BIN": "/usr/local/bin/mediainfo",
				"BEAVER_FILESCRAPER_FFMPEG_BIN":    "/opt/ffmpeg/bin/ffmpeg",
				"BEAVER_FILESCRAPER_DPXV_BIN":      "/usr/local/bin/dpxv",
			},
			want: Config{
				CacheDir:          "~/.file-scraper/schematron-cache",
				CacheEnabled:      true,
				SchematronXSLTDir: "/usr/share/iso_schematron_xslt1",
				MediainfoBin:      "/usr/local/bin/mediainfo",
				FFmpegBin:         "/opt/ffmpeg/bin/ffmpeg",
				PngcheckBin:       "pngcheck",
				DpxvBin:           "/usr/local/bin/dpxv",
				XsltprocBin:       "xsltproc",
				XmllintBin:        "xmllint",
				MaxParallelTools:  4,
				BatchWorkers:      4,
				LogLevel:          "info",
			},
		},
		{
			name: "concurrency and logging",
			envVars: map[string]string{
				"BEAVER_FILESCRAPER_MAX_PARALLEL_TOOLS":    "2",
				"BEAVER_FILESCRAPER_TOOL_TIMEOUT_SECONDS":  "30",
				"BEAVER_FILESCRAPER_BATCH_WORKERS":         "8",
				"BEAVER_FILESCRAPER_BATCH_RATE_PER_SECOND": "10",
				"BEAVER_FILESCRAPER_LOG_JSON":              "true",
				"BEAVER_FILESCRAPER_LOG_LEVEL":             "debug",
			},
			want: Config{
				CacheDir:           "~/.file-scraper/schematron-cache",
				CacheEnabled:       true,
				SchematronXSLTDir:  "/usr/share/iso_schematron_xslt1",
				MediainfoBin:       "mediainfo",
				FFmpegBin:          "ffmpeg",
				PngcheckBin:        "pngcheck",
				DpxvBin:            "dpxv",
				XsltprocBin:        "xsltproc",
				XmllintBin:         "xmllint",
				MaxParallelTools:   2,
				ToolTimeoutSeconds: 30,
				BatchWorkers:       8,
				BatchRatePerSecond: 10,
				LogJSON:            true,
				LogLevel:           "debug",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Set environment variables
			for k, v := range tt.envVars {
				k := k // capture for closure
				os.Setenv(k, v)
				t.Cleanup(func() { os.Unsetenv(k) })
			}

			cfg, err := GetConfig()
			if err != nil {
				t.Fatalf("GetConfig() error = %v", err)
			}

			if *cfg != tt.want {
				t.Errorf("GetConfig() = %+v, want %+v", *cfg, tt.want)
			}
		})
	}
}

func TestToolsFromConfig(t *testing.T) {
	cfg := &Config{
		CacheDir:          "/tmp/cache",
		SchematronXSLTDir: "/opt/schematron",
		MediainfoBin:      "mi",
		FFmpegBin:         "ff",
		PngcheckBin:       "pc",
		DpxvBin:           "dv",
		XsltprocBin:       "xp",
		XmllintBin:        "xl",
	}

	tools := toolsFromConfig(cfg)
	if tools.Mediainfo != "mi" || tools.FFmpeg != "ff" || tools.Pngcheck != "pc" {
		t.Errorf("unexpected binaries: %+v", tools)
	}
	if tools.Dpxv != "dv" || tools.Xsltproc != "xp" || tools.Xmllint != "xl" {
		t.Errorf("unexpected binaries: %+v", tools)
	}
	if tools.CacheDir != "/tmp/cache" || tools.SchematronXSLTDir != "/opt/schematron" {
		t.Errorf("unexpected directories: %+v", tools)
	}
}
