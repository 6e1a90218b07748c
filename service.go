package filescraper

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gobeaver/beaver-kit/config"
	"github.com/google/uuid"

	"github.com/gobeaver/filescraper/detector"
	"github.com/gobeaver/filescraper/logger"
	"github.com/gobeaver/filescraper/merge"
	"github.com/gobeaver/filescraper/scraper"
)

// Global instance
var (
	defaultService *Service
	defaultOnce    sync.Once
	defaultErr     error
)

// Builder provides a way to create Service instances with custom prefixes
type Builder struct {
	prefix string
}

// WithPrefix creates a new Builder with the specified prefix
func WithPrefix(prefix string) *Builder {
	return &Builder{prefix: prefix}
}

// Init initializes the global Service instance using the builder's prefix
func (b *Builder) Init() error {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return err
	}
	return Init(cfg)
}

// New creates a new Service instance using the builder's prefix
func (b *Builder) New(opts ...ServiceOption) (*Service, error) {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// Init initializes the global service instance
func Init(configs ...*Config) error {
	defaultOnce.Do(func() {
		var cfg *Config
		if len(configs) > 0 {
			cfg = configs[0]
		} else {
			cfg, defaultErr = GetConfig()
			if defaultErr != nil {
				return
			}
		}

		defaultService, defaultErr = New(cfg)
	})

	return defaultErr
}

// Service scrapes files with a registry of scrapers.
type Service struct {
	cfg      *Config
	registry *scraper.Registry
	exec     scraper.Executor
}

// ServiceOption customizes a Service
type ServiceOption func(*Service)

// WithExecutor replaces the process executor, e.g. with a scripted one in
// tests
func WithExecutor(exec scraper.Executor) ServiceOption {
	return func(s *Service) {
		s.exec = exec
	}
}

// WithRegistry replaces the built-in scraper registry
func WithRegistry(r *scraper.Registry) ServiceOption {
	return func(s *Service) {
		s.registry = r
	}
}

// New creates a new service with given config
func New(cfg *Config, opts ...ServiceOption) (*Service, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	s := &Service{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = scraper.DefaultRegistry(toolsFromConfig(cfg))
	}
	if s.exec == nil {
		s.exec = &scraper.ExecExecutor{}
	}
	if cfg.ToolTimeoutSeconds > 0 {
		s.exec = &scraper.TimeoutExecutor{
			Executor: s.exec,
			Timeout:  time.Duration(cfg.ToolTimeoutSeconds) * time.Second,
		}
	}
	return s, nil
}

// validateConfig checks configuration validity
func validateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if cfg.MaxParallelTools < 0 {
		return errors.Newf("max parallel tools must not be negative (got %d)", cfg.MaxParallelTools)
	}
	if cfg.ToolTimeoutSeconds < 0 {
		return errors.Newf("tool timeout must not be negative (got %d)", cfg.ToolTimeoutSeconds)
	}
	if cfg.BatchWorkers < 0 {
		return errors.Newf("batch workers must not be negative (got %d)", cfg.BatchWorkers)
	}
	if cfg.BatchRatePerSecond < 0 {
		return errors.Newf("batch rate must not be negative (got %d)", cfg.BatchRatePerSecond)
	}
	return nil
}

// toolsFromConfig maps config onto the built-in scrapers' tool settings
func toolsFromConfig(cfg *Config) scraper.Tools {
	return scraper.Tools{
		Mediainfo:         cfg.MediainfoBin,
		FFmpeg:            cfg.FFmpegBin,
		Pngcheck:          cfg.PngcheckBin,
		Dpxv:              cfg.DpxvBin,
		Xsltproc:          cfg.XsltprocBin,
		Xmllint:           cfg.XmllintBin,
		SchematronXSLTDir: cfg.SchematronXSLTDir,
		CacheDir:          cfg.CacheDir,
	}
}

// Config returns the service configuration
func (s *Service) Config() *Config {
	return s.cfg
}

// Registry returns the scraper registry
func (s *Service) Registry() *scraper.Registry {
	return s.registry
}

// Scrape identifies and validates one file. mimetype is the predicted
// mimetype; when empty it is detected from the file content.
//
// Only invalid requests return an error. Unsupported formats, invalid files
// and failing validators are reported in the result.
func (s *Service) Scrape(ctx context.Context, filename, mimetype string, opts ...Option) (*merge.FileResult, error) {
	if filename == "" {
		return nil, &RequestError{Op: "scrape", Err: ErrEmptyFilename}
	}
	info, err := os.Stat(filename)
	if err != nil {
		return nil, &RequestError{Op: "scrape", Path: filename, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &RequestError{Op: "scrape", Path: filename, Err: ErrNotRegularFile}
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	for _, algo := range o.Checksums {
		if _, err := NewHasher(algo); err != nil {
			return nil, &RequestError{Op: "checksum", Path: filename, Err: err}
		}
	}
	if !s.cfg.CacheEnabled {
		if _, set := o.Params[scraper.ParamCache]; !set {
			o.Params[scraper.ParamCache] = false
		}
	}

	requestID := uuid.New().String()
	ctx = logger.WithRequestID(ctx, requestID)
	log := logger.FromContext(ctx, logger.ComponentLogger("service")).With(logger.FieldFile, filename)

	if mimetype == "" {
		det, err := detector.Guess(filename)
		if err != nil {
			return nil, &RequestError{Op: "detect", Path: filename, Err: err}
		}
		mimetype = det.Mimetype
		if o.Version == "" {
			o.Version = det.Version
		}
		log.Debugw("detected format", logger.FieldMimetype, mimetype, logger.FieldVersion, o.Version)
	}

	req := scraper.Request{
		Filename:       filename,
		Mimetype:       mimetype,
		Version:        o.Version,
		FullValidation: o.FullValidation,
		Params:         o.Params,
	}
	descriptors := s.registry.Select(&req)

	start := time.Now()
	results := scraper.RunAll(ctx, descriptors, req, s.exec, s.cfg.MaxParallelTools)
	merged := merge.Merge(filename, req.FullValidation, results)
	if len(o.Checksums) > 0 {
		sums, err := FileChecksums(filename, o.Checksums)
		if err != nil {
			return nil, &RequestError{Op: "checksum", Path: filename, Err: err}
		}
		merged.Checksums = sums
	}

	log.Infow("scraped file",
		logger.FieldMimetype, merged.Mimetype,
		logger.FieldVersion, merged.Version,
		logger.FieldWellFormed, merged.WellFormed.String(),
		logger.FieldCount, len(results),
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return merged, nil
}

// Check converts a merged result into an error for callers that only need
// to know whether the file could be analyzed.
func Check(r *merge.FileResult) error {
	for _, sum := range r.Scrapers {
		if sum.Scraper == scraper.Unsupported.Name {
			return errors.Wrapf(ErrUnsupportedFormat, "%s (%s)", r.Filename, r.Mimetype)
		}
	}
	for _, e := range r.Errors {
		if e.Message == merge.NoContributionMessage {
			return errors.Wrap(ErrNoScraperContributed, r.Filename)
		}
	}
	return nil
}

// Scrape scrapes a file using the global service instance
func Scrape(ctx context.Context, filename, mimetype string, opts ...Option) (*merge.FileResult, error) {
	s, err := Default()
	if err != nil {
		return nil, err
	}
	return s.Scrape(ctx, filename, mimetype, opts...)
}

// Default returns the global instance, initializing if needed with error handling
func Default() (*Service, error) {
	if defaultService == nil {
		if err := Init(); err != nil {
			return nil, err
		}
	}
	return defaultService, nil
}

// NewFromEnv creates instance from environment variables (convenience constructor)
func NewFromEnv(opts ...ServiceOption) (*Service, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// Reset clears the global instance (for testing)
func Reset() {
	defaultService = nil
	defaultOnce = sync.Once{}
	defaultErr = nil
}
