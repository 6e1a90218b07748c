package scraper

import (
	"context"

	"github.com/gobeaver/filescraper/logger"
	"github.com/gobeaver/filescraper/metadata"
	"github.com/gobeaver/filescraper/rulecache"
	"github.com/gobeaver/filescraper/schematron"
)

// Schematron validates XML documents against the rule file named by the
// schematron parameter. It is only selected when that parameter is set.
func Schematron(t Tools) *Descriptor {
	t = t.withDefaults()
	st := &schematronStrategy{tools: t}
	if t.Cache == nil {
		st.lazy = &lazyStore{dir: t.CacheDir}
	}
	return &Descriptor{
		Name:           NameSchematron,
		Supported:      map[string][]string{"text/xml": {"1.0"}},
		OnlyWellformed: true,
		AllowVersions:  true,
		RequiredParams: []string{ParamSchematron},
		Strategy:       st,
	}
}

type schematronStrategy struct {
	tools Tools
	lazy  *lazyStore
}

func (st *schematronStrategy) store() (rulecache.Store, error) {
	if st.tools.Cache != nil {
		return st.tools.Cache, nil
	}
	return st.lazy.get()
}

// Scrape implements Strategy.
func (st *schematronStrategy) Scrape(ctx context.Context, s *Session) error {
	params := s.Request.Params
	opts := schematron.Options{
		Verbose:   params.Bool(ParamVerbose, false),
		UseCache:  params.Bool(ParamCache, true),
		ExtraHash: params.String(ParamExtraHash),
	}

	cache, err := st.store()
	if err != nil {
		return err
	}
	compiler := schematron.NewCompiler(st.tools.Xsltproc, st.tools.SchematronXSLTDir, cache)
	run := func(ctx context.Context, argv ...string) (*schematron.Invocation, error) {
		out, err := s.Run(ctx, argv...)
		if err != nil {
			return nil, err
		}
		return &schematron.Invocation{ExitCode: out.ExitCode, Stdout: out.Stdout, Stderr: out.Stderr}, nil
	}

	rules := params.String(ParamSchematron)
	validator, err := compiler.Compile(ctx, run, rules, opts)
	if err != nil {
		return err
	}
	s.Log.Debugw("schematron compiled", logger.FieldFile, validator)

	inv, err := run(ctx, compiler.ValidateArgv(validator, s.Request.Filename)...)
	if err != nil {
		return err
	}
	report, err := schematron.Evaluate(inv, opts.Verbose)
	if err != nil {
		return err
	}

	s.Result.AddError(KindValidation, report.Error)
	s.Result.AddMessage(report.Message)
	if !report.WellFormed {
		s.Result.Invalidate()
	}

	stream := metadata.NewStream()
	stream.Set(metadata.FieldMimetype, metadata.Unresolved)
	stream.Set(metadata.FieldVersion, metadata.Unresolved)
	stream.Set(metadata.FieldStreamType, metadata.Of(metadata.StreamText))
	stream.SetIndex(0)
	s.Result.AddStream(stream)
	return nil
}
