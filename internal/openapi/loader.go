package openapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/openapi-toolproxy/internal/common"
	"github.com/bobmcallan/openapi-toolproxy/internal/metrics"
	"github.com/bobmcallan/openapi-toolproxy/internal/registry"
)

// Source is one document to compile.
type Source struct {
	Name   string
	Prefix string
	// Exactly one of URL or File is set.
	URL  string
	File string
	Base BasePolicy
}

// Location returns the URL or file the source is read from.
func (s Source) Location() string {
	if s.URL != "" {
		return s.URL
	}
	return s.File
}

// SourceReport summarises the outcome of loading one source.
type SourceReport struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Title    string `json:"title,omitempty"`
	Version  string `json:"version,omitempty"`
	Tools    int    `json:"tools"`
	Skipped  int    `json:"skipped"`
	Error    string `json:"error,omitempty"`
}

// LoadResult is the outcome of loading a list of sources.
type LoadResult struct {
	// Records are in application order: source order, then document order.
	Records []registry.ToolRecord
	Reports []SourceReport
	Errors  []*LoadError
}

// Snapshot builds a registry snapshot from the records, applying
// last-write-wins on name collisions.
func (r *LoadResult) Snapshot() (*registry.Snapshot, []registry.Overwrite) {
	b := registry.NewBuilder()
	for _, rec := range r.Records {
		// Compile validates every record it emits.
		_ = b.Add(rec)
	}
	return b.Snapshot(), b.Overwrites()
}

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	HTTP         Fetcher
	Files        Fetcher
	Concurrency  int
	FetchTimeout time.Duration
	Metrics      *metrics.Metrics
}

// Loader fetches and compiles sources.
type Loader struct {
	http         Fetcher
	files        Fetcher
	concurrency  int
	fetchTimeout time.Duration
	metrics      *metrics.Metrics
	logger       *common.Logger
}

// NewLoader creates a loader. Nil fetchers fall back to defaults.
func NewLoader(opts LoaderOptions, logger *common.Logger) *Loader {
	l := &Loader{
		http:         opts.HTTP,
		files:        opts.Files,
		concurrency:  opts.Concurrency,
		fetchTimeout: opts.FetchTimeout,
		metrics:      opts.Metrics,
		logger:       logger,
	}
	if l.http == nil {
		l.http = NewHTTPFetcher(nil, 0, nil, logger)
	}
	if l.files == nil {
		l.files = NewFileFetcher(0)
	}
	if l.concurrency <= 0 {
		l.concurrency = 4
	}
	if l.fetchTimeout <= 0 {
		l.fetchTimeout = 30 * time.Second
	}
	return l
}

type sourceOutcome struct {
	compiled *CompileResult
	doc      Document
	err      error
}

// Load fetches all sources concurrently and compiles them. A failing source
// is recorded in the result and never prevents the others from loading.
// Results are applied in source order so later sources overwrite earlier
// ones deterministically.
func (l *Loader) Load(ctx context.Context, sources []Source) *LoadResult {
	outcomes := make([]sourceOutcome, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, src := range sources {
		g.Go(func() error {
			outcomes[i] = l.loadOne(gctx, src)
			return nil
		})
	}
	_ = g.Wait()

	result := &LoadResult{}
	for i, src := range sources {
		out := outcomes[i]
		report := SourceReport{Name: src.Name, Location: src.Location()}

		report.Title = out.doc.Title()
		report.Version = out.doc.Version()
		if out.compiled != nil {
			report.Skipped = len(out.compiled.Diagnostics)
			l.logCompileNotes(src, out.compiled)
		}

		l.metrics.ObserveSourceLoad(src.Name, out.err)

		if out.err != nil {
			loadErr := &LoadError{Source: src.Name, Cause: out.err}
			report.Error = out.err.Error()
			result.Errors = append(result.Errors, loadErr)
			result.Reports = append(result.Reports, report)
			l.logger.Warn().
				Str("source", src.Name).
				Str("location", src.Location()).
				Str("error", out.err.Error()).
				Msg("failed to load source, skipping")
			continue
		}

		report.Tools = len(out.compiled.Records)
		result.Records = append(result.Records, out.compiled.Records...)
		result.Reports = append(result.Reports, report)
		l.logger.Info().
			Str("source", src.Name).
			Str("location", src.Location()).
			Int("tools", report.Tools).
			Int("skipped", report.Skipped).
			Msg("source loaded")
	}

	return result
}

// loadOne fetches, parses, and compiles a single source.
func (l *Loader) loadOne(ctx context.Context, src Source) sourceOutcome {
	ctx, cancel := context.WithTimeout(ctx, l.fetchTimeout)
	defer cancel()

	var (
		data []byte
		err  error
	)
	switch {
	case src.URL != "":
		data, err = l.http.Fetch(ctx, src.URL)
	case src.File != "":
		data, err = l.files.Fetch(ctx, src.File)
	default:
		err = errors.New("source has neither url nor file")
	}
	if err != nil {
		return sourceOutcome{err: err}
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return sourceOutcome{err: fmt.Errorf("failed to parse document: %w", err)}
	}

	compiled, err := Compile(doc, CompileOptions{
		Source:    src.Name,
		Prefix:    src.Prefix,
		SourceURL: src.URL,
		Base:      src.Base,
	})
	return sourceOutcome{compiled: compiled, doc: doc, err: err}
}

func (l *Loader) logCompileNotes(src Source, compiled *CompileResult) {
	for _, w := range compiled.Warnings {
		l.logger.Warn().Str("source", src.Name).Msg(w)
	}
	for _, d := range compiled.Diagnostics {
		l.logger.Warn().
			Str("source", src.Name).
			Str("path", d.Path).
			Str("method", d.Method).
			Str("reason", d.Reason).
			Msg("skipping invalid operation")
	}
}
