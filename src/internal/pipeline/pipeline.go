package pipeline

import (
	"context"
	"net/http"
	"time"

	"github.com/ipmerge/ipmerge/src/internal/config"
	"github.com/ipmerge/ipmerge/src/internal/errors"
	"github.com/ipmerge/ipmerge/src/internal/github"
	"github.com/ipmerge/ipmerge/src/internal/lists"
	"github.com/ipmerge/ipmerge/src/internal/log"
	"github.com/ipmerge/ipmerge/src/internal/metrics"
	"github.com/ipmerge/ipmerge/src/internal/ranges"
)

// Fetcher downloads the source archive.
type Fetcher interface {
	Fetch(ctx context.Context, urls []string, archivePath string) (*lists.FetchResult, error)
}

// Publisher reads and writes a single repository file.
type Publisher interface {
	GetFile(ctx context.Context, owner, repo, path, branch string) (github.FileLookup, error)
	PutFile(ctx context.Context, owner, repo, path string, update github.FileUpdate) (*github.CommitResult, error)
}

// Pipeline runs fetch, extract, aggregate, filter, shuffle, write and publish in
// sequence for one configuration.
type Pipeline struct {
	cfg     *config.Config
	creds   *config.Credentials
	exclude *ranges.Set

	fetcher   Fetcher
	publisher Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
	intn      func(n int) int

	produced []string
}

type Option func(*Pipeline)

func WithFetcher(f Fetcher) Option {
	return func(p *Pipeline) { p.fetcher = f }
}

func WithPublisher(pub Publisher) Option {
	return func(p *Pipeline) { p.publisher = pub }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithClock overrides the time used for commit messages and metrics.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithRand overrides the shuffle's random index source.
func WithRand(intn func(n int) int) Option {
	return func(p *Pipeline) { p.intn = intn }
}

// New prepares a pipeline. creds may be nil when nothing is published; the
// exclusion ranges are parsed here so a bad range fails before any download.
func New(cfg *config.Config, creds *config.Credentials, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		cfg:   cfg,
		creds: creds,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	if cfg.Filter.Enabled {
		set, err := ranges.ParseSet(cfg.Filter.ExcludeCIDRs)
		if err != nil {
			return nil, err
		}
		p.exclude = set
	}

	if p.fetcher == nil {
		fetcher, err := lists.NewFetcher(&cfg.Source)
		if err != nil {
			return nil, err
		}
		p.fetcher = fetcher
	}

	if p.publisher == nil && creds != nil {
		httpClient := &http.Client{Timeout: cfg.Publish.Timeout()}
		p.publisher = github.NewClientWithBaseURL(cfg.Publish.APIURL, creds.Token, httpClient)
	}

	if p.metrics == nil {
		p.metrics = metrics.New()
	}

	return p, nil
}

// Metrics returns the gauges of this pipeline.
func (p *Pipeline) Metrics() *metrics.Metrics {
	return p.metrics
}

// RunOptions selects which parts of the pipeline run.
type RunOptions struct {
	// SkipFetch reuses the files already in the work directory.
	SkipFetch bool
	// SkipBuild publishes an existing output file without rebuilding it.
	SkipBuild bool
	// Publish uploads the output file.
	Publish bool
}

// Result summarizes a run.
type Result struct {
	Build   *BuildResult
	Publish *PublishResult
}

// Run executes the selected stages, then exports metrics and cleans up as configured.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (result *Result, err error) {
	result = &Result{}

	defer func() {
		if err == nil {
			p.metrics.MarkSuccess(p.now())
		}
		if p.cfg.General.Cleanup {
			p.Cleanup()
		}
		if path := p.cfg.GetMetricsTextfile(); path != "" {
			if werr := p.metrics.WriteTextfile(path); werr != nil {
				log.Warnf("Failed to export metrics: %v", werr)
			} else {
				log.Debugf("Metrics written to %s", path)
			}
		}
	}()

	count := 0
	if opts.SkipBuild {
		records, err := lists.ReadList(p.cfg.GetOutputPath())
		if err != nil {
			return result, err
		}
		count = len(records)
	} else {
		build, err := p.Build(ctx, BuildOptions{SkipFetch: opts.SkipFetch})
		if err != nil {
			return result, err
		}
		result.Build = build
		count = build.Written
	}

	if !opts.Publish {
		return result, nil
	}

	published, err := p.Publish(ctx, count)
	if err != nil {
		return result, err
	}
	result.Publish = published
	return result, nil
}

func (p *Pipeline) requireCredentials() error {
	if p.creds == nil || p.publisher == nil {
		return errors.NewConfigError("publish credentials are not configured", nil)
	}
	return nil
}
