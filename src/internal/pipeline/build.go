package pipeline

import (
	"context"

	"github.com/ipmerge/ipmerge/src/internal/lists"
	"github.com/ipmerge/ipmerge/src/internal/log"
	"github.com/ipmerge/ipmerge/src/internal/metrics"
	"github.com/ipmerge/ipmerge/src/internal/ranges"
)

type BuildOptions struct {
	SkipFetch bool
}

// BuildResult holds the counts of one build.
type BuildResult struct {
	Collected  int
	Excluded   int
	Invalid    int
	Written    int
	OutputPath string
	// ArchiveChanged is false when the downloaded archive matched the previous one.
	ArchiveChanged bool
}

// Build downloads and extracts the archive, merges the lists, filters, shuffles and
// writes the output file. Each stage finishes before the next starts.
func (p *Pipeline) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	cfg := p.cfg
	workDir := cfg.GetAbsWorkDir()
	result := &BuildResult{OutputPath: cfg.GetOutputPath()}

	if opts.SkipFetch {
		log.Infof("Skipping download, using files in %s", workDir)
	} else {
		archivePath := cfg.GetArchivePath()

		done := p.metrics.Track(metrics.StageFetch)
		fetched, err := p.fetcher.Fetch(ctx, cfg.Source.URLs, archivePath)
		done()
		if err != nil {
			return nil, err
		}
		p.produced = append(p.produced, archivePath, lists.ChecksumPath(archivePath))
		result.ArchiveChanged = fetched.Changed

		done = p.metrics.Track(metrics.StageExtract)
		extracted, err := lists.Extract(archivePath, workDir)
		p.produced = append(p.produced, extracted...)
		done()
		if err != nil {
			return nil, err
		}
	}

	done := p.metrics.Track(metrics.StageAggregate)
	set, err := lists.Aggregate(workDir, cfg.General.OutputFile, cfg.General.TextSuffix)
	done()
	if err != nil {
		return nil, err
	}
	result.Collected = set.Len()
	p.metrics.SetCollected(result.Collected)

	records := set.Slice()
	if p.exclude != nil {
		done = p.metrics.Track(metrics.StageFilter)
		policy := ranges.KeepInvalid
		if cfg.Filter.DropInvalid {
			policy = ranges.DropInvalid
		}
		filtered := ranges.Filter(records, p.exclude, policy)
		done()

		records = filtered.Kept
		result.Excluded = filtered.Excluded
		result.Invalid = filtered.Invalid
		p.metrics.SetExcluded(filtered.Excluded)
		p.metrics.SetInvalid(filtered.Invalid)
		log.Infof("Excluded %d addresses inside %d ranges", filtered.Excluded, p.exclude.Len())
		if filtered.Invalid > 0 {
			log.Warnf("%d records are not valid IP addresses", filtered.Invalid)
		}
	}

	done = p.metrics.Track(metrics.StageShuffle)
	lists.Shuffle(records, p.intn)
	done()

	done = p.metrics.Track(metrics.StageWrite)
	err = lists.WriteList(result.OutputPath, records)
	done()
	if err != nil {
		return nil, err
	}
	result.Written = len(records)
	p.metrics.SetPublished(result.Written)

	if result.Written == 0 {
		log.Warnf("Output %s is empty", result.OutputPath)
	}
	log.Infof("Wrote %d addresses to %s", result.Written, result.OutputPath)
	return result, nil
}
