package pipeline

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/valyala/fasttemplate"

	"github.com/ipmerge/ipmerge/src/internal/config"
	"github.com/ipmerge/ipmerge/src/internal/errors"
	"github.com/ipmerge/ipmerge/src/internal/github"
	"github.com/ipmerge/ipmerge/src/internal/hashing"
	"github.com/ipmerge/ipmerge/src/internal/log"
	"github.com/ipmerge/ipmerge/src/internal/metrics"
)

const messageTimeLayout = "2006-01-02 15:04:05"

// PublishResult describes the outcome of Publish.
type PublishResult struct {
	// Skipped is true when the remote file already had identical content.
	Skipped   bool
	Created   bool
	CommitSHA string
	Message   string
}

// Publish uploads the output file to the configured repository path. count is the
// number of addresses reported in the commit message.
func (p *Pipeline) Publish(ctx context.Context, count int) (*PublishResult, error) {
	if err := p.requireCredentials(); err != nil {
		return nil, err
	}
	defer p.metrics.Track(metrics.StagePublish)()

	cfg := &p.cfg.Publish
	owner, repo := p.creds.Owner(), p.creds.Repo()
	outputPath := p.cfg.GetOutputPath()

	content, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, errors.NewListError(fmt.Sprintf("failed to read %s", outputPath), err)
	}

	lookup, err := p.publisher.GetFile(ctx, owner, repo, cfg.TargetPath, cfg.Branch)
	if err != nil {
		if !cfg.TolerateLookupErrors {
			return nil, err
		}
		log.Warnf("Revision lookup failed, uploading as a new file: %v", err)
		lookup = github.FileLookup{State: github.FileAbsent}
	}

	if cfg.SkipUnchanged && lookup.State == github.FileFound && lookup.SHA == hashing.GitBlobSHA(content) {
		log.Infof("%s/%s:%s is already up to date", owner, repo, cfg.TargetPath)
		return &PublishResult{Skipped: true}, nil
	}

	message, err := RenderMessage(cfg.MessageTemplate, cfg.TargetPath, p.now().In(cfg.Location()), count)
	if err != nil {
		return nil, err
	}

	log.Infof("Uploading %s to %s/%s:%s (%s)", outputPath, owner, repo, cfg.TargetPath, lookup.State)
	commit, err := p.publisher.PutFile(ctx, owner, repo, cfg.TargetPath, github.FileUpdate{
		Message: message,
		Content: content,
		SHA:     lookup.SHA,
		Branch:  cfg.Branch,
	})
	if err != nil {
		return nil, err
	}

	if commit.Created {
		log.Infof("Created %s in commit %s", cfg.TargetPath, commit.CommitSHA)
	} else {
		log.Infof("Updated %s in commit %s", cfg.TargetPath, commit.CommitSHA)
	}

	return &PublishResult{
		Created:   commit.Created,
		CommitSHA: commit.CommitSHA,
		Message:   message,
	}, nil
}

// RenderMessage fills the commit message template. Tags are {{path}}, {{time}}
// and {{count}}; unknown tags render empty.
func RenderMessage(template, path string, at time.Time, count int) (string, error) {
	t, err := fasttemplate.NewTemplate(template, "{{", "}}")
	if err != nil {
		return "", errors.NewConfigError("invalid commit message template", err)
	}

	return t.ExecuteString(map[string]interface{}{
		config.MESSAGE_TMPL_PATH:  path,
		config.MESSAGE_TMPL_TIME:  at.Format(messageTimeLayout),
		config.MESSAGE_TMPL_COUNT: strconv.Itoa(count),
	}), nil
}
