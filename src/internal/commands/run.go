package commands

import (
	"context"
	"flag"

	"github.com/ipmerge/ipmerge/src/internal/config"
	"github.com/ipmerge/ipmerge/src/internal/log"
	"github.com/ipmerge/ipmerge/src/internal/pipeline"
)

func CreateRunCommand() *RunCommand {
	return &RunCommand{
		fs: flag.NewFlagSet("run", flag.ContinueOnError),
	}
}

// RunCommand downloads, builds and publishes the address list.
type RunCommand struct {
	fs       *flag.FlagSet
	cfg      *config.Config
	ctx      context.Context
	pipeline *pipeline.Pipeline
}

func (r *RunCommand) Name() string {
	return r.fs.Name()
}

func (r *RunCommand) Init(args []string, ctx *AppContext) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfig(ctx.ConfigPath)
	if err != nil {
		return err
	}
	r.cfg = cfg
	r.ctx = ctx.ctx()

	var creds *config.Credentials
	if cfg.Publish.Enabled {
		if creds, err = loadCredentials(ctx); err != nil {
			return err
		}
	} else {
		log.Infof("Publishing is disabled, the list will only be built")
	}

	r.pipeline, err = pipeline.New(cfg, creds)
	return err
}

func (r *RunCommand) Run() error {
	result, err := r.pipeline.Run(r.ctx, pipeline.RunOptions{Publish: r.cfg.Publish.Enabled})
	if err != nil {
		return err
	}

	if result.Publish != nil && result.Publish.Skipped {
		log.Infof("Done, %d addresses, remote file unchanged", result.Build.Written)
	} else {
		log.Infof("Done, %d addresses", result.Build.Written)
	}
	return nil
}
