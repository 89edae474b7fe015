package commands

import (
	"context"
	"flag"

	"github.com/ipmerge/ipmerge/src/internal/pipeline"
)

func CreatePublishCommand() *PublishCommand {
	return &PublishCommand{
		fs: flag.NewFlagSet("publish", flag.ContinueOnError),
	}
}

// PublishCommand uploads an output file built earlier.
type PublishCommand struct {
	fs       *flag.FlagSet
	ctx      context.Context
	pipeline *pipeline.Pipeline
}

func (p *PublishCommand) Name() string {
	return p.fs.Name()
}

func (p *PublishCommand) Init(args []string, ctx *AppContext) error {
	if err := p.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfig(ctx.ConfigPath)
	if err != nil {
		return err
	}
	creds, err := loadCredentials(ctx)
	if err != nil {
		return err
	}
	p.ctx = ctx.ctx()

	p.pipeline, err = pipeline.New(cfg, creds)
	return err
}

func (p *PublishCommand) Run() error {
	_, err := p.pipeline.Run(p.ctx, pipeline.RunOptions{SkipBuild: true, Publish: true})
	return err
}
