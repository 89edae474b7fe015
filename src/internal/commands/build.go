package commands

import (
	"context"
	"flag"

	"github.com/ipmerge/ipmerge/src/internal/log"
	"github.com/ipmerge/ipmerge/src/internal/pipeline"
)

func CreateBuildCommand() *BuildCommand {
	cmd := &BuildCommand{
		fs: flag.NewFlagSet("build", flag.ContinueOnError),
	}
	cmd.fs.BoolVar(&cmd.noFetch, "no-fetch", false, "Reuse the lists already present in the work directory")
	return cmd
}

// BuildCommand produces the output file without publishing it. No credentials are needed.
type BuildCommand struct {
	fs       *flag.FlagSet
	noFetch  bool
	ctx      context.Context
	pipeline *pipeline.Pipeline
}

func (b *BuildCommand) Name() string {
	return b.fs.Name()
}

func (b *BuildCommand) Init(args []string, ctx *AppContext) error {
	if err := b.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfig(ctx.ConfigPath)
	if err != nil {
		return err
	}
	b.ctx = ctx.ctx()

	b.pipeline, err = pipeline.New(cfg, nil)
	return err
}

func (b *BuildCommand) Run() error {
	result, err := b.pipeline.Run(b.ctx, pipeline.RunOptions{SkipFetch: b.noFetch})
	if err != nil {
		return err
	}

	log.Infof("Built %s with %d addresses", result.Build.OutputPath, result.Build.Written)
	return nil
}
