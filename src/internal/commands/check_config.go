package commands

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ipmerge/ipmerge/src/internal/config"
	"github.com/ipmerge/ipmerge/src/internal/log"
	"github.com/ipmerge/ipmerge/src/internal/pipeline"
	"github.com/ipmerge/ipmerge/src/internal/ranges"
)

func CreateCheckConfigCommand() *CheckConfigCommand {
	return &CheckConfigCommand{
		fs:  flag.NewFlagSet("check-config", flag.ContinueOnError),
		out: os.Stdout,
	}
}

// CheckConfigCommand validates the configuration and credentials and prints the
// effective configuration.
type CheckConfigCommand struct {
	fs    *flag.FlagSet
	out   io.Writer
	cfg   *config.Config
	creds *config.Credentials
}

func (c *CheckConfigCommand) Name() string {
	return c.fs.Name()
}

func (c *CheckConfigCommand) Init(args []string, ctx *AppContext) error {
	if err := c.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfig(ctx.ConfigPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	if cfg.Publish.Enabled {
		if c.creds, err = loadCredentials(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (c *CheckConfigCommand) Run() error {
	if c.cfg.Filter.Enabled {
		set, err := ranges.ParseSet(c.cfg.Filter.ExcludeCIDRs)
		if err != nil {
			return err
		}
		log.Infof("%d exclusion ranges collapse to %d prefixes", set.Len(), len(set.Prefixes()))
	}

	if c.cfg.Publish.Enabled {
		message, err := pipeline.RenderMessage(c.cfg.Publish.MessageTemplate, c.cfg.Publish.TargetPath,
			time.Now().In(c.cfg.Publish.Location()), 0)
		if err != nil {
			return err
		}
		log.Infof("Commit message preview: %s", message)
		log.Infof("Publishing to %s", c.creds)
	}

	buf, err := c.cfg.SerializeConfig()
	if err != nil {
		return fmt.Errorf("failed to serialize configuration: %w", err)
	}
	if _, err := c.out.Write(buf.Bytes()); err != nil {
		return err
	}

	log.Infof("Configuration is valid")
	return nil
}
