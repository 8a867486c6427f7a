package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"modmatch/internal/catalog"
	"modmatch/internal/config"
	"modmatch/internal/logging"
	"modmatch/internal/matcher"
	"modmatch/internal/rerank"
)

type commandContext struct {
	configFlag  *string
	catalogFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, catalogFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		catalogFlag: catalogFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.catalogFlag != nil && strings.TrimSpace(*c.catalogFlag) != "" {
			expanded, err := config.ExpandPath(strings.TrimSpace(*c.catalogFlag))
			if err != nil {
				c.configErr = fmt.Errorf("resolve catalog path: %w", err)
				return
			}
			cfg.Paths.Catalog = expanded
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

// loggerValue builds the configured logger once. Logger construction errors
// fall back to a no-op logger so presentation commands still work.
func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) loadCatalog() (*catalog.Holder, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireCatalog(); err != nil {
		return nil, err
	}
	cat, err := catalog.Load(cfg.Paths.Catalog)
	if err != nil {
		return nil, err
	}
	return catalog.NewHolder(cat, cfg.Paths.Catalog, c.loggerValue()), nil
}

// newMatcher builds a matcher from the [matcher] and [rerank] sections. The
// closer releases the re-rank cache and must always be called.
func (c *commandContext) newMatcher() (*matcher.Matcher, io.Closer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := c.loggerValue()
	rc, closer, err := rerank.New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	opts := []matcher.Option{matcher.WithLogger(logger)}
	if rc != nil {
		opts = append(opts, matcher.WithRerank(rc))
	}
	return matcher.New(matcher.PolicyFromConfig(cfg.Matcher), opts...), closer, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
