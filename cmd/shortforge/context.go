package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"shortforge/internal/apiclient"
	"shortforge/internal/config"
	"shortforge/internal/queue"
)

type commandContext struct {
	configFlag *string
	apiFlag    *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, apiFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		apiFlag:    apiFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) apiAddress(cfg *config.Config) string {
	if c.apiFlag != nil {
		if addr := strings.TrimSpace(*c.apiFlag); addr != "" {
			return addr
		}
	}
	if cfg == nil {
		return ""
	}
	return cfg.API.Bind
}

func (c *commandContext) client() (*apiclient.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	client, err := apiclient.New(c.apiAddress(cfg), cfg.API.Token)
	if err != nil {
		return nil, wrapDialError(err, c.apiAddress(cfg))
	}
	return client, nil
}

// jobReader returns the daemon API when it answers and the local job database
// otherwise. The returned close func releases the store when one was opened.
func (c *commandContext) jobReader(ctx context.Context) (jobReader, func(), error) {
	client, err := c.client()
	if err == nil {
		if _, statusErr := client.Status(ctx); statusErr == nil || !apiclient.IsUnavailable(statusErr) {
			return &apiJobReader{client: client}, func() {}, nil
		}
	}
	cfg, cfgErr := c.ensureConfig()
	if cfgErr != nil {
		return nil, nil, cfgErr
	}
	store, openErr := queue.Open(cfg)
	if openErr != nil {
		return nil, nil, fmt.Errorf("daemon unavailable and job database could not be opened: %w", openErr)
	}
	return newStoreJobReader(store, cfg), func() { store.Close() }, nil
}

func wrapDialError(err error, addr string) error {
	if apiclient.IsUnavailable(err) {
		if strings.TrimSpace(addr) == "" {
			return fmt.Errorf("connect to daemon: api.bind is not configured")
		}
		return fmt.Errorf("connect to daemon at %s: not reachable; start it with `shortforge daemon`", addr)
	}
	return err
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
