package main

import (
	"strings"
	"sync"

	"lyrico/internal/config"
	"lyrico/internal/queue"
)

type commandContext struct {
	configFlag *string
	addrFlag   *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, addrFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		addrFlag:   addrFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
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

func (c *commandContext) apiAddr() string {
	if c.addrFlag != nil && strings.TrimSpace(*c.addrFlag) != "" {
		return strings.TrimSpace(*c.addrFlag)
	}
	if c.config != nil {
		return strings.TrimSpace(c.config.Paths.APIBind)
	}
	return ""
}

// client returns an API client for the running daemon, or nil when the
// daemon is not reachable.
func (c *commandContext) client() *daemonClient {
	cfg, err := c.ensureConfig()
	if err != nil || cfg == nil {
		return nil
	}
	client := newDaemonClient(c.apiAddr(), cfg.Paths.APIToken)
	if client == nil || !client.reachable() {
		return nil
	}
	return client
}

// requireClient returns an API client or an actionable error when the
// daemon is not running.
func (c *commandContext) requireClient() (*daemonClient, error) {
	if client := c.client(); client != nil {
		return client, nil
	}
	return nil, errDaemonUnavailable(c.apiAddr())
}

// withQueue runs fn with a daemon client when one is reachable, falling
// back to direct queue store access otherwise. Exactly one of the two
// arguments is non-nil.
func (c *commandContext) withQueue(fn func(client *daemonClient, store *queue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if client := c.client(); client != nil {
		return fn(client, nil)
	}
	store, err := queue.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(nil, store)
}
