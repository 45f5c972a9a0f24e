package qube

import "fmt"

// SelectOption configures a Select call beyond its positional selection
// argument.
type SelectOption func(*selectConfig) error

type selectConfig struct {
	mode    SelectMode
	consume bool
}

func newSelectConfig(opts []SelectOption) (*selectConfig, error) {
	cfg := &selectConfig{mode: SelectRelaxed}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// WithMode sets the selection mode (strict, relaxed, or next-level).
func WithMode(mode SelectMode) SelectOption {
	return func(c *selectConfig) error {
		if mode < SelectStrict || mode > SelectNextLevel {
			return fmt.Errorf("unknown select mode %d", mode)
		}
		c.mode = mode
		return nil
	}
}

// WithConsume enables or disables selection-key consumption.
func WithConsume(consume bool) SelectOption {
	return func(c *selectConfig) error {
		c.consume = consume
		return nil
	}
}
