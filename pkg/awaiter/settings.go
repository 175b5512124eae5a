package awaiter

import (
	"github.com/randalmurphal/awaiter/pkg/awaiter/config"
)

// FromSettings builds a Manager from loaded settings. Options given here are
// applied after the settings and override them.
func FromSettings(s config.Settings, opts ...Option) (*Manager, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	base := []Option{
		WithDefaultWaitTimeout(s.WaitTimeout.Duration()),
		WithDefaultIterationTimeout(s.IterationTimeout.Duration()),
		WithDefaultLoopTimeout(s.LoopTimeout.Duration()),
		WithSubscriptionWarnThreshold(s.SubscriptionWarnThreshold),
	}
	return New(append(base, opts...)...), nil
}
