package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Timeout is a wait bound that distinguishes "no bound" from "expire
// immediately". Negative values (canonically NoBound) disable the bound;
// zero is a real bound that expires at once.
type Timeout time.Duration

// NoBound disables a timeout.
const NoBound Timeout = -1

// Duration converts the timeout to the manager's convention: any disabled
// bound becomes -1.
func (t Timeout) Duration() time.Duration {
	if t < 0 {
		return -1
	}
	return time.Duration(t)
}

// String renders the timeout the way a settings file would spell it.
func (t Timeout) String() string {
	if t < 0 {
		return "none"
	}
	return time.Duration(t).String()
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Timeout) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := parseTimeout(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timeout) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := parseTimeout(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// parseTimeout accepts a duration string, a bare number of seconds, the
// literal "none"/"off", or null. Negative inputs disable the bound.
func parseTimeout(raw any) (Timeout, error) {
	switch v := raw.(type) {
	case nil:
		return NoBound, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "none", "off":
			return NoBound, nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("parse timeout %q: %w", v, err)
		}
		if d < 0 {
			return NoBound, nil
		}
		return Timeout(d), nil
	case int:
		if v < 0 {
			return NoBound, nil
		}
		return Timeout(time.Duration(v) * time.Second), nil
	case float64:
		if v < 0 {
			return NoBound, nil
		}
		return Timeout(time.Duration(v * float64(time.Second))), nil
	default:
		return 0, fmt.Errorf("unsupported timeout value %v (%T)", raw, raw)
	}
}

// Settings tunes a wait manager embedded in a host application.
type Settings struct {
	// WaitTimeout bounds Manager.Wait.
	WaitTimeout Timeout `yaml:"wait_timeout" json:"wait_timeout"`

	// IterationTimeout bounds each step of Manager.Loop.
	IterationTimeout Timeout `yaml:"iteration_timeout" json:"iteration_timeout"`

	// LoopTimeout bounds the overall budget of Manager.Loop.
	LoopTimeout Timeout `yaml:"loop_timeout" json:"loop_timeout"`

	// SubscriptionWarnThreshold makes the manager warn when the registry
	// grows past this many live subscriptions. Zero disables the warning.
	SubscriptionWarnThreshold int `yaml:"subscription_warn_threshold" json:"subscription_warn_threshold"`
}

// DefaultSettings returns settings for a silent, unbounded manager.
func DefaultSettings() Settings {
	return Settings{
		WaitTimeout:      NoBound,
		IterationTimeout: NoBound,
		LoopTimeout:      NoBound,
	}
}

// Validate reports whether the settings are usable.
func (s Settings) Validate() error {
	if s.SubscriptionWarnThreshold < 0 {
		return fmt.Errorf("subscription_warn_threshold must not be negative, got %d", s.SubscriptionWarnThreshold)
	}
	return nil
}
