package internal

import (
	"fmt"
	"time"
)

// Duration is a time.Duration that can be unmarshaled from a TOML/YAML
// string like "60s" or "5m", the way the teacher's AgentConfig durations
// are declared.
type Duration struct {
	Duration time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", string(text), err)
	}
	d.Duration = dur
	return nil
}

// UnmarshalYAML lets Duration decode from a YAML scalar like "60s" via
// gopkg.in/yaml.v2, which does not consult encoding.TextUnmarshaler on
// its own.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d Duration) String() string {
	return d.Duration.String()
}
