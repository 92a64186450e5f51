package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// RuntimeConfig holds per-call options for annotators. The engine passes it through
// untouched; it is the extension point for timeouts, thresholds or feature flags
// that only a specific annotator understands.
type RuntimeConfig map[string]any

// Decode copies the config into out (a pointer to a struct), matching keys against
// `mapstructure` tags. Loose typing lets YAML and JSON numbers land in int fields.
func (c RuntimeConfig) Decode(out any) error {
	if len(c) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      false,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return fmt.Errorf("runtime config decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(c)); err != nil {
		return fmt.Errorf("decode runtime config: %w", err)
	}
	return nil
}

// Get returns the raw value for key.
func (c RuntimeConfig) Get(key string) (any, bool) {
	v, ok := c[key]
	return v, ok
}
