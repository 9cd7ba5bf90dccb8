// Package configutil resolves rule option maps onto typed per-rule
// configuration structs.
package configutil

import (
	"reflect"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

// Resolve unmarshals the configured option map over typed defaults.
// Nil or empty options, and options that fail to load, return the defaults
// unchanged: rule configuration is fail-open by contract.
func Resolve[T any](opts map[string]any, defaults T) T {
	if len(opts) == 0 {
		return defaults
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(opts, "."), nil); err != nil {
		return defaults
	}

	var resolved T
	if err := k.Unmarshal("", &resolved); err != nil {
		return defaults
	}

	// Options only override what they set; zero-valued fields keep their
	// defaults.
	rv := reflect.ValueOf(&resolved).Elem()
	if rv.Kind() != reflect.Struct {
		return resolved
	}
	dv := reflect.ValueOf(defaults)
	for i := range rv.NumField() {
		field := rv.Field(i)
		if field.CanSet() && field.IsZero() {
			field.Set(dv.Field(i))
		}
	}
	return resolved
}
