package configutil

import (
	"reflect"
	"testing"
)

type testOptions struct {
	Allow []string `koanf:"allow"`
	Limit int      `koanf:"limit"`
}

func TestResolve(t *testing.T) {
	defaults := testOptions{Limit: 10}

	t.Run("nil options keep defaults", func(t *testing.T) {
		got := Resolve(nil, defaults)
		if !reflect.DeepEqual(got, defaults) {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("set fields override", func(t *testing.T) {
		got := Resolve(map[string]any{"allow": []any{"a.", "b."}, "limit": 3}, defaults)
		if !reflect.DeepEqual(got.Allow, []string{"a.", "b."}) || got.Limit != 3 {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("unset fields keep defaults", func(t *testing.T) {
		got := Resolve(map[string]any{"allow": []any{"a."}}, defaults)
		if got.Limit != 10 {
			t.Errorf("Limit = %d, want default 10", got.Limit)
		}
	})

	t.Run("unknown keys ignored", func(t *testing.T) {
		got := Resolve(map[string]any{"mystery": true}, defaults)
		if got.Limit != 10 {
			t.Errorf("got %+v", got)
		}
	})
}
