package form

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ezquant/backlab/backlab/service"
)

const presetPrefix = "preset:"

// Load reads a form file from disk.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form file: %w", err)
	}

	state := NewState()
	if err := yaml.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parse form file: %w", err)
	}
	return state, nil
}

// Encode renders the state as a YAML form file.
func Encode(s *State) ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}
	return data, nil
}

// SavePreset stores the state under a name in the key-value store.
func SavePreset(kv service.KV, name string, s *State) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode preset %q: %w", name, err)
	}
	return kv.Set(presetPrefix+name, string(data))
}

// LoadPreset restores a named state from the key-value store.
func LoadPreset(kv service.KV, name string) (*State, error) {
	data, err := kv.Get(presetPrefix + name)
	if err != nil {
		return nil, fmt.Errorf("load preset %q: %w", name, err)
	}

	state := NewState()
	if err := yaml.Unmarshal([]byte(data), state); err != nil {
		return nil, fmt.Errorf("decode preset %q: %w", name, err)
	}
	return state, nil
}

// PresetName strips the storage prefix from a preset key.
func PresetName(key string) string {
	return strings.TrimPrefix(key, presetPrefix)
}

// PresetPattern matches every stored preset key.
const PresetPattern = presetPrefix + "*"
