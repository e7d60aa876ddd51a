package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Settings is the engine configuration read from quill.yml in the target
// project, with flag overrides applied by the commands. Every field is
// optional.
type Settings struct {
	StorePath  string // custom template store; empty means the embedded one
	Workers    int    // analyzer worker count; 0 means one per CPU
	OnConflict string // default blocking-conflict resolution
}

// LoadSettings reads quill.yml from dir if present. A missing file is not
// an error; a malformed one is.
func LoadSettings(dir string) (*Settings, error) {
	v := viper.New()
	v.SetConfigName("quill")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.AutomaticEnv()
	v.SetEnvPrefix("QUILL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("reading quill.yml: %w", err)
	}

	return &Settings{
		StorePath:  v.GetString("store.path"),
		Workers:    v.GetInt("analyzer.workers"),
		OnConflict: v.GetString("generate.on_conflict"),
	}, nil
}
