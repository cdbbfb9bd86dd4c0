package cli

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/neurobridge/neurobridge/internal/model"
)

// loadConfig materializes the layered configuration: built-in defaults,
// overlaid with whatever viper has merged from the config file and
// NEUROBRIDGE_* environment variables. Commands apply their own flags on
// top of the result.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	cfg.Output.Verbose = verbose
	return cfg, nil
}
