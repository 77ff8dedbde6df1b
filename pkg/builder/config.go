package builder

import (
	"github.com/joeydtaylor/sparsewave/pkg/internal/config"
	"github.com/spf13/viper"
)

type Config = config.Config

// ConfigEnvPrefix prefixes environment overrides.
const ConfigEnvPrefix = config.EnvPrefix

// NewConfigViper returns a viper instance with every default registered and
// environment overrides bound; file is optional.
func NewConfigViper(file string) (*viper.Viper, error) {
	return config.NewViper(file)
}

// LoadConfig decodes and validates v.
func LoadConfig(v *viper.Viper) (*Config, error) {
	return config.Load(v)
}

// LoadConfigFile loads defaults, file and environment.
func LoadConfigFile(file string) (*Config, error) {
	return config.LoadFile(file)
}

// ConfigSizeModel resolves "default", "analysis" or "wire".
func ConfigSizeModel(name string) (SizeModel, error) {
	return config.SizeModel(name)
}
