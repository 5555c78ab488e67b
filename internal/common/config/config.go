package config

import (
	"bytes"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const envPrefix = "FAIRDIV"

// LoadConfig decodes defaults, a YAML document, into config and then merges userSpecifiedConfigs on top in order.
// Environment variables prefixed with FAIRDIV_ override both, e.g., FAIRDIV_BARRIER_DECAY for barrier.decay.
// The result is validated using its validate struct tags.
func LoadConfig(config interface{}, defaults []byte, userSpecifiedConfigs []string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, errors.Wrap(err, "error reading default config")
	}

	for _, path := range userSpecifiedConfigs {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, errors.Wrapf(err, "error reading config from %s", path)
		}
		log.Debugf("merged config from %s", path)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.Unmarshal(config, CustomHooks...); err != nil {
		return nil, errors.Wrap(err, "error decoding config")
	}
	if err := validator.New().Struct(config); err != nil {
		LogValidationErrors(err)
		return nil, errors.Wrap(err, "invalid config")
	}
	return v, nil
}
