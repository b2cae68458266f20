/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bntool

import (
	"bytes"

	"github.com/hyperledger/fabric-bignum/bccsp/bn"
	"github.com/hyperledger/fabric-bignum/common/viperutil"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// Prefix is both the config file stem and the environment override prefix.
const Prefix = "bntool"

// Config is the bntool configuration.
type Config struct {
	Logging Logging `yaml:"Logging"`
	Primes  Primes  `yaml:"Primes"`
	Metrics Metrics `yaml:"Metrics"`
}

// Logging configures common/flogging.
type Logging struct {
	Spec   string `yaml:"Spec"`
	Format string `yaml:"Format"`
}

// Primes configures primality testing and prime generation.
type Primes struct {
	// Checks is the number of Miller-Rabin rounds used to test or re-validate
	// a prime.
	Checks        int  `yaml:"Checks"`
	TrialDivision bool `yaml:"TrialDivision"`
	// Workers bounds concurrent generation and vector checking. Zero means
	// one per CPU.
	Workers int  `yaml:"Workers"`
	Safe    bool `yaml:"Safe"`
	// Add and Rem restrict generated primes to p mod Add == Rem. A nil Rem
	// means 1, or 3 for safe primes.
	Add *bn.Int `yaml:"Add,omitempty"`
	Rem *bn.Int `yaml:"Rem,omitempty"`
}

// Metrics selects the metrics provider, "prometheus" or "disabled".
type Metrics struct {
	Provider string `yaml:"Provider"`
}

// Defaults returns the configuration used when no file or override sets a
// value.
func Defaults() *Config {
	return &Config{
		Logging: Logging{Spec: "info", Format: ""},
		Primes: Primes{
			Checks:        bn.ChecksForValidation,
			TrialDivision: true,
		},
		Metrics: Metrics{Provider: "disabled"},
	}
}

// LoadConfig reads configFile, or bntool.yaml from the config paths when it
// is empty, applies BNTOOL_* environment overrides and finally any flags
// set in v.
func LoadConfig(configFile string, v *viper.Viper) (*Config, error) {
	conf := Defaults()

	p := viperutil.New()
	p.SetConfigName(Prefix)
	if configFile != "" {
		p.SetConfigFile(configFile)
	}
	if p.ConfigFileUsed() != "" {
		if err := p.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config %s", p.ConfigFileUsed())
		}
		logger.Debugf("loaded config from %s", p.ConfigFileUsed())
	} else {
		// Every section is present so environment overrides apply to it.
		defaults, err := yaml.Marshal(conf)
		if err != nil {
			return nil, errors.Wrap(err, "encoding default config")
		}
		if err := p.ReadConfig(bytes.NewReader(defaults)); err != nil {
			return nil, errors.Wrap(err, "reading default config")
		}
	}
	if err := p.EnhancedExactUnmarshal(conf); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}

	if v != nil {
		if err := conf.applyFlags(v); err != nil {
			return nil, err
		}
	}
	if err := conf.validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *Config) applyFlags(v *viper.Viper) error {
	if v.IsSet("logging.spec") {
		c.Logging.Spec = v.GetString("logging.spec")
	}
	if v.IsSet("logging.format") {
		c.Logging.Format = v.GetString("logging.format")
	}
	if v.IsSet("primes.checks") {
		c.Primes.Checks = v.GetInt("primes.checks")
	}
	if v.IsSet("primes.notrialdivision") && v.GetBool("primes.notrialdivision") {
		c.Primes.TrialDivision = false
	}
	if v.IsSet("primes.workers") {
		c.Primes.Workers = v.GetInt("primes.workers")
	}
	if v.IsSet("primes.safe") {
		c.Primes.Safe = v.GetBool("primes.safe")
	}
	if v.IsSet("metrics.provider") {
		c.Metrics.Provider = v.GetString("metrics.provider")
	}
	for key, dst := range map[string]**bn.Int{"primes.add": &c.Primes.Add, "primes.rem": &c.Primes.Rem} {
		if !v.IsSet(key) {
			continue
		}
		z, err := viperutil.ParseBigInt(v.GetString(key))
		if err != nil {
			return errors.WithMessagef(err, "flag %s", key)
		}
		*dst = z
	}
	return nil
}

func (c *Config) validate() error {
	if c.Primes.Checks < 0 {
		return errors.Errorf("invalid Primes.Checks %d", c.Primes.Checks)
	}
	if c.Primes.Workers < 0 {
		return errors.Errorf("invalid Primes.Workers %d", c.Primes.Workers)
	}
	if c.Primes.Rem != nil && c.Primes.Add == nil {
		return errors.New("Primes.Rem requires Primes.Add")
	}
	switch c.Metrics.Provider {
	case "prometheus", "disabled":
	default:
		return errors.Errorf("unknown metrics provider '%s'", c.Metrics.Provider)
	}
	return nil
}
