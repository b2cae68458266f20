/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bntool

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `---
Logging:
  Spec: bn=debug:warn
Primes:
  Checks: 10
  Workers: 2
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "bntool.yaml")
	require.NoError(t, os.WriteFile(file, []byte(contents), 0o644))
	return file
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("BNTOOL_CFG_PATH", t.TempDir())
	conf, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), conf)
}

func TestLoadSampleConfig(t *testing.T) {
	conf, err := LoadConfig("../../sampleconfig/bntool.yaml", nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), conf)
}

func TestLoadConfigEnvironmentWithoutFile(t *testing.T) {
	t.Setenv("BNTOOL_CFG_PATH", t.TempDir())
	t.Setenv("BNTOOL_PRIMES_CHECKS", "5")
	t.Setenv("BNTOOL_METRICS_PROVIDER", "prometheus")
	conf, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, 5, conf.Primes.Checks)
	assert.Equal(t, "prometheus", conf.Metrics.Provider)
	assert.True(t, conf.Primes.TrialDivision)
}

func TestLoadConfigSearchPath(t *testing.T) {
	file := writeConfig(t, testConfigYAML)
	t.Setenv("BNTOOL_CFG_PATH", filepath.Dir(file))
	conf, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, 10, conf.Primes.Checks)
}

func TestLoadConfigPrecedence(t *testing.T) {
	file := writeConfig(t, testConfigYAML)
	t.Setenv("BNTOOL_PRIMES_WORKERS", "3")
	t.Setenv("BNTOOL_PRIMES_SAFE", "true")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("checks", 0, "")
	flags.Bool("no-trial-division", false, "")
	flags.String("log-format", "", "")
	require.NoError(t, flags.Parse([]string{"--checks=7", "--no-trial-division"}))
	v := viper.New()
	require.NoError(t, v.BindPFlag("primes.checks", flags.Lookup("checks")))
	require.NoError(t, v.BindPFlag("primes.notrialdivision", flags.Lookup("no-trial-division")))
	require.NoError(t, v.BindPFlag("logging.format", flags.Lookup("log-format")))

	conf, err := LoadConfig(file, v)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Logging: Logging{Spec: "bn=debug:warn"},
		Primes: Primes{
			Checks:        7,
			TrialDivision: false,
			Workers:       3,
			Safe:          true,
		},
		Metrics: Metrics{Provider: "disabled"},
	}, conf)
}

func TestLoadConfigResidue(t *testing.T) {
	file := writeConfig(t, "Primes:\n  Add: \"0x100000000000000000000000000000000\"\n  Rem: 1\n")
	conf, err := LoadConfig(file, nil)
	require.NoError(t, err)
	require.NotNil(t, conf.Primes.Add)
	assert.Equal(t, 129, conf.Primes.Add.BitLen())
	require.NotNil(t, conf.Primes.Rem)
	assert.True(t, conf.Primes.Rem.IsOne())

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("add", "", "")
	flags.String("rem", "", "")
	require.NoError(t, flags.Parse([]string{"--add=0x18", "--rem=23"}))
	v := viper.New()
	require.NoError(t, v.BindPFlag("primes.add", flags.Lookup("add")))
	require.NoError(t, v.BindPFlag("primes.rem", flags.Lookup("rem")))
	conf, err = LoadConfig(file, v)
	require.NoError(t, err)
	assert.True(t, conf.Primes.Add.IsWord(24))
	assert.True(t, conf.Primes.Rem.IsWord(23))

	require.NoError(t, flags.Set("add", "0x18zz"))
	_, err = LoadConfig(file, v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flag primes.add: invalid integer '0x18zz': unexpected character at offset 4")
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		err  string
	}{
		{
			name: "unknown key",
			yaml: "Primes:\n  Bits: 12\n",
			err:  "decoding config",
		},
		{
			name: "negative checks",
			yaml: "Primes:\n  Checks: -1\n",
			err:  "invalid Primes.Checks -1",
		},
		{
			name: "negative workers",
			yaml: "Primes:\n  Workers: -4\n",
			err:  "invalid Primes.Workers -4",
		},
		{
			name: "rem without add",
			yaml: "Primes:\n  Rem: 3\n",
			err:  "Primes.Rem requires Primes.Add",
		},
		{
			name: "bad add",
			yaml: "Primes:\n  Add: 12zz\n",
			err:  "invalid integer '12zz'",
		},
		{
			name: "unknown provider",
			yaml: "Metrics:\n  Provider: statsd\n",
			err:  "unknown metrics provider 'statsd'",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.yaml), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Contains(t, err.Error(), "reading config")
}
