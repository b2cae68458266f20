/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package viperutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperledger/fabric-bignum/bccsp/bn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Logging struct {
		Spec   string
		Format string
	}
	Primes struct {
		Bits    int
		Workers int
		Safe    bool
		Add     *bn.Int
		Rem     *bn.Int
		Timeout time.Duration
		Sizes   []string
	}
}

const testYAML = `---
Logging:
  Spec: bn=debug:info
Primes:
  Bits: 512
  Workers: 4
  Add: "0x18"
  Rem: 23
  Timeout: 90s
  Sizes: [256, 512]
`

func parse(t *testing.T, yaml string) (*testConfig, error) {
	c := New()
	c.SetConfigName("bntest")
	require.NoError(t, c.ReadConfig(strings.NewReader(yaml)))
	var conf testConfig
	err := c.EnhancedExactUnmarshal(&conf)
	return &conf, err
}

func TestEnhancedExactUnmarshal(t *testing.T) {
	conf, err := parse(t, testYAML)
	require.NoError(t, err)

	assert.Equal(t, "bn=debug:info", conf.Logging.Spec)
	assert.Equal(t, "", conf.Logging.Format)
	assert.Equal(t, 512, conf.Primes.Bits)
	assert.Equal(t, 4, conf.Primes.Workers)
	assert.False(t, conf.Primes.Safe)
	require.NotNil(t, conf.Primes.Add)
	assert.True(t, conf.Primes.Add.IsWord(24))
	require.NotNil(t, conf.Primes.Rem)
	assert.True(t, conf.Primes.Rem.IsWord(23))
	assert.Equal(t, 90*time.Second, conf.Primes.Timeout)
	assert.Equal(t, []string{"256", "512"}, conf.Primes.Sizes)
}

func TestEnhancedExactUnmarshalEnvironment(t *testing.T) {
	t.Setenv("BNTEST_PRIMES_WORKERS", "9")
	t.Setenv("BNTEST_PRIMES_SAFE", "true")
	t.Setenv("BNTEST_PRIMES_ADD", "0xffffffffffffffffffffffffffffffff")
	t.Setenv("BNTEST_PRIMES_SIZES", "[1024, 2048, 4096]")
	t.Setenv("BNTEST_LOGGING_FORMAT", "json")

	conf, err := parse(t, testYAML)
	require.NoError(t, err)

	assert.Equal(t, 9, conf.Primes.Workers)
	assert.True(t, conf.Primes.Safe)
	assert.Equal(t, "ffffffffffffffffffffffffffffffff", conf.Primes.Add.Hex())
	assert.Equal(t, []string{"1024", "2048", "4096"}, conf.Primes.Sizes)
	assert.Equal(t, "json", conf.Logging.Format)
}

func TestEnhancedExactUnmarshalErrors(t *testing.T) {
	t.Run("unknown key", func(t *testing.T) {
		_, err := parse(t, "Primes:\n  Bitz: 3\n")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Bitz")
	})

	t.Run("bad integer", func(t *testing.T) {
		_, err := parse(t, "Primes:\n  Add: 12zz\n")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid integer '12zz'")
	})

	t.Run("not a pointer", func(t *testing.T) {
		c := New()
		err := c.EnhancedExactUnmarshal(testConfig{})
		assert.EqualError(t, err, "supplied output argument must be a pointer to a struct but is not pointer")
	})

	t.Run("pointer to non-struct", func(t *testing.T) {
		c := New()
		var s string
		err := c.EnhancedExactUnmarshal(&s)
		assert.EqualError(t, err, "supplied output argument must be a pointer to a struct, but it is pointer to something else")
	})
}

func TestParseBigInt(t *testing.T) {
	tests := []struct {
		in  string
		hex string
		err string
	}{
		{in: "0", hex: "0"},
		{in: "255", hex: "ff"},
		{in: "0xFF", hex: "ff"},
		{in: "-0x10", hex: "-10"},
		{in: " 18446744073709551616 ", hex: "10000000000000000"},
		{in: "-0", hex: "0"},
		{in: "", err: "invalid integer '': no decimal digits: bn: bad encoding"},
		{in: "0x", err: "invalid integer '0x'"},
		{in: "12ab", err: "invalid integer '12ab': unexpected character at offset 2"},
		{in: "-0x12zz", err: "invalid integer '-0x12zz': unexpected character at offset 5"},
		{in: "0X1g", err: "invalid integer '0X1g': unexpected character at offset 3"},
		{in: "  -7x", err: "invalid integer '  -7x': unexpected character at offset 4"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			z, err := ParseBigInt(tc.in)
			if tc.err != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.hex, z.Hex())
		})
	}
}

func TestReadInConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bntest.yaml"), []byte(testYAML), 0o644))

	c := New()
	c.SetConfigName("bntest")
	c.AddConfigPaths(filepath.Join(dir, "missing"), dir)
	require.NoError(t, c.ReadInConfig())
	assert.Equal(t, filepath.Join(dir, "bntest.yaml"), c.ConfigFileUsed())

	var conf testConfig
	require.NoError(t, c.EnhancedExactUnmarshal(&conf))
	assert.Equal(t, 512, conf.Primes.Bits)
}

func TestReadInConfigMissing(t *testing.T) {
	c := New()
	c.SetConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, c.ReadInConfig())
}

func TestConfigFileUsedNotFound(t *testing.T) {
	c := New()
	c.SetConfigName("bntest")
	c.AddConfigPaths(t.TempDir())
	assert.Empty(t, c.ConfigFileUsed())
}

func TestConfigPaths(t *testing.T) {
	t.Setenv(EnvConfigPath, "/opt/bntool")
	assert.Equal(t, []string{"/opt/bntool", "."}, ConfigPaths())

	t.Setenv(EnvConfigPath, "")
	assert.Equal(t, []string{"."}, ConfigPaths())
}
