/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bntool

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperledger/fabric-bignum/bccsp/bn"
	"github.com/hyperledger/fabric-bignum/common/flogging"
	"github.com/hyperledger/fabric-bignum/common/viperutil"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

const vectorFile = "../../bccsp/bn/vectors/testdata/bn_tests.txt"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(viperutil.EnvConfigPath, t.TempDir())
	t.Cleanup(func() {
		flogging.SetObserver(nil)
		flogging.Reset()
	})

	var out, errOut bytes.Buffer
	cmd := Cmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}

func TestCheck(t *testing.T) {
	out, err := run(t, "check", vectorFile, vectorFile, "--workers", "2")
	require.NoError(t, err)
	assert.NotContains(t, out, "FAIL")
	l := lines(out)
	require.Len(t, l, 2)
	assert.Regexp(t, `bn_tests\.txt: \d+ checked, 0 failed$`, l[0])
	assert.Equal(t, l[0], l[1])
}

func TestCheckFailures(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("Sum = 4\nA = 1\nB = 2\n\nSum = 3\nA = 1\nB = 2\n"), 0o644))

	out, err := run(t, "check", bad)
	assert.EqualError(t, err, "1 of 2 vectors failed")
	assert.Equal(t, []string{
		"FAIL bad.txt: line 1: A + B: got 3, want 4: vectors: mismatch",
		bad + ": 2 checked, 1 failed",
	}, lines(out))

	_, err = run(t, "check", filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening")

	_, err = run(t, "check")
	assert.EqualError(t, err, "requires at least 1 arg(s), only received 0")
}

func TestPrime(t *testing.T) {
	out, err := run(t, "prime", "7", "0x1f", "561", "1", "0xffffffffffffffc5")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"7: probably prime",
		"0x1f: probably prime",
		"561: composite",
		"1: composite",
		"0xffffffffffffffc5: probably prime",
	}, lines(out))

	out, err = run(t, "prime", "--checks", "40", "--no-trial-division", "25326001")
	require.NoError(t, err)
	assert.Equal(t, "25326001: composite\n", out)

	out, err = run(t, "prime", "--enhanced", "2", "7", "9", "16")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"2: probably prime",
		"7: probably prime",
		"9: composite",
		"16: composite",
	}, lines(out))

	_, err = run(t, "prime", "12z")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid number")
}

func TestGenprime(t *testing.T) {
	out, err := run(t, "genprime", "--bits", "64", "--count", "3", "--workers", "2", "--metrics")
	require.NoError(t, err)

	l := lines(out)
	require.GreaterOrEqual(t, len(l), 4)
	for _, s := range l[:3] {
		require.True(t, strings.HasPrefix(s, "0x"), s)
		p, err := viperutil.ParseBigInt(s)
		require.NoError(t, err)
		assert.Equal(t, 64, p.BitLen())
		ok, err := bn.IsPrime(p)
		require.NoError(t, err)
		assert.True(t, ok, s)
	}
	assert.Equal(t, "# metrics", l[3])
	assert.Contains(t, l[4:], `bn_primegen_generated{safe="false"} 3`)
	assert.Contains(t, l[4:], `bn_primegen_duration_count{safe="false"} 3`)

	out, err = run(t, "genprime", "--bits", "32", "--safe")
	require.NoError(t, err)
	p, err := viperutil.ParseBigInt(strings.TrimSpace(out))
	require.NoError(t, err)
	q := new(bn.Int).Rsh(p, 1)
	ok, err := bn.IsPrime(q)
	require.NoError(t, err)
	assert.True(t, ok, "(p-1)/2 of %s", p)

	out, err = run(t, "genprime", "--bits", "64", "--count", "2", "--add", "0x18", "--rem", "23")
	require.NoError(t, err)
	l = lines(out)
	require.Len(t, l, 2)
	for _, s := range l {
		p, err := viperutil.ParseBigInt(s)
		require.NoError(t, err)
		assert.Equal(t, 64, p.BitLen())
		rem, err := p.ModWord(24)
		require.NoError(t, err)
		assert.Equal(t, bn.Word(23), rem, s)
	}

	out, err = run(t, "genprime", "--bits", "12", "--safe", "--add", "12", "--rem", "11")
	require.NoError(t, err)
	p, err = viperutil.ParseBigInt(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, 12, p.BitLen())
	rem, err := p.ModWord(12)
	require.NoError(t, err)
	assert.Equal(t, bn.Word(11), rem)

	_, err = run(t, "genprime", "--bits", "64", "--add", "12", "--rem", "3")
	assert.True(t, errors.Is(err, bn.ErrInvalidInput), "got %v", err)

	out, err = run(t, "genprime", "--bits", "48", "--count", "3", "--progress")
	require.NoError(t, err)
	l = lines(out)
	require.Len(t, l, 3)
	for _, s := range l {
		require.True(t, strings.HasPrefix(s, "0x"), s)
	}

	_, err = run(t, "genprime", "--bits", "64", "--rem", "3")
	assert.EqualError(t, err, "Primes.Rem requires Primes.Add")

	_, err = run(t, "genprime")
	assert.EqualError(t, err, `required flag(s) "bits" not set`)

	_, err = run(t, "genprime", "--bits", "1")
	assert.True(t, errors.Is(err, bn.ErrBitsTooSmall), "got %v", err)

	_, err = run(t, "genprime", "--bits", "64", "--count", "0")
	assert.EqualError(t, err, "invalid count 0")
}

func TestModexp(t *testing.T) {
	out, err := run(t, "modexp", "4", "13", "497")
	require.NoError(t, err)
	assert.Equal(t, "0x1bd\n", out)

	out, err = run(t, "modexp", "0x4", "0xd", "0x1f1", "--consttime")
	require.NoError(t, err)
	assert.Equal(t, "0x1bd\n", out)

	_, err = run(t, "modexp", "3", "5", "10", "--consttime")
	assert.True(t, errors.Is(err, bn.ErrCalledWithEvenModulus), "got %v", err)

	_, err = run(t, "modexp", "3", "5")
	assert.EqualError(t, err, "accepts 3 arg(s), received 2")
}

func TestModinv(t *testing.T) {
	out, err := run(t, "modinv", "3", "11")
	require.NoError(t, err)
	assert.Equal(t, "0x4\n", out)

	_, err = run(t, "modinv", "2", "4")
	assert.True(t, errors.Is(err, bn.ErrNoInverse), "got %v", err)
}

func TestConfigCommand(t *testing.T) {
	out, err := run(t, "config")
	require.NoError(t, err)
	var conf Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &conf))
	assert.Equal(t, Defaults(), &conf)

	file := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte(testConfigYAML), 0o644))
	out, err = run(t, "config", "--config", file, "--log-format", "json")
	require.NoError(t, err)
	conf = Config{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &conf))
	assert.Equal(t, "bn=debug:warn", conf.Logging.Spec)
	assert.Equal(t, "json", conf.Logging.Format)
	assert.Equal(t, 10, conf.Primes.Checks)
	assert.Equal(t, 2, conf.Primes.Workers)

	require.NoError(t, os.WriteFile(file, []byte(testConfigYAML+"  Add: \"0x18\"\n  Rem: 23\n"), 0o644))
	out, err = run(t, "config", "--config", file)
	require.NoError(t, err)
	assert.Contains(t, out, `Add: "24"`)
	conf = Config{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &conf))
	require.NotNil(t, conf.Primes.Add)
	assert.True(t, conf.Primes.Add.IsWord(24))
	require.NotNil(t, conf.Primes.Rem)
	assert.True(t, conf.Primes.Rem.IsWord(23))
}

func TestBadLogSpec(t *testing.T) {
	_, err := run(t, "config", "--log-spec", "bn=bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initializing logging")
}
