/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package bntool implements the bntool command line: vector checking,
// primality testing, prime generation and modular arithmetic on the bn
// package.
package bntool

import (
	"fmt"
	"strings"

	"github.com/hyperledger/fabric-bignum/bccsp/bn"
	"github.com/hyperledger/fabric-bignum/common/flogging"
	fmetrics "github.com/hyperledger/fabric-bignum/common/flogging/metrics"
	"github.com/hyperledger/fabric-bignum/common/metrics"
	"github.com/hyperledger/fabric-bignum/common/metrics/disabled"
	bnprom "github.com/hyperledger/fabric-bignum/common/metrics/prometheus"
	"github.com/hyperledger/fabric-bignum/common/viperutil"
	"github.com/pkg/errors"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

var logger = flogging.MustGetLogger("bntool")

// tool carries state shared by the subcommands of one invocation.
type tool struct {
	v          *viper.Viper
	configFile string
	metrics    bool

	conf     *Config
	provider metrics.Provider
	registry *prom.Registry
}

// Cmd returns the root bntool command.
func Cmd() *cobra.Command {
	t := &tool{v: viper.New()}

	root := &cobra.Command{
		Use:           "bntool",
		Short:         "Multi-precision integer toolkit.",
		Long:          "Checks arithmetic test vectors, tests and generates primes and evaluates modular arithmetic.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return t.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return t.finish(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&t.configFile, "config", "", "path to a bntool.yaml config file")
	flags.String("log-spec", "", "logging spec, for example 'bn=debug:info'")
	flags.String("log-format", "", "log format: json, logfmt or a console format string")
	flags.BoolVar(&t.metrics, "metrics", false, "print collected metrics after the command")
	t.bind("logging.spec", flags, "log-spec")
	t.bind("logging.format", flags, "log-format")

	root.AddCommand(
		t.checkCmd(),
		t.primeCmd(),
		t.genprimeCmd(),
		t.modexpCmd(),
		t.modinvCmd(),
		t.configCmd(),
	)
	return root
}

// configKeyAnnotation marks a flag that overrides a config key.
const configKeyAnnotation = "bntool_config_key"

// bind records that flag name overrides key. Several subcommands may bind the
// same key; only the flags of the running command are bound to viper.
func (t *tool) bind(key string, flags *pflag.FlagSet, name string) {
	if err := flags.SetAnnotation(name, configKeyAnnotation, []string{key}); err != nil {
		panic(err)
	}
}

func (t *tool) bindFlags(cmd *cobra.Command) error {
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		keys := f.Annotations[configKeyAnnotation]
		if len(keys) == 0 || err != nil {
			return
		}
		err = t.v.BindPFlag(keys[0], f)
	})
	return err
}

func (t *tool) setup(cmd *cobra.Command) error {
	if err := t.bindFlags(cmd); err != nil {
		return errors.Wrap(err, "binding flags")
	}
	conf, err := LoadConfig(t.configFile, t.v)
	if err != nil {
		return err
	}
	t.conf = conf

	err = flogging.Global.Apply(flogging.Config{
		Format:  conf.Logging.Format,
		LogSpec: conf.Logging.Spec,
		Writer:  zapcore.Lock(zapcore.AddSync(cmd.ErrOrStderr())),
	})
	if err != nil {
		return errors.WithMessage(err, "initializing logging")
	}

	if t.metrics || conf.Metrics.Provider == "prometheus" {
		t.registry = prom.NewRegistry()
		t.provider = &bnprom.Provider{Registerer: t.registry}
		flogging.SetObserver(fmetrics.NewObserver(t.provider))
	} else {
		t.provider = &disabled.Provider{}
		flogging.SetObserver(nil)
	}
	logger.Debugf("running %s with metrics provider %s", cmd.CommandPath(), conf.Metrics.Provider)
	return nil
}

func (t *tool) finish(cmd *cobra.Command) error {
	if !t.metrics || t.registry == nil {
		return nil
	}
	samples, err := bnprom.Gather(t.registry, "")
	if err != nil {
		return errors.Wrap(err, "gathering metrics")
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "# metrics")
	for _, s := range samples {
		fmt.Fprintln(out, s)
	}
	return nil
}

// parseInt reads a command line integer, hexadecimal with a 0x prefix and
// decimal otherwise.
func parseInt(name, s string) (*bn.Int, error) {
	z, err := viperutil.ParseBigInt(s)
	if err != nil {
		return nil, errors.WithMessagef(err, "invalid %s", name)
	}
	return z, nil
}

// formatInt renders z the way parseInt reads hexadecimal input.
func formatInt(z *bn.Int) string {
	h := z.Hex()
	if strings.HasPrefix(h, "-") {
		return "-0x" + h[1:]
	}
	return "0x" + h
}
