/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bntool

import (
	"fmt"

	"github.com/cheggaaa/pb"
	"github.com/hyperledger/fabric-bignum/bccsp/bn"
	"github.com/hyperledger/fabric-bignum/bccsp/bn/primegen"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (t *tool) primeCmd() *cobra.Command {
	var enhanced bool
	cmd := &cobra.Command{
		Use:   "prime [--checks N] [--no-trial-division] [--enhanced] NUMBER...",
		Short: "Tests numbers for primality.",
		Long:  "Classifies each NUMBER, hexadecimal when prefixed with 0x and decimal otherwise, as probably prime or composite.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return t.prime(cmd, args, enhanced)
		},
	}
	flags := cmd.Flags()
	flags.Int("checks", 0, "Miller-Rabin rounds (default from config)")
	flags.Bool("no-trial-division", false, "skip trial division by small primes")
	flags.BoolVar(&enhanced, "enhanced", false, "run the enhanced Miller-Rabin test, which also reports prime powers")
	t.bind("primes.checks", flags, "checks")
	t.bind("primes.notrialdivision", flags, "no-trial-division")
	return cmd
}

func (t *tool) prime(cmd *cobra.Command, args []string, enhanced bool) error {
	checks := t.conf.Primes.Checks
	out := cmd.OutOrStdout()
	for _, arg := range args {
		w, err := parseInt("number", arg)
		if err != nil {
			return err
		}
		var verdict string
		if enhanced {
			verdict, err = classifyEnhanced(w, checks)
		} else {
			var ok bool
			ok, err = bn.PrimalityTest(w, checks, t.conf.Primes.TrialDivision, nil)
			verdict = bn.Composite.String()
			if ok {
				verdict = bn.ProbablyPrime.String()
			}
		}
		if err != nil {
			return errors.WithMessagef(err, "testing %s", arg)
		}
		fmt.Fprintf(out, "%s: %s\n", arg, verdict)
	}
	return nil
}

// classifyEnhanced answers the inputs the enhanced test does not accept
// directly.
func classifyEnhanced(w *bn.Int, checks int) (string, error) {
	switch {
	case w.CmpWord(3) <= 0 && w.CmpWord(2) >= 0:
		return bn.ProbablyPrime.String(), nil
	case w.CmpWord(1) <= 0, !w.IsOdd():
		return bn.Composite.String(), nil
	}
	res, err := bn.EnhancedMillerRabin(w, checks, nil)
	if err != nil {
		return "", err
	}
	return res.String(), nil
}

func (t *tool) genprimeCmd() *cobra.Command {
	var (
		bits, count int
		progress    bool
	)
	cmd := &cobra.Command{
		Use:   "genprime --bits B [--safe] [--count N] [--add A [--rem R]] [--progress]",
		Short: "Generates random primes.",
		Long:  "Generates COUNT primes of exactly B bits concurrently and prints them in hexadecimal.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return t.genprime(cmd, bits, count, progress)
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&bits, "bits", 0, "size of each prime in bits")
	flags.IntVar(&count, "count", 1, "number of primes to generate")
	flags.BoolVar(&progress, "progress", false, "show a progress bar on stderr")
	flags.Bool("safe", false, "generate safe primes, where (p-1)/2 is also prime")
	flags.Int("workers", 0, "number of primes generated at once (default one per CPU)")
	flags.String("add", "", "generate primes p with p mod ADD == REM")
	flags.String("rem", "", "remainder for --add (default 1, or 3 with --safe)")
	t.bind("primes.safe", flags, "safe")
	t.bind("primes.workers", flags, "workers")
	t.bind("primes.add", flags, "add")
	t.bind("primes.rem", flags, "rem")
	if err := cmd.MarkFlagRequired("bits"); err != nil {
		panic(err)
	}
	return cmd
}

func (t *tool) genprime(cmd *cobra.Command, bits, count int, progress bool) error {
	if count < 1 {
		return errors.Errorf("invalid count %d", count)
	}
	g := &primegen.Generator{
		Bits:    bits,
		Safe:    t.conf.Primes.Safe,
		Checks:  t.conf.Primes.Checks,
		Workers: t.conf.Primes.Workers,
		Add:     t.conf.Primes.Add,
		Rem:     t.conf.Primes.Rem,
		Metrics: primegen.NewMetrics(t.provider),
	}
	if progress {
		bar := pb.New(count).Prefix("primes ")
		bar.Output = cmd.ErrOrStderr()
		bar.ShowTimeLeft = false
		g.Progress = func(event bn.GenEvent, _ int) {
			if event == bn.GenFound {
				bar.Increment()
			}
		}
		bar.Start()
		defer bar.Finish()
	}
	primes, err := g.Generate(cmd.Context(), count)
	if err != nil {
		return errors.WithMessagef(err, "generating %d-bit primes", bits)
	}
	out := cmd.OutOrStdout()
	for _, p := range primes {
		fmt.Fprintln(out, formatInt(p))
	}
	return nil
}
