/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bntool

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hyperledger/fabric-bignum/bccsp/bn/vectors"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func (t *tool) checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Checks arithmetic test vector files.",
		Long:  "Evaluates every block of each vector file and reports the blocks whose expected values disagree.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return t.check(cmd, args)
		},
	}
	cmd.Flags().Int("workers", 0, "number of files checked at once (default one per CPU)")
	t.bind("primes.workers", cmd.Flags(), "workers")
	return cmd
}

func (t *tool) check(cmd *cobra.Command, files []string) error {
	checker := vectors.NewChecker(vectors.NewMetrics(t.provider))
	results := make([]vectors.Result, len(files))

	workers := t.conf.Primes.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(workers)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			f, err := os.Open(file)
			if err != nil {
				return errors.Wrapf(err, "opening %s", file)
			}
			defer f.Close()
			res, err := checker.Run(ctx, filepath.Base(file), f)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var checked, failed int
	for i, res := range results {
		for _, failure := range res.Failures {
			fmt.Fprintf(out, "FAIL %s\n", failure)
		}
		fmt.Fprintf(out, "%s: %d checked, %d failed\n", files[i], res.Checked, len(res.Failures))
		checked += res.Checked
		failed += len(res.Failures)
	}
	if failed > 0 {
		return errors.Errorf("%d of %d vectors failed", failed, checked)
	}
	return nil
}
