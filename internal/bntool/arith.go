/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bntool

import (
	"fmt"

	"github.com/hyperledger/fabric-bignum/bccsp/bn"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (t *tool) modexpCmd() *cobra.Command {
	var consttime bool
	cmd := &cobra.Command{
		Use:   "modexp BASE EXP MOD [--consttime]",
		Short: "Computes BASE^EXP mod MOD.",
		Long:  "Computes BASE^EXP mod MOD. With --consttime the modulus must be odd and the base reduced.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return modexp(cmd, args, consttime)
		},
	}
	cmd.Flags().BoolVar(&consttime, "consttime", false, "use the constant-time Montgomery ladder")
	return cmd
}

func modexp(cmd *cobra.Command, args []string, consttime bool) error {
	base, err := parseInt("base", args[0])
	if err != nil {
		return err
	}
	exp, err := parseInt("exponent", args[1])
	if err != nil {
		return err
	}
	mod, err := parseInt("modulus", args[2])
	if err != nil {
		return err
	}

	r := new(bn.Int)
	if consttime {
		err = bn.ModExpMontConstTime(r, base, exp, mod, nil)
		r.Normalize()
	} else {
		err = bn.ModExp(r, base, exp, mod)
	}
	if err != nil {
		return errors.WithMessage(err, "modexp")
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatInt(r))
	return nil
}

func (t *tool) modinvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modinv A N",
		Short: "Computes the inverse of A modulo N.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return modinv(cmd, args)
		},
	}
}

func modinv(cmd *cobra.Command, args []string) error {
	a, err := parseInt("A", args[0])
	if err != nil {
		return err
	}
	n, err := parseInt("N", args[1])
	if err != nil {
		return err
	}
	r := new(bn.Int)
	if err := bn.ModInverse(r, a, n); err != nil {
		return errors.WithMessage(err, "modinv")
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatInt(r))
	return nil
}
