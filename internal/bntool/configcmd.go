/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bntool

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

func (t *tool) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Prints the effective configuration.",
		Long:  "Prints the configuration after applying the config file, BNTOOL_* environment variables and flags, as YAML.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := yaml.Marshal(t.conf)
			if err != nil {
				return errors.Wrap(err, "encoding config")
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
