// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"

	"github.com/momeni/clean-lending/pkg/core/usecase/dbinituc"
	"github.com/spf13/cobra"
)

var initProdCmd = &cobra.Command{
	Use:   "init-prod",
	Short: "Initialize database contents with production suitable data",
	Long: `Initialize database contents with production suitable data
for the database schema version which is specified in the configuration
file. The database connection information are also read from the config
file. No changes will be made to the config file itself.
` + credsRenewalMessage + `

The lendingX schema (X being the schema major version) is dropped if it
exists and created again with empty users, books, and loans tables.
The mutable settings of the config file are stored as their initial
values.`,
	RunE: initDB((*dbinituc.UseCase).InitProd),
	Args: cobra.NoArgs,
}

var initDevCmd = &cobra.Command{
	Use:   "init-dev",
	Short: "Initialize database contents with development sample data",
	Long: `Initialize database contents like the init-prod command, and
insert sample users (librarian as a staff member, alice, and bob) and
books which are suitable for development.
` + credsRenewalMessage,
	RunE: initDB((*dbinituc.UseCase).InitDev),
	Args: cobra.NoArgs,
}

func initDB(
	action func(uc *dbinituc.UseCase, ctx context.Context) error,
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		uc := dbinituc.New(c)
		if err = action(uc, cmd.Context()); err != nil {
			return fmt.Errorf("initializing DB: %w", err)
		}
		return nil
	}
}

func init() {
	dbCmd.AddCommand(initProdCmd, initDevCmd)
}
