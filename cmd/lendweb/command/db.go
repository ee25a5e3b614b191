// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import "github.com/spf13/cobra"

const credsRenewalMessage = `
Passwords of the admin and normal database roles are renewed and stored
in the .pgpass file of the configured pass-dir. The admin role password
must be present there beforehand.`

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management actions",
	Long: `Database management actions can be chosen by sub-commands.
For fresh installation in a development or production environment,
the init-dev or init-prod may be used.`,
}

func init() {
	rootCmd.AddCommand(dbCmd)
}
