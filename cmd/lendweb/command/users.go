// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/momeni/clean-lending/pkg/adapter/db/postgres/usersrp"
	"github.com/momeni/clean-lending/pkg/core/repo"
	"github.com/momeni/clean-lending/pkg/core/usecase/usersuc"
	"github.com/spf13/cobra"
)

var staff bool

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Users management actions",
	Long: `Users management actions can be chosen by sub-commands.
Users are referenced by the bearer tokens (by their ids) and by the
loans, hence, a user who has borrowed a book may not be deleted.`,
}

var usersAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Add a user, optionally as a staff member",
	Args:  cobra.ExactArgs(1),
	RunE: withUsers(func(
		ctx context.Context, uc *usersuc.UseCase, args []string,
	) error {
		u, err := uc.Create(ctx, args[0], staff)
		if err != nil {
			return fmt.Errorf("adding %q user: %w", args[0], err)
		}
		fmt.Println(u.ID)
		return nil
	}),
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a user who has never borrowed a book",
	Args:  cobra.ExactArgs(1),
	RunE: withUsers(func(
		ctx context.Context, uc *usersuc.UseCase, args []string,
	) error {
		u, err := uc.GetByUsername(ctx, args[0])
		if err != nil {
			return fmt.Errorf("finding %q user: %w", args[0], err)
		}
		if err = uc.Delete(ctx, u.ID); err != nil {
			return fmt.Errorf("deleting %q user: %w", args[0], err)
		}
		return nil
	}),
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	Args:  cobra.NoArgs,
	RunE: withUsers(func(
		ctx context.Context, uc *usersuc.UseCase, _ []string,
	) error {
		uu, err := uc.List(ctx)
		if err != nil {
			return fmt.Errorf("listing users: %w", err)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tSTAFF")
		for _, u := range uu {
			fmt.Fprintf(w, "%s\t%s\t%t\n", u.ID, u.Username, u.IsStaff)
		}
		return w.Flush()
	}),
}

// withUsers connects to the database as the normal role and passes a
// users use case to the action.
func withUsers(
	action func(
		ctx context.Context, uc *usersuc.UseCase, args []string,
	) error,
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := c.ConnectionPool(ctx, repo.NormalRole)
		if err != nil {
			return fmt.Errorf("creating DB pool: %w", err)
		}
		defer p.Close()
		uc, err := c.NewUsersUseCase(p, usersrp.New())
		if err != nil {
			return fmt.Errorf("creating users use case: %w", err)
		}
		return action(ctx, uc, args)
	}
}

func init() {
	usersAddCmd.Flags().BoolVar(
		&staff, "staff", false, "grant staff privileges",
	)
	usersCmd.AddCommand(usersAddCmd, usersDeleteCmd, usersListCmd)
	rootCmd.AddCommand(usersCmd)
}
