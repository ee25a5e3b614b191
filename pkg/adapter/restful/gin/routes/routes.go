// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package routes contains all resource packages and facilitates
// instantiation and registration of all repo, use case, and resource
// packages based on the user provided configuration settings.
package routes

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/momeni/clean-lending/pkg/adapter/config/cfg1"
	"github.com/momeni/clean-lending/pkg/adapter/db/postgres/booksrp"
	"github.com/momeni/clean-lending/pkg/adapter/db/postgres/loansrp"
	"github.com/momeni/clean-lending/pkg/adapter/db/postgres/settingsrp"
	"github.com/momeni/clean-lending/pkg/adapter/db/postgres/usersrp"
	"github.com/momeni/clean-lending/pkg/adapter/restful/gin/auth"
	"github.com/momeni/clean-lending/pkg/adapter/restful/gin/booksrs"
	"github.com/momeni/clean-lending/pkg/adapter/restful/gin/loansrs"
	"github.com/momeni/clean-lending/pkg/adapter/restful/gin/settingsrs"
	"github.com/momeni/clean-lending/pkg/adapter/restful/gin/usersrs"
	"github.com/momeni/clean-lending/pkg/core/repo"
	"github.com/momeni/clean-lending/pkg/core/usecase/appuc"
	"github.com/momeni/clean-lending/pkg/core/usecase/booksuc"
	"github.com/momeni/clean-lending/pkg/core/usecase/usersuc"
)

// Prefix is the path prefix of all REST APIs.
const Prefix = "/api/lendweb/v1"

// UseCases groups the use cases which are adapted by the resources.
// The loans use case is obtained from App, so it follows the settings.
type UseCases struct {
	App   *appuc.UseCase
	Books *booksuc.UseCase
	Users *usersuc.UseCase
}

// Register instantiates the PostgreSQL repositories and the use cases
// based on the c configuration settings and mounts their resources on
// the e engine. The p connections pool is passed to the use cases, so
// they may acquire connections and transactions on demand and pass
// them to the repositories. The application use case is reloaded, so
// the mutable settings are fetched from the database before the loans
// use case is instantiated.
func Register(
	ctx context.Context, e *gin.Engine, p repo.Pool, c *cfg1.Config,
) error {
	settingsRepo := settingsrp.New(c)
	loansRepo := loansrp.New()
	booksRepo := booksrp.New()
	usersRepo := usersrp.New()

	app, err := c.NewAppUseCase(p, settingsRepo, loansRepo, booksRepo)
	if err != nil {
		return fmt.Errorf("creating application use case: %w", err)
	}
	if err = app.Reload(ctx); err != nil {
		return fmt.Errorf("reloading use cases based on DB: %w", err)
	}
	books, err := c.NewBooksUseCase(p, booksRepo)
	if err != nil {
		return fmt.Errorf("creating books use case: %w", err)
	}
	users, err := c.NewUsersUseCase(p, usersRepo)
	if err != nil {
		return fmt.Errorf("creating users use case: %w", err)
	}
	Mount(e, c.Auth.NewAuthenticator(), UseCases{
		App: app, Books: books, Users: users,
	})
	return nil
}

// Mount registers all resources under the Prefix path. Browsing the
// books catalog is public, while other APIs are behind the authn bearer
// token authentication middleware.
func Mount(e *gin.Engine, authn *auth.Authenticator, ucs UseCases) {
	public := e.Group(Prefix)
	r := e.Group(Prefix, authn.Middleware())
	settingsrs.Register(r, ucs.App)
	loansrs.Register(r, ucs.App.LoansUseCase)
	booksrs.Register(public, r, ucs.Books)
	usersrs.Register(r, ucs.Users)
}
