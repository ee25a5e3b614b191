// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gin_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/momeni/clean-lending/internal/test/memdb"
	"github.com/momeni/clean-lending/pkg/adapter/config/cfg1"
	"github.com/momeni/clean-lending/pkg/adapter/restful/gin"
	"github.com/momeni/clean-lending/pkg/adapter/restful/gin/auth"
	"github.com/momeni/clean-lending/pkg/adapter/restful/gin/routes"
	"github.com/momeni/clean-lending/pkg/core/model"
	"github.com/momeni/clean-lending/pkg/core/repo"
	"github.com/momeni/clean-lending/pkg/core/usecase/appuc"
	"github.com/stretchr/testify/suite"
)

const secret = "gin-test-secret"

const config = `
gin: {logger: true, recovery: true}
auth: {jwt-secret: ` + secret + `}
usecases:
  loans:
    max-active-loans: 2
    max-active-loans-maximum: 3
versions: {database: 1.0.0, config: 1.0.0}
`

// settingsRepo keeps the mutable settings of a cfg1.Config in memory.
type settingsRepo struct {
	confs *cfg1.Config
}

func (r *settingsRepo) Conn(repo.Conn) appuc.SettingsConnQueryer {
	return r
}

func (r *settingsRepo) Tx(repo.Tx) appuc.SettingsTxQueryer {
	return r
}

func (r *settingsRepo) Fetch(context.Context) (
	appuc.Builder, *model.VisibleSettings, *model.Settings,
	*model.Settings, error,
) {
	minb, maxb := r.confs.Bounds()
	return r.confs, r.confs.Visible(), minb, maxb, nil
}

func (r *settingsRepo) Update(_ context.Context, s *model.Settings) (
	appuc.Builder, *model.VisibleSettings, *model.Settings,
	*model.Settings, error,
) {
	confs := r.confs.Clone()
	if err := confs.Apply(s); err != nil {
		return nil, nil, nil, nil, err
	}
	r.confs = confs
	return r.Fetch(context.Background())
}

type GinTestSuite struct {
	suite.Suite

	DB  *memdb.DB
	Gin *gin.Engine

	Librarian, Alice, Bob model.User
	Books                 []model.Book
}

func TestGinTestSuite(t *testing.T) {
	suite.Run(t, new(GinTestSuite))
}

func (ts *GinTestSuite) SetupTest() {
	ctx := context.Background()
	c, err := cfg1.Load([]byte(config))
	ts.Require().NoError(err)
	ts.DB = memdb.New()
	ts.Librarian = ts.DB.AddUser("librarian", true)
	ts.Alice = ts.DB.AddUser("alice", false)
	ts.Bob = ts.DB.AddUser("bob", false)
	ts.Books = []model.Book{
		ts.DB.AddBook("Dune", "Frank Herbert", "9780441172719"),
		ts.DB.AddBook("Emma", "Jane Austen", "9780141439587"),
		ts.DB.AddBook("Ulysses", "James Joyce", "9780199535675"),
		ts.DB.AddBook("Walden", "Henry Thoreau", "9780691096124"),
	}

	app, err := c.NewAppUseCase(
		ts.DB, &settingsRepo{confs: c}, ts.DB.Loans(), ts.DB.Books(),
	)
	ts.Require().NoError(err)
	ts.Require().NoError(app.Reload(ctx))
	books, err := c.NewBooksUseCase(ts.DB, ts.DB.Books())
	ts.Require().NoError(err)
	users, err := c.NewUsersUseCase(ts.DB, ts.DB.Users())
	ts.Require().NoError(err)

	ts.Gin = c.Gin.NewEngine()
	routes.Mount(ts.Gin, c.Auth.NewAuthenticator(), routes.UseCases{
		App: app, Books: books, Users: users,
	})
}

func (ts *GinTestSuite) token(u model.User) string {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      u.ID.String(),
		"username": u.Username,
		"is_staff": u.IsStaff,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	ts.Require().NoError(err)
	return s
}

// call sends a request as the u user (or anonymously if u is nil) and
// decodes the response body into res (if it is non-nil).
func (ts *GinTestSuite) call(
	u *model.User, method, path string, body any, res any,
) int {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		ts.Require().NoError(err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, routes.Prefix+path, r)
	ts.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if u != nil {
		req.Header.Set("Authorization", "Bearer "+ts.token(*u))
	}
	w := httptest.NewRecorder()
	ts.Gin.ServeHTTP(w, req)
	ts.NotEmpty(w.Header().Get(gin.RequestIDHeader))
	if res != nil && w.Body.Len() > 0 {
		ts.Require().NoError(json.Unmarshal(w.Body.Bytes(), res), w.Body)
	}
	return w.Code
}

func (ts *GinTestSuite) borrow(u *model.User, bookID uuid.UUID) (
	int, map[string]any,
) {
	var res map[string]any
	code := ts.call(u, http.MethodPost, "/loans", map[string]any{
		"book":     bookID.String(),
		"due_date": time.Now().Add(72 * time.Hour).UTC(),
	}, &res)
	return code, res
}

func (ts *GinTestSuite) TestUnauthenticated() {
	var books []model.Book
	ts.Equal(http.StatusOK, ts.call(nil, http.MethodGet, "/books", nil, &books))
	ts.Len(books, len(ts.Books))
	var b model.Book
	path := "/books/" + ts.Books[0].ID.String()
	ts.Equal(http.StatusOK, ts.call(nil, http.MethodGet, path, nil, &b))
	ts.Equal(ts.Books[0].ISBN, b.ISBN)

	body := map[string]string{
		"title": "Beloved", "author": "Toni Morrison", "isbn": "9781400033416",
	}
	for _, rq := range []struct{ method, path string }{
		{http.MethodPost, "/books"},
		{http.MethodPut, path},
		{http.MethodDelete, path},
		{http.MethodGet, "/loans"},
		{http.MethodGet, "/loans/my-active"},
		{http.MethodGet, "/settings"},
		{http.MethodGet, "/me"},
	} {
		var res map[string]string
		ts.Equal(
			http.StatusUnauthorized,
			ts.call(nil, rq.method, rq.path, body, &res),
			"%s %s", rq.method, rq.path,
		)
		ts.Contains(res["detail"], "not provided")
	}

	u, err := auth.New([]byte("other")).Verify("Bearer " + ts.token(ts.Alice))
	ts.Nil(u)
	ts.Error(err)
}

func (ts *GinTestSuite) TestMe() {
	var me model.User
	ts.Equal(http.StatusOK, ts.call(&ts.Alice, http.MethodGet, "/me", nil, &me))
	ts.Equal(ts.Alice, me)

	ghost := model.User{ID: uuid.New(), Username: "ghost"}
	ts.Equal(http.StatusNotFound, ts.call(&ghost, http.MethodGet, "/me", nil, nil))
}

func (ts *GinTestSuite) TestBooksAdministration() {
	body := map[string]string{
		"title": "Beloved", "author": "Toni Morrison", "isbn": "9781400033416",
	}
	ts.Equal(http.StatusForbidden, ts.call(&ts.Alice, http.MethodPost, "/books", body, nil))

	var b model.Book
	ts.Equal(http.StatusCreated, ts.call(&ts.Librarian, http.MethodPost, "/books", body, &b))
	ts.Equal("Beloved", b.Title)
	ts.True(b.IsAvailable)

	var fields map[string][]string
	ts.Equal(http.StatusBadRequest, ts.call(&ts.Librarian, http.MethodPost, "/books", body, &fields))
	ts.Contains(fields, "isbn")

	fields = nil
	ts.Equal(http.StatusBadRequest, ts.call(
		&ts.Librarian, http.MethodPost, "/books",
		map[string]string{"title": " ", "isbn": "12-34"}, &fields,
	))
	ts.Contains(fields, "title")
	ts.Contains(fields, "author")
	ts.Contains(fields, "isbn")

	fields = nil
	ts.Equal(http.StatusBadRequest, ts.call(
		&ts.Librarian, http.MethodPost, "/books",
		map[string]string{"title": "Beloved", "author": "Toni Morrison", "isbn": "12345"},
		&fields,
	))
	ts.Len(fields, 1)
	ts.Contains(fields, "isbn")

	body["description"] = "A novel."
	path := "/books/" + b.ID.String()
	ts.Equal(http.StatusOK, ts.call(&ts.Librarian, http.MethodPut, path, body, &b))
	ts.Equal("A novel.", b.Description)

	ts.Equal(http.StatusNoContent, ts.call(&ts.Librarian, http.MethodDelete, path, nil, nil))
	ts.Equal(http.StatusNotFound, ts.call(&ts.Alice, http.MethodGet, path, nil, nil))
	ts.Equal(http.StatusNotFound, ts.call(&ts.Alice, http.MethodGet, "/books/not-a-uuid", nil, nil))
}

func (ts *GinTestSuite) TestListBooks() {
	code, _ := ts.borrow(&ts.Alice, ts.Books[0].ID)
	ts.Require().Equal(http.StatusCreated, code)

	var bb []model.Book
	ts.Equal(http.StatusOK, ts.call(&ts.Bob, http.MethodGet, "/books?available=true&ordering=-title", nil, &bb))
	ts.Require().Len(bb, 3)
	ts.Equal("Walden", bb[0].Title)

	bb = nil
	ts.Equal(http.StatusOK, ts.call(&ts.Bob, http.MethodGet, "/books?search=JANE", nil, &bb))
	ts.Require().Len(bb, 1)
	ts.Equal("Emma", bb[0].Title)

	ts.Equal(http.StatusBadRequest, ts.call(&ts.Bob, http.MethodGet, "/books?ordering=isbn", nil, nil))
}

func (ts *GinTestSuite) TestBorrowAndReturn() {
	book := ts.Books[1]
	code, loan := ts.borrow(&ts.Alice, book.ID)
	ts.Require().Equal(http.StatusCreated, code)
	ts.Equal("alice", loan["user"])
	ts.Equal(true, loan["is_active"])
	ts.Equal(false, loan["is_overdue"])
	ts.Equal(book.ID.String(), loan["book"].(map[string]any)["id"])
	id := loan["id"].(string)

	var res map[string]string
	code, _ = ts.borrow(&ts.Bob, book.ID)
	ts.Equal(http.StatusConflict, code)

	var active []map[string]any
	ts.Equal(http.StatusOK, ts.call(&ts.Alice, http.MethodGet, "/loans/my-active", nil, &active))
	ts.Len(active, 1)
	active = nil
	ts.Equal(http.StatusOK, ts.call(&ts.Bob, http.MethodGet, "/loans", nil, &active))
	ts.Len(active, 0)
	ts.Equal(http.StatusForbidden, ts.call(&ts.Bob, http.MethodGet, "/loans/"+id, nil, nil))

	path := "/loans/" + id + "/return"
	ts.Equal(http.StatusForbidden, ts.call(&ts.Bob, http.MethodPatch, path, nil, &res))
	ts.Equal(http.StatusOK, ts.call(&ts.Alice, http.MethodPatch, path, nil, &loan))
	ts.Equal(false, loan["is_active"])
	ts.NotNil(loan["returned_at"])
	ts.Equal(http.StatusConflict, ts.call(&ts.Librarian, http.MethodPatch, path, nil, &res))
	ts.Contains(res["detail"], "already returned")

	code, _ = ts.borrow(&ts.Bob, book.ID)
	ts.Equal(http.StatusCreated, code)

	var all []map[string]any
	ts.Equal(http.StatusOK, ts.call(&ts.Librarian, http.MethodGet, "/loans", nil, &all))
	ts.Len(all, 2)
}

func (ts *GinTestSuite) TestBorrowRejects() {
	var res map[string]any
	ts.Equal(http.StatusBadRequest, ts.call(&ts.Alice, http.MethodPost, "/loans", map[string]any{
		"book": ts.Books[0].ID.String(),
	}, &res))
	ts.Contains(res, "DueDate")

	ts.Equal(http.StatusBadRequest, ts.call(&ts.Alice, http.MethodPost, "/loans", map[string]any{
		"book":     ts.Books[0].ID.String(),
		"due_date": time.Now().Add(-time.Hour).UTC(),
	}, nil))

	code, _ := ts.borrow(&ts.Alice, uuid.New())
	ts.Equal(http.StatusNotFound, code)
}

func (ts *GinTestSuite) TestSettingsChangeLoanLimit() {
	var s struct {
		Settings struct {
			Loans struct {
				MaxActiveLoans int `json:"max_active_loans"`
			} `json:"loans"`
			Logger bool `json:"logger"`
		} `json:"settings"`
		MaxBounds struct {
			Loans struct {
				MaxActiveLoans *int `json:"max_active_loans"`
			} `json:"loans"`
		} `json:"max_bounds"`
	}
	ts.Equal(http.StatusOK, ts.call(&ts.Alice, http.MethodGet, "/settings", nil, &s))
	ts.Equal(2, s.Settings.Loans.MaxActiveLoans)
	ts.True(s.Settings.Logger)
	ts.Require().NotNil(s.MaxBounds.Loans.MaxActiveLoans)
	ts.Equal(3, *s.MaxBounds.Loans.MaxActiveLoans)

	for i := 0; i < 2; i++ {
		code, _ := ts.borrow(&ts.Alice, ts.Books[i].ID)
		ts.Require().Equal(http.StatusCreated, code)
	}
	code, _ := ts.borrow(&ts.Alice, ts.Books[2].ID)
	ts.Equal(http.StatusBadRequest, code)

	update := map[string]any{"loans": map[string]any{"max_active_loans": 3}}
	ts.Equal(http.StatusForbidden, ts.call(&ts.Alice, http.MethodPut, "/settings", update, nil))
	ts.Equal(http.StatusOK, ts.call(&ts.Librarian, http.MethodPut, "/settings", update, &s))
	ts.Equal(3, s.Settings.Loans.MaxActiveLoans)

	code, _ = ts.borrow(&ts.Alice, ts.Books[2].ID)
	ts.Equal(http.StatusCreated, code)

	update = map[string]any{"loans": map[string]any{"max_active_loans": 4}}
	ts.Equal(http.StatusBadRequest, ts.call(&ts.Librarian, http.MethodPut, "/settings", update, nil))
	update = map[string]any{"logger": false}
	ts.Equal(http.StatusBadRequest, ts.call(&ts.Librarian, http.MethodPut, "/settings", update, nil))
}
