package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	model "bookshelf_backend/internals/features/library/books/model"
	helper "bookshelf_backend/internals/helpers"
)

// dryRunDB renders SQL without a server.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=127.0.0.1 user=test dbname=test sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func renderList(t *testing.T, f model.BookFilter, p helper.Pageable) *gorm.Statement {
	t.Helper()
	var rows []model.BookModel
	tx := PageScope(dryRunDB(t).Model(&model.BookModel{}).Scopes(FilterScope(f)), p).Find(&rows)
	require.NoError(t, tx.Error)
	return tx.Statement
}

func Test_ContainsPattern_EscapesWildcards(t *testing.T) {
	cases := map[string]string{
		"hobbit":  "%hobbit%",
		"50%":     `%50\%%`,
		"a_b":     `%a\_b%`,
		`back\sl`: `%back\\sl%`,
		"":        "%%",
	}
	for in, want := range cases {
		assert.Equal(t, want, ContainsPattern(in), in)
	}
}

func Test_FilterScope_NullFilterHasNoWhere(t *testing.T) {
	stmt := renderList(t, model.BookFilter{}, helper.Pageable{Size: 20})
	sql := stmt.SQL.String()

	assert.NotContains(t, sql, "WHERE")
	assert.Contains(t, sql, `FROM "books"`)
	assert.Contains(t, sql, "ORDER BY id ASC")
}

func Test_FilterScope_ExactAndContains(t *testing.T) {
	f := model.BookFilter{
		Author: strPtr("Tolkien"),
		Title:  strPtr("50%"),
	}
	pages := 310
	f.Pages = &pages

	stmt := renderList(t, f, helper.Pageable{Size: 20})
	sql := stmt.SQL.String()

	assert.Contains(t, sql, "author = $1")
	assert.Contains(t, sql, "pages = $2")
	assert.Contains(t, sql, `title LIKE $3 ESCAPE '\'`)
	require.GreaterOrEqual(t, len(stmt.Vars), 3)
	assert.Equal(t, []any{"Tolkien", 310, `%50\%%`}, stmt.Vars[:3])
}

func Test_PageScope_OrderAndWindow(t *testing.T) {
	p := helper.Pageable{Page: 1, Size: 10, Sort: []helper.SortOrder{{Field: "title", Desc: true}}}

	stmt := renderList(t, model.BookFilter{}, p)
	sql := stmt.SQL.String()

	assert.Contains(t, sql, "ORDER BY title DESC,id ASC")
	assert.Regexp(t, `LIMIT (10|\$\d+)`, sql)
	assert.Regexp(t, `OFFSET (10|\$\d+)`, sql)
}

func Test_PageScope_DropsUnknownSortFields(t *testing.T) {
	p := helper.Pageable{Size: 5, Sort: []helper.SortOrder{{Field: "title; DROP TABLE books"}}}

	sql := renderList(t, model.BookFilter{}, p).SQL.String()

	assert.NotContains(t, sql, "DROP")
	assert.Contains(t, sql, "ORDER BY id ASC")
}
