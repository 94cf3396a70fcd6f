package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/smartystreets/goconvey/convey"
)

func TestListTables(t *testing.T) {
	ctx := context.Background()

	Convey("Given ListTables", t, func() {
		Convey("When the file is a SQLite database", func() {
			path := createTestDB()
			tables, err := ListTables(ctx, path)

			Convey("It should list user tables in definition order", func() {
				So(err, ShouldBeNil)
				So(tables, ShouldResemble, []string{"tb1", "tb2", "tb3", "tb4"})
			})

			Convey("It should leave the file untouched", func() {
				before, err := os.Stat(path)
				So(err, ShouldBeNil)

				_, err = ListTables(ctx, path)
				So(err, ShouldBeNil)

				after, err := os.Stat(path)
				So(err, ShouldBeNil)
				So(after.Size(), ShouldEqual, before.Size())
				So(after.ModTime().Equal(before.ModTime()), ShouldBeTrue)
			})
		})

		Convey("When the path contains spaces and brackets", func() {
			src := createTestDB()
			dir := filepath.Join(filepath.Dir(src), "new (directory)")
			So(os.MkdirAll(dir, 0755), ShouldBeNil)

			path := filepath.Join(dir, "copy.sqlite")
			content, err := os.ReadFile(src)
			So(err, ShouldBeNil)
			So(os.WriteFile(path, content, 0644), ShouldBeNil)

			tables, err := ListTables(ctx, path)

			Convey("It should still open the file", func() {
				So(err, ShouldBeNil)
				So(tables, ShouldHaveLength, 4)
			})
		})

		Convey("When the file does not exist", func() {
			tables, err := ListTables(ctx, "/nonexistent/dbname.sqlite")

			Convey("It should report the database as unavailable", func() {
				So(tables, ShouldBeNil)
				So(errors.Is(err, ErrDatabaseUnavailable), ShouldBeTrue)
				So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
			})
		})

		Convey("When the path is a directory", func() {
			_, err := ListTables(ctx, os.TempDir())

			Convey("It should report the database as unavailable", func() {
				So(errors.Is(err, ErrDatabaseUnavailable), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "is a directory")
			})
		})

		Convey("When the file is not a SQLite database", func() {
			file, err := os.CreateTemp("", "not_a_db_*.sqlite")
			So(err, ShouldBeNil)
			defer os.Remove(file.Name())

			_, err = file.WriteString(strings.Repeat("this is not a database\n", 200))
			So(err, ShouldBeNil)
			file.Close()

			tables, err := ListTables(ctx, file.Name())

			Convey("It should report the database as unavailable", func() {
				So(tables, ShouldBeNil)
				So(errors.Is(err, ErrDatabaseUnavailable), ShouldBeTrue)
			})
		})
	})
}

func TestQueryTables(t *testing.T) {
	Convey("Given an open database handle", t, func() {
		db, mock, err := sqlmock.New()
		So(err, ShouldBeNil)
		defer db.Close()

		query := regexp.QuoteMeta(listTablesQuery)

		Convey("When the catalog returns rows", func() {
			mock.ExpectQuery(query).WillReturnRows(
				sqlmock.NewRows([]string{"name"}).AddRow("users").AddRow("posts").AddRow("comments"),
			)

			tables, err := queryTables(context.Background(), db)

			Convey("It should keep the row order", func() {
				So(err, ShouldBeNil)
				So(tables, ShouldResemble, []string{"users", "posts", "comments"})
				So(mock.ExpectationsWereMet(), ShouldBeNil)
			})
		})

		Convey("When the catalog is empty", func() {
			mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{"name"}))

			tables, err := queryTables(context.Background(), db)

			Convey("It should return an empty, non-nil list", func() {
				So(err, ShouldBeNil)
				So(tables, ShouldNotBeNil)
				So(tables, ShouldBeEmpty)
			})
		})

		Convey("When the query fails", func() {
			mock.ExpectQuery(query).WillReturnError(errors.New("file is not a database"))

			_, err := queryTables(context.Background(), db)

			Convey("It should return the error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "failed to query tables")
				So(err.Error(), ShouldContainSubstring, "file is not a database")
			})
		})

		Convey("When reading a row fails", func() {
			mock.ExpectQuery(query).WillReturnRows(
				sqlmock.NewRows([]string{"name"}).AddRow("users").AddRow("posts").RowError(1, errors.New("disk I/O error")),
			)

			_, err := queryTables(context.Background(), db)

			Convey("It should return the error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "disk I/O error")
			})
		})
	})
}

func TestReadOnlyDSN(t *testing.T) {
	Convey("Given database paths", t, func() {
		So(readOnlyDSN("dbname.sqlite"), ShouldEqual, "file:dbname.sqlite?mode=ro")
		So(readOnlyDSN("/var/lib/app.sqlite"), ShouldEqual, "file:/var/lib/app.sqlite?mode=ro")
		So(readOnlyDSN("/save/new dir/a?b.sqlite"), ShouldEqual, "file:/save/new%20dir/a%3Fb.sqlite?mode=ro")
	})
}
