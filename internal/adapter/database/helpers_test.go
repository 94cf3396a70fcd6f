package database

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	. "github.com/smartystreets/goconvey/convey"
)

// createTestDB creates a SQLite file with tables tb1..tb4 defined in that
// order, each holding one row, and removes it when the Convey scope ends.
func createTestDB() string {
	dir, err := os.MkdirTemp("", "litedump_db")
	So(err, ShouldBeNil)
	Reset(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, "testDB.sqlite")

	db, err := sql.Open("sqlite", path)
	So(err, ShouldBeNil)
	defer db.Close()

	for _, stmt := range []string{
		"CREATE TABLE tb1 (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT)",
		"CREATE TABLE tb2 (id INTEGER PRIMARY KEY, name TEXT)",
		"CREATE TABLE tb3 (id INTEGER PRIMARY KEY, name TEXT)",
		"CREATE TABLE tb4 (id INTEGER PRIMARY KEY, name TEXT)",
		"INSERT INTO tb1 (name) VALUES ('one')",
		"INSERT INTO tb2 (name) VALUES ('two')",
		"INSERT INTO tb3 (name) VALUES ('three')",
		"INSERT INTO tb4 (name) VALUES ('four')",
	} {
		_, err := db.ExecContext(context.Background(), stmt)
		So(err, ShouldBeNil)
	}

	return path
}

type recordingRunner struct {
	commands []string
	err      error
}

func (r *recordingRunner) Run(ctx context.Context, command string) error {
	r.commands = append(r.commands, command)
	return r.err
}
