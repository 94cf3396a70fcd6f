package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func requireBinaries(t *testing.T, names ...string) {
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("%s not available: %v", name, err)
		}
	}
}

func TestShell(t *testing.T) {
	requireBinaries(t, "sh")

	Convey("Given a Shell", t, func() {
		shell := NewShell()
		ctx := context.Background()

		Convey("When the command succeeds", func() {
			err := shell.Run(ctx, "true")

			Convey("It should return no error", func() {
				So(err, ShouldBeNil)
			})
		})

		Convey("When the command exits non-zero", func() {
			err := shell.Run(ctx, "echo 'no such table' >&2; exit 3")

			Convey("It should report the exit status and stderr", func() {
				var cmdErr *CommandError
				So(errors.As(err, &cmdErr), ShouldBeTrue)
				So(cmdErr.ExitCode, ShouldEqual, 3)
				So(cmdErr.Stage, ShouldEqual, "sh")
				So(cmdErr.Stderr, ShouldContainSubstring, "no such table")
				So(err.Error(), ShouldEqual, "sh exited with status 3: no such table")
			})
		})

		Convey("When a failing producer is wrapped to preserve its status", func() {
			requireBinaries(t, "gzip")
			err := shell.Run(ctx, `((((false; echo $? >&3) | gzip > /dev/null) 3>&1) | (read x; exit $x))`)

			Convey("It should surface the producer's exit status", func() {
				var cmdErr *CommandError
				So(errors.As(err, &cmdErr), ShouldBeTrue)
				So(cmdErr.ExitCode, ShouldEqual, 1)
			})
		})

		Convey("When the shell binary does not exist", func() {
			shell.path = "/nonexistent/sh"
			err := shell.Run(ctx, "true")

			Convey("It should return a start error", func() {
				So(err, ShouldNotBeNil)
				var cmdErr *CommandError
				So(errors.As(err, &cmdErr), ShouldBeFalse)
				So(err.Error(), ShouldStartWith, "failed to run /nonexistent/sh")
			})
		})

		Convey("When the context is already cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			Convey("It should not succeed", func() {
				So(shell.Run(cancelled, "true"), ShouldNotBeNil)
			})
		})
	})
}

func TestPipeline(t *testing.T) {
	requireBinaries(t, "sh", "cat", "tr")

	Convey("Given a Pipeline", t, func() {
		pipeline := NewPipeline()
		ctx := context.Background()
		var out bytes.Buffer

		Convey("When it has no stages", func() {
			err := pipeline.Run(ctx, &out)

			Convey("It should return ErrEmptyPipeline", func() {
				So(errors.Is(err, ErrEmptyPipeline), ShouldBeTrue)
			})
		})

		Convey("When a single stage reads its stdin", func() {
			err := pipeline.Run(ctx, &out, Stage{Name: "cat", Path: "cat", Stdin: strings.NewReader("hello\n")})

			Convey("It should write the stage output", func() {
				So(err, ShouldBeNil)
				So(out.String(), ShouldEqual, "hello\n")
			})
		})

		Convey("When stages are chained", func() {
			err := pipeline.Run(ctx, &out,
				Stage{Name: "cat", Path: "cat", Stdin: strings.NewReader("BEGIN IMMEDIATE;\n")},
				Stage{Name: "tr", Path: "tr", Args: []string{"a-z", "A-Z"}},
				Stage{Name: "cat", Path: "cat"},
			)

			Convey("It should pass data from stage to stage", func() {
				So(err, ShouldBeNil)
				So(out.String(), ShouldEqual, "BEGIN IMMEDIATE;\n")
			})
		})

		Convey("When the first stage fails and the last succeeds", func() {
			err := pipeline.Run(ctx, &out,
				Stage{Name: "sqlite3", Path: "sh", Args: []string{"-c", "echo partial; echo 'database is locked' >&2; exit 4"}},
				Stage{Name: "cat", Path: "cat"},
			)

			Convey("It should report the first stage", func() {
				var cmdErr *CommandError
				So(errors.As(err, &cmdErr), ShouldBeTrue)
				So(cmdErr.Stage, ShouldEqual, "sqlite3")
				So(cmdErr.ExitCode, ShouldEqual, 4)
				So(cmdErr.Stderr, ShouldContainSubstring, "database is locked")
				So(out.String(), ShouldEqual, "partial\n")
			})
		})

		Convey("When only the last stage fails", func() {
			err := pipeline.Run(ctx, &out,
				Stage{Name: "cat", Path: "cat", Stdin: strings.NewReader("data")},
				Stage{Name: "compress", Path: "sh", Args: []string{"-c", "cat > /dev/null; exit 2"}},
			)

			Convey("It should report the last stage", func() {
				var cmdErr *CommandError
				So(errors.As(err, &cmdErr), ShouldBeTrue)
				So(cmdErr.Stage, ShouldEqual, "compress")
				So(cmdErr.ExitCode, ShouldEqual, 2)
			})
		})

		Convey("When a stage binary does not exist", func() {
			err := pipeline.Run(ctx, &out,
				Stage{Name: "cat", Path: "cat", Stdin: strings.NewReader("data")},
				Stage{Name: "zstd", Path: "/nonexistent/zstd"},
			)

			Convey("It should return a start error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldStartWith, "failed to start zstd")
			})
		})
	})
}
