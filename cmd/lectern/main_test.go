package main

import (
	"flag"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	makeContext := func(level string) *cli.Context {
		set := flag.NewFlagSet("test", flag.ContinueOnError)
		set.String("log-level", level, "")
		require.NoError(t, set.Set("log-level", level))
		return cli.NewContext(cli.NewApp(), set, nil)
	}

	t.Run("accepts known levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
			assert.NoError(t, setupLogger(makeContext(level)), level)
		}
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		err := setupLogger(makeContext("verbose"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "verbose")
	})
}

func TestIngestCommand_Validation(t *testing.T) {
	app := &cli.App{
		Name: "lectern",
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Action: ingestCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{Name: "db", Required: true},
					&cli.StringFlag{Name: "kind", Value: "lecture"},
				),
			},
		},
	}

	t.Run("db is required", func(t *testing.T) {
		err := app.Run([]string{"lectern", "ingest", "somefile.pdf"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db")
	})

	t.Run("path argument is required", func(t *testing.T) {
		err := app.Run([]string{"lectern", "ingest", "--db", t.TempDir()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "path")
	})

	t.Run("kind must be lecture or assignment", func(t *testing.T) {
		err := app.Run([]string{"lectern", "ingest", "--db", t.TempDir(), "--kind", "syllabus", "somefile.pdf"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "syllabus")
	})
}

func TestAIFlagDefaults(t *testing.T) {
	flags := aiFlags()

	byName := make(map[string]*cli.StringFlag)
	for _, f := range flags {
		sf, ok := f.(*cli.StringFlag)
		require.True(t, ok)
		byName[sf.Name] = sf
	}

	require.Contains(t, byName, "host")
	assert.Equal(t, "http://localhost:11434/v1", byName["host"].Value)
	require.Contains(t, byName, "generator-model")
	assert.NotEmpty(t, byName["generator-model"].Value)
	require.Contains(t, byName, "embedding-model")
	assert.NotEmpty(t, byName["embedding-model"].Value)
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "one", firstLine("one\ntwo"))
	assert.Equal(t, "trimmed", firstLine("  trimmed  "))

	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	got := firstLine(string(long))
	assert.Len(t, got, 123)
	assert.Contains(t, got, "...")
}
