package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/indianleto/storefront-backend/pkg/config"
	"github.com/indianleto/storefront-backend/pkg/logger"
)

func TestRunValidatesEmbeddedWithoutDatabase(t *testing.T) {
	require.NoError(t, run(context.Background(), &config.Config{}, logger.Nop(), options{cmd: "validate"}))
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	err := run(context.Background(), &config.Config{}, logger.Nop(), options{cmd: "sideways"})
	require.ErrorContains(t, err, "sideways")
}

func TestRunRequiresDatabaseForGooseCommands(t *testing.T) {
	err := run(context.Background(), &config.Config{}, logger.Nop(), options{cmd: "status"})
	require.ErrorIs(t, err, errNoDatabase)

	err = run(context.Background(), &config.Config{}, logger.Nop(), options{cmd: "version"})
	require.ErrorContains(t, err, "-version")
}

func TestRunCreateWritesIntoDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run(context.Background(), &config.Config{}, logger.Nop(), options{cmd: "create", dir: dir, name: "Add Notes"}))

	matches, err := filepath.Glob(filepath.Join(dir, "*_add_notes.sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	require.Contains(t, string(data), "-- +goose Up")

	require.Error(t, run(context.Background(), &config.Config{}, logger.Nop(), options{cmd: "create", dir: dir}))
}
