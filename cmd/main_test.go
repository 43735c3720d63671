package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtol-medical-drone-system/internal/bootstrap"
	"vtol-medical-drone-system/internal/db"
	"vtol-medical-drone-system/internal/logging"
	"vtol-medical-drone-system/internal/models"
)

func run(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func staticDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"index.html", "app.js", "style.css"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("ok"), 0o644))
	}
	return dir
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestServe_MissingAssets(t *testing.T) {
	err := run(t, "--static-dir", t.TempDir(), "--no-browser")

	var missing *bootstrap.MissingAssetsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"index.html", "app.js", "style.css"}, missing.Missing)
}

func TestGenerateIngestStats(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "archive.db")

	manifest := filepath.Join(dir, "supplies.csv")
	require.NoError(t, os.WriteFile(manifest, []byte(
		"type,quantity,min_threshold,location,expiry_date\n"+
			"Blood Bags,5,20,Storage-1,2026-02-01\n"+
			"IV Fluids,90,20,Storage-2,2026-02-01\n"+
			"Broken,-4,20,Storage-2,2026-02-01\n"), 0o644))

	t.Run("ingest needs a dataset", func(t *testing.T) {
		err := run(t, "ingest", "--db", archive, manifest)
		assert.ErrorIs(t, err, db.ErrNoDataset)
	})

	require.NoError(t, run(t, "generate", "--db", archive, "--seed", "21", "--drones", "6", "--output", filepath.Join(dir, "ds.json")))
	require.NoError(t, run(t, "ingest", "--db", archive, manifest))
	require.NoError(t, run(t, "stats", "--db", archive))

	database, err := db.New(archive)
	require.NoError(t, err)
	defer database.Close()

	ds, err := database.LoadDataset()
	require.NoError(t, err)
	assert.Equal(t, uint64(21), ds.Seed)
	assert.Len(t, ds.Drones, 6)
	require.Len(t, ds.Supplies, 2)
	assert.Equal(t, models.StockLow, ds.Supplies[0].Status)

	_, err = os.Stat(filepath.Join(dir, "ds.json"))
	assert.NoError(t, err)
}

func TestInvalidVariantFlag(t *testing.T) {
	err := run(t, "--variant", "imaginary", "--static-dir", t.TempDir())
	assert.ErrorContains(t, err, "invalid data variant")
}

func TestServe_BadPortArgumentUsesDefault(t *testing.T) {
	port := freePort(t)
	t.Setenv("MEDDRONE_PORT", strconv.Itoa(port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := newRootCmd()
	cmd.SetArgs([]string{"not-a-port", "--static-dir", staticDir(t), "--no-browser"})
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	url := "http://127.0.0.1:" + strconv.Itoa(port) + "/api/status"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop after cancellation")
	}
}

func TestServeStopsCleanlyOnCancel(t *testing.T) {
	logger = logging.Nop()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, &http.Server{Handler: http.NotFoundHandler()}, ln, time.Second)
	}()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return")
	}
}

func TestGenerate_RejectsNegativeSizes(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "archive.db")
	assert.ErrorContains(t, run(t, "generate", "--db", archive, "--drones", "-1"), "cannot be negative")
	assert.ErrorContains(t, run(t, "generate", "--db", archive, "--missions", "-3"), "cannot be negative")
}

func TestIngest_FailuresKeepArchive(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "archive.db")
	require.NoError(t, run(t, "generate", "--db", archive, "--seed", "3"))

	storedSupplies := func() int {
		database, err := db.New(archive)
		require.NoError(t, err)
		defer database.Close()
		supplies, err := database.ListSupplies()
		require.NoError(t, err)
		return len(supplies)
	}
	before := storedSupplies()
	require.Positive(t, before)

	t.Run("missing file", func(t *testing.T) {
		err := run(t, "ingest", "--db", archive, filepath.Join(dir, "does-not-exist.csv"))
		assert.ErrorContains(t, err, "archive left unchanged")
		assert.Equal(t, before, storedSupplies())
	})

	t.Run("malformed json array", func(t *testing.T) {
		manifest := filepath.Join(dir, "broken.json")
		require.NoError(t, os.WriteFile(manifest, []byte(`[{"type":"IV Fluids","quantity":"many"}]`), 0o644))
		err := run(t, "ingest", "--db", archive, "--format", "json", manifest)
		assert.Error(t, err)
		assert.Equal(t, before, storedSupplies())
	})

	t.Run("every line rejected", func(t *testing.T) {
		manifest := filepath.Join(dir, "rejected.csv")
		require.NoError(t, os.WriteFile(manifest, []byte(
			"type,quantity,min_threshold,location,expiry_date\n"+
				"Blood Bags,-1,20,Storage-1,2026-02-01\n"), 0o644))
		err := run(t, "ingest", "--db", archive, manifest)
		assert.ErrorIs(t, err, errNoSupplies)
		assert.Equal(t, before, storedSupplies())
	})

	t.Run("json with date-only expiry", func(t *testing.T) {
		manifest := filepath.Join(dir, "supplies.json")
		require.NoError(t, os.WriteFile(manifest, []byte(
			`[{"type":"IV Fluids","quantity":80,"min_threshold":25,"location":"Storage-1","expiry_date":"2027-01-01"},`+
				`{"type":"IV Fluids","quantity":12,"min_threshold":25,"location":"Storage-2","expiry_date":"2027-01-01"}]`), 0o644))
		require.NoError(t, run(t, "ingest", "--db", archive, "--format", "json", manifest))
		assert.Equal(t, 2, storedSupplies())
	})
}
