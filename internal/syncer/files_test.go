package syncer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envsyncd/envsync/internal/vault"
)

func TestBlobName(t *testing.T) {
	tests := []struct {
		name     string
		template string
		path     string
		want     string
	}{
		{"file name", "#name#", "/tmp/app/config.json", "config.json"},
		{"stem and ext", "#stem#-prod.#ext#", "/tmp/config.json", "config-prod.json"},
		{"literal only", "settings", "/tmp/config.json", "settings"},
		{"prefix", "backups/#name#", "/tmp/data.db", "backups/data.db"},
		{"no extension stem", "#stem#", "/tmp/Makefile", "Makefile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BlobName(tt.template, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBlobName_Errors(t *testing.T) {
	tests := []struct {
		name     string
		template string
		path     string
	}{
		{"unknown placeholder", "#dir#", "/tmp/config.json"},
		{"unbalanced", "#name", "/tmp/config.json"},
		{"ext without extension", "#ext#", "/tmp/Makefile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BlobName(tt.template, tt.path)
			assert.Error(t, err)
		})
	}
}

func TestPlanFiles_DuplicateBlobNames(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "one", "config.json")
	b := filepath.Join(dir, "two", "config.json")

	_, err := PlanFiles(context.Background(), FilesRequest{
		Mode:         ModeSync,
		Paths:        []string{a, b},
		NameTemplate: "#name#",
		Blobs:        newMemBlobs(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate blob names")
}

func TestPlanFiles_DedupesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	writeFileAt(t, path, []byte("{}"), time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	// The same file twice (as the shell might expand it) is one unit,
	// not a duplicate-name error.
	actions, err := PlanFiles(context.Background(), FilesRequest{
		Mode:         ModeSync,
		Paths:        []string{path, path},
		NameTemplate: "#name#",
		Blobs:        newMemBlobs(),
	})
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, OpPush, actions[0].Op)
	assert.Equal(t, "config.json", actions[0].Payload.BlobName)
}

func TestPlanFiles_Decisions(t *testing.T) {
	dir := t.TempDir()
	older := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	pushPath := filepath.Join(dir, "push.txt")
	writeFileAt(t, pushPath, []byte("local"), newer)
	pullPath := filepath.Join(dir, "pull.txt")
	writeFileAt(t, pullPath, []byte("stale"), older)
	missingPath := filepath.Join(dir, "missing.txt")

	blobs := newMemBlobs()
	blobs.put("push.txt", vault.Blob{Data: []byte("old"), Modified: older, ETag: "rev1"})
	blobs.put("pull.txt", vault.Blob{Data: []byte("fresh"), Modified: newer, ETag: "rev2"})

	actions, err := PlanFiles(context.Background(), FilesRequest{
		Mode:         ModeSync,
		Paths:        []string{pushPath, pullPath, missingPath},
		NameTemplate: "#name#",
		Blobs:        blobs,
	})
	require.NoError(t, err)
	require.Len(t, actions, 3)

	push := actions[0]
	assert.Equal(t, OpPush, push.Op)
	assert.Equal(t, "push.txt", push.Payload.BlobName)
	assert.Equal(t, "rev1", push.Payload.ETag, "push should carry the remote revision for If-Match")
	assert.True(t, push.Time.Equal(newer))

	pull := actions[1]
	assert.Equal(t, OpPull, pull.Op)
	assert.Equal(t, "pull.txt", pull.Payload.BlobName)
	assert.Equal(t, []byte("fresh"), pull.Payload.Data)
	assert.True(t, pull.Time.Equal(newer))

	skip := actions[2]
	assert.Equal(t, OpSkip, skip.Op)
	assert.Equal(t, "missing.txt", skip.Payload.BlobName)
	assert.Equal(t, "not found", skip.Reason)
}

func TestPlanFiles_MissingTimestamp(t *testing.T) {
	blobs := newMemBlobs()
	blobs.put("config.json", vault.Blob{Data: []byte("{}")})

	_, err := PlanFiles(context.Background(), FilesRequest{
		Mode:         ModeSync,
		Paths:        []string{filepath.Join(t.TempDir(), "config.json")},
		NameTemplate: "#name#",
		Blobs:        blobs,
	})
	require.Error(t, err)
	assert.True(t, IsTimeError(err))
}

func TestExecuteFiles(t *testing.T) {
	dir := t.TempDir()
	modified := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	pushPath := filepath.Join(dir, "push.txt")
	writeFileAt(t, pushPath, []byte("local content"), modified)
	pullPath := filepath.Join(dir, "pull.txt")

	blobs := newMemBlobs()
	blobs.put("push.txt", vault.Blob{Data: []byte("old"), Modified: modified.Add(-time.Hour), ETag: "rev1"})

	actions := []Decision[FileAction]{
		{Op: OpPush, Time: modified, Payload: FileAction{Path: pushPath, BlobName: "push.txt", ETag: "rev1"}},
		{Op: OpPull, Time: modified, Payload: FileAction{Path: pullPath, BlobName: "pull.txt", Data: []byte("remote content")}},
		{Op: OpSkip, Reason: "unchanged", Payload: FileAction{Path: "ignored", BlobName: "ignored"}},
	}
	require.NoError(t, ExecuteFiles(context.Background(), actions, blobs))

	uploaded, err := blobs.Download(context.Background(), "push.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("local content"), uploaded.Data)
	assert.True(t, uploaded.Modified.Equal(modified))

	data, err := os.ReadFile(pullPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("remote content"), data)

	info, err := os.Stat(pullPath)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(modified))
}

func TestExecuteFiles_ETagMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	writeFileAt(t, path, []byte("{}"), time.Now())

	blobs := newMemBlobs()
	blobs.put("config.json", vault.Blob{Data: []byte("x"), Modified: time.Now(), ETag: "current"})

	// The plan saw a revision that has since been replaced.
	actions := []Decision[FileAction]{
		{Op: OpPush, Time: time.Now(), Payload: FileAction{Path: path, BlobName: "config.json", ETag: "stale"}},
	}
	err := ExecuteFiles(context.Background(), actions, blobs)
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
}

func writeFileAt(t *testing.T, path string, data []byte, modified time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	require.NoError(t, os.Chtimes(path, modified, modified))
}
