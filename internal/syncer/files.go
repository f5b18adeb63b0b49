package syncer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/envsyncd/envsync/internal/vault"
)

// FileAction is the payload of one file decision.
type FileAction struct {
	// Path is the local file path.
	Path string

	// BlobName is the vault-side name, rendered from the name template.
	BlobName string

	// Data is the remote content, set for pulls. Pushes read the local
	// file at execution time instead of holding it in the plan.
	Data []byte

	// ETag is the remote revision seen during planning, sent with pushes
	// so a concurrent remote write fails the upload.
	ETag string
}

// DisplayName implements Named.
func (a FileAction) DisplayName() string { return a.BlobName }

// FilesRequest describes one file reconciliation batch.
type FilesRequest struct {
	Mode Mode

	// Tolerance is the unchanged window; zero means DefaultTolerance.
	Tolerance time.Duration

	// Paths are the local files to synchronize. Duplicates are dropped.
	Paths []string

	// NameTemplate renders each path's blob name; see BlobName.
	NameTemplate string

	// Blobs is the vault side.
	Blobs vault.BlobStore
}

// BlobName renders the vault-side name for path from a template. The
// template alternates literal text and `#`-delimited placeholders:
// `#name#` is the file name, `#stem#` the name without extension, and
// `#ext#` the extension without its dot. An odd number of `#` characters
// or an unknown placeholder is an error.
func BlobName(template, path string) (string, error) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	ext = strings.TrimPrefix(ext, ".")

	var b strings.Builder
	placeholder := false
	for _, part := range strings.Split(template, "#") {
		if placeholder {
			switch part {
			case "name":
				b.WriteString(base)
			case "stem":
				b.WriteString(stem)
			case "ext":
				if ext == "" {
					return "", fmt.Errorf("blob name template %q: %s has no file extension", template, path)
				}
				b.WriteString(ext)
			default:
				return "", fmt.Errorf("blob name template %q: invalid placeholder %q", template, part)
			}
		} else {
			b.WriteString(part)
		}
		placeholder = !placeholder
	}
	if !placeholder {
		return "", fmt.Errorf("blob name template %q: unbalanced '#'", template)
	}
	return b.String(), nil
}

// PlanFiles computes the decision set for a file batch. It stats local
// files and downloads remote blobs, but changes nothing on either side.
func PlanFiles(ctx context.Context, req FilesRequest) ([]Decision[FileAction], error) {
	tolerance := req.Tolerance
	if tolerance == 0 {
		tolerance = DefaultTolerance
	}

	paths, blobNames, err := resolveBlobNames(req.Paths, req.NameTemplate)
	if err != nil {
		return nil, err
	}

	actions := make([]Decision[FileAction], len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(transferLimit)
	for i := range paths {
		g.Go(func() error {
			action, err := planFile(gctx, req.Mode, tolerance, paths[i], blobNames[i], req.Blobs)
			if err != nil {
				return err
			}
			actions[i] = action
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	SortActions(actions)
	return actions, nil
}

// resolveBlobNames de-dupes the input paths (shell globbing can repeat
// them) and renders each one's blob name, rejecting collisions.
func resolveBlobNames(inputs []string, template string) (paths, blobNames []string, err error) {
	seenPath := make(map[string]struct{}, len(inputs))
	seenName := make(map[string]struct{}, len(inputs))
	var duplicates []string

	for _, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve %s: %w", input, err)
		}
		if _, ok := seenPath[abs]; ok {
			continue
		}
		seenPath[abs] = struct{}{}

		name, err := BlobName(template, abs)
		if err != nil {
			return nil, nil, err
		}
		if _, ok := seenName[name]; ok {
			duplicates = append(duplicates, name)
			continue
		}
		seenName[name] = struct{}{}

		paths = append(paths, abs)
		blobNames = append(blobNames, name)
	}

	if len(duplicates) > 0 {
		return nil, nil, fmt.Errorf("duplicate blob names: %s", strings.Join(duplicates, ", "))
	}
	return paths, blobNames, nil
}

// planFile decides one path against its remote blob.
func planFile(ctx context.Context, mode Mode, tolerance time.Duration, path, blobName string, blobs vault.BlobStore) (Decision[FileAction], error) {
	var localTime time.Time
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// No local file yet; the blob may still be pulled down.
	case err != nil:
		return Decision[FileAction]{}, fmt.Errorf("stat %s: %w", path, err)
	default:
		localTime = info.ModTime()
	}

	payload := FileAction{Path: path, BlobName: blobName}
	var remoteTime time.Time
	blob, err := blobs.Download(ctx, blobName)
	switch {
	case errors.Is(err, vault.ErrNotFound):
	case err != nil:
		return Decision[FileAction]{}, &TransportError{Op: "download blob", Name: blobName, Err: err}
	case blob.Modified.IsZero():
		return Decision[FileAction]{}, &TimeError{Name: blobName, Message: "remote blob has no last-modified timestamp"}
	default:
		remoteTime = blob.Modified
		payload.ETag = blob.ETag
	}

	action := Decide(mode, localTime, remoteTime, tolerance, payload)
	if action.Op == OpPull {
		action.Payload.Data = blob.Data
	}
	return action, nil
}

// ExecuteFiles runs a file plan: all transfers run concurrently. Pushed
// files carry their local mtime and the planned etag; pulled files are
// written to disk with their mtime set to the remote timestamp. A failure
// aborts remaining transfers without undoing completed ones.
func ExecuteFiles(ctx context.Context, actions []Decision[FileAction], blobs vault.BlobStore) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(transferLimit)

	for _, action := range actions {
		switch action.Op {
		case OpPush:
			g.Go(func() error {
				data, err := os.ReadFile(action.Payload.Path)
				if err != nil {
					return fmt.Errorf("read %s: %w", action.Payload.Path, err)
				}
				if err := blobs.Upload(gctx, action.Payload.BlobName, data, action.Time, action.Payload.ETag); err != nil {
					return &TransportError{Op: "upload blob", Name: action.Payload.BlobName, Err: err}
				}
				return nil
			})
		case OpPull:
			g.Go(func() error {
				if err := os.WriteFile(action.Payload.Path, action.Payload.Data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", action.Payload.Path, err)
				}
				if err := os.Chtimes(action.Payload.Path, action.Time, action.Time); err != nil {
					return fmt.Errorf("set mtime on %s: %w", action.Payload.Path, err)
				}
				return nil
			})
		}
	}

	return g.Wait()
}
