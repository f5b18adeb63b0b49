package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/envsyncd/envsync/internal/dotenv"
	"github.com/envsyncd/envsync/internal/vault"
)

// transferLimit bounds concurrent vault requests during planning and
// execution.
const transferLimit = 8

// VarAction is the payload of one variable decision: the value travelling
// with the transfer (local value for pushes, remote value for pulls).
type VarAction struct {
	Name  string
	Value string
}

// DisplayName implements Named.
func (a VarAction) DisplayName() string { return a.Name }

// VarsRequest describes one variable reconciliation batch.
type VarsRequest struct {
	Mode Mode

	// Tolerance is the unchanged window; zero means DefaultTolerance.
	Tolerance time.Duration

	// Local is the parsed local dotenv file, or nil when it is missing.
	Local *dotenv.Document

	// Template, when non-nil, chooses which names are synchronized.
	// Otherwise the local file's names are used.
	Template *dotenv.Document

	// Secrets is the vault side.
	Secrets vault.SecretStore
}

// PlanVars computes the decision set for a variable batch. It reads both
// sides but changes nothing.
//
// The unit set is the template's names when a template is present,
// otherwise the local file's. Identical values on both sides skip as
// "unchanged" without consulting timestamps; the always-modes transfer
// regardless. ModePushAlways never reads the vault at all.
func PlanVars(ctx context.Context, req VarsRequest) ([]Decision[VarAction], error) {
	names, err := req.unitNames()
	if err != nil {
		return nil, err
	}
	tolerance := req.Tolerance
	if tolerance == 0 {
		tolerance = DefaultTolerance
	}

	remotes, err := fetchSecrets(ctx, req, names)
	if err != nil {
		return nil, err
	}

	actions := make([]Decision[VarAction], 0, len(names))
	for i, name := range names {
		localValue, localOK := "", false
		var localTime time.Time
		if req.Local != nil {
			localValue, localOK = req.Local.Lookup(name)
			if localOK {
				localTime = req.Local.LastModified()
			}
		}
		remote := remotes[i]

		var action Decision[VarAction]
		switch {
		case req.Mode == ModePushAlways && !localOK:
			action = Decision[VarAction]{Op: OpSkip, Reason: "no local value", Payload: VarAction{Name: name}}
		case req.Mode == ModePushAlways:
			action = Decision[VarAction]{Op: OpPush, Time: localTime, Payload: VarAction{Name: name, Value: localValue}}
		case req.Mode == ModePullAlways && remote == nil:
			action = Decision[VarAction]{Op: OpSkip, Reason: "no remote value", Payload: VarAction{Name: name}}
		case req.Mode != ModePullAlways && localOK && remote != nil && localValue == remote.Value:
			action = Decision[VarAction]{Op: OpSkip, Reason: "unchanged", Payload: VarAction{Name: name}}
		default:
			var remoteTime time.Time
			if remote != nil {
				remoteTime = remote.Updated
			}
			action = Decide(req.Mode, localTime, remoteTime, tolerance, VarAction{Name: name})
			switch action.Op {
			case OpPush:
				action.Payload.Value = localValue
			case OpPull:
				action.Payload.Value = remote.Value
			}
		}
		actions = append(actions, action)
	}

	SortActions(actions)
	return actions, nil
}

// unitNames returns the sorted set of names to reconcile.
func (req VarsRequest) unitNames() ([]string, error) {
	switch {
	case req.Template != nil:
		return req.Template.Names(), nil
	case req.Local != nil:
		return req.Local.Names(), nil
	default:
		return nil, errors.New("cannot synchronize without a dotenv or dotenv template file")
	}
}

// fetchSecrets reads the vault value for each name concurrently. A missing
// secret yields nil; a secret with no usable timestamp is a TimeError.
// ModePushAlways skips the read entirely.
func fetchSecrets(ctx context.Context, req VarsRequest, names []string) ([]*vault.Secret, error) {
	remotes := make([]*vault.Secret, len(names))
	if req.Mode == ModePushAlways {
		return remotes, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(transferLimit)
	for i, name := range names {
		g.Go(func() error {
			secret, err := req.Secrets.Get(ctx, vault.RemoteName(name))
			if errors.Is(err, vault.ErrNotFound) {
				return nil
			}
			if err != nil {
				return &TransportError{Op: "get secret", Name: name, Err: err}
			}
			if secret.Updated.IsZero() {
				return &TimeError{Name: name, Message: "remote secret has no last-modified timestamp"}
			}
			remotes[i] = &secret
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return remotes, nil
}

// ExecuteVars runs a variable plan: pushes are written to the vault
// concurrently, and pulled values are applied to the local file in one
// rewrite. The rewritten file's mtime becomes the newest timestamp among
// the pulled values (or the prior local mtime if newer), so a following
// sync sees the file as old as its content, not as freshly written.
//
// A failed push aborts the remaining pushes but does not undo completed
// ones, and does not prevent the local rewrite.
func ExecuteVars(ctx context.Context, actions []Decision[VarAction], secrets vault.SecretStore, local *dotenv.Document, path string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(transferLimit)

	edits := make(map[string]string)
	var newest time.Time
	if local != nil {
		newest = local.LastModified()
	}

	for _, action := range actions {
		switch action.Op {
		case OpPush:
			name, value := action.Payload.Name, action.Payload.Value
			g.Go(func() error {
				if err := secrets.Set(gctx, vault.RemoteName(name), value); err != nil {
					return &TransportError{Op: "set secret", Name: name, Err: err}
				}
				return nil
			})
		case OpPull:
			edits[action.Payload.Name] = action.Payload.Value
			if action.Time.After(newest) {
				newest = action.Time
			}
		}
	}

	if len(edits) > 0 {
		doc := local
		if doc == nil {
			doc = dotenv.NewDocument()
		}
		if err := dotenv.Save(path, doc.Replace(edits), newest); err != nil {
			return fmt.Errorf("apply pulled values: %w", err)
		}
	}

	return g.Wait()
}
