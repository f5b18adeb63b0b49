package syncer

import "time"

// DefaultTolerance is the window within which two timestamps are treated
// as "the same write". It absorbs clock skew between the local filesystem
// and the vault's clock; without it, every round trip through a store
// that assigns its own timestamps would immediately look out of date.
const DefaultTolerance = time.Minute

// Op is the direction chosen for one unit.
type Op int

const (
	// OpPush transfers the local side to the vault.
	OpPush Op = iota

	// OpPull transfers the vault's side to local storage.
	OpPull

	// OpSkip leaves both sides untouched.
	OpSkip
)

func (o Op) String() string {
	switch o {
	case OpPush:
		return "push"
	case OpPull:
		return "pull"
	default:
		return "skip"
	}
}

// Decision is the reconciliation outcome for one unit. The payload is
// caller-supplied context (name, path, values) threaded through untouched;
// Decide never inspects it.
type Decision[P any] struct {
	Op Op

	// Reason explains a skip; empty for pushes and pulls.
	Reason string

	// Time is the timestamp travelling with the transfer: the local time
	// for a push, the remote time for a pull (modulo the always-mode
	// exceptions documented on Decide). Zero for skips.
	Time time.Time

	Payload P
}

// Decide chooses push, pull, or skip for one unit from its two optional
// last-modified timestamps. The zero time means "this side has no value".
//
// Policy:
//   - Both absent: skip ("not found").
//   - Both present within tolerance of each other: skip ("unchanged"),
//     except the always-modes, which transfer in their direction anyway.
//   - Local strictly newer, or only local present: push; under ModePull
//     skip ("pull disabled"); under ModePullAlways pull the remote value
//     when there is one (carrying the remote time), otherwise skip
//     ("nothing to pull").
//   - Remote strictly newer, or only remote present: pull; under ModePush
//     skip ("push disabled"); under ModePushAlways push the local value
//     when there is one (carrying the local time), otherwise skip
//     ("nothing to push").
//
// When both sides are within tolerance the always-modes carry the local
// timestamp in either direction.
func Decide[P any](mode Mode, local, remote time.Time, tolerance time.Duration, payload P) Decision[P] {
	push := func(at time.Time) Decision[P] {
		return Decision[P]{Op: OpPush, Time: at, Payload: payload}
	}
	pull := func(at time.Time) Decision[P] {
		return Decision[P]{Op: OpPull, Time: at, Payload: payload}
	}
	skip := func(reason string) Decision[P] {
		return Decision[P]{Op: OpSkip, Reason: reason, Payload: payload}
	}

	switch {
	case local.IsZero() && remote.IsZero():
		return skip("not found")

	case remote.IsZero():
		switch mode {
		case ModePull:
			return skip("pull disabled")
		case ModePullAlways:
			return skip("nothing to pull")
		default:
			return push(local)
		}

	case local.IsZero():
		switch mode {
		case ModePush:
			return skip("push disabled")
		case ModePushAlways:
			return skip("nothing to push")
		default:
			return pull(remote)
		}
	}

	diff := local.Sub(remote)
	if diff < 0 {
		diff = -diff
	}
	if diff < tolerance {
		switch mode {
		case ModePushAlways:
			return push(local)
		case ModePullAlways:
			return pull(local)
		default:
			return skip("unchanged")
		}
	}

	if local.After(remote) {
		switch mode {
		case ModePull:
			return skip("pull disabled")
		case ModePullAlways:
			return pull(remote)
		default:
			return push(local)
		}
	}

	switch mode {
	case ModePush:
		return skip("push disabled")
	case ModePushAlways:
		return push(local)
	default:
		return pull(remote)
	}
}
