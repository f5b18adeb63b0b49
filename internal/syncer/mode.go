package syncer

import "fmt"

// Mode constrains which transfer directions reconciliation may choose.
type Mode int

const (
	// ModeSync transfers in whichever direction has the newer side.
	ModeSync Mode = iota

	// ModePush only transfers local to remote; pulls become skips.
	ModePush

	// ModePull only transfers remote to local; pushes become skips.
	ModePull

	// ModePushAlways pushes every local value regardless of recency, and
	// never reads remote values at all.
	ModePushAlways

	// ModePullAlways pulls every remote value regardless of recency.
	ModePullAlways
)

var modeNames = map[Mode]string{
	ModeSync:       "sync",
	ModePush:       "push",
	ModePull:       "pull",
	ModePushAlways: "push-always",
	ModePullAlways: "pull-always",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses one of the five mode strings used on the command line.
func ParseMode(s string) (Mode, error) {
	for mode, name := range modeNames {
		if s == name {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("invalid sync mode %q (want sync, push, pull, push-always, or pull-always)", s)
}
