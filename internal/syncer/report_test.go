package syncer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortActions(t *testing.T) {
	actions := []Decision[VarAction]{
		{Op: OpSkip, Reason: "unchanged", Payload: VarAction{Name: "ZULU"}},
		{Op: OpPull, Payload: VarAction{Name: "YANKEE"}},
		{Op: OpPush, Payload: VarAction{Name: "XRAY"}},
		{Op: OpSkip, Reason: "not found", Payload: VarAction{Name: "ALPHA"}},
		{Op: OpPush, Payload: VarAction{Name: "BRAVO"}},
	}
	SortActions(actions)

	var order []string
	for _, action := range actions {
		order = append(order, action.Payload.Name)
	}
	assert.Equal(t, []string{"BRAVO", "XRAY", "YANKEE", "ALPHA", "ZULU"}, order)
}

func TestWriteReport(t *testing.T) {
	actions := []Decision[VarAction]{
		{Op: OpPush, Payload: VarAction{Name: "API_KEY"}},
		{Op: OpPull, Payload: VarAction{Name: "DB_HOST"}},
		{Op: OpSkip, Reason: "unchanged", Payload: VarAction{Name: "DB_PORT"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, actions))
	assert.Equal(t, "<- PUSH: API_KEY\n-> PULL: DB_HOST\n   SKIP: DB_PORT (unchanged)\n", buf.String())
}

func TestUnchanged(t *testing.T) {
	assert.True(t, Unchanged([]Decision[VarAction]{
		{Op: OpSkip, Reason: "unchanged", Payload: VarAction{Name: "A"}},
		{Op: OpSkip, Reason: "not found", Payload: VarAction{Name: "B"}},
	}))
	assert.False(t, Unchanged([]Decision[VarAction]{
		{Op: OpSkip, Reason: "unchanged", Payload: VarAction{Name: "A"}},
		{Op: OpPush, Payload: VarAction{Name: "B"}},
	}))
	assert.True(t, Unchanged[VarAction](nil))
}
