package provision

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageError(t *testing.T) {
	cause := errors.New("connection refused")
	err := stageErr(StageConnect, cause)

	assert.Equal(t, "provision connect: connection refused", err.Error())
	assert.True(t, errors.Is(err, cause))
}

func TestStageOf(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name      string
		err       error
		wantStage Stage
		wantOK    bool
	}{
		{"staged", stageErr(StageNavigate, cause), StageNavigate, true},
		{"wrapped staged", fmt.Errorf("outer: %w", stageErr(StageDebug, cause)), StageDebug, true},
		{"plain", cause, "", false},
		{"nil", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, ok := StageOf(tt.err)
			require.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantStage, stage)
		})
	}
}
