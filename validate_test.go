package taskgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckTaskConfig(t *testing.T) {
	assert.Empty(t, CheckTaskConfig(decodeTaskConfigs(t, cssConfig)[0]))

	problems := CheckTaskConfig(decodeTaskConfigs(t, `{"subTasks": [
		{"name": "a", "src": {"include": []}, "dest": "/d"},
		{"plugins": ["~missing"], "src": {"include": ["/x"]}, "dest": "/d"}
	]}`)[0])
	if assert.Len(t, problems, 3) {
		assert.ErrorIs(t, problems[0], ErrTaskNameMissing)
		assert.ErrorIs(t, problems[1], ErrSubTaskInvalid)
		assert.ErrorIs(t, problems[2], ErrInheritedPluginMiss)
	}

	assert.ErrorIs(t, CheckTaskConfig(TaskConfig{Name: "x"})[0], ErrSubTasksMissing)
}
