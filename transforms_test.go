package taskgen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/taskgen/bundle"
)

type brokenLoader struct{}

func (brokenLoader) Load(name string) (bundle.TransformFunc, error) {
	return nil, errors.New("module failed to initialise")
}

func TestTransformResolver(t *testing.T) {
	log := &mockLogger{}
	r := NewTransformResolver(bundle.NewLoader(), log)

	got := r.Resolve([]TransformRef{
		{Name: "envify", Options: map[string]any{"NODE_ENV": "production"}},
		{Name: "nope"},
		{Name: "strictify", Options: map[string]any{}},
		{Name: "banner", Options: "not an object"},
	})

	require.Len(t, got, 3)
	assert.Equal(t, "envify", got[0].Name)
	assert.Equal(t, map[string]any{"NODE_ENV": "production"}, got[0].Options)
	assert.Equal(t, "strictify", got[1].Name)
	assert.Nil(t, got[1].Options)
	assert.Equal(t, "banner", got[2].Name)
	assert.Nil(t, got[2].Options)
	assert.Equal(t, []string{"Transform is not found"}, log.messages("ERROR"))
}

func TestTransformResolverOtherErrors(t *testing.T) {
	log := &mockLogger{}
	got := NewTransformResolver(brokenLoader{}, log).Resolve([]TransformRef{{Name: "a"}, {Name: "b"}})
	assert.Empty(t, got)
	assert.Equal(t, []string{"module failed to initialise", "module failed to initialise"}, log.messages("ERROR"))
}
