package rack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectSaveLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	projects, err := ListProjects()
	require.NoError(t, err)
	assert.Empty(t, projects)

	r, err := DefaultPatch().Build()
	require.NoError(t, err)
	r.Run(10)
	st, err := r.State()
	require.NoError(t, err)

	name, err := SaveProject("live set", "first take", st)
	require.NoError(t, err)
	assert.Contains(t, name, "_first-take.json")

	projects, err = ListProjects()
	require.NoError(t, err)
	assert.Equal(t, []string{"live-set"}, projects)

	saves, err := ListSaves("live set")
	require.NoError(t, err)
	require.Len(t, saves, 1)
	assert.Equal(t, "first-take", saves[0].Name)

	loaded, err := LoadProject("live set", "")
	require.NoError(t, err)
	assert.Len(t, loaded.Modules, len(st.Modules))
	_, err = FromState(loaded)
	require.NoError(t, err)

	require.NoError(t, DeleteSave("live set", name))
	_, err = LoadProject("live set", "")
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a-b-c", sanitizeFilename("a/b c"))
	assert.Equal(t, "what", sanitizeFilename("wh*at?"))
}
