package documents_test

import (
	"testing"

	"github.com/commodore-dev/commodore/internal/documents"
	"github.com/commodore-dev/commodore/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAncestorsAndFullPath(t *testing.T) {
	database := testutil.OpenDB(t)

	racing := testutil.CreateFolder(t, database, "Racing", nil)
	season := testutil.CreateFolder(t, database, "2026", &racing.ID)
	results := testutil.CreateFolder(t, database, "Results", &season.ID)

	ancestors, err := documents.Ancestors(database, results)
	require.NoError(t, err)
	require.Len(t, ancestors, 2)
	assert.Equal(t, "Racing", ancestors[0].Name)
	assert.Equal(t, "2026", ancestors[1].Name)

	path, err := documents.FullPath(database, results)
	require.NoError(t, err)
	assert.Equal(t, "Racing/2026/Results", path)
}

func TestDescendants(t *testing.T) {
	database := testutil.OpenDB(t)

	root := testutil.CreateFolder(t, database, "Library", nil)
	child := testutil.CreateFolder(t, database, "Minutes", &root.ID)
	grandchild := testutil.CreateFolder(t, database, "2025", &child.ID)
	testutil.CreateFolder(t, database, "Unrelated", nil)

	descendants, err := documents.Descendants(database, root.ID)
	require.NoError(t, err)

	ids := make([]uint, 0, len(descendants))
	for _, folder := range descendants {
		ids = append(ids, folder.ID)
	}
	assert.ElementsMatch(t, []uint{child.ID, grandchild.ID}, ids)
}

func TestValidateParentRejectsCycles(t *testing.T) {
	database := testutil.OpenDB(t)

	root := testutil.CreateFolder(t, database, "Root", nil)
	child := testutil.CreateFolder(t, database, "Child", &root.ID)
	grandchild := testutil.CreateFolder(t, database, "Grandchild", &child.ID)

	assert.ErrorIs(t, documents.ValidateParent(database, root.ID, &root.ID), documents.ErrCircularFolder)
	assert.ErrorIs(t, documents.ValidateParent(database, root.ID, &grandchild.ID), documents.ErrCircularFolder)

	// Moving a leaf under a sibling branch is fine.
	other := testutil.CreateFolder(t, database, "Other", nil)
	assert.NoError(t, documents.ValidateParent(database, grandchild.ID, &other.ID))
	assert.NoError(t, documents.ValidateParent(database, grandchild.ID, nil))
}
