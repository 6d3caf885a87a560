package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchIsCaseInsensitiveAndOrdered(t *testing.T) {
	c := New(
		Document{Filename: "MATH101-2021.pdf", Description: "a"},
		Document{Filename: "CS101-2022.pdf", Description: "b"},
		Document{Filename: "math202.pdf", Description: "c"},
	)

	got := c.Search("MaTh")
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Description)
	assert.Equal(t, "c", got[1].Description)
}

func TestSearchDefaultCatalog(t *testing.T) {
	got := Default().Search("uhas")
	require.Len(t, got, 4)
	for i, d := range got {
		assert.Equal(t, "UHAS.pdf", d.Filename)
		assert.Equal(t, []string{"Description 1", "Description 2", "Description 3", "Description 4"}[i], d.Description)
	}
}

func TestSearchNoMatch(t *testing.T) {
	assert.Empty(t, Default().Search("zzz-nomatch"))
}

func TestSearchEmptyQueryMatchesAll(t *testing.T) {
	c := Default()
	assert.Len(t, c.Search(""), c.Len())
}

func TestSearchDoesNotExposeInternalSlice(t *testing.T) {
	c := Default()
	got := c.Search("uhas")
	got[0].Filename = "changed.pdf"
	assert.Equal(t, "UHAS.pdf", c.Search("uhas")[0].Filename)
}

func TestNilCatalog(t *testing.T) {
	var c *Catalog
	assert.Nil(t, c.Search("x"))
	assert.Zero(t, c.Len())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := "documents:\n  - filename: CS101-2023.pdf\n    description: Intro to CS, 2023\n  - filename: MATH101.pdf\n    description: Calculus\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
	assert.Equal(t, Document{Filename: "CS101-2023.pdf", Description: "Intro to CS, 2023"}, c.All()[0])
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	data := "[[documents]]\nfilename = \"PHY101.pdf\"\ndescription = \"Physics\"\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []Document{{Filename: "PHY101.pdf", Description: "Physics"}}, c.All())
}

func TestLoadRejectsEmptyFilename(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yml")
	require.NoError(t, os.WriteFile(path, []byte("documents:\n  - description: nameless\n"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrEmptyFilename)
}

func TestLoadUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
