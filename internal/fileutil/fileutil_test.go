package fileutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lepinkainen/podio/internal/book"
)

func sampleList() book.BookList {
	return book.BookList{Books: []book.Book{
		book.Merge(
			book.NewListingBook("Foo - 3 Episodes", "05/01/24", ""),
			book.NewFeedBook(book.FeedFields{Title: "Foo", Authors: []string{"Jane Doe"}}),
			"http://podiobooks.com/title/foo/feed/",
		),
		book.Errored(book.TitleUnavailableMessage),
	}}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.json")

	assert.False(t, FileExists(path))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
	assert.True(t, FileExists(path))
	assert.False(t, FileExists(dir), "directories are not files")
}

func TestWriteFileWithOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.txt")

	written, err := WriteFileWithOverwrite(path, []byte("first"), 0644, false)
	require.NoError(t, err)
	assert.True(t, written)

	written, err = WriteFileWithOverwrite(path, []byte("second"), 0644, false)
	require.NoError(t, err)
	assert.False(t, written)
	content, _ := os.ReadFile(path)
	assert.Equal(t, "first", string(content))

	written, err = WriteFileWithOverwrite(path, []byte("third"), 0644, true)
	require.NoError(t, err)
	assert.True(t, written)
	content, _ = os.ReadFile(path)
	assert.Equal(t, "third", string(content))
}

func TestWriteFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")

	written, err := WriteFile(sampleList(), FormatJSON, path, false)
	require.NoError(t, err)
	require.True(t, written)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"books": [
			{
				"title": "Foo - 3 Episodes",
				"authors": ["Jane Doe"],
				"lastUpdated": "05/01/24",
				"feedUrl": "http://podiobooks.com/title/foo/feed/"
			},
			{
				"title": "",
				"error": "`+book.TitleUnavailableMessage+`"
			}
		]
	}`, string(content))
}

func TestWriteFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")

	_, err := WriteFile(sampleList(), FormatYAML, path, false)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded book.BookList
	require.NoError(t, yaml.Unmarshal(content, &decoded))
	assert.Equal(t, sampleList(), decoded)
	assert.Contains(t, string(content), "lastUpdated: 05/01/24")
}

func TestWriteFile_UnknownFormat(t *testing.T) {
	_, err := WriteFile(sampleList(), "xml", filepath.Join(t.TempDir(), "x"), true)
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatJSON, book.BookList{Books: []book.Book{}, Error: "down"}))
	assert.JSONEq(t, `{"books": [], "error": "down"}`, buf.String())

	buf.Reset()
	require.NoError(t, Encode(&buf, FormatYAML, book.BookList{Books: []book.Book{}, Error: "down"}))
	assert.Equal(t, "books: []\nerror: down\n", buf.String())

	assert.Error(t, Encode(&buf, "csv", nil))
}
