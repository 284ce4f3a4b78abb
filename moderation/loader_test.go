package moderation

import (
	"inbox-lab/errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestCensoredLoader_LoadAll(t *testing.T) {
	req := require.New(t)

	// Given two dictionaries sharing a word, with windows line endings in one of them
	files := fstest.MapFS{
		"censored/en.txt":    {Data: []byte("badger\nsnake\n\n")},
		"censored/fr.txt":    {Data: []byte("blaireau\r\nbadger\r\n")},
		"censored/README.md": {Data: []byte("not a dictionary")},
	}

	// When
	data, err := NewCensoredLoader(files).LoadAll("censored")

	// Then words are deduplicated and languages come from file names
	req.NoError(err)
	req.ElementsMatch([]string{"badger", "snake", "blaireau"}, data.Words)
	req.ElementsMatch([]string{"en", "fr"}, data.Languages)
}

func TestCensoredLoader_Empty(t *testing.T) {
	req := require.New(t)
	files := fstest.MapFS{
		"censored/en.txt": {Data: []byte("\n  \n")},
	}

	_, err := NewCensoredLoader(files).LoadAll("censored")
	req.ErrorIs(err, errors.ErrEmptyWords)
}

func TestCensoredLoader_MissingDir(t *testing.T) {
	req := require.New(t)

	_, err := NewCensoredLoader(fstest.MapFS{}).LoadAll("censored")
	req.Error(err)
}
