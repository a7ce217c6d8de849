package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyLayout(t *testing.T) {
	require.Equal(t, "projects/p1", ProjectKey("p1"))
	require.Equal(t, "audio/p1/a1", AudioKey("p1", "a1"))
	require.Equal(t, "midi/p1/m1", MIDIKey("p1", "m1"))
	require.Equal(t, "exports/p1/e1.wav", ExportKey("p1", "e1", "wav"))
}

func TestAssetPrefixes(t *testing.T) {
	prefixes := AssetPrefixes("p1")
	require.Equal(t, []string{"audio/p1/", "midi/p1/", "exports/p1/"}, prefixes)
}

func TestExportContentType(t *testing.T) {
	require.Equal(t, "audio/wav", ExportContentType("wav"))
	require.Equal(t, "audio/mpeg", ExportContentType("mp3"))
	require.Equal(t, "application/zip", ExportContentType("dawproject"))
	require.Equal(t, "application/octet-stream", ExportContentType("flac"))
}
