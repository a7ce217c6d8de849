package store

import "fmt"

// Key namespaces. Every durable object lives under exactly one of these.
const (
	ProjectPrefix = "projects/"
	AudioPrefix   = "audio/"
	MIDIPrefix    = "midi/"
	ExportPrefix  = "exports/"
)

// Content types used when writing objects.
const (
	ContentTypeJSON = "application/json"
	ContentTypeWAV  = "audio/wav"
	ContentTypeMIDI = "audio/midi"
)

// ProjectKey returns the key of a project document.
func ProjectKey(projectID string) string {
	return ProjectPrefix + projectID
}

// AudioKey returns the key of a raw audio asset.
func AudioKey(projectID, audioID string) string {
	return fmt.Sprintf("%s%s/%s", AudioPrefix, projectID, audioID)
}

// MIDIKey returns the key of a raw MIDI asset.
func MIDIKey(projectID, midiID string) string {
	return fmt.Sprintf("%s%s/%s", MIDIPrefix, projectID, midiID)
}

// ExportKey returns the key of a rendered export.
func ExportKey(projectID, exportID, format string) string {
	return fmt.Sprintf("%s%s/%s.%s", ExportPrefix, projectID, exportID, format)
}

// AssetPrefixes returns the per-project prefixes holding dependent objects,
// used by the cascading delete.
func AssetPrefixes(projectID string) []string {
	return []string{
		AudioPrefix + projectID + "/",
		MIDIPrefix + projectID + "/",
		ExportPrefix + projectID + "/",
	}
}

// ExportContentType maps an export format to its content type.
func ExportContentType(format string) string {
	switch format {
	case "wav":
		return ContentTypeWAV
	case "mp3":
		return "audio/mpeg"
	case "dawproject":
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}
