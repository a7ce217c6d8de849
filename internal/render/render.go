// Package render produces placeholder audio and export artifacts. Real
// audio rendering is out of scope; every artifact is a deterministic stub
// with a valid container shape so downstream tooling can round-trip it.
package render

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/opendaw/opendaw-mcp/internal/domain/project"
)

const (
	sampleRate     = 8000
	maxClipSeconds = 300
)

// Engine renders placeholder artifacts.
type Engine struct{}

// NewEngine creates a render engine.
func NewEngine() *Engine {
	return &Engine{}
}

// RenderClip produces a silent mono 16-bit WAV clip of the given duration.
// Duration is clamped to [1, 300] seconds.
func (e *Engine) RenderClip(durationSeconds int) []byte {
	if durationSeconds < 1 {
		durationSeconds = 1
	}
	if durationSeconds > maxClipSeconds {
		durationSeconds = maxClipSeconds
	}
	return silentWAV(durationSeconds)
}

// RenderExport renders a project to the given format and returns the
// artifact bytes with their content type.
func (e *Engine) RenderExport(proj *project.Project, format string) ([]byte, string, error) {
	switch format {
	case "wav":
		return silentWAV(1), "audio/wav", nil
	case "mp3":
		// No encoder is wired in; emit a tagged placeholder payload.
		return mp3Placeholder(proj), "audio/mpeg", nil
	case "dawproject":
		data, err := dawProjectBundle(proj)
		if err != nil {
			return nil, "", fmt.Errorf("bundling project %s: %w", proj.ID, err)
		}
		return data, "application/zip", nil
	default:
		return nil, "", fmt.Errorf("unsupported export format %q", format)
	}
}

// silentWAV builds a minimal RIFF/WAVE file of zeroed PCM samples.
func silentWAV(durationSeconds int) []byte {
	samples := durationSeconds * sampleRate
	dataSize := samples * 2 // 16-bit mono

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}

func mp3Placeholder(proj *project.Project) []byte {
	return []byte(fmt.Sprintf("placeholder mp3 render of project %s (%d tracks)", proj.ID, len(proj.Tracks)))
}

// dawProjectBundle packs the project document into a zip archive, the
// container shape the dawproject format uses.
func dawProjectBundle(proj *project.Project) ([]byte, error) {
	doc, err := json.MarshalIndent(proj, "", "  ")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("project.json")
	if err != nil {
		return nil, err
	}
	if _, err := f.Write(doc); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
