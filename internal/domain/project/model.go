package project

import "time"

// Defaults applied when a document or request omits a field.
const (
	DefaultTempo         = 120
	DefaultTimeSignature = "4/4"
	DefaultTrackVolume   = 0.8
)

// TrackType identifies what a track holds.
type TrackType string

const (
	TrackTypeAudio      TrackType = "audio"
	TrackTypeMIDI       TrackType = "midi"
	TrackTypeInstrument TrackType = "instrument"
	// TrackTypeAIGenerated marks tracks whose content was synthesized by a
	// text-generation model rather than recorded or programmed.
	TrackTypeAIGenerated TrackType = "json_ai_generated"
)

// ValidForAdd reports whether t is accepted by add_track. AI-generated
// tracks are created only through generation, never added directly.
func (t TrackType) ValidForAdd() bool {
	switch t {
	case TrackTypeAudio, TrackTypeMIDI, TrackTypeInstrument:
		return true
	}
	return false
}

// Clip is a placed region on a track.
type Clip struct {
	ID     string  `json:"id"`
	Name   string  `json:"name,omitempty"`
	Start  float64 `json:"start"`
	Length float64 `json:"length"`
}

// Track is a child of exactly one project. Its ID is assigned once and the
// track never moves to another project.
type Track struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Type TrackType `json:"type"`

	// Mixer state, meaningful on audio/midi/instrument tracks.
	Volume  float64  `json:"volume"`
	Pan     float64  `json:"pan"`
	Mute    bool     `json:"mute"`
	Solo    bool     `json:"solo"`
	Effects []string `json:"effects"`
	Clips   []Clip   `json:"clips"`

	// AI-generated tracks only.
	Subtype    string         `json:"track_type,omitempty"`
	Prompt     string         `json:"prompt,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	Provenance string         `json:"provenance,omitempty"`
	CreatedAt  *time.Time     `json:"created_at,omitempty"`
}

// Project is the root persisted entity, stored as one JSON document per id.
type Project struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Tempo         int       `json:"tempo"`
	TimeSignature string    `json:"timeSignature"`
	Tracks        []Track   `json:"tracks"`
	Created       time.Time `json:"created"`
	LastModified  time.Time `json:"lastModified"`
}

// Summary is a lightweight representation for listing: the full track array
// is replaced by its count.
type Summary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Tempo         int       `json:"tempo"`
	TimeSignature string    `json:"timeSignature"`
	TrackCount    int       `json:"trackCount"`
	Created       time.Time `json:"created"`
	LastModified  time.Time `json:"lastModified"`
}

// GeneratedTrack carries the inputs and output of an AI generation call.
type GeneratedTrack struct {
	Name       string
	Subtype    string // melody, rhythm, bass, harmony, ambient
	Prompt     string
	Data       map[string]any
	Provenance string
}

// StorageStats aggregates object counts and sizes across the store.
type StorageStats struct {
	TotalProjects    int   `json:"total_projects"`
	TotalAudioFiles  int   `json:"total_audio_files"`
	TotalMIDIFiles   int   `json:"total_midi_files"`
	TotalExports     int   `json:"total_exports"`
	StorageUsedBytes int64 `json:"storage_used_bytes"`
}
