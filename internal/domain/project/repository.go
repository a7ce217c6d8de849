package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opendaw/opendaw-mcp/internal/store"
)

// Repository persists projects as whole JSON documents in an object store.
// Every mutation is a full read-modify-write of the document; no locking
// protects concurrent writers, so the last write wins at blob granularity.
type Repository struct {
	store  store.ObjectStore
	logger *slog.Logger
	now    func() time.Time
}

// NewRepository creates a repository over the given store.
func NewRepository(st store.ObjectStore, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{store: st, logger: logger, now: time.Now}
}

// CreateRequest defines project creation inputs. Zero Tempo and empty
// TimeSignature take the documented defaults.
type CreateRequest struct {
	Name          string
	Tempo         int
	TimeSignature string
}

// Create generates a fresh id, persists an empty project, and returns it.
// On a failed write the project must be assumed not to exist.
func (r *Repository) Create(ctx context.Context, req CreateRequest) (*Project, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	tempo := req.Tempo
	if tempo == 0 {
		tempo = DefaultTempo
	}
	if tempo < 0 {
		return nil, fmt.Errorf("%w: tempo must be positive", ErrInvalidInput)
	}
	timeSignature := req.TimeSignature
	if timeSignature == "" {
		timeSignature = DefaultTimeSignature
	}

	now := r.now()
	proj := &Project{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Tempo:         tempo,
		TimeSignature: timeSignature,
		Tracks:        []Track{},
		Created:       now,
		LastModified:  now,
	}

	if err := r.put(ctx, proj); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	return proj, nil
}

// Load fetches and decodes a project document. A missing key is
// ErrProjectNotFound; an unparseable document is ErrCorruptDocument; a store
// outage propagates as a distinct error the caller can branch on.
func (r *Repository) Load(ctx context.Context, id string) (*Project, error) {
	data, err := r.store.Get(ctx, store.ProjectKey(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("loading project %s: %w", id, err)
	}

	var proj Project
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("decoding project %s: %w: %v", id, ErrCorruptDocument, err)
	}
	normalize(&proj)
	return &proj, nil
}

// Save overwrites the project document unconditionally, refreshing
// lastModified first. There is no optimistic concurrency token.
func (r *Repository) Save(ctx context.Context, proj *Project) error {
	proj.LastModified = r.now()
	if err := r.put(ctx, proj); err != nil {
		return fmt.Errorf("saving project %s: %w", proj.ID, err)
	}
	return nil
}

// List enumerates all project documents and returns summaries. Documents
// that fail to load or parse are skipped and logged; listing is best-effort
// over a heterogeneous store.
func (r *Repository) List(ctx context.Context) ([]Summary, error) {
	infos, err := r.store.List(ctx, store.ProjectPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	summaries := make([]Summary, 0, len(infos))
	for _, info := range infos {
		data, err := r.store.Get(ctx, info.Key)
		if err != nil {
			r.logger.Warn("skipping unreadable project document", "key", info.Key, "error", err)
			continue
		}
		var proj Project
		if err := json.Unmarshal(data, &proj); err != nil {
			r.logger.Warn("skipping unparseable project document", "key", info.Key, "error", err)
			continue
		}
		normalize(&proj)
		summaries = append(summaries, Summary{
			ID:            proj.ID,
			Name:          proj.Name,
			Tempo:         proj.Tempo,
			TimeSignature: proj.TimeSignature,
			TrackCount:    len(proj.Tracks),
			Created:       proj.Created,
			LastModified:  proj.LastModified,
		})
	}
	return summaries, nil
}

// Delete removes the project document and every dependent object under the
// audio, midi, and exports prefixes. Each deletion is attempted
// independently; missing objects count as already deleted. The returned
// error aggregates any individual failures (partial failure, not abort).
func (r *Repository) Delete(ctx context.Context, id string) error {
	var failures []error

	if err := r.store.Delete(ctx, store.ProjectKey(id)); err != nil {
		failures = append(failures, fmt.Errorf("project document: %w", err))
	}

	for _, prefix := range store.AssetPrefixes(id) {
		infos, err := r.store.List(ctx, prefix)
		if err != nil {
			failures = append(failures, fmt.Errorf("listing %s: %w", prefix, err))
			continue
		}
		for _, info := range infos {
			if err := r.store.Delete(ctx, info.Key); err != nil {
				failures = append(failures, fmt.Errorf("deleting %s: %w", info.Key, err))
			}
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("deleting project %s: %w", id, errors.Join(failures...))
	}
	return nil
}

// AddTrack appends a track with default mixer state to the project and
// saves it. Track order is arrangement order and is append-only.
func (r *Repository) AddTrack(ctx context.Context, projectID, name string, trackType TrackType) (*Track, *Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil, fmt.Errorf("%w: track name is required", ErrInvalidInput)
	}
	if !trackType.ValidForAdd() {
		return nil, nil, fmt.Errorf("%w: track type must be audio, midi, or instrument", ErrInvalidInput)
	}

	proj, err := r.Load(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}

	track := Track{
		ID:      uuid.NewString(),
		Name:    name,
		Type:    trackType,
		Volume:  DefaultTrackVolume,
		Pan:     0.0,
		Effects: []string{},
		Clips:   []Clip{},
	}
	proj.Tracks = append(proj.Tracks, track)

	if err := r.Save(ctx, proj); err != nil {
		return nil, nil, err
	}
	return &proj.Tracks[len(proj.Tracks)-1], proj, nil
}

// AddGeneratedTrack appends an AI-generated track carrying its prompt,
// structured data payload, and provenance tag.
func (r *Repository) AddGeneratedTrack(ctx context.Context, projectID string, gen GeneratedTrack) (*Track, *Project, error) {
	proj, err := r.Load(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}

	name := gen.Name
	if name == "" {
		name = fmt.Sprintf("%s track", gen.Subtype)
	}
	created := r.now()
	track := Track{
		ID:         uuid.NewString(),
		Name:       name,
		Type:       TrackTypeAIGenerated,
		Effects:    []string{},
		Clips:      []Clip{},
		Subtype:    gen.Subtype,
		Prompt:     gen.Prompt,
		Data:       gen.Data,
		Provenance: gen.Provenance,
		CreatedAt:  &created,
	}
	proj.Tracks = append(proj.Tracks, track)

	if err := r.Save(ctx, proj); err != nil {
		return nil, nil, err
	}
	return &proj.Tracks[len(proj.Tracks)-1], proj, nil
}

// SaveAudio stores a raw audio asset under the project's audio prefix.
func (r *Repository) SaveAudio(ctx context.Context, projectID, audioID string, data []byte) error {
	if err := r.store.Put(ctx, store.AudioKey(projectID, audioID), data, store.ContentTypeWAV); err != nil {
		return fmt.Errorf("saving audio %s: %w", audioID, err)
	}
	return nil
}

// LoadAudio fetches a raw audio asset.
func (r *Repository) LoadAudio(ctx context.Context, projectID, audioID string) ([]byte, error) {
	return r.store.Get(ctx, store.AudioKey(projectID, audioID))
}

// SaveMIDI stores a raw MIDI asset under the project's midi prefix.
func (r *Repository) SaveMIDI(ctx context.Context, projectID, midiID string, data []byte) error {
	if err := r.store.Put(ctx, store.MIDIKey(projectID, midiID), data, store.ContentTypeMIDI); err != nil {
		return fmt.Errorf("saving midi %s: %w", midiID, err)
	}
	return nil
}

// LoadMIDI fetches a raw MIDI asset.
func (r *Repository) LoadMIDI(ctx context.Context, projectID, midiID string) ([]byte, error) {
	return r.store.Get(ctx, store.MIDIKey(projectID, midiID))
}

// SaveExport stores a rendered export. Format must be wav, mp3, or
// dawproject.
func (r *Repository) SaveExport(ctx context.Context, projectID, exportID, format string, data []byte) error {
	if !ValidExportFormat(format) {
		return fmt.Errorf("%w: export format must be wav, mp3, or dawproject", ErrInvalidInput)
	}
	key := store.ExportKey(projectID, exportID, format)
	if err := r.store.Put(ctx, key, data, store.ExportContentType(format)); err != nil {
		return fmt.Errorf("saving export %s: %w", exportID, err)
	}
	return nil
}

// LoadExport fetches a rendered export.
func (r *Repository) LoadExport(ctx context.Context, projectID, exportID, format string) ([]byte, error) {
	return r.store.Get(ctx, store.ExportKey(projectID, exportID, format))
}

// Stats aggregates object counts and sizes across all prefixes.
// Best-effort: an unreachable prefix is logged and skipped.
func (r *Repository) Stats(ctx context.Context) StorageStats {
	var stats StorageStats
	prefixes := []struct {
		prefix string
		count  *int
	}{
		{store.ProjectPrefix, &stats.TotalProjects},
		{store.AudioPrefix, &stats.TotalAudioFiles},
		{store.MIDIPrefix, &stats.TotalMIDIFiles},
		{store.ExportPrefix, &stats.TotalExports},
	}
	for _, p := range prefixes {
		infos, err := r.store.List(ctx, p.prefix)
		if err != nil {
			r.logger.Warn("skipping prefix in storage stats", "prefix", p.prefix, "error", err)
			continue
		}
		*p.count = len(infos)
		for _, info := range infos {
			stats.StorageUsedBytes += info.Size
		}
	}
	return stats
}

// ValidExportFormat reports whether format is a supported export format.
func ValidExportFormat(format string) bool {
	switch format {
	case "wav", "mp3", "dawproject":
		return true
	}
	return false
}

func (r *Repository) put(ctx context.Context, proj *Project) error {
	data, err := json.MarshalIndent(proj, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding project %s: %w", proj.ID, err)
	}
	return r.store.Put(ctx, store.ProjectKey(proj.ID), data, store.ContentTypeJSON)
}

// normalize enforces document shape defaults on decoded projects.
func normalize(proj *Project) {
	if proj.Tempo <= 0 {
		proj.Tempo = DefaultTempo
	}
	if proj.TimeSignature == "" {
		proj.TimeSignature = DefaultTimeSignature
	}
	if proj.Tracks == nil {
		proj.Tracks = []Track{}
	}
}
