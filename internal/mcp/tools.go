package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opendaw/opendaw-mcp/internal/domain/project"
	"github.com/opendaw/opendaw-mcp/internal/mistral"
)

// ProjectRepository defines the project operations the tools need.
type ProjectRepository interface {
	Create(ctx context.Context, req project.CreateRequest) (*project.Project, error)
	Load(ctx context.Context, id string) (*project.Project, error)
	List(ctx context.Context) ([]project.Summary, error)
	Delete(ctx context.Context, id string) error
	AddTrack(ctx context.Context, projectID, name string, trackType project.TrackType) (*project.Track, *project.Project, error)
	AddGeneratedTrack(ctx context.Context, projectID string, gen project.GeneratedTrack) (*project.Track, *project.Project, error)
	SaveAudio(ctx context.Context, projectID, audioID string, data []byte) error
	SaveExport(ctx context.Context, projectID, exportID, format string, data []byte) error
	Stats(ctx context.Context) project.StorageStats
}

// TrackGenerator produces AI track content. Nil when no API key is
// configured, degrading only generate_json_track.
type TrackGenerator interface {
	GenerateTrack(ctx context.Context, req mistral.TrackRequest) (map[string]any, error)
}

// Renderer produces placeholder audio and export artifacts.
type Renderer interface {
	RenderClip(durationSeconds int) []byte
	RenderExport(proj *project.Project, format string) ([]byte, string, error)
}

// Tools bundles the dependencies behind the capability set.
type Tools struct {
	repo     ProjectRepository
	gen      TrackGenerator
	renderer Renderer
	logger   *slog.Logger
}

// RegisterAll registers every tool, resource, and prompt on the registry.
// Called once at process start.
func RegisterAll(reg *Registry, repo ProjectRepository, gen TrackGenerator, renderer Renderer, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tools{repo: repo, gen: gen, renderer: renderer, logger: logger}
	t.registerTools(reg)
	registerResources(reg, repo)
	registerPrompts(reg)
}

func (t *Tools) registerTools(reg *Registry) {
	reg.RegisterTool(Tool{
		Name:        "create_project",
		Description: "Create a new music project",
		InputSchema: objectSchema(map[string]any{
			"name":           stringProp("Project name"),
			"tempo":          intProp("Tempo in BPM (default 120)"),
			"time_signature": stringProp("Time signature (default 4/4)"),
		}, "name"),
		Handler: t.createProject,
	})
	reg.RegisterTool(Tool{
		Name:        "load_project",
		Description: "Load an existing project",
		InputSchema: objectSchema(map[string]any{
			"project_id": stringProp("Project ID to load"),
		}, "project_id"),
		Handler: t.loadProject,
	})
	reg.RegisterTool(Tool{
		Name:        "list_projects",
		Description: "List all available projects",
		InputSchema: objectSchema(map[string]any{}),
		Handler:     t.listProjects,
	})
	reg.RegisterTool(Tool{
		Name:        "add_track",
		Description: "Add a new track to a project",
		InputSchema: objectSchema(map[string]any{
			"project_id": stringProp("Project ID"),
			"name":       stringProp("Track name"),
			"track_type": stringProp("Track type: audio, midi, or instrument (default audio)"),
		}, "project_id", "name"),
		Handler: t.addTrack,
	})
	reg.RegisterTool(Tool{
		Name:        "generate_audio",
		Description: "Generate placeholder audio for a track",
		InputSchema: objectSchema(map[string]any{
			"project_id": stringProp("Project ID"),
			"track_id":   stringProp("Track ID"),
			"prompt":     stringProp("Audio generation prompt"),
			"duration":   intProp("Duration in seconds (default 30)"),
		}, "project_id", "track_id", "prompt"),
		Handler: t.generateAudio,
	})
	reg.RegisterTool(Tool{
		Name:        "generate_json_track",
		Description: "Generate an AI-composed track as structured JSON",
		InputSchema: objectSchema(map[string]any{
			"project_id": stringProp("Project ID"),
			"track_type": stringProp("Track subtype: melody, rhythm, bass, harmony, or ambient (default melody)"),
			"prompt":     stringProp("Musical description to compose from"),
		}, "project_id", "prompt"),
		Handler: t.generateJSONTrack,
	})
	reg.RegisterTool(Tool{
		Name:        "export_project",
		Description: "Export a project to wav, mp3, or dawproject",
		InputSchema: objectSchema(map[string]any{
			"project_id": stringProp("Project ID"),
			"format":     stringProp("Export format: wav, mp3, or dawproject (default wav)"),
		}, "project_id"),
		Handler: t.exportProject,
	})
	reg.RegisterTool(Tool{
		Name:        "delete_project",
		Description: "Delete a project and all of its stored assets",
		InputSchema: objectSchema(map[string]any{
			"project_id": stringProp("Project ID to delete"),
		}, "project_id"),
		Handler: t.deleteProject,
	})
	reg.RegisterTool(Tool{
		Name:        "get_storage_stats",
		Description: "Report object counts and storage usage",
		InputSchema: objectSchema(map[string]any{}),
		Handler:     t.storageStats,
	})
}

func (t *Tools) createProject(ctx context.Context, args map[string]any) (string, error) {
	proj, err := t.repo.Create(ctx, project.CreateRequest{
		Name:          argString(args, "name", ""),
		Tempo:         argInt(args, "tempo", 0),
		TimeSignature: argString(args, "time_signature", ""),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Created project %q with ID %s (tempo %d BPM, time signature %s)",
		proj.Name, proj.ID, proj.Tempo, proj.TimeSignature), nil
}

// loadProject reports a missing project as plain result text rather than an
// error flag; absence is an answer, not a failure.
func (t *Tools) loadProject(ctx context.Context, args map[string]any) (string, error) {
	id := argString(args, "project_id", "")
	proj, err := t.repo.Load(ctx, id)
	if errors.Is(err, project.ErrProjectNotFound) {
		return fmt.Sprintf("Project %s not found", id), nil
	}
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Loaded project %q (ID %s)\n", proj.Name, proj.ID)
	fmt.Fprintf(&b, "Tempo: %d BPM, time signature: %s\n", proj.Tempo, proj.TimeSignature)
	fmt.Fprintf(&b, "Last modified: %s\n", proj.LastModified.Format(time.RFC3339))
	fmt.Fprintf(&b, "Tracks: %d", len(proj.Tracks))
	for _, track := range proj.Tracks {
		fmt.Fprintf(&b, "\n  - %s (%s)", track.Name, track.Type)
	}
	return b.String(), nil
}

func (t *Tools) listProjects(ctx context.Context, args map[string]any) (string, error) {
	summaries, err := t.repo.List(ctx)
	if err != nil {
		return "", err
	}
	if len(summaries) == 0 {
		return "No projects found. Create your first project!", nil
	}

	var b strings.Builder
	b.WriteString("Available projects:\n")
	for _, s := range summaries {
		fmt.Fprintf(&b, "\n%s\n  ID: %s\n  Modified: %s\n  Tracks: %d\n",
			s.Name, s.ID, s.LastModified.Format(time.RFC3339), s.TrackCount)
	}
	return b.String(), nil
}

func (t *Tools) addTrack(ctx context.Context, args map[string]any) (string, error) {
	projectID := argString(args, "project_id", "")
	track, proj, err := t.repo.AddTrack(ctx,
		projectID,
		argString(args, "name", ""),
		project.TrackType(argString(args, "track_type", string(project.TrackTypeAudio))),
	)
	if errors.Is(err, project.ErrProjectNotFound) {
		return fmt.Sprintf("Project %s not found", projectID), nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Added %s track %q to project %q (track ID %s, total tracks %d)",
		track.Type, track.Name, proj.Name, track.ID, len(proj.Tracks)), nil
}

func (t *Tools) generateAudio(ctx context.Context, args map[string]any) (string, error) {
	projectID := argString(args, "project_id", "")
	trackID := argString(args, "track_id", "")
	prompt := argString(args, "prompt", "")
	duration := argInt(args, "duration", 30)

	if _, err := t.repo.Load(ctx, projectID); err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			return fmt.Sprintf("Project %s not found", projectID), nil
		}
		return "", err
	}

	audioID := uuid.NewString()
	clip := t.renderer.RenderClip(duration)
	if err := t.repo.SaveAudio(ctx, projectID, audioID, clip); err != nil {
		return "", err
	}
	return fmt.Sprintf("Generated placeholder audio for track %s\nAudio ID: %s\nPrompt: %s\nDuration: %ds\nNote: integrate a real AI audio generation service for actual content",
		trackID, audioID, prompt, duration), nil
}

func (t *Tools) generateJSONTrack(ctx context.Context, args map[string]any) (string, error) {
	if t.gen == nil {
		return "", fmt.Errorf("AI generation unavailable: no Mistral API key configured")
	}

	projectID := argString(args, "project_id", "")
	subtype := argString(args, "track_type", "melody")
	prompt := argString(args, "prompt", "")

	proj, err := t.repo.Load(ctx, projectID)
	if errors.Is(err, project.ErrProjectNotFound) {
		return fmt.Sprintf("Project %s not found", projectID), nil
	}
	if err != nil {
		return "", err
	}

	data, err := t.gen.GenerateTrack(ctx, mistral.TrackRequest{
		Subtype:       subtype,
		Prompt:        prompt,
		Tempo:         proj.Tempo,
		TimeSignature: proj.TimeSignature,
	})
	if err != nil {
		return "", fmt.Errorf("generating track content: %w", err)
	}

	name, _ := data["title"].(string)
	track, proj, err := t.repo.AddGeneratedTrack(ctx, projectID, project.GeneratedTrack{
		Name:       name,
		Subtype:    subtype,
		Prompt:     prompt,
		Data:       data,
		Provenance: "mistral",
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Generated %s track %q in project %q (track ID %s, total tracks %d)",
		track.Subtype, track.Name, proj.Name, track.ID, len(proj.Tracks)), nil
}

func (t *Tools) exportProject(ctx context.Context, args map[string]any) (string, error) {
	projectID := argString(args, "project_id", "")
	format := argString(args, "format", "wav")

	if !project.ValidExportFormat(format) {
		return "", fmt.Errorf("%w: export format must be wav, mp3, or dawproject", project.ErrInvalidInput)
	}

	proj, err := t.repo.Load(ctx, projectID)
	if errors.Is(err, project.ErrProjectNotFound) {
		return fmt.Sprintf("Project %s not found", projectID), nil
	}
	if err != nil {
		return "", err
	}

	data, _, err := t.renderer.RenderExport(proj, format)
	if err != nil {
		return "", err
	}

	exportID := uuid.NewString()
	if err := t.repo.SaveExport(ctx, projectID, exportID, format, data); err != nil {
		return "", err
	}
	return fmt.Sprintf("Exported project %q to %s\nExport ID: %s\nNote: placeholder render, integrate a real audio engine for actual output",
		proj.Name, strings.ToUpper(format), exportID), nil
}

func (t *Tools) deleteProject(ctx context.Context, args map[string]any) (string, error) {
	id := argString(args, "project_id", "")
	if err := t.repo.Delete(ctx, id); err != nil {
		return "", err
	}
	return fmt.Sprintf("Deleted project %s and all associated assets", id), nil
}

func (t *Tools) storageStats(ctx context.Context, args map[string]any) (string, error) {
	stats := t.repo.Stats(ctx)
	return fmt.Sprintf("Projects: %d\nAudio files: %d\nMIDI files: %d\nExports: %d\nStorage used: %d bytes",
		stats.TotalProjects, stats.TotalAudioFiles, stats.TotalMIDIFiles, stats.TotalExports, stats.StorageUsedBytes), nil
}

// Schema helpers.

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func intProp(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

// Argument helpers. JSON numbers decode as float64.

func argString(args map[string]any, name, fallback string) string {
	if v, ok := args[name].(string); ok && v != "" {
		return v
	}
	return fallback
}

func argInt(args map[string]any, name string, fallback int) int {
	switch v := args[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return fallback
}
