package mcp

import (
	"context"
	"encoding/json"
	"fmt"
)

func registerResources(reg *Registry, repo ProjectRepository) {
	reg.RegisterResource(Resource{
		URI:         "opendaw://projects",
		Name:        "Project List",
		Description: "List of all music projects",
		MIMEType:    "application/json",
		Reader: func(ctx context.Context) (string, error) {
			summaries, err := repo.List(ctx)
			if err != nil {
				return "", fmt.Errorf("listing projects: %w", err)
			}
			body, err := json.MarshalIndent(summaries, "", "  ")
			if err != nil {
				return "", err
			}
			return string(body), nil
		},
	})
}
