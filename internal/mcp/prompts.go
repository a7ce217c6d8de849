package mcp

import (
	"fmt"
	"strings"
)

func registerPrompts(reg *Registry) {
	reg.RegisterPrompt(Prompt{
		Name:        "music_creation",
		Description: "Guide a music creation session",
		Arguments: []PromptArgument{
			{Name: "style", Description: "Musical style or genre", Required: true},
			{Name: "mood", Description: "Desired mood or feeling", Required: false},
			{Name: "instruments", Description: "Preferred instruments", Required: false},
		},
		Render: func(args map[string]string) string {
			var b strings.Builder
			fmt.Fprintf(&b, "Help me create a %s music project.", args["style"])
			if mood := args["mood"]; mood != "" {
				fmt.Fprintf(&b, " The mood should be %s.", mood)
			}
			if instruments := args["instruments"]; instruments != "" {
				fmt.Fprintf(&b, " Use these instruments: %s.", instruments)
			}
			b.WriteString(" Start by creating the project, then add tracks for each part of the arrangement.")
			return b.String()
		},
	})
}
