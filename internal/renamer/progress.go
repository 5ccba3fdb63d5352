package renamer

import "github.com/innovinitylabs/obsidian-paste-image-rename/pkg/types"

type ProgressCallback func(update ProgressUpdate)

type ProgressUpdate struct {
	Type     string            `json:"type"`
	Message  string            `json:"message,omitempty"`
	Current  int               `json:"current,omitempty"`
	Total    int               `json:"total,omitempty"`
	Filename string            `json:"filename,omitempty"`
	Action   types.TaskAction  `json:"action,omitempty"`
	Summary  *types.RunSummary `json:"summary,omitempty"`
	Error    string            `json:"error,omitempty"`
}
