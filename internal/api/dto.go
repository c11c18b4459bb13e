package api

import (
	"github.com/starford/lotpad/internal/editor"
	"github.com/starford/lotpad/internal/models"
)

// EditRequest is the request body for PUT /editor/text.
type EditRequest struct {
	Text string `json:"text"`
}

// SaveRequest is the request body for save and save-as. Name answers the
// file-name prompt; it is ignored by save when the session already has one.
type SaveRequest struct {
	Name string `json:"name"`
}

// EditorState is the editor snapshot returned by every editor route.
type EditorState = editor.State

// FileListResponse wraps the stored file listing.
type FileListResponse struct {
	Files []models.FileInfo `json:"files"`
}

// FileResponse carries one stored document.
type FileResponse struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}
