package gradio

import (
	"path/filepath"
	"strings"
)

// HandleFile wraps a local path or URL into the FileData handle Gradio
// expects for file-like parameters.
func HandleFile(pathOrURL string) map[string]any {
	handle := map[string]any{
		"path": pathOrURL,
		"meta": map[string]any{"_type": "gradio.FileData"},
	}
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		handle["url"] = pathOrURL
	} else {
		handle["orig_name"] = filepath.Base(pathOrURL)
	}
	return handle
}
