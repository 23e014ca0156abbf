package content

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tsubasakong/mcp-hfspace/src/schema"
	"github.com/tsubasakong/mcp-hfspace/src/workdir"
)

const genericMIME = "application/octet-stream"

// fileValue is the file-shaped payload Gradio returns for media outputs.
type fileValue struct {
	url      string
	origName string
	mimeType string
}

func fileValueOf(value any) (*fileValue, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, errors.New("value is not a file payload")
	}
	fv := &fileValue{}
	fv.url, _ = m["url"].(string)
	fv.origName, _ = m["orig_name"].(string)
	fv.mimeType, _ = m["mime_type"].(string)
	if fv.url == "" {
		return nil, errors.New("file payload carries no URL")
	}
	return fv, nil
}

// fetch downloads an artifact, attaching the bearer token when configured.
func (cc *CallContext) fetch(ctx context.Context, url string) ([]byte, string, error) {
	client := cc.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	if cc.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cc.Token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("fetching %s: %s", url, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// determineMIME resolves the artifact's true type: explicit mime field,
// then original-filename extension, then the response header unless it is
// the generic default, then the hardcoded fallback.
func determineMIME(fv *fileValue, contentType, fallback string) string {
	if fv.mimeType != "" {
		return fv.mimeType
	}
	name := fv.origName
	if name == "" {
		name = fv.url
	}
	if m := MIMEFromFilename(name); m != "" {
		return m
	}
	if contentType != "" && contentType != genericMIME {
		return contentType
	}
	return fallback
}

// artifactExt prefers the original file's extension over one derived from
// the MIME type.
func artifactExt(fv *fileValue, mimeType, fallback string) string {
	name := fv.origName
	if name == "" {
		name = fv.url
	}
	if ext := ExtFromURL(name); ext != "" {
		return ext
	}
	if ext := ExtFromMIME(mimeType); ext != "" {
		return ext
	}
	return fallback
}

// fetchAndSave runs the shared fetch / type-determination / persistence
// pipeline for media outputs.
func fetchAndSave(ctx context.Context, cc *CallContext, value any, prefix, fallbackMIME, fallbackExt string) (data []byte, mimeType, savedPath string, err error) {
	fv, err := fileValueOf(value)
	if err != nil {
		return nil, "", "", err
	}
	data, contentType, err := cc.fetch(ctx, fv.url)
	if err != nil {
		return nil, "", "", err
	}
	mimeType = determineMIME(fv, contentType, fallbackMIME)
	ext := artifactExt(fv, mimeType, fallbackExt)

	if cc.Workdir == nil {
		return data, mimeType, "", nil
	}
	target := cc.Workdir.GenerateFilename(prefix, ext, cc.ToolName)
	savedPath, err = cc.Workdir.SaveFile(data, target)
	if err != nil {
		if !cc.DesktopMode {
			return nil, "", "", fmt.Errorf("saving %s artifact: %w", prefix, err)
		}
		// desktop mode still returns the inline content
		cc.logf("warning: failed to save %s artifact: %v", prefix, err)
		savedPath = ""
	}
	return data, mimeType, savedPath, nil
}

// ConvertImage fetches an image output, persists it locally, and returns
// it as an inline base64 image block.
func ConvertImage(ctx context.Context, cc *CallContext, ret *schema.ReturnInfo, value any) (mcp.Content, error) {
	data, mimeType, _, err := fetchAndSave(ctx, cc, value, "image", "image/png", "png")
	if err != nil {
		return nil, err
	}
	return mcp.NewImageContent(base64.StdEncoding.EncodeToString(data), mimeType), nil
}

// ConvertAudio fetches an audio output, persists it locally, and returns
// an embedded resource referencing the saved file. Desktop mode embeds a
// playback note instead of the raw bytes.
func ConvertAudio(ctx context.Context, cc *CallContext, ret *schema.ReturnInfo, value any) (mcp.Content, error) {
	data, mimeType, savedPath, err := fetchAndSave(ctx, cc, value, "audio", "audio/wav", "wav")
	if err != nil {
		return nil, err
	}
	uri := workdir.FileURI(savedPath)
	if cc.DesktopMode && savedPath != "" {
		note := fmt.Sprintf("Audio saved to %s. Inline audio playback is not supported in this client.", savedPath)
		return mcp.NewEmbeddedResource(mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     note,
		}), nil
	}
	return mcp.NewEmbeddedResource(mcp.BlobResourceContents{
		URI:      uri,
		MIMEType: mimeType,
		Blob:     base64.StdEncoding.EncodeToString(data),
	}), nil
}
