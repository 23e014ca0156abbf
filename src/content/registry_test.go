package content

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsubasakong/mcp-hfspace/src/schema"
	"github.com/tsubasakong/mcp-hfspace/src/workdir"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindImage, KindOf("Image"))
	assert.Equal(t, KindAudio, KindOf("Audio"))
	assert.Equal(t, KindChatbot, KindOf("Chatbot"))
	assert.Equal(t, KindOther, KindOf("Textbox"))
	assert.Equal(t, KindOther, KindOf(""))
}

func TestExtFromURL(t *testing.T) {
	assert.Equal(t, "png", ExtFromURL("https://example.com/files/cat.PNG?sig=abc"))
	assert.Equal(t, "wav", ExtFromURL("output.wav"))
	assert.Equal(t, "", ExtFromURL("https://example.com/files/noext"))
	assert.Equal(t, "", ExtFromURL(""))
}

func TestMIMEFromFilename(t *testing.T) {
	assert.Equal(t, "image/png", MIMEFromFilename("cat.png"))
	assert.Equal(t, "image/jpeg", MIMEFromFilename("photo.jpeg"))
	assert.Equal(t, "audio/wav", MIMEFromFilename("speech.wav"))
	assert.Equal(t, "audio/mp3", MIMEFromFilename("song.mp3"))
	assert.Equal(t, "application/pdf", MIMEFromFilename("doc.pdf"))
	assert.Equal(t, "", MIMEFromFilename("README"))
}

func testCallContext(t *testing.T) *CallContext {
	t.Helper()
	d, err := workdir.New(t.TempDir())
	require.NoError(t, err)
	return &CallContext{ToolName: "test-tool", Workdir: d}
}

func TestConvertFallbackText(t *testing.T) {
	r := NewRegistry()
	cc := testCallContext(t)

	block := r.Convert(context.Background(), cc, &schema.ReturnInfo{Label: "Result", Component: "Textbox"}, "hello")
	text, ok := block.(mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "Result: hello", text.Text)

	block = r.Convert(context.Background(), cc, &schema.ReturnInfo{Label: "Meta", Component: "JSON"},
		map[string]any{"a": 1})
	text, ok = block.(mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, `Meta: {"a":1}`, text.Text)
}

func TestChatbotFallsThroughToText(t *testing.T) {
	r := DefaultRegistry()
	cc := testCallContext(t)
	block := r.Convert(context.Background(), cc, &schema.ReturnInfo{Label: "Chat", Component: "Chatbot"}, "hi there")
	text, ok := block.(mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "Chat: hi there", text.Text)
}

func TestConvertImage(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G'}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(payload)
	}))
	defer srv.Close()

	cc := testCallContext(t)
	cc.Token = "hf_test"
	r := DefaultRegistry()

	value := map[string]any{"url": srv.URL + "/files/result.png"}
	block := r.Convert(context.Background(), cc, &schema.ReturnInfo{Label: "Image", Component: "Image"}, value)
	img, ok := block.(mcp.ImageContent)
	require.True(t, ok, "expected an image block, got %#v", block)
	// octet-stream header is ignored in favor of the filename extension
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(payload), img.Data)

	entries, err := cc.Workdir.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name, "_image_")
}

func TestConvertImageExplicitMIMEWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{1})
	}))
	defer srv.Close()

	cc := testCallContext(t)
	value := map[string]any{"url": srv.URL + "/x", "mime_type": "image/webp"}
	block, err := ConvertImage(context.Background(), cc, &schema.ReturnInfo{Component: "Image"}, value)
	require.NoError(t, err)
	assert.Equal(t, "image/webp", block.(mcp.ImageContent).MIMEType)
}

func TestConvertImageFailureDegradesToText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	cc := testCallContext(t)
	r := DefaultRegistry()
	block := r.Convert(context.Background(), cc, &schema.ReturnInfo{Label: "Image", Component: "Image"},
		map[string]any{"url": srv.URL + "/gone.png"})
	text, ok := block.(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "Failed to convert Image output")
}

func TestConvertAudio(t *testing.T) {
	payload := []byte("RIFFdata")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	cc := testCallContext(t)
	value := map[string]any{"url": srv.URL + "/speech.wav"}

	block, err := ConvertAudio(context.Background(), cc, &schema.ReturnInfo{Component: "Audio"}, value)
	require.NoError(t, err)
	res, ok := block.(mcp.EmbeddedResource)
	require.True(t, ok)
	blob, ok := res.Resource.(mcp.BlobResourceContents)
	require.True(t, ok)
	assert.Equal(t, "audio/wav", blob.MIMEType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(payload), blob.Blob)

	// desktop mode swaps the blob for a note
	cc.DesktopMode = true
	block, err = ConvertAudio(context.Background(), cc, &schema.ReturnInfo{Component: "Audio"}, value)
	require.NoError(t, err)
	note, ok := block.(mcp.EmbeddedResource).Resource.(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Contains(t, note.Text, "playback is not supported")
}
