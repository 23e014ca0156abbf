package content

import (
	"net/url"
	"strings"
)

var imageExts = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "webp": true, "bmp": true,
}

var audioExts = map[string]bool{
	"wav": true, "mp3": true, "ogg": true, "flac": true, "aac": true, "m4a": true,
}

// ExtFromURL returns the extension of the URL's last path segment, or ""
// when the segment carries no dot.
func ExtFromURL(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	}
	segment := p
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		segment = p[i+1:]
	}
	i := strings.LastIndexByte(segment, '.')
	if i < 0 || i == len(segment)-1 {
		return ""
	}
	return strings.ToLower(segment[i+1:])
}

// MIMEFromFilename maps a filename's extension onto a MIME type: known
// image and audio extensions get their media type, anything else falls
// back to application/<ext>.
func MIMEFromFilename(name string) string {
	ext := ExtFromURL(name)
	if ext == "" {
		return ""
	}
	switch {
	case imageExts[ext]:
		return "image/" + ext
	case audioExts[ext]:
		return "audio/" + ext
	default:
		return "application/" + ext
	}
}

// ExtFromMIME derives a file extension from a MIME type's subtype.
func ExtFromMIME(mimeType string) string {
	if i := strings.IndexByte(mimeType, '/'); i >= 0 && i < len(mimeType)-1 {
		return mimeType[i+1:]
	}
	return ""
}
