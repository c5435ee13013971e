// Package mimetype maps asset names to Content-Type values by extension.
package mimetype

import (
	"path"
	"strings"
)

const Default = "application/octet-stream"

var byExt = map[string]string{
	".bin":  "application/octet-stream",
	".css":  "text/css",
	".gif":  "image/gif",
	".htm":  "text/html",
	".html": "text/html",
	".ico":  "image/x-icon",
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".js":   "application/javascript",
	".json": "application/json",
	".m3u8": "application/vnd.apple.mpegurl",
	".mp3":  "audio/mpeg",
	".mp4":  "video/mp4",
	".ogg":  "application/ogg",
	".pdf":  "application/pdf",
	".pkg":  "application/octet-stream",
	".png":  "image/png",
	".svg":  "image/svg+xml",
	".txt":  "text/plain",
	".vpk":  "application/octet-stream",
	".wasm": "application/wasm",
	".webm": "video/webm",
	".xml":  "text/xml",
	".zip":  "application/zip",
}

// ByName returns the MIME type for name, or Default when the extension is
// missing or unknown. Matching is case-insensitive.
func ByName(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if t, ok := byExt[ext]; ok {
		return t
	}
	return Default
}
