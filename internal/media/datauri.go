package media

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// MimePNG is the encoding used for every generated image at the model boundary.
const MimePNG = "image/png"

var extToMime = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  MimePNG,
	".svg":  "image/svg+xml",
	".webp": "image/webp",
	".gif":  "image/gif",
}

var dataURIPattern = regexp.MustCompile(`data:image/[a-zA-Z0-9.+-]+;base64,[A-Za-z0-9+/]+={0,2}`)

// Image is a decoded inline image.
type Image struct {
	MimeType string
	Data     []byte
}

// EncodeDataURI renders data as a data:<mime>;base64,<payload> string.
func EncodeDataURI(mime string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}

// DecodeDataURI parses a base64 data URI.
func DecodeDataURI(uri string) (Image, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return Image{}, fmt.Errorf("not a data uri")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, fmt.Errorf("data uri missing payload")
	}
	mime, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return Image{}, fmt.Errorf("data uri is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("decode data uri payload: %w", err)
	}
	return Image{MimeType: mime, Data: data}, nil
}

// SplitDataURIs lifts every embedded image data URI out of text.
// The returned text has the URIs removed and surrounding whitespace trimmed.
func SplitDataURIs(text string) (string, []string) {
	uris := dataURIPattern.FindAllString(text, -1)
	if len(uris) == 0 {
		return text, nil
	}
	clean := dataURIPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(clean), uris
}

// MimeFromPath guesses an image mimetype from a file extension, defaulting to PNG.
func MimeFromPath(path string) string {
	if mime, ok := extToMime[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	return MimePNG
}
