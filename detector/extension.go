package detector

import (
	"mime"
	"path/filepath"
	"strings"
)

// extensionToMIME maps file extensions of archival formats to mimetypes.
var extensionToMIME = map[string]string{
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".tif":   "image/tiff",
	".tiff":  "image/tiff",
	".jp2":   "image/jp2",
	".dpx":   "image/x-dpx",
	".pdf":   "application/pdf",
	".txt":   "text/plain",
	".csv":   "text/csv",
	".xml":   "text/xml",
	".html":  "text/html",
	".htm":   "text/html",
	".xhtml": "application/xhtml+xml",
	".wav":   "audio/x-wav",
	".flac":  "audio/flac",
	".mp3":   "audio/mpeg",
	".m4a":   "audio/mp4",
	".mp4":   "video/mp4",
	".m1v":   "video/mpeg",
	".m2v":   "video/mpeg",
	".mpg":   "video/mpeg",
	".mpeg":  "video/mpeg",
	".ts":    "video/MP2T",
	".mkv":   "video/x-matroska",
	".mov":   "video/quicktime",
	".dv":    "video/dv",
	".avi":   "video/avi",
}

// ByExtension guesses a mimetype from the file name. It returns "" when the
// extension is unknown.
func ByExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return ""
	}
	if mt, ok := extensionToMIME[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		if base, _, err := mime.ParseMediaType(mt); err == nil {
			return base
		}
	}
	return ""
}

// Guess detects the file at path by content, using the extension when the
// content is not recognized.
func Guess(path string) (Detection, error) {
	d, err := DetectFile(path)
	if err != nil {
		return d, err
	}
	if d.Mimetype == OctetStream {
		if mt := ByExtension(path); mt != "" {
			d.Mimetype = mt
		}
	}
	return d, nil
}
