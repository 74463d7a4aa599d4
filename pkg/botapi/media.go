package botapi

import (
	"bytes"
	"io"
	"net/url"
	"os"
	"path/filepath"
)

// MediaKind names a media type and the form field that carries it.
type MediaKind string

// Media kinds accepted by the send* media methods.
const (
	MediaPhoto    MediaKind = "photo"
	MediaAudio    MediaKind = "audio"
	MediaVoice    MediaKind = "voice"
	MediaSticker  MediaKind = "sticker"
	MediaDocument MediaKind = "document"
	MediaVideo    MediaKind = "video"
)

// Method returns the Bot API method sending this kind: photo -> sendPhoto.
func (k MediaKind) Method() string {
	if k == "" {
		return ""
	}
	s := string(k)
	first := s[0]
	if first >= 'a' && first <= 'z' {
		first -= 'a' - 'A'
	}
	return "send" + string(first) + s[1:]
}

type fileSource int

const (
	sourceURL fileSource = iota + 1
	sourceID
	sourcePath
	sourceReader
)

// InputFile is a media value: a remote URL, an opaque file identifier issued
// by Telegram, or local content. Build one with FileURL, FileID, FilePath,
// FileReader, FileBytes or ParseInputFile.
type InputFile struct {
	source fileSource
	value  string // URL, file_id or local path
	name   string // upload file name
	reader io.Reader
}

// FileURL references remote content. It is downloaded and re-uploaded.
func FileURL(rawURL string) InputFile {
	return InputFile{source: sourceURL, value: rawURL}
}

// FileID references content Telegram already stores.
func FileID(id string) InputFile {
	return InputFile{source: sourceID, value: id}
}

// FilePath references a local file to upload.
func FilePath(path string) InputFile {
	return InputFile{source: sourcePath, value: path, name: filepath.Base(path)}
}

// FileReader uploads the content read from r under name.
func FileReader(name string, r io.Reader) InputFile {
	return InputFile{source: sourceReader, name: name, reader: r}
}

// FileBytes uploads data under name.
func FileBytes(name string, data []byte) InputFile {
	return FileReader(name, bytes.NewReader(data))
}

// ParseInputFile classifies a bare string: an absolute http(s) URL is remote
// content, a path naming an existing regular file is local content, and
// anything else is taken to be an opaque file identifier.
func ParseInputFile(s string) InputFile {
	if isRemoteURL(s) {
		return FileURL(s)
	}
	if info, err := os.Stat(s); err == nil && info.Mode().IsRegular() {
		return FilePath(s)
	}
	return FileID(s)
}

// IsFileID reports whether f is an opaque file identifier.
func (f InputFile) IsFileID() bool { return f.source == sourceID }

// IsRemote reports whether f must be fetched before upload.
func (f InputFile) IsRemote() bool { return f.source == sourceURL }

// String returns the URL, identifier or path of f, or its upload name.
func (f InputFile) String() string {
	if f.value != "" {
		return f.value
	}
	return f.name
}

// isRemoteURL reports whether s is an absolute HTTP(S) URL with a host.
func isRemoteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
