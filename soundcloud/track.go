package soundcloud

import (
	"os"
	"strings"
	"time"

	"github.com/samber/lo"
)

const (
	ProtocolProgressive = "progressive"
	ProtocolHLS         = "hls"
)

type Transcoding struct {
	URL      string
	Protocol string
	MimeType string
	Preset   string
	Quality  string
}

func (t Transcoding) IsProgressive() bool {
	return t.Protocol == ProtocolProgressive
}

type Track struct {
	ID                 int64
	Title              string
	Duration           time.Duration
	Owner              string
	Permalink          string
	Transcodings       []Transcoding
	TrackAuthorization string
}

// Label is the "{owner} - {title}" form used for listings and file names.
func (t Track) Label() string {
	return t.Owner + " - " + t.Title
}

// ProgressiveTranscoding returns the first progressive rendition in catalog order.
func (t Track) ProgressiveTranscoding() (Transcoding, bool) {
	return lo.Find(t.Transcodings, Transcoding.IsProgressive)
}

func (t Track) FileName() string {
	return FileName(t.Owner, t.Title)
}

func FileName(owner, title string) string {
	name := owner + " - " + title + ".mp3"
	name = strings.ReplaceAll(name, "/", "_")
	if os.PathSeparator != '/' {
		name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	}
	return name
}

// MediaLocator is a signed, short-lived media URL. It must not be reused.
type MediaLocator struct {
	URL string
}
