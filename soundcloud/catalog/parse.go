package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/scplayer/errutil"
	"github.com/xeptore/scplayer/ptr"
	"github.com/xeptore/scplayer/soundcloud"
)

type TrackResponse struct {
	Kind               string  `json:"kind"`
	ID                 int64   `json:"id"`
	Title              string  `json:"title"`
	Duration           int64   `json:"duration"`
	PermalinkURL       string  `json:"permalink_url"`
	TrackAuthorization *string `json:"track_authorization"`
	User               struct {
		Username string `json:"username"`
	} `json:"user"`
	Media struct {
		Transcodings []TranscodingResponse `json:"transcodings"`
	} `json:"media"`
}

type TranscodingResponse struct {
	URL     string `json:"url"`
	Preset  string `json:"preset"`
	Quality string `json:"quality"`
	Format  struct {
		Protocol string `json:"protocol"`
		MimeType string `json:"mime_type"`
	} `json:"format"`
}

func (t TrackResponse) toTrack() soundcloud.Track {
	return soundcloud.Track{
		ID:        t.ID,
		Title:     t.Title,
		Duration:  time.Duration(t.Duration) * time.Millisecond,
		Owner:     t.User.Username,
		Permalink: t.PermalinkURL,
		Transcodings: lo.Map(t.Media.Transcodings, func(v TranscodingResponse, _ int) soundcloud.Transcoding {
			return soundcloud.Transcoding{
				URL:      v.URL,
				Protocol: v.Format.Protocol,
				MimeType: v.Format.MimeType,
				Preset:   v.Preset,
				Quality:  v.Quality,
			}
		}),
		TrackAuthorization: ptr.ValueOr(t.TrackAuthorization, ""),
	}
}

func checkTrackShape(b []byte) error {
	if kind := gjson.GetBytes(b, "kind"); kind.Exists() && kind.String() != "track" {
		return fmt.Errorf("resource kind is %q, not a track", kind.String())
	}
	for _, key := range []string{"title", "duration", "user.username", "media.transcodings"} {
		if !gjson.GetBytes(b, key).Exists() {
			return fmt.Errorf("missing %q field", key)
		}
	}
	if !gjson.GetBytes(b, "media.transcodings").IsArray() {
		return errors.New("media.transcodings is not an array")
	}
	return nil
}

func parseTrackResponse(b []byte) (*soundcloud.Track, error) {
	flawP := flaw.P{"response_body": string(b)}
	if !gjson.ValidBytes(b) {
		return nil, flaw.From(errors.New("invalid track response JSON")).Append(flawP)
	}

	if err := checkTrackShape(b); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, flaw.From(fmt.Errorf("unexpected track response shape: %v", err)).Append(flawP)
	}

	var respBody TrackResponse
	if err := json.Unmarshal(b, &respBody); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, flaw.From(fmt.Errorf("failed to decode track response: %v", err)).Append(flawP)
	}

	return ptr.Of(respBody.toTrack()), nil
}

func parseSearchResponse(b []byte) (*ResultSet, error) {
	flawP := flaw.P{"response_body": string(b)}
	if !gjson.ValidBytes(b) {
		return nil, flaw.From(errors.New("invalid search response JSON")).Append(flawP)
	}

	if !gjson.GetBytes(b, "collection").IsArray() {
		return nil, flaw.From(errors.New("search response has no collection array")).Append(flawP)
	}

	var respBody struct {
		Collection []TrackResponse `json:"collection"`
	}
	if err := json.Unmarshal(b, &respBody); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, flaw.From(fmt.Errorf("failed to decode search response: %v", err)).Append(flawP)
	}

	results := lo.FilterMap(respBody.Collection, func(v TrackResponse, _ int) (Result, bool) {
		track := v.toTrack()
		_, playable := track.ProgressiveTranscoding()
		return Result{
			Label:     track.Label(),
			Title:     track.Title,
			Owner:     track.Owner,
			Permalink: track.Permalink,
			Duration:  track.Duration,
		}, playable && track.Permalink != ""
	})

	return &ResultSet{results: results}, nil
}

func parseStreamResponse(b []byte) (*soundcloud.MediaLocator, error) {
	flawP := flaw.P{"response_body_length": len(b)}
	if !gjson.ValidBytes(b) {
		return nil, flaw.From(errors.New("invalid stream response JSON")).Append(flawP)
	}

	switch v := gjson.GetBytes(b, "url"); v.Type {
	case gjson.String:
		if v.Str == "" {
			return nil, flaw.From(errors.New("stream response url is empty")).Append(flawP)
		}
		return &soundcloud.MediaLocator{URL: v.Str}, nil
	default:
		flawP["url_type"] = v.Type.String()
		return nil, flaw.From(errors.New("stream response url is not a string")).Append(flawP)
	}
}
