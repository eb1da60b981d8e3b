package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/scplayer/config"
	"github.com/xeptore/scplayer/errutil"
	"github.com/xeptore/scplayer/httputil"
	"github.com/xeptore/scplayer/log"
	"github.com/xeptore/scplayer/must"
	"github.com/xeptore/scplayer/soundcloud"
	"github.com/xeptore/scplayer/soundcloud/clientid"
)

type Client struct {
	apiBaseURL  string
	userAgent   string
	searchLimit int
	logger      zerolog.Logger
}

func New(cfg config.Config, logger zerolog.Logger) *Client {
	return &Client{
		apiBaseURL:  cfg.APIBaseURL,
		userAgent:   cfg.UserAgent,
		searchLimit: cfg.SearchLimit,
		logger:      logger.With().Str("module", "catalog").Logger(),
	}
}

func (c *Client) Search(ctx context.Context, query string, id clientid.ClientID) (*ResultSet, error) {
	reqURL, err := url.JoinPath(c.apiBaseURL, "search", "tracks")
	if nil != err {
		flawP := flaw.P{"api_base_url": c.apiBaseURL, "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, fmt.Errorf("%w: %w", soundcloud.ErrNetwork, flaw.From(fmt.Errorf("failed to build search URL: %v", err)).Append(flawP))
	}

	reqParams := make(url.Values, 3)
	reqParams.Add("q", query)
	reqParams.Add("client_id", id.String())
	reqParams.Add("limit", strconv.Itoa(c.searchLimit))

	respBytes, err := c.get(ctx, reqURL, reqParams, config.SearchRequestTimeout)
	if nil != err {
		return nil, classify(ctx, err)
	}

	results, err := parseSearchResponse(respBytes)
	if nil != err {
		return nil, fmt.Errorf("%w: %w", soundcloud.ErrDecode, err)
	}
	c.logger.Debug().Str("query", query).Int("results", results.Len()).Msg("Search completed")

	return results, nil
}

func (c *Client) Resolve(ctx context.Context, permalink string, id clientid.ClientID) (*soundcloud.Track, error) {
	reqURL, err := url.JoinPath(c.apiBaseURL, "resolve")
	if nil != err {
		flawP := flaw.P{"api_base_url": c.apiBaseURL, "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, fmt.Errorf("%w: %w", soundcloud.ErrNetwork, flaw.From(fmt.Errorf("failed to build resolve URL: %v", err)).Append(flawP))
	}

	reqParams := make(url.Values, 2)
	reqParams.Add("url", permalink)
	reqParams.Add("client_id", id.String())

	respBytes, err := c.get(ctx, reqURL, reqParams, config.ResolveRequestTimeout)
	if nil != err {
		return nil, classify(ctx, err)
	}

	track, err := parseTrackResponse(respBytes)
	if nil != err {
		return nil, fmt.Errorf("%w: %w", soundcloud.ErrDecode, err)
	}
	c.logger.Debug().Str("permalink", permalink).Int64("track_id", track.ID).Int("transcodings", len(track.Transcodings)).Msg("Track resolved")

	return track, nil
}

// StreamURL exchanges a transcoding endpoint for a signed media locator.
func (c *Client) StreamURL(ctx context.Context, track *soundcloud.Track, transcoding soundcloud.Transcoding, id clientid.ClientID) (*soundcloud.MediaLocator, error) {
	reqParams := make(url.Values, 2)
	reqParams.Add("client_id", id.String())
	if track.TrackAuthorization != "" {
		reqParams.Add("track_authorization", track.TrackAuthorization)
	}

	respBytes, err := c.get(ctx, transcoding.URL, reqParams, config.StreamExchangeRequestTimeout)
	if nil != err {
		return nil, classify(ctx, err)
	}

	locator, err := parseStreamResponse(respBytes)
	if nil != err {
		return nil, fmt.Errorf("%w: %w", soundcloud.ErrDecode, err)
	}
	c.logger.Debug().Int64("track_id", track.ID).Str("client_id", log.RedactString(id.String())).Msg("Stream locator issued")

	return locator, nil
}

func classify(ctx context.Context, err error) error {
	switch {
	case errutil.IsContext(ctx):
		return ctx.Err()
	case errors.Is(err, soundcloud.ErrHTTPStatus):
		return err
	default:
		return fmt.Errorf("%w: %w", soundcloud.ErrNetwork, err)
	}
}

func (c *Client) get(ctx context.Context, target string, params url.Values, timeout time.Duration) (b []byte, err error) {
	reqURL, err := url.Parse(target)
	if nil != err {
		flawP := flaw.P{"url": target, "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to parse request URL: %v", err)).Append(flawP)
	}

	query := reqURL.Query()
	for k, v := range params {
		query[k] = v
	}
	reqURL.RawQuery = query.Encode()
	flawP := flaw.P{"url": reqURL.Scheme + "://" + reqURL.Host + reqURL.Path}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if nil != err {
		if errutil.IsContext(ctx) {
			return nil, ctx.Err()
		}

		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, flaw.From(fmt.Errorf("failed to create catalog request: %v", err)).Append(flawP)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	client := http.Client{Timeout: timeout} //nolint:exhaustruct
	resp, err := client.Do(req)
	if nil != err {
		switch {
		case errutil.IsContext(ctx):
			return nil, ctx.Err()
		default:
			flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
			return nil, flaw.From(fmt.Errorf("failed to send catalog request: %v", err)).Append(flawP)
		}
	}
	defer func() {
		if closeErr := resp.Body.Close(); nil != closeErr {
			flawP["err_debug_tree"] = errutil.Tree(closeErr).FlawP()
			closeErr = flaw.From(fmt.Errorf("failed to close catalog response body: %v", closeErr)).Append(flawP)
			switch {
			case nil == err:
				err = closeErr
			case errutil.IsContext(ctx):
				err = flaw.From(errors.New("context was ended")).Join(closeErr)
			case errors.Is(err, context.DeadlineExceeded):
				err = flaw.From(errors.New("timeout has reached")).Join(closeErr)
			case errors.Is(err, soundcloud.ErrHTTPStatus):
				err = errors.Join(err, closeErr)
			case errutil.IsFlaw(err):
				err = must.BeFlaw(err).Join(closeErr)
			default:
				panic(errutil.UnknownError(err))
			}
		}
	}()
	flawP["response"] = errutil.HTTPResponseFlawPayload(resp)

	if code := resp.StatusCode; !httputil.IsSuccessful(resp) {
		respBytes, err := httputil.ReadErrorResponseBody(ctx, resp)
		if nil != err {
			return nil, err
		}
		flawP["response_body"] = string(respBytes)
		return nil, &soundcloud.HTTPStatusError{
			StatusCode: code,
			Status:     resp.Status,
			Err:        flaw.From(fmt.Errorf("unexpected status code: %d", code)).Append(flawP),
		}
	}

	// an empty body is a schema mismatch, rejected by the parsers
	return httputil.ReadOptionalResponseBody(ctx, resp)
}
