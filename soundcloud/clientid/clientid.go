package clientid

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"slices"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/scplayer/config"
	"github.com/xeptore/scplayer/errutil"
	"github.com/xeptore/scplayer/httputil"
	"github.com/xeptore/scplayer/log"
	"github.com/xeptore/scplayer/must"
	"github.com/xeptore/scplayer/soundcloud"
)

// ClientID is the public API credential embedded in the web front-end bundles.
type ClientID string

func (id ClientID) String() string {
	return string(id)
}

var clientIDPattern = regexp.MustCompile(`client_id\s*[:=]\s*["']?([a-zA-Z0-9]{32})["']?`)

type Scraper interface {
	Acquire(ctx context.Context, entryURL string) (ClientID, error)
}

type WebScraper struct {
	userAgent     string
	origin        *url.URL
	maxCandidates int
	logger        zerolog.Logger
}

func NewWebScraper(cfg config.Config, logger zerolog.Logger) (*WebScraper, error) {
	origin, err := url.Parse(cfg.Origin)
	if nil != err {
		flawP := flaw.P{"origin": cfg.Origin, "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to parse origin URL: %v", err)).Append(flawP)
	}

	return &WebScraper{
		userAgent:     cfg.UserAgent,
		origin:        origin,
		maxCandidates: cfg.MaxScriptCandidates,
		logger:        logger.With().Str("module", "clientid").Logger(),
	}, nil
}

// Acquire fetches entryURL, then tries the last script bundles it references
// until one of them embeds a client id.
func (s *WebScraper) Acquire(ctx context.Context, entryURL string) (ClientID, error) {
	page, err := s.fetch(ctx, entryURL, config.EntryPageRequestTimeout)
	if nil != err {
		if errutil.IsContext(ctx) {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %w", soundcloud.ErrClientIDNotFound, err)
	}

	candidates, err := ScriptCandidates(s.origin, bytes.NewReader(page), s.maxCandidates)
	if nil != err {
		return "", fmt.Errorf("%w: %w", soundcloud.ErrClientIDNotFound, err)
	}

	for _, candidate := range candidates {
		script, err := s.fetch(ctx, candidate, config.ScriptRequestTimeout)
		if nil != err {
			if errutil.IsContext(ctx) {
				return "", ctx.Err()
			}
			s.logger.Debug().Func(log.Flaw(err)).Str("script_url", candidate).Msg("Skipping unreachable script candidate")
			continue
		}

		if id, ok := ExtractClientID(script); ok {
			s.logger.Debug().Str("script_url", candidate).Str("client_id", log.RedactString(id.String())).Msg("Found client id")
			return id, nil
		}
	}

	flawP := flaw.P{"entry_url": entryURL, "candidates": candidates}
	return "", fmt.Errorf("%w: %w", soundcloud.ErrClientIDNotFound, flaw.From(errors.New("no script candidate embeds a client id")).Append(flawP))
}

// ExtractClientID returns the first client id assignment found in script.
func ExtractClientID(script []byte) (ClientID, bool) {
	match := clientIDPattern.FindSubmatch(script)
	if nil == match {
		return "", false
	}
	return ClientID(match[1]), true
}

// ScriptCandidates lists the absolute URLs of the .js scripts referenced by
// page, last reference first, capped at limit.
func ScriptCandidates(origin *url.URL, page io.Reader, limit int) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(page)
	if nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to parse entry page: %v", err)).Append(flawP)
	}

	var out []string
	doc.Find("script[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		ref, err := url.Parse(src)
		if nil != err || path.Ext(ref.Path) != ".js" {
			return
		}
		out = append(out, origin.ResolveReference(ref).String())
	})

	slices.Reverse(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *WebScraper) fetch(ctx context.Context, target string, timeout time.Duration) (b []byte, err error) {
	flawP := flaw.P{"url": target}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if nil != err {
		if errutil.IsContext(ctx) {
			return nil, ctx.Err()
		}

		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, flaw.From(fmt.Errorf("failed to create page request: %v", err)).Append(flawP)
	}
	req.Header.Set("User-Agent", s.userAgent)

	client := http.Client{Timeout: timeout} //nolint:exhaustruct
	resp, err := client.Do(req)
	if nil != err {
		switch {
		case errutil.IsContext(ctx):
			return nil, ctx.Err()
		default:
			flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
			return nil, flaw.From(fmt.Errorf("failed to send page request: %v", err)).Append(flawP)
		}
	}
	defer func() {
		if closeErr := resp.Body.Close(); nil != closeErr {
			flawP["err_debug_tree"] = errutil.Tree(closeErr).FlawP()
			closeErr = flaw.From(fmt.Errorf("failed to close page response body: %v", closeErr)).Append(flawP)
			switch {
			case nil == err:
				err = closeErr
			case errutil.IsContext(ctx):
				err = flaw.From(errors.New("context was ended")).Join(closeErr)
			case errors.Is(err, context.DeadlineExceeded):
				err = flaw.From(errors.New("timeout has reached")).Join(closeErr)
			case errutil.IsFlaw(err):
				err = must.BeFlaw(err).Join(closeErr)
			default:
				panic(errutil.UnknownError(err))
			}
		}
	}()
	flawP["response"] = errutil.HTTPResponseFlawPayload(resp)

	if !httputil.IsSuccessful(resp) {
		respBytes, err := httputil.ReadErrorResponseBody(ctx, resp)
		if nil != err {
			return nil, err
		}
		flawP["response_body"] = string(respBytes)
		return nil, flaw.From(fmt.Errorf("unexpected status code: %d", resp.StatusCode)).Append(flawP)
	}

	return httputil.ReadResponseBody(ctx, resp)
}
