package cjpg

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// maxDocumentSize caps a fetched document at 50MB.
const maxDocumentSize = 50 << 20

// captureRace observes one document page's network responses. The
// subscription must be attached as soon as the page handle exists, before
// waiting for load: the portal often emits the document response during
// the initial load, and a listener attached after it would never see it.
type captureRace struct {
	urlc chan string
	stop context.CancelFunc
}

// startCapture subscribes to the page's network responses immediately and
// returns the race handle. The subscription ends with stop or with ctx.
func (s *Session) startCapture(ctx context.Context, doc *rod.Page) *captureRace {
	obsCtx, cancel := context.WithCancel(ctx)
	c := &captureRace{urlc: make(chan string, 1), stop: cancel}

	// EachEvent enables the Network domain and subscribes before the
	// goroutine starts; only the blocking consume loop runs concurrently.
	go doc.Context(obsCtx).EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if !isDocumentResponse(e.Response.URL, e.Response.MIMEType) {
			return false
		}
		c.offer(e.Response.URL)
		return true
	})()

	return c
}

// offer keeps the first matching response URL; later ones are dropped.
func (c *captureRace) offer(url string) {
	select {
	case c.urlc <- url:
	default:
	}
}

// wait races the captured document URL against the timeout and the context.
// A response observed before wait is called is still delivered.
func (c *captureRace) wait(ctx context.Context, timeout time.Duration) string {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case u := <-c.urlc:
		return u
	case <-timer.C:
		return ""
	case <-ctx.Done():
		return ""
	}
}

// isDocumentResponse reports whether a network response is the decision
// document itself: the retrieval endpoint with a binary content type,
// excluding the viewer wrapper that embeds it.
func isDocumentResponse(url, mimeType string) bool {
	if !strings.Contains(url, "getPDF.do") || strings.Contains(url, "viewer.html") {
		return false
	}
	ct := strings.ToLower(mimeType)
	return strings.Contains(ct, "pdf") || strings.Contains(ct, "octet-stream")
}

// fetchDocument retrieves the document bytes from within the page's
// authenticated session: first via the browser's own resource cache, then
// over HTTP carrying the session cookies.
func (s *Session) fetchDocument(ctx context.Context, doc *rod.Page, url string) ([]byte, error) {
	if data, err := doc.GetResource(url); err == nil && len(data) > 0 {
		return data, nil
	}

	cookies, err := doc.Cookies([]string{url})
	if err != nil {
		return nil, fmt.Errorf("cjpg: read session cookies: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("cjpg: document request: %w", err)
	}
	for _, c := range cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	client := &http.Client{Timeout: s.cfg.SubmitTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cjpg: fetch document: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cjpg: fetch document: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("cjpg: read document body: %w", err)
	}
	return data, nil
}

var (
	nuProcessoRe = regexp.MustCompile(`nuProcesso=([^&]+)`)
	tokenUnsafe  = regexp.MustCompile(`[^a-zA-Z0-9.\-]`)
)

// processToken derives the process number and a filesystem-safe token
// from a captured document URL. When the URL carries no process number a
// synthetic per-item token is used for both.
func processToken(pdfURL string, idx int) (processNumber, token string) {
	var raw string
	if m := nuProcessoRe.FindStringSubmatch(pdfURL); m != nil {
		raw = m[1]
	}
	token = tokenUnsafe.ReplaceAllString(raw, "_")
	if token == "" {
		token = fmt.Sprintf("doc_%d", idx+1)
	}
	if raw == "" {
		return token, token
	}
	return raw, token
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
