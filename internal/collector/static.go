package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
	"github.com/rs/zerolog/log"
)

// StaticCollector fetches a listing over plain HTTP and extracts fragments
// with goquery. Server-rendered sites do not need a browser at all; sites
// that ship their catalog as an inline script bootstrap get a second chance
// through a small JS sandbox.
type StaticCollector struct {
	client    *http.Client
	userAgent string
}

// NewStaticCollector returns a collector with connection reuse enabled.
func NewStaticCollector(userAgent string) *StaticCollector {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	return &StaticCollector{
		client:    &http.Client{Transport: transport, Timeout: 30 * time.Second},
		userAgent: userAgent,
	}
}

// Fetch downloads the page and parses it. Non-2xx responses are errors; the
// caller decides whether to fall back to the browser path.
func (c *StaticCollector) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// Collect fetches the page and returns the fragments of the first selector
// that matches. When no selector matches server-rendered markup, inline
// scripts are executed in a sandbox and mined for embedded listing data.
func (c *StaticCollector) Collect(ctx context.Context, pageURL string, selectors []string) ([]string, error) {
	doc, err := c.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	fragments := FragmentsFromDocument(doc, selectors)
	if len(fragments) > 0 {
		return fragments, nil
	}

	if mined := mineInlineScripts(doc, pageURL); len(mined) > 0 {
		log.Debug().Int("values", len(mined)).Msg("mined listing data from inline scripts")
		return mined, nil
	}
	return nil, nil
}

// FragmentsFromDocument applies the selector walk to an already parsed
// document. Shared with tests and the browser fallback path.
func FragmentsFromDocument(doc *goquery.Document, selectors []string) []string {
	for _, selector := range selectors {
		var fragments []string
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if html, err := goquery.OuterHtml(sel); err == nil {
				fragments = append(fragments, html)
			}
		})
		if len(fragments) > 0 {
			log.Debug().Str("selector", selector).Int("fragments", len(fragments)).Msg("fragments collected")
			return fragments
		}
	}
	return nil
}

// mineInlineScripts runs the page's inline scripts in a stub browser
// environment and returns any non-standard globals that look like listing
// payloads, re-serialized as JSON. Most scripts fail against the stub DOM;
// that is expected and ignored.
func mineInlineScripts(doc *goquery.Document, pageURL string) []string {
	vm := goja.New()
	vm.Set("window", vm.GlobalObject())
	vm.Set("self", vm.GlobalObject())
	vm.Set("document", map[string]interface{}{
		"location": map[string]interface{}{"href": pageURL},
	})
	vm.Set("location", map[string]interface{}{"href": pageURL})
	vm.Set("console", map[string]interface{}{
		"log":   func(call goja.FunctionCall) goja.Value { return nil },
		"error": func(call goja.FunctionCall) goja.Value { return nil },
	})

	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		if _, external := sel.Attr("src"); external {
			return
		}
		if content := sel.Text(); content != "" {
			_, _ = vm.RunString(content)
		}
	})

	var mined []string
	for _, key := range vm.GlobalObject().Keys() {
		if isStandardGlobal(key) {
			continue
		}
		value := vm.Get(key)
		if value == nil {
			continue
		}
		exported := value.Export()
		if !looksLikeListing(exported) {
			continue
		}
		if raw, err := json.Marshal(exported); err == nil {
			mined = append(mined, string(raw))
		}
	}
	return mined
}

// looksLikeListing accepts arrays of objects carrying a name-like key.
func looksLikeListing(value interface{}) bool {
	items, ok := value.([]interface{})
	if !ok || len(items) == 0 {
		return false
	}
	first, ok := items[0].(map[string]interface{})
	if !ok {
		return false
	}
	for key := range first {
		switch strings.ToLower(key) {
		case "name", "title", "company", "startup", "product":
			return true
		}
	}
	return false
}

func isStandardGlobal(key string) bool {
	standards := map[string]bool{
		"window": true, "self": true, "document": true, "location": true, "console": true,
		"Object": true, "Array": true, "String": true, "Number": true, "Boolean": true,
		"Date": true, "Math": true, "JSON": true, "RegExp": true, "Error": true,
		"Function": true, "parseInt": true, "parseFloat": true, "isNaN": true,
		"isFinite": true, "encodeURI": true, "decodeURI": true, "encodeURIComponent": true,
		"decodeURIComponent": true, "undefined": true, "NaN": true, "Infinity": true,
	}
	return standards[key]
}
