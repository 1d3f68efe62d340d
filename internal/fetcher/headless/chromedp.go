// Package headless contains fetchers that execute JavaScript via browsers.
package headless

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/JakeFAU/catalog-scraper/internal/catalog"
)

const defaultNavTimeout = 45 * time.Second

// Config controls the behavior of the headless fetcher.
type Config struct {
	UserAgent         string
	NavigationTimeout time.Duration
	// SettleDelay is how long to wait after the body is ready so lazy images
	// can populate their attributes.
	SettleDelay time.Duration
}

// Fetcher implements catalog.Fetcher using chromedp and headless Chrome.
// One browser allocator is kept per proxy because Chrome takes the proxy as a
// launch flag.
type Fetcher struct {
	cfg Config

	mu         sync.Mutex
	allocators map[string]allocator
}

type allocator struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewChromedp creates a headless fetcher backed by chromedp.
func NewChromedp(cfg Config) *Fetcher {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = defaultNavTimeout
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	return &Fetcher{
		cfg:        cfg,
		allocators: make(map[string]allocator),
	}
}

// Close shuts down every browser started by the fetcher.
func (f *Fetcher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, alloc := range f.allocators {
		alloc.cancel()
		delete(f.allocators, key)
	}
}

// Fetch navigates with a headless browser and returns the rendered DOM.
func (f *Fetcher) Fetch(ctx context.Context, request catalog.FetchRequest) (catalog.Page, error) {
	proxyURL, err := catalog.ParseProxy(request.Proxy)
	if err != nil {
		return catalog.Page{}, err
	}
	proxy := ""
	if proxyURL != nil {
		proxy = proxyURL.String()
	}

	taskCtx, taskCancel := chromedp.NewContext(f.allocatorFor(proxy))
	defer taskCancel()

	taskCtx, cancel := context.WithTimeout(taskCtx, f.navTimeout())
	defer cancel()

	// Abort the browser task when the caller gives up.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	meta := newResponseMeta()
	chromedp.ListenTarget(taskCtx, meta.captureEvent)

	start := time.Now()
	html, finalURL, err := f.runHeadless(taskCtx, request.URL)
	if err != nil {
		if ctx.Err() != nil {
			return catalog.Page{}, fmt.Errorf("headless fetch canceled: %w", ctx.Err())
		}
		return catalog.Page{}, err
	}

	status, responseURL := meta.snapshotWithFallbacks(request.URL, finalURL)
	if status < 200 || status > 299 {
		return catalog.Page{}, fmt.Errorf("unexpected status %d for %s", status, request.URL)
	}

	return catalog.Page{
		URL:        responseURL,
		StatusCode: status,
		Body:       []byte(html),
		Duration:   time.Since(start),
	}, nil
}

func (f *Fetcher) allocatorFor(proxy string) context.Context {
	f.mu.Lock()
	defer f.mu.Unlock()
	if alloc, ok := f.allocators[proxy]; ok {
		return alloc.ctx
	}
	ctx, cancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(proxy)...)
	f.allocators[proxy] = allocator{ctx: ctx, cancel: cancel}
	return ctx
}

func allocatorOptions(proxy string) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	if proxy != "" {
		opts = append(opts, chromedp.ProxyServer(proxy))
	}
	return opts
}

func (f *Fetcher) runHeadless(ctx context.Context, target string) (string, string, error) {
	var (
		html     string
		finalURL string
	)
	actions := []chromedp.Action{
		f.networkSetupAction(),
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if f.cfg.SettleDelay > 0 {
		actions = append(actions, chromedp.Sleep(f.cfg.SettleDelay))
	}
	actions = append(actions,
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err := chromedp.Run(ctx, actions...); err != nil {
		return "", "", fmt.Errorf("chromedp run: %w", err)
	}
	return html, finalURL, nil
}

func (f *Fetcher) networkSetupAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if f.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(f.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		return nil
	})
}

func (f *Fetcher) navTimeout() time.Duration {
	if f.cfg.NavigationTimeout > 0 {
		return f.cfg.NavigationTimeout
	}
	return defaultNavTimeout
}

type responseMeta struct {
	mu     sync.RWMutex
	status int
	url    string
}

func newResponseMeta() *responseMeta {
	return &responseMeta{}
}

func (m *responseMeta) capture(event *network.EventResponseReceived) {
	if event.Type != network.ResourceTypeDocument || event.Response == nil {
		return
	}
	m.mu.Lock()
	m.status = int(event.Response.Status)
	m.url = event.Response.URL
	m.mu.Unlock()
}

func (m *responseMeta) captureEvent(ev any) {
	if resp, ok := ev.(*network.EventResponseReceived); ok {
		m.capture(resp)
	}
}

func (m *responseMeta) snapshotWithFallbacks(requestURL, finalURL string) (int, string) {
	m.mu.RLock()
	status, url := m.status, m.url
	m.mu.RUnlock()

	switch {
	case url != "":
	case finalURL != "":
		url = finalURL
	default:
		url = requestURL
	}
	if status == 0 {
		status = http.StatusOK
	}
	return status, url
}
