package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// Pool keeps a fixed set of warm browser contexts. Reuse cuts per-run
// startup from roughly 1500ms to 50ms.
type Pool struct {
	size        int
	contexts    chan *tab
	allocCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

type tab struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// PoolOptions configures the pool. Zero values fall back to sane defaults.
type PoolOptions struct {
	Size      int
	Headless  bool
	UserAgent string
	// ChromePath points at a specific browser binary. Empty falls back to
	// CHROME_PATH and the per-OS standard locations.
	ChromePath string
	Proxy      string
	ExtraArgs  []chromedp.ExecAllocatorOption
}

// NewPool launches the allocator and warms up Size contexts.
func NewPool(opts PoolOptions) (*Pool, error) {
	if opts.Size <= 0 {
		opts.Size = 2
	}
	if opts.Size > 10 {
		opts.Size = 10
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	}

	log.Debug().Int("size", opts.Size).Msg("creating browser pool")

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-prompt-on-repost", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("force-color-profile", "srgb"),
		chromedp.Flag("log-level", "3"),
		chromedp.Flag("metrics-recording-only", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("window-size", "1920,1080"),
		chromedp.UserAgent(opts.UserAgent),
	}
	if path := resolveChromePath(opts.ChromePath); path != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(path)}, allocOpts...)
	}
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}
	allocOpts = append(allocOpts, opts.ExtraArgs...)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	pool := &Pool{
		size:        opts.Size,
		contexts:    make(chan *tab, opts.Size),
		allocCancel: allocCancel,
	}

	for i := 0; i < opts.Size; i++ {
		browserCtx, browserCancel := chromedp.NewContext(allocCtx)
		if err := chromedp.Run(browserCtx, chromedp.Navigate("about:blank")); err != nil {
			browserCancel()
			pool.Close()
			return nil, fmt.Errorf("failed to warm up browser context %d: %w", i, err)
		}
		pool.contexts <- &tab{ctx: browserCtx, cancel: browserCancel}
	}

	log.Info().Int("pool_size", opts.Size).Msg("browser pool ready")
	return pool, nil
}

// Acquire takes a warm context and wraps it as a session. Blocks until one is
// free or the timeout elapses; zero timeout blocks indefinitely.
func (p *Pool) Acquire(timeout time.Duration) (*Session, error) {
	var t *tab
	if timeout > 0 {
		select {
		case t = <-p.contexts:
		case <-time.After(timeout):
			return nil, fmt.Errorf("timeout waiting for available browser context")
		}
	} else {
		t = <-p.contexts
	}

	// Close drains and closes the channel; a receive that raced it gets nil.
	if t == nil {
		return nil, fmt.Errorf("browser pool is closed")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		t.cancel()
		return nil, fmt.Errorf("browser pool is closed")
	}
	log.Debug().Msg("browser context acquired from pool")
	return newSession(t), nil
}

// Release puts the session's context back, reset to a blank page so state
// does not leak between runs.
func (p *Pool) Release(s *Session) {
	if s == nil {
		return
	}
	p.mu.Lock()
	if p.closed {
		s.tab.cancel()
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	_ = chromedp.Run(s.tab.ctx, chromedp.Navigate("about:blank"))

	select {
	case p.contexts <- s.tab:
		log.Debug().Msg("browser context released to pool")
	default:
		s.tab.cancel()
		log.Warn().Msg("browser pool full, discarding context")
	}
}

// Close cancels every context and the allocator. Safe to call twice.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	close(p.contexts)
	for t := range p.contexts {
		t.cancel()
	}
	p.allocCancel()
	log.Info().Msg("browser pool closed")
	return nil
}

// Available returns how many contexts are currently idle.
func (p *Pool) Available() int {
	return len(p.contexts)
}
