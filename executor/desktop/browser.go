package desktop

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"
)

// Browser is a visible Chrome window driven over the devtools protocol.
type Browser struct {
	cancel context.CancelFunc
}

// OpenPage launches a full-screen, non-headless Chrome on url. The window
// stays open until Close is called.
func OpenPage(ctx context.Context, url string) (*Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", false),
		chromedp.Flag("start-fullscreen", true),
		chromedp.Flag("enable-automation", false),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	bctx, bcancel := chromedp.NewContext(allocCtx)

	log.Infof("Opening %s", url)
	if err := chromedp.Run(bctx, chromedp.Navigate(url)); err != nil {
		bcancel()
		allocCancel()
		return nil, fmt.Errorf("error opening %s: %w", url, err)
	}
	return &Browser{
		cancel: func() {
			bcancel()
			allocCancel()
		},
	}, nil
}

func (b *Browser) Close() {
	if b != nil && b.cancel != nil {
		b.cancel()
	}
}
