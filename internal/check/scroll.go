package check

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/lorcheck/internal/browser"
)

const (
	scriptScrollDown = "window.scrollBy(0, document.body.scrollHeight)"
	scriptPageOffset = "window.pageYOffset"
)

// checkScrollToTop scrolls to the bottom, clicks the back-to-top button and
// waits for the page offset to return to zero.
func checkScrollToTop(ctx context.Context, s *Scope) error {
	button, err := find(ctx, s.Root, selBackButton)
	if err != nil {
		return err
	}

	if err := s.Page.Evaluate(ctx, scriptScrollDown, nil); err != nil {
		return scriptError("scroll down", err)
	}

	offset, err := pageOffset(ctx, s.Page)
	if err != nil {
		return scriptError("read offset", err)
	}
	if offset <= 0 {
		return assertf("page did not scroll down: offset is %v", offset)
	}

	if err := button.Click(ctx); err != nil {
		return scriptError("click back-to-top button", err)
	}

	return WaitForTop(ctx, s.Page, s.ScrollTimeout, s.PollInterval)
}

// WaitForTop polls the page offset every interval until it is exactly zero.
// If timeout elapses first it returns an *AssertionError carrying the last
// offset seen.
func WaitForTop(ctx context.Context, page browser.Page, timeout, interval time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		offset, err := pageOffset(ctx, page)
		if err != nil {
			return scriptError("read offset", err)
		}
		if offset == 0 {
			return nil
		}
		if !time.Now().Before(deadline) {
			return assertf("page offset is %v after %v, expected 0", offset, timeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func pageOffset(ctx context.Context, page browser.Page) (float64, error) {
	var offset float64
	if err := page.Evaluate(ctx, scriptPageOffset, &offset); err != nil {
		return 0, err
	}
	return offset, nil
}

// scriptError turns an unsupported operation into a skip.
func scriptError(op string, err error) error {
	if errors.Is(err, browser.ErrUnsupported) {
		return skip(err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
