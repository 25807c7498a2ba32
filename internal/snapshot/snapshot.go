// Package snapshot captures the server-rendered week as a PNG with a
// headless Chromium.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultWidth   = 1280
	DefaultHeight  = 900
	DefaultTimeout = 30 * time.Second
)

// ReadySelector matches the /calendar root once the week has been rendered.
const ReadySelector = `[data-ready="true"]`

// Options describes one capture.
type Options struct {
	// URL of the page, e.g. "http://localhost:8099/calendar?access_token=...".
	URL string
	// OutputPath is where the PNG is written.
	OutputPath string

	Width   int
	Height  int
	Timeout time.Duration
}

func (o *Options) normalize() error {
	if o.URL == "" {
		return errors.New("snapshot: URL is required")
	}
	if o.OutputPath == "" {
		return errors.New("snapshot: output path is required")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return nil
}

// tasks navigates to the page, waits for the ready marker and takes a full
// page screenshot into buf.
func tasks(o Options, buf *[]byte) chromedp.Tasks {
	return chromedp.Tasks{
		chromedp.EmulateViewport(int64(o.Width), int64(o.Height)),
		chromedp.Navigate(o.URL),
		chromedp.WaitVisible(ReadySelector, chromedp.ByQuery),
		chromedp.Sleep(300 * time.Millisecond),
		chromedp.FullScreenshot(buf, 100),
	}
}

// Capture renders opts.URL and writes the screenshot to opts.OutputPath.
func Capture(parent context.Context, opts Options) error {
	if err := opts.normalize(); err != nil {
		return err
	}

	ctx, cancel := chromedp.NewContext(parent)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	if err := chromedp.Run(ctx, tasks(opts, &png)); err != nil {
		return fmt.Errorf("snapshot: capturing %s: %w", opts.URL, err)
	}

	if err := os.MkdirAll(filepath.Dir(opts.OutputPath), 0o755); err != nil {
		return fmt.Errorf("snapshot: creating output directory: %w", err)
	}
	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("snapshot: writing PNG: %w", err)
	}
	return nil
}
