// Command wren is a desktop window around a single browser frame.
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"wren/pkg/config"
	"wren/pkg/frame"
	"wren/pkg/logging"
	"wren/pkg/metrics"
	"wren/pkg/text"
	"wren/std/net"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New(logging.Config{Level: cfg.Logging.Level, Development: cfg.Logging.Development})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	m := metrics.New()
	client, err := net.NewClient(cfg.Network, m, log)
	if err != nil {
		log.Fatal("creating HTTP client", zap.Error(err))
	}

	a := app.New()
	w := a.NewWindow("wren")
	w.Resize(fyne.NewSize(float32(cfg.Viewport.Width), float32(cfg.Viewport.Height)))

	status := widget.NewLabel("")
	urlEntry := widget.NewEntry()
	urlEntry.SetPlaceHolder("https://example.com")

	var view *pageView
	f := frame.New(client, cfg, log, m, frame.WithOnChange(func() {
		fyne.Do(func() {
			w.SetTitle("wren - " + view.frame.Title())
			view.Refresh()
		})
	}))
	view = newPageView(f, text.NewGoFonts(), log)
	view.onHover = status.SetText

	open := func(r *net.Request) {
		urlEntry.SetText(r.URL.String())
		view.ScrollTop()
		go func() {
			if err := f.Navigate(context.Background(), r); err != nil {
				log.Warn("navigation failed", zap.Error(err))
			}
		}()
	}
	urlEntry.OnSubmitted = func(s string) {
		open(net.NewRequest(parseAddress(s), nil))
	}
	back := widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() {
		view.ScrollTop()
		go f.Back(context.Background())
	})

	topBar := container.NewBorder(nil, nil, back, nil, urlEntry)
	w.SetContent(container.NewBorder(topBar, status, nil, nil, view))
	w.Canvas().Focus(urlEntry)

	home, err := url.Parse(cfg.Viewport.Home)
	if err != nil {
		log.Warn("bad home URL", zap.String("url", cfg.Viewport.Home), zap.Error(err))
		home = net.ErrorURL(net.PageWrongURLFormat)
	}
	open(net.NewRequest(home, nil))

	w.ShowAndRun()
}

// parseAddress turns what was typed in the address bar into a URL. A
// missing scheme means https; unparsable input shows the URL format error
// page.
func parseAddress(s string) *url.URL {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return net.ErrorURL(net.PageWrongURLFormat)
	}
	return u
}
