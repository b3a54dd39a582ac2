// Command wrenshow renders a URL or a local HTML file to a PNG.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"wren/pkg/config"
	"wren/pkg/frame"
	"wren/pkg/layout"
	"wren/pkg/logging"
	"wren/pkg/metrics"
	"wren/pkg/render"
	"wren/std/net"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	width := flag.Int("w", cfg.Viewport.Width, "viewport width in pixels")
	height := flag.Int("h", 0, "image height in pixels; 0 fits the page")
	output := flag.String("o", "output.png", "output PNG file path")
	file := flag.Bool("f", false, "treat the argument as a local HTML file")
	expect := flag.String("expect", "", "reference PNG the rendering must match")
	tolerance := flag.Int("tolerance", 2, "per-channel tolerance when comparing with -expect")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wrenshow [flags] <url|file>\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	log, err := logging.New(logging.Config{Level: cfg.Logging.Level, Development: cfg.Logging.Development})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg.Viewport.Width = *width
	m := metrics.New()
	client, err := net.NewClient(cfg.Network, m, log)
	if err != nil {
		log.Fatal("creating HTTP client", zap.Error(err))
	}
	f := frame.New(client, cfg, log, m)

	if err := show(context.Background(), f, flag.Arg(0), *file); err != nil {
		log.Fatal("loading page", zap.Error(err))
	}
	f.Wait()

	var img image.Image
	f.Paint(func(c *layout.Canvas) {
		h := *height
		if h <= 0 {
			h = max(int(c.Height), 1)
		}
		r := render.NewRenderer(*width, h, nil)
		r.Render(c, 0)
		img = r.Image()
	})
	if img == nil {
		log.Fatal("nothing to render")
	}
	if err := render.SavePNG(img, *output); err != nil {
		log.Fatal("saving PNG", zap.String("path", *output), zap.Error(err))
	}
	log.Info("rendered",
		zap.String("title", f.Title()),
		zap.String("output", *output),
		zap.Int("width", *width))

	if *expect != "" {
		if !matches(log, img, *expect, *tolerance, *output) {
			log.Sync()
			os.Exit(2)
		}
	}
}

// matches compares img with the reference at path. On a mismatch the diff
// image is written next to output.
func matches(log *zap.Logger, img image.Image, path string, tolerance int, output string) bool {
	ref, err := render.LoadPNG(path)
	if err != nil {
		log.Error("loading reference", zap.Error(err))
		return false
	}
	res, err := render.Compare(img, ref, render.CompareOptions{Tolerance: tolerance, FuzzyRadius: 1})
	if err != nil {
		log.Error("comparing with reference", zap.Error(err))
		return false
	}
	if res.Match {
		log.Info("matches reference", zap.String("reference", path))
		return true
	}
	diffPath := strings.TrimSuffix(output, filepath.Ext(output)) + "-diff.png"
	if err := render.SavePNG(res.Diff, diffPath); err != nil {
		log.Warn("saving diff image", zap.Error(err))
	}
	log.Error("differs from reference",
		zap.String("reference", path),
		zap.Int("pixels", res.DifferentPixels),
		zap.Int("max_difference", res.MaxDifference),
		zap.String("diff", diffPath))
	return false
}

func show(ctx context.Context, f *frame.Frame, arg string, file bool) error {
	if file {
		markup, err := os.ReadFile(arg)
		if err != nil {
			return err
		}
		f.ShowHTML(string(markup))
		return nil
	}
	u, err := url.Parse(arg)
	if err != nil {
		return err
	}
	return f.Navigate(ctx, net.NewRequest(u, nil))
}
