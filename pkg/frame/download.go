package frame

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"wren/std/net"
)

// Download fetches r and saves the body in the download directory. The
// file is named after the last path segment of the final URL, or a random
// UUID when there is none. It returns the written path.
func (f *Frame) Download(ctx context.Context, r *net.Request) (string, error) {
	resp, err := f.fetcher.Fetch(ctx, r)
	if err != nil {
		return "", errors.Wrap(err, "downloading")
	}

	dir := f.downloadDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "creating download directory %s", dir)
	}

	dest := filepath.Join(dir, downloadName(resp))
	if err := os.WriteFile(dest, resp.Body, 0o644); err != nil {
		return "", errors.Wrapf(err, "writing %s", dest)
	}
	f.log.Info("download saved", zap.Stringer("url", resp.URL), zap.String("path", dest), zap.Int("bytes", len(resp.Body)))
	return dest, nil
}

func downloadName(resp *net.Response) string {
	if resp.URL != nil {
		switch name := path.Base(resp.URL.Path); name {
		case "", ".", "/":
		default:
			return name
		}
	}
	return uuid.NewString()
}
