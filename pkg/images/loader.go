// Package images decodes fetched image bodies and keeps recently decoded
// pictures in memory.
package images

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	_ "golang.org/x/image/webp"
)

var (
	ErrNotImage   = errors.New("not an image")
	ErrBadDataURI = errors.New("malformed data URI")
)

// Decode sniffs body and decodes it as png, jpeg, gif or webp.
func Decode(body []byte) (image.Image, error) {
	mt := mimetype.Detect(body)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, errors.Wrapf(ErrNotImage, "body is %s", mt.String())
	}
	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", mt.String())
	}
	return img, nil
}

// IsDataURI reports whether s is a data: URI.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// DataURIBytes returns the payload of a data: URI.
func DataURIBytes(uri string) ([]byte, error) {
	if !IsDataURI(uri) {
		return nil, ErrBadDataURI
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, errors.Wrap(ErrBadDataURI, "missing comma")
	}
	if strings.HasSuffix(header, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, errors.Wrap(err, "decoding base64 payload")
		}
		return data, nil
	}
	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, errors.Wrap(err, "unescaping payload")
	}
	return []byte(data), nil
}

// LoadImageFromDataURI decodes the picture embedded in a data: URI.
func LoadImageFromDataURI(uri string) (image.Image, error) {
	data, err := DataURIBytes(uri)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// DefaultCacheSize is the number of pictures a cache keeps.
const DefaultCacheSize = 128

// Cache holds decoded pictures by URL. The oldest entry is evicted once
// the cache is full.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]image.Image
	order   []string
	max     int
}

func NewCache(max int) *Cache {
	if max <= 0 {
		max = DefaultCacheSize
	}
	return &Cache{entries: make(map[string]image.Image), max: max}
}

func (c *Cache) Get(key string) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.entries[key]
	return img, ok
}

// Load returns the cached picture for key, decoding body on a miss.
func (c *Cache) Load(key string, body []byte) (image.Image, error) {
	if img, ok := c.Get(key); ok {
		return img, nil
	}
	img, err := Decode(body)
	if err != nil {
		return nil, err
	}
	c.put(key, img)
	return img, nil
}

// LoadDataURI is Load for a picture embedded in the URI itself.
func (c *Cache) LoadDataURI(uri string) (image.Image, error) {
	if img, ok := c.Get(uri); ok {
		return img, nil
	}
	img, err := LoadImageFromDataURI(uri)
	if err != nil {
		return nil, err
	}
	c.put(uri, img)
	return img, nil
}

func (c *Cache) put(key string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return
	}
	if len(c.order) >= c.max {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	c.entries[key] = img
	c.order = append(c.order, key)
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
