package storage

import (
	"io"
	"path"
	"strings"
	"sync"
)

// progressReader reports the furthest byte offset read from an image body.
// Bodies may be rewound and re-read by a retrying client, so offsets below
// the high-water mark are not reported again.
type progressReader struct {
	r          io.ReadSeeker
	onProgress func(int64)

	mu   sync.Mutex
	pos  int64
	high int64
}

func newProgressReader(r io.ReadSeeker, onProgress func(int64)) *progressReader {
	if onProgress == nil {
		onProgress = func(int64) {}
	}
	return &progressReader{r: r, onProgress: onProgress}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.mu.Lock()
		p.pos += int64(n)
		advanced := p.pos > p.high
		if advanced {
			p.high = p.pos
		}
		high := p.high
		p.mu.Unlock()
		if advanced {
			p.onProgress(high)
		}
	}
	return n, err
}

func (p *progressReader) Seek(offset int64, whence int) (int64, error) {
	pos, err := p.r.Seek(offset, whence)
	if err == nil {
		p.mu.Lock()
		p.pos = pos
		p.mu.Unlock()
	}
	return pos, err
}

var extensionsByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/avif": ".avif",
	"image/heic": ".heic",
}

// extensionFor picks the object extension from the file name, falling back
// to the content type.
func extensionFor(name, contentType string) string {
	if ext := strings.ToLower(path.Ext(name)); ext != "" && len(ext) <= 6 {
		return ext
	}
	return extensionsByType[contentType]
}
