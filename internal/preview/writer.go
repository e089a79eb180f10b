package preview

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
)

// Writer encodes page images and stores them.
type Writer struct {
	store    Store
	maxWidth int
	quality  int
	logger   *slog.Logger
}

type Option func(*Writer)

// WithMaxWidth downsizes wider images, keeping the aspect ratio.
func WithMaxWidth(px int) Option { return func(w *Writer) { w.maxWidth = px } }

// WithQuality sets the JPEG quality (1..100).
func WithQuality(q int) Option { return func(w *Writer) { w.quality = q } }

func NewWriter(store Store, logger *slog.Logger, opts ...Option) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Writer{store: store, quality: 85, logger: logger}
	for _, o := range opts {
		o(w)
	}
	if w.quality < 1 || w.quality > 100 {
		w.quality = 85
	}
	return w
}

// Save encodes img and returns its key. A nil image yields an empty key.
func (w *Writer) Save(img image.Image, pageIndex int) (string, error) {
	if img == nil {
		return "", nil
	}
	if w.maxWidth > 0 && img.Bounds().Dx() > w.maxWidth {
		img = imaging.Resize(img, w.maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(w.quality)); err != nil {
		return "", err
	}
	sum := sha256.Sum256(buf.Bytes())
	key := "preview_" + hex.EncodeToString(sum[:]) + ".jpg"

	created, err := w.store.PutIfAbsent(key, buf.Bytes())
	if err != nil {
		w.logger.Error("preview.save.failed", "page_index", pageIndex, "key", key, "error", err)
		return "", err
	}
	w.logger.Debug("preview.saved", "page_index", pageIndex, "key", key, "created", created)
	return key, nil
}
