package ocr

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/faktur-tracker/internal/common"
)

type stubRunner struct {
	pages   int
	texts   map[string]string
	failOn  string
	version string
	calls   []string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, name+" "+strings.Join(args, " "))
	switch name {
	case "pdftoppm":
		prefix := args[len(args)-1]
		for i := 1; i <= s.pages; i++ {
			p := prefix + "-" + string(rune('0'+i)) + ".png"
			if err := imaging.Save(imaging.New(8, 8, color.White), p); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	case "magick":
		return nil, nil, imaging.Save(imaging.New(8, 8, color.White), args[len(args)-1])
	case "tesseract":
		if args[0] == "--version" {
			if s.version == "" {
				return nil, []byte("not installed"), errors.New("exit 127")
			}
			return []byte(s.version), nil, nil
		}
		base := filepath.Base(args[0])
		if base == s.failOn {
			return nil, []byte("read error"), errors.New("exit 1")
		}
		return []byte(s.texts[base]), nil, nil
	}
	return nil, nil, errors.New("unexpected command " + name)
}

func TestExtractPDFPagesInOrder(t *testing.T) {
	stub := &stubRunner{pages: 3, texts: map[string]string{
		"page-1.png": "Faktur Pajak\r\nhalaman   satu",
		"page-2.png": "halaman\tdua",
		"page-3.png": "halaman tiga",
	}}
	e := NewExtractor(Config{}, nil).WithRunner(stub)

	doc, err := e.Extract(context.Background(), "/in/faktur.pdf")
	require.NoError(t, err)
	require.Len(t, doc.Pages, 3)
	assert.Equal(t, []string{"Faktur Pajak", "halaman satu"}, doc.Pages[0].Lines)
	assert.Equal(t, "halaman dua", doc.Pages[1].Text())
	for i, p := range doc.Pages {
		assert.Equal(t, i+1, p.Index)
		assert.NotNil(t, p.Image)
	}
	assert.Contains(t, stub.calls[1], "-l ind --psm 6")
}

func TestExtractPDFFailsWholeDocumentOnPageError(t *testing.T) {
	stub := &stubRunner{pages: 2, failOn: "page-2.png"}
	e := NewExtractor(Config{}, nil).WithRunner(stub)

	_, err := e.Extract(context.Background(), "/in/faktur.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrOCR)
}

func TestExtractMaxPages(t *testing.T) {
	stub := &stubRunner{pages: 3}
	e := NewExtractor(Config{MaxPages: 2}, nil).WithRunner(stub)

	doc, err := e.Extract(context.Background(), "/in/faktur.pdf")
	require.NoError(t, err)
	assert.Len(t, doc.Pages, 2)
}

func TestExtractImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.png")
	require.NoError(t, imaging.Save(imaging.New(4, 4, color.Black), path))

	stub := &stubRunner{texts: map[string]string{"scan.png": "NPWP : 01.234.567.8-901.000"}}
	doc, err := NewExtractor(Config{}, nil).WithRunner(stub).Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)
	assert.Equal(t, 1, doc.Pages[0].Index)
	assert.Greater(t, doc.Pages[0].Confidence, float32(0.2))
}

func TestExtractTextFileSplitsOnFormFeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pages.txt")
	require.NoError(t, os.WriteFile(path, []byte("satu\fdua"), 0o644))

	doc, err := NewExtractor(Config{}, nil).WithRunner(&stubRunner{}).Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, doc.Pages, 2)
	assert.Equal(t, "dua", doc.Pages[1].Text())
	assert.Nil(t, doc.Pages[1].Image)
	assert.Equal(t, "satu\fdua", doc.Text())
}

func TestExtractUnsupportedExtension(t *testing.T) {
	_, err := NewExtractor(Config{}, nil).WithRunner(&stubRunner{}).Extract(context.Background(), "x.docx")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestInit(t *testing.T) {
	ok := NewExtractor(Config{}, nil).WithRunner(&stubRunner{version: "tesseract 5.3.0\n leptonica"})
	assert.NoError(t, ok.Init(context.Background()))

	missing := NewExtractor(Config{}, nil).WithRunner(&stubRunner{})
	err := missing.Init(context.Background())
	assert.ErrorIs(t, err, common.ErrOCR)
	assert.ErrorIs(t, missing.Init(context.Background()), common.ErrOCR)
}

func TestNormalize(t *testing.T) {
	in := "  Tanggal\t05/03/2024  \r\n\n\n\nJumlah   Rp 1.000 "
	assert.Equal(t, "Tanggal 05/03/2024\n\nJumlah Rp 1.000", Normalize(in))
}

func TestExtractHEICConvertsFirst(t *testing.T) {
	stub := &stubRunner{texts: map[string]string{"page.png": "BUKTI SETOR\nJumlah Rp 1.500.000"}}
	e := NewExtractor(Config{}, nil).WithRunner(stub)

	doc, err := e.Extract(context.Background(), "/in/setor.HEIC")
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)
	assert.Equal(t, "BUKTI SETOR\nJumlah Rp 1.500.000", doc.Pages[0].Text())
	assert.NotNil(t, doc.Pages[0].Image)
	require.Len(t, stub.calls, 2)
	assert.True(t, strings.HasPrefix(stub.calls[0], "magick /in/setor.HEIC "))
}

func TestExtractHEICUnknownConverter(t *testing.T) {
	e := NewExtractor(Config{HeicConverter: "gimp"}, nil).WithRunner(&stubRunner{})

	_, err := e.Extract(context.Background(), "/in/setor.heic")
	assert.ErrorIs(t, err, common.ErrOCR)
}
