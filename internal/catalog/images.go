package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/disintegration/imaging"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"menora/internal"
	"menora/internal/sheets"
)

type imageKey struct {
	file  string
	sheet string
	row   int
}

// ImageExtractor copies pictures embedded in the source workbooks to disk and
// attaches them to the products built from the rows they sit on.
type ImageExtractor struct {
	dir       string
	urlPrefix string
	thumbSize int
	logger    *slog.Logger
}

const (
	thumbDir         = "thumbs"
	defaultThumbSize = 200
)

func NewImageExtractor(dir, urlPrefix string, logger *slog.Logger) *ImageExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if urlPrefix == "" {
		urlPrefix = "/static/images/"
	}
	return &ImageExtractor{dir: dir, urlPrefix: urlPrefix, thumbSize: defaultThumbSize, logger: logger}
}

// Extract scans the lookup sheet and every price sheet in parallel, then sets
// images on cat's products. Variants without a picture of their own inherit
// the picture of their base type. It returns the number of products updated.
func (x *ImageExtractor) Extract(ctx context.Context, cat *Catalog, src Sources) (int, error) {
	if err := os.MkdirAll(filepath.Join(x.dir, thumbDir), 0o755); err != nil {
		return 0, fmt.Errorf("create image dir: %w", err)
	}

	var lookupImages, priceImages map[imageKey]internal.ProductImage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lookupImages, err = x.scan(gctx, src.LookupPath, []string{LookupSheet})
		return err
	})
	g.Go(func() error {
		var err error
		priceImages, err = x.scan(gctx, src.PricePath, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}

	found := make(map[imageKey]internal.ProductImage, len(lookupImages)+len(priceImages))
	for k, v := range lookupImages {
		found[k] = v
	}
	for k, v := range priceImages {
		found[k] = v
	}
	if len(found) == 0 {
		return 0, nil
	}

	updated := 0
	for _, p := range cat.Products() {
		img, ok := found[imageKey{file: p.Origin.File, sheet: p.Origin.Sheet, row: p.Origin.Row}]
		if !ok {
			continue
		}
		p.PublishImage(img)
		updated++
	}
	for _, p := range cat.Products() {
		if !p.IsPriced() {
			continue
		}
		if _, ok := p.Image(); ok {
			continue
		}
		base, ok := cat.BaseFor(p)
		if !ok {
			continue
		}
		if img, ok := base.Image(); ok {
			p.PublishImage(img)
			updated++
		}
	}
	return updated, nil
}

// scan extracts the pictures of the named sheets, or of every sheet when names
// is nil. A missing workbook yields no pictures.
func (x *ImageExtractor) scan(ctx context.Context, file string, names []string) (map[imageKey]internal.ProductImage, error) {
	out := map[imageKey]internal.ProductImage{}
	wb, err := sheets.Open(file, x.logger)
	if errors.Is(err, sheets.ErrFileNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	if names == nil {
		names = wb.SheetNames()
	}
	f := wb.File()
	for _, sheet := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !wb.HasSheet(sheet) {
			continue
		}
		cells, err := f.GetPictureCells(sheet)
		if err != nil {
			x.logger.Warn("cannot list pictures", "file", file, "sheet", sheet, "error", err)
			continue
		}
		tag := fmt.Sprintf("%08x", uint32(xxhash.Sum64String(file+"\x00"+sheet)))
		for _, cell := range cells {
			_, row, err := excelize.CellNameToCoordinates(cell)
			if err != nil {
				continue
			}
			pics, err := f.GetPictures(sheet, cell)
			if err != nil {
				x.logger.Warn("cannot read picture", "sheet", sheet, "cell", cell, "error", err)
				continue
			}
			key := imageKey{file: file, sheet: sheet, row: row}
			for i, pic := range pics {
				ext := strings.ToLower(pic.Extension)
				if ext == "" {
					ext = ".png"
				}
				name := fmt.Sprintf("%s_product_row_%d_%d%s", tag, row, i, ext)
				dst := filepath.Join(x.dir, name)
				if err := os.WriteFile(dst, pic.File, 0o644); err != nil {
					x.logger.Warn("cannot write picture", "path", dst, "error", err)
					continue
				}
				if _, seen := out[key]; !seen {
					out[key] = internal.ProductImage{
						URL:          path.Join(x.urlPrefix, name),
						Path:         dst,
						ThumbnailURL: x.thumbnail(pic.File, name),
					}
				}
			}
		}
	}
	return out, nil
}

// thumbnail writes a JPEG that fits in thumbSize x thumbSize and returns its URL.
// Formats imaging cannot decode (EMF, WMF) get no thumbnail.
func (x *ImageExtractor) thumbnail(data []byte, name string) string {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		x.logger.Debug("no thumbnail", "image", name, "error", err)
		return ""
	}
	thumbName := strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg"
	dst := filepath.Join(x.dir, thumbDir, thumbName)
	thumb := imaging.Fit(img, x.thumbSize, x.thumbSize, imaging.Lanczos)
	if err := imaging.Save(thumb, dst, imaging.JPEGQuality(80)); err != nil {
		x.logger.Warn("cannot write thumbnail", "path", dst, "error", err)
		return ""
	}
	return path.Join(x.urlPrefix, thumbDir, thumbName)
}
