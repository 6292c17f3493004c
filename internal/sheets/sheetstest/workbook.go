// Package sheetstest builds small workbooks on disk for tests.
package sheetstest

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Sheet is a named grid of cell values written from A1.
type Sheet struct {
	Name string
	Rows [][]any
}

// Write saves the sheets into dir/name and returns the path. The default
// "Sheet1" is removed unless one of the sheets is called that.
func Write(t testing.TB, dir, name string, sheets ...Sheet) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	keepDefault := false
	for _, s := range sheets {
		if s.Name == "Sheet1" {
			keepDefault = true
		}
		if _, err := f.NewSheet(s.Name); err != nil {
			t.Fatal(err)
		}
		for r, row := range s.Rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			if err := f.SetSheetRow(s.Name, cell, &row); err != nil {
				t.Fatal(err)
			}
		}
	}
	if !keepDefault {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

// AddPicture anchors a 2x2 PNG at cell of sheet inside the workbook at path.
func AddPicture(t testing.TB, path, sheet, cell string) {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := f.AddPictureFromBytes(sheet, cell, &excelize.Picture{Extension: ".png", File: PNG(t)}); err != nil {
		t.Fatal(err)
	}
	if err := f.Save(); err != nil {
		t.Fatal(err)
	}
}

// PNG returns a tiny encoded image.
func PNG(t testing.TB) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
