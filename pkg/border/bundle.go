// bundle.go — Load atlas bundles (ZIP holding the metadata and the sheet).
package border

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// maxBundleEntry caps the decompressed size of a single bundle entry.
const maxBundleEntry = 256 << 20

var imageExts = map[string]bool{
	".png": true, ".webp": true, ".jpg": true, ".jpeg": true,
	".gif": true, ".bmp": true, ".tif": true, ".tiff": true,
}

// BundleError reports an archive that is not a usable atlas bundle.
type BundleError struct {
	Err error
}

func (e *BundleError) Error() string {
	return fmt.Sprintf("atlas bundle: %v", e.Err)
}

func (e *BundleError) Unwrap() error { return e.Err }

// OpenBundle reads a bundle from disk.
func OpenBundle(p string) (*Atlas, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read bundle %s: %w", p, err)
	}
	a, err := LoadBundle(data)
	if err != nil {
		return nil, fmt.Errorf("load bundle %s: %w", p, err)
	}
	return a, nil
}

// LoadBundle loads an atlas from an in-memory ZIP archive.
//
// The archive holds exactly one metadata file (.json or .jsonc) and the
// sprite sheet. The sheet is the entry named by the metadata's meta.image,
// or else the only image entry in the archive.
func LoadBundle(data []byte) (*Atlas, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &BundleError{Err: err}
	}

	var metaFiles, imageFiles []*zip.File
	byName := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := path.Clean(f.Name)
		if strings.HasPrefix(name, "__MACOSX/") || strings.HasPrefix(path.Base(name), ".") {
			continue
		}
		byName[name] = f
		switch ext := strings.ToLower(path.Ext(name)); {
		case ext == ".json" || ext == ".jsonc":
			metaFiles = append(metaFiles, f)
		case imageExts[ext]:
			imageFiles = append(imageFiles, f)
		}
	}

	if len(metaFiles) != 1 {
		return nil, &BundleError{Err: fmt.Errorf("must contain exactly one metadata file, found %d", len(metaFiles))}
	}
	meta, err := readEntry(metaFiles[0])
	if err != nil {
		return nil, err
	}
	md, err := ParseMetadata(meta)
	if err != nil {
		return nil, err
	}

	var sheetFile *zip.File
	if md.Meta.Image != "" {
		// meta.image is relative to the metadata file.
		want := path.Join(path.Dir(path.Clean(metaFiles[0].Name)), md.Meta.Image)
		sheetFile = byName[want]
		if sheetFile == nil {
			return nil, &BundleError{Err: fmt.Errorf("no sheet %q named by metadata", md.Meta.Image)}
		}
	} else {
		if len(imageFiles) != 1 {
			return nil, &BundleError{Err: fmt.Errorf("must contain exactly one image when meta.image is unset, found %d", len(imageFiles))}
		}
		sheetFile = imageFiles[0]
	}

	sheet, err := readEntry(sheetFile)
	if err != nil {
		return nil, err
	}
	return Load(sheet, meta)
}

func readEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > maxBundleEntry {
		return nil, &BundleError{Err: fmt.Errorf("entry %s is too large (%d bytes)", f.Name, f.UncompressedSize64)}
	}
	rc, err := f.Open()
	if err != nil {
		return nil, &BundleError{Err: fmt.Errorf("open %s: %w", f.Name, err)}
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxBundleEntry+1))
	if err != nil {
		return nil, &BundleError{Err: fmt.Errorf("read %s: %w", f.Name, err)}
	}
	if len(data) > maxBundleEntry {
		return nil, &BundleError{Err: fmt.Errorf("entry %s is too large", f.Name)}
	}
	return data, nil
}
