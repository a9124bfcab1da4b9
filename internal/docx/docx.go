// Package docx opens the main markup part of a .docx package.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/dgallion1/docxmerge/internal/extract"
)

// MainPart is the package entry holding the document body.
const MainPart = "word/document.xml"

// OpenEntry reads the named entry from the package at path.
func OpenEntry(path, entry string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, extract.NewError(extract.KindIO, path, fmt.Errorf("open package: %w", err))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, extract.NewError(extract.KindIO, path, fmt.Errorf("stat package: %w", err))
	}

	data, err := readEntry(f, info.Size(), entry)
	if err != nil {
		return nil, extract.WithSource(err, path)
	}
	return data, nil
}

// ReadEntry reads the named entry from an in-memory package.
func ReadEntry(pkg []byte, entry string) ([]byte, error) {
	return readEntry(bytes.NewReader(pkg), int64(len(pkg)), entry)
}

func readEntry(r io.ReaderAt, size int64, entry string) ([]byte, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) || errors.Is(err, zip.ErrAlgorithm) {
			return nil, extract.NewError(extract.KindArchiveEntryNotFound, "", fmt.Errorf("read archive: %w", err))
		}
		return nil, extract.NewError(extract.KindIO, "", fmt.Errorf("read archive: %w", err))
	}

	f, err := zr.Open(entry)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, extract.NewError(extract.KindArchiveEntryNotFound, "", fmt.Errorf("entry %s: %w", entry, err))
		}
		return nil, extract.NewError(extract.KindIO, "", fmt.Errorf("open entry %s: %w", entry, err))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, extract.NewError(extract.KindIO, "", fmt.Errorf("read entry %s: %w", entry, err))
	}
	return data, nil
}

// ExtractFile returns the visible text of the package at path.
func ExtractFile(path string, stripFieldInstructions bool) (string, error) {
	raw, err := OpenEntry(path, MainPart)
	if err != nil {
		return "", err
	}
	text, err := extract.Extract(raw, stripFieldInstructions)
	if err != nil {
		return "", extract.WithSource(err, path)
	}
	return text, nil
}

// ExtractBytes returns the visible text of an in-memory package.
func ExtractBytes(pkg []byte, stripFieldInstructions bool) (string, error) {
	raw, err := ReadEntry(pkg, MainPart)
	if err != nil {
		return "", err
	}
	return extract.Extract(raw, stripFieldInstructions)
}
