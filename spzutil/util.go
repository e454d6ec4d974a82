// Package spzutil provides small helpers for inspecting SPZ and PLY files
// on disk, built on top of the pure in-memory spz package.
package spzutil

import (
	"os"
	"strings"

	"github.com/mrjoshuak/go-spz/spz"
)

// FileInfo summarizes a decoded splat cloud for display by a CLI or a log
// line, mirroring the kind of at-a-glance summary callers need before
// deciding whether to process a file further.
type FileInfo struct {
	Path        string
	NumPoints   uint32
	ShDegree    uint8
	Antialiased bool
	MedianVolume float32
	FileSize    int64
}

// GetFileInfo opens the file at path (dispatching on its suffix between
// the SPZ and PLY codecs, matching the CLI's convert command), decodes it
// in the canonical RUB frame, and summarizes it.
func GetFileInfo(path string) (*FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cloud, err := decode(path, data)
	if err != nil {
		return nil, err
	}

	return &FileInfo{
		Path:         path,
		NumPoints:    cloud.NumPoints,
		ShDegree:     cloud.ShDegree,
		Antialiased:  cloud.Antialiased,
		MedianVolume: cloud.MedianVolume(),
		FileSize:     stat.Size(),
	}, nil
}

// decode dispatches to DecodePLY or DecodeSPZ based on the path suffix,
// matching the convention used by the convert CLI command.
func decode(path string, data []byte) (spz.Cloud, error) {
	if strings.HasSuffix(strings.ToLower(path), ".ply") {
		return spz.DecodePLY(data, spz.RUB)
	}
	return spz.DecodeSPZ(data, spz.Unspecified)
}

// Convert reads the file at inPath and writes it to outPath, choosing the
// codec on each side from the path suffix (".ply" vs anything else).
func Convert(inPath, outPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	cloud, err := decode(inPath, data)
	if err != nil {
		return err
	}

	var out []byte
	if strings.HasSuffix(strings.ToLower(outPath), ".ply") {
		out, err = spz.EncodePLY(cloud, spz.RUB)
	} else {
		out, err = spz.EncodeSPZ(cloud, spz.Unspecified)
	}
	if err != nil {
		return err
	}

	return os.WriteFile(outPath, out, 0o644)
}
