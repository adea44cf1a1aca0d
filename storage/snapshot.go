// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/poiesic/boox/core"
)

// Format selects the compression of a snapshot file.
type Format int

const (
	// FormatGzip writes gzip with the state digest in the header comment.
	FormatGzip Format = iota
	// FormatDeflate writes a zlib deflate stream.
	FormatDeflate
)

// CompressionLevel is the level snapshots are written with.
const CompressionLevel = 6

const digestPrefix = "blake2b-256:"

// String returns the format name.
func (f Format) String() string {
	if f == FormatDeflate {
		return "deflate"
	}
	return "gzip"
}

// Extension returns the file suffix used for the format.
func (f Format) Extension() string {
	if f == FormatDeflate {
		return ".dat"
	}
	return ".gz"
}

// SnapshotPath returns "<dir>/<base>-trained<ext>" for a source file, where
// base is the source file name without its extension. An empty dir means the
// source's own directory.
func SnapshotPath(source, dir string, format Format) string {
	if dir == "" {
		dir = filepath.Dir(source)
	}
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+"-trained"+format.Extension())
}

// SnapshotInfo describes a written snapshot.
type SnapshotInfo struct {
	Format     Format
	StateBytes int64
	Digest     string
}

// WriteSnapshot encodes state as JSON and writes it compressed.
func WriteSnapshot(w io.Writer, state *core.State, format Format) (SnapshotInfo, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	info := SnapshotInfo{Format: format, StateBytes: int64(len(data)), Digest: DigestHex(data)}

	var zw io.WriteCloser
	switch format {
	case FormatGzip:
		gz, err := gzip.NewWriterLevel(w, CompressionLevel)
		if err != nil {
			return SnapshotInfo{}, err
		}
		gz.Comment = digestPrefix + info.Digest
		zw = gz
	case FormatDeflate:
		zw, err = zlib.NewWriterLevel(w, CompressionLevel)
		if err != nil {
			return SnapshotInfo{}, err
		}
	default:
		return SnapshotInfo{}, fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}

	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return SnapshotInfo{}, err
	}
	if err := zw.Close(); err != nil {
		return SnapshotInfo{}, err
	}
	return info, nil
}

// ReadSnapshot decodes a snapshot written by WriteSnapshot. The format is
// detected from the stream's magic bytes. Gzip snapshots carrying a digest
// are verified against it.
func ReadSnapshot(r io.Reader) (*core.State, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncatedData, err)
	}

	var (
		data   []byte
		digest string
	)
	switch {
	case magic[0] == 0x1f && magic[1] == 0x8b:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
		defer gz.Close()
		digest = strings.TrimPrefix(gz.Comment, digestPrefix)
		if data, err = io.ReadAll(gz); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
	case magic[0]&0x0f == 8 && (uint16(magic[0])<<8|uint16(magic[1]))%31 == 0:
		zr, err := zlib.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
		defer zr.Close()
		if data, err = io.ReadAll(zr); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
	default:
		return nil, ErrUnknownFormat
	}

	if digest != "" && digest != DigestHex(data) {
		return nil, ErrChecksumMismatch
	}

	var state core.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &state, nil
}
