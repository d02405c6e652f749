// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package dialog

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/zeebo/blake3"
)

// Compression identifies the algorithm applied to an audio payload on
// the wire. Values are wire constants; changing them breaks envelope
// compatibility.
type Compression uint8

const (
	// CompressionNone carries the raw recording. Used for formats
	// that are already compressed (Opus, MP3).
	CompressionNone Compression = 0

	// CompressionLZ4 is the default for PCM recordings: modest ratio,
	// very cheap to decode inside the bridge's worker pool.
	CompressionLZ4 Compression = 1

	// CompressionZstd trades CPU for ratio; used by stations on
	// constrained uplinks.
	CompressionZstd Compression = 2
)

// String returns the human-readable name of a compression value.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// AudioClip is a recorded utterance attached to a request. Data holds
// the (possibly compressed) bytes; Digest is the BLAKE3 hash of the
// uncompressed recording, hex encoded, recorded in the journal so the
// same clip is recognizable across log lines without replaying it.
type AudioClip struct {
	Compression Compression `json:"compression"`
	Digest      string      `json:"digest"`
	Data        []byte      `json:"data"`
}

// NewAudioClip compresses raw recording bytes with the given
// algorithm and computes the digest.
func NewAudioClip(raw []byte, compression Compression) (*AudioClip, error) {
	digest := blake3.Sum256(raw)

	var data []byte
	switch compression {
	case CompressionNone:
		data = raw
	case CompressionLZ4:
		var buffer bytes.Buffer
		writer := lz4.NewWriter(&buffer)
		if _, err := writer.Write(raw); err != nil {
			return nil, fmt.Errorf("dialog: lz4 compress: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("dialog: lz4 compress: %w", err)
		}
		data = buffer.Bytes()
	case CompressionZstd:
		encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("dialog: zstd encoder: %w", err)
		}
		data = encoder.EncodeAll(raw, nil)
		encoder.Close()
	default:
		return nil, fmt.Errorf("dialog: unknown compression %d", compression)
	}

	return &AudioClip{
		Compression: compression,
		Digest:      hex.EncodeToString(digest[:]),
		Data:        data,
	}, nil
}

// Bytes decompresses and returns the raw recording. The digest is
// verified so a corrupted payload is caught before it reaches the
// speech service.
func (c *AudioClip) Bytes() ([]byte, error) {
	var raw []byte
	switch c.Compression {
	case CompressionNone:
		raw = c.Data
	case CompressionLZ4:
		reader := lz4.NewReader(bytes.NewReader(c.Data))
		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("dialog: lz4 decompress: %w", err)
		}
		raw = decompressed
	case CompressionZstd:
		decoder, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("dialog: zstd decoder: %w", err)
		}
		defer decoder.Close()
		decompressed, err := decoder.DecodeAll(c.Data, nil)
		if err != nil {
			return nil, fmt.Errorf("dialog: zstd decompress: %w", err)
		}
		raw = decompressed
	default:
		return nil, fmt.Errorf("dialog: unknown compression %d", c.Compression)
	}

	digest := blake3.Sum256(raw)
	if hex.EncodeToString(digest[:]) != c.Digest {
		return nil, fmt.Errorf("dialog: audio digest mismatch (want %s)", c.Digest)
	}
	return raw, nil
}
