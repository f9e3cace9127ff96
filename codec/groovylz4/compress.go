/*
NAME
  compress.go

DESCRIPTION
  compress.go implements the groovy compressor: LZ4 block and LZ4-HC
  encoders, the delta-against-previous-frame modes, and an adaptive mode
  that falls back to uncompressed transmission when compression doesn't
  pay off.

AUTHOR
  groovymister authors. Block (de)compression uses
  github.com/pierrec/lz4/v4, the real ecosystem LZ4 library the retrieval
  pack already references (vendored in its ethereum-go-ethereum copy, and
  a declared dependency in two of its go.mod manifests).

LICENSE
  Copyright (C) 2026 the groovymister authors.

  This source code is licensed under the MIT license found in the
  LICENSE file in the root directory of this source tree.
*/

// Package groovylz4 implements the frame compressor described in spec §4.3:
// seven modes spanning off/on/HC/delta/adaptive, sharing one previous-frame
// delta buffer and one scratch compression workspace per Compressor.
package groovylz4

import (
	"github.com/pierrec/lz4/v4"

	"github.com/groovymister/groovymister/config"
)

// adaptiveFallbackNum/Den express the adaptive threshold: fall back to
// uncompressed when compressed_size >= raw_size * 15/16.
const (
	adaptiveFallbackNum = 15
	adaptiveFallbackDen = 16
)

// hcLevel is the compression depth passed to CompressBlockHC for the *_HC
// modes: pierrec/lz4's highest search depth, trading encode time for ratio.
const hcLevel = lz4.Level9

// minCompressInput is the largest frame size for which the adaptive modes
// skip compression; at or below it, LZ4 block framing overhead alone
// guarantees the result can't beat the 15/16 threshold.
const minCompressInput = 16

// Result is the outcome of compressing one frame: the bytes to transmit
// and the lz4_size to place in the BLIT header (0 means "payload is raw").
type Result struct {
	Payload []byte
	LZ4Size uint32
}

// Compressor holds the scratch buffers needed to compress frames under one
// LZ4Mode without reallocating per frame: a delta buffer (used only by the
// _DELTA modes) and LZ4 hash/chain tables reused across calls.
type Compressor struct {
	mode config.LZ4Mode

	delta deltaBuffer

	xorScratch  []byte
	compScratch []byte
	hashTable   []int
	chainTable  []int
}

// NewCompressor returns a Compressor operating in mode.
func NewCompressor(mode config.LZ4Mode) *Compressor {
	return &Compressor{mode: mode}
}

// Mode returns the compressor's configured mode.
func (c *Compressor) Mode() config.LZ4Mode { return c.mode }

// Compress compresses raw (the literal pixel bytes of one frame about to
// be transmitted) according to the compressor's mode, and updates the
// delta buffer so that, regardless of which path is chosen, the buffer
// afterwards holds exactly raw's bytes (the guarantee in spec §4.3).
func (c *Compressor) Compress(raw []byte) (Result, error) {
	if !c.mode.Compresses() {
		c.delta.update(raw)
		return Result{Payload: raw, LZ4Size: 0}, nil
	}

	if c.mode.Adaptive() && len(raw) <= minCompressInput {
		// Frames this small can never satisfy the adaptive 15/16 ratio
		// test (LZ4 block framing overhead alone exceeds the saving), so
		// skip the speculative compression attempt entirely.
		c.delta.update(raw)
		return Result{Payload: raw, LZ4Size: 0}, nil
	}

	input := raw
	if c.mode.Delta() {
		c.xorScratch = c.delta.xor(c.xorScratch, raw)
		input = c.xorScratch
	}

	compressed, ok, err := c.compressBlock(input)
	if err != nil {
		return Result{}, err
	}

	// pierrec/lz4 returns n == 0 only when dst is smaller than
	// CompressBlockBound; compressBlock always sizes dst to the bound, so an
	// incompressible frame still comes back as a decodable (literals-only,
	// slightly larger than raw) block. If n == 0 is ever reported, every
	// mode sends the raw payload with lz4_size = 0 rather than bytes
	// lz4.UncompressBlock cannot decode.
	if !ok {
		c.delta.update(raw)
		return Result{Payload: raw, LZ4Size: 0}, nil
	}

	if c.mode.Adaptive() {
		// The wire format has no per-BLIT flag distinguishing a delta
		// payload from a non-delta one (lz4_size > 0 always means "this
		// connection's configured mode applies"); so the only fallback
		// the wire can express for a blown-up XOR is the same one used
		// for ordinary incompressible frames: transmit raw with
		// lz4_size = 0, which trivially has no delta applied either.
		blownUp := c.mode.Delta() && len(compressed) >= len(raw)
		tooLarge := len(compressed)*adaptiveFallbackDen >= len(raw)*adaptiveFallbackNum
		if blownUp || tooLarge || len(raw) == 0 {
			c.delta.update(raw)
			return Result{Payload: raw, LZ4Size: 0}, nil
		}
	}

	c.delta.update(raw)
	return Result{Payload: compressed, LZ4Size: uint32(len(compressed))}, nil
}

// compressBlock runs the plain or HC LZ4 block encoder over input, using
// and growing the compressor's scratch buffer and hash/chain tables as
// needed. ok is false when pierrec/lz4 returns n == 0 (which it does only
// for a dst shorter than CompressBlockBound); callers must not transmit the
// returned slice as a compressed payload in that case.
func (c *Compressor) compressBlock(input []byte) (out []byte, ok bool, err error) {
	bound := lz4.CompressBlockBound(len(input))
	if cap(c.compScratch) < bound {
		c.compScratch = make([]byte, bound)
	}
	dst := c.compScratch[:bound]

	var n int
	if c.mode.HC() {
		if len(c.chainTable) == 0 {
			c.chainTable = make([]int, 1<<16)
		}
		if len(c.hashTable) == 0 {
			c.hashTable = make([]int, 1<<16)
		}
		n, err = lz4.CompressBlockHC(input, dst, hcLevel, c.hashTable, c.chainTable)
	} else {
		if len(c.hashTable) == 0 {
			c.hashTable = make([]int, 1<<16)
		}
		n, err = lz4.CompressBlock(input, dst, c.hashTable)
	}
	if err != nil {
		return nil, false, err
	}
	if n == 0 {
		return nil, false, nil
	}
	return dst[:n], true, nil
}

// Decompress reverses Compress for payloads where lz4Size > 0, writing
// into dst (grown as needed) and returning the decompressed slice. rawSize
// must be the original frame's byte length (known from the modeline's
// configured resolution/pixel format).
func Decompress(payload []byte, rawSize int, dst []byte) ([]byte, error) {
	if cap(dst) < rawSize {
		dst = make([]byte, rawSize)
	}
	dst = dst[:rawSize]
	n, err := lz4.UncompressBlock(payload, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}
