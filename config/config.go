/*
NAME
  config.go

DESCRIPTION
  config.go defines the enumerations used to configure a groovymister
  connection: sound rate/channels, rgb pass-through mode and the LZ4
  compression mode.

LICENSE
  Copyright (C) 2026 the groovymister authors.

  This source code is licensed under the MIT license found in the
  LICENSE file in the root directory of this source tree.
*/

// Package config holds the configuration types shared by the groovymister
// client: the display Modeline and the small enumerations used by the INIT
// command and the compressor.
package config

// SoundRate selects the audio sample rate advertised in the INIT command.
type SoundRate uint8

// Sound rates supported by the protocol.
const (
	SoundRateOff   SoundRate = 0
	SoundRate22050 SoundRate = 1
	SoundRate44100 SoundRate = 2
	SoundRate48000 SoundRate = 3
)

// SoundChannels selects mono/stereo/off for the INIT command.
type SoundChannels uint8

// Channel counts supported by the protocol.
const (
	SoundChannelsOff    SoundChannels = 0
	SoundChannelsMono   SoundChannels = 1
	SoundChannelsStereo SoundChannels = 2
)

// RGBMode is an opaque pass-through value forwarded to the FPGA in the INIT
// command; this library does not interpret it.
type RGBMode uint8

// LZ4Mode selects how BLIT payloads are compressed before transmission.
type LZ4Mode uint8

// Compression modes understood by the compressor package. See
// codec/groovylz4 for the implementation of each.
const (
	LZ4Off LZ4Mode = iota
	LZ4On
	LZ4Delta
	LZ4HC
	LZ4HCDelta
	LZ4Adaptive
	LZ4AdaptiveDelta
)

// Delta reports whether mode XORs each frame against the previously
// transmitted frame before compressing.
func (m LZ4Mode) Delta() bool {
	switch m {
	case LZ4Delta, LZ4HCDelta, LZ4AdaptiveDelta:
		return true
	default:
		return false
	}
}

// HC reports whether mode uses the high-compression LZ4 variant.
func (m LZ4Mode) HC() bool {
	return m == LZ4HC || m == LZ4HCDelta
}

// Adaptive reports whether mode falls back to an uncompressed transmission
// when compression doesn't pay off.
func (m LZ4Mode) Adaptive() bool {
	return m == LZ4Adaptive || m == LZ4AdaptiveDelta
}

// Compresses reports whether mode attempts LZ4 compression at all.
func (m LZ4Mode) Compresses() bool {
	return m != LZ4Off
}
