/*
NAME
  wire_test.go

DESCRIPTION
  wire_test.go tests command encode/decode round-trips and the fixed ACK/
  joystick/PS2 layouts, after client_test.go's byte-exact expectation style.

LICENSE
  Copyright (C) 2026 the groovymister authors.

  This source code is licensed under the MIT license found in the
  LICENSE file in the root directory of this source tree.
*/

package groovy

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestInitRoundTrip(t *testing.T) {
	want := Init{MTU: 1472, RGBMode: 24, SoundRate: 3, SoundChannels: 2, LZ4Mode: 0}
	b := EncodeInit(want.MTU, want.RGBMode, want.SoundRate, want.SoundChannels, want.LZ4Mode)
	require.Len(t, b, initPayloadSize)

	got, err := DecodeInit(b)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DecodeInit mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeInitShort(t *testing.T) {
	_, err := DecodeInit(make([]byte, initPayloadSize-1))
	assert.ErrorIs(t, err, ErrShortPacket)
}

// TestSwitchresRoundTrip exercises the modeline from spec scenario 1.
func TestSwitchresRoundTrip(t *testing.T) {
	want := Switchres{
		PixelClock: 25.175,
		HActive:    640, HBegin: 656, HEnd: 752, HTotal: 800,
		VActive: 480, VBegin: 490, VEnd: 492, VTotal: 525,
		Interlaced: false,
	}
	b := EncodeSwitchres(want)
	require.Len(t, b, switchresPayloadSize)
	// Interlaced trails as a bare u8 with no padding (Open Question decision).
	assert.Equal(t, byte(0), b[len(b)-1])

	got, err := DecodeSwitchres(b)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DecodeSwitchres mismatch (-want +got):\n%s", diff)
	}
}

func TestSwitchresInterlacedFlag(t *testing.T) {
	b := EncodeSwitchres(Switchres{PixelClock: 1, Interlaced: true})
	assert.Equal(t, byte(1), b[len(b)-1])
}

func TestBlitHeaderRoundTrip(t *testing.T) {
	want := BlitHeader{Frame: 42, VsyncLine: 400, LZ4Size: 12345, Field: 1}
	b := EncodeBlitHeader(want.Frame, want.VsyncLine, want.LZ4Size, want.Field)
	require.Len(t, b, blitHeaderSize)

	got, err := DecodeBlitHeader(b)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestAudioHeaderRoundTrip(t *testing.T) {
	b := EncodeAudioHeader(4096)
	got, err := DecodeAudioHeader(b)
	require.NoError(t, err)
	assert.EqualValues(t, 4096, got)
}

// TestAckRoundTrip checks the frame advertised in spec scenario 2.
func TestAckRoundTrip(t *testing.T) {
	want := Ack{
		Frame: 1, FrameEcho: 1,
		VCount: 150, VCountEcho: 400,
		VRAMReady: 1,
	}
	b := want.Bytes()
	require.Len(t, b, AckSize)

	got, err := DecodeAck(b)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeAckShort(t *testing.T) {
	_, err := DecodeAck(make([]byte, AckSize-1))
	assert.ErrorIs(t, err, ErrShortPacket)
}

// TestAckRoundTripProperty checks Bytes/DecodeAck round-trip for arbitrary
// field values, after fx25_send_test.go's rapid.Check usage.
func TestAckRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		want := Ack{
			Frame:        rapid.Uint32().Draw(rt, "frame"),
			FrameEcho:    rapid.Uint32().Draw(rt, "frameEcho"),
			VCount:       rapid.Uint16().Draw(rt, "vCount"),
			VCountEcho:   rapid.Uint16().Draw(rt, "vCountEcho"),
			VRAMReady:    rapid.Uint8().Draw(rt, "vramReady"),
			VRAMEndFrame: rapid.Uint8().Draw(rt, "vramEndFrame"),
			VRAMSynced:   rapid.Uint8().Draw(rt, "vramSynced"),
			VGAFrameskip: rapid.Uint8().Draw(rt, "vgaFrameskip"),
			VGAVBlank:    rapid.Uint8().Draw(rt, "vgaVBlank"),
			VGAF1:        rapid.Uint8().Draw(rt, "vgaF1"),
			AudioActive:  rapid.Uint8().Draw(rt, "audioActive"),
			VRAMQueue:    rapid.Uint8().Draw(rt, "vramQueue"),
		}
		got, err := DecodeAck(want.Bytes())
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			rt.Fatalf("round-trip mismatch (-want +got):\n%s", diff)
		}
	})
}

// TestJoyDecode checks the fixed joystick layout by decoding the first
// packet of spec scenario 6 (frame=7, order=2, digital=0x0011).
func TestJoyDecode(t *testing.T) {
	buf := make([]byte, JoySize)
	buf[0], buf[1], buf[2], buf[3] = 7, 0, 0, 0 // frame = 7
	buf[4], buf[5], buf[6], buf[7] = 2, 0, 0, 0 // order = 2
	buf[8] = 0                                 // index
	buf[10], buf[11] = 0x11, 0x00               // digital = 0x0011

	got, err := DecodeJoy(buf)
	require.NoError(t, err)
	assert.EqualValues(t, 7, got.Frame)
	assert.EqualValues(t, 2, got.Order)
	assert.EqualValues(t, JoyB1|JoyRight, got.Digital)
}

func TestDecodeJoyShort(t *testing.T) {
	_, err := DecodeJoy(make([]byte, JoySize-1))
	assert.ErrorIs(t, err, ErrShortPacket)
}

func TestPS2Decode(t *testing.T) {
	buf := make([]byte, PS2Size)
	buf[8] = byte(PS2Mouse)
	buf[16], buf[17] = 0xfe, 0xff // mouseDX = -2 (little-endian int16)
	buf[20] = 0x03                // left+right buttons

	got, err := DecodePS2(buf)
	require.NoError(t, err)
	assert.Equal(t, PS2Mouse, got.Kind)
	assert.EqualValues(t, -2, got.MouseDX)
	assert.EqualValues(t, 3, got.MouseButtons)
}

func TestDecodePS2Short(t *testing.T) {
	_, err := DecodePS2(make([]byte, PS2Size-1))
	assert.ErrorIs(t, err, ErrShortPacket)
}
