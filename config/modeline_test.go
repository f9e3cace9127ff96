package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelineValidate(t *testing.T) {
	tests := []struct {
		name    string
		m       Modeline
		wantErr bool
	}{
		{
			name:    "valid ntsc-ish modeline",
			m:       Modeline{PixelClock: 12.587, HActive: 320, HTotal: 400, VActive: 240, VTotal: 262},
			wantErr: false,
		},
		{
			name:    "zero pixel clock",
			m:       Modeline{PixelClock: 0, HActive: 320, HTotal: 400, VActive: 240, VTotal: 262},
			wantErr: true,
		},
		{
			name:    "h_total less than h_active",
			m:       Modeline{PixelClock: 12.587, HActive: 500, HTotal: 400, VActive: 240, VTotal: 262},
			wantErr: true,
		},
		{
			name:    "v_total less than v_active",
			m:       Modeline{PixelClock: 12.587, HActive: 320, HTotal: 400, VActive: 300, VTotal: 262},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestModelineFramePeriodNs(t *testing.T) {
	// 400 * 262 * 1000 / 12.587 ~= 8,326,051 ns, rounded.
	m := Modeline{PixelClock: 12.587, HActive: 320, HTotal: 400, VActive: 240, VTotal: 262}
	require.NoError(t, m.Validate())
	got := m.FramePeriodNs()
	assert.InDelta(t, 8326051, got, 2)
}

func TestModelineFramePeriodNsZeroClock(t *testing.T) {
	m := Modeline{}
	assert.EqualValues(t, 0, m.FramePeriodNs())
	assert.EqualValues(t, 0, m.LineTimeNs())
}
