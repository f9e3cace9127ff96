/*
NAME
  main.go

DESCRIPTION
  mrdemo is a demo client for the groovymister package: it connects to a
  MiSTer FPGA, live-reloads its display modeline from a TOML file, streams
  a WAV file as audio, and on exit renders the health engine's sync-wait
  history to a PNG chart.

AUTHOR
  groovymister authors, after cmd/rv/main.go's netsender client as a model
  for flag/logging/config wiring.

LICENSE
  Copyright (C) 2026 the groovymister authors.

  This source code is licensed under the MIT license found in the
  LICENSE file in the root directory of this source tree.
*/

// Package main is the mrdemo demo binary.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/groovymister/groovymister"
	"github.com/groovymister/groovymister/config"
)

// version is the demo binary's own version string, independent of the
// library's groovymister.Version.
const version = "v0.1.0"

// Logging configuration, after cmd/rv/main.go's lumberjack constants.
const (
	logPath      = "mrdemo.log"
	logMaxSizeMB = 50
	logMaxBackup = 5
	logMaxAgeDay = 28
)

func main() {
	host := pflag.String("host", "192.168.1.10", "MiSTer FPGA host/IP")
	mtu := pflag.Uint16("mtu", 1472, "maximum UDP datagram payload size")
	rgbMode := pflag.Uint8("rgb-mode", 0, "RGB pass-through mode forwarded to the FPGA")
	soundRate := pflag.Uint8("sound-rate", uint8(config.SoundRate48000), "sound rate enum (0=off,1=22050,2=44100,3=48000)")
	soundChannels := pflag.Uint8("sound-channels", uint8(config.SoundChannelsStereo), "sound channels enum (0=off,1=mono,2=stereo)")
	lz4Mode := pflag.Uint8("lz4-mode", uint8(config.LZ4AdaptiveDelta), "compression mode enum, see config.LZ4Mode")
	configPath := pflag.String("config", "mrdemo", "modeline config file name (without extension), searched in . and /etc/mrdemo")
	audioPath := pflag.String("audio", "", "WAV file to stream as audio; empty disables audio")
	chartPath := pflag.String("chart", "", "PNG path to render the health engine's sync-wait history to on exit; empty disables charting")
	showVersion := pflag.Bool("version", false, "show version")
	pflag.Parse()

	if *showVersion {
		fmt.Printf("mrdemo %s (groovymister %s)\n", version, groovymister.Version())
		return
	}

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAgeDay,
	}
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	zcore := zapcore.NewCore(encoder, zapcore.AddSync(fileLog), zap.InfoLevel)
	zl := zap.New(zcore)
	defer zl.Sync()
	gmLog := groovymister.NewZapLogger(zl)

	gmLog(groovymister.LogInfo, "starting mrdemo", "version", version, "host", *host)

	conn, err := groovymister.Connect(*host, *mtu,
		config.RGBMode(*rgbMode), config.SoundRate(*soundRate), config.SoundChannels(*soundChannels),
		groovymister.WithLZ4Mode(config.LZ4Mode(*lz4Mode)),
		groovymister.WithLog(gmLog))
	if err != nil {
		gmLog(groovymister.LogError, "could not connect", "error", err.Error())
		os.Exit(1)
	}
	defer conn.Disconnect()

	watchModeline(*configPath, conn, gmLog)

	if *audioPath != "" {
		go streamAudio(*audioPath, conn, gmLog)
	}

	runLoop(conn, gmLog, *chartPath)
}

// watchModeline loads the initial modeline from a TOML config file and
// re-applies it on every subsequent save, after jbrzusto-ogdar's
// viper-based config loader, extended with WatchConfig/OnConfigChange.
func watchModeline(name string, conn *groovymister.Connection, log groovymister.Log) {
	v := viper.New()
	v.SetConfigName(name)
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/mrdemo")

	apply := func() {
		var m config.Modeline
		if err := v.UnmarshalKey("modeline", &m); err != nil {
			log(groovymister.LogWarning, "could not unmarshal modeline", "error", err.Error())
			return
		}
		if err := conn.SetModeline(m); err != nil {
			log(groovymister.LogWarning, "could not apply modeline", "error", err.Error())
			return
		}
		log(groovymister.LogInfo, "modeline applied", "pixel_clock", m.PixelClock)
	}

	if err := v.ReadInConfig(); err != nil {
		log(groovymister.LogWarning, "no modeline config found, waiting for set_modeline via other means", "error", err.Error())
	} else {
		apply()
	}

	v.OnConfigChange(func(fsnotify.Event) { apply() })
	v.WatchConfig()
}

// streamAudio decodes a WAV file and submits its PCM samples, after the
// wav.NewDecoder usage in exp/flac/decode.go.
func streamAudio(path string, conn *groovymister.Connection, log groovymister.Log) {
	f, err := os.Open(path)
	if err != nil {
		log(groovymister.LogError, "could not open audio file", "path", path, "error", err.Error())
		return
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	buf, err := d.FullPCMBuffer()
	if err != nil {
		log(groovymister.LogError, "could not decode wav", "path", path, "error", err.Error())
		return
	}

	pcm := pcm16LEBytes(buf)
	const chunk = 4096
	for len(pcm) > 0 {
		n := chunk
		if n > len(pcm) {
			n = len(pcm)
		}
		if err := conn.SubmitAudio(pcm[:n]); err != nil {
			log(groovymister.LogWarning, "audio submit failed", "error", err.Error())
			return
		}
		pcm = pcm[n:]
		time.Sleep(time.Millisecond)
	}
}

// pcm16LEBytes packs an IntBuffer's samples as little-endian 16-bit PCM.
func pcm16LEBytes(buf *audio.IntBuffer) []byte {
	out := make([]byte, 2*len(buf.Data))
	for i, s := range buf.Data {
		out[2*i] = byte(s)
		out[2*i+1] = byte(s >> 8)
	}
	return out
}

// runLoop ticks the connection every 16ms for 600 ticks (or until a tick
// fails), then renders a chart if requested.
func runLoop(conn *groovymister.Connection, log groovymister.Log, chartPath string) {
	var history []float64
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		status, err := conn.Tick()
		if err != nil {
			log(groovymister.LogError, "tick failed", "error", err.Error())
			break
		}
		history = append(history, status.AvgSyncWaitMs)
		if len(history) >= 600 { // roughly 10s at 60Hz; demo run length.
			break
		}
	}

	if chartPath != "" {
		if err := renderChart(chartPath, history); err != nil {
			log(groovymister.LogWarning, "could not render chart", "error", err.Error())
		}
	}
}

// renderChart plots the avg sync-wait history to a PNG using gonum/plot.
func renderChart(path string, history []float64) error {
	p := plot.New()
	p.Title.Text = "sync-wait history"
	p.X.Label.Text = "tick"
	p.Y.Label.Text = "ms"

	pts := make(plotter.XYs, len(history))
	for i, v := range history {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line)

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
