// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// rawbin inspects raw multi-channel recordings from the command line.
//
//	rawbin info --config rec.yaml
//	rawbin window --config rec.yaml --channels 0,50,100,150 --center 5 --duration 10000
//
// The config file may also be named by the RAWBIN_CONFIG environment
// variable. Recording flags override values from the file.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/OpenPSG/rawbin"
	"github.com/dustin/go-humanize"
	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath   string
	filePath     string
	channelCount uint32
	sampleCount  uint64
	sampleType   string
	rate         float64
	unitScale    float64

	channels string
	center   float64
	duration uint64
	format   string
	output   string

	logLevel string
	logJSON  bool
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		printUsage(stdout)
		return nil
	}

	command := args[0]
	if command != "info" && command != "window" {
		return fmt.Errorf("unknown command %q", command)
	}

	var opts options
	flagSet := pflag.NewFlagSet("rawbin "+command, pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", os.Getenv("RAWBIN_CONFIG"), "recording config file (YAML)")
	flagSet.StringVar(&opts.filePath, "file", "", "raw recording file")
	flagSet.Uint32Var(&opts.channelCount, "channel-count", 0, "number of channels in the recording")
	flagSet.Uint64Var(&opts.sampleCount, "sample-count", 0, "samples per channel (0: derive from file size)")
	flagSet.StringVar(&opts.sampleType, "sample-type", string(rawbin.DefaultSampleType), "sample encoding: int8, int16, int32 or int64")
	flagSet.Float64Var(&opts.rate, "rate", rawbin.DefaultSamplingRate, "sampling rate in Hz")
	flagSet.Float64Var(&opts.unitScale, "unit-scale", rawbin.DefaultUnitScale, "physical units per raw code")
	flagSet.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	flagSet.BoolVar(&opts.logJSON, "log-json", false, "write JSON log records")
	if command == "window" {
		flagSet.StringVar(&opts.channels, "channels", rawbin.DefaultChannels, "comma separated channel indices")
		flagSet.Float64Var(&opts.center, "center", 0, "window center in seconds")
		flagSet.Uint64Var(&opts.duration, "duration", rawbin.DefaultDuration, "window length in samples")
		flagSet.StringVar(&opts.format, "format", "csv", "output format: csv, json or cbor")
		flagSet.StringVarP(&opts.output, "output", "o", "", "write to this file instead of stdout")
	}
	flagSet.SetOutput(stdout)

	if err := flagSet.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := buildConfig(flagSet, &opts)
	if err != nil {
		return err
	}

	logger, err := newLogger(opts.logLevel, opts.logJSON)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	session := rawbin.NewSession(rawbin.WithLogger(logger))
	defer session.Close()

	if err := session.Open(cfg); err != nil {
		return err
	}

	if command == "info" {
		return printInfo(stdout, session, cfg)
	}
	return writeWindow(ctx, stdout, session, &opts)
}

func buildConfig(flagSet *pflag.FlagSet, opts *options) (rawbin.Config, error) {
	cfg := rawbin.DefaultConfig()
	if opts.configPath != "" {
		var err error
		cfg, err = rawbin.LoadConfig(opts.configPath)
		if err != nil {
			return rawbin.Config{}, err
		}
	}

	if flagSet.Changed("file") {
		cfg.FilePath = opts.filePath
	}
	if flagSet.Changed("channel-count") {
		cfg.ChannelCount = opts.channelCount
	}
	if flagSet.Changed("sample-count") {
		cfg.SampleCount = opts.sampleCount
	}
	if flagSet.Changed("sample-type") {
		cfg.SampleType = rawbin.SampleType(opts.sampleType)
	}
	if flagSet.Changed("rate") {
		cfg.SamplingRate = opts.rate
	}
	if flagSet.Changed("unit-scale") {
		cfg.UnitScale = opts.unitScale
	}

	return cfg, nil
}

func newLogger(level string, jsonOutput bool) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	zcfg := zap.NewDevelopmentConfig()
	if jsonOutput {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = lvl

	return zcfg.Build()
}

func printInfo(w io.Writer, session *rawbin.Session, cfg rawbin.Config) error {
	desc, err := session.Descriptor()
	if err != nil {
		return err
	}
	bounds, err := session.Bounds()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "file:         %s\n", desc.Path())
	fmt.Fprintf(w, "channels:     %d\n", desc.ChannelCount())
	fmt.Fprintf(w, "samples:      %s\n", humanize.Comma(int64(desc.SampleCount())))
	fmt.Fprintf(w, "sample type:  %s\n", desc.SampleType())
	fmt.Fprintf(w, "data size:    %s\n", humanize.IBytes(desc.DataBytes()))
	fmt.Fprintf(w, "rate:         %g Hz\n", cfg.SamplingRate)
	fmt.Fprintf(w, "unit scale:   %g\n", desc.UnitScale())
	fmt.Fprintf(w, "duration:     %.3f s\n", bounds.MaxCenterSeconds)
	fmt.Fprintf(w, "window range: %d-%d samples\n", bounds.MinDuration, bounds.MaxDuration)
	return nil
}

// windowOutput is the encoded form of a window for json and cbor output.
type windowOutput struct {
	Start    uint64      `json:"start" cbor:"start"`
	End      uint64      `json:"end" cbor:"end"`
	Channels []uint32    `json:"channels" cbor:"channels"`
	Times    []float64   `json:"times" cbor:"times"`
	Values   [][]float64 `json:"values" cbor:"values"`
}

func writeWindow(ctx context.Context, stdout io.Writer, session *rawbin.Session, opts *options) error {
	bounds, err := session.Bounds()
	if err != nil {
		return err
	}
	if err := bounds.CheckCenter(opts.center); err != nil {
		return err
	}
	if err := bounds.CheckDuration(opts.duration); err != nil {
		return err
	}

	encode, err := encoderFor(opts.format)
	if err != nil {
		return err
	}

	if err := session.LoadText(ctx, opts.channels); err != nil {
		return err
	}

	chunk, err := session.Window(opts.center, opts.duration)
	if err != nil {
		return err
	}

	if opts.output == "" {
		if err := encode(stdout, chunk); err != nil {
			return fmt.Errorf("error writing window: %w", err)
		}
		return nil
	}

	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("error creating output: %w", err)
	}
	if err := encode(f, chunk); err != nil {
		_ = f.Close()
		return fmt.Errorf("error writing window: %w", err)
	}
	return f.Close()
}

func encoderFor(format string) (func(io.Writer, *rawbin.Chunk) error, error) {
	switch format {
	case "csv":
		return encodeCSV, nil
	case "json":
		return func(w io.Writer, c *rawbin.Chunk) error {
			return json.NewEncoder(w).Encode(toOutput(c))
		}, nil
	case "cbor":
		return func(w io.Writer, c *rawbin.Chunk) error {
			return cbor.NewEncoder(w).Encode(toOutput(c))
		}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

func toOutput(c *rawbin.Chunk) windowOutput {
	return windowOutput{
		Start:    c.Window.Start,
		End:      c.Window.End,
		Channels: c.Channels,
		Times:    c.Times,
		Values:   c.Values,
	}
}

// encodeCSV writes one row per sample: the time followed by one column per
// loaded channel.
func encodeCSV(w io.Writer, c *rawbin.Chunk) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(c.Channels)+1)
	header = append(header, "time")
	for _, ch := range c.Channels {
		header = append(header, "ch"+strconv.FormatUint(uint64(ch), 10))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for i, t := range c.Times {
		record[0] = strconv.FormatFloat(t, 'g', -1, 64)
		for row := range c.Values {
			record[row+1] = strconv.FormatFloat(c.Values[row][i], 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `usage: rawbin <command> [flags]

commands:
  info     describe the recording
  window   load channels and write one window of samples

run "rawbin <command> --help" for flags`)
}
