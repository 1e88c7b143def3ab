// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package fixture writes small raw recordings for tests.
package fixture

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/OpenPSG/rawbin"
)

// Writer writes a raw recording one frame (one sample of every channel)
// at a time, in the column-major layout rawbin reads.
type Writer struct {
	w            *bufio.Writer
	channelCount int
	sampleType   rawbin.SampleType
	frames       int // Number of frames written so far.
}

// Create creates a new writer that writes to w.
func Create(w io.Writer, channelCount int, sampleType rawbin.SampleType) (*Writer, error) {
	if channelCount <= 0 {
		return nil, fmt.Errorf("channel count must be positive, got %d", channelCount)
	}
	if sampleType.Width() == 0 {
		return nil, fmt.Errorf("unsupported sample type %q", sampleType)
	}

	return &Writer{
		w:            bufio.NewWriter(w),
		channelCount: channelCount,
		sampleType:   sampleType,
	}, nil
}

// WriteFrame writes one sample for every channel.
func (fw *Writer) WriteFrame(frame []int64) error {
	if len(frame) != fw.channelCount {
		return fmt.Errorf("expected %d channels, got %d", fw.channelCount, len(frame))
	}

	for ch, v := range frame {
		if err := fw.writeSample(v); err != nil {
			return fmt.Errorf("error writing channel %d of frame %d: %w", ch, fw.frames, err)
		}
	}

	fw.frames++
	return nil
}

func (fw *Writer) writeSample(v int64) error {
	switch fw.sampleType {
	case rawbin.Int8:
		if v < math.MinInt8 || v > math.MaxInt8 {
			return fmt.Errorf("value %d overflows %s", v, fw.sampleType)
		}
		return binary.Write(fw.w, binary.LittleEndian, int8(v))
	case rawbin.Int16:
		if v < math.MinInt16 || v > math.MaxInt16 {
			return fmt.Errorf("value %d overflows %s", v, fw.sampleType)
		}
		return binary.Write(fw.w, binary.LittleEndian, int16(v))
	case rawbin.Int32:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return fmt.Errorf("value %d overflows %s", v, fw.sampleType)
		}
		return binary.Write(fw.w, binary.LittleEndian, int32(v))
	default:
		return binary.Write(fw.w, binary.LittleEndian, v)
	}
}

// Frames returns the number of frames written.
func (fw *Writer) Frames() int {
	return fw.frames
}

// Close flushes buffered samples to the underlying writer.
func (fw *Writer) Close() error {
	return fw.w.Flush()
}

// WriteFile writes a recording of sampleCount frames to path, taking each
// sample value from fn.
func WriteFile(path string, channelCount, sampleCount int, sampleType rawbin.SampleType, fn func(channel, sample int) int64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fw, err := Create(f, channelCount, sampleType)
	if err != nil {
		return err
	}

	frame := make([]int64, channelCount)
	for s := 0; s < sampleCount; s++ {
		for ch := range frame {
			frame[ch] = fn(ch, s)
		}
		if err := fw.WriteFrame(frame); err != nil {
			return err
		}
	}

	if err := fw.Close(); err != nil {
		return err
	}
	return f.Close()
}

// Pattern is a sample generator whose values identify their coordinates and
// include negative codes.
func Pattern(channel, sample int) int64 {
	return int64(channel*100+sample%97) - 2000
}
