// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package rawbin

import (
	"encoding/binary"
	"fmt"
	"math"
)

// SampleType is the on-disk encoding of a single sample.
type SampleType string

const (
	Int8  SampleType = "int8"
	Int16 SampleType = "int16"
	Int32 SampleType = "int32"
	Int64 SampleType = "int64"
)

const (
	// DefaultSampleType is the sample encoding of Neuropixels raw binaries.
	DefaultSampleType = Int16
	// DefaultSamplingRate is the acquisition rate in Hz.
	DefaultSamplingRate = 30000.0
	// DefaultUnitScale converts raw codes to millivolts (2.34 uV per bit).
	DefaultUnitScale = 0.00234
)

// Width returns the number of bytes occupied by one sample, or 0 if the
// type is unknown.
func (t SampleType) Width() int {
	switch t {
	case Int8:
		return 1
	case Int16:
		return 2
	case Int32:
		return 4
	case Int64:
		return 8
	default:
		return 0
	}
}

// decode reads one little-endian sample from the start of b.
func (t SampleType) decode(b []byte) int64 {
	switch t {
	case Int8:
		return int64(int8(b[0]))
	case Int16:
		return int64(int16(binary.LittleEndian.Uint16(b)))
	case Int32:
		return int64(int32(binary.LittleEndian.Uint32(b)))
	default:
		return int64(binary.LittleEndian.Uint64(b))
	}
}

// Descriptor holds the immutable metadata of a recording. Dimensions come
// from configuration; the file itself carries no header.
type Descriptor struct {
	path         string
	channelCount uint32
	sampleCount  uint64
	sampleType   SampleType
	unitScale    float64
}

// NewDescriptor validates and returns a recording descriptor. It does not
// touch the filesystem.
func NewDescriptor(path string, channelCount uint32, sampleCount uint64, sampleType SampleType, unitScale float64) (Descriptor, error) {
	if path == "" {
		return Descriptor{}, fmt.Errorf("%w: empty file path", ErrConfig)
	}
	if channelCount == 0 {
		return Descriptor{}, fmt.Errorf("%w: channel count must be positive", ErrConfig)
	}
	if sampleCount == 0 {
		return Descriptor{}, fmt.Errorf("%w: sample count must be positive", ErrConfig)
	}
	if sampleType.Width() == 0 {
		return Descriptor{}, fmt.Errorf("%w: unsupported sample type %q", ErrConfig, sampleType)
	}
	if unitScale == 0 || math.IsNaN(unitScale) || math.IsInf(unitScale, 0) {
		return Descriptor{}, fmt.Errorf("%w: invalid unit scale %v", ErrConfig, unitScale)
	}
	if sampleCount > math.MaxUint64/uint64(channelCount)/uint64(sampleType.Width()) {
		return Descriptor{}, fmt.Errorf("%w: recording of %d x %d samples is too large", ErrConfig, channelCount, sampleCount)
	}

	return Descriptor{
		path:         path,
		channelCount: channelCount,
		sampleCount:  sampleCount,
		sampleType:   sampleType,
		unitScale:    unitScale,
	}, nil
}

func (d Descriptor) Path() string           { return d.path }
func (d Descriptor) ChannelCount() uint32   { return d.channelCount }
func (d Descriptor) SampleCount() uint64    { return d.sampleCount }
func (d Descriptor) SampleType() SampleType { return d.sampleType }
func (d Descriptor) UnitScale() float64     { return d.unitScale }

// DataBytes is the number of bytes the sample matrix occupies on disk.
func (d Descriptor) DataBytes() uint64 {
	return uint64(d.channelCount) * d.sampleCount * uint64(d.sampleType.Width())
}

// Window is a half-open range [Start, End) of sample indices.
type Window struct {
	Start uint64
	End   uint64
}

// Len returns the number of samples in the window.
func (w Window) Len() uint64 {
	return w.End - w.Start
}

// Matrix is a dense row-major matrix of physical values.
type Matrix struct {
	Rows int
	Cols int
	Data []float64
}

// NewMatrix allocates a zeroed rows x cols matrix.
func NewMatrix(rows, cols int) Matrix {
	return Matrix{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// Row returns row i as a slice sharing the matrix storage.
func (m Matrix) Row(i int) []float64 {
	return m.Data[i*m.Cols : (i+1)*m.Cols : (i+1)*m.Cols]
}
