// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package rawbin_test

import (
	"math"
	"testing"

	"github.com/OpenPSG/rawbin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDescriptor(t *testing.T) {
	desc, err := rawbin.NewDescriptor("/does/not/exist.bin", 384, 24301033, rawbin.Int16, 0.00234)
	require.NoError(t, err)

	assert.Equal(t, "/does/not/exist.bin", desc.Path())
	assert.EqualValues(t, 384, desc.ChannelCount())
	assert.EqualValues(t, 24301033, desc.SampleCount())
	assert.Equal(t, rawbin.Int16, desc.SampleType())
	assert.Equal(t, 0.00234, desc.UnitScale())
	assert.EqualValues(t, 384*24301033*2, desc.DataBytes())
}

func TestNewDescriptorErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		channels uint32
		samples  uint64
		st       rawbin.SampleType
		scale    float64
	}{
		{"no channels", "a.bin", 0, 10, rawbin.Int16, 1},
		{"no samples", "a.bin", 4, 0, rawbin.Int16, 1},
		{"no path", "", 4, 10, rawbin.Int16, 1},
		{"bad type", "a.bin", 4, 10, rawbin.SampleType("float32"), 1},
		{"zero scale", "a.bin", 4, 10, rawbin.Int16, 0},
		{"nan scale", "a.bin", 4, 10, rawbin.Int16, math.NaN()},
		{"too large", "a.bin", 1 << 31, math.MaxUint64 / 4, rawbin.Int64, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rawbin.NewDescriptor(tt.path, tt.channels, tt.samples, tt.st, tt.scale)
			require.ErrorIs(t, err, rawbin.ErrConfig)
		})
	}
}

func TestSampleTypeWidth(t *testing.T) {
	assert.Equal(t, 1, rawbin.Int8.Width())
	assert.Equal(t, 2, rawbin.Int16.Width())
	assert.Equal(t, 4, rawbin.Int32.Width())
	assert.Equal(t, 8, rawbin.Int64.Width())
	assert.Equal(t, 0, rawbin.SampleType("uint16").Width())
}

func TestMatrixRow(t *testing.T) {
	m := rawbin.NewMatrix(2, 3)
	copy(m.Row(1), []float64{1, 2, 3})

	assert.Equal(t, []float64{0, 0, 0, 1, 2, 3}, m.Data)
	assert.Equal(t, 3, cap(m.Row(0)))
}
