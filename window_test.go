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

const (
	npxSamples = 24301033
	npxRate    = 30000.0
)

func TestResolveCentered(t *testing.T) {
	w, err := rawbin.Resolve(5.0, 10000, npxRate, npxSamples)
	require.NoError(t, err)

	assert.EqualValues(t, 145000, w.Start)
	assert.EqualValues(t, 155000, w.End)
	assert.InDelta(t, 4.8333, float64(w.Start)/npxRate, 0.0001)

	// Odd durations put the extra sample after the center.
	w, err = rawbin.Resolve(1.0, 101, 100, 1000)
	require.NoError(t, err)
	assert.Equal(t, rawbin.Window{Start: 50, End: 151}, w)
}

func TestResolveClamps(t *testing.T) {
	bounds := rawbin.NewBounds(npxSamples, npxRate)

	w, err := rawbin.Resolve(0, 10000, npxRate, npxSamples)
	require.NoError(t, err)
	assert.Equal(t, rawbin.Window{Start: 0, End: 10000}, w)

	w, err = rawbin.Resolve(bounds.MaxCenterSeconds, 10000, npxRate, npxSamples)
	require.NoError(t, err)
	assert.Equal(t, rawbin.Window{Start: npxSamples - 10000, End: npxSamples}, w)

	w, err = rawbin.Resolve(-1e300, 10000, npxRate, npxSamples)
	require.NoError(t, err)
	assert.Equal(t, rawbin.Window{Start: 0, End: 10000}, w)

	w, err = rawbin.Resolve(math.Inf(1), 10000, npxRate, npxSamples)
	require.NoError(t, err)
	assert.Equal(t, rawbin.Window{Start: npxSamples - 10000, End: npxSamples}, w)

	// A window as long as the recording always covers all of it.
	w, err = rawbin.Resolve(3.3, npxSamples, npxRate, npxSamples)
	require.NoError(t, err)
	assert.Equal(t, rawbin.Window{Start: 0, End: npxSamples}, w)
}

func TestResolveHugeRecording(t *testing.T) {
	const sampleCount = math.MaxUint64 - 1

	w, err := rawbin.Resolve(1e30, 1000, 1, sampleCount)
	require.NoError(t, err)
	assert.Equal(t, rawbin.Window{Start: sampleCount - 1000, End: sampleCount}, w)

	w, err = rawbin.Resolve(-1e30, 1000, 1, sampleCount)
	require.NoError(t, err)
	assert.Equal(t, rawbin.Window{Start: 0, End: 1000}, w)

	w, err = rawbin.Resolve(1e12, 1000, 1, sampleCount)
	require.NoError(t, err)
	assert.Equal(t, rawbin.Window{Start: 1e12 - 500, End: 1e12 + 500}, w)
}

func TestResolveErrors(t *testing.T) {
	for _, center := range []float64{-10, 0, 5, 1e9} {
		_, err := rawbin.Resolve(center, npxSamples+1, npxRate, npxSamples)
		require.ErrorIs(t, err, rawbin.ErrRange)
	}

	_, err := rawbin.Resolve(1, 0, npxRate, npxSamples)
	require.ErrorIs(t, err, rawbin.ErrRange)

	_, err = rawbin.Resolve(math.NaN(), 100, npxRate, npxSamples)
	require.ErrorIs(t, err, rawbin.ErrRange)

	_, err = rawbin.Resolve(1, 100, 0, npxSamples)
	require.ErrorIs(t, err, rawbin.ErrRange)
}

func TestResolveProperties(t *testing.T) {
	const sampleCount = 12345
	const rate = 1000.0
	maxCenter := sampleCount / rate

	durations := []uint64{100, 101, 999, 5000, 12344, sampleCount}
	for _, duration := range durations {
		for center := -2.0; center <= maxCenter+2; center += 0.137 {
			w, err := rawbin.Resolve(center, duration, rate, sampleCount)
			require.NoError(t, err)

			require.Equal(t, duration, w.Len(), "center %v duration %d", center, duration)
			require.LessOrEqual(t, w.End, uint64(sampleCount))

			// Outside the recording the window sits on exactly one edge.
			if center < 0 {
				require.Zero(t, w.Start)
			}
			if center > maxCenter && duration < sampleCount {
				require.EqualValues(t, sampleCount, w.End)
				require.NotZero(t, w.Start)
			}
		}
	}
}

func TestBounds(t *testing.T) {
	b := rawbin.NewBounds(npxSamples, npxRate)

	assert.InDelta(t, 810.0344, b.MaxCenterSeconds, 0.0001)
	assert.EqualValues(t, 100, b.MinDuration)
	assert.EqualValues(t, npxSamples, b.MaxDuration)

	require.NoError(t, b.CheckCenter(0))
	require.NoError(t, b.CheckCenter(b.MaxCenterSeconds))
	require.ErrorIs(t, b.CheckCenter(-0.1), rawbin.ErrRange)
	require.ErrorIs(t, b.CheckCenter(math.NaN()), rawbin.ErrRange)

	require.NoError(t, b.CheckDuration(rawbin.DefaultDuration))
	require.ErrorIs(t, b.CheckDuration(99), rawbin.ErrRange)
	require.ErrorIs(t, b.CheckDuration(npxSamples+1), rawbin.ErrRange)
}
