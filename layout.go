// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package rawbin

// Samples are stored column-major: all channels of sample 0, then all
// channels of sample 1, and so on.

// Locate maps a flat element offset to its (channel, sample) coordinates.
func Locate(flat uint64, channelCount uint32) (channel uint32, sample uint64) {
	n := uint64(channelCount)
	return uint32(flat % n), flat / n
}

// FlatIndex is the inverse of Locate.
func FlatIndex(channel uint32, sample uint64, channelCount uint32) uint64 {
	return sample*uint64(channelCount) + uint64(channel)
}
