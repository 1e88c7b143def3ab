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
	"fmt"
	"slices"

	"github.com/google/uuid"
)

var errNoCache = fmt.Errorf("%w: load channels before requesting a window", ErrState)

// ChannelCache holds the physical values of a channel selection over the
// whole recording. A cache is never modified after it is built; loading a
// new selection builds a new cache.
type ChannelCache struct {
	loadID   uuid.UUID
	channels []uint32
	values   Matrix
}

func newChannelCache(channels []uint32, values Matrix) *ChannelCache {
	return &ChannelCache{
		loadID:   uuid.New(),
		channels: slices.Clone(channels),
		values:   values,
	}
}

// LoadID identifies the load that produced the cache.
func (c *ChannelCache) LoadID() uuid.UUID {
	return c.loadID
}

// Channels returns the channel indices in row order.
func (c *ChannelCache) Channels() []uint32 {
	return slices.Clone(c.channels)
}

// Samples returns the number of cached samples per channel.
func (c *ChannelCache) Samples() uint64 {
	return uint64(c.values.Cols)
}

// Slice returns, for each cached channel, the samples in w. The rows share
// storage with the cache and must not be modified.
func (c *ChannelCache) Slice(w Window) ([][]float64, error) {
	if c == nil {
		return nil, errNoCache
	}
	if w.End <= w.Start || w.End > c.Samples() {
		return nil, fmt.Errorf("%w: window [%d, %d) not within [0, %d)", ErrRange, w.Start, w.End, c.Samples())
	}

	rows := make([][]float64, c.values.Rows)
	for i := range rows {
		row := c.values.Row(i)
		rows[i] = row[w.Start:w.End:w.End]
	}

	return rows, nil
}
