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
	"context"
	"fmt"
	"io"
	"math"
	"runtime"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

// readBlock is the number of samples a worker reads between cancellation
// checks.
const readBlock = 1 << 16

// Recording is a read-only memory mapping of a raw recording, addressed as
// a (channel, sample) matrix.
//
// Reads may run concurrently. Close must not be called while reads are in
// flight.
type Recording struct {
	desc     Descriptor
	data     []byte
	fileSize int64
}

// Open maps the file described by desc.
func Open(desc Descriptor) (*Recording, error) {
	if desc.channelCount == 0 {
		return nil, fmt.Errorf("%w: zero descriptor", ErrConfig)
	}

	data, fileSize, err := mapFile(desc.path, desc.DataBytes())
	if err != nil {
		return nil, err
	}

	return &Recording{
		desc:     desc,
		data:     data,
		fileSize: fileSize,
	}, nil
}

// Descriptor returns the descriptor the recording was opened with.
func (r *Recording) Descriptor() Descriptor {
	return r.desc
}

// FileSize returns the size of the file on disk in bytes.
func (r *Recording) FileSize() int64 {
	return r.fileSize
}

// TrailingBytes returns the number of bytes past the end of the sample
// matrix. They are never read.
func (r *Recording) TrailingBytes() int64 {
	return r.fileSize - int64(r.desc.DataBytes())
}

// Close releases the mapping. It is safe to call more than once.
func (r *Recording) Close() error {
	if r.data == nil {
		return nil
	}
	data := r.data
	r.data = nil
	return unmapFile(data)
}

// Raw returns the undecoded sample value at (channel, sample).
func (r *Recording) Raw(channel uint32, sample uint64) (v int64, err error) {
	if r.data == nil {
		return 0, fmt.Errorf("%w: recording is closed", ErrState)
	}
	if channel >= r.desc.channelCount {
		return 0, &IndexError{Index: int64(channel), Count: r.desc.channelCount}
	}
	if sample >= r.desc.sampleCount {
		return 0, fmt.Errorf("%w: sample %d not in [0, %d)", ErrRange, sample, r.desc.sampleCount)
	}

	defer guardFault(&err, debug.SetPanicOnFault(true), channel, sample)

	width := uint64(r.desc.sampleType.Width())
	pos := FlatIndex(channel, sample, r.desc.channelCount) * width
	return r.desc.sampleType.decode(r.data[pos : pos+width]), nil
}

// ChannelReader reads the physical values of one channel sequentially.
type ChannelReader struct {
	rec           *Recording
	channel       uint32
	currentSample uint64
}

// Channel creates a ChannelReader positioned at the first sample of channel.
func (r *Recording) Channel(channel uint32) (*ChannelReader, error) {
	if r.data == nil {
		return nil, fmt.Errorf("%w: recording is closed", ErrState)
	}
	if channel >= r.desc.channelCount {
		return nil, &IndexError{Index: int64(channel), Count: r.desc.channelCount}
	}

	return &ChannelReader{rec: r, channel: channel}, nil
}

// Seek positions the reader at the given sample index.
func (cr *ChannelReader) Seek(sample uint64) error {
	if sample > cr.rec.desc.sampleCount {
		return fmt.Errorf("%w: sample %d beyond end of recording", ErrRange, sample)
	}
	cr.currentSample = sample
	return nil
}

// Read fills data with consecutive samples of the channel scaled to
// physical units. It returns io.EOF once every sample has been read.
func (cr *ChannelReader) Read(data []float64) (n int, err error) {
	desc := cr.rec.desc
	if cr.rec.data == nil {
		return 0, fmt.Errorf("%w: recording is closed", ErrState)
	}

	defer guardFault(&err, debug.SetPanicOnFault(true), cr.channel, cr.currentSample)

	st := desc.sampleType
	width := uint64(st.Width())
	stride := uint64(desc.channelCount) * width
	pos := FlatIndex(cr.channel, cr.currentSample, desc.channelCount) * width
	buf := cr.rec.data

	for n < len(data) {
		if cr.currentSample >= desc.sampleCount {
			return n, io.EOF
		}

		data[n] = float64(st.decode(buf[pos:pos+width])) * desc.unitScale

		n++
		pos += stride
		cr.currentSample++
	}

	return n, nil
}

// Extract copies the selected channels out of the mapping as physical
// values. Row i of the result holds channels[i]; order and duplicates are
// preserved. Rows are read concurrently.
func (r *Recording) Extract(ctx context.Context, channels []uint32) (Matrix, error) {
	if r.data == nil {
		return Matrix{}, fmt.Errorf("%w: recording is closed", ErrState)
	}
	if len(channels) == 0 {
		return Matrix{}, fmt.Errorf("%w: empty channel list", ErrValidation)
	}
	for _, ch := range channels {
		if ch >= r.desc.channelCount {
			return Matrix{}, fmt.Errorf("error extracting channels: %w",
				&IndexError{Index: int64(ch), Count: r.desc.channelCount})
		}
	}
	if r.desc.sampleCount > uint64(math.MaxInt/len(channels)) {
		return Matrix{}, fmt.Errorf("%w: %d channels of %d samples do not fit in memory",
			ErrRange, len(channels), r.desc.sampleCount)
	}

	m := NewMatrix(len(channels), int(r.desc.sampleCount))

	// Each distinct channel is read once; repeats are copied afterwards.
	first := make(map[uint32]int, len(channels))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, ch := range channels {
		if _, ok := first[ch]; ok {
			continue
		}
		first[ch] = i

		row := m.Row(i)
		g.Go(func() error {
			return r.readRow(ctx, ch, row)
		})
	}
	if err := g.Wait(); err != nil {
		return Matrix{}, fmt.Errorf("error extracting channels: %w", err)
	}

	for i, ch := range channels {
		if j := first[ch]; j != i {
			copy(m.Row(i), m.Row(j))
		}
	}

	return m, nil
}

func (r *Recording) readRow(ctx context.Context, channel uint32, row []float64) error {
	cr, err := r.Channel(channel)
	if err != nil {
		return err
	}

	for off := 0; off < len(row); off += readBlock {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(off+readBlock, len(row))
		if _, err := cr.Read(row[off:end]); err != nil && err != io.EOF {
			return err
		}
	}

	return nil
}

// guardFault turns a fault on the mapping (the file was truncated
// underneath us, or the disk failed) into an ErrIO instead of a crash.
// It must be deferred directly by the reading function, with the previous
// SetPanicOnFault setting as old.
func guardFault(errp *error, old bool, channel uint32, sample uint64) {
	debug.SetPanicOnFault(old)
	if rv := recover(); rv != nil {
		// Memory faults carry the faulting address; anything else is a bug.
		if _, ok := rv.(interface{ Addr() uintptr }); !ok {
			panic(rv)
		}
		*errp = fmt.Errorf("%w: fault reading channel %d near sample %d: %v", ErrIO, channel, sample, rv)
	}
}
