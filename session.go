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
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// Chunk is one window of loaded channel data, ready for display.
type Chunk struct {
	Window   Window
	Channels []uint32
	// Times[i] is the time in seconds of sample Window.Start+i.
	Times []float64
	// Values has one row per loaded channel, in load order. Rows share
	// storage with the session cache and must not be modified.
	Values [][]float64
}

type Option func(*Session)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		s.sugar = logger.Sugar()
	}
}

// Session owns the open recording and the channel cache built from it.
//
// Session is safe for concurrent use. Loads are serialized, and Window
// waits for any load in progress so it never sees a partially built cache.
// A load that fails or is cancelled leaves the previous cache in place.
type Session struct {
	mu    sync.RWMutex
	rec   *Recording
	rate  float64
	cache *ChannelCache

	sugar *zap.SugaredLogger
}

func NewSession(opts ...Option) *Session {
	s := &Session{sugar: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open maps the recording described by cfg, replacing and releasing any
// recording already open. The channel cache is discarded.
func (s *Session) Open(cfg Config) error {
	desc, err := cfg.Descriptor()
	if err != nil {
		return err
	}

	s.sugar.Infow("opening recording",
		"path", desc.Path(),
		"channels", desc.ChannelCount(),
		"samples", desc.SampleCount(),
		"sample_type", desc.SampleType())

	rec, err := Open(desc)
	if err != nil {
		s.sugar.Errorw("open recording", "path", desc.Path(), "error", err)
		return err
	}

	if trailing := rec.TrailingBytes(); trailing > 0 {
		s.sugar.Warnw("ignoring trailing bytes after sample data", "path", desc.Path(), "bytes", trailing)
	}

	s.mu.Lock()
	old := s.rec
	s.rec = rec
	s.rate = cfg.SamplingRate
	s.cache = nil
	s.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			s.sugar.Warnw("release previous recording", "path", old.Descriptor().Path(), "error", err)
		}
	}

	return nil
}

// Load replaces the cache with the given channels.
func (s *Session) Load(ctx context.Context, channels []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rec == nil {
		return fmt.Errorf("%w: open a recording before loading channels", ErrState)
	}

	sel, err := ValidateChannels(channels, s.rec.Descriptor().ChannelCount())
	if err != nil {
		return err
	}

	return s.load(ctx, sel)
}

// LoadText is Load for a comma separated channel list such as
// DefaultChannels.
func (s *Session) LoadText(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rec == nil {
		return fmt.Errorf("%w: open a recording before loading channels", ErrState)
	}

	sel, err := ParseChannels(text, s.rec.Descriptor().ChannelCount())
	if err != nil {
		return err
	}

	return s.load(ctx, sel)
}

// load must be called with s.mu held for writing.
func (s *Session) load(ctx context.Context, channels []uint32) error {
	start := time.Now()
	s.sugar.Infow("loading channels", "channels", channels)

	values, err := s.rec.Extract(ctx, channels)
	if err != nil {
		s.sugar.Errorw("load channels", "channels", channels, "error", err)
		return err
	}

	s.cache = newChannelCache(channels, values)

	s.sugar.Infow("channels loaded",
		"load_id", s.cache.LoadID(),
		"channels", channels,
		"size", humanize.IBytes(uint64(len(values.Data))*8),
		"elapsed", time.Since(start))

	return nil
}

// Window returns duration samples of every loaded channel around
// centerSeconds. See Resolve for how the window is placed near the ends of
// the recording.
func (s *Session) Window(centerSeconds float64, duration uint64) (*Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cache == nil {
		return nil, errNoCache
	}

	w, err := Resolve(centerSeconds, duration, s.rate, s.cache.Samples())
	if err != nil {
		return nil, err
	}

	values, err := s.cache.Slice(w)
	if err != nil {
		return nil, err
	}

	times := make([]float64, w.Len())
	for i := range times {
		times[i] = float64(w.Start+uint64(i)) / s.rate
	}

	s.sugar.Debugw("window", "center", centerSeconds, "start", w.Start, "end", w.End)

	return &Chunk{
		Window:   w,
		Channels: s.cache.Channels(),
		Times:    times,
		Values:   values,
	}, nil
}

// Bounds returns the input limits for the open recording.
func (s *Session) Bounds() (Bounds, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.rec == nil {
		return Bounds{}, fmt.Errorf("%w: no recording open", ErrState)
	}
	return NewBounds(s.rec.Descriptor().SampleCount(), s.rate), nil
}

// Descriptor returns the descriptor of the open recording.
func (s *Session) Descriptor() (Descriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.rec == nil {
		return Descriptor{}, fmt.Errorf("%w: no recording open", ErrState)
	}
	return s.rec.Descriptor(), nil
}

// Cache returns the current channel cache, or nil if nothing is loaded.
func (s *Session) Cache() *ChannelCache {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache
}

// Close releases the recording and the cache.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache = nil
	if s.rec == nil {
		return nil
	}
	err := s.rec.Close()
	s.rec = nil
	return err
}
