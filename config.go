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
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config describes a recording as read from a YAML file:
//
//	file_path: c45_npx_raw-001.bin
//	channel_count: 384
//	sample_count: 24301033 # 0 or omitted: derive from the file size
//	sample_type: int16
//	sampling_rate_hz: 30000
//	unit_scale: 0.00234
type Config struct {
	FilePath     string     `yaml:"file_path"`
	ChannelCount uint32     `yaml:"channel_count"`
	SampleCount  uint64     `yaml:"sample_count"`
	SampleType   SampleType `yaml:"sample_type"`
	SamplingRate float64    `yaml:"sampling_rate_hz"`
	UnitScale    float64    `yaml:"unit_scale"`
}

// DefaultConfig returns a Config with every optional field set.
func DefaultConfig() Config {
	return Config{
		SampleType:   DefaultSampleType,
		SamplingRate: DefaultSamplingRate,
		UnitScale:    DefaultUnitScale,
	}
}

// LoadConfig reads a YAML config file. A relative file_path is resolved
// against the directory containing the config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: error reading config: %w", ErrConfig, err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	if cfg.FilePath != "" && !filepath.IsAbs(cfg.FilePath) {
		cfg.FilePath = filepath.Join(filepath.Dir(path), cfg.FilePath)
	}

	return cfg, nil
}

// ParseConfig decodes YAML on top of DefaultConfig. Unknown keys are
// rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: error parsing config: %w", ErrConfig, err)
	}

	return cfg, nil
}

// Validate checks the fields that do not belong to the Descriptor.
func (c Config) Validate() error {
	if !(c.SamplingRate > 0) || math.IsInf(c.SamplingRate, 0) {
		return fmt.Errorf("%w: invalid sampling rate %v", ErrConfig, c.SamplingRate)
	}
	return nil
}

// Descriptor builds the recording descriptor. When SampleCount is zero it
// is derived from the file size, ignoring any incomplete trailing frame.
func (c Config) Descriptor() (Descriptor, error) {
	if err := c.Validate(); err != nil {
		return Descriptor{}, err
	}

	sampleCount := c.SampleCount
	if sampleCount == 0 && c.FilePath != "" && c.ChannelCount > 0 && c.SampleType.Width() > 0 {
		fi, err := os.Stat(c.FilePath)
		if err != nil {
			return Descriptor{}, fmt.Errorf("%w: error sizing recording: %w", ErrIO, err)
		}
		sampleCount = uint64(fi.Size()) / uint64(c.ChannelCount) / uint64(c.SampleType.Width())
	}

	return NewDescriptor(c.FilePath, c.ChannelCount, sampleCount, c.SampleType, c.UnitScale)
}
