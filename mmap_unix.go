//go:build darwin || linux

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
	"math"

	"golang.org/x/sys/unix"
)

// mapFile maps the first length bytes of path read-only. The file must be
// at least length bytes long; its actual size is returned so the caller can
// report trailing bytes.
func mapFile(path string, length uint64) ([]byte, int64, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: error opening %s: %w", ErrIO, path, err)
	}
	// The mapping outlives the descriptor.
	defer unix.Close(fd)

	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		return nil, 0, fmt.Errorf("%w: error stating %s: %w", ErrIO, path, err)
	}

	if stat.Size < 0 || uint64(stat.Size) < length {
		return nil, stat.Size, fmt.Errorf("%w: %s is %d bytes but the descriptor requires %d",
			ErrLayout, path, stat.Size, length)
	}
	if length > math.MaxInt {
		return nil, stat.Size, fmt.Errorf("%w: %d bytes cannot be mapped on this platform", ErrIO, length)
	}

	data, err := unix.Mmap(fd, 0, int(length), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, stat.Size, fmt.Errorf("%w: error memory-mapping %s: %w", ErrIO, path, err)
	}

	// Extraction walks the whole mapping front to back.
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)

	return data, stat.Size, nil
}

func unmapFile(data []byte) error {
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("%w: error unmapping recording: %w", ErrIO, err)
	}
	return nil
}
