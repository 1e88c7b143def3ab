// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package rawbin provides windowed, memory-mapped access to raw
// multi-channel electrophysiology recordings.
package rawbin

import (
	"errors"
	"fmt"
)

// Error kinds, matched with errors.Is. An out of range channel selection
// matches both ErrValidation and ErrIndex. Context errors from a cancelled
// load are returned wrapped but otherwise unchanged.
var (
	ErrConfig     = errors.New("invalid recording descriptor")
	ErrIO         = errors.New("recording i/o failure")
	ErrLayout     = errors.New("recording layout mismatch")
	ErrValidation = errors.New("invalid channel selection")
	ErrRange      = errors.New("sample range out of bounds")
	ErrIndex      = errors.New("channel index out of range")
	ErrState      = errors.New("data not loaded")
)

// IndexError reports a channel index outside [0, Count).
type IndexError struct {
	Index int64
	Count uint32
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("channel index %d out of range [0, %d)", e.Index, e.Count)
}

func (e *IndexError) Is(target error) bool {
	return target == ErrIndex
}
