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
	"strconv"
	"strings"
	"unicode"
)

// DefaultChannels is the selection offered before the user picks one.
const DefaultChannels = "0,50,100,150"

// ParseChannels parses a comma or whitespace separated list of channel
// indices and validates it against channelCount.
func ParseChannels(text string, channelCount uint32) ([]uint32, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	list := make([]int, 0, len(fields))
	for _, field := range fields {
		i, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a channel index", ErrValidation, field)
		}
		list = append(list, i)
	}

	return ValidateChannels(list, channelCount)
}

// ValidateChannels checks every index against channelCount. The returned
// selection keeps the input order and any duplicates.
func ValidateChannels(list []int, channelCount uint32) ([]uint32, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: empty channel list", ErrValidation)
	}

	channels := make([]uint32, len(list))
	for i, ch := range list {
		if ch < 0 {
			return nil, fmt.Errorf("%w: negative channel index %d", ErrValidation, ch)
		}
		if int64(ch) >= int64(channelCount) {
			return nil, fmt.Errorf("%w: %w", ErrValidation, &IndexError{Index: int64(ch), Count: channelCount})
		}
		channels[i] = uint32(ch)
	}

	return channels, nil
}
