//go:build !(darwin || linux)

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
	"runtime"
)

func mapFile(path string, _ uint64) ([]byte, int64, error) {
	return nil, 0, fmt.Errorf("%w: memory mapping %s is not supported on %s", ErrIO, path, runtime.GOOS)
}

func unmapFile([]byte) error {
	return nil
}
