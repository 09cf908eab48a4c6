// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"os"
	"path/filepath"
)

// EnsureAbsolute - prefix a relative path with directory
func EnsureAbsolute(directory string, filePath string) string {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(directory, filePath)
	}
	return filepath.Clean(filePath)
}

// EnsureAbsoluteAll - apply EnsureAbsolute to each non-blank path
func EnsureAbsoluteAll(directory string, paths ...*string) {
	for _, p := range paths {
		if "" != *p {
			*p = EnsureAbsolute(directory, *p)
		}
	}
}

// IsPlainName - true for a file name without any directory part
func IsPlainName(name string) bool {
	switch filepath.Dir(name) {
	case "", ".":
		return "" != name
	default:
		return false
	}
}

// FileExists - check if a file (or directory) exists
func FileExists(name string) bool {
	_, err := os.Stat(name)
	return nil == err
}
