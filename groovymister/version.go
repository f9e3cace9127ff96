/*
NAME
  version.go

LICENSE
  Copyright (C) 2026 the groovymister authors.

  This source code is licensed under the MIT license found in the
  LICENSE file in the root directory of this source tree.
*/

package groovymister

import "fmt"

// Version components of this module.
const (
	VersionMajor = 1
	VersionMinor = 0
	VersionPatch = 0
)

// Version returns the "major.minor.patch" version string.
func Version() string {
	return fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
}
