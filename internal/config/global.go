// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride pins ConfigDir for tests. HOME is not honoured by
// os.UserConfigDir on every platform, so tests set the directory directly.
var configDirOverride string

// SetConfigDirOverride makes ConfigDir return dir until Reset is called.
func SetConfigDirOverride(dir string) { configDirOverride = dir }

// Reset restores the platform config directory lookup.
func Reset() { configDirOverride = "" }
