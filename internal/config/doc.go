// SPDX-License-Identifier: MPL-2.0

// Package config loads unzipper settings using Viper with CUE as the file format.
//
// Settings come from, in increasing precedence: built-in defaults, the config
// file (--config, else <config dir>/unzipper/config.cue, else ./unzipper.cue),
// and UNZIPPER_* environment variables (UNZIPPER_ZIP_NAME_PREFIX, ...). The
// file is validated against the embedded config_schema.cue.
package config
