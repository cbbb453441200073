// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is merged from ~/.config/blastradius/config.cue (or the platform
// equivalent: ~/Library/Application Support/blastradius/config.cue on macOS,
// %APPDATA%\blastradius\config.cue on Windows) and then blastradius.config.cue in
// the working directory. BLASTRADIUS_ prefixed environment variables override both,
// and command-line flags override everything.
//
// Config files are validated against an embedded CUE schema (config_schema.cue);
// constraints CUE cannot express, such as strategy aliases and regular expression
// syntax, are checked by Config.IsValid.
package config
