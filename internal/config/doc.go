// Package config loads, normalizes, and validates podknight configuration.
//
// Configuration lives in TOML (default ~/.config/podknight/config.toml, then
// ./podknight.toml). Load applies repository defaults, expands ~ in paths,
// pulls secrets from the environment when the file leaves them empty, and
// validates the result so callers can use the values directly. CreateSample
// writes the embedded annotated sample used by `podknight config init`.
package config
