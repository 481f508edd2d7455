// Package config resolves homedash settings.
//
// Values come from, highest priority first: command-line flags,
// HOMEDASH_* environment variables, the YAML config file and built-in
// defaults. Nested keys map to environment variables with dots replaced by
// underscores, so grafana.base_url becomes HOMEDASH_GRAFANA_BASE_URL.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/homedash/config.yaml or $HOME/.config/homedash/config.yaml
//   - macOS: $HOME/.config/homedash/config.yaml
//   - Windows: %LOCALAPPDATA%\homedash\config.yaml
//
// # Usage Example
//
//	loader := config.NewLoader()
//	if err := loader.BindFlags(cmd.Flags()); err != nil {
//	    return err
//	}
//	cfg, err := loader.Load(configPath)
//	if err != nil {
//	    return err
//	}
//
// `homedash config init` writes Default() with Write. The file is written
// to a temporary name and renamed into place, so a crash never leaves a
// truncated config behind.
package config
