package config

const (
	defaultConfigPath         = "~/.config/podknight/config.toml"
	defaultWorkDir            = "~/.local/share/podknight/work"
	defaultLogDir             = "~/.local/share/podknight/logs"
	defaultFFmpegBinary       = "ffmpeg"
	defaultFFprobeBinary      = "ffprobe"
	defaultVideoConcurrency   = 2
	defaultMinFreeGiB         = 5
	defaultStorageRegion      = "us-east-1"
	defaultRequestTimeout     = 10
	defaultStatusInterval     = 15
	defaultStatusInitialDelay = 2
	defaultStatusMaxChars     = 1900
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogRetentionDays   = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
		},
		Encoder: Encoder{
			FFmpegBinary:     defaultFFmpegBinary,
			FFprobeBinary:    defaultFFprobeBinary,
			VideoConcurrency: defaultVideoConcurrency,
			MinFreeGiB:       defaultMinFreeGiB,
		},
		Storage: Storage{
			Region: defaultStorageRegion,
			UseSSL: true,
		},
		Notifications: Notifications{
			RequestTimeout:     defaultRequestTimeout,
			StatusInterval:     defaultStatusInterval,
			StatusInitialDelay: defaultStatusInitialDelay,
			StatusMaxChars:     defaultStatusMaxChars,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Formats: []Format{
			{Type: "video"},
			{Type: "audio"},
		},
	}
}
