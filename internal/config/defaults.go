package config

const (
	defaultDataDir              = "~/.local/share/clipline"
	defaultLogDir               = "~/.local/share/clipline/logs"
	defaultAPIBind              = "127.0.0.1:7519"
	defaultLogLevel             = "info"
	defaultLogFormat            = "text"
	defaultSpeechTimeoutSeconds = 300
	defaultVisionTimeoutSeconds = 180
	defaultNtfyRequestTimeout   = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Speech: Speech{
			TimeoutSeconds: defaultSpeechTimeoutSeconds,
		},
		Vision: Vision{
			TimeoutSeconds: defaultVisionTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
			Transcription:  true,
			Vision:         true,
			Errors:         true,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
