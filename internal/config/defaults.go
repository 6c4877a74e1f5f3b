package config

const (
	defaultStagingDir         = "~/.local/share/lyrico/staging"
	defaultLogDir             = "~/.local/share/lyrico/logs"
	defaultAPIBind            = "127.0.0.1:7493"
	defaultStoragePrefix      = "renders"
	defaultStorageTimeout     = 60
	defaultFFmpegBinary       = "ffmpeg"
	defaultFFprobeBinary      = "ffprobe"
	defaultEncodeTimeout      = 600
	defaultProbeTimeout       = 30
	defaultVideoPreset        = "ultrafast"
	defaultAudioBitrate       = "192k"
	defaultFrameRate          = 30
	defaultOutputWidth        = 1080
	defaultOutputHeight       = 1920
	defaultFontSize           = 96
	defaultAlignment          = 2
	defaultVerticalMargin     = 320
	defaultNotifyTimeout      = 10
	defaultQueuePollInterval  = 2
	defaultErrorRetryInterval = 10
	defaultDownloadTimeout    = 120
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Storage: Storage{
			Prefix:         defaultStoragePrefix,
			RequestTimeout: defaultStorageTimeout,
		},
		Encoder: Encoder{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			EncodeTimeout: defaultEncodeTimeout,
			ProbeTimeout:  defaultProbeTimeout,
			VideoPreset:   defaultVideoPreset,
			AudioBitrate:  defaultAudioBitrate,
			FrameRate:     defaultFrameRate,
			OutputWidth:   defaultOutputWidth,
			OutputHeight:  defaultOutputHeight,
		},
		Render: Render{
			FontSize:       defaultFontSize,
			Alignment:      defaultAlignment,
			VerticalMargin: defaultVerticalMargin,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			JobReceived:    true,
			RenderComplete: true,
			Errors:         true,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			DownloadTimeout:    defaultDownloadTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
