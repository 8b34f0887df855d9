package config

const (
	defaultStateDir          = "~/.local/share/speteval"
	defaultLogDir            = "~/.local/share/speteval/logs"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogRetentionDays  = 30
	defaultPathColumn        = "path"
	defaultTextColumn        = "text"
	defaultDelimiter         = ","
	defaultOnError           = OnErrorAbort
	defaultStorageBackend    = StorageLocal
	defaultS3Region          = "us-east-1"
	defaultS3MaxRetries      = 3
	defaultExpectedChannels  = 1
	defaultChannelsMinLength = 100
	defaultTargetSampleRate  = 16000
	defaultLengthSource      = LengthSourceAudio
	defaultHopLength         = 160
	defaultFrameThreshold    = 1.0
)

// Error policies for dataset.on_error.
const (
	OnErrorAbort = "abort"
	OnErrorSkip  = "skip"
)

// Storage backends for storage.backend.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Length sources for validators.length.source.
const (
	LengthSourceAudio = "audio"
	LengthSourceText  = "text"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Dataset: Dataset{
			PathColumn: defaultPathColumn,
			TextColumn: defaultTextColumn,
			Delimiter:  defaultDelimiter,
			OnError:    defaultOnError,
		},
		Storage: Storage{
			Backend: defaultStorageBackend,
			S3: S3{
				Region:     defaultS3Region,
				MaxRetries: defaultS3MaxRetries,
			},
		},
		Validators: Validators{
			FileExistence: FileExistence{Enabled: true},
			Loadability:   Loadability{Enabled: true},
			Extension: Extension{
				Enabled: true,
				Allowed: []string{"wav"},
			},
			Channels: Channels{
				Enabled:   true,
				Expected:  defaultExpectedChannels,
				MinLength: defaultChannelsMinLength,
			},
			SampleRate: SampleRate{
				Enabled: true,
				Target:  defaultTargetSampleRate,
			},
			Length: Length{
				Source: defaultLengthSource,
			},
			TextToSpeech: TextToSpeech{
				MinRatio: 0,
				MaxRatio: 1,
			},
			TextToFrame: TextToFrame{
				HopLength: defaultHopLength,
				Threshold: defaultFrameThreshold,
			},
		},
	}
}
