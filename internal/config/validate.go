package config

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateValidators(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	return nil
}

func (c *Config) validateDataset() error {
	if c.Dataset.PathColumn == c.Dataset.TextColumn {
		return fmt.Errorf("dataset.path_column and dataset.text_column must differ (both %q)", c.Dataset.PathColumn)
	}
	if utf8.RuneCountInString(c.Dataset.Delimiter) != 1 {
		return fmt.Errorf("dataset.delimiter must be a single character, got %q", c.Dataset.Delimiter)
	}
	switch c.DelimiterRune() {
	case '"', '\r', '\n', utf8.RuneError:
		return fmt.Errorf("dataset.delimiter %q is not a valid CSV separator", c.Dataset.Delimiter)
	}
	if c.Dataset.Workers < 0 {
		return errors.New("dataset.workers must be >= 0")
	}
	switch c.Dataset.OnError {
	case OnErrorAbort, OnErrorSkip:
	default:
		return fmt.Errorf("dataset.on_error must be %s or %s, got %q", OnErrorAbort, OnErrorSkip, c.Dataset.OnError)
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case StorageLocal:
		return nil
	case StorageS3:
	default:
		return fmt.Errorf("storage.backend must be %s or %s, got %q", StorageLocal, StorageS3, c.Storage.Backend)
	}
	if c.Storage.S3.Bucket == "" {
		return errors.New("storage.s3.bucket must be set when storage.backend is s3")
	}
	if c.Storage.S3.MaxRetries < 0 {
		return errors.New("storage.s3.max_retries must be >= 0")
	}
	if (c.Storage.S3.AccessKeyID == "") != (c.Storage.S3.SecretAccessKey == "") {
		return errors.New("storage.s3.access_key_id and storage.s3.secret_access_key must be set together (or export AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY)")
	}
	return nil
}

func (c *Config) validateValidators() error {
	v := c.Validators
	if v.Extension.Enabled && len(v.Extension.Allowed) == 0 {
		return errors.New("validators.extension.allowed must include at least one extension when enabled")
	}
	if v.Channels.Enabled {
		if v.Channels.Expected <= 0 {
			return errors.New("validators.channels.expected must be positive")
		}
		if v.Channels.MinLength < 0 {
			return errors.New("validators.channels.min_length must be >= 0")
		}
	}
	if v.SampleRate.Enabled && v.SampleRate.Target <= 0 {
		return errors.New("validators.sample_rate.target must be positive")
	}
	if v.Length.Enabled {
		switch v.Length.Source {
		case LengthSourceAudio, LengthSourceText:
		default:
			return fmt.Errorf("validators.length.source must be %s or %s, got %q", LengthSourceAudio, LengthSourceText, v.Length.Source)
		}
		if v.Length.Min < 0 {
			return errors.New("validators.length.min must be >= 0")
		}
		if v.Length.Max < v.Length.Min {
			return errors.New("validators.length.max must be >= validators.length.min")
		}
	}
	if v.TextToSpeech.Enabled {
		if v.TextToSpeech.MinRatio < 0 || v.TextToSpeech.MinRatio > 1 {
			return errors.New("validators.text_to_speech.min_ratio must be between 0 and 1")
		}
		if v.TextToSpeech.MaxRatio < 0 || v.TextToSpeech.MaxRatio > 1 {
			return errors.New("validators.text_to_speech.max_ratio must be between 0 and 1")
		}
		if v.TextToSpeech.MinRatio > v.TextToSpeech.MaxRatio {
			return errors.New("validators.text_to_speech.min_ratio must not exceed max_ratio")
		}
	}
	if v.TextToFrame.Enabled {
		if v.TextToFrame.HopLength <= 0 {
			return errors.New("validators.text_to_frame.hop_length must be positive")
		}
		if v.TextToFrame.Threshold <= 0 {
			return errors.New("validators.text_to_frame.threshold must be positive")
		}
	}
	return nil
}
