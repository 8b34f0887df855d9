package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeDataset()
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.normalizeValidators()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeDataset() {
	c.Dataset.PathColumn = strings.TrimSpace(c.Dataset.PathColumn)
	if c.Dataset.PathColumn == "" {
		c.Dataset.PathColumn = defaultPathColumn
	}
	c.Dataset.TextColumn = strings.TrimSpace(c.Dataset.TextColumn)
	if c.Dataset.TextColumn == "" {
		c.Dataset.TextColumn = defaultTextColumn
	}
	if c.Dataset.Delimiter == "" {
		c.Dataset.Delimiter = defaultDelimiter
	}
	c.Dataset.OnError = strings.ToLower(strings.TrimSpace(c.Dataset.OnError))
	if c.Dataset.OnError == "" {
		c.Dataset.OnError = defaultOnError
	}
}

func (c *Config) normalizeStorage() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaultStorageBackend
	}
	if root := strings.TrimSpace(c.Storage.Root); root != "" {
		expanded, err := expandPath(root)
		if err != nil {
			return fmt.Errorf("storage.root: %w", err)
		}
		c.Storage.Root = expanded
	}

	s3 := &c.Storage.S3
	s3.Bucket = strings.TrimSpace(s3.Bucket)
	s3.Prefix = strings.Trim(strings.TrimSpace(s3.Prefix), "/")
	s3.Endpoint = strings.TrimSpace(s3.Endpoint)
	s3.Region = strings.TrimSpace(s3.Region)
	if s3.Region == "" {
		if value, ok := os.LookupEnv("AWS_REGION"); ok && strings.TrimSpace(value) != "" {
			s3.Region = strings.TrimSpace(value)
		} else {
			s3.Region = defaultS3Region
		}
	}
	s3.AccessKeyID = strings.TrimSpace(s3.AccessKeyID)
	if s3.AccessKeyID == "" {
		if value, ok := os.LookupEnv("AWS_ACCESS_KEY_ID"); ok {
			s3.AccessKeyID = strings.TrimSpace(value)
		}
	}
	s3.SecretAccessKey = strings.TrimSpace(s3.SecretAccessKey)
	if s3.SecretAccessKey == "" {
		if value, ok := os.LookupEnv("AWS_SECRET_ACCESS_KEY"); ok {
			s3.SecretAccessKey = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeValidators() {
	v := &c.Validators
	allowed := make([]string, 0, len(v.Extension.Allowed))
	for _, ext := range v.Extension.Allowed {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext != "" {
			allowed = append(allowed, ext)
		}
	}
	v.Extension.Allowed = allowed

	v.Length.Source = strings.ToLower(strings.TrimSpace(v.Length.Source))
	if v.Length.Source == "" {
		v.Length.Source = defaultLengthSource
	}
}
