package validation

import (
	"fmt"

	"speteval/internal/config"
	"speteval/internal/media/audio"
	"speteval/internal/services"
	"speteval/internal/storage"
)

// FromConfig builds the enabled validators in Names order. References are
// resolved through source.
func FromConfig(cfg config.Validators, source storage.Source) ([]Validator, error) {
	var out []Validator
	add := func(v Validator, err error) error {
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "validation", "build validators", "", err)
		}
		out = append(out, v)
		return nil
	}

	if cfg.FileExistence.Enabled {
		out = append(out, NewFileExistence(source))
	}
	if cfg.Loadability.Enabled {
		out = append(out, NewLoadability(audio.NewLoader(source)))
	}
	if cfg.Extension.Enabled {
		if len(cfg.Extension.Allowed) == 0 {
			return nil, services.Wrap(services.ErrConfiguration, "validation", "build validators", "extension.allowed is empty", nil)
		}
		out = append(out, NewExtension(cfg.Extension.Allowed...))
	}
	if cfg.Channels.Enabled {
		if err := add(NewChannels(cfg.Channels.Expected, cfg.Channels.MinLength)); err != nil {
			return nil, err
		}
	}
	if cfg.SampleRate.Enabled {
		if err := add(NewSampleRate(cfg.SampleRate.Target)); err != nil {
			return nil, err
		}
	}
	if cfg.Length.Enabled {
		if err := add(NewLength(LengthSource(cfg.Length.Source), cfg.Length.Min, cfg.Length.Max)); err != nil {
			return nil, err
		}
	}
	if cfg.TextToSpeech.Enabled {
		if err := add(NewTextToSpeech(cfg.TextToSpeech.MinRatio, cfg.TextToSpeech.MaxRatio)); err != nil {
			return nil, err
		}
	}
	if cfg.TextToFrame.Enabled {
		out = append(out, NewTextToFrame(cfg.TextToFrame.HopLength, cfg.TextToFrame.Threshold))
	}
	return out, nil
}

// Describe returns a one-line parameter summary for v.
func Describe(v Validator) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return string(v.Name())
}
