package validation

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Name identifies a validator. At most one validator per name is registered.
type Name string

const (
	NameFileExistence Name = "file_existence"
	NameLoadability   Name = "loadability"
	NameExtension     Name = "extension"
	NameChannels      Name = "channels"
	NameSampleRate    Name = "sample_rate"
	NameLength        Name = "length"
	NameTextToSpeech  Name = "text_to_speech"
	NameTextToFrame   Name = "text_to_frame"
)

// Names lists every validator in the order FromConfig registers them.
func Names() []Name {
	return []Name{
		NameFileExistence,
		NameLoadability,
		NameExtension,
		NameChannels,
		NameSampleRate,
		NameLength,
		NameTextToSpeech,
		NameTextToFrame,
	}
}

// Known reports whether n is one of the built-in names.
func (n Name) Known() bool {
	for _, name := range Names() {
		if name == n {
			return true
		}
	}
	return false
}

// Label renders the name for humans, e.g. "Text To Speech".
func (n Name) Label() string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(n), "_", " "))
}

// Field is a bitmask over the Input fields a validator reads.
type Field uint8

const (
	FieldPath Field = 1 << iota
	FieldText
	FieldContent
	FieldSampleRate
)

// Has reports whether every bit of other is set in f.
func (f Field) Has(other Field) bool {
	return f&other == other
}

// NeedsAudio reports whether f includes decoded content or its sample rate.
func (f Field) NeedsAudio() bool {
	return f&(FieldContent|FieldSampleRate) != 0
}

func (f Field) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for _, item := range []struct {
		bit   Field
		label string
	}{
		{FieldPath, "path"},
		{FieldText, "text"},
		{FieldContent, "content"},
		{FieldSampleRate, "sample_rate"},
	} {
		if f&item.bit != 0 {
			parts = append(parts, item.label)
		}
	}
	return strings.Join(parts, "|")
}
