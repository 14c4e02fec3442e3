package docuforge

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings is the file-backed configuration surface. It covers the knobs
// an operator tunes per corpus; the finer per-stage tunables stay in the
// stage configs and are reached through the Converter.
type Settings struct {
	// Workers is the conversion worker pool size.
	Workers int `yaml:"workers"`

	// ChunkSize is the number of contiguous pages per work unit.
	ChunkSize int `yaml:"chunk_size"`

	// OCRMode selects OCR routing: "auto", "on", or "off".
	OCRMode string `yaml:"ocr_mode"`

	// OCRLanguages is the tesseract language string, e.g. "tur+eng".
	OCRLanguages string `yaml:"ocr_languages"`

	// DictionaryPath points at a frequency word list ("word count" per
	// line) used for healing and corruption scoring. Empty disables
	// dictionary-backed correction.
	DictionaryPath string `yaml:"dictionary_path"`

	// Blacklist holds regular expressions; matching lines are dropped
	// from the output during document cleanup.
	Blacklist []string `yaml:"blacklist"`
}

// DefaultSettings returns the settings used when no file is given
func DefaultSettings() Settings {
	return Settings{
		Workers:      4,
		ChunkSize:    2,
		OCRMode:      "auto",
		OCRLanguages: "tur+eng",
	}
}

// LoadSettings reads a YAML settings file. Fields absent from the file
// keep their defaults.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("reading settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes the settings as YAML
func (s Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}
