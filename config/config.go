// Package config loads redaction profiles from YAML. A profile bundles the
// search criteria and processing switches for a recurring job, so operators
// version one file instead of repeating long command lines.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wudi/pdfredact/detect"
)

// Profile is a named, reusable redaction configuration.
type Profile struct {
	Name string `yaml:"name"`

	// Search criteria.
	Terms          []string `yaml:"terms"`
	Patterns       []string `yaml:"patterns"`
	CommonPatterns []string `yaml:"common_patterns"`
	RectSpec       string   `yaml:"rect_spec"`

	// Application switches.
	Fill          string `yaml:"fill"`
	MergeOverlaps *bool  `yaml:"merge_overlaps"`
	RemoveImages  *bool  `yaml:"remove_images"`
	Raster        bool   `yaml:"raster"`
	RasterDPI     int    `yaml:"raster_dpi"`

	// Post-processing.
	Sanitize     *bool  `yaml:"sanitize"`
	MetadataOnly bool   `yaml:"metadata_only"`
	Verify       *bool  `yaml:"verify"`
	ReportPath   string `yaml:"report"`

	// Scanned document handling.
	OCR          bool     `yaml:"ocr"`
	OCRDPI       int      `yaml:"ocr_dpi"`
	OCRLanguages []string `yaml:"ocr_languages"`
}

// Load reads a profile from a YAML file and validates it.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return &p, nil
}

// Validate rejects profiles that could silently do nothing or reference
// unknown built-in patterns.
func (p *Profile) Validate() error {
	if len(p.Terms) == 0 && len(p.Patterns) == 0 && len(p.CommonPatterns) == 0 && p.RectSpec == "" {
		return fmt.Errorf("no terms, patterns, or rectangles configured")
	}
	for _, name := range p.CommonPatterns {
		if _, ok := detect.Pattern(name); !ok {
			return fmt.Errorf("unknown common pattern %q", name)
		}
	}
	if p.RasterDPI < 0 || p.OCRDPI < 0 {
		return fmt.Errorf("dpi must not be negative")
	}
	return nil
}

// MergeEnabled reports the merge switch with its default of true.
func (p *Profile) MergeEnabled() bool { return boolOr(p.MergeOverlaps, true) }

// RemoveImagesEnabled reports the image removal switch with its default of
// true.
func (p *Profile) RemoveImagesEnabled() bool { return boolOr(p.RemoveImages, true) }

// SanitizeEnabled reports the sanitize switch with its default of true.
func (p *Profile) SanitizeEnabled() bool { return boolOr(p.Sanitize, true) }

// VerifyEnabled reports the verify switch with its default of true.
func (p *Profile) VerifyEnabled() bool { return boolOr(p.Verify, true) }

// AllPatterns resolves the configured common pattern names and returns
// them together with the explicit patterns.
func (p *Profile) AllPatterns() []string {
	out := append([]string(nil), p.Patterns...)
	for _, name := range p.CommonPatterns {
		if pat, ok := detect.Pattern(name); ok {
			out = append(out, pat)
		}
	}
	return out
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
