// Package config handles texconv configuration loading and management.
package config

import "fmt"

// Config holds all converter settings.
type Config struct {
	Codecs  CodecsConfig  `yaml:"codecs"`
	Preview PreviewConfig `yaml:"preview"`
	Logging LoggingConfig `yaml:"logging"`
}

// CodecsConfig holds per-format write settings.
type CodecsConfig struct {
	TGA TGAConfig `yaml:"tga"`
	BMP BMPConfig `yaml:"bmp"`
}

// TGAConfig holds TGA write settings.
type TGAConfig struct {
	RLE bool `yaml:"rle"` // Write image type 10 instead of 2
}

// BMPConfig holds BMP write settings.
type BMPConfig struct {
	PixelsPerMeter int32 `yaml:"pixels_per_meter"`
}

// PreviewConfig holds settings for PNG previews.
type PreviewConfig struct {
	Scale  float64 `yaml:"scale"`
	Filter string  `yaml:"filter"` // nearest, bilinear or catmullrom
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Preview filters.
const (
	FilterNearest    = "nearest"
	FilterBilinear   = "bilinear"
	FilterCatmullRom = "catmullrom"
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Codecs: CodecsConfig{
			TGA: TGAConfig{RLE: true},
			BMP: BMPConfig{PixelsPerMeter: 0},
		},
		Preview: PreviewConfig{
			Scale:  1,
			Filter: FilterNearest,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	if c.Preview.Scale <= 0 || c.Preview.Scale > 64 {
		return fmt.Errorf("preview.scale must be in (0, 64], got %g", c.Preview.Scale)
	}
	switch c.Preview.Filter {
	case FilterNearest, FilterBilinear, FilterCatmullRom:
	default:
		return fmt.Errorf("preview.filter %q is not one of %s, %s, %s",
			c.Preview.Filter, FilterNearest, FilterBilinear, FilterCatmullRom)
	}
	if c.Codecs.BMP.PixelsPerMeter < 0 {
		return fmt.Errorf("codecs.bmp.pixels_per_meter must not be negative, got %d", c.Codecs.BMP.PixelsPerMeter)
	}
	return nil
}
