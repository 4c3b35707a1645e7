// Package config holds the read-only settings threaded into the decoders and the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"

	"github.com/hekmon/go-subpic/canvas"
	"github.com/hekmon/go-subpic/colormodel"
	"github.com/hekmon/go-subpic/imgenc"
	"github.com/hekmon/go-subpic/timeline"
)

// Config is the complete, immutable set of options. Obtain one with Default and Merge.
type Config struct {
	// PAL selects the 90 kHz tick rate, NTSC the 23.976 fps corrected one.
	PAL bool
	// UseCustomColors replaces every VobSub palette lookup by CustomColors.
	UseCustomColors bool
	CustomColors    colormodel.FourColors
	// FullFrame renders VobSub images at the .idx frame size, display areas at their
	// on-screen position, instead of trimming them.
	FullFrame bool
	// SupBackground is used for PGS transparent pixels and padding.
	SupBackground color.NRGBA
	Border        canvas.Border
	ImageFormat   imgenc.Format
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		PAL:             true,
		UseCustomColors: true,
		CustomColors: colormodel.FourColors{
			colormodel.Background: {},
			colormodel.Pattern:    {R: 255, G: 255, B: 255, A: 255},
			colormodel.Emphasis1:  {A: 255},
			colormodel.Emphasis2:  {R: 128, G: 128, B: 128, A: 255},
		},
		ImageFormat: imgenc.JPEG,
	}
}

// Clock returns the tick converter matching the PAL setting.
func (c Config) Clock() timeline.Clock {
	return timeline.Clock{PAL: c.PAL}
}

// Override carries optional values. Nil fields leave the base value untouched.
type Override struct {
	PAL             *bool
	UseCustomColors *bool
	CustomColors    [4]*color.NRGBA
	FullFrame       *bool
	SupBackground   *color.NRGBA
	BorderWidth     *int
	BorderPadding   *int
	BorderColor     *color.NRGBA
	ImageFormat     *imgenc.Format
}

// Merge returns a copy of c with every set field of o applied.
func (c Config) Merge(o Override) Config {
	if o.PAL != nil {
		c.PAL = *o.PAL
	}
	if o.UseCustomColors != nil {
		c.UseCustomColors = *o.UseCustomColors
	}
	for slot, col := range o.CustomColors {
		if col != nil {
			c.CustomColors[slot] = *col
		}
	}
	if o.FullFrame != nil {
		c.FullFrame = *o.FullFrame
	}
	if o.SupBackground != nil {
		c.SupBackground = *o.SupBackground
	}
	if o.BorderWidth != nil {
		c.Border.Width = max(*o.BorderWidth, 0)
	}
	if o.BorderPadding != nil {
		c.Border.Padding = max(*o.BorderPadding, 0)
	}
	if o.BorderColor != nil {
		c.Border.Color = *o.BorderColor
	}
	if o.ImageFormat != nil {
		c.ImageFormat = *o.ImageFormat
	}
	return c
}

/*
	Settings file
*/

type fileSettings struct {
	FPS   string `json:"fps"`
	Image struct {
		Format string `json:"format"`
		Border struct {
			Width   *int   `json:"width"`
			Padding *int   `json:"padding"`
			Color   string `json:"color"`
		} `json:"border"`
	} `json:"image"`
	VobSub struct {
		UseCustomColor *bool `json:"use_custom_color"`
		CustomColor    struct {
			Background string `json:"background"`
			Pattern    string `json:"pattern"`
			Emphasis1  string `json:"emphasis1"`
			Emphasis2  string `json:"emphasis2"`
		} `json:"custom_color"`
		FullFrame *bool `json:"full_frame"`
	} `json:"vobsub"`
	Sup struct {
		Background string `json:"background"`
	} `json:"sup"`
}

// LoadFile reads a JSON settings document into an Override.
func LoadFile(path string) (o Override, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("failed to read settings file: %w", err)
		return
	}
	return Parse(data)
}

// Parse decodes a JSON settings document into an Override.
func Parse(data []byte) (o Override, err error) {
	var fs fileSettings
	if err = json.Unmarshal(data, &fs); err != nil {
		err = fmt.Errorf("failed to parse settings: %w", err)
		return
	}
	if fs.FPS != "" {
		if o.PAL, err = ParseFPS(fs.FPS); err != nil {
			return
		}
	}
	if fs.Image.Format != "" {
		format, ok := imgenc.ParseFormat(fs.Image.Format)
		if !ok {
			err = fmt.Errorf("unknown image format %q", fs.Image.Format)
			return
		}
		o.ImageFormat = &format
	}
	o.BorderWidth = fs.Image.Border.Width
	o.BorderPadding = fs.Image.Border.Padding
	o.BorderColor = optionalColor(fs.Image.Border.Color)
	o.UseCustomColors = fs.VobSub.UseCustomColor
	o.CustomColors[colormodel.Background] = optionalColor(fs.VobSub.CustomColor.Background)
	o.CustomColors[colormodel.Pattern] = optionalColor(fs.VobSub.CustomColor.Pattern)
	o.CustomColors[colormodel.Emphasis1] = optionalColor(fs.VobSub.CustomColor.Emphasis1)
	o.CustomColors[colormodel.Emphasis2] = optionalColor(fs.VobSub.CustomColor.Emphasis2)
	o.FullFrame = fs.VobSub.FullFrame
	o.SupBackground = optionalColor(fs.Sup.Background)
	return
}

// ParseFPS maps "pal" and "ntsc" to the PAL flag.
func ParseFPS(value string) (pal *bool, err error) {
	var v bool
	switch value {
	case "pal", "PAL":
		v = true
	case "ntsc", "NTSC":
		v = false
	default:
		err = fmt.Errorf("unknown fps mode %q (expected pal or ntsc)", value)
		return
	}
	pal = &v
	return
}

func optionalColor(value string) *color.NRGBA {
	if value == "" {
		return nil
	}
	c := ParseColor(value, color.NRGBA{})
	return &c
}
