package models

import (
	"encoding/json"
	"strconv"
)

/*
ImageEntry is one element of an album's manifest. Older manifests used
the field names "imageFull-link", "thumbnail-link" and "aspect-ratio";
those are accepted when reading but never written back.
*/
type ImageEntry struct {
	URL         string  `json:"url"`
	Thumb       string  `json:"thumb"`
	AspectRatio float64 `json:"aspectRatio"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
}

func (e *ImageEntry) UnmarshalJSON(data []byte) error {
	var (
		err error
		raw struct {
			URL          string          `json:"url"`
			LegacyURL    string          `json:"imageFull-link"`
			Thumb        string          `json:"thumb"`
			LegacyThumb  string          `json:"thumbnail-link"`
			Aspect       json.RawMessage `json:"aspectRatio"`
			LegacyAspect json.RawMessage `json:"aspect-ratio"`
			Width        int             `json:"width"`
			Height       int             `json:"height"`
		}
	)

	if err = json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.URL = raw.URL
	if e.URL == "" {
		e.URL = raw.LegacyURL
	}

	e.Thumb = raw.Thumb
	if e.Thumb == "" {
		e.Thumb = raw.LegacyThumb
	}

	e.AspectRatio = parseAspect(raw.Aspect)
	if e.AspectRatio == 0 {
		e.AspectRatio = parseAspect(raw.LegacyAspect)
	}
	if e.AspectRatio == 0 {
		e.AspectRatio = 1.5
	}

	e.Width = raw.Width
	e.Height = raw.Height
	return nil
}

/*
Legacy manifests stored the aspect ratio as either a number or a
string, so both forms are tolerated.
*/
func parseAspect(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}

	var asNumber float64

	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber
	}

	var asString string

	if err := json.Unmarshal(raw, &asString); err == nil {
		if parsed, err := strconv.ParseFloat(asString, 64); err == nil {
			return parsed
		}
	}

	return 0
}
