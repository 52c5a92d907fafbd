package models

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

/*
StringList accepts either a YAML sequence or a comma separated scalar.
Hand written front matter uses both forms.
*/
type StringList []string

func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var items []string

		if err := value.Decode(&items); err != nil {
			return err
		}

		*l = items
		return nil

	case yaml.ScalarNode:
		*l = StringList{}

		for _, item := range strings.Split(value.Value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				*l = append(*l, item)
			}
		}

		return nil
	}

	return fmt.Errorf("cannot decode %v into a string list", value.Kind)
}

type AlbumFrontMatter struct {
	Layout        string     `yaml:"layout"`
	Date          string     `yaml:"date"`
	Title         string     `yaml:"title"`
	Description   string     `yaml:"description"`
	Developer     string     `yaml:"developer"`
	Categories    StringList `yaml:"categories"`
	Tags          StringList `yaml:"tags"`
	Slug          string     `yaml:"slug"`
	CardImage     int        `yaml:"card-image"`
	CardOffset    int        `yaml:"card-offset"`
	CardOffsetX   int        `yaml:"card-offset-x"`
	CardZoom      int        `yaml:"card-zoom"`
	BannerImage   int        `yaml:"banner-image"`
	BannerOffset  int        `yaml:"banner-offset"`
	BannerOffsetX int        `yaml:"banner-offset-x"`
	BannerZoom    int        `yaml:"banner-zoom"`
}

/*
ApplyDefaults fills the display fields hand edited files leave out.
Offsets default to 50, zoom to 100; image indices stay at 0.
*/
func (fm *AlbumFrontMatter) ApplyDefaults() {
	if fm.Layout == "" {
		fm.Layout = "post"
	}

	if len(fm.Categories) == 0 {
		fm.Categories = StringList{"virtual-photography"}
	}

	if fm.CardOffset == 0 {
		fm.CardOffset = 50
	}

	if fm.CardOffsetX == 0 {
		fm.CardOffsetX = 50
	}

	if fm.CardZoom == 0 {
		fm.CardZoom = 100
	}

	if fm.BannerOffset == 0 {
		fm.BannerOffset = 50
	}

	if fm.BannerOffsetX == 0 {
		fm.BannerOffsetX = 50
	}

	if fm.BannerZoom == 0 {
		fm.BannerZoom = 100
	}
}

type PostFrontMatter struct {
	Layout     string     `yaml:"layout"`
	Title      string     `yaml:"title"`
	Date       string     `yaml:"date"`
	Author     string     `yaml:"author,omitempty"`
	Categories StringList `yaml:"categories"`
	Tags       StringList `yaml:"tags"`
	Image      string     `yaml:"image,omitempty"`
	Excerpt    string     `yaml:"excerpt,omitempty"`
}

type ProjectFrontMatter struct {
	Name        string     `yaml:"name"`
	Tools       StringList `yaml:"tools"`
	Image       string     `yaml:"image,omitempty"`
	Description string     `yaml:"description"`
	ExternalURL string     `yaml:"external_url,omitempty"`
}

type AboutFrontMatter struct {
	Layout    string `yaml:"layout"`
	Title     string `yaml:"title"`
	Permalink string `yaml:"permalink"`
	Weight    int    `yaml:"weight"`
}
