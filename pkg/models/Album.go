package models

import (
	"fmt"
)

var (
	ErrAlbumNotFound     = fmt.Errorf("album not found")
	ErrAlbumExists       = fmt.Errorf("album with this name already exists")
	ErrInvalidImageIndex = fmt.Errorf("invalid image index")
	ErrInvalidOrder      = fmt.Errorf("invalid order array")
)

/*
Album is the read model joined from a post file and its image manifest.
An album only exists when both files are present under the same slug.
*/
type Album struct {
	Slug          string       `json:"slug"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Developer     string       `json:"developer"`
	Date          string       `json:"date"`
	Tags          []string     `json:"tags"`
	CardImage     int          `json:"cardImage"`
	CardOffset    int          `json:"cardOffset"`
	CardOffsetX   int          `json:"cardOffsetX"`
	CardZoom      int          `json:"cardZoom"`
	BannerImage   int          `json:"bannerImage"`
	BannerOffset  int          `json:"bannerOffset"`
	BannerOffsetX int          `json:"bannerOffsetX"`
	BannerZoom    int          `json:"bannerZoom"`
	Images        []ImageEntry `json:"images"`
	ImageCount    int          `json:"imageCount"`
	PostFile      string       `json:"postFile"`
	ManifestFile  string       `json:"jsonFile"`
}
