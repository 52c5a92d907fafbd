package models

import (
	"fmt"
)

var (
	ErrPostNotFound = fmt.Errorf("post not found")
)

type BlogPost struct {
	Filename   string   `json:"filename"`
	FileSlug   string   `json:"fileSlug"`
	Title      string   `json:"title"`
	Date       string   `json:"date"`
	Author     string   `json:"author"`
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
	Image      string   `json:"image"`
	Excerpt    string   `json:"excerpt"`
	Content    string   `json:"content"`
}
