package models

import (
	"fmt"
)

var (
	ErrProjectNotFound = fmt.Errorf("project not found")
)

type Project struct {
	Filename    string   `json:"filename"`
	FileSlug    string   `json:"fileSlug"`
	Name        string   `json:"name"`
	Tools       []string `json:"tools"`
	Image       string   `json:"image"`
	Description string   `json:"description"`
	ExternalURL string   `json:"external_url"`
	Content     string   `json:"content"`
}
