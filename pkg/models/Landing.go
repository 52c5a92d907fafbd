package models

type LandingButton struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type LandingData struct {
	Title    string          `json:"title"`
	Subtitle string          `json:"subtitle"`
	Text     string          `json:"text"`
	Buttons  []LandingButton `json:"buttons"`
}
