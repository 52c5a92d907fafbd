package services

import (
	"github.com/gosimple/slug"
)

/*
CreateSlug turns a human readable title into a URL and filename safe
identifier: lowercased, diacritics transliterated, punctuation
dropped, words hyphen-joined. The result is stable, so slugging a slug
returns it unchanged.
*/
func CreateSlug(title string) string {
	return slug.Make(title)
}
