package services

import (
	"fmt"
	"os"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

/*
Markdown files carry a YAML block fenced by "---" followed by the body
text. Reads go through the frontmatter package, writes rebuild the
whole file. There is no partial patching.
*/

func readFrontMatterFile(path string, meta any) (string, error) {
	var (
		err error
		f   *os.File
	)

	if f, err = os.Open(path); err != nil {
		return "", fmt.Errorf("error opening '%s': %w", path, err)
	}

	defer f.Close()

	body, err := frontmatter.Parse(f, meta)

	if err != nil {
		return "", fmt.Errorf("error parsing front matter in '%s': %w", path, err)
	}

	return string(body), nil
}

func writeFrontMatterFile(path string, meta any, body string) error {
	var (
		err     error
		encoded []byte
	)

	if encoded, err = yaml.Marshal(meta); err != nil {
		return fmt.Errorf("error encoding front matter for '%s': %w", path, err)
	}

	content := strings.Builder{}
	content.WriteString("---\n")
	content.Write(encoded)
	content.WriteString("---\n")

	if body != "" {
		content.WriteString(body)

		if !strings.HasSuffix(body, "\n") {
			content.WriteString("\n")
		}
	}

	if err = os.WriteFile(path, []byte(content.String()), 0644); err != nil {
		return fmt.Errorf("error writing '%s': %w", path, err)
	}

	return nil
}
