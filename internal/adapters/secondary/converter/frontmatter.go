package converter

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// extractFrontmatter splits YAML frontmatter from markdown content. Returns
// nil metadata and the original content when no well-formed frontmatter block
// is present.
func extractFrontmatter(content []byte) (map[string]interface{}, []byte) {
	if !bytes.HasPrefix(content, []byte("---\n")) && !bytes.HasPrefix(content, []byte("---\r\n")) {
		return nil, content
	}

	lines := bytes.Split(content, []byte("\n"))
	endIndex := -1

	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			endIndex = i
			break
		}
	}

	if endIndex == -1 {
		// No closing delimiter
		return nil, content
	}

	frontmatterBytes := bytes.Join(lines[1:endIndex], []byte("\n"))

	var frontmatter map[string]interface{}
	if len(frontmatterBytes) == 0 {
		frontmatter = make(map[string]interface{})
	} else if err := yaml.Unmarshal(frontmatterBytes, &frontmatter); err != nil {
		// Malformed YAML renders as regular content instead of failing the page
		return nil, content
	}

	remaining := bytes.Join(lines[endIndex+1:], []byte("\n"))

	return frontmatter, remaining
}
