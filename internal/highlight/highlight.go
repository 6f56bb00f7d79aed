// Package highlight renders the catalog as a CSS stylesheet that colors
// tag links on archive pages, so operators can see at a glance which tags
// on a work belong to which catalog category.
package highlight

import (
	"fmt"
	"os"
	"strings"

	"github.com/querymill/querymill/internal/catalog"
)

// Stylesheet renders one rule per narrower: a selector list matching the
// narrower's tag alternatives, colored by category.
//
// Tag values are embedded in href prefix selectors with spaces encoded as
// %20, matching how the archive builds its /tags/ links.
func Stylesheet(c *catalog.Catalog) (string, error) {
	var b strings.Builder

	for _, category := range c.Registry.Categories() {
		narrowers, err := c.Registry.NarrowersOf(category)
		if err != nil {
			return "", err
		}
		color := c.Color(category)

		for _, narrower := range narrowers {
			selectors := make([]string, 0, len(narrower.Options))
			for _, opt := range narrower.Options {
				if opt.Value == "" {
					continue
				}
				encoded := strings.ReplaceAll(opt.Value, " ", "%20")
				selectors = append(selectors, fmt.Sprintf("[href^=%q]", "/tags/"+encoded))
			}
			if len(selectors) == 0 {
				continue
			}
			fmt.Fprintf(&b, "%s { background: %s; }\n", strings.Join(selectors, ", "), color)
		}
	}

	return b.String(), nil
}

// WriteFile writes the stylesheet to disk.
func WriteFile(c *catalog.Catalog, path string) error {
	css, err := Stylesheet(c)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(css), 0o644); err != nil {
		return fmt.Errorf("write stylesheet: %w", err)
	}
	return nil
}
