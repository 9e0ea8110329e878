package main

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"timebudget/internal/core"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// categoryFile is the YAML layout accepted by import-categories:
//
//	categories:
//	  - name: Lectura
//	    color: "#0EA5E9"
//	    icon: book-open
type categoryFile struct {
	Categories []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Color       string `yaml:"color"`
		Icon        string `yaml:"icon"`
	} `yaml:"categories"`
}

func readCategoryFile(r io.Reader) ([]core.Category, error) {
	var file categoryFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("no categories listed")
	}

	seen := make(map[string]bool, len(file.Categories))
	cats := make([]core.Category, 0, len(file.Categories))
	for i, c := range file.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("category %d: name is required", i+1)
		}
		if seen[strings.ToLower(name)] {
			return nil, fmt.Errorf("category %q is listed twice", name)
		}
		seen[strings.ToLower(name)] = true

		color := strings.TrimSpace(c.Color)
		if color == "" {
			color = core.DefaultCategoryColor
		}
		if !hexColor.MatchString(color) {
			return nil, fmt.Errorf("category %q: color %q is not #RRGGBB", name, color)
		}
		cats = append(cats, core.Category{
			Name:        name,
			Description: strings.TrimSpace(c.Description),
			Color:       color,
			Icon:        strings.TrimSpace(c.Icon),
		})
	}
	return cats, nil
}
