// Package site holds the static copy of the site: branding, landing page
// sections, the about page and the web app manifest settings.
package site

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed site.yaml
var defaultCopy []byte

// Copy is the site text.
type Copy struct {
	Name        string   `yaml:"name"`
	Tagline     string   `yaml:"tagline"`
	Description string   `yaml:"description"`
	Hero        Hero     `yaml:"hero"`
	Features    Features `yaml:"features"`
	About       About    `yaml:"about"`
	Footer      Footer   `yaml:"footer"`
	Manifest    Manifest `yaml:"manifest"`
}

// Link is a labelled href.
type Link struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

// Hero is the landing page header.
type Hero struct {
	Title       string `yaml:"title"`
	Subtitle    string `yaml:"subtitle"`
	Description string `yaml:"description"`
	Primary     Link   `yaml:"primary"`
	Secondary   Link   `yaml:"secondary"`
}

// Features is the landing page feature grid.
type Features struct {
	Title    string    `yaml:"title"`
	Subtitle string    `yaml:"subtitle"`
	Items    []Feature `yaml:"items"`
}

// Feature is one card in the feature grid.
type Feature struct {
	Icon        string `yaml:"icon"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// About is the artist profile.
type About struct {
	Name   string   `yaml:"name"`
	Role   string   `yaml:"role"`
	Bio    []string `yaml:"bio"`
	Social []Link   `yaml:"social"`
	Quote  Quote    `yaml:"quote"`
}

// Quote is an attributed quotation.
type Quote struct {
	Text   string `yaml:"text"`
	Author string `yaml:"author"`
}

// Footer is shown at the bottom of every page.
type Footer struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Copyright   string `yaml:"copyright"`
	Links       []Link `yaml:"links"`
}

// Manifest holds the web app manifest settings.
type Manifest struct {
	Name            string   `yaml:"name"`
	ShortName       string   `yaml:"short_name"`
	BackgroundColor string   `yaml:"background_color"`
	ThemeColor      string   `yaml:"theme_color"`
	Categories      []string `yaml:"categories"`
}

// Default returns the embedded site copy.
func Default() (*Copy, error) {
	return Parse(defaultCopy)
}

// Parse decodes site copy from YAML.
func Parse(data []byte) (*Copy, error) {
	var c Copy
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse site copy: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Copy) validate() error {
	if c.Name == "" {
		return errors.New("site copy: name is required")
	}
	if c.Manifest.Name == "" {
		c.Manifest.Name = c.Name
	}
	if c.Manifest.ShortName == "" {
		c.Manifest.ShortName = c.Name
	}
	return nil
}
