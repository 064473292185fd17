package extension

import (
	"fmt"
	"html"
	"strings"

	"github.com/GriffinCanCode/unchive/internal/shared/types"
	"github.com/microcosm-cc/bluemonday"
)

const noDescription = "No description available"

var strict = bluemonday.StrictPolicy()

// Member is a named event, method or property of an extension
type Member struct {
	Name        string `json:"name" yaml:"name" toml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
}

// Info is a display summary of an extension descriptor
type Info struct {
	Name            string   `json:"name" yaml:"name" toml:"name"`
	Type            string   `json:"type" yaml:"type" toml:"type"`
	Version         string   `json:"version" yaml:"version" toml:"version"`
	VersionName     string   `json:"versionName" yaml:"versionName" toml:"versionName"`
	Description     string   `json:"description" yaml:"description" toml:"description"`
	DateBuilt       string   `json:"dateBuilt,omitempty" yaml:"dateBuilt,omitempty" toml:"dateBuilt,omitempty"`
	Author          string   `json:"author" yaml:"author" toml:"author"`
	Events          []Member `json:"events" yaml:"events" toml:"events"`
	Methods         []Member `json:"methods" yaml:"methods" toml:"methods"`
	Properties      []Member `json:"properties" yaml:"properties" toml:"properties"`
	BlockProperties []Member `json:"blockProperties" yaml:"blockProperties" toml:"blockProperties"`
}

// Describe summarizes an extension for display.
func Describe(ext *types.Extension) Info {
	d := ext.Descriptor
	if d == nil {
		d = types.Descriptor{}
	}

	info := Info{
		Name:            d.Name(),
		Type:            ext.Type,
		Version:         "1",
		Description:     CleanDescription(firstNonEmpty(d.String("helpString"), d.String("helpUrl"))),
		DateBuilt:       d.String("dateBuilt"),
		Author:          d.String("author"),
		Events:          members(d.List("events")),
		Methods:         members(d.List("methods")),
		Properties:      members(d.List("properties")),
		BlockProperties: members(d.List("blockProperties")),
	}
	if info.Name == "" {
		info.Name = "Unknown Extension"
	}
	if info.Type == "" {
		info.Type = firstNonEmpty(d.Type(), "Unknown")
	}
	if v, ok := d["version"]; ok && v != nil && v != "" {
		info.Version = fmt.Sprint(v)
	}
	info.VersionName = firstNonEmpty(d.String("versionName"), info.Version)
	if info.Author == "" {
		info.Author = "Unknown"
	}
	return info
}

// CleanDescription strips markup from a help string.
func CleanDescription(text string) string {
	text = html.UnescapeString(strict.Sanitize(text))
	text = strings.TrimSpace(strings.ReplaceAll(text, "\u00a0", " "))
	if text == "" {
		return noDescription
	}
	return text
}

func members(list []interface{}) []Member {
	out := make([]Member, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := m["name"].(string)
		if name == "" {
			continue
		}
		desc, _ := m["description"].(string)
		if desc != "" {
			desc = CleanDescription(desc)
		}
		out = append(out, Member{Name: name, Description: desc})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
