package models

import (
	"encoding/json"
	"strings"
)

// Icon is the closed set of landing-page feature icons.
type Icon string

const (
	IconFileText Icon = "FileText"
	IconBrain    Icon = "Brain"
	IconSearch   Icon = "Search"
	IconUpload   Icon = "Upload"
	IconBot      Icon = "Bot"
	IconCpu      Icon = "Cpu"
)

// FallbackIcon is used for names outside the closed set.
const FallbackIcon = IconCpu

var icons = map[string]Icon{
	"filetext": IconFileText,
	"brain":    IconBrain,
	"search":   IconSearch,
	"upload":   IconUpload,
	"bot":      IconBot,
	"cpu":      IconCpu,
}

var glyphs = map[Icon]string{
	IconFileText: "[doc]",
	IconBrain:    "[ai]",
	IconSearch:   "[find]",
	IconUpload:   "[up]",
	IconBot:      "[bot]",
	IconCpu:      "[cpu]",
}

// ParseIcon maps a backend icon name ("file-text", "FileText", "file_text")
// to an Icon. The second result is false when the fallback was used.
func ParseIcon(name string) (Icon, bool) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(name))
	if icon, ok := icons[key]; ok {
		return icon, true
	}
	return FallbackIcon, false
}

// Glyph is the terminal rendering of the icon.
func (i Icon) Glyph() string {
	if g, ok := glyphs[i]; ok {
		return g
	}
	return glyphs[FallbackIcon]
}

// Feature is one marketing entry of the landing page.
type Feature struct {
	Icon        Icon   `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (f *Feature) UnmarshalJSON(b []byte) error {
	var raw struct {
		Icon        string `json:"icon"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	f.Icon, _ = ParseIcon(raw.Icon)
	f.Title = raw.Title
	f.Description = raw.Description
	return nil
}
