package config

import (
	"fmt"

	"cotflow/internal/models"
)

// Built-in feed layouts. The weekly feed carries the dealer aggregate
// positioning columns; the yearly archive feed carries the leveraged
// funds columns and a compact YYMMDD reference date.
var builtinLayouts = map[string]models.LayoutDescriptor{
	"weekly": {
		Name:       "weekly",
		AssetIndex: 0,
		DateIndex:  2,
		LongIndex:  8,
		ShortIndex: 9,
		DateFormat: models.EncodingISO,
		Category:   "dealer aggregate",
	},
	"archive": {
		Name:       "archive",
		AssetIndex: 0,
		DateIndex:  1,
		LongIndex:  5,
		ShortIndex: 6,
		DateFormat: models.EncodingCompact,
		Category:   "leveraged funds",
	},
}

// Layout resolves a layout descriptor by name. Config-declared layouts
// take precedence over the built-in ones, so a feed format change can be
// absorbed without a rebuild.
func (c *Config) Layout(name string) (models.LayoutDescriptor, error) {
	for _, l := range c.Layouts {
		if l.Name != name {
			continue
		}
		enc, err := decodeDateFormat(l.DateFormat)
		if err != nil {
			return models.LayoutDescriptor{}, err
		}
		return models.LayoutDescriptor{
			Name:       l.Name,
			AssetIndex: l.AssetIndex,
			DateIndex:  l.DateIndex,
			LongIndex:  l.LongIndex,
			ShortIndex: l.ShortIndex,
			DateFormat: enc,
			Category:   l.Category,
		}, nil
	}
	if l, ok := builtinLayouts[name]; ok {
		return l, nil
	}
	return models.LayoutDescriptor{}, fmt.Errorf("unknown layout %q", name)
}
