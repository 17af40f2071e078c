package render

// rgb is a color in 0-255 components.
type rgb struct {
	R, G, B int
}

// palette holds the colors a theme uses for page elements.
type palette struct {
	Background  rgb
	Text        rgb
	Muted       rgb
	Header      rgb
	HeaderText  rgb
	Border      rgb
	Weekend     rgb
	Holiday     rgb
	HolidayText rgb
}

var palettes = map[Theme]palette{
	ThemeLight: {
		Background:  rgb{255, 255, 255},
		Text:        rgb{33, 33, 33},
		Muted:       rgb{120, 120, 120},
		Header:      rgb{230, 230, 230},
		HeaderText:  rgb{33, 33, 33},
		Border:      rgb{200, 200, 200},
		Weekend:     rgb{242, 242, 242},
		Holiday:     rgb{255, 204, 204},
		HolidayText: rgb{176, 0, 32},
	},
	ThemeDark: {
		Background:  rgb{30, 30, 30},
		Text:        rgb{230, 230, 230},
		Muted:       rgb{150, 150, 150},
		Header:      rgb{60, 60, 60},
		HeaderText:  rgb{240, 240, 240},
		Border:      rgb{85, 85, 85},
		Weekend:     rgb{45, 45, 45},
		Holiday:     rgb{122, 30, 45},
		HolidayText: rgb{255, 205, 210},
	},
}

func paletteFor(t Theme) palette {
	if p, ok := palettes[t]; ok {
		return p
	}
	return palettes[ThemeLight]
}
