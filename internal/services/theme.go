package services

// DefaultMood names the palette used for any mood without its own entry.
const DefaultMood = "Calm"

var moodPalettes = map[string]map[string]string{
	"Anxious": {
		"primary":    "#6B73FF",
		"secondary":  "#9BB5FF",
		"accent":     "#C1D3FE",
		"background": "#1A1B23",
		"surface":    "#2A2D37",
		"text":       "#E2E8F0",
	},
	"Unfocused": {
		"primary":    "#10B981",
		"secondary":  "#34D399",
		"accent":     "#6EE7B7",
		"background": "#1A1E1A",
		"surface":    "#273229",
		"text":       "#E2E8F0",
	},
	"Sad": {
		"primary":    "#F59E0B",
		"secondary":  "#FBBF24",
		"accent":     "#FCD34D",
		"background": "#1E1B17",
		"surface":    "#322A20",
		"text":       "#E2E8F0",
	},
	"Stressed": {
		"primary":    "#EF4444",
		"secondary":  "#F87171",
		"accent":     "#FCA5A5",
		"background": "#1E1A1A",
		"surface":    "#332727",
		"text":       "#E2E8F0",
	},
	"Calm": {
		"primary":    "#06B6D4",
		"secondary":  "#22D3EE",
		"accent":     "#67E8F9",
		"background": "#1A1E1E",
		"surface":    "#273333",
		"text":       "#E2E8F0",
	},
}

// GenerateThemeColors returns the palette for mood, falling back to Calm.
// identity is accepted for API compatibility but does not influence the result.
func GenerateThemeColors(mood, identity string) map[string]string {
	_ = identity
	palette, ok := moodPalettes[mood]
	if !ok {
		palette = moodPalettes[DefaultMood]
	}
	out := make(map[string]string, len(palette))
	for role, color := range palette {
		out[role] = color
	}
	return out
}
