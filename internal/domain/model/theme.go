package model

// ThemeVariant is the tone bucket a suggested theme belongs to.
type ThemeVariant string

const (
	VariantSafe     ThemeVariant = "safe"
	VariantBold     ThemeVariant = "bold"
	VariantCreative ThemeVariant = "creative"
	VariantCustom   ThemeVariant = "custom"
	VariantStatic   ThemeVariant = "static"
)

const (
	// ThemeZeroID is the id of the baseline preset every session starts with.
	ThemeZeroID = "aura-zero"
	// CustomThemeID is the sentinel id for the single user-prompted theme.
	CustomThemeID = "custom-aura"
)

// Theme is a named visual style bundle applicable to the rendered site.
// JSON field names mirror the UI's data shapes.
type Theme struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	AccentColor    string       `json:"accentColor"`
	SecondaryColor string       `json:"secondaryColor"`
	FontFamily     string       `json:"fontFamily"`
	HeadingFont    string       `json:"headingFont"`
	Style          string       `json:"style"`
	Variant        ThemeVariant `json:"type"`
	Background     string       `json:"bgImage,omitempty"`
}

// ThemeZero is the static baseline preset.
func ThemeZero() Theme {
	return Theme{
		ID:             ThemeZeroID,
		Name:           "Aura Zero",
		Description:    "The Baseline. Clean, minimal, utility-first.",
		AccentColor:    "#10b981",
		SecondaryColor: "#09090b",
		FontFamily:     "Inter",
		HeadingFont:    "Inter",
		Style:          "Minimalist Utility",
		Variant:        VariantStatic,
	}
}
