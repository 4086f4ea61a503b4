package model

// Contact is the reachability block extracted from an uploaded resume.
// Email is the only field the extraction schema marks required.
type Contact struct {
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Website  string `json:"website,omitempty"`
}

type Experience struct {
	ID          string   `json:"id"`
	Company     string   `json:"company"`
	Position    string   `json:"position"`
	Period      string   `json:"period"`
	Description []string `json:"description"`
}

type Education struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Year        string `json:"year"`
}

type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Link        string `json:"link,omitempty"`
}

// Appearance carries the visual settings the editor applies to the
// rendered site. Stored alongside the record so a whole-record patch can
// carry it, but patches usually omit it and the previous value is kept.
type Appearance struct {
	AccentColor   string `json:"accentColor"`
	ThemeMode     string `json:"theme"` // light | dark | glass | ai
	FontFamily    string `json:"fontFamily"`
	ActiveThemeID string `json:"activeThemeId,omitempty"`
	Background    string `json:"bgImage,omitempty"`
}

// ResumeRecord is the structured resume produced by the parse step and
// subsequently mutated by editor field edits or an applied chat patch.
type ResumeRecord struct {
	Name       string       `json:"name"`
	Title      string       `json:"title"`
	Contact    Contact      `json:"contact"`
	Summary    string       `json:"summary"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education"`
	Skills     []string     `json:"skills"`
	Projects   []Project    `json:"projects,omitempty"`
	Appearance *Appearance  `json:"appearance,omitempty"`
}

// DefaultAppearance is the baseline look merged into a freshly parsed
// record, matching the Aura Zero preset.
func DefaultAppearance() *Appearance {
	return &Appearance{
		AccentColor:   "#10b981",
		ThemeMode:     "glass",
		FontFamily:    "Inter",
		ActiveThemeID: ThemeZeroID,
	}
}

// Clone returns a deep copy so snapshots handed to callers cannot alias
// the canonical record.
func (r *ResumeRecord) Clone() *ResumeRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.Experience = make([]Experience, len(r.Experience))
	for i, e := range r.Experience {
		e.Description = append([]string(nil), e.Description...)
		out.Experience[i] = e
	}
	out.Education = append([]Education(nil), r.Education...)
	out.Skills = append([]string(nil), r.Skills...)
	out.Projects = append([]Project(nil), r.Projects...)
	if r.Appearance != nil {
		app := *r.Appearance
		out.Appearance = &app
	}
	return &out
}
