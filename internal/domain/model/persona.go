package model

// Persona is the fast-classification result steering theme and image
// generation tone.
type Persona struct {
	Persona string `json:"persona"`
	Title   string `json:"title"`
	Roast   string `json:"roast"`
}
