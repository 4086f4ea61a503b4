package ai

import "google.golang.org/genai"

// Prompts sent to the text model. Wording is part of the tuned behavior;
// change with care.
const (
	classifyPrompt = "Identify the candidate's career persona, professional title, and a witty 1-sentence 'spicy roast' of their resume."

	parsePrompt = "Extract resume data into the provided JSON schema. Preserve all details."

	refineSystemInstruction = "You are an elite career concierge. Return JSON patches in backticks if data changes."

	refinePersonaBrief = `You are AURA, an elite Career Strategist and Technical Recruiter.
Your Goal: Maximize hireability by forcing specificity and metrics.

CORE BEHAVIORS:
1. **Be High-Agency:** Audit the JSON. If dates are missing, bullet points are weak, or skills are generic, CALL IT OUT.
2. **The "XYZ" Formula:** "Accomplished [X] as measured by [Y], by doing [Z]."
   If they provide a weak answer, interrogate them for numbers.
3. **Live State Updates:** If proposing a content change, YOU MUST provide a JSON block inside triple backticks at the end of your response.
4. **Tone:** Professional, Direct, Slightly Critical. No "I hope this helps."

FORMATTING PROTOCOLS:
1. **No Walls of Text:** Use short paragraphs (max 2 sentences).
2. **Markdown:** Bold key metrics/skills. Use Bullet points.
3. **Action Cards:** Use dividers "---" if separating a critique from a proposal.`

	refineFallbackReply = "I'm having trouble analyzing that. Can you rephrase?"
)

var personaSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"persona": {Type: genai.TypeString},
		"title":   {Type: genai.TypeString},
		"roast":   {Type: genai.TypeString},
	},
	Required: []string{"persona", "title", "roast"},
}

var resumeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"name":  {Type: genai.TypeString},
		"title": {Type: genai.TypeString},
		"contact": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"email":    {Type: genai.TypeString},
				"phone":    {Type: genai.TypeString},
				"location": {Type: genai.TypeString},
				"linkedin": {Type: genai.TypeString},
				"github":   {Type: genai.TypeString},
			},
			Required: []string{"email"},
		},
		"summary": {Type: genai.TypeString},
		"experience": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"id":          {Type: genai.TypeString},
					"company":     {Type: genai.TypeString},
					"position":    {Type: genai.TypeString},
					"period":      {Type: genai.TypeString},
					"description": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				},
			},
		},
		"education": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"id":          {Type: genai.TypeString},
					"institution": {Type: genai.TypeString},
					"degree":      {Type: genai.TypeString},
					"year":        {Type: genai.TypeString},
				},
			},
		},
		"skills": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"name", "title", "contact", "summary"},
}

var themeProperties = map[string]*genai.Schema{
	"name":           {Type: genai.TypeString},
	"description":    {Type: genai.TypeString},
	"accentColor":    {Type: genai.TypeString},
	"secondaryColor": {Type: genai.TypeString},
	"fontFamily":     {Type: genai.TypeString},
	"headingFont":    {Type: genai.TypeString},
	"style":          {Type: genai.TypeString},
	"type":           {Type: genai.TypeString},
}

var themeListSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type:       genai.TypeObject,
		Properties: themeProperties,
		Required: []string{
			"name", "description", "accentColor", "secondaryColor",
			"fontFamily", "headingFont", "style", "type",
		},
	},
}

var customThemeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"name":           themeProperties["name"],
		"description":    themeProperties["description"],
		"accentColor":    themeProperties["accentColor"],
		"secondaryColor": themeProperties["secondaryColor"],
		"fontFamily":     themeProperties["fontFamily"],
		"headingFont":    themeProperties["headingFont"],
		"style":          themeProperties["style"],
	},
	Required: []string{
		"name", "description", "accentColor", "secondaryColor",
		"fontFamily", "headingFont", "style",
	},
}
