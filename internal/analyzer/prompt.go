package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"
)

const systemPrompt = "You are a JSON-output job parsing assistant."

const promptTemplate = `
You are a structured-data extractor that receives a Job TITLE and DESCRIPTION.
Return strictly valid JSON (no commentary, no markdown, no extra properties) with EXACTLY these fields:

{
  "isFresher": <true|false>,              // true when the role is explicitly entry-level / fresher / 0-2 yrs
  "techSkills": "<CSV of technical skills, First-letter-capitalized each item>",
  "qualifications": "<brief single-line summary of minimum qualifications>"
}

Rules:
- Decide "isFresher" using explicit cues (e.g., "Fresher", "Entry level", "0-2 years", "Graduate", "0-1 years") OR "Junior"/"Trainee"/"Intern".
- If the JD contains phrases like in final year, internship, 0-2 years, entry level, fresher, recent graduate, no experience, foundational knowledge, or willingness to learn, treat it as a fresher/entry-level role (i.e., isFresher: true).
- Only mark false when the JD explicitly requires several years of experience (e.g., 3+ years, 5 years, senior, lead).
- techSkills: list ONLY technical skills/technologies explicitly required in the JD (no soft skills). Provide them as a comma-separated string. Capitalize each item: e.g., "Python, Docker, SQL".
- qualifications: short single-line summary of minimum required education/degree/certifications and years of experience if stated.
- Keep answers concise and do not include additional fields.

Now analyze this job precisely:
TITLE: %s
DESCRIPTION: %s
`

// BuildPrompt renders the strict-JSON extraction prompt for one job. Title
// and description are embedded as JSON string literals so quotes and newlines
// in the source text cannot break the prompt structure.
func BuildPrompt(title, description string) string {
	return strings.TrimSpace(fmt.Sprintf(promptTemplate, jsonString(title), jsonString(description)))
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
