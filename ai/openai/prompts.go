package openai

import "fmt"

// maxExpansionTerms caps the related terms the model may add to a query.
const maxExpansionTerms = 5

const expansionPromptTemplate = `You help a full-text search engine find more matching documents.
Given a search query, reply with up to %d words or short phrases that mean the same thing or are closely related.

Rules:
- Output ONLY the terms, separated by commas, on a single line.
- Do not repeat words from the query.
- Do not include any preamble, explanation, numbering, or quotes.
- Use lowercase plain words; no punctuation other than the separating commas.
- If nothing related comes to mind, output nothing.

Example:
Input: "car repair"
Output: automobile, mechanic, vehicle maintenance, garage

Example:
Input: "happy dog"
Output: joyful, cheerful, puppy, canine`

// buildSystemPrompt creates the system prompt for query expansion.
func buildSystemPrompt() string {
	return fmt.Sprintf(expansionPromptTemplate, maxExpansionTerms)
}
