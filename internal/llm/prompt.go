package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tomaslau/focusonly/internal/model"
)

const systemPrompt = `You are a relevance evaluator. Given a user profile and a webpage excerpt, determine how relevant the page is to the user's goals.

Respond with ONLY valid JSON, no markdown, no explanation. Use this exact format:
{"verdict":"Leave","score":0,"reasons":["reason 1","reason 2"]}

verdict must be exactly one of: Leave, Read, Save
score must be 0-100
reasons must have 1-2 short bullets

Scoring guide:
- 0-29 (Leave): Content is irrelevant, misaligned, or a distraction
- 30-59 (Save): Somewhat relevant, worth bookmarking but not reading now
- 60-100 (Read): Directly relevant to current goals, read now

Be decisive. When in doubt, score lower.`

// strictSystemPrompt is sent once after a reply that failed to parse
const strictSystemPrompt = systemPrompt + `

Your previous reply could not be parsed. Output a single JSON object and nothing else.
Do not wrap it in code fences. Do not add any text before or after it.
The object must have exactly the keys "verdict", "score" and "reasons".`

type userMessage struct {
	Profile struct {
		Role  string   `json:"role"`
		Goals []string `json:"goals"`
		Avoid []string `json:"avoid"`
		Focus []string `json:"focus"`
	} `json:"profile"`
	Page struct {
		URL     string `json:"url"`
		Domain  string `json:"domain"`
		Title   string `json:"title"`
		Excerpt string `json:"excerpt"`
	} `json:"page"`
}

// buildUserMessage serializes profile and page as one JSON payload
func buildUserMessage(profile model.Profile, page model.PageData) (string, error) {
	var msg userMessage
	msg.Profile.Role = profile.Role
	msg.Profile.Goals = orEmpty(profile.Goals)
	msg.Profile.Avoid = orEmpty(profile.Avoid)
	msg.Profile.Focus = orEmpty(profile.Focus)
	msg.Page.URL = page.URL
	msg.Page.Domain = page.Domain
	msg.Page.Title = page.Title
	msg.Page.Excerpt = page.Excerpt

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(msg); err != nil {
		return "", fmt.Errorf("encode user message: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
