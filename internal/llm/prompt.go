package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/claimsift/internal/model"
)

// SystemPrompt sets the model up as a fact-checker
const SystemPrompt = "You are an expert fact-checker and journalist specializing in analyzing online discussions " +
	"for misinformation. Your task is to review the provided Reddit content batch and identify the " +
	"top 3 most significant, distinct factual claims being discussed across different posts/comments. " +
	"Classify the veracity of each claim using your internal knowledge. " +
	"Output the result strictly as a JSON array of objects."

// ClaimSource is the source value the prompt asks the model to use
const ClaimSource = "Local Model Analysis (No real-time web search available)"

const userPromptTemplate = `Analyze the following batch of Reddit posts and comments and extract the top 3 most significant factual claims.

You must output a single JSON array containing exactly three objects. Each object must adhere exactly to the following structure:
[
  {
    "claim": "The specific factual statement or claim identified.",
    "classification": "The veracity: 'True', 'False', 'Misleading', or 'Unverifiable'.",
    "reason": "A concise explanation for the classification, referencing the content and supporting evidence.",
    "source": "%s"
  },
  // ... two more objects following the exact same structure
]

CONTENT BATCH:
---
%s
---

Please output ONLY the JSON array.`

// BuildPrompt wraps a batch's joined content in the claim extraction instructions
func BuildPrompt(batchContent string) string {
	return fmt.Sprintf(userPromptTemplate, ClaimSource, batchContent)
}

// ErrNotJSONArray is returned when the model reply is not a JSON array
var ErrNotJSONArray = errors.New("model output is not a JSON array")

var (
	leadingFence  = regexp.MustCompile("(?i)^(```json|```)\\s*")
	trailingFence = "```"
)

// StripFences trims whitespace and removes a leading ``` or ```json fence and
// a trailing ``` fence
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = leadingFence.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, trailingFence)
	return strings.TrimSpace(text)
}

// ParseClaims decodes a model reply into claims. The reply must be a JSON
// array; elements that are not objects are ignored and non-string field
// values are rendered as text.
func ParseClaims(reply string) ([]model.Claim, error) {
	text := StripFences(reply)
	if !strings.HasPrefix(text, "[") {
		return nil, ErrNotJSONArray
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJSONArray, err)
	}

	claims := make([]model.Claim, 0, len(items))
	for _, item := range items {
		var fields map[string]any
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			continue
		}
		claims = append(claims, model.Claim{
			Claim:          textField(fields, "claim"),
			Classification: model.Classification(textField(fields, "classification")),
			Reason:         textField(fields, "reason"),
			Source:         textField(fields, "source"),
		})
	}
	return claims, nil
}

func textField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
