package gemini

import (
	"parallax-hq/parallax/pkg/providers"
)

// Gemini generateContent wire types. The API uses camelCase JSON throughout.

// generateRequest represents a Gemini generateContent request.
type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

// content is a role-tagged list of parts.
type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

// part carries a text fragment.
type part struct {
	Text string `json:"text"`
}

// generationConfig carries sampling parameters.
type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// generateResponse represents a generateContent response or a single
// streamGenerateContent SSE event.
type generateResponse struct {
	Candidates    []candidate    `json:"candidates"`
	UsageMetadata *usageMetadata `json:"usageMetadata,omitempty"`
}

// candidate is one generated completion.
type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// usageMetadata represents token usage in Gemini format.
type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// buildRequest transforms a provider-agnostic request to Gemini format.
func buildRequest(req *providers.GenerateRequest) *generateRequest {
	out := &generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: req.Prompt}}},
		},
	}

	if req.SystemPrompt != "" {
		out.SystemInstruction = &content{Parts: []part{{Text: req.SystemPrompt}}}
	}

	if req.Temperature != 0 || req.MaxTokens != 0 {
		out.GenerationConfig = &generationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		}
	}

	return out
}

// candidateText concatenates the text parts of the first candidate.
func candidateText(resp *generateResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var text string
	for _, p := range resp.Candidates[0].Content.Parts {
		text += p.Text
	}
	return text
}

// transformUsage converts Gemini usage metadata to the agnostic format.
func transformUsage(meta *usageMetadata) *providers.TokenUsage {
	if meta == nil {
		return nil
	}
	return &providers.TokenUsage{
		InputTokens:  meta.PromptTokenCount,
		OutputTokens: meta.CandidatesTokenCount,
		TotalTokens:  meta.TotalTokenCount,
	}
}
