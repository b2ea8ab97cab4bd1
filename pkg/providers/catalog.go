package providers

// Provider id constants.
const (
	IDOpenAI     = "openai"
	IDAnthropic  = "anthropic"
	IDPerplexity = "perplexity"
	IDGemini     = "gemini"
)

// catalog is the canonical provider catalog. Its order is the canonical
// provider order: registries built from it, fan-out result slices, and the
// provider list announced on streams all follow it.
var catalog = []Descriptor{
	{
		ID:           IDOpenAI,
		Name:         "OpenAI",
		Models:       []string{"gpt-4o", "gpt-4o-mini", "gpt-3.5-turbo"},
		DefaultModel: "gpt-4o",
	},
	{
		ID:           IDAnthropic,
		Name:         "Anthropic",
		Models:       []string{"claude-3-5-sonnet-20241022", "claude-3-haiku-20240307"},
		DefaultModel: "claude-3-5-sonnet-20241022",
	},
	{
		ID:           IDPerplexity,
		Name:         "Perplexity",
		Models:       []string{"llama-3.1-sonar-large-128k-online", "llama-3.1-sonar-small-128k-online"},
		DefaultModel: "llama-3.1-sonar-large-128k-online",
	},
	{
		ID:           IDGemini,
		Name:         "Google Gemini",
		Models:       []string{"gemini-1.5-pro", "gemini-1.5-flash"},
		DefaultModel: "gemini-1.5-pro",
	},
}

// Catalog returns the provider catalog in canonical order.
// The returned slice is a copy; callers may modify it freely.
func Catalog() []Descriptor {
	out := make([]Descriptor, len(catalog))
	copy(out, catalog)
	return out
}

// CatalogIDs returns the provider ids in canonical order.
func CatalogIDs() []string {
	out := make([]string, len(catalog))
	for i, d := range catalog {
		out[i] = d.ID
	}
	return out
}

// Lookup returns the catalog descriptor for a provider id.
func Lookup(id string) (Descriptor, bool) {
	for _, d := range catalog {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}
