package gemini

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/pricecrawl/pricecrawl"
)

const model = "gemini-2.5-flash"

// maxAttempts bounds retries against transient API failures; waits grow
// exponentially between attempts.
const maxAttempts = 3

// Ensure Categorizer implements pricecrawl.Categorizer at compile time.
var _ pricecrawl.Categorizer = (*Categorizer)(nil)

// Categorizer implements pricecrawl.Categorizer using Google Gemini.
type Categorizer struct {
	client  *genai.Client
	limiter *rate.Limiter
}

// NewCategorizer creates a new Categorizer. Calls are rate limited to
// stay inside the free-tier request quota.
func NewCategorizer(client *genai.Client) *Categorizer {
	return &Categorizer{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(6*time.Second), 1),
	}
}

// FormatPriceList turns a raw excerpt corpus into clean "Item Name: $Price"
// lines, one per item.
func (c *Categorizer) FormatPriceList(ctx context.Context, corpus string) (string, error) {
	if strings.TrimSpace(corpus) == "" {
		return "", pricecrawl.Errorf(pricecrawl.EINVALID, "corpus required")
	}

	text, err := c.generate(ctx, BuildFormatPrompt(corpus), FormatConfig())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Categorize groups a formatted price list into named categories.
func (c *Categorizer) Categorize(ctx context.Context, formatted string) (map[string][]string, error) {
	if strings.TrimSpace(formatted) == "" {
		return nil, pricecrawl.Errorf(pricecrawl.EINVALID, "formatted price list required")
	}

	text, err := c.generate(ctx, BuildCategorizePrompt(formatted), CategorizeConfig())
	if err != nil {
		return nil, err
	}
	return ParseCategories(text)
}

// generate calls the model, retrying transient failures and empty
// responses with exponential backoff.
func (c *Categorizer) generate(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			wait := time.Duration((1<<(attempt-1))+1) * time.Second
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		result, err := c.client.Models.GenerateContent(ctx, model,
			[]*genai.Content{{
				Parts: []*genai.Part{{Text: prompt}},
			}},
			config,
		)
		if err != nil {
			lastErr = err
			continue
		}
		if result == nil || strings.TrimSpace(result.Text()) == "" {
			lastErr = pricecrawl.Errorf(pricecrawl.EINTERNAL, "empty response from model")
			continue
		}
		return result.Text(), nil
	}
	return "", lastErr
}

// FormatConfig returns the GenerateContentConfig for price list formatting.
// Sampling is kept near-deterministic so repeated runs over the same corpus
// produce the same list.
func FormatConfig() *genai.GenerateContentConfig {
	temp := float32(0.1)
	topP := float32(0.8)
	topK := float32(10)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are a data cleaning expert specializing in funeral home price lists.",
			}},
		},
		Temperature:     &temp,
		TopP:            &topP,
		TopK:            &topK,
		MaxOutputTokens: 3000,
	}
}

// CategorizeConfig returns the GenerateContentConfig for categorization.
func CategorizeConfig() *genai.GenerateContentConfig {
	temp := float32(0.3)
	topP := float32(0.8)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are a funeral industry expert.",
			}},
		},
		Temperature:     &temp,
		TopP:            &topP,
		MaxOutputTokens: 2000,
	}
}

// BuildFormatPrompt builds the user prompt for turning a raw excerpt corpus
// into a clean price list.
func BuildFormatPrompt(corpus string) string {
	var sb strings.Builder
	sb.WriteString("Analyze the text excerpts and produce a clean, deduplicated list of services and their prices.\n\n")
	sb.WriteString("Follow these rules strictly:\n")
	sb.WriteString("1. Format each entry as: `Item Name: $Price` (exactly this format).\n")
	sb.WriteString("2. Use the first price encountered when duplicates exist.\n")
	sb.WriteString("3. Ignore non-service/non-product text, technical content, and website navigation elements.\n")
	sb.WriteString("4. Only include items that are clearly funeral services, products, or merchandise.\n")
	sb.WriteString("5. Clean up item names to be professional and readable.\n")
	sb.WriteString("6. Ensure prices are in standard dollar format ($X,XXX.XX).\n")
	sb.WriteString("7. Group similar items but keep them as separate entries if they have different prices.\n")
	sb.WriteString("8. Output ONLY the clean list without explanations, summaries, or additional text.\n\n")
	sb.WriteString("Data to analyze:\n\n")
	sb.WriteString(corpus)
	return sb.String()
}

// BuildCategorizePrompt builds the user prompt for grouping a formatted
// price list into categories.
func BuildCategorizePrompt(formatted string) string {
	var sb strings.Builder
	sb.WriteString("Categorize these funeral services and products into logical groups.\n\n")
	sb.WriteString("Create 6-8 meaningful categories that make sense for funeral planning. Common categories include:\n")
	sb.WriteString("- Professional Services\n")
	sb.WriteString("- Caskets & Containers\n")
	sb.WriteString("- Cremation Services\n")
	sb.WriteString("- Burial Services\n")
	sb.WriteString("- Transportation\n")
	sb.WriteString("- Facility Usage\n")
	sb.WriteString("- Memorial Items\n")
	sb.WriteString("- Other Services\n\n")
	sb.WriteString("Always put 'Other Services' last.\n\n")
	sb.WriteString("Items to categorize:\n\n")
	sb.WriteString(formatted)
	sb.WriteString("\n\nReturn ONLY a valid JSON object where keys are category names and values are arrays of exact item names that belong to that category. Do not include any other text or explanation.")
	return sb.String()
}

// ParseCategories extracts the category mapping from a model response. The
// response may wrap the JSON object in prose or a code fence; everything
// between the first "{" and the last "}" is treated as the object.
func ParseCategories(text string) (map[string][]string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, pricecrawl.Errorf(pricecrawl.EINTERNAL, "no JSON object in categorization response")
	}

	var categories map[string][]string
	if err := json.Unmarshal([]byte(text[start:end+1]), &categories); err != nil {
		return nil, pricecrawl.Errorf(pricecrawl.EINTERNAL, "could not parse categorization response: %s", err)
	}
	return categories, nil
}
