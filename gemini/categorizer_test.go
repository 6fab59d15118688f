package gemini_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricecrawl/pricecrawl"
	"github.com/pricecrawl/pricecrawl/gemini"
)

func TestCategorizer_FormatPriceList_ReturnsErrorWhenCorpusEmpty(t *testing.T) {
	t.Parallel()

	c := gemini.NewCategorizer(nil) // nil client ok for this test

	_, err := c.FormatPriceList(context.Background(), "   \n  ")

	require.Error(t, err)
	assert.Equal(t, pricecrawl.EINVALID, pricecrawl.ErrorCode(err))
	assert.Contains(t, pricecrawl.ErrorMessage(err), "corpus required")
}

func TestCategorizer_Categorize_ReturnsErrorWhenInputEmpty(t *testing.T) {
	t.Parallel()

	c := gemini.NewCategorizer(nil)

	_, err := c.Categorize(context.Background(), "")

	require.Error(t, err)
	assert.Equal(t, pricecrawl.EINVALID, pricecrawl.ErrorCode(err))
	assert.Contains(t, pricecrawl.ErrorMessage(err), "formatted price list required")
}

func TestFormatConfig_SetsDeterministicSampling(t *testing.T) {
	t.Parallel()

	config := gemini.FormatConfig()

	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.1, *config.Temperature, 0.001)
	require.NotNil(t, config.TopP)
	assert.InDelta(t, 0.8, *config.TopP, 0.001)
	require.NotNil(t, config.TopK)
	assert.InDelta(t, 10, *config.TopK, 0.001)
	assert.Equal(t, int32(3000), config.MaxOutputTokens)
}

func TestFormatConfig_SetsSystemInstruction(t *testing.T) {
	t.Parallel()

	config := gemini.FormatConfig()

	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Contains(t, config.SystemInstruction.Parts[0].Text, "data cleaning expert")
}

func TestCategorizeConfig_SetsSampling(t *testing.T) {
	t.Parallel()

	config := gemini.CategorizeConfig()

	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.3, *config.Temperature, 0.001)
	assert.Equal(t, int32(2000), config.MaxOutputTokens)
	require.NotNil(t, config.SystemInstruction)
	assert.Contains(t, config.SystemInstruction.Parts[0].Text, "funeral industry expert")
}

func TestBuildFormatPrompt_ContainsRulesAndCorpus(t *testing.T) {
	t.Parallel()

	prompt := gemini.BuildFormatPrompt("Direct Cremation: $795 | Source: https://example.com")

	assert.Contains(t, prompt, "Item Name: $Price")
	assert.Contains(t, prompt, "Data to analyze:")
	assert.Contains(t, prompt, "Direct Cremation: $795")
}

func TestBuildFormatPrompt_DoesNotContainSystemInstruction(t *testing.T) {
	t.Parallel()

	prompt := gemini.BuildFormatPrompt("Direct Cremation: $795")

	assert.NotContains(t, prompt, "You are a data cleaning expert")
}

func TestBuildCategorizePrompt_ContainsItems(t *testing.T) {
	t.Parallel()

	prompt := gemini.BuildCategorizePrompt("Direct Cremation: $795\nOak Casket: $2,500.00")

	assert.Contains(t, prompt, "Items to categorize:")
	assert.Contains(t, prompt, "Oak Casket: $2,500.00")
	assert.Contains(t, prompt, "Other Services")
	assert.Contains(t, prompt, "JSON object")
}

func TestParseCategories(t *testing.T) {
	t.Parallel()

	t.Run("parses a bare JSON object", func(t *testing.T) {
		t.Parallel()
		got, err := gemini.ParseCategories(`{"Cremation Services": ["Direct Cremation"], "Other Services": ["Notary"]}`)
		require.NoError(t, err)
		assert.Equal(t, map[string][]string{
			"Cremation Services": {"Direct Cremation"},
			"Other Services":     {"Notary"},
		}, got)
	})

	t.Run("extracts the object from surrounding prose", func(t *testing.T) {
		t.Parallel()
		got, err := gemini.ParseCategories("Here are the categories:\n```json\n{\"Burial Services\": [\"Graveside Service\"]}\n```\n")
		require.NoError(t, err)
		assert.Equal(t, map[string][]string{"Burial Services": {"Graveside Service"}}, got)
	})

	t.Run("rejects responses without a JSON object", func(t *testing.T) {
		t.Parallel()
		_, err := gemini.ParseCategories("I could not categorize these items.")
		require.Error(t, err)
		assert.Equal(t, pricecrawl.EINTERNAL, pricecrawl.ErrorCode(err))
	})

	t.Run("rejects objects of the wrong shape", func(t *testing.T) {
		t.Parallel()
		_, err := gemini.ParseCategories(`{"Cremation Services": "Direct Cremation"}`)
		require.Error(t, err)
		assert.Equal(t, pricecrawl.EINTERNAL, pricecrawl.ErrorCode(err))
	})
}
