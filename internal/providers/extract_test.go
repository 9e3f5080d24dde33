package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-lucky-clover/agentcy-one/internal/models"
)

func TestExtractResultFencedBlock(t *testing.T) {
	raw := "Here is your code:\n```json\n{\"files\":[{\"name\":\"a.tsx\",\"content\":\"X\"}],\"description\":\"d\"}\n```\nEnjoy!"

	res, ok := ExtractResult(raw)
	require.True(t, ok)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "a.tsx", res.Files[0].Name)
	assert.Equal(t, "X", res.Files[0].Content)
	assert.Equal(t, "d", res.Description)
}

func TestExtractResultBareObject(t *testing.T) {
	raw := `Sure! {"files":[{"name":"api.ts","content":"export {}"}],"instructions":"run it"} Let me know.`

	res, ok := ExtractResult(raw)
	require.True(t, ok)
	assert.Equal(t, "api.ts", res.Files[0].Name)
	assert.Equal(t, "run it", res.Instructions)
}

func TestExtractResultBrokenJSON(t *testing.T) {
	raw := "```\n{not json}\n```\n{\"files\":[{\"name\":\"b.vue\",\"content\":\"<template/>\"}]}"

	_, ok := ExtractResult(raw)
	assert.False(t, ok, "span from first { to last } is not valid JSON either")

	raw = "```json\n{broken\n```"
	_, ok = ExtractResult(raw)
	assert.False(t, ok)
}

func TestExtractResultRejectsEmptyFiles(t *testing.T) {
	_, ok := ExtractResult(`{"files":[],"description":"nothing"}`)
	assert.False(t, ok)

	_, ok = ExtractResult(`{"files":[{"name":"","content":"x"}]}`)
	assert.False(t, ok)
}

func TestExtractResultDropsDotNames(t *testing.T) {
	_, ok := ExtractResult(`{"files":[{"name":"..","content":"x"},{"name":".","content":"y"},{"name":" / ","content":"z"}]}`)
	assert.False(t, ok)

	res, ok := ExtractResult(`{"files":[{"name":"..","content":"x"},{"name":"ok.tsx","content":"y"}]}`)
	require.True(t, ok)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "ok.tsx", res.Files[0].Name)
}

func TestExtractResultNoJSON(t *testing.T) {
	_, ok := ExtractResult("I cannot help with that.")
	assert.False(t, ok)
}

func TestPlaceholderEmbedsPromptVerbatim(t *testing.T) {
	prompt := `A pricing table with "quotes", <tags> & three tiers`

	cases := map[models.Framework]string{
		"":                     "GeneratedComponent.tsx",
		models.FrameworkReact:  "GeneratedComponent.tsx",
		models.FrameworkNextJS: "GeneratedComponent.tsx",
		models.FrameworkVue:    "GeneratedComponent.vue",
		models.FrameworkSvelte: "GeneratedComponent.svelte",
	}
	for fw, name := range cases {
		res := Placeholder(Request{Prompt: prompt, Type: models.TypeComponent, Framework: fw})
		require.Len(t, res.Files, 1, "framework %q", fw)
		assert.Equal(t, name, res.Files[0].Name)
		assert.Contains(t, res.Files[0].Content, prompt)
	}
}
