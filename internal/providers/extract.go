package providers

import (
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/the-lucky-clover/agentcy-one/internal/models"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(\\{.*?\\})\\s*```")

// ExtractResult pulls a result object out of free model text: a fenced code block first,
// then the span from the first '{' to the last '}'. ok is false when neither yields a
// result with at least one file.
func ExtractResult(raw string) (*models.GenerationResult, bool) {
	if m := fencedBlock.FindStringSubmatch(raw); m != nil {
		if res, ok := decodeResult(m[1]); ok {
			return res, true
		}
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		if res, ok := decodeResult(raw[start : end+1]); ok {
			return res, true
		}
	}
	return nil, false
}

func decodeResult(s string) (*models.GenerationResult, bool) {
	var res models.GenerationResult
	if err := json.Unmarshal([]byte(s), &res); err != nil {
		return nil, false
	}
	files := res.Files[:0]
	for _, f := range res.Files {
		if usableName(f.Name) {
			files = append(files, f)
		}
	}
	res.Files = files
	if len(res.Files) == 0 {
		return nil, false
	}
	return &res, true
}

// usableName rejects names that clean down to nothing, such as "", "." or "..".
func usableName(name string) bool {
	clean := strings.TrimLeft(path.Clean("/"+strings.TrimSpace(name)), "/")
	return clean != ""
}

// Placeholder builds the single-file result used when the model reply has no usable JSON.
// The prompt is embedded verbatim.
func Placeholder(req Request) *models.GenerationResult {
	var file models.GeneratedFile
	switch req.Framework {
	case models.FrameworkVue:
		file = models.GeneratedFile{
			Name: "GeneratedComponent.vue",
			Type: "vue",
			Content: fmt.Sprintf(`<template>
  <div class="generated-component">
    <h2>Generated Component</h2>
    <p>{{ prompt }}</p>
  </div>
</template>

<script setup>
/*
%s
*/
const prompt = %s
</script>
`, req.Prompt, jsString(req.Prompt)),
		}
	case models.FrameworkSvelte:
		file = models.GeneratedFile{
			Name: "GeneratedComponent.svelte",
			Type: "svelte",
			Content: fmt.Sprintf(`<script>
  /*
  %s
  */
  const prompt = %s;
</script>

<div class="generated-component">
  <h2>Generated Component</h2>
  <p>{prompt}</p>
</div>
`, req.Prompt, jsString(req.Prompt)),
		}
	default:
		file = models.GeneratedFile{
			Name: "GeneratedComponent.tsx",
			Type: "tsx",
			Content: fmt.Sprintf(`import React from 'react';

/*
%s
*/
const prompt = %s;

export default function GeneratedComponent() {
  return (
    <div className="generated-component">
      <h2>Generated Component</h2>
      <p>{prompt}</p>
    </div>
  );
}
`, req.Prompt, jsString(req.Prompt)),
		}
	}
	return &models.GenerationResult{
		Files:        []models.GeneratedFile{file},
		Description:  "Starter component generated from your prompt.",
		Instructions: "The model reply could not be parsed. Edit the component to implement the requested behaviour.",
	}
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
