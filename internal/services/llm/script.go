package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shortforge/internal/textutil"
)

const scriptTemperature = 0.7

// ScriptPrompt instructs the model to write a short-form narration script.
const ScriptPrompt = `You are a viral short-form video scriptwriter.
Write a 30-40 second engaging narration script about the topic the user gives.

Respond with JSON only, using exactly these keys:
- "title": a viral title.
- "description": a short video description with hashtags.
- "script": the spoken script text.
- "keywords": an array of 5 visual search terms for stock footage, e.g. ["futuristic city", "ai robot"].
- "sentences": an array of strings splitting the script into sentence-level chunks for timing.`

// Script is the generated narration and its metadata.
type Script struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Script      string   `json:"script"`
	Keywords    []string `json:"keywords"`
	Sentences   []string `json:"sentences"`
}

// GenerateScript asks the model for a script about topic. An empty script
// body is an error; missing metadata is filled from the topic.
func (c *Client) GenerateScript(ctx context.Context, topic string) (Script, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Script{}, errors.New("llm script: topic required")
	}
	content, err := c.CompleteJSON(ctx, ScriptPrompt, fmt.Sprintf("Topic: %q", topic), scriptTemperature)
	if err != nil {
		return Script{}, err
	}
	var script Script
	if err := DecodeLLMJSON(content, &script); err != nil {
		return Script{}, fmt.Errorf("llm script: parse payload: %w", err)
	}
	script.normalize(topic)
	if script.Script == "" {
		return Script{}, errors.New("llm script: model returned an empty script")
	}
	return script, nil
}

func (s *Script) normalize(topic string) {
	s.Title = strings.TrimSpace(s.Title)
	if s.Title == "" {
		s.Title = textutil.TitleCase(topic)
	}
	s.Description = strings.TrimSpace(s.Description)
	s.Script = strings.TrimSpace(s.Script)
	s.Keywords = compact(s.Keywords)
	s.Sentences = compact(s.Sentences)
	if len(s.Sentences) == 0 && s.Script != "" {
		s.Sentences = []string{s.Script}
	}
}

func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
