package gemini

import (
	"fmt"

	"google.golang.org/genai"
)

// Response schemas for the structured operations. Every field carries a
// natural-language description: the model's instruction-following quality
// depends on it.

func stringField(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func stringListField(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: desc}
}

func scoreField(desc string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeInteger,
		Description: desc,
		Minimum:     genai.Ptr(1.0),
		Maximum:     genai.Ptr(10.0),
	}
}

func styleAnalysisSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"tone":               stringField("The tone of the writing (e.g., professional, casual, inspirational, authoritative)"),
			"writing_style":      stringField("The writing style (e.g., narrative, direct, persuasive, informative)"),
			"common_themes":      stringListField("List of common themes or topics in the writing"),
			"sentence_structure": stringField("The complexity of sentence structure (e.g., complex, simple, mixed)"),
			"vocabulary":         stringListField("Characteristic words or phrases used in the writing"),
			"emoji_usage":        stringField("How emojis are used (e.g., frequently, sparingly, never, specific contexts)"),
			"post_length":        stringField("Typical post length preference (e.g., short and punchy, medium-length, long-form)"),
			"engagement_style":   stringField("How the author engages with audience (e.g., questions, calls-to-action, storytelling)"),
			"hashtag_usage":      stringField("How hashtags are used (e.g., many, few, industry-specific, trending)"),
			"personal_touch":     stringField("Level of personal sharing (e.g., highly personal, professional experiences, industry insights)"),
		},
		Required: []string{"tone", "writing_style", "common_themes", "sentence_structure", "vocabulary",
			"emoji_usage", "post_length", "engagement_style", "hashtag_usage", "personal_touch"},
	}
}

func feedbackSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"score":       scoreField("How well the post matches the target style (1-10)"),
			"feedback":    stringField("Detailed feedback on style matching"),
			"suggestions": stringListField("Specific suggestions for improvement"),
		},
		Required: []string{"score", "feedback", "suggestions"},
	}
}

func viralitySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"score": scoreField("Overall virality score (1-10)"),
			"factors": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"emotional_appeal":   scoreField("Emotional impact and storytelling (1-10)"),
					"engagement_hooks":   scoreField("Questions, hooks, and engagement triggers (1-10)"),
					"shareability":       scoreField("How likely people are to share this (1-10)"),
					"trending_relevance": scoreField("Relevance to current trends (1-10)"),
					"call_to_action":     scoreField("Strength of call-to-action (1-10)"),
				},
				Required: []string{"emotional_appeal", "engagement_hooks", "shareability", "trending_relevance", "call_to_action"},
			},
			"recommendations":      stringListField("Specific recommendations to increase virality"),
			"predicted_engagement": stringField("Predicted engagement level (low/medium/high/viral)"),
		},
		Required: []string{"score", "factors", "recommendations", "predicted_engagement"},
	}
}

func optimizationSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"length_optimization":     stringField("Suggestions for optimal post length"),
			"engagement_optimization": stringField("Ways to increase likes, comments, and shares"),
			"virality_tips":           stringListField("Specific tips to increase viral potential"),
			"hashtag_suggestions":     stringListField("Recommended hashtags for this post"),
			"timing_recommendation":   stringField("Best time to post for maximum engagement"),
		},
		Required: []string{"length_optimization", "engagement_optimization", "virality_tips", "hashtag_suggestions", "timing_recommendation"},
	}
}

func rewriteSuggestionsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"quick_options":       stringListField("Quick one-click rewrite options (e.g., 'Make it more emotional', 'Add humor', 'Make it shorter')"),
			"custom_suggestions":  stringListField("Specific custom suggestions based on the post content"),
			"tone_adjustments":    stringListField("Tone adjustment options (e.g., 'More casual', 'More authoritative')"),
			"engagement_boosters": stringListField("Ways to increase engagement (e.g., 'Add a question', 'Include a story')"),
		},
		Required: []string{"quick_options", "custom_suggestions", "tone_adjustments", "engagement_boosters"},
	}
}

// checkScore enforces the 1-10 range after decode. The model is instructed
// via the schema but the response is still validated post-hoc; an out-of-range
// value is a schema-validation failure, not something to clamp.
func checkScore(field string, v int) error {
	if v < 1 || v > 10 {
		return fmt.Errorf("schema validation failed: %s=%d outside [1,10]", field, v)
	}
	return nil
}
