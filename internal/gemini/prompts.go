package gemini

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ghostwriterhq/linkedin-ghostwriter/backend/internal/models"
)

// Every generation capability is an entry here rather than its own code path:
// a system role, a token budget, and (for structured ops) a response schema.
// Prompt bodies are assembled by the builders below.
type operation struct {
	name      string
	system    string
	maxTokens int32
}

var (
	opAnalyzeStyle = operation{
		name: "analyze-style",
		system: `You are an expert LinkedIn content analyst. Analyze the writing style from the provided LinkedIn posts or content. Focus on:
1. Professional tone and voice
2. LinkedIn-specific writing patterns
3. Engagement techniques used
4. How the author builds their personal brand
5. Content structure and formatting preferences

Be specific and actionable in your analysis.`,
		maxTokens: 1000,
	}

	opGeneratePost = operation{
		name: "generate-post",
		system: `You are a professional LinkedIn ghostwriter. Generate authentic LinkedIn posts that match the user's unique writing style and voice. The post should:

1. Sound natural and authentic to the user's voice
2. Follow LinkedIn best practices for engagement
3. Be appropriate for professional networking
4. Include relevant hashtags if that matches their style
5. Have a clear call-to-action or engagement hook
6. Be the appropriate length for the platform

Write in the first person as if you are the user.`,
		maxTokens: 1000,
	}

	opGenerateVariation = operation{
		name:      "generate-variation",
		system:    `You are a professional LinkedIn ghostwriter. Generate authentic LinkedIn posts that match the user's unique writing style and voice. Each variation should have a different angle or approach while maintaining the same voice.`,
		maxTokens: 1000,
	}

	opGenerateShort = operation{
		name:      "generate-short-post",
		maxTokens: 100, // short posts get a deliberately tight budget
	}

	opRewriteEmotional = operation{
		name: "rewrite-emotional",
		system: `You are a LinkedIn content strategist specializing in emotional storytelling. Rewrite posts to be more emotionally engaging while maintaining the user's authentic voice.

Focus on:
1. Adding emotional depth and personal connection
2. Using storytelling techniques
3. Creating vulnerability and relatability
4. Maintaining professional authenticity
5. Keeping the core message intact`,
		maxTokens: 300,
	}

	opRewriteDynamic = operation{
		name: "rewrite-dynamic",
		system: `You are a LinkedIn content strategist who helps users rewrite their posts based on specific instructions. You excel at:

1. Understanding user's rewriting intentions
2. Maintaining their authentic voice and style
3. Keeping the core message intact
4. Making appropriate changes based on instructions
5. Ensuring professional appropriateness for LinkedIn

Always preserve the user's original style while implementing their requested changes.`,
		maxTokens: 1000,
	}

	opFeedback = operation{
		name:      "analyze-feedback",
		system:    "You are a LinkedIn content expert. Analyze how well a generated post matches the target writing style.",
		maxTokens: 1000,
	}

	opVirality = operation{
		name: "analyze-virality",
		system: `You are a LinkedIn viral content expert. Analyze posts for their potential to go viral on LinkedIn. Consider:
1. Emotional resonance and storytelling
2. Engagement hooks (questions, controversies, insights)
3. Shareability and discussion potential
4. Trending topics and relevance
5. Clear call-to-action
6. LinkedIn algorithm preferences

Score each factor 1-10 and provide actionable recommendations.`,
		maxTokens: 1000,
	}

	opOptimize = operation{
		name:      "optimize",
		system:    `You are a LinkedIn optimization expert. Provide specific, actionable suggestions to improve post performance.`,
		maxTokens: 1000,
	}

	opRewriteSuggestions = operation{
		name: "rewrite-suggestions",
		system: `You are a LinkedIn content optimization expert. Analyze posts and suggest specific, actionable rewrite options that users can choose from.

Provide diverse suggestions that cover:
1. Emotional adjustments (more inspiring, vulnerable, etc.)
2. Tone changes (more casual, authoritative, etc.)
3. Engagement improvements (add questions, stories, etc.)
4. Content structure changes (shorter, punchier, more detailed)`,
		maxTokens: 1000,
	}
)

// Fallbacks substituted for any style attribute the caller leaves empty.
// Instruction-following quality depends on always shipping a complete style
// block, so these are applied per attribute, not per profile.
const (
	defaultTone              = "professional but approachable"
	defaultWritingStyle      = "informative and engaging"
	defaultCommonThemes      = "industry insights, personal growth"
	defaultSentenceStructure = "mixed complexity"
	defaultVocabulary        = "professional terminology"
	defaultEmojiUsage        = "minimal and professional"
	defaultPostLength        = "medium-length"
	defaultEngagementStyle   = "questions and insights"
	defaultHashtagUsage      = "relevant industry hashtags"
	defaultPersonalTouch     = "professional experiences with personal insights"
)

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func orDefaultList(v []string, def string) string {
	if len(v) == 0 {
		return def
	}
	return strings.Join(v, ", ")
}

// styleBlock renders the full ten-attribute style description used by the
// generate and variation prompts.
func styleBlock(s models.StyleProfile) string {
	return fmt.Sprintf(`- Tone: %s
- Writing Style: %s
- Common Themes: %s
- Sentence Structure: %s
- Vocabulary: %s
- Emoji Usage: %s
- Post Length: %s
- Engagement Style: %s
- Hashtag Usage: %s
- Personal Touch: %s`,
		orDefault(s.Tone, defaultTone),
		orDefault(s.WritingStyle, defaultWritingStyle),
		orDefaultList(s.CommonThemes, defaultCommonThemes),
		orDefault(s.SentenceStructure, defaultSentenceStructure),
		orDefaultList(s.Vocabulary, defaultVocabulary),
		orDefault(s.EmojiUsage, defaultEmojiUsage),
		orDefault(s.PostLength, defaultPostLength),
		orDefault(s.EngagementStyle, defaultEngagementStyle),
		orDefault(s.HashtagUsage, defaultHashtagUsage),
		orDefault(s.PersonalTouch, defaultPersonalTouch))
}

func analyzeStylePrompt(content string) string {
	return fmt.Sprintf(`Analyze the following LinkedIn content for writing style:

<content>
%s
</content>

Provide a comprehensive analysis that captures:
- The unique voice and tone
- Common themes and topics they discuss
- How they structure their posts
- Their engagement approach
- Use of emojis, hashtags, and formatting
- Personal vs professional balance`, content)
}

func generatePostPrompt(topic string, style models.StyleProfile) string {
	return fmt.Sprintf(`Generate a LinkedIn post about: %q

Match this writing style:
%s

Create a post that feels authentic to this style while being engaging and valuable to a LinkedIn audience.`, topic, styleBlock(style))
}

func variationPrompt(topic string, style models.StyleProfile, index int) string {
	angle := ""
	if index > 0 {
		angle = fmt.Sprintf(" (Variation %d - try a different angle or approach)", index+1)
	}
	return fmt.Sprintf(`Generate a LinkedIn post about: %q%s

Match this writing style:
%s

Create a unique and engaging post that feels authentic to this style.`, topic, angle, styleBlock(style))
}

func shortPostSystem(maxLength int) string {
	return fmt.Sprintf(`You are a LinkedIn content creator specializing in short, punchy posts. Create concise, engaging content that:

1. Gets to the point quickly
2. Has high impact with few words
3. Includes one strong hook or insight
4. Maintains professional authenticity
5. Encourages engagement

Keep posts under %d characters. Focus on quality over quantity.`, maxLength)
}

func shortPostPrompt(topic string, style models.StyleProfile, maxLength int) string {
	return fmt.Sprintf(`Create a short, punchy LinkedIn post about: %q

Style preferences:
- Tone: %s
- Engagement: %s
- Emoji Usage: %s

Requirements:
- Maximum %d characters
- One key insight or hook
- Professional yet engaging
- Clear call-to-action or question

Make every word count!`, topic,
		orDefault(style.Tone, defaultTone),
		orDefault(style.EngagementStyle, defaultEngagementStyle),
		orDefault(style.EmojiUsage, defaultEmojiUsage),
		maxLength)
}

// EmotionalStyles enumerates the accepted rewrite emotions.
var EmotionalStyles = []string{"inspirational", "vulnerable", "passionate", "relatable", "motivational", "controversial"}

// Each emotion maps to a fixed set of extra instruction bullets.
var emotionalBullets = map[string]string{
	"inspirational": "- Adding uplifting messages and hope\n- Using motivational language\n- Including success stories",
	"vulnerable":    "- Sharing personal struggles or challenges\n- Being more open about failures\n- Creating authentic human connection",
	"passionate":    "- Using stronger, more energetic language\n- Expressing deep conviction\n- Adding urgency and importance",
	"relatable":     "- Adding common experiences everyone faces\n- Using everyday language\n- Creating \"me too\" moments",
	"motivational":  "- Adding calls to action\n- Using empowering language\n- Creating momentum and energy",
	"controversial": "- Presenting a contrarian viewpoint\n- Challenging common assumptions\n- Sparking debate (professionally)",
}

func rewriteEmotionalPrompt(post, emotion string, style models.StyleProfile) string {
	return fmt.Sprintf(`Rewrite this LinkedIn post to be more %s and emotionally engaging:

<original_post>
%s
</original_post>

Maintain this writing style:
- Tone: %s
- Personal Touch: %s
- Engagement Style: %s

Make it more %s by:
%s

Keep the post authentic and professional while making it more emotionally compelling.`,
		emotion, post,
		orDefault(style.Tone, defaultTone),
		orDefault(style.PersonalTouch, defaultPersonalTouch),
		orDefault(style.EngagementStyle, defaultEngagementStyle),
		emotion, emotionalBullets[emotion])
}

func rewriteDynamicPrompt(post, instructions string, style models.StyleProfile) string {
	return fmt.Sprintf(`Rewrite this LinkedIn post based on the user's specific instructions:

<original_post>
%s
</original_post>

<rewrite_instructions>
%s
</rewrite_instructions>

Maintain this writing style:
- Tone: %s
- Writing Style: %s
- Personal Touch: %s
- Engagement Style: %s
- Emoji Usage: %s
- Hashtag Usage: %s

Instructions for rewriting: %q

Keep the post authentic, professional, and true to the user's voice while implementing their requested changes.`,
		post, instructions,
		orDefault(style.Tone, defaultTone),
		orDefault(style.WritingStyle, defaultWritingStyle),
		orDefault(style.PersonalTouch, defaultPersonalTouch),
		orDefault(style.EngagementStyle, defaultEngagementStyle),
		orDefault(style.EmojiUsage, defaultEmojiUsage),
		orDefault(style.HashtagUsage, defaultHashtagUsage),
		instructions)
}

func feedbackPrompt(post, targetStyleJSON string) string {
	return fmt.Sprintf(`Analyze this generated LinkedIn post and compare it to the target style:

<generated_post>
%s
</generated_post>

<target_style>
%s
</target_style>

Provide a score (1-10) and specific feedback on how well it matches the style.`, post, targetStyleJSON)
}

func viralityPrompt(post string) string {
	return fmt.Sprintf(`Analyze this LinkedIn post for virality potential:

<post>
%s
</post>

Provide detailed analysis with specific improvement recommendations.`, post)
}

func optimizePrompt(post, targetAudience string) string {
	return fmt.Sprintf(`Optimize this LinkedIn post for %s:

<post>
%s
</post>

Provide specific optimization suggestions for maximum engagement and reach.`, targetAudience, post)
}

func rewriteSuggestionsPrompt(post string) string {
	return fmt.Sprintf(`Analyze this LinkedIn post and suggest specific rewrite options:

<post>
%s
</post>

Provide specific, actionable rewrite suggestions that users can select from.`, post)
}

var postSeparators = regexp.MustCompile(`\n\n---\n\n|\n\n\*\*\*\n\n|\n\n===\n\n`)

// PreprocessContent splits a raw sample into individual posts, drops fragments
// too short to carry style signal, and rejoins them with an explicit marker.
// Purely local, no model call.
func PreprocessContent(content string) string {
	parts := postSeparators.Split(content, -1)
	posts := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) > 50 {
			posts = append(posts, p)
		}
	}
	return strings.Join(posts, "\n\n[POST_SEPARATOR]\n\n")
}
