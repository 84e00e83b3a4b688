package models

import "time"

// StyleProfile captures the ten descriptive attributes extracted from a
// writing sample. Attributes left empty fall back to hard-coded defaults at
// prompt-build time, so a partial profile is always usable.
type StyleProfile struct {
	Tone              string   `json:"tone"`
	WritingStyle      string   `json:"writing_style"`
	CommonThemes      []string `json:"common_themes"`
	SentenceStructure string   `json:"sentence_structure"`
	Vocabulary        []string `json:"vocabulary"`
	EmojiUsage        string   `json:"emoji_usage"`
	PostLength        string   `json:"post_length"`
	EngagementStyle   string   `json:"engagement_style"`
	HashtagUsage      string   `json:"hashtag_usage"`
	PersonalTouch     string   `json:"personal_touch"`
}

type GeneratedPost struct {
	Post      string `json:"post"`
	CharCount int    `json:"charCount"`
	WordCount int    `json:"wordCount"`
}

// ViralityFactors are the five sub-scores, each expected in [1,10].
type ViralityFactors struct {
	EmotionalAppeal   int `json:"emotional_appeal"`
	EngagementHooks   int `json:"engagement_hooks"`
	Shareability      int `json:"shareability"`
	TrendingRelevance int `json:"trending_relevance"`
	CallToAction      int `json:"call_to_action"`
}

type ViralityAssessment struct {
	Score               int             `json:"score"`
	Factors             ViralityFactors `json:"factors"`
	Recommendations     []string        `json:"recommendations"`
	PredictedEngagement string          `json:"predicted_engagement"`
}

type StyleFeedback struct {
	Score       int      `json:"score"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions"`
}

type OptimizationBundle struct {
	LengthOptimization     string   `json:"length_optimization"`
	EngagementOptimization string   `json:"engagement_optimization"`
	ViralityTips           []string `json:"virality_tips"`
	HashtagSuggestions     []string `json:"hashtag_suggestions"`
	TimingRecommendation   string   `json:"timing_recommendation"`
}

type RewriteSuggestions struct {
	QuickOptions       []string `json:"quick_options"`
	CustomSuggestions  []string `json:"custom_suggestions"`
	ToneAdjustments    []string `json:"tone_adjustments"`
	EngagementBoosters []string `json:"engagement_boosters"`
}

// IdentityRecord is display-only; publishing needs just the author URN.
// Claims may come from an unverified ID-token decode (see linkedin.UntrustedClaims).
type IdentityRecord struct {
	Sub     string `json:"sub,omitempty"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
	Locale  string `json:"locale,omitempty"`
}

// ScheduledPost is a row in the deferred-publish queue.
type ScheduledPost struct {
	ID            string     `json:"id"`
	Content       string     `json:"content"`
	MediaCategory string     `json:"mediaCategory"`
	MediaURLs     []string   `json:"mediaUrls,omitempty"`
	ScheduledFor  time.Time  `json:"scheduledFor"`
	Status        string     `json:"status"`
	LastError     *string    `json:"lastError,omitempty"`
	PostID        *string    `json:"postId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty"`
}
