package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ghostwriterhq/linkedin-ghostwriter/backend/internal/models"
)

// Service exposes the content operations. Each is one template over the same
// generation mechanism; none retries, none caches.
type Service struct {
	g Generator
}

func NewService(g Generator) *Service {
	return &Service{g: g}
}

// AnalyzeStyle extracts a StyleProfile from a writing sample.
func (s *Service) AnalyzeStyle(ctx context.Context, content string) (models.StyleProfile, error) {
	var profile models.StyleProfile
	err := s.g.GenerateObject(ctx, opAnalyzeStyle.system, analyzeStylePrompt(content), styleAnalysisSchema(), opAnalyzeStyle.maxTokens, &profile)
	if err != nil {
		return models.StyleProfile{}, err
	}
	return profile, nil
}

func (s *Service) GeneratePost(ctx context.Context, topic string, style models.StyleProfile) (string, error) {
	return s.g.GenerateText(ctx, opGeneratePost.system, generatePostPrompt(topic, style), opGeneratePost.maxTokens)
}

// GenerateShortPost asks for a post under maxLength characters. The limit is
// advisory: the model is instructed but the result is not truncated locally.
func (s *Service) GenerateShortPost(ctx context.Context, topic string, style models.StyleProfile, maxLength int) (string, error) {
	if maxLength <= 0 {
		maxLength = 280
	}
	return s.g.GenerateText(ctx, shortPostSystem(maxLength), shortPostPrompt(topic, style, maxLength), opGenerateShort.maxTokens)
}

// GenerateVariations issues n generations concurrently and returns the texts
// in input order. The first failure wins; there is no partial result.
func (s *Service) GenerateVariations(ctx context.Context, topic string, style models.StyleProfile, n int) ([]string, error) {
	if n <= 0 {
		n = 3
	}
	posts := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			posts[i], errs[i] = s.g.GenerateText(ctx, opGenerateVariation.system, variationPrompt(topic, style, i), opGenerateVariation.maxTokens)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return posts, nil
}

func (s *Service) RewriteDynamic(ctx context.Context, post, instructions string, style models.StyleProfile) (string, error) {
	return s.g.GenerateText(ctx, opRewriteDynamic.system, rewriteDynamicPrompt(post, instructions, style), opRewriteDynamic.maxTokens)
}

// RewriteEmotional rewrites a post toward one of the six fixed emotions.
func (s *Service) RewriteEmotional(ctx context.Context, post, emotion string, style models.StyleProfile) (string, error) {
	if _, ok := emotionalBullets[emotion]; !ok {
		return "", fmt.Errorf("unknown emotional style %q", emotion)
	}
	return s.g.GenerateText(ctx, opRewriteEmotional.system, rewriteEmotionalPrompt(post, emotion, style), opRewriteEmotional.maxTokens)
}

// AnalyzeFeedback scores how well a post matches a target style.
func (s *Service) AnalyzeFeedback(ctx context.Context, post string, targetStyle models.StyleProfile) (models.StyleFeedback, error) {
	styleJSON, err := json.MarshalIndent(targetStyle, "", "  ")
	if err != nil {
		return models.StyleFeedback{}, err
	}
	var fb models.StyleFeedback
	if err := s.g.GenerateObject(ctx, opFeedback.system, feedbackPrompt(post, string(styleJSON)), feedbackSchema(), opFeedback.maxTokens, &fb); err != nil {
		return models.StyleFeedback{}, err
	}
	if err := checkScore("score", fb.Score); err != nil {
		return models.StyleFeedback{}, err
	}
	return fb, nil
}

func (s *Service) AnalyzeVirality(ctx context.Context, post string) (models.ViralityAssessment, error) {
	var v models.ViralityAssessment
	if err := s.g.GenerateObject(ctx, opVirality.system, viralityPrompt(post), viralitySchema(), opVirality.maxTokens, &v); err != nil {
		return models.ViralityAssessment{}, err
	}
	checks := []struct {
		field string
		v     int
	}{
		{"score", v.Score},
		{"factors.emotional_appeal", v.Factors.EmotionalAppeal},
		{"factors.engagement_hooks", v.Factors.EngagementHooks},
		{"factors.shareability", v.Factors.Shareability},
		{"factors.trending_relevance", v.Factors.TrendingRelevance},
		{"factors.call_to_action", v.Factors.CallToAction},
	}
	for _, c := range checks {
		if err := checkScore(c.field, c.v); err != nil {
			return models.ViralityAssessment{}, err
		}
	}
	return v, nil
}

func (s *Service) Optimize(ctx context.Context, post, targetAudience string) (models.OptimizationBundle, error) {
	if targetAudience == "" {
		targetAudience = "LinkedIn professionals"
	}
	var b models.OptimizationBundle
	if err := s.g.GenerateObject(ctx, opOptimize.system, optimizePrompt(post, targetAudience), optimizationSchema(), opOptimize.maxTokens, &b); err != nil {
		return models.OptimizationBundle{}, err
	}
	return b, nil
}

func (s *Service) RewriteSuggestions(ctx context.Context, post string) (models.RewriteSuggestions, error) {
	var rs models.RewriteSuggestions
	if err := s.g.GenerateObject(ctx, opRewriteSuggestions.system, rewriteSuggestionsPrompt(post), rewriteSuggestionsSchema(), opRewriteSuggestions.maxTokens, &rs); err != nil {
		return models.RewriteSuggestions{}, err
	}
	return rs, nil
}
