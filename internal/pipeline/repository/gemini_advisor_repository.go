package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang-crypto-picker/internal/pipeline/config"
	"golang-crypto-picker/internal/pipeline/dto"
	"golang-crypto-picker/pkg/logger"
	"golang-crypto-picker/pkg/ratelimit"
	"golang-crypto-picker/pkg/utils"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// geminiAdvisorRepository implements AdvisorRepository against the Google
// Gemini API. Its output is untrusted; callers must validate.
type geminiAdvisorRepository struct {
	client         *http.Client
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiAdvisorRepository creates a new Gemini-backed advisor.
func NewGeminiAdvisorRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) (AdvisorRepository, error) {
	maxRequests := cfg.Gemini.MaxRequestPerMinute
	if maxRequests <= 0 {
		maxRequests = 10
	}
	secondsPerRequest := time.Minute / time.Duration(maxRequests)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	tokenLimiter := ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinute)

	return &geminiAdvisorRepository{
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
		tokenLimiter:   tokenLimiter,
		genAiClient:    genAiClient,
	}, nil
}

// ProposeScoringFunction asks Gemini for a candidate scoring expression built
// from the outcome feedback.
func (r *geminiAdvisorRepository) ProposeScoringFunction(ctx context.Context, feedback *dto.Feedback) (*dto.CandidateProposal, error) {
	prompt := BuildProposeScorerPrompt(feedback)

	geminiResp, err := r.executeGeminiAIRequest(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return r.parseProposalResponse(geminiResp)
}

func (r *geminiAdvisorRepository) executeGeminiAIRequest(ctx context.Context, prompt string) (*dto.GeminiAPIResponse, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}
	geminiTokenResp, err := r.genAiClient.Models.CountTokens(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count tokens: %w", err)
	}

	r.logger.Debug("Gemini token count",
		logger.IntField("total_tokens", int(geminiTokenResp.TotalTokens)),
		logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
	)

	if err := r.tokenLimiter.Wait(ctx, int(geminiTokenResp.TotalTokens)); err != nil {
		return nil, fmt.Errorf("failed to wait for token limit: %w", err)
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	payload := dto.GeminiAPIRequest{
		Contents: []dto.Content{{Parts: []dto.Part{{Text: prompt}}}},
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	apiURL := fmt.Sprintf("%s/%s:generateContent?key=%s", r.cfg.Gemini.BaseURL, r.cfg.Gemini.Model, r.cfg.Gemini.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("received non-OK response from Gemini API: %d - %s", resp.StatusCode, string(body))
	}

	var geminiResp dto.GeminiAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	return &geminiResp, nil
}

func (r *geminiAdvisorRepository) parseProposalResponse(resp *dto.GeminiAPIResponse) (*dto.CandidateProposal, error) {
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("invalid response from Gemini API: no content found")
	}

	raw := utils.ExtractJSON(resp.Candidates[0].Content.Parts[0].Text)

	var proposal dto.CandidateProposal
	if err := json.Unmarshal([]byte(raw), &proposal); err != nil {
		return nil, fmt.Errorf("failed to unmarshal proposal from Gemini response: %w", err)
	}
	if len(proposal.Expression) == 0 {
		return nil, fmt.Errorf("proposal carries no expression")
	}
	return &proposal, nil
}
