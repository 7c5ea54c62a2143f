// Package gateway owns all communication with the generative-AI product
// analysis model. It builds requests, applies per-attempt timeouts, retries
// transient failures with exponential backoff, validates the response shape,
// caches recent results and normalizes every failure into the apierr taxonomy.
package gateway

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aurascan/aurascan/internal/ai"
	"github.com/aurascan/aurascan/internal/apierr"
	"github.com/aurascan/aurascan/internal/models"
)

// Options tune the resilience pipeline. Zero values select the defaults.
type Options struct {
	MaxAttempts    int           // total attempts per call (default 3)
	AttemptTimeout time.Duration // deadline per attempt (default 30s)
	RetryBaseDelay time.Duration // backoff base (default 1s)
	CacheTTL       time.Duration // result cache lifetime (default 5m)
	CacheSize      int           // bounded cache capacity (default 32)
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts == 0 {
		o.MaxAttempts = 3
	}
	if o.AttemptTimeout == 0 {
		o.AttemptTimeout = 30 * time.Second
	}
	if o.RetryBaseDelay == 0 {
		o.RetryBaseDelay = time.Second
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = 5 * time.Minute
	}
	if o.CacheSize == 0 {
		o.CacheSize = 32
	}
	return o
}

// ProgressFunc reports batch progress after every attempt, success or failure.
type ProgressFunc func(completed, total int)

// Gateway turns image payloads and product names into validated analyses.
type Gateway struct {
	client ai.Client
	opts   Options
	cache  *resultCache
	log    *zap.Logger

	// injectable for deterministic tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
	newID func() string
}

// New creates a gateway around the given model client.
func New(client ai.Client, opts Options, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	opts = opts.withDefaults()
	return &Gateway{
		client: client,
		opts:   opts,
		cache:  newResultCache(opts.CacheTTL, opts.CacheSize),
		log:    log,
		now:    time.Now,
		sleep:  sleepCtx,
		newID:  func() string { return uuid.New().String() },
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// AnalyzeImage analyzes a product label photographed by the user. The image
// is a base64 data URL. An optional profile personalizes the analysis.
func (g *Gateway) AnalyzeImage(ctx context.Context, imageData string, profile *models.UserProfile) (*models.ProductAnalysis, error) {
	if err := g.client.Ready(); err != nil {
		return nil, err
	}

	mime, payload, err := splitDataURL(imageData)
	if err != nil {
		return nil, err
	}

	fp := fingerprint("image", imageData)
	if cached, ok := g.cache.get(fp, g.now()); ok {
		g.log.Debug("analysis cache hit", zap.String("fingerprint", fp))
		return cached, nil
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, apierr.Validation(fmt.Sprintf("undecodable image payload: %v", err))
	}

	req := ai.Request{
		Instruction: analysisPrompt(profile),
		ImageData:   raw,
		ImageMIME:   mime,
		Schema:      analysisSchema(),
	}
	return g.runAnalysis(ctx, req, fp)
}

// AnalyzeByName analyzes a product identified by name only, same pipeline
// minus the image payload.
func (g *Gateway) AnalyzeByName(ctx context.Context, productName string, profile *models.UserProfile) (*models.ProductAnalysis, error) {
	if err := g.client.Ready(); err != nil {
		return nil, err
	}
	productName = strings.TrimSpace(productName)
	if productName == "" {
		return nil, apierr.Validation("empty product name")
	}

	fp := fingerprint("name", strings.ToLower(productName))
	if cached, ok := g.cache.get(fp, g.now()); ok {
		g.log.Debug("analysis cache hit", zap.String("fingerprint", fp))
		return cached, nil
	}

	req := ai.Request{
		Instruction: searchPrompt(productName, profile),
		Schema:      analysisSchema(),
	}
	return g.runAnalysis(ctx, req, fp)
}

func (g *Gateway) runAnalysis(ctx context.Context, req ai.Request, fp string) (*models.ProductAnalysis, error) {
	text, err := g.generateWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}

	analysis, err := parseAnalysis(text)
	if err != nil {
		g.log.Warn("analysis failed validation", zap.Error(err))
		return nil, err
	}

	analysis.ID = g.newID()
	analysis.Timestamp = g.now()
	analysis.ClampScores()

	g.cache.put(fp, analysis, g.now())
	g.log.Info("analysis complete",
		zap.String("id", analysis.ID),
		zap.String("product", analysis.Name),
		zap.Float64("score", analysis.ProductScore.Overall))
	return analysis, nil
}

// generateWithRetry runs the model call under the retry policy: up to
// MaxAttempts attempts, each raced against AttemptTimeout, exponential backoff
// between attempts, and an immediate stop on any non-retryable failure.
// Caller cancellation propagates as the context error, never as an apierr.
func (g *Gateway) generateWithRetry(ctx context.Context, req ai.Request) (string, error) {
	var lastErr error
	for attempt := 0; attempt < g.opts.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := g.opts.RetryBaseDelay << uint(attempt-1)
			g.log.Debug("retrying model call",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay))
			if err := g.sleep(ctx, delay); err != nil {
				return "", err
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, g.opts.AttemptTimeout)
		text, err := g.client.Generate(attemptCtx, req)
		cancel()
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			// The caller abandoned interest; discard the attempt outcome.
			return "", ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = apierr.Timeout(fmt.Sprintf("attempt exceeded %s deadline", g.opts.AttemptTimeout))
		}

		ae := apierr.Wrap(err)
		if !ae.Retryable {
			return "", ae
		}
		g.log.Warn("model call failed",
			zap.Int("attempt", attempt+1),
			zap.String("code", string(ae.Code)),
			zap.Error(ae))
		lastErr = ae
	}
	return "", apierr.Wrap(lastErr)
}

// Compare sends a summarized prompt built from both analyses and returns the
// model's verdict. Comparison results are not cached.
func (g *Gateway) Compare(ctx context.Context, a, b *models.ProductAnalysis) (*models.ComparisonResult, error) {
	if err := g.client.Ready(); err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, apierr.Validation("two analyses are required for comparison")
	}

	req := ai.Request{
		Instruction: comparisonPrompt(a, b),
		Schema:      comparisonSchema(),
	}
	text, err := g.generateWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}
	return parseComparison(text)
}

// BatchAnalyze sequentially analyzes each image. A failure on one image is
// logged and skipped; it never aborts the batch. onProgress, when non-nil, is
// invoked after every attempt.
func (g *Gateway) BatchAnalyze(ctx context.Context, images []string, profile *models.UserProfile, onProgress ProgressFunc) []*models.ProductAnalysis {
	total := len(images)
	results := make([]*models.ProductAnalysis, 0, total)
	for i, img := range images {
		analysis, err := g.AnalyzeImage(ctx, img, profile)
		if err != nil {
			if ctx.Err() != nil {
				g.log.Info("batch cancelled", zap.Int("completed", i), zap.Int("total", total))
				return results
			}
			g.log.Warn("batch item failed, skipping",
				zap.Int("index", i),
				zap.Error(err))
		} else {
			results = append(results, analysis)
		}
		if onProgress != nil {
			onProgress(i+1, total)
		}
	}
	return results
}

// splitDataURL checks for a recognizable image data URL and returns its MIME
// type and base64 payload.
func splitDataURL(imageData string) (mime, payload string, err error) {
	if !strings.HasPrefix(imageData, "data:image") {
		return "", "", apierr.Validation("image payload is not a data URL")
	}
	header, payload, ok := strings.Cut(imageData, ",")
	if !ok || payload == "" {
		return "", "", apierr.Validation("image payload has no content")
	}
	mime = strings.TrimPrefix(header, "data:")
	mime = strings.TrimSuffix(mime, ";base64")
	return mime, payload, nil
}
