// Package insight produces per-metric coaching breakdowns from the model,
// falling back to registry defaults when the model cannot help.
package insight

import (
	"context"
	"strings"
	"time"

	"github.com/okian/swingcoach/internal/domain/metric"
	"github.com/okian/swingcoach/internal/domain/model"
	"github.com/okian/swingcoach/internal/domain/parse"
	"github.com/okian/swingcoach/internal/domain/prompt"
	"github.com/okian/swingcoach/internal/domain/recipe"
	"github.com/okian/swingcoach/pkg/logger"
	"github.com/okian/swingcoach/pkg/metrics"
)

// Defaults for the model call.
const (
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 1024
	DefaultTimeout     = 45 * time.Second
	DefaultNotice      = "Sign in to unlock the full analysis of this swing."
	op                 = "insight"
)

// LLM generates text for a prompt.
type LLM interface {
	Generate(ctx context.Context, req model.LLMRequest) (string, error)
}

// URIResolver maps a hosted video id onto a provider URI.
type URIResolver interface {
	URI(id string) (string, error)
}

// Request asks for insights on one metric of one analysis.
type Request struct {
	Analysis      model.Analysis
	Metric        string
	Authenticated bool
	// Video is the original upload when still available.
	Video *model.VideoFile
}

// Option configures a Generator.
type Option func(*Generator)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option { return func(g *Generator) { g.temperature = t } }

// WithMaxTokens caps the response length.
func WithMaxTokens(n int32) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxTokens = n
		}
	}
}

// WithTimeout bounds each model call.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithUnlockNotice sets the notice shown to unauthenticated viewers of other golfers' swings.
func WithUnlockNotice(s string) Option {
	return func(g *Generator) {
		if s != "" {
			g.notice = s
		}
	}
}

// WithRecipes attaches the swing recipe book.
func WithRecipes(b *recipe.Book) Option { return func(g *Generator) { g.recipes = b } }

// WithHosted sets the resolver for hosted video ids.
func WithHosted(h URIResolver) Option { return func(g *Generator) { g.hosted = h } }

// Generator produces MetricInsights.
type Generator struct {
	reg         *metric.Registry
	llm         LLM
	recipes     *recipe.Book
	hosted      URIResolver
	temperature float32
	maxTokens   int32
	timeout     time.Duration
	notice      string
	log         logger.Logger
}

// New creates a Generator. A nil llm always yields defaults.
func New(reg *metric.Registry, llm LLM, opts ...Option) *Generator {
	g := &Generator{
		reg:         reg,
		llm:         llm,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
		timeout:     DefaultTimeout,
		notice:      DefaultNotice,
		log:         logger.Named("insight"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate never fails; model errors degrade to default insights.
func (g *Generator) Generate(ctx context.Context, req Request) model.MetricInsights {
	key := g.reg.Canonical(req.Metric)
	score := req.Analysis.Metrics[key]
	if v, ok := req.Analysis.Metrics[req.Metric]; ok {
		score = v
	}
	defaults := Defaults(g.reg, g.recipes, key, score)

	out := defaults
	if g.llm != nil {
		if got, ok := g.ask(ctx, req, key, score); ok {
			out = merge(got, defaults)
		}
	}

	if gated(req) {
		out.TechnicalBreakdown = prepend(g.notice, out.TechnicalBreakdown)
		out.Recommendations = prepend(g.notice, out.Recommendations)
	}
	metrics.RecordInsight(out.Source)
	return out
}

func (g *Generator) ask(ctx context.Context, req Request, key string, score int) (model.MetricInsights, bool) {
	llmReq := model.LLMRequest{
		Op:          op,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
		Timeout:     g.timeout,
	}
	switch {
	case req.Video != nil:
		llmReq.Video = req.Video
	case req.Analysis.Video.Kind == model.VideoHosted && g.hosted != nil:
		if uri, err := g.hosted.URI(req.Analysis.Video.HostedID); err == nil {
			llmReq.VideoURI = uri
		}
	}

	in := prompt.InsightInput{
		MetricKey: key,
		Score:     score,
		Overall:   req.Analysis.OverallScore,
		Club:      req.Analysis.Club,
		HasVideo:  llmReq.Video != nil || llmReq.VideoURI != "",
	}
	if e, ok := g.recipes.Lookup(key); ok {
		in.Recipe = &e
	}
	llmReq.Prompt = prompt.Insight(g.reg, in)

	text, err := g.llm.Generate(ctx, llmReq)
	if err != nil {
		g.log.Warn(ctx, "insight generation failed, using defaults",
			logger.String("metric", key), logger.Error(err))
		return model.MetricInsights{}, false
	}
	got, err := parse.Insights(text)
	if err != nil {
		g.log.Warn(ctx, "insight response unparseable, using defaults",
			logger.String("metric", key), logger.Error(err))
		got = Defaults(g.reg, g.recipes, key, score)
	} else {
		got.Source = model.InsightFromLLM
	}
	if strings.Contains(text, prompt.VideoUnclear) && !contains(got.TechnicalBreakdown, prompt.VideoUnclear) {
		got.TechnicalBreakdown = prepend(prompt.VideoUnclear, got.TechnicalBreakdown)
	}
	got.Metric = key
	return got, true
}

// gated reports whether the unlock notice applies.
func gated(req Request) bool {
	o := req.Analysis.Ownership
	return o != "" && o != model.OwnerSelf && !req.Authenticated
}

func merge(got, defaults model.MetricInsights) model.MetricInsights {
	if len(got.GoodAspects) == 0 {
		got.GoodAspects = defaults.GoodAspects
	}
	if len(got.ImprovementAreas) == 0 {
		got.ImprovementAreas = defaults.ImprovementAreas
	}
	if len(got.TechnicalBreakdown) == 0 {
		got.TechnicalBreakdown = defaults.TechnicalBreakdown
	}
	if len(got.Recommendations) == 0 {
		got.Recommendations = defaults.Recommendations
	}
	if len(got.FeelTips) == 0 {
		got.FeelTips = defaults.FeelTips
	}
	return got
}

func contains(list []string, needle string) bool {
	for _, s := range list {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

func prepend(s string, list []string) []string {
	return append([]string{s}, list...)
}
