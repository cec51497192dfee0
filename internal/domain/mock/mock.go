// Package mock produces fully shaped fallback analyses without a model call.
package mock

import (
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/okian/swingcoach/internal/domain/metric"
	"github.com/okian/swingcoach/internal/domain/model"
	"github.com/okian/swingcoach/internal/domain/scoring"
)

// Sampling parameters.
const (
	baseSkill       = 65.0
	baseSpread      = 6.0
	groupSpread     = 4.0
	minMockScore    = 30
	maxMockScore    = 95
	recommendations = 3
)

type group string

const (
	groupSetup  group = "setup"
	groupSwing  group = "swing"
	groupBody   group = "body"
	groupMental group = "mental"
)

var groupOrder = []group{groupSetup, groupSwing, groupBody, groupMental} //nolint:gochecknoglobals // static table

// Per-group standard deviation; mental scores vary more than physical ones.
var groupStdDev = map[group]float64{ //nolint:gochecknoglobals // static table
	groupSetup:  5,
	groupSwing:  7,
	groupBody:   6,
	groupMental: 10,
}

var clubBase = map[model.ClubType]float64{ //nolint:gochecknoglobals // static table
	model.ClubWood:   -2,
	model.ClubHybrid: 0,
	model.ClubIron:   1,
	model.ClubWedge:  2,
	model.ClubPutter: 3,
}

var clubNudges = map[model.ClubType]map[string]int{ //nolint:gochecknoglobals // static table
	model.ClubWood:   {"swingSpeed": 5, "shallowing": -4},
	model.ClubIron:   {"swingForward": 4},
	model.ClubWedge:  {"grip": 4},
	model.ClubPutter: {"pacing": 5, "focus": 5},
}

func groupOf(c metric.Category) group {
	switch c {
	case metric.CategorySetup:
		return groupSetup
	case metric.CategoryBody:
		return groupBody
	case metric.CategoryMental:
		return groupMental
	default:
		return groupSwing
	}
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithSource seeds the analyzer's random source.
func WithSource(src rand.Source) Option {
	return func(a *Analyzer) {
		if src != nil {
			a.rng = rand.New(src) //nolint:gosec // mock data
		}
	}
}

// Analyzer generates mock analyses.
type Analyzer struct {
	reg *metric.Registry
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates an Analyzer over reg.
func New(reg *metric.Registry, opts ...Option) *Analyzer {
	a := &Analyzer{
		reg: reg,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // mock data
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze returns a mock analysis for the given metadata. Only the score
// fields, recommendations and provenance are set.
func (a *Analyzer) Analyze(meta model.Metadata) model.Analysis {
	a.mu.Lock()
	defer a.mu.Unlock()

	var clubType model.ClubType
	if meta.Club != nil {
		clubType = meta.Club.Type
	}
	base := baseSkill + clubBase[clubType] + a.normal()*baseSpread

	means := make(map[group]float64, len(groupOrder))
	for _, g := range groupOrder {
		means[g] = base + a.normal()*groupSpread
	}

	scores := make(map[string]int)
	for _, m := range a.reg.All() {
		g := groupOf(m.Category)
		v := scoring.Round(means[g] + a.normal()*groupStdDev[g])
		v += clubNudges[clubType][m.Key]
		scores[m.Key] = scoring.Clamp(v, minMockScore, maxMockScore)
	}

	overall, _ := scoring.WeightedOverall(a.reg, scores)
	return model.Analysis{
		OverallScore:    scoring.Redistribute(overall, scores),
		Metrics:         scores,
		Recommendations: a.recommend(scores),
		Source:          model.SourceMock,
	}
}

// normal draws from N(0,1) with the Box-Muller transform.
func (a *Analyzer) normal() float64 {
	u1 := a.rng.Float64()
	for u1 == 0 {
		u1 = a.rng.Float64()
	}
	u2 := a.rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

func (a *Analyzer) recommend(scores map[string]int) []string {
	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if scores[keys[i]] != scores[keys[j]] {
			return scores[keys[i]] < scores[keys[j]]
		}
		return keys[i] < keys[j]
	})

	out := make([]string, 0, recommendations)
	for _, k := range keys {
		if len(out) == recommendations {
			break
		}
		pool := recommendationPool[k]
		if len(pool) == 0 {
			continue
		}
		out = append(out, pool[a.rng.Intn(len(pool))])
	}
	for i := 0; len(out) < recommendations; i++ {
		out = append(out, genericPool[i%len(genericPool)])
	}
	return out
}
