package pipeline

import (
	"maps"
	"regexp"
)

// Transform step identifiers understood by the engine bridge.
const (
	StepTranspile   = "transpile"
	StepLint        = "lint"
	StepFile        = "file"
	StepExtract     = "extract"
	StepStyleInject = "style-inject"
	StepCSS         = "css"
	StepPostCSS     = "postcss"
	StepHotReload   = "hot-reload"
)

// Stage groups independently registered rules. Within a stage the first
// matching rule wins; stages contribute to a file's chain in declared order.
type Stage int

const (
	StagePrimary Stage = iota
	StageAnalysis
)

var stages = []Stage{StagePrimary, StageAnalysis}

func (s Stage) String() string {
	if s == StageAnalysis {
		return "analysis"
	}
	return "primary"
}

// TransformStep is one source-to-artifact conversion.
type TransformStep struct {
	ID      string         `yaml:"id"`
	Options map[string]any `yaml:"options,omitempty"`
}

func (s TransformStep) clone() TransformStep {
	if s.Options != nil {
		s.Options = maps.Clone(s.Options)
	}
	return s
}

// TransformRule pairs a file predicate with the chain run for matching files.
// Chain is in execution order; the last step produces the module's final form.
type TransformRule struct {
	Name    string
	Stage   Stage
	Match   *regexp.Regexp
	Exclude *regexp.Regexp
	Chain   []TransformStep
}

// Matches reports whether path is selected by the rule.
func (r TransformRule) Matches(path string) bool {
	if r.Match == nil || !r.Match.MatchString(path) {
		return false
	}
	return r.Exclude == nil || !r.Exclude.MatchString(path)
}

func (r TransformRule) clone() TransformRule {
	chain := make([]TransformStep, len(r.Chain))
	for i, s := range r.Chain {
		chain[i] = s.clone()
	}
	r.Chain = chain
	return r
}

// MarshalYAML renders the regexps as their source text.
func (r TransformRule) MarshalYAML() (any, error) {
	view := struct {
		Name    string          `yaml:"name"`
		Stage   string          `yaml:"stage"`
		Match   string          `yaml:"match"`
		Exclude string          `yaml:"exclude,omitempty"`
		Chain   []TransformStep `yaml:"chain"`
	}{
		Name:  r.Name,
		Stage: r.Stage.String(),
		Chain: r.Chain,
	}
	if r.Match != nil {
		view.Match = r.Match.String()
	}
	if r.Exclude != nil {
		view.Exclude = r.Exclude.String()
	}
	return view, nil
}

// Registry is the ordered list of transform rules.
type Registry []TransformRule

// RuleFor returns the first rule of stage that selects path.
func (reg Registry) RuleFor(stage Stage, path string) (TransformRule, bool) {
	for _, r := range reg {
		if r.Stage == stage && r.Matches(path) {
			return r, true
		}
	}
	return TransformRule{}, false
}

// ChainFor returns the full chain applied to path: the winning rule of each
// stage, concatenated in stage order.
func (reg Registry) ChainFor(path string) []TransformStep {
	var chain []TransformStep
	for _, stage := range stages {
		if r, ok := reg.RuleFor(stage, path); ok {
			chain = append(chain, r.Chain...)
		}
	}
	return chain
}

// Index returns the position of the named rule, or -1.
func (reg Registry) Index(name string) int {
	for i, r := range reg {
		if r.Name == name {
			return i
		}
	}
	return -1
}

func (reg Registry) clone() Registry {
	out := make(Registry, len(reg))
	for i, r := range reg {
		out[i] = r.clone()
	}
	return out
}

// Rule names used by the default registry.
const (
	RuleScript     = "script"
	RuleLint       = "lint"
	RuleAsset      = "asset"
	RuleStylesheet = "stylesheet"
	RuleHotScript  = "hot-script"
)

func defaultRegistry(transpile, css map[string]any) Registry {
	return Registry{
		{
			Name:    RuleScript,
			Stage:   StagePrimary,
			Match:   regexp.MustCompile(`\.(js|jsx)$`),
			Exclude: regexp.MustCompile(DependencyRoot),
			Chain:   []TransformStep{{ID: StepTranspile, Options: transpile}},
		},
		{
			Name:    RuleLint,
			Stage:   StageAnalysis,
			Match:   regexp.MustCompile(`\.(js|jsx)$`),
			Exclude: regexp.MustCompile(DependencyRoot + `|\.spec\.js`),
			Chain:   []TransformStep{{ID: StepLint}},
		},
		{
			Name:  RuleAsset,
			Stage: StagePrimary,
			Match: regexp.MustCompile(`\.(eot|woff2?|ttf|svg|png)$`),
			Chain: []TransformStep{{ID: StepFile}},
		},
		{
			Name:  RuleStylesheet,
			Stage: StagePrimary,
			Match: regexp.MustCompile(`\.css$`),
			Chain: []TransformStep{
				{ID: StepPostCSS},
				{ID: StepCSS, Options: css},
				{ID: StepExtract, Options: map[string]any{"fallback": StepStyleInject}},
			},
		},
	}
}
