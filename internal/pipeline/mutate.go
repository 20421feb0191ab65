package pipeline

import (
	"regexp"
	"strconv"

	"github.com/wolfeidau/clientpack/internal/minify"
)

const (
	DefaultDevServerHost = "localhost"
	DefaultDevServerPort = 8080
)

// Options selects the mode and supplies the collaborators the mode needs.
type Options struct {
	Mode Mode
	// Probe backs the alias fallback outside production.
	Probe FileProbe
	// Protected is passed unmodified to the Minifier in production.
	Protected minify.ProtectedIdentifierSet
	// DevServerHost and DevServerPort default to localhost:8080.
	DevServerHost string
	DevServerPort int
}

// Build returns the configuration for layout in the selected mode.
func Build(layout Layout, opts Options) Config {
	return Apply(Base(layout), opts)
}

// Apply returns a copy of base with the mode mutations applied. base is
// never modified.
func Apply(base Config, opts Options) Config {
	cfg := base.Clone()
	cfg.Mode = ParseMode(string(opts.Mode))
	cfg.setEnv()

	if cfg.Mode.IsHot() {
		cfg.applyHot(opts)
	}

	if cfg.Mode.IsProduction() {
		cfg.applyProduction(opts)
	} else {
		cfg.applyDevelopment(opts)
	}

	return cfg
}

func (c *Config) setEnv() {
	for i, p := range c.Plugins {
		if env, ok := p.(EnvInliner); ok {
			env.Values[NodeEnvKey] = strconv.Quote(c.Mode.String())
			c.Plugins[i] = env
		}
	}
}

func (c *Config) applyHot(opts Options) {
	host, port := opts.DevServerHost, opts.DevServerPort
	if host == "" {
		host = DefaultDevServerHost
	}
	if port == 0 {
		port = DefaultDevServerPort
	}

	c.Output.FilenameTemplate = HotFilenameTemplate
	c.Output.PublicPath = HotPublicPath(host, port, c.Output.PublicPath)

	var transpile map[string]any
	if r, ok := c.ruleNamed(RuleScript); ok && len(r.Chain) > 0 {
		transpile = r.Chain[0].clone().Options
	}
	hotRule := TransformRule{
		Name:    RuleHotScript,
		Stage:   StagePrimary,
		Match:   regexp.MustCompile(`\.jsx$`),
		Exclude: regexp.MustCompile(DependencyRoot),
		Chain: []TransformStep{
			{ID: StepHotReload},
			{ID: StepTranspile, Options: transpile},
		},
	}
	c.Rules = append(Registry{hotRule}, c.Rules...)

	if i := c.Rules.Index(RuleStylesheet); i >= 0 {
		chain := c.Rules[i].Chain
		if n := len(chain); n > 0 && chain[n-1].ID == StepExtract {
			chain[n-1] = TransformStep{ID: StepStyleInject}
		}
	}

	c.DevServer = &DevServer{
		Host:        host,
		Port:        port,
		Hot:         true,
		Inline:      true,
		ContentBase: "frontend",
		Headers:     map[string]string{"Access-Control-Allow-Origin": "*"},
	}

	plugins := Plugins{NoEmitOnErrors{}, NamedModules{}, HotModuleReplacement{}}
	c.Plugins = append(plugins, c.Plugins.Without(KindStylesheetExtractor)...)
}

func (c *Config) applyDevelopment(opts Options) {
	c.Aliases = c.Aliases.Resolve(c.Mode, opts.Probe)
	c.SourceMap = SourceMapCheap
	c.Output.PathInfo = true
	c.Output.SourceRootTemplate = "[absolute-resource-path]"
}

func (c *Config) applyProduction(opts Options) {
	if i := c.Rules.Index(RuleStylesheet); i >= 0 {
		for j, step := range c.Rules[i].Chain {
			if step.ID == StepCSS && step.Options != nil {
				c.Rules[i].Chain[j].Options["localIdentName"] = prodLocalIdentName
			}
		}
	}

	c.Plugins = append(c.Plugins, Minifier{Protected: opts.Protected})
	c.SourceMap = SourceMapFull
}

func (c *Config) ruleNamed(name string) (TransformRule, bool) {
	if i := c.Rules.Index(name); i >= 0 {
		return c.Rules[i], true
	}
	return TransformRule{}, false
}
