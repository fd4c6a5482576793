package gen

import "go.uber.org/zap"

// Context carries the settings of one generation run: the MDL version to
// target, the owning generator and a logger. It is created once per run and
// passed to every emission operation.
type Context struct {
	version Version
	gen     *Generator
	logger  *zap.Logger
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithVersion targets a specific MDL version. The default is
// [VersionLatest].
func WithVersion(v Version) ContextOption {
	return func(c *Context) { c.version = v }
}

// WithLogger attaches a logger to the generation run. The default is a nop
// logger.
func WithLogger(l *zap.Logger) ContextOption {
	return func(c *Context) { c.logger = l }
}

// NewContext returns a Context bound to g.
func NewContext(g *Generator, opts ...ContextOption) *Context {
	c := &Context{
		version: VersionLatest,
		gen:     g,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Version returns the targeted MDL version.
func (c *Context) Version() Version { return c.version }

// Generator returns the generator owning this run.
func (c *Context) Generator() *Generator { return c.gen }

// Logger returns the run's logger, never nil.
func (c *Context) Logger() *zap.Logger { return c.logger }
