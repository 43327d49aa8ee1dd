package filter

import (
	"maps"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/trbridge/bridge"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
	envPool    *sync.Pool
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache[CompiledFilter](size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		helperFuncs: createHelperFunctions(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.envPool = &sync.Pool{
		New: func() any {
			return make(map[string]any, len(c.helperFuncs)+16)
		},
	}

	return c
}

// exprCompiler implements Compiler for expr-based filters
type exprCompiler struct {
	helperFuncs map[string]any
	cache       *lruCache[CompiledFilter]
	envPool     *sync.Pool
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// Type-check against a sample record so unknown fields fail early
	program, err := expr.Compile(expression,
		expr.Env(c.environment(bridge.Record{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		helpers:    c.helperFuncs,
		envPool:    c.envPool,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

func (c *exprCompiler) environment(record bridge.Record) map[string]any {
	env := make(map[string]any, len(c.helperFuncs)+16)
	fillEnvironment(env, c.helperFuncs, record)
	return env
}

// Evaluate evaluates the filter against a torrent. Runtime errors count as no match.
func (f *exprFilter) Evaluate(record bridge.Record) bool {
	env := f.envPool.Get().(map[string]any)
	defer func() {
		clear(env)
		f.envPool.Put(env)
	}()

	fillEnvironment(env, f.helpers, record)

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false
	}

	// Result is guaranteed to be bool due to AsBool() option during compilation
	return result.(bool)
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// statusNames exposes the status codes as constants inside expressions.
var statusNames = map[string]bridge.StatusCode{
	"Stopped":         bridge.StatusStopped,
	"CheckPending":    bridge.StatusCheckPending,
	"Checking":        bridge.StatusChecking,
	"DownloadPending": bridge.StatusDownloadPending,
	"Downloading":     bridge.StatusDownloading,
	"SeedPending":     bridge.StatusSeedPending,
	"Seeding":         bridge.StatusSeeding,
}

// createHelperFunctions creates the static helper functions available to every expression
func createHelperFunctions() map[string]any {
	funcs := make(map[string]any, 16)

	// String helpers, case-insensitive. contains/startsWith/endsWith are
	// reserved operators in expr and stay case-sensitive.
	funcs["hasText"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	funcs["hasPrefix"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	funcs["hasSuffix"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	funcs["lower"] = strings.ToLower
	funcs["upper"] = strings.ToUpper

	// Size helpers, in bytes
	funcs["KiB"] = func(n float64) float64 { return n * (1 << 10) }
	funcs["MiB"] = func(n float64) float64 { return n * (1 << 20) }
	funcs["GiB"] = func(n float64) float64 { return n * (1 << 30) }

	for name, code := range statusNames {
		funcs[name] = int(code)
	}

	return funcs
}

// fillEnvironment writes the helpers and record fields into env
func fillEnvironment(env map[string]any, helpers map[string]any, record bridge.Record) {
	maps.Copy(env, helpers)

	env["Torrent"] = record
	env["ID"] = record.ID
	env["Name"] = record.Name
	env["Status"] = int(record.Status)
	env["StatusName"] = record.Status.String()
	env["PercentDone"] = record.PercentDone
	env["SizeWhenDone"] = record.SizeWhenDone
	env["RateDownload"] = record.RateDownload
	env["DownloadDir"] = record.DownloadDir

	env["isComplete"] = func() bool { return record.PercentDone >= 1 }
	env["isActive"] = func() bool {
		return record.Status == bridge.StatusDownloading || record.Status == bridge.StatusSeeding
	}
	env["inDir"] = func(dir string) bool {
		dir = strings.TrimSuffix(dir, "/")
		return record.DownloadDir == dir || strings.HasPrefix(record.DownloadDir, dir+"/")
	}
}
