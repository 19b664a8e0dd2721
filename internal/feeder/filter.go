package feeder

import (
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/WholesumNet/block-feeder/internal/blockkey"
	"github.com/WholesumNet/block-feeder/internal/fault"
)

// Filter is a compiled CEL predicate over an entry. The expression sees
// block, index and size as ints and key as a string. A nil Filter matches
// everything.
type Filter struct {
	expr string
	prog cel.Program
}

// NewFilter compiles expr. An empty expression yields a nil Filter.
func NewFilter(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("block", cel.IntType),
		cel.Variable("index", cel.IntType),
		cel.Variable("size", cel.IntType),
		cel.Variable("key", cel.StringType),
	)
	if err != nil {
		return nil, fault.Configuration(err, "filter environment")
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fault.Configuration(iss.Err(), "compile filter %q", expr)
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fault.Configuration(nil, "filter %q must evaluate to bool, got %s", expr, ast.OutputType())
	}
	prog, err := env.Program(ast)
	if err != nil {
		return nil, fault.Configuration(err, "filter program %q", expr)
	}
	return &Filter{expr: expr, prog: prog}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Match evaluates the filter. Evaluation errors count as no match.
func (f *Filter) Match(key blockkey.Key, payload []byte) bool {
	if f == nil {
		return true
	}
	out, _, err := f.prog.Eval(map[string]any{
		"block": int64(key.Block),
		"index": int64(key.Index),
		"size":  int64(len(payload)),
		"key":   key.String(),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
