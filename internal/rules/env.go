package rules

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// newEnv declares the roll variables and the mod() helper shared by all tier rules.
func newEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("natural", cel.IntType),
		cel.Variable("modifier", cel.IntType),
		cel.Variable("total", cel.IntType),
		cel.Variable("dc", cel.IntType),

		cel.Function("mod",
			cel.Overload("mod_int",
				[]*cel.Type{cel.IntType},
				cel.IntType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					score := val.Value().(int64)
					m := (score - 10) / 2
					if score < 10 && (score-10)%2 != 0 {
						m--
					}
					return types.Int(m)
				}),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return env, nil
}

// compile checks that expr is a boolean CEL expression and plans it.
func compile(env *cel.Env, expr string) (cel.Program, error) {
	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return nil, iss.Err()
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression %q must be boolean, got %s", expr, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	return prg, nil
}
