package expr

import (
	"math"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/ast"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
	"github.com/google/cel-go/ext"
)

type lib struct{}

func (lib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		ext.Math(),
		ext.Strings(),
		ext.Lists(),

		cel.Variable("header", cel.StringType),
		cel.Variable("length", cel.IntType),
		cel.Variable("classification", cel.ListType(cel.StringType)),
		cel.Variable("kind", cel.StringType),
		cel.Variable("architecture", cel.StringType),
		cel.Variable("domains", cel.ListType(cel.StringType)),
		cel.Variable("hits", cel.ListType(cel.MapType(cel.StringType, cel.DynType))),

		// `hasAll` macro and function for checking if a list contains every
		// given value.
		// Example: domains.hasAll("KS", "AT").
		cel.Macros(
			cel.ReceiverVarArgMacro("hasAll", hasAllVarArgMacro),
		),
		cel.Function("@hasAll",
			cel.Overload("@hasAll_list_string", []*cel.Type{cel.ListType(cel.StringType), cel.StringType}, cel.BoolType,
				cel.BinaryBinding(func(list, value ref.Val) ref.Val {
					l, ok := list.(traits.Lister)
					if !ok {
						return types.NewErr("hasAll: invalid list")
					}

					return l.Contains(value)
				}),
			),
			cel.Overload("@hasAll_list_list", []*cel.Type{cel.ListType(cel.StringType), cel.ListType(cel.StringType)}, cel.BoolType,
				cel.BinaryBinding(func(list, values ref.Val) ref.Val {
					l, ok := list.(traits.Lister)
					if !ok {
						return types.NewErr("hasAll: invalid list")
					}

					vs, ok := values.(traits.Lister)
					if !ok {
						return types.NewErr("hasAll: invalid values")
					}

					it := vs.Iterator()
					for it.HasNext() == types.True {
						if l.Contains(it.Next()) != types.True {
							return types.False
						}
					}

					return types.True
				}),
			),
		),

		// `countOf` returns the number of occurrences of a value in a list.
		// Example: countOf(domains, "KS") >= 2.
		cel.Function("countOf",
			cel.Overload("count_of_list_string", []*cel.Type{cel.ListType(cel.StringType), cel.StringType}, cel.IntType,
				cel.BinaryBinding(func(list, value ref.Val) ref.Val {
					l, ok := list.(traits.Lister)
					if !ok {
						return types.NewErr("countOf: invalid list")
					}

					var n int64

					it := l.Iterator()
					for it.HasNext() == types.True {
						if it.Next().Equal(value) == types.True {
							n++
						}
					}

					return types.Int(n)
				}),
			),
		),
	}
}

func (lib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}

//nolint:ireturn // Following CEL's function signature.
func hasAllVarArgMacro(meh cel.MacroExprFactory, target ast.Expr, args []ast.Expr) (ast.Expr, *cel.Error) {
	switch len(args) {
	case 0:
		return nil, meh.NewError(target.ID(), "hasAll() requires at least one argument")
	case 1:
		return meh.NewCall("@hasAll", target, args[0]), nil
	default:
		return meh.NewCall("@hasAll", target, meh.NewList(args...)), nil
	}
}

// ConvertToCELValue converts a Go value to a CEL value.
// Handles common decoded YAML and JSON types and returns null for
// unsupported types.
//
//nolint:ireturn // Following CEL's function signature.
func ConvertToCELValue(value any) ref.Val {
	switch v := value.(type) {
	case nil:
		return types.NullValue

	case bool:
		return types.Bool(v)

	case int:
		return types.Int(v)

	case int32:
		return types.Int(int64(v))

	case int64:
		return types.Int(v)

	case uint64:
		// Check for overflow when converting to int64.
		if v > math.MaxInt64 {
			return types.Double(float64(v))
		}

		return types.Int(int64(v))

	case float64:
		return types.Double(v)

	case string:
		return types.String(v)

	case []string:
		return types.NewStringList(types.DefaultTypeAdapter, v)

	case []any:
		celValues := make([]ref.Val, len(v))
		for i, item := range v {
			celValues[i] = ConvertToCELValue(item)
		}

		return types.NewDynamicList(types.DefaultTypeAdapter, celValues)

	case map[string]any:
		celMap := make(map[ref.Val]ref.Val, len(v))
		for key, val := range v {
			celMap[types.String(key)] = ConvertToCELValue(val)
		}

		return types.NewDynamicMap(types.DefaultTypeAdapter, celMap)

	default:
		return types.NullValue
	}
}
