package query

import (
	"fmt"
	"strings"
	"time"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Condition is a SQL WHERE fragment with positional parameters.
type Condition struct {
	Clause string
	Params []any
}

// Declarations returns the AIP-160 identifiers a filter may reference.
func (r Resource) Declarations() (*filtering.Declarations, error) {
	opts := []filtering.DeclarationOption{filtering.DeclareStandardFunctions()}
	for _, f := range r.Fields {
		opts = append(opts, filtering.DeclareIdent(f.Name, f.Type.filterType()))
	}
	return filtering.NewDeclarations(opts...)
}

func (t FieldType) filterType() *expr.Type {
	switch t {
	case TypeBool:
		return filtering.TypeBool
	case TypeTimestamp:
		return filtering.TypeTimestamp
	default:
		return filtering.TypeString
	}
}

func (r Resource) filterCondition(filter string) (Condition, error) {
	decls, err := r.Declarations()
	if err != nil {
		return Condition{}, fmt.Errorf("create declarations: %w", err)
	}
	parsed, err := filtering.ParseFilterString(filter, decls)
	if err != nil {
		return Condition{}, fmt.Errorf("parse filter: %w", err)
	}
	if parsed.CheckedExpr == nil {
		return Condition{}, nil
	}
	return r.translateExpr(parsed.CheckedExpr.GetExpr())
}

func (r Resource) translateExpr(e *expr.Expr) (Condition, error) {
	if e == nil {
		return Condition{}, nil
	}
	switch kind := e.GetExprKind().(type) {
	case *expr.Expr_CallExpr:
		return r.translateCall(kind.CallExpr)
	case *expr.Expr_IdentExpr:
		// A bare boolean identifier such as "free" means free = true.
		field, ok := r.field(kind.IdentExpr.GetName())
		if !ok || field.Type != TypeBool {
			return Condition{}, fmt.Errorf("unsupported identifier: %s", kind.IdentExpr.GetName())
		}
		return Condition{Clause: field.Column + " = ?", Params: []any{true}}, nil
	default:
		return Condition{}, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

func (r Resource) translateCall(call *expr.Expr_Call) (Condition, error) {
	switch call.GetFunction() {
	case filtering.FunctionAnd, "_&&_":
		return r.translateJoin(call.GetArgs(), "AND")
	case filtering.FunctionOr, "_||_":
		return r.translateJoin(call.GetArgs(), "OR")
	case filtering.FunctionNot, "!_":
		if len(call.GetArgs()) != 1 {
			return Condition{}, fmt.Errorf("NOT requires 1 argument")
		}
		inner, err := r.translateExpr(call.GetArgs()[0])
		if err != nil {
			return Condition{}, err
		}
		return Condition{Clause: "NOT (" + inner.Clause + ")", Params: inner.Params}, nil
	case filtering.FunctionEquals, "_==_":
		return r.translateComparison(call.GetArgs(), "=")
	case filtering.FunctionNotEquals, "_!=_":
		return r.translateComparison(call.GetArgs(), "!=")
	case filtering.FunctionLessThan, "_<_":
		return r.translateComparison(call.GetArgs(), "<")
	case filtering.FunctionLessEquals, "_<=_":
		return r.translateComparison(call.GetArgs(), "<=")
	case filtering.FunctionGreaterThan, "_>_":
		return r.translateComparison(call.GetArgs(), ">")
	case filtering.FunctionGreaterEquals, "_>=_":
		return r.translateComparison(call.GetArgs(), ">=")
	default:
		return Condition{}, fmt.Errorf("unsupported function: %s", call.GetFunction())
	}
}

func (r Resource) translateJoin(args []*expr.Expr, op string) (Condition, error) {
	if len(args) != 2 {
		return Condition{}, fmt.Errorf("%s requires 2 arguments", op)
	}
	left, err := r.translateExpr(args[0])
	if err != nil {
		return Condition{}, err
	}
	right, err := r.translateExpr(args[1])
	if err != nil {
		return Condition{}, err
	}
	return Condition{
		Clause: fmt.Sprintf("(%s %s %s)", left.Clause, op, right.Clause),
		Params: append(left.Params, right.Params...),
	}, nil
}

func (r Resource) translateComparison(args []*expr.Expr, op string) (Condition, error) {
	if len(args) != 2 {
		return Condition{}, fmt.Errorf("comparison requires 2 arguments")
	}
	ident, ok := args[0].GetExprKind().(*expr.Expr_IdentExpr)
	if !ok {
		return Condition{}, fmt.Errorf("expected identifier, got %T", args[0].GetExprKind())
	}
	field, ok := r.field(ident.IdentExpr.GetName())
	if !ok {
		return Condition{}, fmt.Errorf("unknown field: %s", ident.IdentExpr.GetName())
	}
	value, err := extractValue(args[1])
	if err != nil {
		return Condition{}, err
	}
	return Condition{
		Clause: fmt.Sprintf("%s %s ?", field.Column, op),
		Params: []any{value},
	}, nil
}

func extractValue(e *expr.Expr) (any, error) {
	switch kind := e.GetExprKind().(type) {
	case *expr.Expr_IdentExpr:
		switch kind.IdentExpr.GetName() {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, fmt.Errorf("expected constant, got identifier %s", kind.IdentExpr.GetName())
	case *expr.Expr_ConstExpr:
		return extractConstValue(kind.ConstExpr)
	case *expr.Expr_CallExpr:
		if kind.CallExpr.GetFunction() == filtering.FunctionTimestamp && len(kind.CallExpr.GetArgs()) == 1 {
			return extractTimestampValue(kind.CallExpr.GetArgs()[0])
		}
		return nil, fmt.Errorf("unsupported function in value position: %s", kind.CallExpr.GetFunction())
	default:
		return nil, fmt.Errorf("expected constant or timestamp, got %T", kind)
	}
}

func extractConstValue(c *expr.Constant) (any, error) {
	switch kind := c.GetConstantKind().(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_DoubleValue:
		return kind.DoubleValue, nil
	case *expr.Constant_BoolValue:
		return kind.BoolValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}

func extractTimestampValue(e *expr.Expr) (string, error) {
	constant, ok := e.GetExprKind().(*expr.Expr_ConstExpr)
	if !ok {
		return "", fmt.Errorf("timestamp argument must be a constant string")
	}
	value, ok := constant.ConstExpr.GetConstantKind().(*expr.Constant_StringValue)
	if !ok {
		return "", fmt.Errorf("timestamp argument must be a string")
	}
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(value.StringValue))
	if err != nil {
		return "", fmt.Errorf("invalid timestamp format: %s", value.StringValue)
	}
	return FormatTimestamp(t), nil
}
