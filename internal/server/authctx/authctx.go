package authctx

import (
	"context"

	"github.com/Limense/cochera-management-system-sub000/internal/domain"
)

type contextKey string

const operatorContextKey contextKey = "currentOperator"

// Operator is the authenticated booth operator for the current request.
// Identity issuance is external; this is just the decoded claim set.
type Operator struct {
	ID   int64
	Name string
	Role domain.OperatorRole
}

func WithOperator(ctx context.Context, op Operator) context.Context {
	return context.WithValue(ctx, operatorContextKey, op)
}

func FromContext(ctx context.Context) *Operator {
	val, ok := ctx.Value(operatorContextKey).(Operator)
	if !ok {
		return nil
	}
	return &val
}
