package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

const allowQuery = "data.login.authz.allow"

// DefaultRolePolicy gates the admin probe on the Admin role. Methods absent from
// required_roles are open to any authenticated caller.
const DefaultRolePolicy = `package login.authz

default allow := false

required_roles := {
	"/login.admin.v1.AdminService/GetData": ["Admin"],
}

allow if {
	not required_roles[input.method]
}

allow if {
	some role in required_roles[input.method]
	role in input.roles
}
`

// RoleEvaluator evaluates role requirements with an in-process OPA Rego query prepared once.
type RoleEvaluator struct {
	query rego.PreparedEvalQuery
}

var _ Authorizer = (*RoleEvaluator)(nil)

// NewRoleEvaluator compiles policy (DefaultRolePolicy when empty) and prepares the allow query.
func NewRoleEvaluator(ctx context.Context, policy string) (*RoleEvaluator, error) {
	if policy == "" {
		policy = DefaultRolePolicy
	}
	compiler, err := ast.CompileModules(map[string]string{"authz.rego": policy})
	if err != nil {
		return nil, fmt.Errorf("compile role policy: %w", err)
	}
	query, err := rego.New(
		rego.Query(allowQuery),
		rego.Compiler(compiler),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare role policy: %w", err)
	}
	return &RoleEvaluator{query: query}, nil
}

// Allow evaluates the policy for method and roles. Undefined results deny.
func (e *RoleEvaluator) Allow(ctx context.Context, method string, roles []string) (bool, error) {
	rs, err := e.query.Eval(ctx, rego.EvalInput(buildInput(method, roles)))
	if err != nil {
		return false, fmt.Errorf("eval role policy: %w", err)
	}
	return rs.Allowed(), nil
}

// HealthCheck verifies the prepared query still evaluates. Returns nil on success.
func (e *RoleEvaluator) HealthCheck(ctx context.Context) error {
	rs, err := e.query.Eval(ctx, rego.EvalInput(buildInput("/grpc.health.v1.Health/Check", nil)))
	if err != nil {
		return fmt.Errorf("eval role policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return errors.New("policy query returned no result")
	}
	return nil
}

func buildInput(method string, roles []string) map[string]interface{} {
	rs := make([]interface{}, 0, len(roles))
	for _, r := range roles {
		rs = append(rs, r)
	}
	return map[string]interface{}{
		"method": method,
		"roles":  rs,
	}
}
