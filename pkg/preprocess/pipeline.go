package preprocess

import "github.com/leapstack-labs/snowduck/pkg/ast"

// Pass is one rewrite step. Passes mutate the statement in place.
type Pass struct {
	Name  string
	Apply func(ast.Stmt, *Session) error
}

// Passes returns the rewrite pipeline in execution order. The order is
// load-bearing: variable substitution must run before anything inspects
// literals, and the generic function remap runs last so earlier passes see
// original Snowflake names.
func Passes() []Pass {
	return []Pass{
		{Name: "variables", Apply: substituteVariables},
		{Name: "identifiers", Apply: resolveIdentifierCalls},
		{Name: "info-schema", Apply: rewriteInfoSchema},
		{Name: "session-info", Apply: foldSessionInfo},
		{Name: "system", Apply: foldBootstrapRequest},
		{Name: "semi-structured", Apply: rewriteSemiStructured},
		{Name: "generators", Apply: rewriteGenerators},
		{Name: "sequences", Apply: rewriteSequences},
		{Name: "operators", Apply: rewriteBitwiseXor},
		{Name: "regexp", Apply: rewriteRegexpReplace},
		{Name: "dates", Apply: coerceDateLiterals},
		{Name: "functions", Apply: remapFunctions},
	}
}

// Apply runs the full pipeline over a statement.
func Apply(stmt ast.Stmt, sess *Session) error {
	for _, pass := range Passes() {
		if err := pass.Apply(stmt, sess); err != nil {
			return err
		}
	}
	return nil
}
