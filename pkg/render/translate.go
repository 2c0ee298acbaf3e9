package render

import (
	"github.com/leapstack-labs/snowduck/pkg/ast"
	"github.com/leapstack-labs/snowduck/pkg/preprocess"
)

// Translator runs the rewrite pipeline and renders DuckDB SQL, memoizing
// the rendered strings per (source SQL, session shape). Only the SQL text
// is cached; session side effects are the caller's responsibility and run
// on every execution.
type Translator struct {
	cache *cache
}

// NewTranslator returns a Translator with the given cache capacity.
// Capacity zero or below selects DefaultCacheSize.
func NewTranslator(capacity int) *Translator {
	return &Translator{cache: newCache(capacity)}
}

// Translate rewrites stmt for the session and renders it as DuckDB SQL.
// Statements carrying bind placeholders or $variable references bypass the
// cache: placeholders keep parameter ordinals private to the execution, and
// variables are substituted from mutable session state.
func (t *Translator) Translate(stmt ast.Stmt, sess *preprocess.Session) ([]string, error) {
	key := t.key(stmt, sess)
	cacheable := key.SQL != "" && !ast.HasPlaceholders(stmt) && !ast.HasSessionVars(stmt)
	if cacheable {
		if sql, ok := t.cache.get(key); ok {
			return sql, nil
		}
	}
	if err := preprocess.Apply(stmt, sess); err != nil {
		return nil, err
	}
	sql, err := Statements(stmt, sess)
	if err != nil {
		return nil, err
	}
	if cacheable {
		t.cache.put(key, sql)
	}
	return sql, nil
}

// ClearCache drops every memoized translation.
func (t *Translator) ClearCache() {
	t.cache.clear()
}

// CacheSize reports the number of memoized translations.
func (t *Translator) CacheSize() int {
	return t.cache.size()
}

func (t *Translator) key(stmt ast.Stmt, sess *preprocess.Session) Key {
	return Key{
		SQL:            ast.RawSQL(stmt),
		Database:       sess.Database,
		Schema:         sess.Schema,
		Role:           sess.Role,
		Warehouse:      sess.Warehouse,
		AccountCatalog: sess.AccountCatalog,
		InfoSchema:     sess.InfoSchema,
	}
}
