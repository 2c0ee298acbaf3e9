package ast

// Rewriter applies hooks to every expression and table reference of a
// statement. The Expr hook runs bottom-up: children are rewritten before
// the parent node is offered to the hook. Either hook may be nil.
type Rewriter struct {
	Expr  func(Expr) Expr
	Table func(TableRef) TableRef
}

// RewriteStmt rewrites a statement in place and returns it.
func (r *Rewriter) RewriteStmt(s Stmt) Stmt {
	switch st := s.(type) {
	case *SelectStmt:
		r.rewriteSelect(st)
	case *InsertStmt:
		for _, row := range st.Values {
			for i := range row {
				row[i] = r.rewriteExpr(row[i])
			}
		}
		if st.Query != nil {
			r.rewriteSelect(st.Query)
		}
	case *UpdateStmt:
		for i := range st.Set {
			st.Set[i].Value = r.rewriteExpr(st.Set[i].Value)
		}
		st.From = r.rewriteTableList(st.From)
		st.Where = r.rewriteExpr(st.Where)
	case *DeleteStmt:
		st.Using = r.rewriteTableList(st.Using)
		st.Where = r.rewriteExpr(st.Where)
	case *MergeStmt:
		st.Source = r.rewriteTable(st.Source)
		st.On = r.rewriteExpr(st.On)
		for i := range st.Clauses {
			c := &st.Clauses[i]
			c.Condition = r.rewriteExpr(c.Condition)
			for j := range c.Set {
				c.Set[j].Value = r.rewriteExpr(c.Set[j].Value)
			}
			for j := range c.Values {
				c.Values[j] = r.rewriteExpr(c.Values[j])
			}
		}
	case *CreateTableStmt:
		for i := range st.Columns {
			st.Columns[i].Default = r.rewriteExpr(st.Columns[i].Default)
		}
		if st.AsQuery != nil {
			r.rewriteSelect(st.AsQuery)
		}
	case *CreateViewStmt:
		if st.Query != nil {
			r.rewriteSelect(st.Query)
		}
	case *SetStmt:
		st.Value = r.rewriteExpr(st.Value)
	case *AlterSessionStmt:
		for i := range st.Params {
			st.Params[i].Value = r.rewriteExpr(st.Params[i].Value)
		}
	}
	return s
}

func (r *Rewriter) rewriteSelect(s *SelectStmt) {
	if s == nil {
		return
	}
	if s.With != nil {
		for _, cte := range s.With.CTEs {
			r.rewriteSelect(cte.Select)
		}
	}
	r.rewriteBody(s.Body)
}

func (r *Rewriter) rewriteBody(b *SelectBody) {
	if b == nil {
		return
	}
	r.rewriteCore(b.Left)
	r.rewriteBody(b.Right)
}

func (r *Rewriter) rewriteCore(c *SelectCore) {
	if c == nil {
		return
	}
	for i := range c.Columns {
		c.Columns[i].Expr = r.rewriteExpr(c.Columns[i].Expr)
	}
	c.From = r.rewriteTableList(c.From)
	c.Where = r.rewriteExpr(c.Where)
	for i := range c.GroupBy {
		c.GroupBy[i] = r.rewriteExpr(c.GroupBy[i])
	}
	c.Having = r.rewriteExpr(c.Having)
	c.Qualify = r.rewriteExpr(c.Qualify)
	for i := range c.OrderBy {
		c.OrderBy[i].Expr = r.rewriteExpr(c.OrderBy[i].Expr)
	}
	c.Limit = r.rewriteExpr(c.Limit)
	c.Offset = r.rewriteExpr(c.Offset)
}

func (r *Rewriter) rewriteTableList(refs []TableRef) []TableRef {
	for i := range refs {
		refs[i] = r.rewriteTable(refs[i])
	}
	return refs
}

func (r *Rewriter) rewriteTable(t TableRef) TableRef {
	if t == nil {
		return nil
	}
	switch tr := t.(type) {
	case *TableName:
		if tr.At != nil && tr.At.Value != nil {
			tr.At.Value = r.rewriteExpr(tr.At.Value)
		}
	case *DerivedTable:
		r.rewriteSelect(tr.Select)
	case *TableFunc:
		if tr.Call != nil {
			if rewritten, ok := r.rewriteExpr(tr.Call).(*FuncCall); ok {
				tr.Call = rewritten
			}
		}
	case *Join:
		tr.Right = r.rewriteTable(tr.Right)
		tr.Condition = r.rewriteExpr(tr.Condition)
	}
	if r.Table != nil {
		return r.Table(t)
	}
	return t
}

//nolint:gocyclo // One arm per node type keeps the traversal obvious.
func (r *Rewriter) rewriteExpr(e Expr) Expr {
	if e == nil {
		return nil
	}
	switch ex := e.(type) {
	case *BinaryExpr:
		ex.Left = r.rewriteExpr(ex.Left)
		ex.Right = r.rewriteExpr(ex.Right)
	case *UnaryExpr:
		ex.Expr = r.rewriteExpr(ex.Expr)
	case *NamedArg:
		ex.Value = r.rewriteExpr(ex.Value)
	case *FuncCall:
		for i := range ex.Args {
			ex.Args[i] = r.rewriteExpr(ex.Args[i])
		}
		ex.Filter = r.rewriteExpr(ex.Filter)
		if ex.Window != nil {
			for i := range ex.Window.PartitionBy {
				ex.Window.PartitionBy[i] = r.rewriteExpr(ex.Window.PartitionBy[i])
			}
			for i := range ex.Window.OrderBy {
				ex.Window.OrderBy[i].Expr = r.rewriteExpr(ex.Window.OrderBy[i].Expr)
			}
		}
	case *CastExpr:
		ex.Expr = r.rewriteExpr(ex.Expr)
	case *CaseExpr:
		ex.Operand = r.rewriteExpr(ex.Operand)
		for i := range ex.Whens {
			ex.Whens[i].Cond = r.rewriteExpr(ex.Whens[i].Cond)
			ex.Whens[i].Then = r.rewriteExpr(ex.Whens[i].Then)
		}
		ex.Else = r.rewriteExpr(ex.Else)
	case *InExpr:
		ex.Expr = r.rewriteExpr(ex.Expr)
		for i := range ex.List {
			ex.List[i] = r.rewriteExpr(ex.List[i])
		}
		if ex.Subquery != nil {
			r.rewriteSelect(ex.Subquery)
		}
	case *BetweenExpr:
		ex.Expr = r.rewriteExpr(ex.Expr)
		ex.Low = r.rewriteExpr(ex.Low)
		ex.High = r.rewriteExpr(ex.High)
	case *IsNullExpr:
		ex.Expr = r.rewriteExpr(ex.Expr)
	case *DistinctFromExpr:
		ex.Left = r.rewriteExpr(ex.Left)
		ex.Right = r.rewriteExpr(ex.Right)
	case *LikeExpr:
		ex.Left = r.rewriteExpr(ex.Left)
		ex.Pattern = r.rewriteExpr(ex.Pattern)
		ex.Escape = r.rewriteExpr(ex.Escape)
	case *ParenExpr:
		ex.Expr = r.rewriteExpr(ex.Expr)
	case *SubqueryExpr:
		r.rewriteSelect(ex.Select)
	case *ExistsExpr:
		r.rewriteSelect(ex.Select)
	case *ListLiteral:
		for i := range ex.Items {
			ex.Items[i] = r.rewriteExpr(ex.Items[i])
		}
	case *IndexExpr:
		ex.Expr = r.rewriteExpr(ex.Expr)
		ex.Index = r.rewriteExpr(ex.Index)
	case *JSONPathExpr:
		ex.Expr = r.rewriteExpr(ex.Expr)
	case *LambdaExpr:
		ex.Body = r.rewriteExpr(ex.Body)
	}
	if r.Expr != nil {
		return r.Expr(e)
	}
	return e
}

// Inspect walks every expression of a statement, calling fn for each.
// Traversal stops early when fn returns false.
func Inspect(s Stmt, fn func(Expr) bool) {
	stopped := false
	r := &Rewriter{Expr: func(e Expr) Expr {
		if !stopped && !fn(e) {
			stopped = true
		}
		return e
	}}
	r.RewriteStmt(s)
}

// HasPlaceholders reports whether the statement contains bind parameters.
func HasPlaceholders(s Stmt) bool {
	found := false
	Inspect(s, func(e Expr) bool {
		if _, ok := e.(*Placeholder); ok {
			found = true
			return false
		}
		return true
	})
	return found
}

// HasSessionVars reports whether the statement references $variables.
func HasSessionVars(s Stmt) bool {
	found := false
	Inspect(s, func(e Expr) bool {
		if _, ok := e.(*SessionVar); ok {
			found = true
			return false
		}
		return true
	})
	return found
}

// RawSQL returns the original source text of a statement.
func RawSQL(s Stmt) string {
	switch st := s.(type) {
	case *SelectStmt:
		return st.Raw
	case *InsertStmt:
		return st.Raw
	case *UpdateStmt:
		return st.Raw
	case *DeleteStmt:
		return st.Raw
	case *MergeStmt:
		return st.Raw
	case *CreateDatabaseStmt:
		return st.Raw
	case *CreateSchemaStmt:
		return st.Raw
	case *CreateTableStmt:
		return st.Raw
	case *CreateViewStmt:
		return st.Raw
	case *CreateStageStmt:
		return st.Raw
	case *DropStmt:
		return st.Raw
	case *TruncateStmt:
		return st.Raw
	case *AlterTableStmt:
		return st.Raw
	case *AlterSessionStmt:
		return st.Raw
	case *UseStmt:
		return st.Raw
	case *SetStmt:
		return st.Raw
	case *UnsetStmt:
		return st.Raw
	case *ShowStmt:
		return st.Raw
	case *DescribeStmt:
		return st.Raw
	case *PutStmt:
		return st.Raw
	case *CopyIntoStmt:
		return st.Raw
	case *BeginStmt:
		return st.Raw
	case *CommitStmt:
		return st.Raw
	case *RollbackStmt:
		return st.Raw
	}
	return ""
}
