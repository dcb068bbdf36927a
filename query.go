package propstore

type Operation int

const (
	OpAnd Operation = iota
	OpOr
	OpNot
)

type compositeNode struct {
	op       Operation
	children []QueryNode
	columns  []string
}

type leafNode struct {
	columns []string
}

type query struct {
	root QueryNode
}

func newQuery() Query {
	return &query{}
}

func newCompositeNode(op Operation, columns []string) *compositeNode {
	return &compositeNode{
		op:       op,
		children: make([]QueryNode, 0),
		columns:  columns,
	}
}

func newLeafNode(columns []string) *leafNode {
	return &leafNode{columns: columns}
}

func (n *compositeNode) Evaluate(store Store, schema Schema) bool {
	// Build masks at evaluation time, custom columns may appear at any point
	nodeMask := maskOf(schema, n.columns)
	storeMask := maskOf(schema, store.Columns())

	switch n.op {
	case OpAnd:
		if !storeMask.containsAll(nodeMask) {
			return false
		}
		for _, child := range n.children {
			if !child.Evaluate(store, schema) {
				return false
			}
		}
		return true

	case OpOr:
		if storeMask.containsAny(nodeMask) {
			return true
		}
		for _, child := range n.children {
			if child.Evaluate(store, schema) {
				return true
			}
		}
		return false

	case OpNot:
		if len(n.children) == 0 {
			return storeMask.containsNone(nodeMask)
		}
		for _, child := range n.children {
			if child.Evaluate(store, schema) {
				return false
			}
		}
		return !storeMask.containsAny(nodeMask)
	}
	return false
}

func (n *leafNode) Evaluate(store Store, schema Schema) bool {
	nodeMask := maskOf(schema, n.columns)
	storeMask := maskOf(schema, store.Columns())
	return storeMask.containsAll(nodeMask)
}

func (q *query) And(items ...interface{}) QueryNode {
	columns, children := q.processItems(items...)
	node := newCompositeNode(OpAnd, columns)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) Or(items ...interface{}) QueryNode {
	columns, children := q.processItems(items...)
	node := newCompositeNode(OpOr, columns)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) Not(items ...interface{}) QueryNode {
	columns, children := q.processItems(items...)
	node := newCompositeNode(OpNot, columns)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

// Has matches stores carrying every named column.
func Has(columns ...string) QueryNode {
	return newLeafNode(columns)
}

func (q *query) processItems(items ...interface{}) ([]string, []QueryNode) {
	columns := make([]string, 0)
	children := make([]QueryNode, 0)

	for _, item := range items {
		switch v := item.(type) {
		case string:
			columns = append(columns, v)
		case []string:
			columns = append(columns, v...)
		case Column:
			columns = append(columns, v.Name())
		case QueryNode:
			children = append(children, v)
		}
	}

	return columns, children
}

func (q *query) Evaluate(store Store, schema Schema) bool {
	if q.root == nil {
		return false
	}
	return q.root.Evaluate(store, schema)
}
