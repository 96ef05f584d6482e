package scope

import (
	rbt "github.com/emirpasic/gods/trees/redblacktree"

	"github.com/kievzenit/izc/internal/ast"
)

// Scope maps names to declarations. Names are ordered byte-wise, lookups fall
// back to the parent chain.
type Scope struct {
	parent *Scope
	decls  *rbt.Tree
}

func New(parent *Scope) *Scope {
	return &Scope{
		parent: parent,
		decls:  rbt.NewWithStringComparator(),
	}
}

// Add inserts decl unless this scope already holds its name.
func (s *Scope) Add(decl ast.Decl) bool {
	name := decl.DeclName()
	if _, found := s.decls.Get(name); found {
		return false
	}

	s.decls.Put(name, decl)
	return true
}

func (s *Scope) Find(name string) (ast.Decl, bool) {
	if value, found := s.decls.Get(name); found {
		return value.(ast.Decl), true
	}

	if s.parent != nil {
		return s.parent.Find(name)
	}

	return nil, false
}

func (s *Scope) Parent() *Scope {
	return s.parent
}

func (s *Scope) Len() int {
	return s.decls.Size()
}

// Names lists the names declared directly in s.
func (s *Scope) Names() []string {
	keys := s.decls.Keys()
	names := make([]string, len(keys))
	for i, key := range keys {
		names[i] = key.(string)
	}

	return names
}
