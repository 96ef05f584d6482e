package scope

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kievzenit/izc/internal/ast"
	"github.com/kievzenit/izc/internal/types"
)

func arg(name string, t types.Type) *ast.ArgumentDecl {
	return &ast.ArgumentDecl{Name: name, Type: t}
}

func TestAddRejectsDuplicates(t *testing.T) {
	s := New(nil)

	first := arg("n", types.Int)
	second := arg("n", types.Bool)

	if !s.Add(first) {
		t.Fatalf("Add(first) = false")
	}
	if s.Add(second) {
		t.Fatalf("Add(second) = true, want false")
	}

	got, ok := s.Find("n")
	if !ok || got != first {
		t.Errorf("Find(n) = %v, want the first declaration", got)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestFindWalksParents(t *testing.T) {
	global := New(nil)
	outer := arg("n", types.Int)
	fn := arg("f", types.NewCallable(types.Int))
	global.Add(outer)
	global.Add(fn)

	inner := New(global)
	shadow := arg("n", types.Bool)
	if !inner.Add(shadow) {
		t.Fatalf("shadowing declaration rejected")
	}

	if got, _ := inner.Find("n"); got != shadow {
		t.Errorf("inner Find(n) = %v, want the shadowing declaration", got)
	}
	if got, _ := inner.Find("f"); got != fn {
		t.Errorf("inner Find(f) = %v, want the global declaration", got)
	}
	if got, _ := global.Find("n"); got != outer {
		t.Errorf("global Find(n) = %v, want the outer declaration", got)
	}
	if _, ok := inner.Find("missing"); ok {
		t.Errorf("Find(missing) succeeded")
	}
	if inner.Parent() != global || global.Parent() != nil {
		t.Errorf("unexpected parent chain")
	}
}

func TestNamesAreOrdered(t *testing.T) {
	s := New(nil)
	for _, name := range []string{"b", "B", "a", "ab", "_x"} {
		s.Add(arg(name, types.Int))
	}

	want := []string{"B", "_x", "a", "ab", "b"}
	if diff := cmp.Diff(want, s.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}
