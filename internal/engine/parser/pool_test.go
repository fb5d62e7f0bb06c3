package parser

import (
	"sync"
	"testing"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

func TestParserPoolReuse(t *testing.T) {
	lang := sitter.NewLanguage(tree_sitter_javascript.Language())
	pool := NewParserPool(lang)

	sp := pool.Get()
	if pool.Stats() != 1 {
		t.Fatalf("expected 1 active lease, got %d", pool.Stats())
	}

	tree := sp.Parse([]byte(`const model = "gpt-4o";`), nil)
	if tree == nil {
		t.Fatal("expected a parse tree")
	}
	root := tree.RootNode()
	if root == nil || root.HasError() {
		t.Fatalf("expected error-free root node, got hasError=%v", root.HasError())
	}
	tree.Close()

	pool.Put(sp)
	if pool.Stats() != 0 {
		t.Fatalf("expected 0 active leases after Put, got %d", pool.Stats())
	}
}

func TestParserPoolConcurrent(t *testing.T) {
	lang := sitter.NewLanguage(tree_sitter_javascript.Language())
	pool := NewParserPool(lang)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				sp := pool.Get()
				tree := sp.Parse([]byte(`let m = 'claude-3-5-sonnet-20241022';`), nil)
				if tree != nil {
					tree.Close()
				}
				pool.Put(sp)
			}
		}()
	}
	wg.Wait()

	if pool.Stats() != 0 {
		t.Fatalf("expected all leases returned, got %d", pool.Stats())
	}
}
