package nav

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/feishukit/feishukit/pkg/models"
	"github.com/feishukit/feishukit/pkg/store/memstore"
)

// chainStore builds a straight line n0 → n1 → ... → n(depth-1) in one space.
func chainStore(depth int) *memstore.Store {
	gs := memstore.NewGraph()
	gs.AddSpace(space1, "Engineering")
	parent := ""
	for i := 0; i < depth; i++ {
		id := fmt.Sprintf("n%d", i)
		gs.Add(space1, parent, models.Descriptor{ID: id, Name: fmt.Sprintf("Node %d", i), RawType: models.TypeDocx})
		parent = id
	}
	return gs
}

func TestAncestorChain_AcyclicDepths(t *testing.T) {
	for _, depth := range []int{1, 2, 5, 12} {
		t.Run(fmt.Sprintf("depth=%d", depth), func(t *testing.T) {
			gs := chainStore(depth)
			e := New(Config{Graph: gs})
			leaf := fmt.Sprintf("n%d", depth-1)

			chain, err := e.AncestorChain(context.Background(), leaf)
			if err != nil {
				t.Fatalf("AncestorChain: %v", err)
			}
			if gs.Calls.GetNode != depth {
				t.Errorf("get_node calls = %d, want %d", gs.Calls.GetNode, depth)
			}
			if len(chain) != depth {
				t.Fatalf("chain length = %d, want %d", len(chain), depth)
			}
			for i, el := range chain {
				if el.ID != fmt.Sprintf("n%d", i) {
					t.Errorf("chain[%d] = %s, want n%d (root first)", i, el.ID, i)
				}
				if el.Mode != models.ModeGraph {
					t.Errorf("chain[%d] mode = %s", i, el.Mode)
				}
			}
		})
	}
}

func TestAncestorChain_CycleTerminates(t *testing.T) {
	gs := chainStore(3)
	// n0's parent points back at n2: n2 → n1 → n0 → n2.
	gs.SetParent("n0", "n2")
	e := New(Config{Graph: gs})

	chain, err := e.AncestorChain(context.Background(), "n2")
	if err != nil {
		t.Fatalf("a cycle is not an error: %v", err)
	}
	if len(chain) == 0 {
		t.Fatal("expected a non-empty prefix")
	}
	if chain[len(chain)-1].ID != "n2" {
		t.Errorf("leaf = %s, want n2", chain[len(chain)-1].ID)
	}
	if gs.Calls.GetNode != 3 {
		t.Errorf("get_node calls = %d, want 3", gs.Calls.GetNode)
	}
}

func TestAncestorChain_SelfLoop(t *testing.T) {
	gs := chainStore(1)
	gs.SetParent("n0", "n0")
	e := New(Config{Graph: gs})

	chain, err := e.AncestorChain(context.Background(), "n0")
	if err != nil || len(chain) != 1 {
		t.Errorf("chain = %v, err = %v", chain, err)
	}
}

func TestAncestorChain_BrokenLink(t *testing.T) {
	gs := chainStore(4)
	cause := errors.New("permission denied")
	gs.FailGetNode("n1", cause)
	e := New(Config{Graph: gs})

	chain, err := e.AncestorChain(context.Background(), "n3")
	if !errors.Is(err, ErrBrokenAncestorLink) {
		t.Fatalf("err = %v, want ErrBrokenAncestorLink", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("cause should be kept in the chain: %v", err)
	}
	var be *BrokenLinkError
	if !errors.As(err, &be) {
		t.Fatalf("err type = %T", err)
	}
	if be.NodeID != "n1" {
		t.Errorf("NodeID = %s, want n1", be.NodeID)
	}
	want := []string{"n2", "n3"}
	if len(chain) != len(want) || len(be.Partial) != len(want) {
		t.Fatalf("partial = %v / %v, want %v", chain, be.Partial, want)
	}
	for i, id := range want {
		if chain[i].ID != id {
			t.Errorf("partial[%d] = %s, want %s", i, chain[i].ID, id)
		}
	}
}

func TestJumpToNode(t *testing.T) {
	gs := chainStore(3)
	e := New(Config{Graph: gs})
	ctx := context.Background()

	if err := e.JumpToNode(ctx, "n2"); err != nil {
		t.Fatalf("JumpToNode: %v", err)
	}
	if e.SpaceID() != space1 {
		t.Errorf("space = %q, want %s", e.SpaceID(), space1)
	}
	if e.Pwd() != "/Node 0/Node 1/Node 2" {
		t.Errorf("pwd = %q", e.Pwd())
	}

	gs.FailGetNode("n0", errors.New("gone"))
	before := e.Pwd()
	if err := e.JumpToNode(ctx, "n1"); err == nil {
		t.Fatal("expected error")
	}
	if e.Pwd() != before {
		t.Errorf("failed jump moved to %s", e.Pwd())
	}
}

func TestJumpToNode_EmptyID(t *testing.T) {
	gs := chainStore(2)
	e := New(Config{Graph: gs})
	ctx := context.Background()
	if err := e.JumpToNode(ctx, "n1"); err != nil {
		t.Fatal(err)
	}
	gs.ResetCalls()

	err := e.JumpToNode(ctx, "")
	if !errors.Is(err, ErrBrokenAncestorLink) {
		t.Fatalf("err = %v, want ErrBrokenAncestorLink", err)
	}
	if e.Pwd() != "/Node 0/Node 1" {
		t.Errorf("failed jump moved to %q", e.Pwd())
	}
	if gs.Calls.GetNode != 0 {
		t.Errorf("GetNode calls = %d, want 0", gs.Calls.GetNode)
	}

	if _, err := e.AncestorChain(ctx, ""); !errors.Is(err, ErrBrokenAncestorLink) {
		t.Errorf("AncestorChain err = %v", err)
	}
}

func TestJumpToNode_UpWalksChain(t *testing.T) {
	gs := chainStore(2)
	e := New(Config{Graph: gs})
	ctx := context.Background()

	if err := e.JumpToNode(ctx, "n1"); err != nil {
		t.Fatal(err)
	}
	if err := e.Up(); err != nil {
		t.Fatal(err)
	}
	children, err := e.ListCurrent(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(children) != 1 || children[0].ID != "n1" {
		t.Errorf("children of n0 = %v", ids(children))
	}
	if err := e.Up(); err != nil {
		t.Fatal(err)
	}
	root, err := e.ListCurrent(ctx)
	if err != nil || len(root) != 1 || root[0].ID != "n0" {
		t.Errorf("space root = %v, %v", ids(root), err)
	}
}
