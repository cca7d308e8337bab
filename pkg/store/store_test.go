package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/feishukit/feishukit/pkg/client"
	"github.com/feishukit/feishukit/pkg/models"
	"github.com/feishukit/feishukit/pkg/protocol"
)

var (
	_ DriveAPI      = (*client.Client)(nil)
	_ WikiAPI       = (*client.Client)(nil)
	_ Store         = (*Drive)(nil)
	_ GraphStore    = (*Wiki)(nil)
	_ ContentReader = (*Drive)(nil)
	_ ContentReader = (*Wiki)(nil)
)

type fakeDriveAPI struct {
	files   map[string][]protocol.DriveFile
	created []string
	moved   []string
	renamed []string
	deleted []string
	err     error
}

func (f *fakeDriveAPI) ListFiles(_ context.Context, folder string) ([]protocol.DriveFile, error) {
	return f.files[folder], f.err
}

func (f *fakeDriveAPI) CreateFolder(_ context.Context, name, parent string) (string, error) {
	f.created = append(f.created, "folder:"+name+"@"+parent)
	return "fldNew", f.err
}

func (f *fakeDriveAPI) CreateSpreadsheet(_ context.Context, title, folder string) (string, error) {
	f.created = append(f.created, "sheet:"+title+"@"+folder)
	return "shtNew", f.err
}

func (f *fakeDriveAPI) CreateBitable(_ context.Context, name, folder string) (string, error) {
	f.created = append(f.created, "bitable:"+name+"@"+folder)
	return "basNew", f.err
}

func (f *fakeDriveAPI) MoveFile(_ context.Context, token, typ, target string) error {
	f.moved = append(f.moved, token+":"+typ+"->"+target)
	return f.err
}

func (f *fakeDriveAPI) RenameFile(_ context.Context, token, typ, name string) error {
	f.renamed = append(f.renamed, token+":"+typ+"="+name)
	return f.err
}

func (f *fakeDriveAPI) DeleteFile(_ context.Context, token, typ string) error {
	f.deleted = append(f.deleted, token+":"+typ)
	return f.err
}

func (f *fakeDriveAPI) RawContent(_ context.Context, id string) (string, error) {
	return "text of " + id, f.err
}

func (f *fakeDriveAPI) FileURL(token, typ string) (string, error) {
	return "https://acme.feishu.cn/" + typ + "/" + token, nil
}

func TestDrive_ListChildren(t *testing.T) {
	api := &fakeDriveAPI{files: map[string][]protocol.DriveFile{
		"fldRoot": {
			{Token: "fldA", Name: "Reports", Type: "folder"},
			{Token: "shtB", Name: "Budget", Type: "sheet", ModifiedTime: "1700000000"},
			{Token: "basC", Name: "Tracker", Type: "bitable"},
			{Token: "doxD", Name: "Notes", Type: "docx", ParentToken: "fldRoot"},
		},
	}}
	d := NewDrive(api)

	got, err := d.ListChildren(context.Background(), "", "fldRoot")
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	wantNames := []string{"Budget", "Notes", "Reports", "Tracker"}
	wantKinds := []models.Kind{models.KindTabular, models.KindDocument, models.KindFolder, models.KindRelational}
	if len(got) != len(wantKinds) {
		t.Fatalf("got %d children", len(got))
	}
	for i, k := range wantKinds {
		if got[i].Name != wantNames[i] {
			t.Errorf("child %d name = %q, want %q", i, got[i].Name, wantNames[i])
		}
		if got[i].Kind != k {
			t.Errorf("child %d kind = %s, want %s", i, got[i].Kind, k)
		}
		if got[i].ParentID != "fldRoot" {
			t.Errorf("child %d parent = %q", i, got[i].ParentID)
		}
	}
	if !got[0].ModifiedAt.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("ModifiedAt = %v", got[0].ModifiedAt)
	}
}

func TestDrive_Create(t *testing.T) {
	tests := []struct {
		kind    models.Kind
		wantID  string
		wantRaw string
		call    string
	}{
		{models.KindFolder, "fldNew", "folder", "folder:X@p"},
		{models.KindTabular, "shtNew", "sheet", "sheet:X@p"},
		{models.KindRelational, "basNew", "bitable", "bitable:X@p"},
	}
	for _, tt := range tests {
		api := &fakeDriveAPI{}
		got, err := NewDrive(api).Create(context.Background(), "", "p", "X", tt.kind)
		if err != nil {
			t.Fatalf("Create(%s): %v", tt.kind, err)
		}
		if got.ID != tt.wantID || got.RawType != tt.wantRaw || got.Kind != tt.kind {
			t.Errorf("Create(%s) = %+v", tt.kind, got)
		}
		if len(api.created) != 1 || api.created[0] != tt.call {
			t.Errorf("Create(%s) calls = %v", tt.kind, api.created)
		}
	}
}

func TestDrive_CreateDocumentUnsupported(t *testing.T) {
	api := &fakeDriveAPI{}
	_, err := NewDrive(api).Create(context.Background(), "", "p", "X", models.KindDocument)
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
	if len(api.created) != 0 {
		t.Errorf("no remote call expected, got %v", api.created)
	}
}

func TestDrive_MutationsPassType(t *testing.T) {
	api := &fakeDriveAPI{}
	d := NewDrive(api)
	node := models.Descriptor{ID: "shtB", RawType: "sheet"}
	ctx := context.Background()

	if err := d.Move(ctx, "", node, "fldA"); err != nil {
		t.Fatal(err)
	}
	if err := d.Rename(ctx, node, "Budget 2025"); err != nil {
		t.Fatal(err)
	}
	if err := d.Delete(ctx, "", node); err != nil {
		t.Fatal(err)
	}
	if api.moved[0] != "shtB:sheet->fldA" || api.renamed[0] != "shtB:sheet=Budget 2025" || api.deleted[0] != "shtB:sheet" {
		t.Errorf("calls: moved=%v renamed=%v deleted=%v", api.moved, api.renamed, api.deleted)
	}
}

func TestDrive_Content(t *testing.T) {
	d := NewDrive(&fakeDriveAPI{})
	got, err := d.Content(context.Background(), models.Descriptor{ID: "doxD", RawType: "docx"})
	if err != nil || got != "text of doxD" {
		t.Errorf("Content = %q, %v", got, err)
	}
	if _, err := d.Content(context.Background(), models.Descriptor{ID: "shtB", RawType: "sheet"}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}

type fakeWikiAPI struct {
	nodes    map[string]protocol.WikiNode
	children map[string][]protocol.WikiNode
	created  []protocol.CreateWikiNodeRequest
	moves    []string
	deletes  []string
}

func (f *fakeWikiAPI) ListSpaces(context.Context) ([]protocol.WikiSpace, error) {
	return []protocol.WikiSpace{{SpaceID: "s1", Name: "Engineering", Description: "eng"}}, nil
}

func (f *fakeWikiAPI) ListNodes(_ context.Context, space, parent string) ([]protocol.WikiNode, error) {
	return f.children[space+"/"+parent], nil
}

func (f *fakeWikiAPI) GetNode(_ context.Context, token string) (protocol.WikiNode, error) {
	n, ok := f.nodes[token]
	if !ok {
		return protocol.WikiNode{}, errors.New("not found")
	}
	return n, nil
}

func (f *fakeWikiAPI) CreateNode(_ context.Context, space, title, objType, parent string) (protocol.WikiNode, error) {
	f.created = append(f.created, protocol.CreateWikiNodeRequest{ObjType: objType, Title: title, ParentNodeToken: parent})
	return protocol.WikiNode{NodeToken: "wikNew", ObjType: objType, ObjToken: "objNew"}, nil
}

func (f *fakeWikiAPI) MoveNode(_ context.Context, space, token, target string) error {
	f.moves = append(f.moves, space+":"+token+"->"+target)
	return nil
}

func (f *fakeWikiAPI) DeleteNode(_ context.Context, space, token string) error {
	f.deletes = append(f.deletes, space+":"+token)
	return nil
}

func (f *fakeWikiAPI) RawContent(_ context.Context, id string) (string, error) {
	return "body " + id, nil
}

func (f *fakeWikiAPI) NodeURL(token string) (string, error) {
	return "https://acme.feishu.cn/wiki/" + token, nil
}

func TestWiki_ListChildren(t *testing.T) {
	api := &fakeWikiAPI{children: map[string][]protocol.WikiNode{
		"s1/": {
			{NodeToken: "wikA", Title: "Handbook", ObjType: "docx", ObjToken: "doxA", HasChild: true},
			{NodeToken: "wikB", Title: "Roadmap", ObjType: "sheet", ObjToken: "shtB"},
		},
	}}
	w := NewWiki(api)

	got, err := w.ListChildren(context.Background(), "s1", "")
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d nodes", len(got))
	}
	if got[0].Kind != models.KindContainer || !got[0].HasChildren || got[0].ResourceID != "doxA" {
		t.Errorf("node 0 = %+v", got[0])
	}
	if got[1].Kind != models.KindTabular || got[1].SpaceID != "s1" {
		t.Errorf("node 1 = %+v", got[1])
	}
}

func TestListChildrenOrderedByName(t *testing.T) {
	drive := NewDrive(&fakeDriveAPI{files: map[string][]protocol.DriveFile{
		"root": {
			{Token: "fldZ", Name: "zeta", Type: "folder"},
			{Token: "fldA", Name: "alpha", Type: "folder"},
		},
	}})
	wiki := NewWiki(&fakeWikiAPI{children: map[string][]protocol.WikiNode{
		"s1/": {
			{NodeToken: "wikZ", Title: "zeta", ObjType: "docx"},
			{NodeToken: "wikA", Title: "alpha", ObjType: "docx"},
		},
	}})

	tests := []struct {
		name   string
		store  Store
		space  string
		parent string
	}{
		{"drive", drive, "", "root"},
		{"wiki", wiki, "s1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.store.ListChildren(context.Background(), tt.space, tt.parent)
			if err != nil {
				t.Fatalf("ListChildren: %v", err)
			}
			if len(got) != 2 || got[0].Name != "alpha" || got[1].Name != "zeta" {
				t.Errorf("order = %+v, want alpha then zeta", got)
			}
		})
	}
}

func TestWiki_GetNodeCarriesParent(t *testing.T) {
	api := &fakeWikiAPI{nodes: map[string]protocol.WikiNode{
		"wikB": {NodeToken: "wikB", SpaceID: "s1", ParentNodeToken: "wikA", Title: "B"},
	}}
	got, err := NewWiki(api).GetNode(context.Background(), "wikB")
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	if got.ParentID != "wikA" || got.SpaceID != "s1" || got.Name != "B" {
		t.Errorf("node = %+v", got)
	}
}

func TestWiki_Create(t *testing.T) {
	api := &fakeWikiAPI{}
	w := NewWiki(api)

	got, err := w.Create(context.Background(), "s1", "wikA", "Design", models.KindDocument)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.ID != "wikNew" || got.Name != "Design" || got.ParentID != "wikA" || got.SpaceID != "s1" {
		t.Errorf("created = %+v", got)
	}
	if api.created[0].ObjType != "docx" {
		t.Errorf("obj type = %q", api.created[0].ObjType)
	}

	_, err = w.Create(context.Background(), "s1", "", "Dir", models.KindFolder)
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("folder create err = %v, want ErrUnsupported", err)
	}
	if len(api.created) != 1 {
		t.Errorf("folder create should not reach the API")
	}
}

func TestWiki_RenameUnsupported(t *testing.T) {
	err := NewWiki(&fakeWikiAPI{}).Rename(context.Background(), models.Descriptor{ID: "wikA"}, "x")
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}

func TestWiki_MoveAndDeleteUseNodeSpace(t *testing.T) {
	api := &fakeWikiAPI{}
	w := NewWiki(api)
	node := models.Descriptor{ID: "wikB", SpaceID: "s2"}

	if err := w.Move(context.Background(), "s1", node, "wikA"); err != nil {
		t.Fatal(err)
	}
	if err := w.Delete(context.Background(), "s1", node); err != nil {
		t.Fatal(err)
	}
	if api.moves[0] != "s2:wikB->wikA" || api.deletes[0] != "s2:wikB" {
		t.Errorf("moves=%v deletes=%v", api.moves, api.deletes)
	}
}

func TestWiki_ListSpacesAndContent(t *testing.T) {
	w := NewWiki(&fakeWikiAPI{})
	spaces, err := w.ListSpaces(context.Background())
	if err != nil || len(spaces) != 1 || spaces[0].ID != "s1" || spaces[0].Name != "Engineering" {
		t.Errorf("spaces = %+v, %v", spaces, err)
	}

	text, err := w.Content(context.Background(), models.Descriptor{ID: "wikA", RawType: "docx", ResourceID: "doxA"})
	if err != nil || text != "body doxA" {
		t.Errorf("Content = %q, %v", text, err)
	}
}
