package memstore

import "github.com/feishukit/feishukit/pkg/models"

// DemoRootID is the tree root used by Demo.
const DemoRootID = "fldDemoRoot"

// Demo returns a small seeded Drive and Wiki for exploring the shell offline.
func Demo() (tree *Store, graph *Store) {
	tree = NewTree()
	reports := tree.Add("", DemoRootID, models.Descriptor{ID: "fldReports", Name: "Reports", RawType: models.TypeFolder})
	tree.Add("", reports.ID, models.Descriptor{ID: "shtQ1", Name: "Q1 Budget", RawType: models.TypeSheet})
	tree.Add("", reports.ID, models.Descriptor{ID: "basOKR", Name: "OKR Tracker", RawType: models.TypeBitable})
	tree.Add("", DemoRootID, models.Descriptor{ID: "fldArchive", Name: "Archive", RawType: models.TypeFolder})
	notes := tree.Add("", DemoRootID, models.Descriptor{ID: "doxNotes", Name: "Meeting Notes", RawType: models.TypeDocx})
	tree.SetContent(notes.ID, "Standup notes\n- ship the navigator\n")

	graph = NewGraph()
	graph.AddSpace("7000000000000000001", "Engineering")
	graph.AddSpace("7000000000000000002", "Handbook")

	const eng = "7000000000000000001"
	arch := graph.Add(eng, "", models.Descriptor{ID: "wikArch", Name: "Architecture", RawType: models.TypeDocx, ResourceID: "doxArch"})
	graph.SetContent(arch.ID, "Architecture overview\n")
	storage := graph.Add(eng, arch.ID, models.Descriptor{ID: "wikStorage", Name: "Storage", RawType: models.TypeDocx})
	graph.Add(eng, storage.ID, models.Descriptor{ID: "wikCapacity", Name: "Capacity Plan", RawType: models.TypeSheet})
	graph.Add(eng, "", models.Descriptor{ID: "wikOncall", Name: "On-call Rota", RawType: models.TypeBitable})

	const hb = "7000000000000000002"
	graph.Add(hb, "", models.Descriptor{ID: "wikWelcome", Name: "Welcome", RawType: models.TypeDocx})
	return tree, graph
}
