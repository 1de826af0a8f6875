package store

import (
	"context"
	"testing"
)

func TestPersistModules_NestedItemsAndPositions(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	courseID := seedCourse(t, st, 100, "CS570", "Algorithms")

	modules := []Module{
		{
			CanvasModuleID: 2, Name: "Week 2", Position: 2,
			Items: []ModuleItem{
				{CanvasItemID: 21, Title: "Quiz", ItemType: "Quiz", Position: 2},
				{CanvasItemID: 20, Title: "Reading", ItemType: "Page", Position: 1},
			},
		},
		{CanvasModuleID: 1, Name: "Week 1", Position: 1},
	}
	count, err := st.PersistModules(ctx, courseID, modules)
	if err != nil {
		t.Fatalf("persist: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	got, err := st.ListModules(ctx, courseID, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d modules, want 2", len(got))
	}
	if got[0].Name != "Week 1" || got[1].Name != "Week 2" {
		t.Errorf("module order: %q, %q", got[0].Name, got[1].Name)
	}
	items := got[1].Items
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Title != "Reading" || items[1].Title != "Quiz" {
		t.Errorf("item order: %q, %q (want position order)", items[0].Title, items[1].Title)
	}

	// Without includeItems the nested slices stay empty.
	flat, err := st.ListModules(ctx, courseID, false)
	if err != nil {
		t.Fatalf("list flat: %v", err)
	}
	if len(flat[1].Items) != 0 {
		t.Errorf("items loaded without includeItems")
	}
}

func TestPersistModules_UpsertKeepsOneRow(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	courseID := seedCourse(t, st, 100, "CS570", "Algorithms")

	m := []Module{{CanvasModuleID: 1, Name: "Week 1", Position: 1,
		Items: []ModuleItem{{CanvasItemID: 10, Title: "Slides", ItemType: "File", Position: 1}}}}
	if _, err := st.PersistModules(ctx, courseID, m); err != nil {
		t.Fatalf("first: %v", err)
	}

	m[0].Name = "Week 1 (updated)"
	m[0].Items[0].Title = "Slides v2"
	if _, err := st.PersistModules(ctx, courseID, m); err != nil {
		t.Fatalf("second: %v", err)
	}

	var moduleRows, itemRows int
	if err := st.RawDB().QueryRow("SELECT COUNT(*) FROM modules").Scan(&moduleRows); err != nil {
		t.Fatalf("count modules: %v", err)
	}
	if err := st.RawDB().QueryRow("SELECT COUNT(*) FROM module_items").Scan(&itemRows); err != nil {
		t.Fatalf("count items: %v", err)
	}
	if moduleRows != 1 || itemRows != 1 {
		t.Errorf("rows = %d modules / %d items, want 1 / 1", moduleRows, itemRows)
	}

	got, err := st.ListModules(ctx, courseID, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got[0].Name != "Week 1 (updated)" || got[0].Items[0].Title != "Slides v2" {
		t.Errorf("updates not applied: %+v", got[0])
	}
}
