package community

import (
	"context"
	"testing"
	"time"

	"github.com/pcacademy/backend/core"
	"github.com/pcacademy/backend/storage/docstore/inmem"
)

var (
	jane = core.Identity{ID: "u1", Name: "Jane", Email: "jane@example.com"}
	eve  = core.Identity{ID: "u2", Name: "Eve", Email: "eve@example.com"}
)

func testForm() BuildForm {
	return BuildForm{
		Title:       "Budget gamer",
		Description: "1080p on a budget.",
		CPU:         "Ryzen 5 5600",
		Motherboard: "B550M",
		RAM:         "16GB DDR4-3200",
		Storage:     "1TB NVMe",
		GPU:         "RX 6600",
		PSU:         "550W Bronze",
	}
}

func TestService_ownership(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewRepository(inmem.NewStore()), nil)

	if _, err := svc.Create(ctx, core.Identity{}, testForm(), ""); err != ErrNotOwner {
		t.Errorf("anonymous create err = %v; want ErrNotOwner", err)
	}

	b, err := svc.Create(ctx, jane, testForm(), "")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if b.AuthorEmail != jane.Email || len(b.Components) != 6 {
		t.Errorf("build = %+v; want jane's build with 6 filled slots", b)
	}

	if _, err = svc.Update(ctx, eve, b.ID, testForm(), ""); err != ErrNotOwner {
		t.Errorf("foreign update err = %v; want ErrNotOwner", err)
	}
	if err = svc.Delete(ctx, eve, b.ID); err != ErrNotOwner {
		t.Errorf("foreign delete err = %v; want ErrNotOwner", err)
	}

	form := testForm()
	form.Title = "Budget gamer v2"
	updated, err := svc.Update(ctx, jane, b.ID, form, "")
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.Title != "Budget gamer v2" || !updated.CreatedAt.Equal(b.CreatedAt) {
		t.Errorf("updated = %+v; want new title, original createdAt", updated)
	}

	if err = svc.Delete(ctx, jane, b.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err = svc.Get(ctx, b.ID); err != ErrNotFound {
		t.Errorf("Get() after delete err = %v; want ErrNotFound", err)
	}
}

func TestService_List_newestFirst(t *testing.T) {
	ctx := context.Background()
	store := inmem.NewStore()
	svc := NewService(NewRepository(store), nil)

	first, err := svc.Create(ctx, jane, testForm(), "")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	// force distinct timestamps; document ordering is by createdAt
	time.Sleep(2 * time.Millisecond)
	second, err := svc.Create(ctx, eve, testForm(), "")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	builds, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(builds) != 2 || builds[0].ID != second.ID || builds[1].ID != first.ID {
		t.Errorf("list order = %v; want newest first", []string{builds[0].ID, builds[1].ID})
	}
}

func TestBuildForm_Components(t *testing.T) {
	form := testForm()
	form.Cooler = "  " // whitespace-only optional slot is skipped
	comps := form.Components()
	for _, c := range comps {
		if c.Type == ComponentCooler {
			t.Error("empty cooler slot should be skipped")
		}
	}
	if comps[0].Type != ComponentCPU || comps[0].Name != "Ryzen 5 5600" {
		t.Errorf("comps[0] = %+v; want the CPU slot first", comps[0])
	}
}

func TestBuild_Summary(t *testing.T) {
	b := Build{Components: []Component{{ComponentCPU, "Ryzen 5"}, {ComponentGPU, "RTX 4060"}}}
	want := "CPU: Ryzen 5\nGPU: RTX 4060\n"
	if got := b.Summary(); got != want {
		t.Errorf("Summary() = %q; want %q", got, want)
	}
}
