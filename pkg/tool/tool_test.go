package tool

import "testing"

func TestLibraryAddGet(t *testing.T) {
	l := NewLibrary()
	h := l.Add(Tool{Type: TypeTurning, Name: "test insert"})

	got, err := l.Get(h)
	if err != nil {
		t.Fatalf("Get(%d): %v", h, err)
	}
	if got.Name != "test insert" {
		t.Errorf("Get returned %q, want %q", got.Name, "test insert")
	}
}

func TestLibraryGetOutOfRange(t *testing.T) {
	l := NewLibrary()
	l.Add(Tool{Type: TypeTurning})

	for _, h := range []Handle{InvalidHandle, -5, 1, 100} {
		if _, err := l.Get(h); err == nil {
			t.Errorf("Get(%d): want error, got nil", h)
		}
	}
}

func TestLibraryHandlesAreStable(t *testing.T) {
	l := NewLibrary()
	h1 := l.Add(Tool{Name: "first"})
	h2 := l.Add(Tool{Name: "second"})

	if h1 == h2 {
		t.Fatal("Add returned duplicate handles")
	}

	first, _ := l.Get(h1)
	if first.Name != "first" {
		t.Errorf("handle %d resolved to %q after second Add", h1, first.Name)
	}
}

func TestLibraryGetReturnsCopy(t *testing.T) {
	l := NewLibrary()
	h := l.Add(Tool{Name: "original", Cutting: CuttingParameters{FeedRate: 100}})

	cp, _ := l.Get(h)
	cp.Cutting.FeedRate = 999

	again, _ := l.Get(h)
	if again.Cutting.FeedRate != 100 {
		t.Error("mutating a Get result changed the library record")
	}
}

func TestFindByType(t *testing.T) {
	l := DefaultLibrary()

	types := []Type{
		TypeTurning, TypeFacing, TypeParting, TypeThreading,
		TypeGrooving, TypeChamfering, TypeContouring, TypeDrilling,
	}
	for _, typ := range types {
		t.Run(typ.String(), func(t *testing.T) {
			h, ok := l.FindByType(typ)
			if !ok {
				t.Fatalf("default library has no %s tool", typ)
			}
			tl, err := l.Get(h)
			if err != nil {
				t.Fatalf("Get(%d): %v", h, err)
			}
			if tl.Type != typ {
				t.Errorf("FindByType(%s) resolved to a %s tool", typ, tl.Type)
			}
			if tl.Cutting.FeedRate <= 0 || tl.Cutting.SpindleSpeed <= 0 {
				t.Errorf("%s tool has non-positive cutting conditions: %+v", typ, tl.Cutting)
			}
		})
	}

	empty := NewLibrary()
	if _, ok := empty.FindByType(TypeTurning); ok {
		t.Error("FindByType on empty library reported a match")
	}
}
