package association

import (
	"errors"
	"reflect"
	"testing"
)

func TestProviders_Create(t *testing.T) {
	calls := 0
	p := Provide(NewProviders(), func() *itemList {
		calls++
		return &itemList{}
	})

	first, err := p.Create(TypeOf[itemList]())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := p.Create(TypeOf[itemList]())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, ok := first.(*itemList); !ok {
		t.Fatalf("expected *itemList, got %T", first)
	}
	if first == second {
		t.Error("expected a fresh value per call")
	}
	if calls != 2 {
		t.Errorf("expected 2 provider calls, got %d", calls)
	}
}

func TestProviders_MissingType(t *testing.T) {
	p := NewProviders()

	_, err := p.Create(TypeOf[tagSet]())
	if !errors.Is(err, ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", err)
	}

	p.WithFallback(Reflective())
	v, err := p.Create(TypeOf[tagSet]())
	if err != nil {
		t.Fatalf("Create with fallback: %v", err)
	}
	if _, ok := v.(*tagSet); !ok {
		t.Fatalf("expected *tagSet, got %T", v)
	}
}

func TestProviders_NilResult(t *testing.T) {
	p := Provide(NewProviders(), func() *itemList { return nil })
	if _, err := p.Create(TypeOf[itemList]()); err == nil {
		t.Fatal("expected error for nil provider result")
	}
}

func TestReflective(t *testing.T) {
	f := Reflective()

	v, err := f.Create(TypeOf[itemList]())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if v.(*itemList).OwnerID != 0 {
		t.Error("expected zero value")
	}

	if _, err := f.Create(reflect.TypeOf(0)); !errors.Is(err, ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider for non struct pointer, got %v", err)
	}
}
