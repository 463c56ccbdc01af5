package store

import (
	"reflect"
	"strings"
	"testing"
)

type address struct {
	City string
	Zip  string
}

type person struct {
	Name    string
	Address *address
	Tags    []string
	Scores  map[string]int
}

func basePerson() person {
	return person{
		Name:    "ada",
		Address: &address{City: "London", Zip: "E1"},
		Tags:    []string{"math", "engines"},
		Scores:  map[string]int{"math": 90, "history": 70},
	}
}

func TestDraftTopLevelWriteSharesSiblings(t *testing.T) {
	base := basePerson()
	next := Mutate[person](func(d *Draft[person]) {
		d.Set("Name", "grace")
	}).Next(base)

	if next.Name != "grace" {
		t.Fatalf("expected name grace, got %q", next.Name)
	}
	if next.Address != base.Address {
		t.Fatalf("expected untouched pointer subtree to keep identity")
	}
	sameBacking(t, next.Tags, base.Tags)
	sameBacking(t, next.Scores, base.Scores)
}

func TestDraftNestedPointerWriteClonesOnlyThePath(t *testing.T) {
	base := basePerson()
	next := Mutate[person](func(d *Draft[person]) {
		d.Set("Address.City", "Paris")
	}).Next(base)

	if next.Address.City != "Paris" || next.Address.Zip != "E1" {
		t.Fatalf("unexpected address: %+v", next.Address)
	}
	if next.Address == base.Address {
		t.Fatalf("expected the written pointer subtree to be cloned")
	}
	if base.Address.City != "London" {
		t.Fatalf("expected base state to stay untouched, got %q", base.Address.City)
	}
	sameBacking(t, next.Tags, base.Tags)
}

func TestDraftMapWrite(t *testing.T) {
	base := basePerson()
	next := Mutate[person](func(d *Draft[person]) {
		d.Set("Scores.math", 95)
	}).Next(base)

	if next.Scores["math"] != 95 || next.Scores["history"] != 70 {
		t.Fatalf("unexpected scores: %v", next.Scores)
	}
	if base.Scores["math"] != 90 {
		t.Fatalf("expected base map untouched, got %d", base.Scores["math"])
	}
	sameBacking(t, next.Tags, base.Tags)
}

func TestDraftSliceIndexWrite(t *testing.T) {
	base := basePerson()
	next := Mutate[person](func(d *Draft[person]) {
		d.Set("Tags.1", "compilers")
	}).Next(base)

	if !reflect.DeepEqual(next.Tags, []string{"math", "compilers"}) {
		t.Fatalf("unexpected tags: %v", next.Tags)
	}
	if base.Tags[1] != "engines" {
		t.Fatalf("expected base slice untouched, got %q", base.Tags[1])
	}
	if next.Address != base.Address {
		t.Fatalf("expected untouched subtree to keep identity")
	}
}

func TestDraftEquivalentToHandWrittenSpread(t *testing.T) {
	base := basePerson()
	viaDraft := Mutate[person](func(d *Draft[person]) {
		d.Set("Name", "grace")
		d.Set("Address.City", "Paris")
	}).Next(base)

	byHand := base
	addr := *base.Address
	addr.City = "Paris"
	byHand.Name = "grace"
	byHand.Address = &addr

	if !reflect.DeepEqual(viaDraft, byHand) {
		t.Fatalf("expected draft result %+v to equal spread rewrite %+v", viaDraft, byHand)
	}
}

func TestDraftReturnReplacesState(t *testing.T) {
	next := Mutate[person](func(d *Draft[person]) {
		d.Return(person{Name: "fresh"})
	}).Next(basePerson())

	if next.Name != "fresh" || next.Address != nil {
		t.Fatalf("expected replacement, got %+v", next)
	}
}

func TestDraftDualModePanics(t *testing.T) {
	defer func() {
		r := recover()
		msg, ok := r.(string)
		if !ok || !strings.Contains(msg, "both wrote to the draft and returned") {
			t.Fatalf("expected dual-mode panic, got %v", r)
		}
	}()
	Mutate[person](func(d *Draft[person]) {
		d.Set("Name", "x")
		d.Return(person{})
	}).Next(basePerson())
}

func TestDraftUnknownFieldPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unknown field")
		}
	}()
	Mutate[person](func(d *Draft[person]) {
		d.Set("Nope", 1)
	}).Next(basePerson())
}

func TestDraftStateExposesBase(t *testing.T) {
	base := basePerson()
	Mutate[person](func(d *Draft[person]) {
		if d.State().Name != "ada" {
			t.Fatalf("expected draft base, got %q", d.State().Name)
		}
	}).Next(base)
}
