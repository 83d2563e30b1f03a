package observable

import (
	"reflect"
	"testing"
)

type recorder struct {
	sets []*ChangeSet
}

func (r *recorder) listen(cs *ChangeSet) {
	r.sets = append(r.sets, cs)
}

func TestSliceInsertNotifies(t *testing.T) {
	s := NewSlice("a", "d")
	var rec recorder
	s.Subscribe(rec.listen)

	s.Insert(1, "b", "c")

	if got := s.Items(); !reflect.DeepEqual(got, []string{"a", "b", "c", "d"}) {
		t.Fatalf("unexpected items %v", got)
	}
	if len(rec.sets) != 1 {
		t.Fatalf("expected 1 change set, got %d", len(rec.sets))
	}
	want := &ChangeSet{Insertions: []Range{{Start: 1, Length: 2}}}
	if !reflect.DeepEqual(rec.sets[0], want) {
		t.Errorf("expected %+v, got %+v", want, rec.sets[0])
	}
}

func TestSliceRemoveSetAppend(t *testing.T) {
	s := NewSlice(1, 2, 3, 4)
	var rec recorder
	s.Subscribe(rec.listen)

	s.Remove(1, 2)
	s.Set(0, 10)
	s.Append(5)

	if got := s.Items(); !reflect.DeepEqual(got, []int{10, 4, 5}) {
		t.Fatalf("unexpected items %v", got)
	}
	want := []*ChangeSet{
		{Deletions: []Range{{Start: 1, Length: 2}}},
		{Changes: []Range{{Start: 0, Length: 1}}},
		{Insertions: []Range{{Start: 2, Length: 1}}},
	}
	if !reflect.DeepEqual(rec.sets, want) {
		t.Errorf("expected %+v, got %+v", want, rec.sets)
	}
}

func TestSliceRemoveFuncReportsEveryRun(t *testing.T) {
	s := NewSlice(1, 2, 3, 4, 5, 6)
	var rec recorder
	s.Subscribe(rec.listen)

	if n := s.RemoveFunc(func(v int) bool { return v == 2 || v == 4 || v == 5 }); n != 3 {
		t.Errorf("expected 3 removed, got %d", n)
	}
	if got := s.Items(); !reflect.DeepEqual(got, []int{1, 3, 6}) {
		t.Fatalf("unexpected items %v", got)
	}
	want := []*ChangeSet{{Deletions: []Range{{Start: 1, Length: 1}, {Start: 3, Length: 2}}}}
	if !reflect.DeepEqual(rec.sets, want) {
		t.Errorf("expected %+v, got %+v", want, rec.sets)
	}

	if n := s.RemoveFunc(func(int) bool { return false }); n != 0 || len(rec.sets) != 1 {
		t.Errorf("expected a no-op removal to stay silent, got %d removed and %d sets", n, len(rec.sets))
	}
}

func TestSliceReset(t *testing.T) {
	s := NewSlice("a", "b")
	var rec recorder
	s.Subscribe(rec.listen)

	cs := &ChangeSet{Insertions: []Range{{Start: 2, Length: 1}}}
	s.Reset([]string{"a", "b", "c"}, cs)
	s.Reset([]string{"a", "b", "c"}, &ChangeSet{})
	s.Reset([]string{"z"}, nil)

	if got := s.Items(); !reflect.DeepEqual(got, []string{"z"}) {
		t.Fatalf("unexpected items %v", got)
	}
	if len(rec.sets) != 2 || rec.sets[0] != cs || rec.sets[1] != nil {
		t.Errorf("expected the given set then a full refresh, got %+v", rec.sets)
	}
}

func TestChangeSetIsEmpty(t *testing.T) {
	var full *ChangeSet
	if full.IsEmpty() {
		t.Error("expected a nil change set (full refresh) not to be empty")
	}
	if !(&ChangeSet{}).IsEmpty() {
		t.Error("expected a change set without ranges to be empty")
	}
	if (&ChangeSet{Changes: []Range{{Start: 0, Length: 1}}}).IsEmpty() {
		t.Error("expected a change set with a range not to be empty")
	}
	if end := (Range{Start: 2, Length: 3}).End(); end != 5 {
		t.Errorf("expected end 5, got %d", end)
	}
}

func TestSliceMoveReportsDeleteAndInsert(t *testing.T) {
	s := NewSlice("a", "b", "c", "d")
	var rec recorder
	s.Subscribe(rec.listen)

	s.Move(0, 3)

	if got := s.Items(); !reflect.DeepEqual(got, []string{"b", "c", "d", "a"}) {
		t.Fatalf("unexpected items %v", got)
	}
	want := &ChangeSet{
		Deletions:  []Range{{Start: 0, Length: 1}},
		Insertions: []Range{{Start: 3, Length: 1}},
	}
	if len(rec.sets) != 1 || !reflect.DeepEqual(rec.sets[0], want) {
		t.Errorf("expected %+v, got %+v", want, rec.sets)
	}

	s.Move(2, 2)
	if len(rec.sets) != 1 {
		t.Errorf("expected no-op move to stay silent, got %d sets", len(rec.sets))
	}
}

func TestSliceReplaceIsFullRefresh(t *testing.T) {
	s := NewSlice(1)
	var rec recorder
	s.Subscribe(rec.listen)

	s.Replace([]int{7, 8})

	if len(rec.sets) != 1 || rec.sets[0] != nil {
		t.Fatalf("expected a single nil change set, got %+v", rec.sets)
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 items, got %d", s.Len())
	}
}

func TestSliceCancelStopsDelivery(t *testing.T) {
	s := NewSlice[int]()
	var a, b recorder
	subA := s.Subscribe(a.listen)
	s.Subscribe(b.listen)

	subA.Cancel()
	subA.Cancel()
	s.Append(1)

	if len(a.sets) != 0 {
		t.Errorf("expected cancelled listener to receive nothing, got %d", len(a.sets))
	}
	if len(b.sets) != 1 {
		t.Errorf("expected live listener to receive 1 set, got %d", len(b.sets))
	}
	if s.Listeners() != 1 {
		t.Errorf("expected 1 listener, got %d", s.Listeners())
	}
}

func TestSliceCancelDuringDispatch(t *testing.T) {
	s := NewSlice[int]()
	var second Subscription
	calls := 0
	s.Subscribe(func(*ChangeSet) { second.Cancel() })
	second = s.Subscribe(func(*ChangeSet) { calls++ })

	s.Append(1)

	if calls != 0 {
		t.Errorf("expected listener cancelled mid-dispatch to be skipped, got %d calls", calls)
	}
}

func TestSliceClose(t *testing.T) {
	s := NewSlice(1, 2)
	s.Close()

	if s.IsValid() {
		t.Error("expected closed slice to be invalid")
	}
	if s.Len() != 0 {
		t.Errorf("expected closed slice to report 0 items, got %d", s.Len())
	}
	defer func() {
		if recover() == nil {
			t.Error("expected mutation of closed slice to panic")
		}
	}()
	s.Append(3)
}

func TestSliceOutOfRangePanics(t *testing.T) {
	s := NewSlice(1, 2)
	for name, fn := range map[string]func(){
		"at":     func() { s.At(2) },
		"insert": func() { s.Insert(3, 9) },
		"remove": func() { s.Remove(1, 2) },
		"set":    func() { s.Set(-1, 0) },
		"move":   func() { s.Move(0, 2) },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("expected %s to panic", name)
				}
			}()
			fn()
		})
	}
}
