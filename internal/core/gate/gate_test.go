package gate

import (
	"encoding/json"
	"testing"
)

func TestClassifyIsTotal(t *testing.T) {
	t.Parallel()

	valid := map[Relation]bool{}
	for _, r := range Relations {
		valid[r] = true
	}

	seen := map[Relation]int{}
	for _, st := range []Status{StatusDraft, StatusPublished} {
		for bits := 0; bits < 1<<5; bits++ {
			u := Unit{
				ID:                "u1",
				Kind:              KindCourse,
				Status:            st,
				IsPublic:          bits&1 != 0,
				IsRequestable:     bits&2 != 0,
				IsDefaultUnlocked: bits&4 != 0,
			}
			enrolled, pending := bits&8 != 0, bits&16 != 0

			got := Classify(Learner{ID: "l1", IsActive: true}, u, enrolled, pending)
			if !valid[got] {
				t.Fatalf("Classify(%+v, %v, %v) = %v, not a known relation", u, enrolled, pending, got)
			}
			if again := Classify(Learner{ID: "l1", IsActive: true}, u, enrolled, pending); again != got {
				t.Fatalf("Classify not deterministic: %v then %v", got, again)
			}
			seen[got]++
		}
	}
	for _, r := range Relations {
		if seen[r] == 0 {
			t.Fatalf("relation %v never produced", r)
		}
	}
}

func TestClassifyDecisionOrder(t *testing.T) {
	t.Parallel()

	pub := func(mut func(*Unit)) Unit {
		u := Unit{ID: "u", Kind: KindQBank, Status: StatusPublished}
		if mut != nil {
			mut(&u)
		}
		return u
	}

	cases := []struct {
		name     string
		unit     Unit
		enrolled bool
		pending  bool
		want     Relation
	}{
		{"draft beats everything", Unit{Status: StatusDraft, IsDefaultUnlocked: true, IsPublic: true}, true, true, Locked},
		{"unknown status is locked", Unit{Status: "archived", IsPublic: true}, false, false, Locked},
		{"default unlocked without enrollment", pub(func(u *Unit) { u.IsDefaultUnlocked = true }), false, false, Enrolled},
		{"default unlocked beats pending", pub(func(u *Unit) { u.IsDefaultUnlocked = true }), false, true, Enrolled},
		{"enrollment beats pending", pub(nil), true, true, Enrolled},
		{"pending beats public", pub(func(u *Unit) { u.IsPublic = true }), false, true, Requested},
		{"public beats requestable", pub(func(u *Unit) { u.IsPublic = true; u.IsRequestable = true }), false, false, AvailableDirect},
		{"requestable", pub(func(u *Unit) { u.IsRequestable = true }), false, false, AvailableRequest},
		{"no path", pub(nil), false, false, Locked},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(Learner{}, tc.unit, tc.enrolled, tc.pending); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPublicRequestableUnitOffersDirectEnroll(t *testing.T) {
	t.Parallel()

	u := Unit{ID: "c1", Kind: KindCourse, Status: StatusPublished, IsPublic: true, IsRequestable: true}
	if got := Classify(Learner{ID: "l1", IsActive: true}, u, false, false); got != AvailableDirect {
		t.Fatalf("got %v, want available_direct", got)
	}
}

func TestDefaultUnlockedIgnoresOtherLearnersRequest(t *testing.T) {
	t.Parallel()

	unlocked := Unit{ID: "q1", Kind: KindQBank, Status: StatusPublished, IsDefaultUnlocked: true}
	if got := Classify(Learner{ID: "a"}, unlocked, false, false); got != Enrolled {
		t.Fatalf("default-unlocked learner: got %v, want enrolled", got)
	}

	// The other learner's request is against a sibling unit without the override
	gated := unlocked
	gated.IsDefaultUnlocked = false
	if got := Classify(Learner{ID: "b"}, gated, false, true); got != Requested {
		t.Fatalf("learner with pending request: got %v, want requested", got)
	}
}

func TestRelationJSON(t *testing.T) {
	t.Parallel()

	for _, r := range Relations {
		b, err := json.Marshal(r)
		if err != nil {
			t.Fatalf("marshal %v: %v", r, err)
		}
		var back Relation
		if err := json.Unmarshal(b, &back); err != nil || back != r {
			t.Fatalf("round trip %s: got %v err %v", b, back, err)
		}
	}
	var r Relation
	if err := json.Unmarshal([]byte(`"open"`), &r); err == nil {
		t.Fatalf("expected error for unknown relation")
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]ContentKind{"course": KindCourse, "courses": KindCourse, "qbank": KindQBank, "qbanks": KindQBank} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseKind("blog"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
	if ContentKind("blog").Valid() {
		t.Fatalf("blog should not be valid")
	}
}
