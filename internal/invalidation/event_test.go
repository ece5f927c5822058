package invalidation

import (
	"testing"
	"time"
)

func validEvent() Event {
	return Event{Version: 1, Op: "update", Layer: "demo:places", TS: time.Now().UTC()}
}

func TestValidate_OK(t *testing.T) {
	if err := validEvent().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	for _, op := range []string{"insert", "update", "delete"} {
		ev := validEvent()
		ev.Op = op
		if err := ev.Validate(); err != nil {
			t.Fatalf("Validate(op=%s): %v", op, err)
		}
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Event)
	}{
		{"bad version", func(e *Event) { e.Version = 2 }},
		{"bad op", func(e *Event) { e.Op = "upsert" }},
		{"empty layer", func(e *Event) { e.Layer = "  " }},
		{"zero ts", func(e *Event) { e.TS = time.Time{} }},
	}
	for _, tc := range cases {
		ev := validEvent()
		tc.mutate(&ev)
		if err := ev.Validate(); err == nil {
			t.Fatalf("%s: want error", tc.name)
		}
	}
}
