package ids

import "testing"

func TestNewProducesValidSortedIDs(t *testing.T) {
	prev := ""
	for i := 0; i < 100; i++ {
		id := New()
		if !Valid(id) {
			t.Fatalf("generated id %q is not a valid ulid", id)
		}
		if id <= prev {
			t.Fatalf("ids not monotonically increasing: %q after %q", id, prev)
		}
		prev = id
	}
}

func TestValidRejectsGarbage(t *testing.T) {
	for _, id := range []string{"", "clm-1", "0123456789", "not-a-ulid-at-all-really!!"} {
		if Valid(id) {
			t.Fatalf("expected %q to be invalid", id)
		}
	}
}
