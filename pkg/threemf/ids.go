package threemf

import (
	"regexp"

	"github.com/google/uuid"
)

var uuidPattern = regexp.MustCompile(
	`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidUUID reports whether s is a canonical lowercase 36-character
// UUID, the form the production extension requires.
func ValidUUID(s string) bool {
	return uuidPattern.MatchString(s)
}

// IDTable holds the production-extension identifiers for one archive.
// Every tracked element gets its own version-4 UUID, assigned once per
// archive so repeated lookups stay stable.
type IDTable struct {
	model   string
	build   string
	objects map[int]string
	items   map[int]string
}

// NewIDTable creates a table with fresh model and build UUIDs.
func NewIDTable() *IDTable {
	return &IDTable{
		model:   uuid.NewString(),
		build:   uuid.NewString(),
		objects: make(map[int]string),
		items:   make(map[int]string),
	}
}

// Model returns the root model UUID.
func (t *IDTable) Model() string { return t.model }

// Build returns the build element UUID.
func (t *IDTable) Build() string { return t.build }

// Object returns the UUID for the object resource with the given id,
// assigning one on first use.
func (t *IDTable) Object(id int) string {
	s, ok := t.objects[id]
	if !ok {
		s = uuid.NewString()
		t.objects[id] = s
	}
	return s
}

// Item returns the UUID for the build item at the given index,
// assigning one on first use.
func (t *IDTable) Item(index int) string {
	s, ok := t.items[index]
	if !ok {
		s = uuid.NewString()
		t.items[index] = s
	}
	return s
}
