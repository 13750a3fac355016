package events

import (
	"testing"
)

func TestNormalizeEntityType(t *testing.T) {
	tests := []struct {
		input    string
		expected EntityType
		valid    bool
	}{
		// Bookings
		{"booking", EntityBookings, true},
		{"bookings", EntityBookings, true},
		{"BOOKING", EntityBookings, true},
		{"Bookings", EntityBookings, true},
		{" bookings ", EntityBookings, true},

		// Routes
		{"route", EntityRoutes, true},
		{"routes", EntityRoutes, true},

		// Profile
		{"profile", EntityProfile, true},
		{"profiles", EntityProfile, true},

		// Invalid
		{"invalid", "", false},
		{"unknown", "", false},
		{"", "", false},
	}

	for _, test := range tests {
		result, valid := NormalizeEntityType(test.input)
		if valid != test.valid {
			t.Errorf("NormalizeEntityType(%q): expected valid=%v, got %v", test.input, test.valid, valid)
		}
		if valid && result != test.expected {
			t.Errorf("NormalizeEntityType(%q): expected %q, got %q", test.input, test.expected, result)
		}
	}
}

func TestIsValidEntityType(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"bookings", true},
		{"routes", true},
		{"profile", true},
		{"booking", false}, // singular forms need NormalizeEntityType
		{"invalid", false},
		{"", false},
	}

	for _, test := range tests {
		result := IsValidEntityType(test.input)
		if result != test.expected {
			t.Errorf("IsValidEntityType(%q): expected %v, got %v", test.input, test.expected, result)
		}
	}
}

func TestAllEntityTypes(t *testing.T) {
	types := AllEntityTypes()
	expected := 3 // Number of entity types defined

	if len(types) != expected {
		t.Errorf("AllEntityTypes(): expected %d types, got %d", expected, len(types))
	}

	requiredTypes := []EntityType{EntityBookings, EntityRoutes, EntityProfile}
	for _, et := range requiredTypes {
		if !types[et] {
			t.Errorf("AllEntityTypes(): missing entity type %q", et)
		}
	}
}
