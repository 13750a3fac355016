package models

import "testing"

func TestMutationStatusValid(t *testing.T) {
	for _, s := range []MutationStatus{StatusPending, StatusSyncing, StatusSynced, StatusConflict, StatusFailed} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []MutationStatus{"", "done", "PENDING"} {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestMutationStatusTerminal(t *testing.T) {
	tests := []struct {
		status   MutationStatus
		terminal bool
		carries  bool
	}{
		{StatusPending, false, false},
		{StatusSyncing, false, false},
		{StatusSynced, true, false},
		{StatusConflict, true, true},
		{StatusFailed, true, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.terminal {
			t.Errorf("%s.Terminal() = %v, want %v", tt.status, got, tt.terminal)
		}
		if got := tt.status.CarriesError(); got != tt.carries {
			t.Errorf("%s.CarriesError() = %v, want %v", tt.status, got, tt.carries)
		}
	}
}

func TestMethodValid(t *testing.T) {
	for _, m := range []Method{MethodPut, MethodPatch, MethodPost, MethodDelete} {
		if !m.Valid() {
			t.Errorf("%s should be valid", m)
		}
	}
	for _, m := range []Method{"GET", "HEAD", "put", ""} {
		if m.Valid() {
			t.Errorf("%q should be invalid", m)
		}
	}
}
