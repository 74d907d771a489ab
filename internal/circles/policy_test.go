package circles

import (
	"testing"

	"github.com/circlehub/backend/internal/models"
)

func TestCanCreate(t *testing.T) {
	tests := []struct {
		name    string
		actorID int64
		hostID  int64
		want    bool
	}{
		{"self-hosted", 42, 42, true},
		{"other host", 7, 42, false},
		{"other host reversed", 42, 7, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanCreate(tt.actorID, tt.hostID); got != tt.want {
				t.Errorf("CanCreate(%d, %d) = %v, want %v", tt.actorID, tt.hostID, got, tt.want)
			}
		})
	}
}

func TestCanModify(t *testing.T) {
	if !CanModify(5, 5) {
		t.Error("host should be able to modify own circle")
	}
	if CanModify(5, 6) {
		t.Error("non-host should not be able to modify")
	}
}

func TestCanDelete(t *testing.T) {
	tests := []struct {
		name    string
		actorID int64
		role    models.Role
		hostID  int64
		want    bool
	}{
		{"host member", 5, models.RoleMember, 5, true},
		{"non-host member", 6, models.RoleMember, 5, false},
		{"non-host admin", 6, models.RoleAdmin, 5, true},
		{"host admin", 5, models.RoleAdmin, 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanDelete(tt.actorID, tt.role, tt.hostID); got != tt.want {
				t.Errorf("CanDelete(%d, %q, %d) = %v, want %v", tt.actorID, tt.role, tt.hostID, got, tt.want)
			}
		})
	}
}
