package domain

import "testing"

func TestRoleOrdering(t *testing.T) {
	ladder := []Role{RoleBanned, RoleSingle, RoleMultiplayer, RoleModerator, RoleAdmin}

	for i := 1; i < len(ladder); i++ {
		if ladder[i] <= ladder[i-1] {
			t.Fatalf("expected %s to rank above %s", ladder[i], ladder[i-1])
		}
	}

	if RoleSingle.AtLeast(RoleAdmin) {
		t.Fatalf("single must not satisfy the admin threshold")
	}
	if !RoleAdmin.AtLeast(RoleAdmin) {
		t.Fatalf("admin must satisfy the admin threshold")
	}
}

func TestRoleString(t *testing.T) {
	tests := []struct {
		role     Role
		expected string
	}{
		{RoleBanned, "banned"},
		{RoleSingle, "single"},
		{RoleMultiplayer, "multiplayer"},
		{RoleModerator, "moderator"},
		{RoleAdmin, "admin"},
		{Role(99), "role(99)"},
	}

	for _, tt := range tests {
		if got := tt.role.String(); got != tt.expected {
			t.Fatalf("Role(%d).String() = %q, want %q", int(tt.role), got, tt.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		wantErr  bool
	}{
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{" Error ", LevelError, false},
		{"BOGUS", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		level, err := ParseLevel(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseLevel(%q) expected error, got %q", tt.input, level)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseLevel(%q) returned error: %v", tt.input, err)
		}
		if level != tt.expected {
			t.Fatalf("ParseLevel(%q) = %q, want %q", tt.input, level, tt.expected)
		}
	}
}

func TestLevelSeverityOrdering(t *testing.T) {
	if !(LevelDebug.Severity() < LevelInfo.Severity() && LevelInfo.Severity() < LevelError.Severity()) {
		t.Fatalf("severity ordering broken: DEBUG=%d INFO=%d ERROR=%d",
			LevelDebug.Severity(), LevelInfo.Severity(), LevelError.Severity())
	}
	if Level("TRACE").Severity() != -1 {
		t.Fatalf("unknown level should have severity -1")
	}
}
