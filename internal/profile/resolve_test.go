package profile

import "testing"

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"main", false},
		{"work-account_2", false},
		{"", true},
		{"Has Spaces", true},
		{"UPPER", true},
		{"dot.dot", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
		})
	}
}

func TestResolveFlagWins(t *testing.T) {
	if got := Resolve("override"); got != "override" {
		t.Errorf("Resolve = %q, want override", got)
	}
}
