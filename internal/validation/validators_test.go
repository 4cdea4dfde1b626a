package validation

import (
	"testing"
)

func TestValidateTargetID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		// Happy paths
		{"domain", "example.com", false},
		{"subdomain", "shop.example.co.uk", false},
		{"slug", "site_01-staging", false},

		// Sad paths
		{"empty", "", true},
		{"leading dot", ".hidden", true},
		{"leading dash", "-rf", true},
		{"traversal", "a..b", true},
		{"slash", "a/b", true},
		{"semicolon injection", "site;rm", true},
		{"dollar sign", "site$HOME", true},
		{"backtick", "site`id`", true},
		{"newline", "site\n", true},
		{"space", "my site", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTargetID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTargetID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateOptionName(t *testing.T) {
	if err := ValidateOptionName("pagecache_enabled"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, bad := range []string{"", "Page", "a-b", "a b"} {
		if err := ValidateOptionName(bad); err == nil {
			t.Errorf("ValidateOptionName(%q) should fail", bad)
		}
	}
}

func TestValidateArgValue(t *testing.T) {
	for _, ok := range []string{"", "1", "-1", "/wp-admin/*", "some value"} {
		if err := ValidateArgValue(ok); err != nil {
			t.Errorf("ValidateArgValue(%q) unexpected error: %v", ok, err)
		}
	}
	for _, bad := range []string{"--allow-root", "a\nb", "x\x00"} {
		if err := ValidateArgValue(bad); err == nil {
			t.Errorf("ValidateArgValue(%q) should fail", bad)
		}
	}
}

func TestValidateAllowlist(t *testing.T) {
	if err := ValidateAllowlist("json", []string{"json", "yaml"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateAllowlist("xml", []string{"json", "yaml"}); err == nil {
		t.Error("expected error for value outside allowlist")
	}
}
