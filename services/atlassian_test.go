package services

import "testing"

func TestLoadAtlassianConfigRequiresCredentials(t *testing.T) {
	t.Setenv("ATLASSIAN_HOST", "https://example.atlassian.net")
	t.Setenv("ATLASSIAN_EMAIL", "")
	t.Setenv("ATLASSIAN_TOKEN", "")

	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic for missing credentials")
		}
	}()
	loadAtlassianConfig()
}

func TestLoadAtlassianConfig(t *testing.T) {
	t.Setenv("ATLASSIAN_HOST", "https://example.atlassian.net")
	t.Setenv("ATLASSIAN_EMAIL", "me@example.com")
	t.Setenv("ATLASSIAN_TOKEN", "secret")

	cfg := loadAtlassianConfig()
	if cfg.host != "https://example.atlassian.net" || cfg.email != "me@example.com" || cfg.token != "secret" {
		t.Fatalf("config = %+v", cfg)
	}
}
