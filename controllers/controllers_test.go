package controllers

import (
	"os"
	"strings"
	"testing"

	"github.com/cppla/planner/config"
)

func TestMain(m *testing.M) {
	config.Use(config.AppConfig{JWTSecret: "controllers-test-secret"})
	os.Exit(m.Run())
}

func TestNormalizeEmail(t *testing.T) {
	cases := map[string]bool{
		" Ann@Example.com ":     true,
		"ann@example":           false,
		"":                      false,
		"Ann <ann@example.com>": false,
		"no-at-sign.com":        false,
	}
	for in, ok := range cases {
		got, err := normalizeEmail(in)
		if ok && (err != nil || got != "ann@example.com") {
			t.Errorf("normalizeEmail(%q) = %q, %v", in, got, err)
		}
		if !ok && err == nil {
			t.Errorf("normalizeEmail(%q) accepted %q", in, got)
		}
	}
}

func TestRenderMarkdownEscapesRawHTML(t *testing.T) {
	html, err := renderMarkdown("# Plan\n<script>alert(1)</script>\n- one\n- two")
	if err != nil {
		t.Fatal(err)
	}
	s := string(html)
	if strings.Contains(s, "<script>") {
		t.Fatalf("script survived: %s", s)
	}
	if !strings.Contains(s, "<h1") || !strings.Contains(s, "<li>one</li>") {
		t.Fatalf("markdown not rendered: %s", s)
	}
}

func TestOAuthConfigRequiresCredentials(t *testing.T) {
	if _, err := oauthConfig("github"); err == nil {
		t.Fatal("github accepted without client id")
	}
	if _, err := oauthConfig("myspace"); err == nil {
		t.Fatal("unknown provider accepted")
	}
}
