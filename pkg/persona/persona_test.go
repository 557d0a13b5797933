// Tests for persona file parsing.
package persona

import (
	"os"
	"path/filepath"
	"testing"
)

func writePersona(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "PERSONA.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write PERSONA.md: %v", err)
	}
	return path
}

// TestLoadParsesFrontMatterAndBody verifies the body becomes the instruction.
func TestLoadParsesFrontMatterAndBody(t *testing.T) {
	path := writePersona(t, `---
name: secretaria
description: Agenda e lembretes
---

Você organiza a agenda do usuário.
Responda de forma breve.
`)

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Name != "secretaria" || p.Description != "Agenda e lembretes" {
		t.Fatalf("unexpected metadata: %+v", p)
	}
	want := "Você organiza a agenda do usuário.\nResponda de forma breve."
	if p.Instruction != want {
		t.Fatalf("unexpected instruction:\n got: %q\nwant: %q", p.Instruction, want)
	}
	if p.Path != path {
		t.Fatalf("expected path %q, got %q", path, p.Path)
	}
}

func TestLoadRejectsMissingFrontMatter(t *testing.T) {
	if _, err := Load(writePersona(t, "just text\nmore\nlines\n")); err == nil {
		t.Fatal("expected error without front matter")
	}
}

func TestLoadRejectsEmptyBody(t *testing.T) {
	if _, err := Load(writePersona(t, "---\nname: empty\n---\n\n")); err == nil {
		t.Fatal("expected error for empty instruction")
	}
}

func TestLoadRejectsMissingName(t *testing.T) {
	if _, err := Load(writePersona(t, "---\ndescription: x\n---\nbody\n")); err == nil {
		t.Fatal("expected error for missing name")
	}
}
