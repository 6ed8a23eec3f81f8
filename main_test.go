package main

import (
	"testing"

	"strapimcp/cmd"
)

func TestDefaultVersion(t *testing.T) {
	if version != "dev" {
		t.Errorf("Expected default version to be 'dev', got %s", version)
	}
}

func TestVersionInjection(t *testing.T) {
	cmd.SetVersion("1.2.3")
	defer cmd.SetVersion(version)

	if got := cmd.GetVersion(); got != "1.2.3" {
		t.Errorf("Expected injected version 1.2.3, got %s", got)
	}
}
