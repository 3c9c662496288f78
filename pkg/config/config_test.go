package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestLoadAgentConfigs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.json", `{
		"model": {"type": "gemini", "model": "gemini-2.0-flash"},
		"description": "Logistics dispatcher",
		"instruction": "Track shipments and explain delays.",
		"stream": true,
		"http_tools": [
			{
				"params": {"url": "http://tools:8084/mcp", "timeout": 30},
				"tools": ["shipment_check_status", "shipment_calculate_eta"]
			}
		]
	}`)
	writeFile(t, dir, "agent-card.json", `{
		"name": "cargoflow-dispatcher",
		"description": "Shipment tracking agent",
		"url": "http://localhost:8080/"
	}`)

	config, card, err := LoadAgentConfigs(dir)
	if err != nil {
		t.Fatalf("LoadAgentConfigs returned error: %v", err)
	}

	if config.Model.Type != "gemini" || config.Model.Model != "gemini-2.0-flash" {
		t.Errorf("unexpected model config: %+v", config.Model)
	}
	if !config.GetStream() {
		t.Error("expected stream to be enabled")
	}
	if len(config.HttpTools) != 1 {
		t.Fatalf("expected one http tool server, got %d", len(config.HttpTools))
	}
	if config.HttpTools[0].Params.Url != "http://tools:8084/mcp" {
		t.Errorf("unexpected tool url: %s", config.HttpTools[0].Params.Url)
	}
	if len(config.HttpTools[0].Tools) != 2 {
		t.Errorf("unexpected tool filter: %v", config.HttpTools[0].Tools)
	}

	if card.Name != "cargoflow-dispatcher" {
		t.Errorf("unexpected card name: %s", card.Name)
	}
}

func TestLoadAgentConfigsMissingDir(t *testing.T) {
	_, _, err := LoadAgentConfigs(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("expected error for missing config directory")
	}
}

func TestLoadAgentConfigValidation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.json", `{"model": {"type": ""}, "instruction": ""}`)
	writeFile(t, dir, "agent-card.json", `{"name": "x"}`)

	_, _, err := LoadAgentConfigs(dir)
	if err == nil {
		t.Fatal("expected validation error for empty model type")
	}
}

func TestGetStreamDefault(t *testing.T) {
	config := &AgentConfig{}
	if config.GetStream() {
		t.Error("expected stream to default to false")
	}
}
