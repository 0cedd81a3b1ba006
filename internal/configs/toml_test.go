package configs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoadTOML(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "test.toml")

	original := Config{
		UseZstd:   false,
		ZstdLevel: 3,
		CryptList: []string{"secrets/key.txt", "config"},
	}

	if err := SaveTOML(testFile, original); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	loaded := Config{}
	if err := LoadTOML(testFile, &loaded); err != nil {
		t.Fatalf("LoadTOML failed: %v", err)
	}

	if loaded.UseZstd != original.UseZstd {
		t.Errorf("Expected UseZstd %v, got %v", original.UseZstd, loaded.UseZstd)
	}
	if loaded.ZstdLevel != original.ZstdLevel {
		t.Errorf("Expected ZstdLevel %d, got %d", original.ZstdLevel, loaded.ZstdLevel)
	}
	if len(loaded.CryptList) != 2 || loaded.CryptList[1] != "config" {
		t.Errorf("Expected CryptList %v, got %v", original.CryptList, loaded.CryptList)
	}
}

func TestLoadTOMLNonExistent(t *testing.T) {
	tempDir := t.TempDir()

	data := Config{}
	if err := LoadTOML(filepath.Join(tempDir, "nonexistent.toml"), &data); err == nil {
		t.Fatal("Expected error for non-existent file, got nil")
	}
}

func TestLoadTOMLRejectsUnknownKeys(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "test.toml")
	if err := os.WriteFile(testFile, []byte("zstd_level = 3\ncrypt_lsit = []\n"), 0600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	data := Config{}
	if err := LoadTOML(testFile, &data); err == nil {
		t.Fatal("Expected error for misspelled key, got nil")
	}
}

func TestSaveTOMLCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "subdir", "test.toml")

	if err := SaveTOML(testFile, Config{ZstdLevel: 1}); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	if _, err := os.Stat(testFile); os.IsNotExist(err) {
		t.Fatal("File was not created")
	}
	if _, err := os.Stat(testFile + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("Temporary file was left behind")
	}
}
