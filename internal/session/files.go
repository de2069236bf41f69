package session

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucashald/skill-check/internal/engine"
	"gopkg.in/yaml.v3"
)

// LoadCharacter reads the character file at path. Fields missing from the file
// keep their defaults. A missing file yields the default character and
// found=false.
func LoadCharacter(path string) (ch *engine.Character, found bool, err error) {
	ch = engine.DefaultCharacter()
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return ch, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read character file: %w", err)
	}
	if err := yaml.Unmarshal(raw, ch); err != nil {
		return nil, false, fmt.Errorf("failed to parse character file %s: %w", path, err)
	}
	ch.Normalize()
	return ch, true, nil
}

// SaveCharacter writes ch to path through a temporary file in the same directory.
func SaveCharacter(path string, ch *engine.Character) error {
	raw, err := yaml.Marshal(ch)
	if err != nil {
		return fmt.Errorf("failed to marshal character: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".character-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to save character: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save character: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save character: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save character: %w", err)
	}
	return nil
}

// LoadTranscript reads a chat transcript. Files ending in .jsonl hold one
// message per line; anything else is a YAML (or JSON) list. Messages without
// an index are numbered by position.
func LoadTranscript(path string) ([]engine.Message, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	msgs, err := decodeTranscript(raw, strings.EqualFold(filepath.Ext(path), ".jsonl"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcript %s: %w", path, err)
	}
	return msgs, nil
}

type transcriptLine struct {
	Index  *int   `json:"index" yaml:"index"`
	IsUser bool   `json:"is_user" yaml:"is_user"`
	Text   string `json:"text" yaml:"text"`
}

func decodeTranscript(raw []byte, jsonl bool) ([]engine.Message, error) {
	var lines []transcriptLine
	if jsonl {
		scanner := bufio.NewScanner(bytes.NewReader(raw))
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		n := 0
		for scanner.Scan() {
			n++
			if len(bytes.TrimSpace(scanner.Bytes())) == 0 {
				continue
			}
			var l transcriptLine
			if err := json.Unmarshal(scanner.Bytes(), &l); err != nil {
				return nil, fmt.Errorf("line %d: %w", n, err)
			}
			lines = append(lines, l)
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	} else if err := yaml.Unmarshal(raw, &lines); err != nil {
		return nil, err
	}

	msgs := make([]engine.Message, 0, len(lines))
	for i, l := range lines {
		idx := i
		if l.Index != nil {
			idx = *l.Index
		}
		msgs = append(msgs, engine.Message{Index: idx, IsUser: l.IsUser, Text: l.Text})
	}
	return msgs, nil
}
