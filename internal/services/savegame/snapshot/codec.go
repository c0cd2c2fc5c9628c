package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	// CurrentVersion is written into every new record.
	CurrentVersion = 2
	// minimalVersion is assumed for records written before versioning; they
	// carry only health, position and facing for the player.
	minimalVersion = 1
)

// Document is the on-disk form of a Snapshot.
type Document struct {
	Version   int       `json:"version" jsonschema:"required,minimum=1"`
	SaveName  string    `json:"saveName" jsonschema:"required"`
	SavedAt   time.Time `json:"savedAt" jsonschema:"required"`
	SceneName string    `json:"sceneName" jsonschema:"required,minLength=1"`
	Player    Player    `json:"player" jsonschema:"required"`
	Enemies   []Enemy   `json:"enemies" jsonschema:"required"`
	Progress  Progress  `json:"progress" jsonschema:"required"`
}

// UnmarshalJSON accepts savedAt as an RFC 3339 string or as epoch seconds.
func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	aux := struct {
		*plain
		SavedAt json.RawMessage `json:"savedAt"`
	}{plain: (*plain)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	savedAt, err := parseTimestamp(aux.SavedAt)
	if err != nil {
		return err
	}
	d.SavedAt = savedAt
	return nil
}

// Encode serializes s as a current-version record.
func Encode(s Snapshot) ([]byte, error) {
	enemies := s.Enemies
	if enemies == nil {
		enemies = []Enemy{}
	}
	doc := Document{
		Version:   CurrentVersion,
		SaveName:  s.SaveName,
		SavedAt:   s.SavedAt.UTC(),
		SceneName: s.SceneName,
		Player:    s.Player,
		Enemies:   enemies,
		Progress:  s.Progress,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a record. Any error means the bytes are not a usable record.
func Decode(data []byte) (Snapshot, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return Snapshot{}, err
	}
	if strings.TrimSpace(doc.SceneName) == "" {
		return Snapshot{}, fmt.Errorf("decode snapshot: record has no sceneName")
	}
	enemies := doc.Enemies
	if len(enemies) == 0 {
		enemies = nil
	}
	return Snapshot{
		SaveName:  doc.SaveName,
		SavedAt:   doc.SavedAt,
		SceneName: doc.SceneName,
		Player:    doc.Player,
		Enemies:   enemies,
		Progress:  doc.Progress,
	}, nil
}

func decodeDocument(data []byte) (Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Document{}, fmt.Errorf("decode snapshot: empty record")
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if doc.Version == 0 {
		doc.Version = minimalVersion
	}
	if doc.Version < minimalVersion || doc.Version > CurrentVersion {
		return Document{}, fmt.Errorf("decode snapshot: unsupported version %d", doc.Version)
	}
	return doc, nil
}

func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, nil
	}
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return time.Time{}, fmt.Errorf("decode savedAt: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, text)
		if err != nil {
			return time.Time{}, fmt.Errorf("decode savedAt: %w", err)
		}
		return parsed.UTC(), nil
	}
	var seconds float64
	if err := json.Unmarshal(raw, &seconds); err != nil {
		return time.Time{}, fmt.Errorf("decode savedAt: %w", err)
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return time.Time{}, fmt.Errorf("decode savedAt: invalid epoch %v", seconds)
	}
	whole, frac := math.Modf(seconds)
	return time.Unix(int64(whole), int64(math.Round(frac*1e9))).UTC(), nil
}
