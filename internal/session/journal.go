package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/lucashald/skill-check/internal/engine"
)

// EventWrapper serializes polymorphic engine events to JSONL.
type EventWrapper struct {
	ID   string           `json:"id"`
	Time time.Time        `json:"time"`
	Type engine.EventType `json:"type"`
	Data json.RawMessage  `json:"data"`
}

// Record is one decoded journal line.
type Record struct {
	ID    string
	Time  time.Time
	Event engine.Event
}

// Journal is the append-only log of everything applied to the character.
type Journal interface {
	Append(evt engine.Event) error
	Load() ([]Record, error)
	Close() error
}

// FileJournal handles append-only storage of engine events as JSONL.
type FileJournal struct {
	file *os.File
	now  func() time.Time
}

// OpenJournal opens or creates a JSONL journal at the given path.
func OpenJournal(path string) (*FileJournal, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return &FileJournal{file: file, now: time.Now}, nil
}

// Append marshals an engine Event and appends it as a JSONL line.
func (j *FileJournal) Append(evt engine.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	line, err := json.Marshal(EventWrapper{
		ID:   uuid.NewString(),
		Time: j.now().UTC(),
		Type: evt.Type(),
		Data: data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal wrapper: %w", err)
	}

	if _, err := j.file.Write(append(line, '\n')); err != nil {
		return err
	}
	return j.file.Sync()
}

// Load replays the whole journal. Blank lines are skipped.
func (j *FileJournal) Load() ([]Record, error) {
	if _, err := j.file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	var records []Record
	scanner := bufio.NewScanner(j.file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var wrapper EventWrapper
		if err := json.Unmarshal(scanner.Bytes(), &wrapper); err != nil {
			return nil, fmt.Errorf("journal line %d: failed to decode wrapper: %w", line, err)
		}

		evt, err := unmarshalEvent(wrapper.Type, wrapper.Data)
		if err != nil {
			return nil, fmt.Errorf("journal line %d: %w", line, err)
		}
		records = append(records, Record{ID: wrapper.ID, Time: wrapper.Time, Event: evt})
	}

	return records, scanner.Err()
}

// Close closes the underlying file.
func (j *FileJournal) Close() error {
	return j.file.Close()
}

// unmarshalEvent reconstructs a concrete Event from its type discriminator and JSON data.
func unmarshalEvent(typ engine.EventType, data json.RawMessage) (engine.Event, error) {
	var evt engine.Event

	switch typ {
	case engine.EventItemAdded:
		evt = &engine.ItemAddedEvent{}
	case engine.EventItemRemoved:
		evt = &engine.ItemRemovedEvent{}
	case engine.EventSpellLearned:
		evt = &engine.SpellLearnedEvent{}
	case engine.EventLevelUpDetected:
		evt = &engine.LevelUpDetectedEvent{}
	case engine.EventLevelGained:
		evt = &engine.LevelGainedEvent{}
	case engine.EventLevelUpDeclined:
		evt = &engine.LevelUpDeclinedEvent{}
	case engine.EventCheckResolved:
		evt = &engine.CheckResolvedEvent{}
	default:
		return nil, fmt.Errorf("unknown event type: %s", typ)
	}

	if err := json.Unmarshal(data, evt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", typ, err)
	}
	return evt, nil
}

type discardJournal struct{}

func (discardJournal) Append(engine.Event) error { return nil }
func (discardJournal) Load() ([]Record, error)   { return nil, nil }
func (discardJournal) Close() error              { return nil }
