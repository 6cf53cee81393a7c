package persist

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite" // pure Go SQLite driver (no CGO required)
	"github.com/lucsky/cuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/demexconsole/console/internal/errs"
)

// Store owns the sqlite connection show snapshots are persisted to, as an
// owned *gorm.DB rather than a global one, since a console has exactly one
// show document store.
type Store struct {
	db *gorm.DB
}

// Open establishes a connection to the sqlite database at url (accepts a
// "file:./path" DSN) and migrates the ShowDocument schema.
func Open(url string) (*Store, error) {
	dbPath := strings.TrimPrefix(url, "file:")

	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errs.IO(err, "create show database directory %s", dir)
		}
	}

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{SlowThreshold: time.Second, LogLevel: logger.Silent, IgnoreRecordNotFoundError: true},
	)

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLogger, SkipDefaultTransaction: true})
	if err != nil {
		return nil, errs.IO(err, "open show database %s", dbPath)
	}

	if err := db.AutoMigrate(&ShowDocument{}); err != nil {
		return nil, errs.IO(err, "migrate show database schema")
	}

	return &Store{db: db}, nil
}

// Close closes the underlying sqlite connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save writes snap as a new ShowDocument row named name, returning its id.
func (s *Store) Save(name string, snap Snapshot) (string, error) {
	doc := ShowDocument{ID: cuid.New(), Name: name}

	var err error
	if doc.PatchJSON, err = marshal(snap.Patch); err != nil {
		return "", err
	}
	if doc.GroupsJSON, err = marshal(snap.Groups); err != nil {
		return "", err
	}
	if doc.PresetsJSON, err = marshal(snap.Presets); err != nil {
		return "", err
	}
	if doc.SequencesJSON, err = marshal(snap.Sequences); err != nil {
		return "", err
	}
	if doc.ExecutorsJSON, err = marshal(snap.Executors); err != nil {
		return "", err
	}
	if doc.TimingJSON, err = marshal(snap.SpeedMasters); err != nil {
		return "", err
	}

	if err := s.db.Create(&doc).Error; err != nil {
		return "", errs.IO(err, "save show document")
	}
	return doc.ID, nil
}

// Load reads back the ShowDocument at id as a Snapshot.
func (s *Store) Load(id string) (Snapshot, error) {
	var doc ShowDocument
	if err := s.db.First(&doc, "id = ?", id).Error; err != nil {
		return Snapshot{}, errs.Lookup("no show document with id %s", id)
	}
	return unmarshalDoc(doc)
}

// Latest returns the most recently saved ShowDocument as a Snapshot.
func (s *Store) Latest() (Snapshot, error) {
	var doc ShowDocument
	if err := s.db.Order("updated_at desc").First(&doc).Error; err != nil {
		return Snapshot{}, errs.Lookup("no show document saved yet")
	}
	return unmarshalDoc(doc)
}

func unmarshalDoc(doc ShowDocument) (Snapshot, error) {
	var snap Snapshot
	var err error
	if err = unmarshal(doc.PatchJSON, &snap.Patch); err != nil {
		return snap, err
	}
	if err = unmarshal(doc.GroupsJSON, &snap.Groups); err != nil {
		return snap, err
	}
	if err = unmarshal(doc.PresetsJSON, &snap.Presets); err != nil {
		return snap, err
	}
	if err = unmarshal(doc.SequencesJSON, &snap.Sequences); err != nil {
		return snap, err
	}
	if err = unmarshal(doc.ExecutorsJSON, &snap.Executors); err != nil {
		return snap, err
	}
	if err = unmarshal(doc.TimingJSON, &snap.SpeedMasters); err != nil {
		return snap, err
	}
	return snap, nil
}

func marshal(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", errs.IO(err, "marshal show document field")
	}
	return string(b), nil
}

func unmarshal(s string, v any) error {
	if s == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return errs.IO(err, "unmarshal show document field")
	}
	return nil
}
