package tuning

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed tuning.schema.json
var schemaJSON string

// Tuning is the server configuration read from tuning.yaml.
type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version" json:"protocol_version"`

	Seed int64 `yaml:"seed" json:"seed"`

	Spawn         [2]int32 `yaml:"spawn_chunk" json:"spawn_chunk"`
	InitialRadius int      `yaml:"initial_radius" json:"initial_radius"`
	MaxInitial    int      `yaml:"max_initial_chunks" json:"max_initial_chunks"`
	MaxLoaded     int      `yaml:"max_loaded_chunks" json:"max_loaded_chunks"`

	OutboxSize      int `yaml:"outbox_size" json:"outbox_size"`
	InboxSize       int `yaml:"inbox_size" json:"inbox_size"`
	FlushEveryEdits int `yaml:"flush_every_edits" json:"flush_every_edits"`
	FlushEverySecs  int `yaml:"flush_every_secs" json:"flush_every_secs"`

	Storage Storage `yaml:"storage" json:"storage"`
}

type Storage struct {
	ChunkDB  string `yaml:"chunk_db" json:"chunk_db"`
	IndexDB  string `yaml:"index_db" json:"index_db"`
	AuditDir string `yaml:"audit_dir" json:"audit_dir"`
	Snapshot string `yaml:"snapshot" json:"snapshot"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1",
		Seed:            1337,
		InitialRadius:   6,
		MaxInitial:      256,
		MaxLoaded:       4096,
		OutboxSize:      512,
		InboxSize:       1024,
		FlushEveryEdits: 64,
		FlushEverySecs:  10,
		Storage: Storage{
			ChunkDB:  "chunks.ldb",
			IndexDB:  "index.sqlite",
			AuditDir: "audit",
			Snapshot: "snapshots",
		},
	}
}

var compiled *jsonschema.Schema

func schema() (*jsonschema.Schema, error) {
	if compiled != nil {
		return compiled, nil
	}
	s, err := jsonschema.CompileString("tuning.schema.json", schemaJSON)
	if err != nil {
		return nil, err
	}
	compiled = s
	return s, nil
}

// Load reads a tuning file and validates it against the embedded schema.
// Missing fields keep their Defaults value; explicit zeros are normalized
// back to the default.
func Load(path string) (Tuning, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, err
	}
	return Parse(raw)
}

func Parse(raw []byte) (Tuning, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Tuning{}, fmt.Errorf("tuning.yaml: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	// Round-trip through JSON so the validator sees JSON number types.
	js, err := json.Marshal(doc)
	if err != nil {
		return Tuning{}, fmt.Errorf("tuning.yaml: %w", err)
	}
	var inst any
	if err := json.Unmarshal(js, &inst); err != nil {
		return Tuning{}, fmt.Errorf("tuning.yaml: %w", err)
	}
	s, err := schema()
	if err != nil {
		return Tuning{}, fmt.Errorf("tuning schema: %w", err)
	}
	if err := s.Validate(inst); err != nil {
		return Tuning{}, fmt.Errorf("tuning.yaml: %w", err)
	}

	t := Defaults()
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return Tuning{}, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t.normalized(), nil
}

func (t Tuning) normalized() Tuning {
	d := Defaults()
	if strings.TrimSpace(t.ProtocolVersion) == "" {
		t.ProtocolVersion = d.ProtocolVersion
	}
	if t.InitialRadius <= 0 {
		t.InitialRadius = d.InitialRadius
	}
	if t.MaxInitial <= 0 {
		t.MaxInitial = d.MaxInitial
	}
	if t.MaxLoaded <= 0 {
		t.MaxLoaded = d.MaxLoaded
	}
	if t.OutboxSize <= 0 {
		t.OutboxSize = d.OutboxSize
	}
	if t.InboxSize <= 0 {
		t.InboxSize = d.InboxSize
	}
	if t.FlushEveryEdits <= 0 {
		t.FlushEveryEdits = d.FlushEveryEdits
	}
	if t.FlushEverySecs <= 0 {
		t.FlushEverySecs = d.FlushEverySecs
	}
	if t.Storage.ChunkDB == "" {
		t.Storage.ChunkDB = d.Storage.ChunkDB
	}
	if t.Storage.IndexDB == "" {
		t.Storage.IndexDB = d.Storage.IndexDB
	}
	if t.Storage.AuditDir == "" {
		t.Storage.AuditDir = d.Storage.AuditDir
	}
	if t.Storage.Snapshot == "" {
		t.Storage.Snapshot = d.Storage.Snapshot
	}
	return t
}

// Digest is the sha256 of the canonical JSON form of the applied values.
func (t Tuning) Digest() string {
	b, _ := json.Marshal(t)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
