package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/PolarWolf314/gitseal/internal/utils"
)

// TimeLayout is the timestamp format of every entry: RFC3339 with microseconds, UTC.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp string   `json:"ts"`                // Set when the entry is written.
	Operation string   `json:"op"`                // encrypt or decrypt.
	RunID     string   `json:"run_id"`            // Unique per run.
	User      string   `json:"user,omitempty"`    // Local account that ran the command.
	Pattern   string   `json:"pattern,omitempty"` // Decrypt pattern, if any.
	Files     []string `json:"files,omitempty"`   // Files transformed, relative to the repo root.
	Failed    []string `json:"failed,omitempty"`  // Files that failed.
}

// NewEntry returns an entry for op with a fresh run id and the current user.
func NewEntry(op string) Entry {
	entry := Entry{Operation: op, RunID: uuid.NewString()}
	if name, err := utils.GetUsername(); err == nil {
		entry.User = name
	}
	return entry
}

// LogPath returns the audit log location for a repository. It lives inside
// .git so it is never committed or picked up by a tracked directory.
// Returns empty string if root has no .git directory.
func LogPath(root string) string {
	gitDir := filepath.Join(root, ".git")
	if info, err := os.Stat(gitDir); err != nil || !info.IsDir() {
		return ""
	}
	return filepath.Join(gitDir, "gitseal", "audit.jsonl")
}

// Log appends an entry to the repository's audit log.
// If logging fails the entry is dropped; operations never fail because of it.
func Log(root string, entry Entry) {
	logPath := LogPath(root)
	if logPath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return
	}

	// #nosec G302 -- the log lives in .git and holds no secrets.
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	logger := newLogger(f)
	defer func() { _ = logger.Sync() }()

	fields := []zap.Field{zap.String("run_id", entry.RunID)}
	if entry.User != "" {
		fields = append(fields, zap.String("user", entry.User))
	}
	if entry.Pattern != "" {
		fields = append(fields, zap.String("pattern", entry.Pattern))
	}
	if len(entry.Files) > 0 {
		fields = append(fields, zap.Strings("files", entry.Files))
	}
	if len(entry.Failed) > 0 {
		fields = append(fields, zap.Strings("failed", entry.Failed))
	}
	logger.Info(entry.Operation, fields...)
}

// newLogger builds a zap logger that writes bare JSON lines: ts, op and the
// entry fields, with no level or caller.
func newLogger(f *os.File) *zap.Logger {
	encCfg := zapcore.EncoderConfig{
		TimeKey:    "ts",
		MessageKey: "op",
		LineEnding: zapcore.DefaultLineEnding,
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.UTC().Format(TimeLayout))
		},
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), zapcore.InfoLevel)
	return zap.New(core)
}

// ReadEntries reads all entries from the repository's audit log.
// Returns an empty slice if the log doesn't exist.
func ReadEntries(root string) ([]Entry, error) {
	logPath := LogPath(root)
	if logPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data), nil
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are skipped so a torn final write does not hide history.
func ParseEntries(data []byte) []Entry {
	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries
}
