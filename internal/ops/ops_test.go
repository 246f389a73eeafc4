package ops

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hpungsan/sigdecode/internal/cipher"
	"github.com/hpungsan/sigdecode/internal/config"
	"github.com/hpungsan/sigdecode/internal/db"
	"github.com/hpungsan/sigdecode/internal/dictionary"
)

// sampleSignal is an upper-case ciphertext whose single full-length window
// decodes to words seeded into the test dictionary.
const sampleSignal = "XLI UYMGO FVSAR JSB NYQTW SZIV XLI PEDC HSK"

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// writeSignal writes text to a temp file and returns its path.
func writeSignal(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "signal.txt")
	if err := os.WriteFile(path, []byte(text+"\n"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

// matchingDict returns a dictionary containing every token the full-length
// window of text decodes to.
func matchingDict(text string) *dictionary.Set {
	decoded := cipher.Decode(text, cipher.BuildTable(cipher.Rank(text)))
	return dictionary.New(cipher.Tokens(decoded))
}

func testConfig(t *testing.T, signalPath string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.SignalPath = signalPath
	cfg.WindowLength = len([]rune(sampleSignal))
	cfg.AllowedPaths = []string{t.TempDir()}
	return cfg
}

func decodeSample(t *testing.T, database *sql.DB) (*config.Config, *dictionary.Set, *DecodeOutput) {
	t.Helper()
	cfg := testConfig(t, writeSignal(t, sampleSignal))
	dict := matchingDict(sampleSignal)
	out, err := Decode(context.Background(), database, cfg, dict, zerolog.Nop(), DecodeInput{})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return cfg, dict, out
}
