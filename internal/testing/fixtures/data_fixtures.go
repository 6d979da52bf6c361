package fixtures

import (
	"bytes"
	"encoding/csv"
	"path"
	"unicode/utf8"

	"github.com/vvka-141/pgbulk/internal/files/filesystem"
)

// DataDir is the root of every fixture filesystem.
const DataDir = "/data"

// DataFixtureBuilder provides a fluent API for building in-memory data
// directories of delimited files.
//
// Example usage:
//
//	fs := NewDataFixtureBuilder().
//	    AddCSV("players.csv", ",", []string{"player_id", "match_id", "player_name", "team"},
//	        []string{"P1", "100", "Alice", "TeamA"}).
//	    AddFile("notes.txt", "free text").
//	    Build()
type DataFixtureBuilder struct {
	files map[string]string // name -> content
}

func NewDataFixtureBuilder() *DataFixtureBuilder {
	return &DataFixtureBuilder{files: make(map[string]string)}
}

// AddFile adds a file verbatim, name relative to DataDir.
func (b *DataFixtureBuilder) AddFile(name, content string) *DataFixtureBuilder {
	b.files[name] = content
	return b
}

// AddCSV adds a delimited file with a header line. Fields are quoted only
// where the delimiter, quotes, or line breaks require it.
func (b *DataFixtureBuilder) AddCSV(name, delimiter string, header []string, rows ...[]string) *DataFixtureBuilder {
	b.files[name] = EncodeCSV(delimiter, header, rows...)
	return b
}

// Build returns a filesystem rooted at DataDir holding the accumulated files.
func (b *DataFixtureBuilder) Build() *filesystem.MemoryFileSystem {
	fs := filesystem.NewMemoryFileSystem(DataDir)
	for name, content := range b.files {
		fs.AddFile(path.Join(DataDir, name), content)
	}
	return fs
}

// EncodeCSV renders header and rows with the given single-character delimiter.
func EncodeCSV(delimiter string, header []string, rows ...[]string) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if r, _ := utf8.DecodeRuneInString(delimiter); r != utf8.RuneError {
		w.Comma = r
	}
	w.Write(header) //nolint:errcheck
	for _, row := range rows {
		w.Write(row) //nolint:errcheck
	}
	w.Flush()
	return buf.String()
}

// ============================================================================
// Pre-built Fixtures
// ============================================================================

var (
	PlayersHeader = []string{"player_id", "match_id", "player_name", "team"}
	MatchesHeader = []string{
		"match_id", "season", "match_date", "venue", "city", "team1", "team2",
		"toss_winner", "toss_decision", "winner", "result_margin", "result_type", "player_of_match",
	}
	InningsHeader = []string{"match_id", "innings_no", "batting_team", "bowling_team", "total_runs", "wickets", "overs"}
)

// CricketSmall holds two players, one match and one innings, comma-delimited.
func CricketSmall() *filesystem.MemoryFileSystem {
	return NewDataFixtureBuilder().
		AddCSV("players.csv", ",", PlayersHeader,
			[]string{"P1", "100", "Alice", "TeamA"},
			[]string{"P2", "100", "Bob", "TeamB"},
		).
		AddCSV("matches.csv", ",", MatchesHeader,
			[]string{"100", "2024", "2024-03-01", "Lord's", "London", "TeamA", "TeamB",
				"TeamA", "bat", "TeamA", "12", "runs", "Alice"},
		).
		AddCSV("innings.csv", ",", InningsHeader,
			[]string{"100", "1", "TeamA", "TeamB", "180", "6", "20.0"},
		).
		Build()
}

// CricketBadMatchID holds a players file whose second row has a non-numeric match_id.
func CricketBadMatchID() *filesystem.MemoryFileSystem {
	return NewDataFixtureBuilder().
		AddCSV("players.csv", ",", PlayersHeader,
			[]string{"P1", "100", "Alice", "TeamA"},
			[]string{"P2", "abc", "Bob", "TeamB"},
		).
		Build()
}

// CricketEmptyFields holds players with an empty text field (P3) and an
// empty integer field (P4).
func CricketEmptyFields() *filesystem.MemoryFileSystem {
	return NewDataFixtureBuilder().
		AddCSV("players.csv", ",", PlayersHeader,
			[]string{"P3", "100", "", "TeamC"},
			[]string{"P4", "", "Dan", "TeamD"},
		).
		Build()
}
