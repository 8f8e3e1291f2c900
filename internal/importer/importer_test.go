package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KianBaghai/fantasy-predictor/internal/logger"
	"github.com/KianBaghai/fantasy-predictor/internal/models"
	"github.com/KianBaghai/fantasy-predictor/internal/scoring"
)

func init() {
	logger.Init()
}

func TestParseRowsFantasyProsStyle(t *testing.T) {
	csvData := `Player,Team,Pass Yds,Pass TDs,Ints,Rush Yds,Rush TDs
Josh Allen,BUF,"4,306",29,18,523,15
Jalen Hurts,PHI,3701,22,15,605,15
`
	rows, err := ParseRows(strings.NewReader(csvData), models.PositionQB)
	if err != nil {
		t.Fatalf("ParseRows() failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	allen := rows[0]
	if allen.Name != "Josh Allen" {
		t.Errorf("Name = %q, want Josh Allen", allen.Name)
	}
	if allen.Fields[scoring.StatPassYds] != 4306 {
		t.Errorf("pass_yds = %v, want 4306 (thousands separator stripped)", allen.Fields[scoring.StatPassYds])
	}
	if allen.Fields[scoring.StatPassTD] != 29 {
		t.Errorf("pass_td = %v, want 29", allen.Fields[scoring.StatPassTD])
	}
	if allen.Fields[scoring.StatInt] != 18 {
		t.Errorf("int = %v, want 18", allen.Fields[scoring.StatInt])
	}
	if allen.Fields[scoring.StatRushYds] != 523 {
		t.Errorf("rush_yds = %v, want 523", allen.Fields[scoring.StatRushYds])
	}
	if allen.Attrs["Team"] != "BUF" {
		t.Errorf("Attrs[Team] = %q, want BUF", allen.Attrs["Team"])
	}
}

func TestParseRowsBareHeadersScopedByPosition(t *testing.T) {
	csvData := `Name,Yds,TDs,Rec
Tyreek Hill,1799,13,119
`
	rows, err := ParseRows(strings.NewReader(csvData), models.PositionWR)
	if err != nil {
		t.Fatalf("ParseRows() failed: %v", err)
	}

	hill := rows[0]
	if hill.Fields[scoring.StatRecYds] != 1799 {
		t.Errorf("bare Yds should map to rec_yds for WR, got %v", hill.Fields[scoring.StatRecYds])
	}
	if hill.Fields[scoring.StatRecTD] != 13 {
		t.Errorf("bare TDs should map to rec_td for WR, got %v", hill.Fields[scoring.StatRecTD])
	}
	if hill.Fields[scoring.StatRec] != 119 {
		t.Errorf("rec = %v, want 119", hill.Fields[scoring.StatRec])
	}
}

func TestDetectNameColumn(t *testing.T) {
	tests := []struct {
		headers []string
		want    int
	}{
		{[]string{"Player", "Yds"}, 0},
		{[]string{"Rank", "NAME", "Yds"}, 1},
		{[]string{"Rank", "player_name"}, 1},
		{[]string{"rk", "Player Name", "pts"}, 1},
		{[]string{"rk", "athlete"}, -1},
		{nil, -1},
	}

	for _, tt := range tests {
		if got := detectNameColumn(tt.headers); got != tt.want {
			t.Errorf("detectNameColumn(%v) = %d, want %d", tt.headers, got, tt.want)
		}
	}
}

func TestParseRowsSyntheticNames(t *testing.T) {
	csvData := `rk,yds
1,1000
2,900
`
	rows, err := ParseRows(strings.NewReader(csvData), models.PositionRB)
	if err != nil {
		t.Fatalf("ParseRows() failed: %v", err)
	}
	if rows[0].Name != "RB Row 1" || rows[1].Name != "RB Row 2" {
		t.Errorf("synthetic names = %q, %q", rows[0].Name, rows[1].Name)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1,234", 1234},
		{" 17.5 ", 17.5},
		{"", 0},
		{"-", 0},
		{"N/A", 0},
		{"-3", -3},
	}

	for _, tt := range tests {
		if got := ParseNumber(tt.in); got != tt.want {
			t.Errorf("ParseNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoadDirSkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	qb := "Player,Pass Yds,Pass TDs\nTest QB,4000,30\n"
	if err := os.WriteFile(filepath.Join(dir, "qb.csv"), []byte(qb), 0o644); err != nil {
		t.Fatal(err)
	}

	byPos, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() failed: %v", err)
	}
	if len(byPos[models.PositionQB]) != 1 {
		t.Errorf("QB rows = %d, want 1", len(byPos[models.PositionQB]))
	}
	if _, ok := byPos[models.PositionRB]; ok {
		t.Error("missing rb.csv should leave RB absent, not empty")
	}
}

func TestLoadDirMissingDirectory(t *testing.T) {
	if _, err := LoadDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("LoadDir() on a missing directory should fail")
	}
}

func TestWatcherFiresOnCSVWrite(t *testing.T) {
	dir := t.TempDir()
	changed := make(chan struct{}, 1)

	w, err := Watch(dir, 50*time.Millisecond, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "rb.csv"), []byte("Player,Yds\nA,100\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not fire on CSV write")
	}
}

func TestWatcherIgnoresNonCSV(t *testing.T) {
	dir := t.TempDir()
	changed := make(chan struct{}, 1)

	w, err := Watch(dir, 50*time.Millisecond, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
		t.Fatal("watcher fired on a non-CSV file")
	case <-time.After(300 * time.Millisecond):
	}
}
