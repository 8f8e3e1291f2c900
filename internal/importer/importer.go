package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KianBaghai/fantasy-predictor/internal/logger"
	"github.com/KianBaghai/fantasy-predictor/internal/models"
	"github.com/KianBaghai/fantasy-predictor/internal/scoring"
)

// positionFiles maps each position to its projection file within the
// projections directory
var positionFiles = map[models.Position]string{
	models.PositionQB: "qb.csv",
	models.PositionRB: "rb.csv",
	models.PositionWR: "wr.csv",
	models.PositionTE: "te.csv",
}

// nameColumns are tried in order before falling back to a substring match
var nameColumns = []string{"player", "name", "player_name", "full_name"}

// fieldAliases maps normalized source headers to canonical stat keys
var fieldAliases = map[string]string{
	"pass_yds": scoring.StatPassYds, "passing_yds": scoring.StatPassYds,
	"passing_yards": scoring.StatPassYds, "pass_yards": scoring.StatPassYds,
	"pass_td": scoring.StatPassTD, "pass_tds": scoring.StatPassTD,
	"passing_td": scoring.StatPassTD, "passing_tds": scoring.StatPassTD,
	"passing_touchdowns": scoring.StatPassTD,
	"int":                scoring.StatInt, "ints": scoring.StatInt,
	"interceptions": scoring.StatInt,
	"rush_yds":      scoring.StatRushYds, "rushing_yds": scoring.StatRushYds,
	"rushing_yards": scoring.StatRushYds, "rush_yards": scoring.StatRushYds,
	"rush_td": scoring.StatRushTD, "rush_tds": scoring.StatRushTD,
	"rushing_td": scoring.StatRushTD, "rushing_tds": scoring.StatRushTD,
	"rushing_touchdowns": scoring.StatRushTD,
	"rec_yds":            scoring.StatRecYds, "receiving_yds": scoring.StatRecYds,
	"receiving_yards": scoring.StatRecYds, "rec_yards": scoring.StatRecYds,
	"rec_td": scoring.StatRecTD, "rec_tds": scoring.StatRecTD,
	"receiving_td": scoring.StatRecTD, "receiving_tds": scoring.StatRecTD,
	"receiving_touchdowns": scoring.StatRecTD,
	"rec":                  scoring.StatRec, "recs": scoring.StatRec,
	"receptions": scoring.StatRec, "catches": scoring.StatRec,
}

// primaryStat resolves bare "yds"/"td" headers by the position's main
// stat category
var primaryStat = map[models.Position]string{
	models.PositionQB: "pass",
	models.PositionRB: "rush",
	models.PositionWR: "rec",
	models.PositionTE: "rec",
}

// LoadDir reads the four per-position projection files from dir. Missing
// files are skipped with a warning; only an unreadable directory is an
// error.
func LoadDir(dir string) (map[models.Position][]models.StatRow, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("projections directory: %w", err)
	}

	byPosition := make(map[models.Position][]models.StatRow, len(positionFiles))
	for pos, file := range positionFiles {
		path := filepath.Join(dir, file)
		f, err := os.Open(path)
		if err != nil {
			logger.Warn("Projection file missing, skipping position", "position", string(pos), "path", path)
			continue
		}

		rows, err := ParseRows(f, pos)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}

		logger.Info("Imported projections", "position", string(pos), "rows", len(rows))
		byPosition[pos] = rows
	}
	return byPosition, nil
}

// ParseRows reads one position's projection table. The name column is
// located heuristically; numeric fields are parsed permissively with
// unusable values contributing zero. Input-shape problems are recovered
// with fallbacks, never returned as errors.
func ParseRows(r io.Reader, pos models.Position) ([]models.StatRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	headers := records[0]
	nameIdx := detectNameColumn(headers)
	if nameIdx == -1 {
		logger.Warn("No name column detected, using synthetic row names", "position", string(pos))
	}

	keys := make([]string, len(headers))
	for i, h := range headers {
		keys[i] = canonicalKey(h, pos)
	}

	rows := make([]models.StatRow, 0, len(records)-1)
	for n, record := range records[1:] {
		row := models.StatRow{
			Fields: make(map[string]float64),
			Attrs:  make(map[string]string),
		}

		for i, cell := range record {
			if i >= len(headers) {
				break
			}
			row.Attrs[strings.TrimSpace(headers[i])] = cell
			if i == nameIdx {
				row.Name = strings.TrimSpace(cell)
				continue
			}
			if keys[i] != "" {
				row.Fields[keys[i]] += ParseNumber(cell)
			}
		}

		if row.Name == "" {
			row.Name = fmt.Sprintf("%s Row %d", pos, n+1)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// detectNameColumn returns the index of the player-name column, trying
// the fixed candidate list first and then any header containing "name"
// or "player". Returns -1 when nothing matches.
func detectNameColumn(headers []string) int {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalize(h)
	}

	for _, candidate := range nameColumns {
		for i, h := range normalized {
			if h == candidate {
				return i
			}
		}
	}
	for i, h := range normalized {
		if strings.Contains(h, "name") || strings.Contains(h, "player") {
			return i
		}
	}
	return -1
}

// canonicalKey maps a source header to a canonical stat key, or "" when
// the column carries no scoring stat
func canonicalKey(header string, pos models.Position) string {
	h := normalize(header)
	if key, ok := fieldAliases[h]; ok {
		return key
	}

	// Bare stat headers are scoped by the position's primary category
	switch h {
	case "yds", "yards":
		return fieldAliases[primaryStat[pos]+"_yds"]
	case "td", "tds", "touchdowns":
		return fieldAliases[primaryStat[pos]+"_td"]
	}
	return ""
}

// normalize lowercases a header and collapses separator runs to "_"
func normalize(h string) string {
	var b strings.Builder
	lastSep := true
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
			lastSep = false
		} else if !lastSep {
			b.WriteByte('_')
			lastSep = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// ParseNumber parses a numeric cell permissively: thousands separators
// are stripped and anything unparsable is zero
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
