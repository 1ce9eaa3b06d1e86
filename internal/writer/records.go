package writer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"poewiki/internal/model"
)

// maxRecordLine bounds a single JSON line when reading records back.
const maxRecordLine = 4 << 20

// RecordLines writes one JSON object per record, keys in field order.
type RecordLines struct{}

func (RecordLines) Lines(rs model.RecordSet) ([]string, error) {
	lines := make([]string, 0, len(rs))
	for i, r := range rs {
		b, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		lines = append(lines, string(b))
	}
	return lines, nil
}

// ReadRecords parses JSON Lines written by RecordLines. Blank lines are
// ignored.
func ReadRecords(r io.Reader) (model.RecordSet, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxRecordLine)

	rs := model.RecordSet{}
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var rec model.Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rs = append(rs, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}

func ReadRecordFile(path string) (model.RecordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRecords(f)
}
