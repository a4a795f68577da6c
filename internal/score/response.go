package score

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Entry is the risk for one requested admission.
type Entry struct {
	HadmID          int64   `json:"hadm_id"`
	ReadmissionRisk float64 `json:"readmissionRisk"`
}

// Response pairs requested ids with their risk. Entries keep request order and
// duplicates; dropped ids are absent.
type Response struct {
	Entries []Entry
}

// BuildResponse pairs each requested id with its scored risk. Ids without a
// scored record are skipped.
func BuildResponse(ids []int64, scored []Scored) Response {
	risk := make(map[int64]float64, len(scored))
	for _, s := range scored {
		if _, ok := risk[s.Record.HadmID]; !ok {
			risk[s.Record.HadmID] = s.Risk
		}
	}
	entries := make([]Entry, 0, len(scored))
	for _, id := range ids {
		if r, ok := risk[id]; ok {
			entries = append(entries, Entry{HadmID: id, ReadmissionRisk: r})
		}
	}
	return Response{Entries: entries}
}

// Len returns the number of distinct ids in the response.
func (r Response) Len() int {
	seen := make(map[int64]struct{}, len(r.Entries))
	for _, e := range r.Entries {
		seen[e.HadmID] = struct{}{}
	}
	return len(seen)
}

type riskValue struct {
	ReadmissionRisk float64 `json:"readmissionRisk"`
}

// MarshalJSON writes {"<id>": {"readmissionRisk": p}, ...} with each distinct
// id once, in first-occurrence order.
func (r Response) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	seen := make(map[int64]struct{}, len(r.Entries))
	for _, e := range r.Entries {
		if _, ok := seen[e.HadmID]; ok {
			continue
		}
		seen[e.HadmID] = struct{}{}
		if len(seen) > 1 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.FormatInt(e.HadmID, 10)))
		buf.WriteByte(':')
		v, err := json.Marshal(riskValue{ReadmissionRisk: e.ReadmissionRisk})
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
