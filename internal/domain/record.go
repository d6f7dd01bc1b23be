package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Record is one license-usage observation: which software was served from
// which license server, where, and how heavily the license was used.
type Record struct {
	Software              string `json:"software"                db:"software"`
	Server                string `json:"server"                  db:"server"`
	Location              string `json:"location"                db:"location"`
	License               string `json:"license"                 db:"license"`
	LatestLicenseIssued   int    `json:"latest_license_issued"   db:"latest_license_issued"`
	LicenseDayPeak        int    `json:"license_day_peak"        db:"license_day_peak"`
	LicenseDayAverage     int    `json:"license_day_average"     db:"license_day_average"`
	LicenseWorkPeak       int    `json:"license_work_peak"       db:"license_work_peak"`
	LicenseWorkAverage    int    `json:"license_work_average"    db:"license_work_average"`
	PercentageWorkPeak    int    `json:"percentage_work_peak"    db:"percentage_work_peak"`
	PercentageWorkAverage int    `json:"percentage_work_average" db:"percentage_work_average"`
}

// ContextLine flattens the record into a single descriptive line. The same
// line is embedded at index-build time and shown to the LLM as context, so
// records with shared software or location land near each other in vector space.
func (r Record) ContextLine() string {
	return fmt.Sprintf(
		"%s | %s | %s | license:%s | latest:%d | day_peak:%d | day_avg:%d | work_peak:%d | work_avg:%d",
		r.Software, r.Server, r.Location, r.License,
		r.LatestLicenseIssued, r.LicenseDayPeak, r.LicenseDayAverage,
		r.LicenseWorkPeak, r.LicenseWorkAverage,
	)
}

// DatasetSnapshot is an immutable point-in-time view of the dataset.
// The hash changes exactly when record content changes; it is the sole
// trigger for index invalidation.
type DatasetSnapshot struct {
	Records []Record
	Hash    string
}

// NewDatasetSnapshot captures the given records and computes their content hash.
func NewDatasetSnapshot(records []Record) (*DatasetSnapshot, error) {
	hash, err := HashRecords(records)
	if err != nil {
		return nil, err
	}
	return &DatasetSnapshot{Records: records, Hash: hash}, nil
}

// HashRecords computes a SHA-256 digest over the canonical JSON serialization
// of the records. Struct field order is fixed, so the digest is deterministic.
func HashRecords(records []Record) (string, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("hash records: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// DistinctValues returns the sorted unique values of one subject field across
// the whole snapshot. Aggregate answers are always computed here, from every
// record, never from top-K retrieval.
func (s *DatasetSnapshot) DistinctValues(subject Subject) []string {
	seen := make(map[string]struct{}, len(s.Records))
	for _, r := range s.Records {
		v := subjectValue(r, subject)
		if v != "" {
			seen[v] = struct{}{}
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

func subjectValue(r Record, subject Subject) string {
	switch subject {
	case SubjectSoftware:
		return r.Software
	case SubjectServer:
		return r.Server
	case SubjectLocation:
		return r.Location
	case SubjectLicense:
		return r.License
	default:
		return ""
	}
}
