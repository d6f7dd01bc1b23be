package source

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/arturoeanton/go-license-rag-ollama/internal/domain"
	"github.com/arturoeanton/go-license-rag-ollama/internal/port"
)

var requiredFields = []string{"software", "server", "location", "license"}

var numericFields = []string{
	"latest_license_issued",
	"license_day_peak",
	"license_day_average",
	"license_work_peak",
	"license_work_average",
	"percentage_work_peak",
	"percentage_work_average",
}

// decodeRecords parses a JSON array of record objects, validating that every
// required field is present and every usage metric is numeric. Shared by the
// file and API sources so both report identical DataFormatErrors.
func decodeRecords(data []byte) ([]domain.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		// Dataset-level shape failures carry the same taxonomy as per-record
		// ones so refresh callers see one kind of malformed-data error.
		return nil, &port.DataFormatError{Record: -1, Reason: fmt.Sprintf("expected a JSON array of record objects: %v", err)}
	}

	records := make([]domain.Record, len(raw))
	for i, m := range raw {
		r, err := recordFromMap(i, m)
		if err != nil {
			return nil, err
		}
		records[i] = r
	}
	return records, nil
}

func recordFromMap(idx int, m map[string]any) (domain.Record, error) {
	var r domain.Record

	for _, field := range requiredFields {
		v, ok := m[field]
		if !ok {
			return r, &port.DataFormatError{Record: idx, Field: field, Reason: "missing required field"}
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return r, &port.DataFormatError{Record: idx, Field: field, Reason: "expected non-empty string"}
		}
		switch field {
		case "software":
			r.Software = s
		case "server":
			r.Server = s
		case "location":
			r.Location = s
		case "license":
			r.License = s
		}
	}

	for _, field := range numericFields {
		v, ok := m[field]
		if !ok {
			continue // absent metrics default to zero
		}
		num, ok := v.(json.Number)
		if !ok {
			return r, &port.DataFormatError{Record: idx, Field: field, Reason: "expected a number"}
		}
		// Usage metrics are counts; fractional values indicate corrupt data
		// rather than something to round.
		i64, err := num.Int64()
		if err != nil {
			return r, &port.DataFormatError{Record: idx, Field: field, Reason: "expected an integer"}
		}
		n := int(i64)
		switch field {
		case "latest_license_issued":
			r.LatestLicenseIssued = n
		case "license_day_peak":
			r.LicenseDayPeak = n
		case "license_day_average":
			r.LicenseDayAverage = n
		case "license_work_peak":
			r.LicenseWorkPeak = n
		case "license_work_average":
			r.LicenseWorkAverage = n
		case "percentage_work_peak":
			r.PercentageWorkPeak = n
		case "percentage_work_average":
			r.PercentageWorkAverage = n
		}
	}

	return r, nil
}
