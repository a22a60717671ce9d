package telemetry

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Record is one decoded telemetry frame from the rover. Numeric readings are
// carried as text because the device sends an empty string, never zero, when
// it has no data for a field.
type Record struct {
	ErrorFlag   string // device-side error indicator, passed through
	Time        string // NMEA HHMMSS.SS, UTC
	FixType     int    // 0-9, see FixTypeLabel
	Lat         string // NMEA DDMM.MMMMM
	Lon         string // NMEA DDDMM.MMMMM
	Elev        string // meters, plain decimal
	HAcc        string // decimeters
	VAcc        string // decimeters
	RTCMEnabled bool
}

// wireRecord mirrors the rover's JSON frame with pointer fields so that an
// absent key is tellable from a present-but-empty value.
type wireRecord struct {
	Exception   *string `json:"exception"`
	Time        *string `json:"time"`
	FixType     *int    `json:"fixType"`
	Lat         *string `json:"lat"`
	Lon         *string `json:"lon"`
	Elev        *string `json:"elev"`
	HAcc        *string `json:"hAcc"`
	VAcc        *string `json:"vAcc"`
	RTCMEnabled *bool   `json:"rtcmEnabled"`
}

// DecodeRecord parses one frame payload. Frames that are not JSON objects or
// miss required fields are rejected; defaults are never substituted. The
// empty string remains a valid value for the text readings.
func DecodeRecord(payload []byte) (Record, error) {
	var wire wireRecord
	if err := json.Unmarshal(payload, &wire); err != nil {
		return Record{}, fmt.Errorf("telemetry: decode frame: %w", err)
	}

	var missing []string
	if wire.Time == nil {
		missing = append(missing, "time")
	}
	if wire.FixType == nil {
		missing = append(missing, "fixType")
	}
	if wire.Lat == nil {
		missing = append(missing, "lat")
	}
	if wire.Lon == nil {
		missing = append(missing, "lon")
	}
	if wire.Elev == nil {
		missing = append(missing, "elev")
	}
	if wire.HAcc == nil {
		missing = append(missing, "hAcc")
	}
	if wire.VAcc == nil {
		missing = append(missing, "vAcc")
	}
	if wire.RTCMEnabled == nil {
		missing = append(missing, "rtcmEnabled")
	}
	if len(missing) > 0 {
		return Record{}, fmt.Errorf("telemetry: frame missing fields: %s", strings.Join(missing, ", "))
	}

	rec := Record{
		Time:        *wire.Time,
		FixType:     *wire.FixType,
		Lat:         *wire.Lat,
		Lon:         *wire.Lon,
		Elev:        *wire.Elev,
		HAcc:        *wire.HAcc,
		VAcc:        *wire.VAcc,
		RTCMEnabled: *wire.RTCMEnabled,
	}
	if wire.Exception != nil {
		rec.ErrorFlag = *wire.Exception
	}
	return rec, nil
}
