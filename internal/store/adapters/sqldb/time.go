package sqldb

import (
	"fmt"
	"time"
)

// TimeLayout es el formato de texto para motores sin tipo timestamp (SQLite).
// Ordena lexicográficamente igual que cronológicamente.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

var parseLayouts = []string{
	TimeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Time escanea timestamps que el driver entrega como time.Time, string o []byte.
type Time struct {
	Time time.Time
}

func (t *Time) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case nil:
		return fmt.Errorf("sqldb: NULL timestamp")
	default:
		return fmt.Errorf("sqldb: cannot scan %T into timestamp", src)
	}
}

func (t *Time) parse(s string) error {
	for _, layout := range parseLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			t.Time = ts.UTC()
			return nil
		}
	}
	return fmt.Errorf("sqldb: unrecognized timestamp %q", s)
}

// FormatText codifica para columnas TEXT.
func FormatText(t time.Time) any {
	return t.UTC().Format(TimeLayout)
}
