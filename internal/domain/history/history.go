package history

import "time"

// Entry is one immutable audit line written per successful upload:
// the machine-sortable timestamp, the formatted date shown to admins,
// the uploader's name and how many records the upload carried.
type Entry struct {
	ID          string    `json:"-"`
	Timestamp   time.Time `json:"timestamp"`
	Date        string    `json:"date"`
	User        string    `json:"user"`
	RecordCount int       `json:"recordCount"`
}
