package domain

import "time"

// Dataset is the normalized review set held for the process lifetime.
// Reviews must never be mutated after construction.
type Dataset struct {
	Reviews  []Review
	Version  string
	Source   string
	LoadedAt time.Time
	MinDate  time.Time
	MaxDate  time.Time
	Drops    DropReport
}

// DropReport counts rows rejected during normalization, by reason.
type DropReport struct {
	Read    int            `json:"read"`
	Kept    int            `json:"kept"`
	Reasons map[string]int `json:"reasons,omitempty"`
}

func (d DropReport) Dropped() int { return d.Read - d.Kept }

type DatasetInfo struct {
	Version  string     `json:"version"`
	Source   string     `json:"source"`
	LoadedAt time.Time  `json:"loaded_at"`
	Rows     int        `json:"rows"`
	MinDate  *time.Time `json:"min_date,omitempty"`
	MaxDate  *time.Time `json:"max_date,omitempty"`
	Drops    DropReport `json:"drops"`
}

func (d *Dataset) Info() DatasetInfo {
	info := DatasetInfo{
		Version:  d.Version,
		Source:   d.Source,
		LoadedAt: d.LoadedAt,
		Rows:     len(d.Reviews),
		Drops:    d.Drops,
	}
	if len(d.Reviews) > 0 {
		lo, hi := d.MinDate, d.MaxDate
		info.MinDate, info.MaxDate = &lo, &hi
	}
	return info
}
