package model

import "time"

// AmmoEntry is one ledger row; Date is an ISO calendar day and unique.
type AmmoEntry struct {
	Date   string `json:"date"`
	Action Action `json:"action"`
	Units  int    `json:"units"`
}

// AmmoState is the persisted ammo ledger.
type AmmoState struct {
	TotalUnits int         `json:"totalUnits"`
	UnitsUsed  int         `json:"unitsUsed"`
	History    []AmmoEntry `json:"history"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// Usage summarizes consumption after a ledger update.
type Usage struct {
	Date       string
	Action     Action
	Units      int
	UnitsUsed  int
	Remaining  int
	TotalUnits int
	Recorded   bool // false when today's entry already existed
}
