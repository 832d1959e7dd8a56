// Package model contains domain models passed between layers.
package model

import "time"

// RawRecord is one decoded row of an uploaded file keyed by its header cells.
// Keys are kept exactly as they appear in the file.
type RawRecord map[string]string

// Item is a validated lead ready to be assigned.
type Item struct {
	FirstName string `json:"firstName"`
	Phone     string `json:"phone"`
	Notes     string `json:"notes"`
}

// Agent is a field operator leads are assigned to.
type Agent struct {
	ID           string
	Name         string
	Email        string
	Mobile       string
	PasswordHash string
	CreatedAt    time.Time
}

// AgentInput is the data needed to register an agent.
type AgentInput struct {
	Name     string
	Email    string
	Mobile   string
	Password string
}

// AssignedItem is an Item bound to the agent that owns it.
type AssignedItem struct {
	Item
	AssignedTo string // Agent.ID
}

// AgentDistribution is the read model of everything assigned to one agent.
type AgentDistribution struct {
	Agent Agent
	Count int
	Items []Item
}

// UploadResult summarises one upload-and-distribute run.
type UploadResult struct {
	Total    int   // items persisted
	Counts   []int // per-agent counts in pool order
	Rejected int   // rows dropped by validation
}
