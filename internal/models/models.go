package models

import "time"

// User represents a locally registered user. Created on first GitHub
// login; GitHubID is the immutable link to the remote identity.
type User struct {
	ID        string    `json:"id"`
	GitHubID  int64     `json:"github_id"`
	Login     string    `json:"login"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Memory represents a memory record. UserID is fixed at creation.
type Memory struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	MediaURL  string    `json:"mediaUrl"`
	IsPublic  bool      `json:"isPublic"`
	CreatedAt time.Time `json:"createdAt"`
}

// MemorySummary is the reduced projection returned by listings
type MemorySummary struct {
	ID       string `json:"id"`
	MediaURL string `json:"mediaUrl"`
	Except   string `json:"except"`
}
