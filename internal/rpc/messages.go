// Package rpc defines the wire contract shared by the server and the CLI:
// JSON message types used by both the HTTP API and the gRPC service, the
// hand-written gRPC service descriptor and the JSON codec it runs on.
package rpc

import "time"

// Task is the public representation of a stored task. The owner is never
// serialized.
type Task struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	Priority  string     `json:"priority"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type RegisterResponse struct {
	Message string   `json:"message"`
	User    UserInfo `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type ListTodosRequest struct{}

type ListTodosResponse struct {
	Todos []Task `json:"todos"`
}

// CreateTodoRequest. DueDate is YYYY-MM-DD or RFC 3339.
type CreateTodoRequest struct {
	Text     string  `json:"text"`
	DueDate  *string `json:"dueDate,omitempty"`
	Priority string  `json:"priority,omitempty"`
}

type GetTodoRequest struct {
	ID string `json:"id"`
}

// UpdateTodoRequest is a partial update: omitted fields are left alone and
// an empty DueDate clears the due date.
type UpdateTodoRequest struct {
	ID        string  `json:"id,omitempty"`
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	DueDate   *string `json:"dueDate,omitempty"`
	Priority  *string `json:"priority,omitempty"`
}

type DeleteTodoRequest struct {
	ID string `json:"id"`
}

type DeleteTodoResponse struct {
	Success bool `json:"success"`
}

type ClearCompletedRequest struct{}

type ClearCompletedResponse struct {
	Success      bool  `json:"success"`
	DeletedCount int64 `json:"deletedCount"`
}

// SyncTask is a client-side task submitted for reconciliation. ID is empty
// for tasks created locally and not yet stored.
type SyncTask struct {
	ID        string    `json:"id,omitempty"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	DueDate   *string   `json:"dueDate,omitempty"`
	Priority  string    `json:"priority,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SyncRequest. LastSync is the client's previous successful sync in epoch
// milliseconds; omit it on first sync.
type SyncRequest struct {
	LastSync *int64     `json:"lastSync,omitempty"`
	Todos    []SyncTask `json:"todos"`
}

type SyncResponse struct {
	Todos []Task `json:"todos"`
}

type ExportRequest struct{}

type ExportResponse struct {
	URL string `json:"url"`
}

// ErrorResponse is the HTTP error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
