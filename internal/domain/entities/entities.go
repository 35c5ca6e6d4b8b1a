package entities

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrInvalidRecord  = errors.New("record must be a JSON object")
)

// Enums and types
type UserRole string

const (
	UserRoleManager UserRole = "gerente"
	UserRoleMember  UserRole = "usuario"
)

type ProjectStatus string

const (
	ProjectStatusPlanning   ProjectStatus = "planificacion"
	ProjectStatusInProgress ProjectStatus = "en_progreso"
	ProjectStatusPaused     ProjectStatus = "pausado"
	ProjectStatusCompleted  ProjectStatus = "completado"
	ProjectStatusCancelled  ProjectStatus = "cancelado"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pendiente"
	TaskStatusAssigned   TaskStatus = "asignada"
	TaskStatusInProgress TaskStatus = "en_progreso"
	TaskStatusInReview   TaskStatus = "en_revision"
	TaskStatusCompleted  TaskStatus = "completada"
	TaskStatusCancelled  TaskStatus = "cancelada"
)

type Priority string

const (
	PriorityLow      Priority = "baja"
	PriorityMedium   Priority = "media"
	PriorityHigh     Priority = "alta"
	PriorityCritical Priority = "critica"
)

// User represents a user in the system
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Role      UserRole  `json:"role"`
	Avatar    string    `json:"avatar,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Project represents a project in the system
type Project struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Status        ProjectStatus `json:"status"`
	Priority      Priority      `json:"priority"`
	StartDate     string        `json:"startDate"`
	EndDate       string        `json:"endDate"`
	Budget        float64       `json:"budget"`
	Category      string        `json:"category"`
	AssignedUsers []string      `json:"assignedUsers"`
	Progress      int           `json:"progress"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Task represents a task in the system
type Task struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	ProjectID      string     `json:"projectId"`
	AssignedTo     string     `json:"assignedTo"`
	Status         TaskStatus `json:"status"`
	Priority       Priority   `json:"priority"`
	Progress       int        `json:"progress"`
	StartDate      string     `json:"startDate"`
	DueDate        string     `json:"dueDate"`
	EstimatedHours float64    `json:"estimatedHours"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	CompletedAt    *time.Time `json:"completedAt"`
}

// Session represents a login session record
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Token        string    `json:"token"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
	LastActivity time.Time `json:"lastActivity"`
}

// IsLive reports whether the session is active and not yet expired at now
func (s *Session) IsLive(now time.Time) bool {
	return s.IsActive && s.ExpiresAt.After(now)
}

// IsTerminal reports whether no further work is expected on a task
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled
}
