package services

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/taskmaster/board/internal/domain/entities"
)

// DemoDocument builds a small board: one manager, one member, one project
// assigned to both and two tasks.
func DemoDocument(now time.Time) (entities.Document, error) {
	manager := entities.User{
		ID:        uuid.NewString(),
		Name:      "Ana Gerente",
		Email:     "gerente@example.com",
		Password:  "gerente123",
		Role:      entities.UserRoleManager,
		Status:    "active",
		CreatedAt: now,
	}
	member := entities.User{
		ID:        uuid.NewString(),
		Name:      "Luis Usuario",
		Email:     "usuario@example.com",
		Password:  "usuario123",
		Role:      entities.UserRoleMember,
		Status:    "active",
		CreatedAt: now,
	}
	manager.Avatar = avatarURL(manager.Name)
	member.Avatar = avatarURL(member.Name)

	project := entities.Project{
		ID:            uuid.NewString(),
		Title:         "Portal de clientes",
		Description:   "Rediseño del portal web de clientes",
		Status:        entities.ProjectStatusInProgress,
		Priority:      entities.PriorityHigh,
		StartDate:     now.Format("2006-01-02"),
		EndDate:       now.AddDate(0, 3, 0).Format("2006-01-02"),
		Budget:        25000,
		Category:      "desarrollo_web",
		AssignedUsers: []string{manager.ID, member.ID},
		Progress:      50,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	completedAt := now
	tasks := []entities.Task{
		{
			ID:             uuid.NewString(),
			Title:          "Maquetar la página de inicio",
			ProjectID:      project.ID,
			AssignedTo:     member.ID,
			Status:         entities.TaskStatusCompleted,
			Priority:       entities.PriorityMedium,
			Progress:       100,
			StartDate:      now.Format("2006-01-02"),
			DueDate:        now.AddDate(0, 0, 14).Format("2006-01-02"),
			EstimatedHours: 16,
			CreatedAt:      now,
			UpdatedAt:      now,
			CompletedAt:    &completedAt,
		},
		{
			ID:             uuid.NewString(),
			Title:          "Integrar el API de pedidos",
			ProjectID:      project.ID,
			AssignedTo:     member.ID,
			Status:         entities.TaskStatusInProgress,
			Priority:       entities.PriorityHigh,
			Progress:       0,
			StartDate:      now.Format("2006-01-02"),
			DueDate:        now.AddDate(0, 1, 0).Format("2006-01-02"),
			EstimatedHours: 40,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
	}

	doc := entities.NewDocument()
	for _, user := range []entities.User{manager, member} {
		if err := appendEntity(doc, entities.CollectionUsers, user); err != nil {
			return nil, err
		}
	}
	if err := appendEntity(doc, entities.CollectionProjects, project); err != nil {
		return nil, err
	}
	for _, task := range tasks {
		if err := appendEntity(doc, entities.CollectionTasks, task); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

func appendEntity(doc entities.Document, collection string, v interface{}) error {
	rec, err := entities.NewRecord(v)
	if err != nil {
		return fmt.Errorf("seed %s: %w", collection, err)
	}
	doc[collection] = append(doc[collection], rec)
	return nil
}

func avatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=random&color=fff"
}
