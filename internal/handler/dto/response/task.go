package response

import (
	"time"

	"shuttle-service/internal/usecase/tasks"

	"github.com/google/uuid"
)

type TaskResponse struct {
	TaskID     int64          `json:"taskId"`
	Kind       string         `json:"kind"`
	TargetID   uuid.UUID      `json:"targetId"`
	Status     string         `json:"status"`
	CreatedAt  time.Time      `json:"createdAt"`
	FinishedAt *time.Time     `json:"finishedAt,omitempty"`
	Result     map[string]any `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
}

type TaskAcceptedResponse struct {
	TaskID int64  `json:"taskId"`
	Status string `json:"status"`
}

func FromTask(task tasks.Task) *TaskResponse {
	return &TaskResponse{
		TaskID:     task.ID,
		Kind:       task.Kind,
		TargetID:   task.TargetID,
		Status:     string(task.State),
		CreatedAt:  task.CreatedAt,
		FinishedAt: task.FinishedAt,
		Result:     task.Result,
		Error:      task.Error,
	}
}
