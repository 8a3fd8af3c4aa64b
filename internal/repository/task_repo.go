package repository

import (
	"context"
	"encoding/json"

	"reconciliation-portal/internal/models"
)

type TaskRepository struct {
	api *APIClient
}

func NewTaskRepository(api *APIClient) *TaskRepository {
	return &TaskRepository{api: api}
}

// Submit starts a reconciliation run. The acknowledgement is opaque apart
// from an optional message.
func (r *TaskRepository) Submit(ctx context.Context, req models.TaskRequest) (models.Ack, error) {
	body, err := r.api.postJSON(ctx, PathTasks, req)
	if err != nil {
		return models.Ack{}, err
	}
	ack := models.Ack{Raw: json.RawMessage(body)}
	// a non-JSON ack is still a success
	_ = json.Unmarshal(body, &ack)
	return ack, nil
}
