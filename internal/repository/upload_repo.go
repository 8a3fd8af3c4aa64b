package repository

import (
	"context"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"reconciliation-portal/internal/models"
)

// UploadRepository issues endpoint bundles and moves file bytes to them.
type UploadRepository struct {
	api *APIClient
}

func NewUploadRepository(api *APIClient) *UploadRepository {
	return &UploadRepository{api: api}
}

// FetchEndpoints asks the backend for a fresh bundle.
func (r *UploadRepository) FetchEndpoints(ctx context.Context) (models.UploadEndpointBundle, error) {
	var bundle models.UploadEndpointBundle
	if err := r.api.getJSON(ctx, PathUploadEndpoints, nil, &bundle); err != nil {
		return models.UploadEndpointBundle{}, err
	}
	if bundle.TaskID == "" {
		return models.UploadEndpointBundle{}, errors.Wrap(ErrMalformedResponse, "upload bundle has no taskID")
	}
	return bundle, nil
}

// Upload POSTs body to target. Only the status matters; the response body
// is read for diagnostics when the status is not 2xx.
func (r *UploadRepository) Upload(ctx context.Context, target, contentType string, body io.Reader, size int64) error {
	u, err := r.api.Resolve(target)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), body)
	if err != nil {
		return err
	}
	if size >= 0 {
		req.ContentLength = size
	}
	if contentType == "" {
		contentType = "text/csv"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := r.api.do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}
