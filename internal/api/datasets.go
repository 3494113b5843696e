package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/n0madic/go-chorus/internal/types"
)

// ListDatasets returns every dataset without its file list.
func (c *Client) ListDatasets(ctx context.Context) ([]types.Dataset, error) {
	var out []types.Dataset
	if err := c.doJSON(ctx, http.MethodGet, "/datasets", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDataset returns one dataset with its files.
func (c *Client) GetDataset(ctx context.Context, id int) (*types.Dataset, error) {
	if err := checkID("dataset", id); err != nil {
		return nil, err
	}
	var out types.Dataset
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/datasets/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateDataset creates a dataset. Names are unique; a taken name yields a
// 409 APIError.
func (c *Client) CreateDataset(ctx context.Context, req types.CreateDatasetRequest) (*types.Dataset, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("dataset name is required")
	}
	var out types.Dataset
	if err := c.doJSON(ctx, http.MethodPost, "/datasets", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDataset removes a dataset together with its files.
func (c *Client) DeleteDataset(ctx context.Context, id int) (*types.MessageResponse, error) {
	if err := checkID("dataset", id); err != nil {
		return nil, err
	}
	var out types.MessageResponse
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/datasets/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetFileContent returns a stored file with its decoded text content.
func (c *Client) GetFileContent(ctx context.Context, datasetID, fileID int) (*types.FileInfo, error) {
	if err := checkIDs(datasetID, fileID); err != nil {
		return nil, err
	}
	var out types.FileInfo
	if err := c.doJSON(ctx, http.MethodGet, filePath(datasetID, fileID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FileImageURL returns the absolute URL of a file's rendered image.
func (c *Client) FileImageURL(datasetID, fileID int) string {
	return c.cfg.Endpoint(filePath(datasetID, fileID) + "/image")
}

// DeleteFile removes one file from a dataset.
func (c *Client) DeleteFile(ctx context.Context, datasetID, fileID int) (*types.MessageResponse, error) {
	if err := checkIDs(datasetID, fileID); err != nil {
		return nil, err
	}
	var out types.MessageResponse
	if err := c.doJSON(ctx, http.MethodDelete, filePath(datasetID, fileID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func filePath(datasetID, fileID int) string {
	return fmt.Sprintf("/datasets/%d/files/%d", datasetID, fileID)
}

func checkIDs(datasetID, fileID int) error {
	if err := checkID("dataset", datasetID); err != nil {
		return err
	}
	return checkID("file", fileID)
}
