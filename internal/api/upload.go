package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/n0madic/go-chorus/internal/stream"
	"github.com/n0madic/go-chorus/internal/types"
)

// UploadFile is one multipart part of an upload.
type UploadFile struct {
	Name   string
	Reader io.Reader
}

// ProgressFunc receives every status event of an upload, in order. Returning
// an error aborts the upload with a CallbackError.
type ProgressFunc func(types.UploadProgress) error

// UploadOptions tunes a single upload.
type UploadOptions struct {
	// OnProgress is called synchronously for each status event.
	OnProgress ProgressFunc
	// OnMalformed observes frames the decoder could not interpret.
	OnMalformed func(stream.Event)
}

// UploadFiles streams files to POST /datasets/{id}/upload as multipart form
// data and consumes the backend's event stream until the upload settles.
// Failures of the event stream are *stream.UploadError; HTTP failures before
// the stream starts are *APIError.
func (c *Client) UploadFiles(ctx context.Context, datasetID int, files []UploadFile, opts UploadOptions) (*types.UploadResult, error) {
	if err := checkID("dataset", datasetID); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	sessionID := uuid.NewString()
	path := fmt.Sprintf("/datasets/%d/upload", datasetID)
	logger := c.logger.With("session_id", sessionID, "dataset_id", datasetID)

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeParts(mw, files))
	}()

	// Unblocks the part writer if the backend answers without reading
	// the whole body.
	defer pr.Close()

	req, err := c.newRequest(ctx, http.MethodPost, path, pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "text/event-stream, application/json")
	req.Header.Set("X-Request-Id", sessionID)

	start := time.Now()
	logger.Info("upload.start", "files", len(files))
	c.dumpRequest(req)
	resp, err := c.stream.Do(req)
	if err != nil {
		pr.CloseWithError(err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &stream.UploadError{Kind: stream.Cancelled, Message: "upload session cancelled", Err: ctxErr}
		}
		return nil, &stream.UploadError{Kind: stream.TransportError, Message: "send upload request", Err: err}
	}
	c.dumpResponse(resp)
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		return nil, newAPIError(req, resp, data)
	}

	var result *types.UploadResult
	if isEventStream(resp.Header.Get("Content-Type")) {
		result, err = c.consumeUploadStream(ctx, resp.Body, sessionID, opts)
	} else {
		result, err = decodeLegacyUpload(resp.Body)
	}
	if err != nil {
		logger.Warn("upload.failed", "error", err, "elapsed", time.Since(start))
		return nil, err
	}
	logger.Info("upload.done",
		"processed", len(result.Files),
		"failed", len(result.Errors),
		"elapsed", time.Since(start),
	)
	return result, nil
}

// UploadPaths opens local files and uploads them under their base names.
func (c *Client) UploadPaths(ctx context.Context, datasetID int, paths []string, opts UploadOptions) (*types.UploadResult, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}
	files := make([]UploadFile, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			closeFiles(files)
			return nil, fmt.Errorf("open %s: %w", p, err)
		}
		files = append(files, UploadFile{Name: filepath.Base(p), Reader: f})
	}
	defer closeFiles(files)
	return c.UploadFiles(ctx, datasetID, files, opts)
}

func (c *Client) consumeUploadStream(ctx context.Context, body io.Reader, sessionID string, opts UploadOptions) (*types.UploadResult, error) {
	var onProgress stream.ProgressFunc
	if opts.OnProgress != nil {
		onProgress = func(p stream.Payload) error {
			return opts.OnProgress(types.ProgressFromPayload(p))
		}
	}
	payload, err := stream.Run(ctx, body, onProgress, stream.Options{
		SessionID:    sessionID,
		Logger:       c.logger,
		OnMalformed:  opts.OnMalformed,
		StallTimeout: c.cfg.UploadStallTimeout,
	})
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, ErrEmptyResult
	}
	var result types.UploadResult
	if err := payload.Decode(&result); err != nil {
		return nil, fmt.Errorf("decode upload result: %w", err)
	}
	return &result, nil
}

// decodeLegacyUpload handles backends that answer the upload with a single
// JSON document instead of an event stream.
func decodeLegacyUpload(body io.Reader) (*types.UploadResult, error) {
	var result types.UploadResult
	if err := json.NewDecoder(io.LimitReader(body, maxResponseBytes)).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return &result, nil
}

func writeParts(mw *multipart.Writer, files []UploadFile) error {
	for _, f := range files {
		if f.Reader == nil {
			return fmt.Errorf("upload part %q has no content", f.Name)
		}
		part, err := mw.CreateFormFile("files", f.Name)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return fmt.Errorf("copy %s: %w", f.Name, err)
		}
	}
	return mw.Close()
}

func isEventStream(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "text/event-stream"
}

func closeFiles(files []UploadFile) {
	for _, f := range files {
		if closer, ok := f.Reader.(io.Closer); ok {
			closer.Close() //nolint:errcheck
		}
	}
}
