package hygraph

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"time"

	"github.com/jsamuelsen/flashcards/internal/domain"
)

// PostData is the presigned form Hygraph hands out for a direct upload.
type PostData struct {
	URL           string `json:"url"`
	Date          string `json:"date"`
	Key           string `json:"key"`
	Signature     string `json:"signature"`
	Algorithm     string `json:"algorithm"`
	Policy        string `json:"policy"`
	Credential    string `json:"credential"`
	SecurityToken string `json:"securityToken"`
}

// CreatedAsset is a registered asset awaiting its file.
type CreatedAsset struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Upload struct {
		Status          string    `json:"status"`
		ExpiresAt       time.Time `json:"expiresAt"`
		RequestPostData PostData  `json:"requestPostData"`
	} `json:"upload"`
}

// CreateAsset registers an asset and returns where to upload its file.
func (c *Client) CreateAsset(ctx context.Context, fileName string) (*CreatedAsset, error) {
	op := call{name: "create asset", entity: "asset"}

	var out struct {
		CreateAsset *CreatedAsset `json:"createAsset"`
	}
	vars := map[string]any{"data": map[string]any{"fileName": fileName}}
	if err := c.mutate(ctx, op, createAssetMutation, vars, &out); err != nil {
		return nil, err
	}
	if out.CreateAsset == nil || out.CreateAsset.ID == "" {
		return nil, domain.NewUnavailableError(serviceName, "create asset returned no asset")
	}
	if out.CreateAsset.Upload.RequestPostData.URL == "" {
		return nil, domain.NewUnavailableError(serviceName, "create asset returned no upload target")
	}

	return out.CreateAsset, nil
}

// UploadFile posts content to the presigned target. The storage backend
// wants the policy fields in a fixed order with the file last.
func (c *Client) UploadFile(ctx context.Context, target PostData, fileName, mimeType string, content []byte) error {
	op := call{name: "upload " + fileName, entity: "asset"}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"key", target.Key},
		{"X-Amz-Date", target.Date},
		{"X-Amz-Signature", target.Signature},
		{"X-Amz-Algorithm", target.Algorithm},
		{"X-Amz-Credential", target.Credential},
		{"X-Amz-Security-Token", target.SecurityToken},
		{"policy", target.Policy},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return fmt.Errorf("writing %s field: %w", f.name, err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	header.Set("Content-Type", mimeType)

	part, err := w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("creating file part: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("writing file part: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing multipart body: %w", err)
	}

	resp, err := c.uploads.PostMultipart(ctx, target.URL, w.FormDataContentType(), buf.Bytes())
	if err != nil {
		return mapClientError(err, c.uploads.ServiceName(), op)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return mapResponseError(resp, c.uploads.ServiceName(), op)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

// PublishAsset publishes an uploaded asset.
func (c *Client) PublishAsset(ctx context.Context, id string) (*domain.Asset, error) {
	op := call{name: "publish asset", entity: "asset", id: id}

	var out struct {
		PublishAsset *assetDTO `json:"publishAsset"`
	}
	if err := c.mutate(ctx, op, publishAssetMutation, map[string]any{"id": id}, &out); err != nil {
		return nil, err
	}
	if out.PublishAsset == nil {
		return nil, notFound(op)
	}

	asset := translateAsset(out.PublishAsset)

	return &asset, nil
}

// UpdateAsset records the size and type of an uploaded file. Publishing
// sometimes fails until these are set.
func (c *Client) UpdateAsset(ctx context.Context, id string, size int64, mimeType string) error {
	op := call{name: "update asset", entity: "asset", id: id}

	var out struct {
		UpdateAsset *struct {
			ID string `json:"id"`
		} `json:"updateAsset"`
	}
	vars := map[string]any{
		"id":   id,
		"data": map[string]any{"size": size, "mimeType": mimeType},
	}
	if err := c.mutate(ctx, op, updateAssetMutation, vars, &out); err != nil {
		return err
	}
	if out.UpdateAsset == nil {
		return notFound(op)
	}

	return nil
}

// DeleteAsset implements ports.AssetStore.
func (c *Client) DeleteAsset(ctx context.Context, id string) error {
	return c.mutateByID(ctx, call{name: "delete asset", entity: "asset", id: id}, deleteAssetMutation, "deleteAsset")
}

// CreateAndUploadAsset implements ports.AssetStore: create, upload, wait for
// the storage backend to settle, publish. A failed publish is retried once
// after updating the asset's size and type. If any step after the create
// fails, the half-made asset is deleted.
func (c *Client) CreateAndUploadAsset(ctx context.Context, upload domain.Upload) (*domain.Asset, error) {
	content, err := c.readUpload(upload)
	if err != nil {
		return nil, err
	}

	mimeType := detectMimeType(upload, content)
	logger := c.logger.With(slog.String("file", upload.FileName))

	created, err := c.CreateAsset(ctx, upload.FileName)
	if err != nil {
		return nil, fmt.Errorf("file upload failed: %s: %w", upload.FileName, err)
	}
	logger.DebugContext(ctx, "asset created", slog.String("asset_id", created.ID))

	asset, err := c.uploadAndPublish(ctx, logger, created, upload.FileName, mimeType, content)
	if err != nil {
		c.discardAsset(ctx, logger, created.ID)
		return nil, fmt.Errorf("file upload failed: %s: %w", upload.FileName, err)
	}

	if asset.URL == "" {
		asset.URL = created.URL
	}
	if asset.FileName == "" {
		asset.FileName = upload.FileName
	}
	if asset.MimeType == "" {
		asset.MimeType = mimeType
	}

	return asset, nil
}

func (c *Client) uploadAndPublish(ctx context.Context, logger *slog.Logger, created *CreatedAsset, fileName, mimeType string, content []byte) (*domain.Asset, error) {
	if err := c.UploadFile(ctx, created.Upload.RequestPostData, fileName, mimeType, content); err != nil {
		return nil, err
	}

	if err := c.sleep(ctx, c.settleDelay); err != nil {
		return nil, err
	}

	asset, err := c.PublishAsset(ctx, created.ID)
	if err == nil {
		return asset, nil
	}

	logger.WarnContext(ctx, "publishing asset failed, updating before retry",
		slog.String("asset_id", created.ID), slog.Any("error", err))

	if err := c.UpdateAsset(ctx, created.ID, int64(len(content)), mimeType); err != nil {
		return nil, err
	}

	return c.PublishAsset(ctx, created.ID)
}

// discardAsset deletes an asset left behind by a failed upload. It runs even
// when ctx is already cancelled.
func (c *Client) discardAsset(ctx context.Context, logger *slog.Logger, id string) {
	if err := c.DeleteAsset(context.WithoutCancel(ctx), id); err != nil {
		logger.WarnContext(ctx, "deleting unfinished asset failed",
			slog.String("asset_id", id), slog.Any("error", err))
		return
	}
	logger.DebugContext(ctx, "unfinished asset deleted", slog.String("asset_id", id))
}

func (c *Client) readUpload(upload domain.Upload) ([]byte, error) {
	if upload.Content == nil {
		return nil, domain.NewValidationError("images", "file "+upload.FileName+" has no content")
	}

	r := upload.Content
	if c.maxUploadSize > 0 {
		r = io.LimitReader(r, c.maxUploadSize+1)
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", upload.FileName, err)
	}
	if c.maxUploadSize > 0 && int64(len(content)) > c.maxUploadSize {
		return nil, domain.NewValidationError("images",
			fmt.Sprintf("file %s is larger than %d bytes", upload.FileName, c.maxUploadSize))
	}

	return content, nil
}

// detectMimeType prefers the declared type, then the extension, then sniffing.
func detectMimeType(upload domain.Upload, content []byte) string {
	if upload.MimeType != "" {
		return upload.MimeType
	}
	if t := mime.TypeByExtension(filepath.Ext(upload.FileName)); t != "" {
		return t
	}

	return http.DetectContentType(content)
}

// mutateByID runs a mutation on one record whose result is { <field> { id } }.
func (c *Client) mutateByID(ctx context.Context, op call, document, field string) error {
	var out map[string]*struct {
		ID string `json:"id"`
	}
	if err := c.mutate(ctx, op, document, map[string]any{"id": op.id}, &out); err != nil {
		return err
	}
	if out[field] == nil {
		return notFound(op)
	}

	return nil
}
