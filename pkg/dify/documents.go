// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/pdiddy/dify-kb/pkg/types"
)

// DocumentService manages documents within datasets. Document creation and
// update are asynchronous on the service side: the response carries a batch
// id whose progress is observable through IndexingStatus.
type DocumentService struct {
	client *Client
}

// DocumentOptions holds the indexing options shared by document creation
// from text and from file. Zero-valued IndexingTechnique and DocForm fall
// back to "high_quality" and "text_model".
type DocumentOptions struct {
	IndexingTechnique      string                `json:"indexing_technique,omitempty"`
	DocForm                string                `json:"doc_form,omitempty"`
	DocLanguage            string                `json:"doc_language,omitempty"`
	ProcessRule            *types.ProcessRule    `json:"process_rule,omitempty"`
	RetrievalModel         *types.RetrievalModel `json:"retrieval_model,omitempty"`
	EmbeddingModel         string                `json:"embedding_model,omitempty"`
	EmbeddingModelProvider string                `json:"embedding_model_provider,omitempty"`
}

func (o *DocumentOptions) applyDefaults() {
	if o.IndexingTechnique == "" {
		o.IndexingTechnique = types.DefaultIndexingTechnique
	}
	if o.DocForm == "" {
		o.DocForm = "text_model"
	}
}

// CreateDocumentResponse holds the created or updated document and the
// indexing batch id to poll.
type CreateDocumentResponse struct {
	Document types.Document `json:"document"`
	Batch    string         `json:"batch"`
}

// CreateByText creates a document from raw text.
func (s *DocumentService) CreateByText(ctx context.Context, datasetID, name, text string, opts DocumentOptions) (*CreateDocumentResponse, error) {
	if name == "" {
		return nil, fmt.Errorf("document name is required")
	}
	opts.applyDefaults()

	body := struct {
		Name string `json:"name"`
		Text string `json:"text"`
		DocumentOptions
	}{Name: name, Text: text, DocumentOptions: opts}

	var out CreateDocumentResponse
	path := fmt.Sprintf("/datasets/%s/document/create-by-text", url.PathEscape(datasetID))
	if err := s.client.sendJSON(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateByFile uploads a local file as a new document.
func (s *DocumentService) CreateByFile(ctx context.Context, datasetID, filePath string, opts DocumentOptions) (*CreateDocumentResponse, error) {
	opts.applyDefaults()

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filePath, err)
	}
	defer f.Close()

	var out CreateDocumentResponse
	path := fmt.Sprintf("/datasets/%s/document/create-by-file", url.PathEscape(datasetID))
	if err := s.client.sendFile(ctx, path, opts, filePath, f, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateDocumentByTextRequest holds a partial text update. Only non-nil
// fields are sent.
type UpdateDocumentByTextRequest struct {
	Name        *string            `json:"name,omitempty"`
	Text        *string            `json:"text,omitempty"`
	ProcessRule *types.ProcessRule `json:"process_rule,omitempty"`
}

// UpdateByText replaces a document's content and/or name from raw text.
func (s *DocumentService) UpdateByText(ctx context.Context, datasetID, documentID string, req UpdateDocumentByTextRequest) (*CreateDocumentResponse, error) {
	var out CreateDocumentResponse
	path := fmt.Sprintf("/datasets/%s/documents/%s/update-by-text",
		url.PathEscape(datasetID), url.PathEscape(documentID))
	if err := s.client.sendJSON(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateDocumentByFileOptions holds the optional fields for a file-based
// document update.
type UpdateDocumentByFileOptions struct {
	Name        string             `json:"name,omitempty"`
	ProcessRule *types.ProcessRule `json:"process_rule,omitempty"`
}

// UpdateByFile replaces a document's content with a new local file.
func (s *DocumentService) UpdateByFile(ctx context.Context, datasetID, documentID, filePath string, opts UpdateDocumentByFileOptions) (*CreateDocumentResponse, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filePath, err)
	}
	defer f.Close()

	var out CreateDocumentResponse
	path := fmt.Sprintf("/datasets/%s/documents/%s/update-by-file",
		url.PathEscape(datasetID), url.PathEscape(documentID))
	if err := s.client.sendFile(ctx, path, opts, filePath, f, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns the document's details. metadata selects which metadata to
// include ("all", "only", or "without"); empty means "all".
func (s *DocumentService) Get(ctx context.Context, datasetID, documentID, metadata string) (*types.Document, error) {
	if metadata == "" {
		metadata = "all"
	}
	q := url.Values{"metadata": {metadata}}

	var out types.Document
	path := fmt.Sprintf("/datasets/%s/documents/%s",
		url.PathEscape(datasetID), url.PathEscape(documentID))
	if err := s.client.getJSON(ctx, path, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDocumentsOptions filters and pages the document listing.
type ListDocumentsOptions struct {
	Keyword string
	Page    int // 1-based; 0 means page 1
	Limit   int // 0 means the service default of 20
}

// DocumentList is one page of documents.
type DocumentList struct {
	Data    []types.Document `json:"data"`
	HasMore bool             `json:"has_more"`
	Limit   int              `json:"limit"`
	Total   int              `json:"total"`
	Page    int              `json:"page"`
}

// List returns one page of the dataset's documents.
func (s *DocumentService) List(ctx context.Context, datasetID string, opts ListDocumentsOptions) (*DocumentList, error) {
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	q := url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
	if opts.Keyword != "" {
		q.Set("keyword", opts.Keyword)
	}

	var out DocumentList
	path := fmt.Sprintf("/datasets/%s/documents", url.PathEscape(datasetID))
	if err := s.client.getJSON(ctx, path, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the document from the dataset.
func (s *DocumentService) Delete(ctx context.Context, datasetID, documentID string) error {
	path := fmt.Sprintf("/datasets/%s/documents/%s",
		url.PathEscape(datasetID), url.PathEscape(documentID))
	return s.client.sendJSON(ctx, http.MethodDelete, path, nil, nil)
}

// IndexingStatus returns the indexing progress of every document in the
// given upload batch.
func (s *DocumentService) IndexingStatus(ctx context.Context, datasetID, batch string) ([]types.IndexingStatus, error) {
	var out struct {
		Data []types.IndexingStatus `json:"data"`
	}
	path := fmt.Sprintf("/datasets/%s/documents/%s/indexing-status",
		url.PathEscape(datasetID), url.PathEscape(batch))
	if err := s.client.getJSON(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Document status actions accepted by UpdateStatus.
const (
	StatusActionEnable    = "enable"
	StatusActionDisable   = "disable"
	StatusActionArchive   = "archive"
	StatusActionUnArchive = "un_archive"
)

// UpdateStatus applies a status action to a batch of documents.
func (s *DocumentService) UpdateStatus(ctx context.Context, datasetID, action string, documentIDs []string) error {
	switch action {
	case StatusActionEnable, StatusActionDisable, StatusActionArchive, StatusActionUnArchive:
	default:
		return fmt.Errorf("unsupported status action %q: use enable, disable, archive, or un_archive", action)
	}
	if len(documentIDs) == 0 {
		return fmt.Errorf("at least one document id is required")
	}

	body := struct {
		DocumentIDs []string `json:"document_ids"`
	}{DocumentIDs: documentIDs}

	path := fmt.Sprintf("/datasets/%s/documents/status/%s",
		url.PathEscape(datasetID), url.PathEscape(action))
	return s.client.sendJSON(ctx, http.MethodPatch, path, body, nil)
}

// UploadFileInfo describes the source file behind an uploaded document.
type UploadFileInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	Extension   string `json:"extension"`
	URL         string `json:"url"`
	DownloadURL string `json:"download_url"`
	MimeType    string `json:"mime_type"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   int64  `json:"created_at"`
}

// UploadFile returns information about the file a document was created from.
func (s *DocumentService) UploadFile(ctx context.Context, datasetID, documentID string) (*UploadFileInfo, error) {
	var out UploadFileInfo
	path := fmt.Sprintf("/datasets/%s/documents/%s/upload-file",
		url.PathEscape(datasetID), url.PathEscape(documentID))
	if err := s.client.getJSON(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
