package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"persons-admin/internal/model"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	collectionPath = "/persons/"
	maxBodySize    = 5 << 20
)

var ErrMalformedResponse = errors.New("malformed persons response")

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status: %d", e.Code)
}

type PersonsAPI struct {
	baseUrl string
	client  *http.Client
}

func NewPersonsAPI(baseUrl string, timeout time.Duration) *PersonsAPI {
	return &PersonsAPI{
		baseUrl: strings.TrimRight(baseUrl, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *PersonsAPI) CollectionURL() string {
	return p.baseUrl + collectionPath
}

func (p *PersonsAPI) doRequest(ctx context.Context, method, url string, body []byte, header http.Header) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Add("accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return data, &StatusError{Code: resp.StatusCode}
	}
	return data, nil
}

// ListPersons runs one GET against the collection endpoint.
func (p *PersonsAPI) ListPersons(ctx context.Context, req model.GridRequest) (model.GridResponse, error) {
	slog.Debug("Started ListPersons")
	listUrl := p.CollectionURL() + "?" + CanonicalQuery(req)

	body, err := p.doRequest(ctx, http.MethodGet, listUrl, nil, nil)
	if err != nil {
		return model.GridResponse{}, fmt.Errorf("list persons: %w", err)
	}

	resp, err := decodeList(body)
	if err != nil {
		return model.GridResponse{}, fmt.Errorf("list persons: %w", err)
	}
	slog.Debug("Ended ListPersons", "rows", len(resp.Rows), "total", resp.TotalCount)
	return resp, nil
}

func decodeList(body []byte) (model.GridResponse, error) {
	var data PersonsResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return model.GridResponse{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if data.Data == nil || data.Pagination == nil || data.Pagination.Total == nil {
		return model.GridResponse{}, fmt.Errorf("%w: missing data or pagination.total", ErrMalformedResponse)
	}
	if *data.Pagination.Total < 0 {
		return model.GridResponse{}, fmt.Errorf("%w: negative total %d", ErrMalformedResponse, *data.Pagination.Total)
	}

	rows := *data.Data
	if rows == nil {
		rows = []model.Person{}
	}
	return model.GridResponse{Rows: rows, TotalCount: *data.Pagination.Total}, nil
}

// CreatePerson posts a draft. The created record in the answer is optional;
// when it cannot be decoded the draft's fields are returned without an id.
func (p *PersonsAPI) CreatePerson(ctx context.Context, draft model.PersonDraft) (model.Person, error) {
	slog.Debug("Started CreatePerson")
	payload, err := json.Marshal(draft)
	if err != nil {
		return model.Person{}, fmt.Errorf("encode person: %w", err)
	}

	header := http.Header{}
	header.Set("Idempotency-Key", uuid.NewString())

	body, err := p.doRequest(ctx, http.MethodPost, p.CollectionURL(), payload, header)
	if err != nil {
		return model.Person{}, fmt.Errorf("create person: %w", err)
	}

	created := model.Person{
		FirstName:  draft.FirstName,
		LastName:   draft.LastName,
		Mobile:     draft.Mobile,
		Email:      draft.Email,
		GST:        draft.GST,
		PersonType: model.PersonType(draft.PersonType),
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &created); err != nil {
			slog.Debug("CreatePerson response not decoded", "error", err)
		}
	}
	slog.Debug("Ended CreatePerson", "id", created.Id)
	return created, nil
}
