package learning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ai-study-assist-be/pkg/graph"

	"golang.org/x/sync/errgroup"
)

// Client talks to the learning API (explanations, annotations, concept
// graph and mastery).
type Client struct {
	BaseURL string
	Client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	var body io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payloadBytes)
	}

	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp, bodyBytes)
	}

	if out == nil || len(bodyBytes) == 0 {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response, body []byte) error {
	apiErr := &APIError{Status: resp.StatusCode, Detail: http.StatusText(resp.StatusCode)}
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != nil {
		switch d := payload.Detail.(type) {
		case string:
			apiErr.Detail = d
		default:
			raw, _ := json.Marshal(d)
			apiErr.Detail = string(raw)
		}
	}
	return apiErr
}

func (c *Client) Explain(ctx context.Context, req ExplainRequest) (string, error) {
	var resp ExplainResponse
	if err := c.do(ctx, http.MethodPost, "/explain", nil, req, &resp); err != nil {
		return "", err
	}
	return resp.Explanation, nil
}

func (c *Client) CreateAnnotation(ctx context.Context, req CreateAnnotationRequest) (*Annotation, error) {
	var resp Annotation
	if err := c.do(ctx, http.MethodPost, "/annotations", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListAnnotations(ctx context.Context, studentID int64, filter AnnotationFilter) ([]Annotation, error) {
	query := url.Values{}
	if filter.CourseID != "" {
		query.Set("course_id", filter.CourseID)
	}
	if filter.ConceptID != nil {
		query.Set("concept_id", strconv.FormatInt(*filter.ConceptID, 10))
	}
	if filter.AnnotationType != "" {
		query.Set("annotation_type", filter.AnnotationType)
	}

	resp := []Annotation{}
	path := "/annotations/students/" + strconv.FormatInt(studentID, 10)
	if err := c.do(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) UpdateAnnotation(ctx context.Context, id int64, text string) (*Annotation, error) {
	var resp Annotation
	path := "/annotations/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodPut, path, nil, updateAnnotationRequest{AnnotationText: text}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteAnnotation(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/annotations/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

func (c *Client) GetConceptGraph(ctx context.Context, courseID string) (graph.Dataset, error) {
	ds := graph.Dataset{}
	path := "/courses/" + url.PathEscape(courseID) + "/concept-graph"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &ds); err != nil {
		return graph.Dataset{}, err
	}
	return ds, nil
}

func (c *Client) GetMastery(ctx context.Context, studentID int64, courseID string) (*MasteryOverview, error) {
	var resp MasteryOverview
	path := "/students/" + strconv.FormatInt(studentID, 10) + "/mastery"
	if err := c.do(ctx, http.MethodGet, path, url.Values{"course_id": {courseID}}, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LoadGraph fetches the course graph and the student's mastery at the same
// time and merges completion into the nodes. Either failure fails the load.
func (c *Client) LoadGraph(ctx context.Context, studentID int64, courseID string) (graph.Dataset, error) {
	var (
		ds      graph.Dataset
		mastery *MasteryOverview
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ds, err = c.GetConceptGraph(gctx, courseID)
		if err != nil {
			return fmt.Errorf("concept graph: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		mastery, err = c.GetMastery(gctx, studentID, courseID)
		if err != nil {
			return fmt.Errorf("mastery: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return graph.Dataset{}, err
	}

	return graph.Merge(ds, mastery.Concepts), nil
}
