package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// --- Response types (дублируются из api/dto.go, клиентская часть CLI
// не зависит от серверных DTO) ---

// GraphResponse — graph из API.
type GraphResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// GraphVersionResponse — версия graph из API.
type GraphVersionResponse struct {
	GraphID   string         `json:"graph_id"`
	Version   int            `json:"version"`
	Spec      map[string]any `json:"spec"`
	CreatedAt string         `json:"created_at"`
}

// RunResponse — run из API.
type RunResponse struct {
	ID             string `json:"id"`
	GraphID        string `json:"graph_id"`
	GraphVersion   int    `json:"graph_version"`
	Target         string `json:"target"`
	Depth          string `json:"depth,omitempty"`
	Status         string `json:"status"`
	Error          string `json:"error,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
	StartedAt      string `json:"started_at,omitempty"`
	FinishedAt     string `json:"finished_at,omitempty"`
	CreatedAt      string `json:"created_at"`
}

// ScheduleResponse — schedule из API.
type ScheduleResponse struct {
	ID          string `json:"id"`
	GraphID     string `json:"graph_id"`
	Target      string `json:"target"`
	Depth       string `json:"depth,omitempty"`
	CronExpr    string `json:"cron_expr,omitempty"`
	IntervalSec int    `json:"interval_sec,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	Enabled     bool   `json:"enabled"`
	NextDueAt   string `json:"next_due_at,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// --- Request types ---

// CreateRunRequest — создание run.
type CreateRunRequest struct {
	Target         string `json:"target"`
	Depth          string `json:"depth,omitempty"`
	Version        *int   `json:"version,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// FindingResponse — finding из API.
type FindingResponse struct {
	SourceTaskID string `json:"source_task_id"`
	Severity     string `json:"severity"`
	Category     string `json:"category"`
	File         string `json:"file"`
	Line         int    `json:"line"`
	Message      string `json:"message"`
	Suggestion   string `json:"suggestion,omitempty"`
	Score        int    `json:"score"`
}

// UpdateGraphRequest — частичное обновление graph.
type UpdateGraphRequest struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// CreateScheduleRequest — создание schedule.
type CreateScheduleRequest struct {
	Target      string `json:"target"`
	Depth       string `json:"depth,omitempty"`
	CronExpr    string `json:"cron_expr,omitempty"`
	IntervalSec int    `json:"interval_sec,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	Enabled     bool   `json:"enabled"`
}

// ListRunsOpts — параметры фильтрации runs.
type ListRunsOpts struct {
	GraphID string
	Status  string
	Limit   int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Argus API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Graphs ---

// ListGraphs возвращает все graphs.
func (c *Client) ListGraphs() ([]GraphResponse, error) {
	var graphs []GraphResponse
	err := c.list("/api/v1/graphs", nil, &graphs)
	return graphs, err
}

// CreateGraph создаёт новый graph с первой версией.
func (c *Client) CreateGraph(name string, spec json.RawMessage) (*GraphResponse, error) {
	body := map[string]json.RawMessage{
		"name": json.RawMessage(fmt.Sprintf("%q", name)),
	}
	if spec != nil {
		body["spec"] = spec
	}
	var graph GraphResponse
	err := c.post("/api/v1/graphs", body, &graph)
	return &graph, err
}

// GetGraph возвращает graph по ID.
func (c *Client) GetGraph(id string) (*GraphResponse, error) {
	var graph GraphResponse
	err := c.get("/api/v1/graphs/"+id, &graph)
	return &graph, err
}

// UpdateGraph обновляет имя или активность graph.
func (c *Client) UpdateGraph(id string, req UpdateGraphRequest) (*GraphResponse, error) {
	var graph GraphResponse
	err := c.put("/api/v1/graphs/"+id, req, &graph)
	return &graph, err
}

// DeleteGraph удаляет graph.
func (c *Client) DeleteGraph(id string) error {
	return c.delete("/api/v1/graphs/" + id)
}

// ListVersions возвращает версии graph.
func (c *Client) ListVersions(graphID string) ([]GraphVersionResponse, error) {
	var versions []GraphVersionResponse
	err := c.list("/api/v1/graphs/"+graphID+"/versions", nil, &versions)
	return versions, err
}

// CreateVersion создаёт новую версию graph.
func (c *Client) CreateVersion(graphID string, spec json.RawMessage) (*GraphVersionResponse, error) {
	body := map[string]json.RawMessage{"spec": spec}
	var version GraphVersionResponse
	err := c.post("/api/v1/graphs/"+graphID+"/versions", body, &version)
	return &version, err
}

// --- Runs ---

// ListRuns возвращает список runs с фильтрацией.
func (c *Client) ListRuns(opts ListRunsOpts) ([]RunResponse, error) {
	params := url.Values{}
	if opts.GraphID != "" {
		params.Set("graph_id", opts.GraphID)
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}

	var runs []RunResponse
	err := c.list("/api/v1/runs", params, &runs)
	return runs, err
}

// CreateRun создаёт run для graph.
func (c *Client) CreateRun(graphID string, req CreateRunRequest) (*RunResponse, error) {
	var run RunResponse
	err := c.post("/api/v1/graphs/"+graphID+"/runs", req, &run)
	return &run, err
}

// GetRun возвращает run по ID.
func (c *Client) GetRun(id string) (*RunResponse, error) {
	var run RunResponse
	err := c.get("/api/v1/runs/"+id, &run)
	return &run, err
}

// GetRunReport возвращает отчёт run сырым JSON.
func (c *Client) GetRunReport(id string) (json.RawMessage, error) {
	var report json.RawMessage
	err := c.get("/api/v1/runs/"+id+"/report", &report)
	return report, err
}

// ListRunFindings возвращает findings run. minSeverity может быть пустым.
func (c *Client) ListRunFindings(runID, minSeverity string) ([]FindingResponse, error) {
	params := url.Values{}
	if minSeverity != "" {
		params.Set("min_severity", minSeverity)
	}

	var findings []FindingResponse
	err := c.list("/api/v1/runs/"+runID+"/findings", params, &findings)
	return findings, err
}

// --- Schedules ---

// ListSchedules возвращает schedules. Если graphID не пустой — фильтрует.
func (c *Client) ListSchedules(graphID string) ([]ScheduleResponse, error) {
	params := url.Values{}
	if graphID != "" {
		params.Set("graph_id", graphID)
	}

	var schedules []ScheduleResponse
	err := c.list("/api/v1/schedules", params, &schedules)
	return schedules, err
}

// GetSchedule возвращает schedule по ID.
func (c *Client) GetSchedule(id string) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	err := c.get("/api/v1/schedules/"+id, &schedule)
	return &schedule, err
}

// CreateSchedule создаёт schedule для graph.
func (c *Client) CreateSchedule(graphID string, req CreateScheduleRequest) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	err := c.post("/api/v1/graphs/"+graphID+"/schedules", req, &schedule)
	return &schedule, err
}

// DeleteSchedule удаляет schedule.
func (c *Client) DeleteSchedule(id string) error {
	return c.delete("/api/v1/schedules/" + id)
}

// EnableSchedule включает schedule.
func (c *Client) EnableSchedule(id string) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	body := map[string]bool{"enabled": true}
	err := c.put("/api/v1/schedules/"+id+"/enabled", body, &schedule)
	return &schedule, err
}

// DisableSchedule выключает schedule.
func (c *Client) DisableSchedule(id string) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	body := map[string]bool{"enabled": false}
	err := c.put("/api/v1/schedules/"+id+"/enabled", body, &schedule)
	return &schedule, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
