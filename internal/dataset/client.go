package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type Client struct {
	httpClient *http.Client
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient}
}

// FetchQuestions downloads a JSON question bank.
func (c *Client) FetchQuestions(ctx context.Context, url string) ([]RawQuestion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dataset source returned status %d", resp.StatusCode)
	}

	var questions []RawQuestion
	if err := json.NewDecoder(resp.Body).Decode(&questions); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return questions, nil
}

// Load reads the question bank from an http(s) URL or a local file.
func (c *Client) Load(ctx context.Context, source string) ([]RawQuestion, error) {
	if isRemote(source) {
		return c.FetchQuestions(ctx, source)
	}
	return LoadFile(source)
}
