// Package inference calls hosted HuggingFace models for toxicity, sentiment,
// and question answering.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://api-inference.huggingface.co/models"

const (
	toxicityModel  = "unitary/toxic-bert"
	sentimentModel = "distilbert-base-uncased-finetuned-sst-2-english"
	qaModel        = "deepset/roberta-base-squad2"
)

type Classification struct {
	Label string
	Score float64
}

type Client struct {
	http    *http.Client
	baseURL string
	token   string
	logger  *zap.Logger
}

func NewClient(token string, logger *zap.Logger) *Client {
	return &Client{
		http:    NewHTTPClient(logger),
		baseURL: defaultBaseURL,
		token:   token,
		logger:  logger,
	}
}

// WithBaseURL points the client at a different endpoint. Used by tests.
func (c *Client) WithBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// ClassifyToxicity returns the strongest toxicity category and its score.
// The model scores several toxic categories; the max is the toxicity
// probability.
func (c *Client) ClassifyToxicity(ctx context.Context, text string) (string, float64, error) {
	labels, err := c.classify(ctx, toxicityModel, text)
	if err != nil {
		return "", 0, err
	}
	top := Classification{}
	for _, label := range labels {
		if label.Score > top.Score {
			top = label
		}
	}
	return top.Label, top.Score, nil
}

// ClassifySentiment returns the winning sentiment label and its score.
func (c *Client) ClassifySentiment(ctx context.Context, text string) (string, float64, error) {
	labels, err := c.classify(ctx, sentimentModel, text)
	if err != nil {
		return "", 0, err
	}
	top := Classification{}
	for _, label := range labels {
		if label.Score > top.Score {
			top = label
		}
	}
	return top.Label, top.Score, nil
}

func (c *Client) classify(ctx context.Context, model, text string) ([]Classification, error) {
	payload, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return nil, err
	}
	body, err := c.post(ctx, model, payload)
	if err != nil {
		return nil, err
	}

	// Classification responses are a batch of label lists, one per input.
	var batches [][]struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal(body, &batches); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", model, err)
	}
	if len(batches) == 0 {
		return nil, fmt.Errorf("empty %s response", model)
	}

	labels := make([]Classification, 0, len(batches[0]))
	for _, label := range batches[0] {
		labels = append(labels, Classification{Label: label.Label, Score: label.Score})
	}
	return labels, nil
}

// AnswerQuestion runs extractive QA over the supplied context passage.
func (c *Client) AnswerQuestion(ctx context.Context, question, passage string) (string, error) {
	payload, err := json.Marshal(map[string]map[string]string{
		"inputs": {"question": question, "context": passage},
	})
	if err != nil {
		return "", err
	}
	body, err := c.post(ctx, qaModel, payload)
	if err != nil {
		return "", err
	}

	var result struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode %s response: %w", qaModel, err)
	}
	return result.Answer, nil
}

func (c *Client) post(ctx context.Context, model string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+model, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference %s: status %d", model, resp.StatusCode)
	}
	return body, nil
}
