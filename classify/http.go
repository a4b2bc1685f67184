package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ShamanBV/shaman-assistant/common/httpx"
	"github.com/ShamanBV/shaman-assistant/common/logger"
	"github.com/ShamanBV/shaman-assistant/schema"
)

// HTTPClassifier delegates classification to an external service.
// Request: {"question":"...","thread_context":"..."}
// Response: the same JSON shape the LLM prompt demands.
type HTTPClassifier struct {
	endpoint string
	client   *httpx.Client
}

func NewHTTPClassifier(endpoint string, client *httpx.Client) *HTTPClassifier {
	if client == nil {
		client = httpx.NewFromConfig(nil)
	}
	return &HTTPClassifier{endpoint: endpoint, client: client}
}

type classifyReq struct {
	Question      string `json:"question"`
	ThreadContext string `json:"thread_context,omitempty"`
}

// Classify degrades to DefaultResult on transport, status or decode
// failures, reporting the cause in the error return.
func (c *HTTPClassifier) Classify(ctx context.Context, question, threadContext string) (*schema.ClassificationResult, error) {
	bs, _ := json.Marshal(classifyReq{Question: question, ThreadContext: threadContext})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bs))
	if err != nil {
		return DefaultResult(fmt.Sprintf("Classification failed: %v", err)), err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Warnf("classify: http call failed, using default intent, err: %v", err)
		return DefaultResult(fmt.Sprintf("Classification failed: %v", err)), err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("classifier endpoint returned %s", resp.Status)
		logger.Warnf("classify: %v, using default intent", err)
		return DefaultResult(fmt.Sprintf("Classification failed: %v", err)), err
	}

	var wire wireResult
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		err = fmt.Errorf("decode classification failed, err: %w", err)
		logger.Warnf("classify: %v, using default intent", err)
		return DefaultResult(fmt.Sprintf("Failed to parse response, defaulting to question: %v", err)), err
	}
	return fromWire(wire), nil
}
