package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"tajirpos/internal/report"
)

const (
	// DefaultBaseURL is the Gemini GenerateContent API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel matches the model the storefront shipped with.
	DefaultModel = "gemini-2.5-flash"
)

// GeminiAdvisor calls the Gemini GenerateContent REST API.
type GeminiAdvisor struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewGeminiAdvisor(apiKey string, model string, baseURL string, timeout time.Duration) *GeminiAdvisor {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &GeminiAdvisor{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (a *GeminiAdvisor) Summarize(ctx context.Context, stats report.Stats) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: buildPrompt(stats)}}},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", a.baseURL, a.model, a.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	var text strings.Builder
	for _, candidate := range parsed.Candidates {
		for _, part := range candidate.Content.Parts {
			text.WriteString(part.Text)
		}
		break
	}
	answer := strings.TrimSpace(text.String())
	if answer == "" {
		return "", ErrEmptyReply
	}
	return answer, nil
}

// buildPrompt renders the Arabic advisor prompt from the stats snapshot.
// Category counts are sorted so identical stats yield an identical prompt.
func buildPrompt(stats report.Stats) string {
	categories := make([]string, 0, len(stats.CategoryUnits))
	for name := range stats.CategoryUnits {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	var perf strings.Builder
	for i, name := range categories {
		if i > 0 {
			perf.WriteString(", ")
		}
		fmt.Fprintf(&perf, "%s: %d", name, stats.CategoryUnits[name])
	}

	return fmt.Sprintf(`أنت مستشار أعمال خبير. قم بتحليل بيانات المتجر التالية وقدم تقريراً موجزاً باللغة العربية.

البيانات:
- إجمالي المبيعات: %g
- إجمالي المصاريف: %g
- صافي الربح التقريبي: %g
- المنتجات التي قاربت على النفاذ: %s
- أداء الفئات (عدد القطع المباعة): %s

المطلوب:
1. نظرة عامة على الأداء المالي.
2. تحذيرات بشأن المخزون.
3. 3 نصائح استراتيجية لزيادة الأرباح بناءً على هذه البيانات.

اجعل الرد منسقاً وسهل القراءة.`,
		stats.Revenue,
		stats.ExpenseTotal,
		stats.Profit,
		strings.Join(stats.LowStock, ", "),
		perf.String(),
	)
}
