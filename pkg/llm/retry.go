package llm

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

const maxErrorBodyBytes = 64 << 10

// doWithRetry executes an HTTP request, retrying on transport errors, 429s,
// and 5xx responses. The request is rebuilt per attempt so the body reader
// is fresh.
func doWithRetry(ctx context.Context, client *http.Client, build func() (*http.Request, error)) (*http.Response, error) {
	policy := retrypolicy.NewBuilder[*http.Response]().
		HandleIf(func(resp *http.Response, err error) bool {
			if err != nil {
				return true
			}
			if resp == nil {
				return true
			}
			return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
		}).
		WithBackoff(500*time.Millisecond, 4*time.Second).
		WithMaxRetries(2).
		ReturnLastFailure().
		Build()

	return failsafe.With(policy).
		WithContext(ctx).
		GetWithExecution(func(_ failsafe.Execution[*http.Response]) (*http.Response, error) {
			req, err := build()
			if err != nil {
				return nil, err
			}
			resp, err := client.Do(req)
			if err != nil {
				return nil, err
			}
			// Buffer retryable failures so the connection can be reused and
			// the last response's error text stays readable for the caller.
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
				_ = resp.Body.Close()
				resp.Body = io.NopCloser(bytes.NewReader(body))
			}
			return resp, nil
		})
}
