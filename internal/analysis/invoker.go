package analysis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/DeafMist/esg-risk-radar/internal/llm"
	"github.com/DeafMist/esg-risk-radar/internal/models"
)

// DefaultTimeout bounds a model call when the caller supplies none.
const DefaultTimeout = 60 * time.Second

// Invoker sends the analysis prompt to a generator. It never retries.
type Invoker struct {
	gen     llm.Generator
	timeout time.Duration
}

// NewInvoker wraps gen. A non-positive timeout selects DefaultTimeout.
func NewInvoker(gen llm.Generator, timeout time.Duration) *Invoker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Invoker{gen: gen, timeout: timeout}
}

// Invoke builds the prompt and returns the model's raw text.
func (i *Invoker) Invoke(ctx context.Context, company, industry string, articles []models.Article) (string, error) {
	const op = "invoke model"

	if err := validate(op, company, industry, articles); err != nil {
		return "", err
	}
	if i == nil || i.gen == nil {
		return "", newError(KindCapabilityUnavailable, op, llm.ErrNotConfigured)
	}

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	raw, err := i.gen.Generate(ctx, BuildPrompt(company, industry, articles))
	if err != nil {
		return "", classifyCapabilityError(ctx, op, err)
	}
	return raw, nil
}

func classifyCapabilityError(ctx context.Context, op string, err error) *Error {
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		return newError(KindCapabilityUnavailable, op, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return newError(KindCapabilityTimeout, op, err)
	default:
		return newError(KindCapabilityError, op, err)
	}
}

func validate(op, company, industry string, articles []models.Article) error {
	switch {
	case strings.TrimSpace(company) == "":
		return missing(op, "company is required")
	case strings.TrimSpace(industry) == "":
		return missing(op, "industry is required")
	case len(articles) == 0:
		return missing(op, "at least one article is required")
	}
	return nil
}
