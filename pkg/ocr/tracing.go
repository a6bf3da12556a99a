package ocr

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nodewee/page-ocr/pkg/interfaces"
	"github.com/nodewee/page-ocr/pkg/types"
)

const instrumentationName = "github.com/nodewee/page-ocr/pkg/ocr"

type tracedClient struct {
	tracer trace.Tracer
	client interfaces.OCRClient
}

// NewTracedClient records one span per Detect. A nil tracer uses the global
// provider, which is a no-op unless telemetry was set up.
func NewTracedClient(tracer trace.Tracer, c interfaces.OCRClient) interfaces.OCRClient {
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}
	return &tracedClient{tracer: tracer, client: c}
}

func (c *tracedClient) Name() string {
	return c.client.Name()
}

func (c *tracedClient) Detect(ctx context.Context, image []byte, languageHints []string) (types.OCRAnnotation, error) {
	ctx, span := c.tracer.Start(ctx, "detect "+c.client.Name(),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("ocr.backend", c.client.Name()),
			attribute.Int("ocr.image_bytes", len(image)),
			attribute.StringSlice("ocr.language_hints", languageHints),
		))
	defer span.End()

	ann, err := c.client.Detect(ctx, image, languageHints)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ann, err
	}

	span.SetAttributes(
		attribute.Int("ocr.text_length", len(ann.FullText)),
		attribute.StringSlice("ocr.locales", ann.Locales),
	)
	return ann, nil
}

func (c *tracedClient) Close() error {
	return c.client.Close()
}
