package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/nodewee/page-ocr/pkg/interfaces"
	"github.com/nodewee/page-ocr/pkg/logger"
	"github.com/nodewee/page-ocr/pkg/types"
	"github.com/nodewee/page-ocr/pkg/utils"
)

type stubClient struct {
	calls  atomic.Int32
	closed atomic.Bool
	text   string
	err    error
}

func (s *stubClient) Name() string { return "stub" }

func (s *stubClient) Detect(_ context.Context, _ []byte, _ []string) (types.OCRAnnotation, error) {
	s.calls.Add(1)
	if s.err != nil {
		return types.OCRAnnotation{}, s.err
	}
	return types.OCRAnnotation{FullText: s.text, Backend: "stub"}, nil
}

func (s *stubClient) Close() error {
	s.closed.Store(true)
	return nil
}

func TestTesseractLanguages(t *testing.T) {
	assert.Equal(t, []string{"eng", "ori", "hin"}, TesseractLanguages([]string{"en", "or", "xx", "hi", "en"}, nil))
	assert.Equal(t, []string{"eng"}, TesseractLanguages(nil, nil))

	installed := map[string]bool{"ori": true}
	assert.Equal(t, []string{"ori"}, TesseractLanguages([]string{"en", "or"}, func(l string) bool { return installed[l] }))
	assert.Equal(t, []string{"eng"}, TesseractLanguages([]string{"hi"}, func(string) bool { return false }))
}

func TestPreprocessForOCR(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for x := 0; x < 8; x++ {
		for y := 0; y < 4; y++ {
			src.Set(x, y, color.RGBA{R: 200, G: 30, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	out, err := PreprocessForOCR(buf.Bytes())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, src.Bounds(), img.Bounds())

	r, g, b, _ := img.At(3, 2).RGBA()
	assert.Equal(t, r, g)
	assert.Equal(t, g, b)
}

func TestPreprocessRejectsGarbage(t *testing.T) {
	_, err := PreprocessForOCR([]byte("not an image"))
	require.Error(t, err)
	assert.Equal(t, utils.ErrorTypeConversion, utils.GetErrorType(err))
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, NewLimiter(0))
	assert.Nil(t, NewLimiter(-1))

	l := NewLimiter(0.5)
	require.NotNil(t, l)
	assert.Equal(t, 1, l.Burst())
	assert.Equal(t, 10, NewLimiter(10).Burst())
}

func TestTracedClientRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("test")

	ok := NewTracedClient(tracer, &stubClient{text: "hello"})
	_, err := ok.Detect(context.Background(), []byte("img"), []string{"en"})
	require.NoError(t, err)

	failing := NewTracedClient(tracer, &stubClient{err: errors.New("quota")})
	_, err = failing.Detect(context.Background(), []byte("img"), []string{"en"})
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "detect stub", spans[0].Name())
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}

func TestSelector(t *testing.T) {
	stub := &stubClient{text: "x"}
	s := NewSelector(logger.Discard())
	s.Register(types.OCRBackendTesseract, func(context.Context) (interfaces.OCRClient, error) {
		return stub, nil
	})
	s.Register(types.OCRBackendVision, func(context.Context) (interfaces.OCRClient, error) {
		return nil, errors.New("no credentials")
	})

	assert.Equal(t, []types.OCRBackend{types.OCRBackendTesseract, types.OCRBackendVision}, s.Available())

	client, err := s.Select(context.Background(), types.OCRBackendTesseract)
	require.NoError(t, err)
	assert.Equal(t, "stub", client.Name())
	_, err = client.Detect(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), stub.calls.Load())
	require.NoError(t, client.Close())
	assert.True(t, stub.closed.Load())

	_, err = s.Select(context.Background(), types.OCRBackendVision)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no credentials")

	_, err = s.Select(context.Background(), "abbyy")
	assert.Equal(t, utils.ErrorTypeValidation, utils.GetErrorType(err))
}
