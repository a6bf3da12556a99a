package ocr

import (
	"context"
	"fmt"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nodewee/page-ocr/pkg/types"
	"github.com/nodewee/page-ocr/pkg/utils"
)

// VisionClient calls Cloud Vision document text detection. Each client owns
// one gRPC connection; construct it once per run and Close it when done.
type VisionClient struct {
	client *vision.ImageAnnotatorClient
}

// NewVisionClient dials Cloud Vision. An empty credentialsFile falls back to
// application default credentials.
func NewVisionClient(ctx context.Context, credentialsFile string) (*VisionClient, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, utils.NewOCRServiceError("failed to create Cloud Vision client", err)
	}
	return &VisionClient{client: client}, nil
}

// Name returns the backend name
func (c *VisionClient) Name() string {
	return string(types.OCRBackendVision)
}

// Detect runs DOCUMENT_TEXT_DETECTION on one encoded image
func (c *VisionClient) Detect(ctx context.Context, image []byte, languageHints []string) (types.OCRAnnotation, error) {
	resp, err := c.client.BatchAnnotateImages(ctx, newVisionRequest(image, languageHints))
	if err != nil {
		return types.OCRAnnotation{}, visionCallError(err)
	}
	if len(resp.GetResponses()) == 0 {
		return types.OCRAnnotation{}, utils.NewOCRServiceError("Cloud Vision returned no response", nil)
	}
	return annotationFromResponse(resp.GetResponses()[0])
}

// Close releases the underlying connection
func (c *VisionClient) Close() error {
	return c.client.Close()
}

func newVisionRequest(image []byte, languageHints []string) *visionpb.BatchAnnotateImagesRequest {
	return &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    &visionpb.Image{Content: image},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
			ImageContext: &visionpb.ImageContext{
				LanguageHints: languageHints,
			},
		}},
	}
}

// annotationFromResponse converts one per-image response. A populated error
// status fails the page even when partial text is present.
func annotationFromResponse(resp *visionpb.AnnotateImageResponse) (types.OCRAnnotation, error) {
	if st := resp.GetError(); st != nil && st.GetCode() != int32(codes.OK) {
		e := utils.NewOCRServiceError(
			fmt.Sprintf("Cloud Vision error %s: %s", codes.Code(st.GetCode()), st.GetMessage()), nil)
		e.Recoverable = isTransientCode(codes.Code(st.GetCode()))
		return types.OCRAnnotation{}, e
	}

	doc := resp.GetFullTextAnnotation()
	ann := types.OCRAnnotation{
		FullText: doc.GetText(),
		Backend:  string(types.OCRBackendVision),
	}

	seen := make(map[string]bool)
	for _, page := range doc.GetPages() {
		for _, lang := range page.GetProperty().GetDetectedLanguages() {
			code := lang.GetLanguageCode()
			if code != "" && !seen[code] {
				seen[code] = true
				ann.Locales = append(ann.Locales, code)
			}
		}
	}
	return ann, nil
}

func visionCallError(err error) error {
	e := utils.NewOCRServiceError("Cloud Vision request failed", err)
	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		e.Recoverable = isTransientCode(st.Code())
	}
	return e
}

func isTransientCode(code codes.Code) bool {
	switch code {
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded, codes.Aborted:
		return true
	default:
		return false
	}
}
