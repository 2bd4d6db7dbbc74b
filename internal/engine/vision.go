package engine

import (
	"context"
	"fmt"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// VisionRecognizer implements Recognizer using the Google Cloud Vision API's
// document text detection, one request per page image. It is an alternative
// to the local Tesseract binding for hosts without a Tesseract install; the
// rasterization side still requires a local Poppler.
type VisionRecognizer struct {
	client   *vision.ImageAnnotatorClient
	language string
}

// NewVisionRecognizer creates a recognizer with credentials from the
// environment: GOOGLE_CREDENTIALS (inline JSON) is tried first, then
// GOOGLE_APPLICATION_CREDENTIALS (key file path), then application default
// credentials.
func NewVisionRecognizer(ctx context.Context, language string) (*VisionRecognizer, error) {
	const op = "NewVisionRecognizer"

	if language == "" {
		language = "tha"
	}

	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapEngineError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapEngineError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapEngineError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &VisionRecognizer{client: client, language: language}, nil
}

// Recognize sends one page image to the Vision API and returns the detected
// text.
func (v *VisionRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	const op = "Recognize"

	annotation, err := v.client.DetectDocumentText(ctx,
		&visionpb.Image{Content: image},
		&visionpb.ImageContext{LanguageHints: []string{v.language}},
	)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", WrapEngineError(op, ErrRecognitionFailed, fmt.Sprintf("vision API: %v", err))
	}
	if annotation == nil {
		return "", nil
	}

	return strings.TrimSpace(annotation.GetText()), nil
}

// Close releases the underlying API client.
func (v *VisionRecognizer) Close() error {
	return v.client.Close()
}
