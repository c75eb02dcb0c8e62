package vision

import (
	"context"

	gcv "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	gax "github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
)

// Annotator is the subset of *vision.ImageAnnotatorClient used by the
// service. Tests substitute a fake implementation.
type Annotator interface {
	DetectLabels(ctx context.Context, img *visionpb.Image, ictx *visionpb.ImageContext, maxResults int, opts ...gax.CallOption) ([]*visionpb.EntityAnnotation, error)
	DetectLandmarks(ctx context.Context, img *visionpb.Image, ictx *visionpb.ImageContext, maxResults int, opts ...gax.CallOption) ([]*visionpb.EntityAnnotation, error)
	DetectLogos(ctx context.Context, img *visionpb.Image, ictx *visionpb.ImageContext, maxResults int, opts ...gax.CallOption) ([]*visionpb.EntityAnnotation, error)
	DetectTexts(ctx context.Context, img *visionpb.Image, ictx *visionpb.ImageContext, maxResults int, opts ...gax.CallOption) ([]*visionpb.EntityAnnotation, error)
	LocalizeObjects(ctx context.Context, img *visionpb.Image, ictx *visionpb.ImageContext, opts ...gax.CallOption) ([]*visionpb.LocalizedObjectAnnotation, error)
	AnnotateImage(ctx context.Context, req *visionpb.AnnotateImageRequest, opts ...gax.CallOption) (*visionpb.AnnotateImageResponse, error)
}

// newAnnotatorClient creates an ImageAnnotatorClient authenticated with the
// given service account file.
func newAnnotatorClient(ctx context.Context, credentialsPath string) (Annotator, error) {
	return gcv.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credentialsPath))
}
