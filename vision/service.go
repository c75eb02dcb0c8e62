package vision

import (
	"context"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/apex/log"

	"github.com/saakshipatel/moments/config"
	"github.com/saakshipatel/moments/metrics"
	"github.com/saakshipatel/moments/models"
)

// FallbackAltText is returned whenever no better description is available.
const FallbackAltText = "Image uploaded by user"

const (
	// scoreThreshold filters low-confidence labels and localized objects
	// out of tag lists. The comparison is strict: a score of exactly 0.5
	// is excluded.
	scoreThreshold = 0.5

	maxAltTextLabels = 3
	maxLabelResults  = 10
	maxDetailObjects = 10
	maxDetailPlaces  = 5
	maxDetailColors  = 3
)

// Service forwards images to Google Cloud Vision and reduces the raw
// annotations to the simplified shapes the moments backend consumes:
// alt text for accessibility, a tag list for search indexing, and a
// combined analysis record.
//
// A Service without a client is valid. Every operation then returns its
// safe default without touching the network, so callers never have to
// care whether vision analysis is configured.
type Service struct {
	client Annotator
}

// New builds a Service from configuration. Missing or unusable credentials
// leave the service in degraded mode; construction never fails.
func New(cfg *config.Config) *Service {
	if cfg.GoogleCredentialsPath == "" {
		log.Warn("Google credentials not configured, vision analysis disabled")
		metrics.VisionEnabled.Set(0)
		return &Service{}
	}

	client, err := newAnnotatorClient(context.Background(), cfg.GoogleCredentialsPath)
	if err != nil {
		log.Errorf("Failed to initialize Google Vision client: %v", err)
		metrics.VisionEnabled.Set(0)
		return &Service{}
	}

	metrics.VisionEnabled.Set(1)
	return &Service{client: client}
}

// NewWithAnnotator builds a Service around an existing annotator. Used by
// tests and by callers that manage the client lifecycle themselves.
func NewWithAnnotator(client Annotator) *Service {
	return &Service{client: client}
}

// Enabled reports whether the remote vision capability is available.
func (s *Service) Enabled() bool {
	return s.client != nil
}

// GenerateAltText produces a human-readable description for an image.
// It never fails: any remote error degrades to FallbackAltText, and the
// caller cannot distinguish a failed call from an image with nothing
// recognizable in it.
func (s *Service) GenerateAltText(ctx context.Context, content []byte) string {
	if s.client == nil {
		metrics.AnalysisRequestsTotal.WithLabelValues("generate_alt_text", metrics.ResultDisabled).Inc()
		return FallbackAltText
	}

	start := time.Now()
	img := &visionpb.Image{Content: content}

	labels, err := s.client.DetectLabels(ctx, img, nil, maxLabelResults)
	if err != nil {
		return s.altTextFailed(start, err)
	}

	landmarks, err := s.client.DetectLandmarks(ctx, img, nil, maxLabelResults)
	if err != nil {
		return s.altTextFailed(start, err)
	}

	// Text is detected but not folded into the description.
	// TODO: dropping this call changes the billed feature set; remove it
	// only once product confirms alt text should stay text-free.
	if _, err := s.client.DetectTexts(ctx, img, nil, maxLabelResults); err != nil {
		return s.altTextFailed(start, err)
	}

	var parts []string
	if len(landmarks) > 0 {
		// A recognized landmark beats generic labels outright.
		parts = append(parts, landmarks[0].GetDescription())
	} else if len(labels) > 0 {
		parts = append(parts, labelSentence(labels))
	}

	metrics.AnalysisRequestsTotal.WithLabelValues("generate_alt_text", metrics.ResultOK).Inc()
	metrics.AnalysisDurationSeconds.WithLabelValues("generate_alt_text").Observe(time.Since(start).Seconds())

	if len(parts) == 0 {
		return FallbackAltText
	}
	return strings.Join(parts, ". ")
}

// GenerateAltTextFromFile reads the image at path and delegates to
// GenerateAltText.
func (s *Service) GenerateAltTextFromFile(ctx context.Context, path string) string {
	if s.client == nil {
		metrics.AnalysisRequestsTotal.WithLabelValues("generate_alt_text", metrics.ResultDisabled).Inc()
		return FallbackAltText
	}
	content, err := os.ReadFile(path)
	if err != nil {
		log.Errorf("Error reading image file %s: %v", path, err)
		metrics.AnalysisRequestsTotal.WithLabelValues("generate_alt_text", metrics.ResultError).Inc()
		return FallbackAltText
	}
	return s.GenerateAltText(ctx, content)
}

// DetectObjects returns a deduplicated, lowercased tag list for search
// indexing. It never fails: any remote error degrades to an empty list.
func (s *Service) DetectObjects(ctx context.Context, content []byte) []string {
	if s.client == nil {
		metrics.AnalysisRequestsTotal.WithLabelValues("detect_objects", metrics.ResultDisabled).Inc()
		return []string{}
	}

	start := time.Now()
	img := &visionpb.Image{Content: content}

	var tags []string

	labels, err := s.client.DetectLabels(ctx, img, nil, maxLabelResults)
	if err != nil {
		return s.detectObjectsFailed(start, err)
	}
	for _, label := range labels {
		if label.GetScore() > scoreThreshold {
			tags = append(tags, strings.ToLower(label.GetDescription()))
		}
	}

	objects, err := s.client.LocalizeObjects(ctx, img, nil)
	if err != nil {
		return s.detectObjectsFailed(start, err)
	}
	for _, obj := range objects {
		if obj.GetScore() > scoreThreshold {
			tags = append(tags, strings.ToLower(obj.GetName()))
		}
	}

	// Landmarks and logos are kept regardless of score. Note the combined
	// path in GetDetailedAnalysis leaves them out of its tag list; the two
	// shapes stay unaligned until product decides which one search should
	// index.
	landmarks, err := s.client.DetectLandmarks(ctx, img, nil, maxLabelResults)
	if err != nil {
		return s.detectObjectsFailed(start, err)
	}
	for _, landmark := range landmarks {
		tags = append(tags, strings.ToLower(landmark.GetDescription()))
	}

	logos, err := s.client.DetectLogos(ctx, img, nil, maxLabelResults)
	if err != nil {
		return s.detectObjectsFailed(start, err)
	}
	for _, logo := range logos {
		tags = append(tags, strings.ToLower(logo.GetDescription()))
	}

	metrics.AnalysisRequestsTotal.WithLabelValues("detect_objects", metrics.ResultOK).Inc()
	metrics.AnalysisDurationSeconds.WithLabelValues("detect_objects").Observe(time.Since(start).Seconds())

	return uniqueStrings(tags)
}

// DetectObjectsFromFile reads the image at path and delegates to
// DetectObjects.
func (s *Service) DetectObjectsFromFile(ctx context.Context, path string) []string {
	if s.client == nil {
		metrics.AnalysisRequestsTotal.WithLabelValues("detect_objects", metrics.ResultDisabled).Inc()
		return []string{}
	}
	content, err := os.ReadFile(path)
	if err != nil {
		log.Errorf("Error reading image file %s: %v", path, err)
		metrics.AnalysisRequestsTotal.WithLabelValues("detect_objects", metrics.ResultError).Inc()
		return []string{}
	}
	return s.DetectObjects(ctx, content)
}

// GetDetailedAnalysis runs all detections in a single round trip and
// returns the combined analysis record. It never fails: any remote error
// degrades to the fixed default record.
func (s *Service) GetDetailedAnalysis(ctx context.Context, content []byte) models.Analysis {
	if s.client == nil {
		metrics.AnalysisRequestsTotal.WithLabelValues("detailed_analysis", metrics.ResultDisabled).Inc()
		return degradedAnalysis()
	}

	start := time.Now()
	req := &visionpb.AnnotateImageRequest{
		Image: &visionpb.Image{Content: content},
		Features: []*visionpb.Feature{
			{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: maxLabelResults},
			{Type: visionpb.Feature_OBJECT_LOCALIZATION, MaxResults: maxDetailObjects},
			{Type: visionpb.Feature_TEXT_DETECTION, MaxResults: 1},
			{Type: visionpb.Feature_LANDMARK_DETECTION, MaxResults: maxDetailPlaces},
			{Type: visionpb.Feature_LOGO_DETECTION, MaxResults: maxDetailPlaces},
			{Type: visionpb.Feature_IMAGE_PROPERTIES},
		},
	}

	resp, err := s.client.AnnotateImage(ctx, req)
	if err != nil {
		log.Errorf("Error getting detailed analysis: %v", err)
		metrics.AnalysisRequestsTotal.WithLabelValues("detailed_analysis", metrics.ResultError).Inc()
		return degradedAnalysis()
	}
	if respErr := resp.GetError(); respErr != nil {
		log.Errorf("Vision API returned error: %s", respErr.GetMessage())
		metrics.AnalysisRequestsTotal.WithLabelValues("detailed_analysis", metrics.ResultError).Inc()
		return degradedAnalysis()
	}

	analysis := degradedAnalysis()

	labels := resp.GetLabelAnnotations()
	landmarks := resp.GetLandmarkAnnotations()

	if len(landmarks) > 0 {
		analysis.AltText = landmarks[0].GetDescription()
	} else if len(labels) > 0 {
		analysis.AltText = labelSentence(labels)
	}

	// Tag list here is labels plus localized objects only; see
	// DetectObjects for the divergence note on landmarks and logos.
	var tags []string
	for _, label := range labels {
		if label.GetScore() > scoreThreshold {
			tags = append(tags, strings.ToLower(label.GetDescription()))
		}
	}
	for _, obj := range resp.GetLocalizedObjectAnnotations() {
		if obj.GetScore() > scoreThreshold {
			tags = append(tags, strings.ToLower(obj.GetName()))
		}
	}
	analysis.Objects = uniqueStrings(tags)

	if props := resp.GetImagePropertiesAnnotation(); props != nil {
		colors := props.GetDominantColors().GetColors()
		if len(colors) > maxDetailColors {
			colors = colors[:maxDetailColors]
		}
		for _, ci := range colors {
			analysis.DominantColors = append(analysis.DominantColors, models.DominantColor{
				Red:   int(ci.GetColor().GetRed()),
				Green: int(ci.GetColor().GetGreen()),
				Blue:  int(ci.GetColor().GetBlue()),
				Score: float64(ci.GetScore()),
			})
		}
	}

	if texts := resp.GetTextAnnotations(); len(texts) > 0 {
		analysis.Text = texts[0].GetDescription()
	}

	metrics.AnalysisRequestsTotal.WithLabelValues("detailed_analysis", metrics.ResultOK).Inc()
	metrics.AnalysisDurationSeconds.WithLabelValues("detailed_analysis").Observe(time.Since(start).Seconds())

	return analysis
}

// GetDetailedAnalysisFromFile reads the image at path and delegates to
// GetDetailedAnalysis.
func (s *Service) GetDetailedAnalysisFromFile(ctx context.Context, path string) models.Analysis {
	if s.client == nil {
		metrics.AnalysisRequestsTotal.WithLabelValues("detailed_analysis", metrics.ResultDisabled).Inc()
		return degradedAnalysis()
	}
	content, err := os.ReadFile(path)
	if err != nil {
		log.Errorf("Error reading image file %s: %v", path, err)
		metrics.AnalysisRequestsTotal.WithLabelValues("detailed_analysis", metrics.ResultError).Inc()
		return degradedAnalysis()
	}
	return s.GetDetailedAnalysis(ctx, content)
}

func (s *Service) altTextFailed(start time.Time, err error) string {
	log.Errorf("Error generating alt text: %v", err)
	metrics.AnalysisRequestsTotal.WithLabelValues("generate_alt_text", metrics.ResultError).Inc()
	metrics.AnalysisDurationSeconds.WithLabelValues("generate_alt_text").Observe(time.Since(start).Seconds())
	return FallbackAltText
}

func (s *Service) detectObjectsFailed(start time.Time, err error) []string {
	log.Errorf("Error detecting objects: %v", err)
	metrics.AnalysisRequestsTotal.WithLabelValues("detect_objects", metrics.ResultError).Inc()
	metrics.AnalysisDurationSeconds.WithLabelValues("detect_objects").Observe(time.Since(start).Seconds())
	return []string{}
}

// degradedAnalysis is the fixed record returned when the capability is
// unavailable or a call fails.
func degradedAnalysis() models.Analysis {
	return models.Analysis{
		AltText:        FallbackAltText,
		Objects:        []string{},
		DominantColors: []models.DominantColor{},
		Text:           "",
	}
}

// labelSentence builds "Image containing X, Y, Z" from the first labels in
// the order the service returned them.
func labelSentence(labels []*visionpb.EntityAnnotation) string {
	n := len(labels)
	if n > maxAltTextLabels {
		n = maxAltTextLabels
	}
	descriptions := make([]string, 0, n)
	for _, label := range labels[:n] {
		descriptions = append(descriptions, label.GetDescription())
	}
	return "Image containing " + strings.Join(descriptions, ", ")
}

// uniqueStrings removes duplicates while preserving first occurrence.
func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	unique := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		unique = append(unique, v)
	}
	return unique
}
