package models

// DominantColor is one of the image's most prevalent colors, in the order
// ranked by the vision service.
type DominantColor struct {
	Red   int     `json:"red"`
	Green int     `json:"green"`
	Blue  int     `json:"blue"`
	Score float64 `json:"score"`
}

// Analysis is the combined result of analyzing a single image.
type Analysis struct {
	AltText        string          `json:"alt_text"`
	Objects        []string        `json:"objects"`
	DominantColors []DominantColor `json:"dominant_colors"`
	Text           string          `json:"text"`
}
