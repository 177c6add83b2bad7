package dto

// LevelResponse is one stored price level as exposed by GET /api/v1/levels.
//
// Optional values (end price, comment, zone, link) are omitted when absent.
type LevelResponse struct {
	Date       string   `json:"date" example:"2025-08-18"`
	Ticker     string   `json:"ticker" example:"SPX"`
	StartPrice float64  `json:"start_price" example:"6497"`
	EndPrice   *float64 `json:"end_price,omitempty" example:"6500"`
	Comment    string   `json:"comment,omitempty" example:"high likelihood of resistance"`
	Zone       string   `json:"zone,omitempty" example:"SELL"`
	SourceLink string   `json:"source_link,omitempty" example:"https://tradingedge.club/posts/89336017"`
}

// LevelsResponse wraps the levels stored for one date.
type LevelsResponse struct {
	Date   string          `json:"date" example:"2025-08-18"`
	Count  int             `json:"count" example:"10"`
	Levels []LevelResponse `json:"levels"`
}
