package models

// StudentFeatures is the input of a placement prediction. It is never stored.
type StudentFeatures struct {
	CGPA *float64 `json:"cgpa" validate:"required" example:"7.5"`
	IQ   *int     `json:"iq" validate:"required" example:"110"`
}

const (
	Placed    = "Yes"
	NotPlaced = "No"
)

type PlacementResult struct {
	Placed string `json:"placed" example:"Yes"`
}
