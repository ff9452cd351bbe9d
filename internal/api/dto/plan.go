package dto

type PlanResponse struct {
	Coordinates [][]float64 `json:"coordinates"`
	DepotIndex  *int        `json:"depot_index"`
	Constraints [][2]int    `json:"constraints"`
	FinalStop   []float64   `json:"final_stop"`
	RequestIDs  []string    `json:"request_ids"`
	Stops       int         `json:"stops"`
	QueryURL    string      `json:"query_url"`
}
