package model

type Room struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Icon            string  `json:"icon"`
	PointMultiplier float64 `json:"point_multiplier"`
	SortOrder       int     `json:"sort_order"`
	HAAreaID        *string `json:"ha_area_id"`
}
