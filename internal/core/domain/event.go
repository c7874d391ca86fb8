package domain

// EventTypeInventoryLow is the eventType literal of the published payload.
const EventTypeInventoryLow = "InventoryLow"

// InventoryLowEvent is the async-channel payload published on breach.
type InventoryLowEvent struct {
	EventID               string  `json:"eventId"`
	EventType             string  `json:"eventType"`
	HospitalID            string  `json:"hospitalId"`
	ProductCode           string  `json:"productCode"`
	CurrentStockUnits     int     `json:"currentStockUnits"`
	DailyConsumptionUnits int     `json:"dailyConsumptionUnits"`
	DaysOfSupply          float64 `json:"daysOfSupply"`
	Threshold             float64 `json:"threshold"`
	Timestamp             string  `json:"timestamp"`
}
