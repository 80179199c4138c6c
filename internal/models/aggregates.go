package models

import "time"

// Group is a per-key summary derived from a product collection. It only lives
// as long as the snapshot it was computed from.
type Group struct {
	Key        string  `json:"key"`
	Count      int     `json:"count"`
	Stock      int     `json:"stock"`
	Sales      int     `json:"sales"`
	StockValue float64 `json:"stock_value"`
	Revenue    float64 `json:"revenue"`
	RatingSum  float64 `json:"-"`
	MeanRating float64 `json:"mean_rating"`
	Share      float64 `json:"share,omitempty"`
}

type ProductRef struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type Summary struct {
	TotalProducts  int            `json:"total_products"`
	TotalStock     int            `json:"total_stock"`
	StockValue     float64        `json:"stock_value"`
	MeanRating     float64        `json:"mean_rating"`
	MeanWarranty   float64        `json:"mean_warranty"`
	NearExpiry     int            `json:"near_expiry"`
	LowStock       int            `json:"low_stock"`
	MostExpensive  ProductRef     `json:"most_expensive"`
	LeastExpensive ProductRef     `json:"least_expensive"`
	CategoryCounts map[string]int `json:"category_counts"`
}

type SalesTotals struct {
	Units         int     `json:"units"`
	Revenue       float64 `json:"revenue"`
	AverageTicket float64 `json:"average_ticket"`
}

type RatingStockMatrix struct {
	HighRatingHighStock int                `json:"high_rating_high_stock"`
	LowRatingHighStock  int                `json:"low_rating_high_stock"`
	HighRatingLowStock  int                `json:"high_rating_low_stock"`
	LowRatingLowStock   int                `json:"low_rating_low_stock"`
	MeanStockByRating   map[string]float64 `json:"mean_stock_by_rating"`
}

type Correlation struct {
	X           string  `json:"x"`
	Y           string  `json:"y"`
	Pairs       int     `json:"pairs"`
	Coefficient float64 `json:"coefficient"`
}

type MonthlyBucket struct {
	Month    string `json:"month"`
	Products int    `json:"products"`
	Stock    int    `json:"stock"`
}

// Selection is the outcome of a threshold filter. Matched is false when no
// record passed the threshold; Fallback is set when Items were substituted
// with an unfiltered prefix instead.
type Selection struct {
	Items    []Product `json:"items"`
	Matched  bool      `json:"matched"`
	Fallback bool      `json:"fallback,omitempty"`
}

type Insights struct {
	LowStock     Selection `json:"low_stock"`
	ExcessStock  Selection `json:"excess_stock"`
	LowRated     Selection `json:"low_rated"`
	WellRated    Selection `json:"well_rated"`
	NearExpiry   Selection `json:"near_expiry"`
	MostValuable []Product `json:"most_valuable"`
}

type LoadStatus struct {
	Loading     bool      `json:"loading"`
	Retrying    bool      `json:"retrying"`
	Failed      bool      `json:"failed"`
	Attempts    int       `json:"attempts"`
	LastError   string    `json:"last_error,omitempty"`
	LastSuccess time.Time `json:"last_success,omitzero"`
	RecordCount int       `json:"record_count"`
	NextAttempt time.Time `json:"next_attempt,omitzero"`
}
