package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Bestseller  bool            `json:"bestseller"`
	Description string          `json:"description"`
}

// FAQ is a static question/answer pair shown on the home page.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
