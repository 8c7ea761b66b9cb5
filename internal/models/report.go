package models

type AgeRow struct {
	Age int `json:"age"`
}

type CardTypeCount struct {
	CardType string `json:"cardType"`
	Cantidad int    `json:"Cantidad"`
}

type GeographyCount struct {
	Cantidad  int    `json:"Cantidad"`
	Geography string `json:"Geography"`
}

type CountryBreakdown struct {
	Activo   []GeographyCount `json:"Activo"`
	Inactivo []GeographyCount `json:"Inactivo"`
}

// GeneralInformation mirrors the dashboard cards. Each field is a one
// element list so the browser code can keep reading result[0].
type GeneralInformation struct {
	Total         []map[string]int     `json:"total"`
	CreditCard    []map[string]int     `json:"creditCard"`
	NotCreditCard []map[string]int     `json:"notCreditCard"`
	Complain      []map[string]int     `json:"complain"`
	Salary        []map[string]float64 `json:"salary"`
	Balance       []map[string]float64 `json:"balance"`
}
