package models

import "fmt"

// Customer is one element of the JSON array returned by the
// estandar_customer_data / decrypt_customer_data store functions. The column
// set belongs to the database, and sensitive columns come back masked unless
// the decryption key was supplied, so values are kept untyped.
type Customer map[string]any

// Title is the accordion header: surname plus customer id when present.
func (c Customer) Title() string {
	surname, _ := c["Surname"].(string)
	switch id := c["CustomerId"].(type) {
	case float64:
		return fmt.Sprintf("%s (%.0f)", surname, id)
	case string:
		return fmt.Sprintf("%s (%s)", surname, id)
	}
	return surname
}

type CustomerFilter struct {
	Surname string `form:"surname"`
	Clave   string `form:"clave"`
}
